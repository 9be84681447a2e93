package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		DaysPerMonth: 28,
		StartYear:    1200,
		SeasonMonths: map[string][]int{
			"spring": {3, 4, 5},
			"summer": {6, 7, 8},
			"autumn": {9, 10, 11},
			"winter": {12, 1, 2},
		},
		SeasonNames: map[string]string{
			"spring": "&aSpring",
			"summer": "&eSummer",
			"autumn": "&6Autumn",
			"winter": "&bWinter",
		},
		MonthNames:   map[int]string{1: "Frostmoot"},
		WeekdayNames: map[int]string{7: "Sunday"},
		Zodiac: []ZodiacSign{
			{"rat", "Rat"}, {"ox", "Ox"}, {"tiger", "Tiger"}, {"rabbit", "Rabbit"},
			{"dragon", "Dragon"}, {"snake", "Snake"}, {"horse", "Horse"}, {"goat", "Goat"},
			{"monkey", "Monkey"}, {"rooster", "Rooster"}, {"dog", "Dog"}, {"pig", "Pig"},
		},
		Holidays: map[string]string{"1-1": "New Year"},
	}
}

func ticksFor(c *Config, year, month, day int) uint64 {
	return c.compose(0, year, month, day)
}

func TestDayMonthBoundaryClosure(t *testing.T) {
	c := testConfig()
	for days := uint64(0); days < uint64(c.DaysPerMonth*MonthsPerYear*3); days++ {
		for _, offset := range []uint64{0, 1, TicksPerDay - 1} {
			full := days*TicksPerDay + offset
			day := c.Day(full)
			month := c.Month(full)
			assert.GreaterOrEqual(t, day, 1)
			assert.LessOrEqual(t, day, c.DaysPerMonth)
			assert.GreaterOrEqual(t, month, 1)
			assert.LessOrEqual(t, month, 12)
		}
	}
}

func TestDeriveAtWorldStart(t *testing.T) {
	c := testConfig()
	d := c.Derive(0)
	assert.Equal(t, Date{Day: 1, Month: 1, Year: 1200, Weekday: 7, Season: "winter", ZodiacIndex: 1}, d)
}

func TestDeriveLastTickOfFirstYear(t *testing.T) {
	c := testConfig()
	full := uint64(c.DaysPerMonth*12)*TicksPerDay - 1
	d := c.Derive(full)
	assert.Equal(t, 28, d.Day)
	assert.Equal(t, 12, d.Month)
	assert.Equal(t, 1200, d.Year)

	d = c.Derive(full + 1)
	assert.Equal(t, 1, d.Day)
	assert.Equal(t, 1, d.Month)
	assert.Equal(t, 1201, d.Year)
}

func TestWeekdayCycle(t *testing.T) {
	want := []int{7, 1, 2, 3, 4, 5, 6, 7, 1}
	for i, w := range want {
		assert.Equal(t, w, Weekday(uint64(i)*TicksPerDay+500), "day %d", i)
	}
}

func TestSeasonKeyJune(t *testing.T) {
	c := testConfig()
	full := ticksFor(c, 1200, 6, 10)
	require.Equal(t, 6, c.Month(full))
	assert.Equal(t, "summer", c.SeasonKey(c.Month(full)))
	assert.Equal(t, "&eSummer", c.SeasonName(6))
}

func TestSeasonKeyUnmapped(t *testing.T) {
	c := testConfig()
	delete(c.SeasonMonths, "winter")
	assert.Equal(t, UnknownSeason, c.SeasonKey(1))
	assert.Equal(t, "&7Unknown", c.SeasonName(1))
}

func TestZodiac(t *testing.T) {
	c := testConfig()
	assert.Equal(t, 12, c.ZodiacIndex(1211))
	assert.Equal(t, "pig", c.ZodiacKey(1211))
	assert.Equal(t, "Pig", c.ZodiacName(1211))
	assert.Equal(t, 1, c.ZodiacIndex(1212))
	assert.Equal(t, 12, c.ZodiacIndex(1199))
	assert.Equal(t, 1, c.ZodiacIndex(1188))
}

func TestZodiacMissingEntry(t *testing.T) {
	c := testConfig()
	c.Zodiac = c.Zodiac[:3]
	assert.Equal(t, UnknownZodiac, c.ZodiacKey(1205))
	assert.Equal(t, UnknownZodiac, c.ZodiacName(1205))
	assert.Equal(t, "ox", c.ZodiacKey(1201))
}

func TestNamesFallBackToNumber(t *testing.T) {
	c := testConfig()
	assert.Equal(t, "Frostmoot", c.MonthName(1))
	assert.Equal(t, " 2", c.MonthName(2))
	assert.Equal(t, "Sunday", c.WeekdayName(7))
	assert.Equal(t, " 3", c.WeekdayName(3))
}

func TestHoliday(t *testing.T) {
	c := testConfig()
	assert.Equal(t, "1-1", HolidayKey(1, 1))
	assert.Equal(t, "12-25", HolidayKey(12, 25))
	assert.Equal(t, "New Year", c.HolidayName("1-1"))
	assert.Empty(t, c.HolidayName("2-2"))
}

func TestDateString(t *testing.T) {
	d := Date{Day: 3, Month: 6, Year: 1211, Season: "summer"}
	assert.Equal(t, "3rd day of month 6, year 1211 (summer)", d.String())
}
