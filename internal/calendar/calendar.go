// Package calendar converts the host's tick counters into calendar values.
// Every function here is pure: the same ticks and Config always produce the
// same day, month, year, weekday, season and zodiac sign.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Tick layout of a host day.
const (
	TicksPerDay   = 24000 // one in-game day
	TicksPerHour  = 1000
	DawnOffset    = 6000 // tick 0 is 06:00
	MonthsPerYear = 12
	DaysPerWeek   = 7
)

// Sentinels returned when configuration does not cover a value.
const (
	UnknownSeason = "unknown"
	UnknownZodiac = "?"
)

// ErrOutOfRange is returned when a requested calendar field is outside its bounds.
var ErrOutOfRange = errors.New("calendar value out of range")

// ZodiacSign is one entry of the 12-year cycle.
type ZodiacSign struct {
	Key  string
	Name string
}

// Config holds the calendar constants.
type Config struct {
	DaysPerMonth int
	StartYear    int
	SeasonMonths map[string][]int  // season key → months 1..12
	SeasonNames  map[string]string // season key → display string
	MonthNames   map[int]string
	WeekdayNames map[int]string
	Zodiac       []ZodiacSign      // index 0 is the start year's sign
	Holidays     map[string]string // "month-day" → display name
}

// Date is the set of values derived from a full tick count.
type Date struct {
	Day         int
	Month       int
	Year        int
	Weekday     int
	Season      string
	ZodiacIndex int
}

func totalDays(fullTicks uint64) uint64 {
	return fullTicks / TicksPerDay
}

// Day returns the day of the month, 1..DaysPerMonth.
func (c *Config) Day(fullTicks uint64) int {
	return int(totalDays(fullTicks)%uint64(c.DaysPerMonth)) + 1
}

// Month returns the month of the year, 1..12.
func (c *Config) Month(fullTicks uint64) int {
	return int((totalDays(fullTicks)/uint64(c.DaysPerMonth))%MonthsPerYear) + 1
}

// Year returns the calendar year, offset by StartYear.
func (c *Config) Year(fullTicks uint64) int {
	return int(totalDays(fullTicks)/uint64(c.DaysPerMonth*MonthsPerYear)) + c.StartYear
}

// Weekday returns the day of the week, 1..7. Day zero of the world is weekday 7.
func Weekday(fullTicks uint64) int {
	raw := totalDays(fullTicks) % DaysPerWeek
	return int((raw+6)%DaysPerWeek) + 1
}

// SeasonKey returns the season whose months contain month, or UnknownSeason.
// Seasons are scanned in key order so overlapping sets resolve the same way
// on every call.
func (c *Config) SeasonKey(month int) string {
	keys := make([]string, 0, len(c.SeasonMonths))
	for k := range c.SeasonMonths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, m := range c.SeasonMonths[k] {
			if m == month {
				return k
			}
		}
	}
	return UnknownSeason
}

// SeasonName returns the display name for month's season. Unmapped months
// get a grey "Unknown".
func (c *Config) SeasonName(month int) string {
	key := c.SeasonKey(month)
	if name, ok := c.SeasonNames[key]; ok {
		return name
	}
	return "&7Unknown"
}

// ZodiacIndex returns the 1-based position of year in the 12-year cycle.
func (c *Config) ZodiacIndex(year int) int {
	return ((year-c.StartYear)%12+12)%12 + 1
}

// ZodiacSign returns the cycle entry for year.
func (c *Config) ZodiacSign(year int) (ZodiacSign, bool) {
	idx := c.ZodiacIndex(year) - 1
	if idx >= len(c.Zodiac) || c.Zodiac[idx].Key == "" {
		return ZodiacSign{}, false
	}
	return c.Zodiac[idx], true
}

// ZodiacKey returns the key of year's sign, or UnknownZodiac.
func (c *Config) ZodiacKey(year int) string {
	if sign, ok := c.ZodiacSign(year); ok {
		return sign.Key
	}
	return UnknownZodiac
}

// ZodiacName returns the display name of year's sign, or UnknownZodiac.
func (c *Config) ZodiacName(year int) string {
	sign, ok := c.ZodiacSign(year)
	if !ok || sign.Name == "" {
		return UnknownZodiac
	}
	return sign.Name
}

// HolidayKey builds the "month-day" key used by the holiday tables.
func HolidayKey(month, day int) string {
	return strconv.Itoa(month) + "-" + strconv.Itoa(day)
}

// HolidayName returns the holiday falling on key, or "".
func (c *Config) HolidayName(key string) string {
	return c.Holidays[key]
}

// MonthName returns the configured name of month, or " <month>".
func (c *Config) MonthName(month int) string {
	if name, ok := c.MonthNames[month]; ok {
		return name
	}
	return " " + strconv.Itoa(month)
}

// WeekdayName returns the configured name of weekday, or " <weekday>".
func (c *Config) WeekdayName(weekday int) string {
	if name, ok := c.WeekdayNames[weekday]; ok {
		return name
	}
	return " " + strconv.Itoa(weekday)
}

// Derive computes every calendar value for fullTicks.
func (c *Config) Derive(fullTicks uint64) Date {
	month := c.Month(fullTicks)
	year := c.Year(fullTicks)
	return Date{
		Day:         c.Day(fullTicks),
		Month:       month,
		Year:        year,
		Weekday:     Weekday(fullTicks),
		Season:      c.SeasonKey(month),
		ZodiacIndex: c.ZodiacIndex(year),
	}
}

// String renders a date for logs and the status endpoint.
func (d Date) String() string {
	return fmt.Sprintf("%s day of month %d, year %d (%s)",
		humanize.Ordinal(d.Day), d.Month, d.Year, d.Season)
}
