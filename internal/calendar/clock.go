package calendar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Day phase keys.
const (
	PhaseMorning = "morning"
	PhaseDay     = "day"
	PhaseEvening = "evening"
	PhaseNight   = "night"
)

// Hour returns the clock hour 0..23 for a raw tick value.
func Hour(rawTicks int64) int {
	return int(shifted(rawTicks) / TicksPerHour)
}

// Minute returns the clock minute 0..59 for a raw tick value.
func Minute(rawTicks int64) int {
	return int((shifted(rawTicks) % TicksPerHour) * 60 / TicksPerHour)
}

func shifted(rawTicks int64) int64 {
	adjusted := (rawTicks + DawnOffset) % TicksPerDay
	if adjusted < 0 {
		adjusted += TicksPerDay
	}
	return adjusted
}

// DayPhase maps a raw tick value onto morning, day, evening or night.
func DayPhase(rawTicks int64) string {
	hour := Hour(rawTicks)
	switch {
	case hour >= 4 && hour < 12:
		return PhaseMorning
	case hour >= 12 && hour < 18:
		return PhaseDay
	case hour >= 18 && hour < 22:
		return PhaseEvening
	default:
		return PhaseNight
	}
}

// FormatTime renders the clock time using a layout with HH, H, mm and m tokens.
func FormatTime(rawTicks int64, layout string) string {
	hours := Hour(rawTicks)
	minutes := Minute(rawTicks)
	r := strings.NewReplacer(
		"HH", fmt.Sprintf("%02d", hours),
		"H", strconv.Itoa(hours),
		"mm", fmt.Sprintf("%02d", minutes),
		"m", strconv.Itoa(minutes),
	)
	return r.Replace(layout)
}

// DirectionIndex maps a yaw in degrees onto one of 8 compass sectors.
func DirectionIndex(yaw float64) int {
	yaw = math.Mod(yaw, 360)
	if yaw < 0 {
		yaw += 360
	}
	return int(math.Round(yaw/45)) % 8
}

// WithDay returns fullTicks moved to day of the current month and year.
func (c *Config) WithDay(fullTicks uint64, day int) (uint64, error) {
	if day < 1 || day > c.DaysPerMonth {
		return 0, fmt.Errorf("day %d not in [1, %d]: %w", day, c.DaysPerMonth, ErrOutOfRange)
	}
	return c.compose(fullTicks, c.Year(fullTicks), c.Month(fullTicks), day), nil
}

// WithMonth returns fullTicks moved to month, keeping day and year.
func (c *Config) WithMonth(fullTicks uint64, month int) (uint64, error) {
	if month < 1 || month > MonthsPerYear {
		return 0, fmt.Errorf("month %d not in [1, %d]: %w", month, MonthsPerYear, ErrOutOfRange)
	}
	return c.compose(fullTicks, c.Year(fullTicks), month, c.Day(fullTicks)), nil
}

// MaxYear is the last year whose every tick fits the full tick counter.
func (c *Config) MaxYear() int {
	perYear := uint64(c.DaysPerMonth*MonthsPerYear) * TicksPerDay
	if perYear == 0 {
		return c.StartYear
	}
	return c.StartYear + int(math.MaxUint64/perYear) - 1
}

// WithYear returns fullTicks moved to year, keeping day and month. Years
// before StartYear cannot be represented by an unsigned counter, nor years
// past MaxYear.
func (c *Config) WithYear(fullTicks uint64, year int) (uint64, error) {
	if year < c.StartYear {
		return 0, fmt.Errorf("year %d before start year %d: %w", year, c.StartYear, ErrOutOfRange)
	}
	if year > c.MaxYear() {
		return 0, fmt.Errorf("year %d after last year %d: %w", year, c.MaxYear(), ErrOutOfRange)
	}
	return c.compose(fullTicks, year, c.Month(fullTicks), c.Day(fullTicks)), nil
}

// compose rebuilds a full tick count from calendar fields, keeping the time
// of day carried by fullTicks.
func (c *Config) compose(fullTicks uint64, year, month, day int) uint64 {
	days := uint64(year-c.StartYear)*uint64(c.DaysPerMonth*MonthsPerYear) +
		uint64(month-1)*uint64(c.DaysPerMonth) +
		uint64(day-1)
	return days*TicksPerDay + fullTicks%TicksPerDay
}
