package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/talgya/almanac/internal/calendar"
	"github.com/talgya/almanac/internal/sampler"
)

var (
	dayPhaseKeys = []string{calendar.PhaseMorning, calendar.PhaseDay, calendar.PhaseEvening, calendar.PhaseNight}
	weatherKeys  = []string{sampler.WeatherSun, sampler.WeatherRain, sampler.WeatherSnow, sampler.WeatherStorm}
)

// Validate reports every structural problem at once.
func (c *Config) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Calendar.DaysPerMonth <= 0 {
		add("calendar.days_per_month must be positive, got %d", c.Calendar.DaysPerMonth)
	}
	if len(c.Calendar.Zodiac) > 12 {
		add("calendar.zodiac has %d entries, at most 12 allowed", len(c.Calendar.Zodiac))
	}
	if c.Scheduler.Interval < 0 {
		add("scheduler.interval must not be negative, got %s", c.Scheduler.Interval)
	}

	claimed := make(map[int]string)
	for _, key := range sortedKeys(c.Seasons) {
		for _, m := range c.Seasons[key].Months {
			if m < 1 || m > 12 {
				add("seasons.%s: month %d not in [1, 12]", key, m)
				continue
			}
			if other, ok := claimed[m]; ok && other != key {
				add("seasons.%s: month %d already belongs to %s", key, m, other)
				continue
			}
			claimed[m] = key
		}
	}

	for key := range c.Calendar.Holidays {
		if err := c.checkHolidayKey(key); err != nil {
			add("calendar.holidays: %v", err)
		}
	}

	c.checkGreetingKeys(sampler.CategoryDay, dayPhaseKeys, add)
	c.checkGreetingKeys(sampler.CategoryWeather, weatherKeys, add)
	c.checkGreetingKeys(sampler.CategorySeason, sortedKeys(c.Seasons), add)

	var zodiacKeys []string
	for _, z := range c.Calendar.Zodiac {
		zodiacKeys = append(zodiacKeys, z.Key)
	}
	c.checkGreetingKeys(sampler.CategoryZodiac, zodiacKeys, add)

	for key := range c.Greetings.Holiday.Messages {
		if err := c.checkHolidayKey(key); err != nil {
			add("greetings.holiday: %v", err)
		}
	}

	return errors.Join(problems...)
}

func (c *Config) checkGreetingKeys(cat sampler.Category, allowed []string, add func(string, ...any)) {
	for key := range c.Greeting(cat).Messages {
		found := false
		for _, a := range allowed {
			if a == key {
				found = true
				break
			}
		}
		if !found {
			add("greetings.%s: unknown key %q (expected one of %s)", cat, key, strings.Join(allowed, ", "))
		}
	}
}

// checkHolidayKey verifies a "month-day" key names a real calendar day.
func (c *Config) checkHolidayKey(key string) error {
	monthStr, dayStr, ok := strings.Cut(key, "-")
	if !ok {
		return fmt.Errorf("key %q is not month-day", key)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return fmt.Errorf("key %q has an invalid month", key)
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || (c.Calendar.DaysPerMonth > 0 && day > c.Calendar.DaysPerMonth) {
		return fmt.Errorf("key %q has an invalid day", key)
	}
	if calendar.HolidayKey(month, day) != key {
		return fmt.Errorf("key %q is not canonical, want %q", key, calendar.HolidayKey(month, day))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
