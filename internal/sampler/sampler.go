// Package sampler turns host world readings into the discrete keys the
// herald tracks between ticks.
package sampler

import (
	"github.com/talgya/almanac/internal/calendar"
)

// Weather keys.
const (
	WeatherSun   = "sun"
	WeatherRain  = "rain"
	WeatherSnow  = "snow"
	WeatherStorm = "storm"
)

// SnowThreshold is the ground temperature below which precipitation falls as snow.
const SnowThreshold = 0.15

// World is the read-only view of the host world the sampler needs.
type World interface {
	RawTime() int64
	FullTime() uint64
	HasStorm() bool
	IsThundering() bool
	ReferenceTemperature() float64
}

// Snapshot holds the keys derived from one reading of the world.
type Snapshot struct {
	RawTicks  uint64
	FullTicks uint64
	Date      calendar.Date

	DayPhase string
	Weather  string
	Season   string
	Zodiac   string
	Holiday  string
}

// WeatherKey classifies precipitation flags and a ground temperature.
func WeatherKey(storm, thunder bool, temperature float64) string {
	if !storm {
		return WeatherSun
	}
	if thunder {
		return WeatherStorm
	}
	if temperature < SnowThreshold {
		return WeatherSnow
	}
	return WeatherRain
}

// Sample reads w once and derives every tracked key.
func Sample(w World, cfg *calendar.Config) Snapshot {
	raw := w.RawTime()
	full := w.FullTime()
	date := cfg.Derive(full)

	return Snapshot{
		RawTicks:  uint64(raw),
		FullTicks: full,
		Date:      date,
		DayPhase:  calendar.DayPhase(raw),
		Weather:   WeatherKey(w.HasStorm(), w.IsThundering(), w.ReferenceTemperature()),
		Season:    date.Season,
		Zodiac:    cfg.ZodiacKey(date.Year),
		Holiday:   calendar.HolidayKey(date.Month, date.Day),
	}
}
