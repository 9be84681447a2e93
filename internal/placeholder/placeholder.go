// Package placeholder renders the read-only calendar tokens a chat client or
// scoreboard can embed, resolved for one participant.
package placeholder

import (
	"strconv"

	"golang.org/x/text/cases"

	"github.com/talgya/almanac/internal/calendar"
	"github.com/talgya/almanac/internal/config"
	"github.com/talgya/almanac/internal/greeting"
	"github.com/talgya/almanac/internal/sampler"
)

// Tokens lists every token Resolve understands.
var Tokens = []string{
	"day", "day_type", "time", "weather",
	"month", "month_name", "weekday", "weekday_name",
	"season", "direction", "direction_short",
	"year", "zodiac", "holiday_name",
}

// Fallbacks for unconfigured direction labels.
const (
	UnknownDirection      = "&7Unknown"
	UnknownDirectionShort = "?"
)

// Viewer is the participant a token is resolved for.
type Viewer struct {
	Yaw float64
	// Temperature is the ground temperature at the viewer's position.
	Temperature float64
}

// Resolver answers token queries against one world and configuration.
// Build a new one after a reload.
type Resolver struct {
	cfg   *config.Config
	cal   *calendar.Config
	world sampler.World
	fold  cases.Caser
}

// New creates a Resolver over w.
func New(cfg *config.Config, cal *calendar.Config, w sampler.World) *Resolver {
	return &Resolver{cfg: cfg, cal: cal, world: w, fold: cases.Fold()}
}

// Resolve renders token for v. Tokens are matched case-insensitively; an
// unknown token or a nil viewer yields ("", false).
func (r *Resolver) Resolve(v *Viewer, token string) (string, bool) {
	if v == nil || r.world == nil {
		return "", false
	}

	raw := r.world.RawTime()
	full := r.world.FullTime()

	switch r.fold.String(token) {
	case "day":
		return strconv.Itoa(r.cal.Day(full)), true
	case "day_type":
		return greeting.Colorize(r.cfg.Labels.Day[calendar.DayPhase(raw)]), true
	case "time":
		return greeting.Colorize(calendar.FormatTime(raw, r.cfg.TimeFormat)), true
	case "weather":
		key := sampler.WeatherKey(r.world.HasStorm(), r.world.IsThundering(), v.Temperature)
		return greeting.Colorize(r.cfg.Labels.Weather[key]), true
	case "month":
		return strconv.Itoa(r.cal.Month(full)), true
	case "month_name":
		return r.cal.MonthName(r.cal.Month(full)), true
	case "weekday":
		return strconv.Itoa(calendar.Weekday(full)), true
	case "weekday_name":
		return r.cal.WeekdayName(calendar.Weekday(full)), true
	case "season":
		return greeting.Colorize(r.cal.SeasonName(r.cal.Month(full))), true
	case "direction":
		return greeting.Colorize(label(r.cfg.Labels.Directions, calendar.DirectionIndex(v.Yaw), UnknownDirection)), true
	case "direction_short":
		return greeting.Colorize(label(r.cfg.Labels.DirectionsShort, calendar.DirectionIndex(v.Yaw), UnknownDirectionShort)), true
	case "year":
		return strconv.Itoa(r.cal.Year(full)), true
	case "zodiac":
		return greeting.Colorize(r.cal.ZodiacName(r.cal.Year(full))), true
	case "holiday_name":
		d := r.cal.Derive(full)
		return greeting.Colorize(r.cal.HolidayName(calendar.HolidayKey(d.Month, d.Day))), true
	default:
		return "", false
	}
}

// All resolves every token for v.
func (r *Resolver) All(v *Viewer) map[string]string {
	out := make(map[string]string, len(Tokens))
	for _, t := range Tokens {
		if s, ok := r.Resolve(v, t); ok {
			out[t] = s
		}
	}
	return out
}

func label(labels []string, i int, fallback string) string {
	if i < 0 || i >= len(labels) || labels[i] == "" {
		return fallback
	}
	return labels[i]
}
