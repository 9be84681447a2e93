// Package command implements the admin commands: reload and set.
package command

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/talgya/almanac/internal/calendar"
	"github.com/talgya/almanac/internal/config"
	"github.com/talgya/almanac/internal/greeting"
)

var (
	ErrUsage         = errors.New("usage")
	ErrInvalidNumber = errors.New("not a whole number")
	ErrPermission    = errors.New("permission denied")
)

// Settable fields for the set command.
const (
	FieldDay   = "day"
	FieldMonth = "month"
	FieldYear  = "year"
)

// Clock is the host world counter set rewrites.
type Clock interface {
	FullTime() uint64
	SetFullTime(fullTicks uint64)
}

// Target holds the active configuration and accepts a replacement.
type Target interface {
	Config() *config.Config
	Calendar() *calendar.Config
	Reload(cfg *config.Config)
}

// Loader reads a fresh configuration.
type Loader func() (*config.Config, error)

// Sender is whoever issued a command.
type Sender struct {
	Name  string
	Admin bool
}

// Handler runs commands. Like the herald it must be called from the engine
// goroutine.
type Handler struct {
	target Target
	clock  Clock
	load   Loader
}

// New creates a Handler.
func New(target Target, clock Clock, load Loader) *Handler {
	return &Handler{target: target, clock: clock, load: load}
}

// Execute runs args, e.g. ["set", "month", "5"]. It returns the rendered reply
// and an error when nothing was changed.
func (h *Handler) Execute(s Sender, args []string) (string, error) {
	if len(args) == 0 {
		return h.usage()
	}
	switch strings.ToLower(args[0]) {
	case "reload":
		if len(args) != 1 {
			return h.usage()
		}
		return h.Reload(s)
	case "set":
		if len(args) != 3 {
			return h.usage()
		}
		return h.Set(s, args[1], args[2])
	default:
		return h.usage()
	}
}

// Reload reads the configuration again and resets the herald. A config that
// fails to load leaves the running one in place.
func (h *Handler) Reload(s Sender) (string, error) {
	msgs := h.target.Config().Messages
	if !s.Admin {
		return greeting.Colorize(msgs.NoPermission), ErrPermission
	}

	cfg, err := h.load()
	if err != nil {
		slog.Warn("reload rejected", "by", s.Name, "error", err)
		return greeting.Colorize("&cReload failed: " + err.Error()), fmt.Errorf("reload: %w", err)
	}
	h.target.Reload(cfg)
	slog.Info("config reloaded", "by", s.Name)
	return greeting.Colorize(cfg.Messages.ReloadSuccess), nil
}

// Set moves one calendar field of the host clock to value, keeping the
// others and the time of day.
func (h *Handler) Set(s Sender, field, value string) (string, error) {
	msgs := h.target.Config().Messages
	if !s.Admin {
		return greeting.Colorize(msgs.NoPermission), ErrPermission
	}

	field = strings.ToLower(field)
	if field != FieldDay && field != FieldMonth && field != FieldYear {
		return h.usage()
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return render(msgs.InvalidNumber, field, value, "", ""), fmt.Errorf("%q: %w", value, ErrInvalidNumber)
	}

	cal := h.target.Calendar()
	current := h.clock.FullTime()
	var next uint64
	switch field {
	case FieldDay:
		next, err = cal.WithDay(current, n)
	case FieldMonth:
		next, err = cal.WithMonth(current, n)
	case FieldYear:
		next, err = cal.WithYear(current, n)
	}
	if err != nil {
		lo, hi := bounds(cal, field)
		return render(msgs.OutOfRange, field, value, lo, hi), err
	}

	h.clock.SetFullTime(next)
	slog.Info("calendar set", "by", s.Name, "field", field, "value", n, "full_time", next)
	return render(msgs.SetSuccess, field, strconv.Itoa(n), "", ""), nil
}

func (h *Handler) usage() (string, error) {
	return greeting.Colorize(h.target.Config().Messages.Usage), ErrUsage
}

func bounds(cal *calendar.Config, field string) (string, string) {
	switch field {
	case FieldDay:
		return "1", strconv.Itoa(cal.DaysPerMonth)
	case FieldMonth:
		return "1", strconv.Itoa(calendar.MonthsPerYear)
	default:
		return strconv.Itoa(cal.StartYear), strconv.Itoa(cal.MaxYear())
	}
}

func render(tmpl, field, value, lo, hi string) string {
	r := strings.NewReplacer(
		"{field}", field,
		"{value}", value,
		"{min}", lo,
		"{max}", hi,
	)
	return greeting.Colorize(r.Replace(tmpl))
}
