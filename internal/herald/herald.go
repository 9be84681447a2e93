// Package herald runs the almanac tick: sample the world, detect key
// transitions per category and broadcast a greeting for each one.
package herald

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/almanac/internal/calendar"
	"github.com/talgya/almanac/internal/config"
	"github.com/talgya/almanac/internal/engine"
	"github.com/talgya/almanac/internal/greeting"
	"github.com/talgya/almanac/internal/metrics"
	"github.com/talgya/almanac/internal/sampler"
	"github.com/talgya/almanac/internal/tracker"
)

// WorldSource returns the reference world, or false when none is loaded.
type WorldSource func() (sampler.World, bool)

// Transition is a greeting that was fired.
type Transition struct {
	Category sampler.Category `json:"category"`
	From     string           `json:"from"`
	Key      string           `json:"key"`
	Message  string           `json:"message"`
	Sent     bool             `json:"sent"`
	Tick     uint64           `json:"tick"`
	At       time.Time        `json:"at"`
}

// Recorder receives every transition after dispatch.
type Recorder interface {
	Record(t Transition)
}

// Herald owns the observed state and the current configuration. It is not
// safe for concurrent use; run it on the engine goroutine.
type Herald struct {
	source     WorldSource
	cfg        *config.Config
	cal        *calendar.Config
	detector   *tracker.Detector
	dispatcher *greeting.Dispatcher
	recorders  []Recorder
	metrics    *metrics.Metrics

	last    sampler.Snapshot
	hasLast bool
	now     func() time.Time
}

// New creates a Herald broadcasting to sink.
func New(cfg *config.Config, source WorldSource, sink greeting.Sink, seed int64) *Herald {
	return &Herald{
		source:     source,
		cfg:        cfg,
		cal:        cfg.CalendarConfig(),
		detector:   tracker.NewDetector(tracker.Options{TrackDisabled: cfg.Tracking.TrackWhileDisabled}),
		dispatcher: greeting.NewDispatcher(cfg.Catalog(), sink, seed),
		now:        time.Now,
	}
}

// WithMetrics attaches a metrics sink.
func (h *Herald) WithMetrics(m *metrics.Metrics) *Herald {
	h.metrics = m
	return h
}

// AddRecorder registers r to receive transitions.
func (h *Herald) AddRecorder(r Recorder) {
	h.recorders = append(h.recorders, r)
}

// Start registers the herald tick on s at the configured interval.
func (h *Herald) Start(s engine.Scheduler) {
	s.Every(h.cfg.Scheduler.Interval, "herald", func(tick uint64) { h.Tick(tick) })
}

// Config returns the active configuration.
func (h *Herald) Config() *config.Config { return h.cfg }

// Calendar returns the active calendar constants.
func (h *Herald) Calendar() *calendar.Config { return h.cal }

// State returns the observed keys.
func (h *Herald) State() *tracker.State { return h.detector.State }

// LastSnapshot returns the most recent sample, if any tick has sampled yet.
func (h *Herald) LastSnapshot() (sampler.Snapshot, bool) {
	return h.last, h.hasLast
}

// Tick samples the world once and processes every category in order.
// It returns the transitions it fired.
func (h *Herald) Tick(tick uint64) []Transition {
	w, ok := h.source()
	if !ok || w == nil {
		h.metrics.TickSkipped()
		return nil
	}

	start := time.Now()
	snap := sampler.Sample(w, h.cal)
	h.last, h.hasLast = snap, true

	var fired []Transition
	for _, c := range sampler.Categories {
		if t, ok := h.process(c, snap, tick); ok {
			fired = append(fired, t)
		}
	}
	h.metrics.TickObserved(time.Since(start))
	return fired
}

// process handles one category. A panic here is logged and only skips this
// category for this tick.
func (h *Herald) process(c sampler.Category, snap sampler.Snapshot, tick uint64) (t Transition, fired bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("category processing failed", "category", c, "tick", tick, "panic", fmt.Sprint(r))
			h.metrics.CategoryFailed(string(c))
			t, fired = Transition{}, false
		}
	}()

	key := snap.Key(c)
	prev := h.detector.State.Last(c)
	if !h.detector.Observe(c, key, h.cfg.Enabled(c)) {
		return Transition{}, false
	}
	h.metrics.Transition(string(c))

	msg, sent := h.dispatcher.Dispatch(c, key)
	t = Transition{
		Category: c,
		From:     prev,
		Key:      key,
		Message:  msg,
		Sent:     sent,
		Tick:     tick,
		At:       h.now(),
	}
	if sent {
		h.metrics.Broadcast(string(c))
		slog.Info("greeting sent", "category", c, "from", prev, "key", key, "date", snap.Date.String())
	} else {
		slog.Debug("transition without greeting", "category", c, "from", prev, "key", key)
	}
	for _, r := range h.recorders {
		r.Record(t)
	}
	return t, true
}

// Reload swaps in cfg and forgets every observed key, so the next tick
// cannot fire on stale state.
func (h *Herald) Reload(cfg *config.Config) {
	if cfg.Scheduler.Interval != h.cfg.Scheduler.Interval {
		slog.Warn("scheduler interval change applies after restart",
			"current", h.cfg.Scheduler.Interval, "configured", cfg.Scheduler.Interval)
	}
	h.cfg = cfg
	h.cal = cfg.CalendarConfig()
	h.dispatcher.Catalog = cfg.Catalog()
	h.detector.Opts.TrackDisabled = cfg.Tracking.TrackWhileDisabled
	h.detector.Reset()
	h.metrics.Reloaded()
	slog.Info("herald reloaded",
		"days_per_month", h.cal.DaysPerMonth,
		"start_year", h.cal.StartYear,
		"seasons", len(h.cal.SeasonMonths),
	)
}
