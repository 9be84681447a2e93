// Package metrics exposes almanac counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "almanac"

// Metrics holds every almanac collector on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ticks          prometheus.Counter
	skippedTicks   prometheus.Counter
	tickDuration   prometheus.Histogram
	transitions    *prometheus.CounterVec
	broadcasts     *prometheus.CounterVec
	categoryErrors *prometheus.CounterVec
	reloads        prometheus.Counter
	participants   prometheus.Gauge
	droppedWrites  *prometheus.CounterVec
}

// New creates and registers all collectors, plus Go runtime metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "herald_ticks_total",
			Help: "Herald ticks that sampled the world.",
		}),
		skippedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "herald_skipped_ticks_total",
			Help: "Herald ticks skipped because no reference world was available.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "herald_tick_duration_seconds",
			Help:    "Time spent sampling, detecting and dispatching in one tick.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "transitions_total",
			Help: "Detected key transitions by category.",
		}, []string{"category"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "broadcasts_total",
			Help: "Greetings broadcast by category.",
		}, []string{"category"}),
		categoryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "category_errors_total",
			Help: "Category processing failures recovered during a tick.",
		}, []string{"category"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "reloads_total",
			Help: "Configuration reloads applied.",
		}),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "participants",
			Help: "Connected chat participants.",
		}),
		droppedWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "dropped_writes_total",
			Help: "Messages dropped because a sink queue was full.",
		}, []string{"sink"}),
	}

	m.registry.MustRegister(
		m.ticks, m.skippedTicks, m.tickDuration,
		m.transitions, m.broadcasts, m.categoryErrors,
		m.reloads, m.participants, m.droppedWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TickObserved counts a completed herald tick and its duration.
func (m *Metrics) TickObserved(d time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
}

// TickSkipped counts a tick skipped for lack of a world.
func (m *Metrics) TickSkipped() {
	if m == nil {
		return
	}
	m.skippedTicks.Inc()
}

// Transition counts a detected change in category.
func (m *Metrics) Transition(category string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(category).Inc()
}

// Broadcast counts a greeting sent for category.
func (m *Metrics) Broadcast(category string) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(category).Inc()
}

// CategoryFailed counts a category that panicked during a tick.
func (m *Metrics) CategoryFailed(category string) {
	if m == nil {
		return
	}
	m.categoryErrors.WithLabelValues(category).Inc()
}

// Reloaded counts an applied configuration reload.
func (m *Metrics) Reloaded() {
	if m == nil {
		return
	}
	m.reloads.Inc()
}

// SetParticipants records how many participants are joined.
func (m *Metrics) SetParticipants(n int) {
	if m == nil {
		return
	}
	m.participants.Set(float64(n))
}

// Dropped counts a message sink discarded because it was full.
func (m *Metrics) Dropped(sink string) {
	if m == nil {
		return
	}
	m.droppedWrites.WithLabelValues(sink).Inc()
}
