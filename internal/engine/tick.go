// Package engine provides the fixed-interval game loop and the scheduling
// port the almanac's periodic work is registered on.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Scheduler runs a unit of work every period of game time.
type Scheduler interface {
	Every(period time.Duration, name string, fn func(tick uint64))
}

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("engine stopped")

type job struct {
	name  string
	every uint64 // in ticks
	fn    func(tick uint64)
}

type call struct {
	fn   func()
	done chan error
}

// Engine drives the game loop. Jobs and Do calls all run on the goroutine
// inside Run, so the state they touch needs no locking.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval

	// OnTick runs every tick before any job, e.g. to advance the world clock.
	OnTick func(tick uint64)

	jobs     []job
	calls    chan call
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewEngine creates an engine ticking every interval at speed 1.
func NewEngine(interval time.Duration) *Engine {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Engine{
		Speed:    1.0,
		Interval: interval,
		calls:    make(chan call),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Every registers fn to run every period of game time, rounded to whole
// ticks and never more often than once per tick. Register jobs before Run,
// or from inside Do.
func (e *Engine) Every(period time.Duration, name string, fn func(tick uint64)) {
	every := uint64(1)
	if n := uint64((period + e.Interval/2) / e.Interval); n > 1 {
		every = n
	}
	e.jobs = append(e.jobs, job{name: name, every: every, fn: fn})
	slog.Debug("job scheduled", "job", name, "period", period, "every_ticks", every)
}

// Run starts the loop. Blocks until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	slog.Info("engine started", "tick", e.Tick, "interval", e.Interval, "speed", e.Speed)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped", "tick", e.Tick, "reason", ctx.Err())
			return
		case <-e.stop:
			slog.Info("engine stopped", "tick", e.Tick)
			return
		case c := <-e.calls:
			c.done <- e.runCall(c.fn)
		case <-timer.C:
			if e.Speed <= 0 {
				// Paused, check again shortly.
				timer.Reset(100 * time.Millisecond)
				continue
			}
			start := time.Now()
			e.step()
			target := time.Duration(float64(e.Interval) / e.Speed)
			timer.Reset(max(target-time.Since(start), 0))
		}
	}
}

// Stop halts the loop.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Do runs fn on the loop goroutine between ticks and waits for it to finish.
func (e *Engine) Do(ctx context.Context, fn func()) error {
	c := call{fn: fn, done: make(chan error, 1)}
	select {
	case e.calls <- c:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrStopped
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// step advances the loop by one tick.
func (e *Engine) step() {
	e.Tick++

	if e.OnTick != nil {
		e.safely("on_tick", func() { e.OnTick(e.Tick) })
	}
	for _, j := range e.jobs {
		if e.Tick%j.every == 0 {
			e.safely(j.name, func() { j.fn(e.Tick) })
		}
	}
}

// safely runs fn, logging a panic instead of letting it end the loop.
func (e *Engine) safely(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "job", name, "tick", e.Tick, "panic", r)
		}
	}()
	fn()
}

func (e *Engine) runCall(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine call panicked: %v", r)
			slog.Error("engine call panicked", "tick", e.Tick, "panic", r)
		}
	}()
	fn()
	return nil
}
