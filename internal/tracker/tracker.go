// Package tracker remembers the last key seen per category and reports
// transitions between them.
package tracker

import (
	"github.com/talgya/almanac/internal/sampler"
)

// Unset is the stored key of a category that has not been observed since the
// last reset. No sampled key is ever empty.
const Unset = ""

// State holds the last observed key per category.
type State struct {
	last map[sampler.Category]string
}

// NewState returns a State with every category unset.
func NewState() *State {
	return &State{last: make(map[sampler.Category]string)}
}

// Last returns the stored key for c.
func (s *State) Last(c sampler.Category) string {
	return s.last[c]
}

// Reset returns every category to Unset.
func (s *State) Reset() {
	clear(s.last)
}

// Options controls how disabled categories are handled.
type Options struct {
	// TrackDisabled keeps recording keys for disabled categories without firing,
	// so re-enabling a category does not announce a stale change.
	TrackDisabled bool
}

// Detector compares sampled keys against a State.
type Detector struct {
	State *State
	Opts  Options
}

// NewDetector creates a Detector over a fresh State.
func NewDetector(opts Options) *Detector {
	return &Detector{State: NewState(), Opts: opts}
}

// Observe records key for c and reports whether it is a transition.
// A transition needs a non-empty key that differs from a stored key which is
// itself set, so the first observation after a reset never fires.
// Disabled categories are neither compared nor tracked unless TrackDisabled is set.
func (d *Detector) Observe(c sampler.Category, key string, enabled bool) bool {
	if !enabled && !d.Opts.TrackDisabled {
		return false
	}
	if key == Unset {
		return false
	}

	prev := d.State.last[c]
	d.State.last[c] = key

	return enabled && prev != Unset && prev != key
}

// Reset forgets every observed key.
func (d *Detector) Reset() {
	d.State.Reset()
}
