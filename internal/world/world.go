// Package world is a small simulated host: a day/night clock, noise-driven
// weather and a set of connected participants. It stands in for a real game
// server so the almanac can run on its own.
//
// A World is owned by the engine goroutine; it does no locking.
package world

import (
	"sort"

	"github.com/google/uuid"
)

// TicksPerDay matches the calendar's day length.
const TicksPerDay = 24000

// Participant is a connected player. Yaw is in degrees, 0 facing south.
type Participant struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Z    float64 `json:"z"`
	Yaw  float64 `json:"yaw"`
}

// World is the simulated host world.
type World struct {
	Name string

	fullTime uint64
	weather  *Weather

	participants map[string]*Participant
}

// New creates a world whose clock starts at fullTime.
func New(name string, cfg GenConfig, fullTime uint64) *World {
	w := &World{
		Name:         name,
		fullTime:     fullTime,
		weather:      NewWeather(cfg),
		participants: make(map[string]*Participant),
	}
	w.weather.Update(fullTime)
	return w
}

// RawTime returns the time of day, 0..23999.
func (w *World) RawTime() int64 {
	return int64(w.fullTime % TicksPerDay)
}

// FullTime returns the ticks elapsed since world creation.
func (w *World) FullTime() uint64 {
	return w.fullTime
}

// SetFullTime moves the clock. Weather follows the new time immediately.
func (w *World) SetFullTime(t uint64) {
	w.fullTime = t
	w.weather.Update(t)
}

// Step advances the clock by n ticks.
func (w *World) Step(n uint64) {
	w.fullTime += n
	w.weather.Update(w.fullTime)
}

// HasStorm reports whether precipitation is falling.
func (w *World) HasStorm() bool {
	return w.weather.Storm
}

// IsThundering reports whether lightning is active.
func (w *World) IsThundering() bool {
	return w.weather.Thunder
}

// ReferenceTemperature is the ground temperature at spawn.
func (w *World) ReferenceTemperature() float64 {
	return w.weather.TemperatureAt(0, 0, w.fullTime)
}

// TemperatureAt is the ground temperature at a position.
func (w *World) TemperatureAt(x, z float64) float64 {
	return w.weather.TemperatureAt(x, z, w.fullTime)
}

// Join adds a participant at spawn and returns it.
func (w *World) Join(name string) *Participant {
	p := &Participant{ID: uuid.NewString(), Name: name}
	if p.Name == "" {
		p.Name = "wanderer-" + p.ID[:8]
	}
	w.participants[p.ID] = p
	return p
}

// Leave removes a participant.
func (w *World) Leave(id string) {
	delete(w.participants, id)
}

// Move updates a participant's position and facing. It returns false for an
// unknown participant.
func (w *World) Move(id string, x, z, yaw float64) bool {
	p, ok := w.participants[id]
	if !ok {
		return false
	}
	p.X, p.Z, p.Yaw = x, z, yaw
	return true
}

// Participant looks up a participant by ID.
func (w *World) Participant(id string) (*Participant, bool) {
	p, ok := w.participants[id]
	return p, ok
}

// Participants returns every participant, ordered by name.
func (w *World) Participants() []Participant {
	out := make([]Participant, 0, len(w.participants))
	for _, p := range w.participants {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
