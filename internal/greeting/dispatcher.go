package greeting

import (
	"math/rand"

	"github.com/talgya/almanac/internal/sampler"
)

// Sink delivers a rendered message to every connected participant.
// Delivery is fire-and-forget.
type Sink interface {
	Broadcast(msg string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(msg string)

// Broadcast calls f(msg).
func (f SinkFunc) Broadcast(msg string) { f(msg) }

// Dispatcher picks and broadcasts greetings. It is not safe for concurrent
// use; the herald calls it from the game loop only.
type Dispatcher struct {
	Catalog *Catalog
	Sink    Sink
	rng     *rand.Rand
}

// NewDispatcher creates a Dispatcher with its own random source.
func NewDispatcher(cat *Catalog, sink Sink, seed int64) *Dispatcher {
	return &Dispatcher{
		Catalog: cat,
		Sink:    sink,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Dispatch broadcasts one random message for key in category c. It returns the
// rendered message and whether anything was sent; a missing or empty pool
// sends nothing.
func (d *Dispatcher) Dispatch(c sampler.Category, key string) (string, bool) {
	msgs := d.Catalog.Messages(c, key)
	if len(msgs) == 0 {
		return "", false
	}

	msg := Colorize(msgs[d.rng.Intn(len(msgs))])
	if d.Sink != nil {
		d.Sink.Broadcast(msg)
	}
	return msg, true
}
