package broadcast

import (
	"github.com/talgya/almanac/internal/greeting"
)

// Fanout delivers each message to every sink in order.
type Fanout []greeting.Sink

// Broadcast implements greeting.Sink.
func (f Fanout) Broadcast(msg string) {
	for _, s := range f {
		s.Broadcast(msg)
	}
}
