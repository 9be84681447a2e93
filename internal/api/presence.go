package api

import (
	"context"
	"fmt"

	"github.com/talgya/almanac/internal/engine"
	"github.com/talgya/almanac/internal/metrics"
	"github.com/talgya/almanac/internal/world"
)

// Presence joins websocket clients to the world on the engine goroutine.
type Presence struct {
	Eng     *engine.Engine
	World   *world.World
	Metrics *metrics.Metrics
}

// Join adds a participant and returns its ID.
func (p *Presence) Join(ctx context.Context, name string) (string, error) {
	var id string
	err := p.Eng.Do(ctx, func() {
		id = p.World.Join(name).ID
		p.Metrics.SetParticipants(len(p.World.Participants()))
	})
	return id, err
}

// Move updates where a participant stands and faces.
func (p *Presence) Move(ctx context.Context, id string, x, z, yaw float64) error {
	var found bool
	if err := p.Eng.Do(ctx, func() { found = p.World.Move(id, x, z, yaw) }); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("participant %s not found", id)
	}
	return nil
}

// Leave removes a participant.
func (p *Presence) Leave(ctx context.Context, id string) {
	p.Eng.Do(ctx, func() {
		p.World.Leave(id)
		p.Metrics.SetParticipants(len(p.World.Participants()))
	})
}
