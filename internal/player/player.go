// Package player holds the arena's player: hearts, grid hops and the
// overlap body hazards, projectiles and pickups react to.
package player

import (
	"time"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/overlap"
)

// HalfExtent is the player's hitbox half-size in cells.
const HalfExtent = 0.3

// Config bundles the player settings.
type Config struct {
	Health HealthConfig
	Mover  MoverConfig
	Start  grid.Cell
}

// Player composes health and movement.
type Player struct {
	*Health
	*Mover

	cellSize float64
}

// New creates a player on start.
func New(g Grid, cellSize float64, cfg Config) *Player {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Player{
		Health:   NewHealth(cfg.Health),
		Mover:    NewMover(g, cfg.Start, cfg.Mover),
		cellSize: cellSize,
	}
}

// Bounds implements overlap.Body.
func (p *Player) Bounds() cp.BB {
	half := HalfExtent * p.cellSize
	return overlap.Box(p.Position(), half, half)
}

// HandleInput starts a hop from the input axis.
func (p *Player) HandleInput(in core.InputFrame) {
	if p.Dead() {
		return
	}
	dx, dy := in.Axis()
	for _, d := range grid.Dirs {
		if ddx, ddy := d.Delta(); ddx == dx && ddy == dy && (dx != 0 || dy != 0) {
			p.Step(d)
			return
		}
	}
}

// Update advances health and movement.
func (p *Player) Update(dt time.Duration) {
	p.Health.Update(dt)
	p.Mover.Update(dt)
}
