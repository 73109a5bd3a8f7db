package helltiles

import (
	"math"

	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/hazard"
	"github.com/vovakirdan/helltiles/internal/pickup"
	"github.com/vovakirdan/helltiles/internal/projectile"
)

// Snapshot is a flat view of the arena for determinism tests and replays.
// Uses primitive types only for stable serialization.
type Snapshot struct {
	Tick      uint64
	ElapsedMs int64
	State     string
	Mode      int

	Hearts  int
	Hits    int
	Coins   int
	PlayerX int // cell
	PlayerY int
	PosX    int // world position in thousandths of a cell
	PosY    int

	// Each hazard is 5 ints: Kind, X, Y, Phase, Hits
	HazardData []int
	// Each pickup is 3 ints: Kind, X, Y
	PickupData []int
	// Each projectile is 3 ints: X, Y (thousandths), Tracking
	ProjectileData []int

	ProjectilesActive int
	Resets            int
	// Cells whose tile differs from the original layout, as X, Y pairs
	ChangedTiles []int
	Pending      int
}

// Snapshot returns the current arena state.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:      g.ticks,
		ElapsedMs: g.elapsed.Milliseconds(),
		State:     g.state,
		Mode:      int(g.mode),

		Hearts:  g.player.Current(),
		Hits:    g.player.Hits(),
		Coins:   g.wallet.coins,
		PlayerX: g.player.Cell().X,
		PlayerY: g.player.Cell().Y,
		PosX:    milli(g.player.Position().X),
		PosY:    milli(g.player.Position().Y),

		ProjectilesActive: g.registry.Active(),
		Resets:            g.reset.Runs(),
		Pending:           g.sched.Pending(),
	}

	for _, c := range g.hazardCoordinators() {
		c.Each(func(cell grid.Cell, h *hazard.Hazard) {
			snap.HazardData = append(snap.HazardData, int(h.Kind()), cell.X, cell.Y, int(h.Phase()), h.Hits())
		})
	}
	for _, c := range g.pickupCoordinators() {
		c.Each(func(cell grid.Cell, p *pickup.Pickup) {
			snap.PickupData = append(snap.PickupData, int(p.Kind()), cell.X, cell.Y)
		})
	}
	g.field.Each(func(p *projectile.Projectile) {
		tracking := 0
		if p.Tracking() {
			tracking = 1
		}
		snap.ProjectileData = append(snap.ProjectileData, milli(p.Position().X), milli(p.Position().Y), tracking)
	})

	b := g.grid.Bounds()
	for y := b.Min.Y; y < b.Min.Y+b.H; y++ {
		for x := b.Min.X; x < b.Min.X+b.W; x++ {
			c := grid.C(x, y)
			if g.grid.Tile(c) != g.grid.OriginalTile(c) {
				snap.ChangedTiles = append(snap.ChangedTiles, x, y)
			}
		}
	}
	return snap
}

func milli(v float64) int {
	return int(math.Round(v * 1000))
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := snap.Tick
	h = h*31 + uint64(snap.ElapsedMs) //#nosec G115 -- hash computation
	for _, r := range snap.State {
		h = h*31 + uint64(r) //#nosec G115 -- hash computation
	}
	for _, v := range []int{
		snap.Mode, snap.Hearts, snap.Hits, snap.Coins,
		snap.PlayerX, snap.PlayerY, snap.PosX, snap.PosY,
		snap.ProjectilesActive, snap.Resets, snap.Pending,
	} {
		h = h*31 + uint64(v) //#nosec G115 -- hash computation
	}
	for _, data := range [][]int{snap.HazardData, snap.PickupData, snap.ProjectileData, snap.ChangedTiles} {
		h = h*31 + uint64(len(data)) //#nosec G115 -- hash computation
		for _, v := range data {
			h = h*31 + uint64(v) //#nosec G115 -- hash computation
		}
	}
	return h
}
