package projectile

import (
	"iter"
	"math"
	"math/rand"
	"slices"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/hazard"
	"github.com/vovakirdan/helltiles/internal/spawn"
)

// Track fires one projectile (or places one sweep) per call.
type Track interface {
	SpawnProjectile()
}

// Grid is what the tracks need from the grid model.
type Grid interface {
	EnumerateWalkableCells() iter.Seq[grid.Cell]
	IsWalkable(c grid.Cell) bool
	CellToWorldCenter(c grid.Cell) cp.Vector
	Bounds() grid.Bounds
}

// ArrowTrack launches arrows from one random walkable cell toward
// another.
type ArrowTrack struct {
	Grid  Grid
	Field *Field
	Spec  Spec
	Rand  *rand.Rand

	cells []grid.Cell
}

// Refresh drops the cached walkable cells. The next launch samples the
// grid again.
func (t *ArrowTrack) Refresh() { t.cells = nil }

func (t *ArrowTrack) SpawnProjectile() {
	if t.Grid == nil || t.Field == nil {
		return
	}
	if t.cells == nil {
		t.cells = slices.Collect(t.Grid.EnumerateWalkableCells())
	}
	if len(t.cells) < 2 {
		return
	}
	start := t.cells[t.Rand.Intn(len(t.cells))]
	if !t.Grid.IsWalkable(start) {
		// A tile broke since the cache was filled.
		t.Refresh()
		t.cells = slices.Collect(t.Grid.EnumerateWalkableCells())
		if len(t.cells) < 2 {
			return
		}
		start = t.cells[t.Rand.Intn(len(t.cells))]
	}
	end := t.cells[t.Rand.Intn(len(t.cells))]
	if end == start {
		end = end.Add(1, 0)
	}
	from, to := t.Grid.CellToWorldCenter(start), t.Grid.CellToWorldCenter(end)
	dir, ok := unit(from, to)
	if !ok {
		dir = FallbackRight
	}
	p, ok := t.Field.Spawn(from, t.Spec)
	if !ok {
		return
	}
	p.Initialise(from.Add(dir))
}

// EdgeArrowTrack fires a straight arrow from SpawnRadius away through a
// random cell whose X and Y lie in [MinCoord, MaxCoord].
type EdgeArrowTrack struct {
	Grid        Grid
	Field       *Field
	Spec        Spec
	Rand        *rand.Rand
	SpawnRadius float64
	MinCoord    int
	MaxCoord    int
}

func (t *EdgeArrowTrack) SpawnProjectile() {
	if t.Grid == nil || t.Field == nil {
		return
	}
	lo, hi := min(t.MinCoord, t.MaxCoord), max(t.MinCoord, t.MaxCoord)
	cell := grid.C(lo+t.Rand.Intn(hi-lo+1), lo+t.Rand.Intn(hi-lo+1))
	target := t.Grid.CellToWorldCenter(cell)
	dir := cp.ForAngle(t.Rand.Float64() * 2 * math.Pi)
	p, ok := t.Field.Spawn(target.Add(dir.Mult(t.SpawnRadius)), t.Spec)
	if !ok {
		return
	}
	p.Initialise(target)
}

// HomingTrack spawns homing projectiles around a target: on a circle of
// Radius around it, or in an Area-sized rectangle centred on Center,
// either on its perimeter or anywhere inside.
type HomingTrack struct {
	Target    Target
	Field     *Field
	Spec      Spec
	Rand      *rand.Rand
	Circle    bool
	Radius    float64
	Area      cp.Vector
	Center    cp.Vector
	Perimeter bool
}

func (t *HomingTrack) SpawnProjectile() {
	if t.Target == nil || t.Field == nil {
		return
	}
	p, ok := t.Field.Spawn(t.spawnPoint(), t.Spec)
	if !ok {
		return
	}
	p.InitialiseTracking(t.Target)
}

func (t *HomingTrack) spawnPoint() cp.Vector {
	if t.Circle {
		angle := t.Rand.Float64() * 2 * math.Pi
		return t.Target.Position().Add(cp.ForAngle(angle).Mult(t.Radius))
	}
	hx, hy := t.Area.X/2, t.Area.Y/2
	between := func(a float64) float64 { return -a + t.Rand.Float64()*2*a }
	var x, y float64
	if t.Perimeter {
		switch t.Rand.Intn(4) {
		case 0:
			x, y = between(hx), -hy
		case 1:
			x, y = between(hx), hy
		case 2:
			x, y = -hx, between(hy)
		default:
			x, y = hx, between(hy)
		}
	} else {
		x, y = between(hx), between(hy)
	}
	return t.Center.Add(cp.Vector{X: x, Y: y})
}

// SweepTrack places row sweeps through a manual coordinator. Rows and
// columns come from the allowed lists, or the layout centre when a list
// is empty.
type SweepTrack struct {
	Grid           Grid
	Sweeps         *spawn.Coordinator[*hazard.Hazard]
	AllowedRows    []int
	AllowedColumns []int
}

func (t *SweepTrack) SpawnProjectile() {
	if t.Sweeps == nil {
		return
	}
	t.Sweeps.TrySpawn()
}

// Place picks the anchor cell of the next sweep. It is the coordinator's
// placer.
func (t *SweepTrack) Place(rng *rand.Rand) (grid.Cell, bool) {
	if t.Grid == nil {
		return grid.Cell{}, false
	}
	b := t.Grid.Bounds()
	if b.W <= 0 || b.H <= 0 {
		return grid.Cell{}, false
	}
	center := b.Center()
	pick := func(allowed []int, fallback, lo, hi int) int {
		v := fallback
		if len(allowed) > 0 {
			v = allowed[rng.Intn(len(allowed))]
		}
		return min(max(v, lo), hi)
	}
	last := b.Max()
	return grid.C(
		pick(t.AllowedColumns, center.X, b.Min.X, last.X),
		pick(t.AllowedRows, center.Y, b.Min.Y, last.Y),
	), true
}

// FiresLeft reports whether a sweep anchored at c travels right to left.
// Anchors on the non-negative side of the origin fire left.
func FiresLeft(c grid.Cell) bool { return c.X >= 0 }
