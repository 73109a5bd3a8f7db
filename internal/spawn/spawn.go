// Package spawn places hazards and pickups on free walkable cells on a
// timer. One Coordinator exists per kind; it owns its instances, keyed by
// cell, so two instances of the same kind never share a cell.
package spawn

import (
	"io"
	"iter"
	"maps"
	"math/rand"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/helltiles/internal/grid"
)

// MinInterval is the floor for every spawn interval.
const MinInterval = 10 * time.Millisecond

// Instance is anything a coordinator can own.
type Instance interface {
	comparable
	Update(dt time.Duration)
	Destroy()
}

// Grid is the part of the grid model a coordinator samples from.
type Grid interface {
	EnumerateWalkableCells() iter.Seq[grid.Cell]
	HasTile(c grid.Cell) bool
}

// Factory builds an instance at cell. The coordinator is passed so the
// instance can report its despawn back to it. Returning false aborts the
// placement.
type Factory[T Instance] func(c *Coordinator[T], cell grid.Cell) (T, bool)

// Placer picks the cell for the next spawn instead of sampling the walkable
// cache.
type Placer func(rng *rand.Rand) (grid.Cell, bool)

// Config controls the spawn timer.
type Config struct {
	Label        string
	InitialDelay time.Duration
	Interval     time.Duration
	// IntervalMax > Interval draws every interval uniformly from
	// [Interval, IntervalMax).
	IntervalMax time.Duration
	MaxActive   int
	// Manual coordinators never spawn on their own; see TrySpawn.
	Manual bool
}

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	logger *log.Logger
	rng    *rand.Rand
	placer Placer
}

// WithLogger sets the logger used for warnings.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRand sets the random source used for sampling and intervals.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithPlacer replaces uniform sampling of walkable cells.
func WithPlacer(p Placer) Option {
	return func(o *options) { o.placer = p }
}

// Coordinator owns every live instance of one kind.
type Coordinator[T Instance] struct {
	cfg     Config
	grid    Grid
	factory Factory[T]
	logger  *log.Logger
	rng     *rand.Rand
	placer  Placer

	active   map[grid.Cell]T
	cells    []grid.Cell
	stale    bool
	timer    time.Duration
	disabled bool
}

// New creates a coordinator. A nil grid or factory is reported once and
// leaves the coordinator permanently disabled.
func New[T Instance](cfg Config, g Grid, factory Factory[T], opts ...Option) *Coordinator[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.MaxActive <= 0 {
		cfg.MaxActive = 1
	}
	cfg.Interval = max(cfg.Interval, MinInterval)

	c := &Coordinator[T]{
		cfg:     cfg,
		grid:    g,
		factory: factory,
		logger:  o.logger,
		rng:     o.rng,
		placer:  o.placer,
		active:  make(map[grid.Cell]T),
	}
	c.timer = c.firstWait()
	if g == nil || factory == nil {
		c.disabled = true
		c.logger.Warn("spawner disabled: missing grid or factory", "kind", cfg.Label)
	}
	return c
}

func (c *Coordinator[T]) Label() string  { return c.cfg.Label }
func (c *Coordinator[T]) Disabled() bool { return c.disabled }
func (c *Coordinator[T]) Active() int    { return len(c.active) }
func (c *Coordinator[T]) MaxActive() int { return c.cfg.MaxActive }

// Occupied reports whether an instance of this kind holds cell.
func (c *Coordinator[T]) Occupied(cell grid.Cell) bool {
	_, ok := c.active[cell]
	return ok
}

// Get returns the instance at cell.
func (c *Coordinator[T]) Get(cell grid.Cell) (T, bool) {
	inst, ok := c.active[cell]
	return inst, ok
}

// Each calls fn for every instance in cell order.
func (c *Coordinator[T]) Each(fn func(grid.Cell, T)) {
	for _, cell := range c.sortedCells() {
		fn(cell, c.active[cell])
	}
}

// SpawnInterval returns the recurring interval.
func (c *Coordinator[T]) SpawnInterval() time.Duration { return c.cfg.Interval }

// SetSpawnInterval changes the recurring interval, never below
// MinInterval. A random range keeps its width.
func (c *Coordinator[T]) SetSpawnInterval(d time.Duration) {
	width := c.cfg.IntervalMax - c.cfg.Interval
	c.cfg.Interval = max(d, MinInterval)
	if width > 0 {
		c.cfg.IntervalMax = c.cfg.Interval + width
	}
}

// Timer returns the time left until the next spawn attempt.
func (c *Coordinator[T]) Timer() time.Duration { return c.timer }

// Update ticks every instance, then the spawn timer. The timer only runs
// while the coordinator is below its cap.
func (c *Coordinator[T]) Update(dt time.Duration) {
	if c.disabled {
		return
	}
	for _, cell := range c.sortedCells() {
		// An earlier instance may have despawned this one.
		if inst, ok := c.active[cell]; ok {
			inst.Update(dt)
		}
	}

	if c.cfg.Manual || len(c.active) >= c.cfg.MaxActive {
		return
	}
	c.timer -= dt
	if c.timer > 0 {
		return
	}
	c.TrySpawn()
	c.timer = c.nextInterval()
}

// firstWait is the initial delay. A random-range coordinator without one
// draws its first wait from the range.
func (c *Coordinator[T]) firstWait() time.Duration {
	if c.cfg.InitialDelay <= 0 && c.cfg.IntervalMax > c.cfg.Interval {
		return c.nextInterval()
	}
	return max(c.cfg.InitialDelay, 0)
}

func (c *Coordinator[T]) nextInterval() time.Duration {
	if c.cfg.IntervalMax <= c.cfg.Interval {
		return c.cfg.Interval
	}
	span := int64(c.cfg.IntervalMax - c.cfg.Interval)
	return max(c.cfg.Interval+time.Duration(c.rng.Int63n(span)), MinInterval)
}

// TrySpawn places one instance if a free cell can be found. It reports
// whether an instance was created. Failing to find a cell is not an error.
func (c *Coordinator[T]) TrySpawn() bool {
	if c.disabled || len(c.active) >= c.cfg.MaxActive {
		return false
	}
	if c.placer != nil {
		cell, ok := c.placer(c.rng)
		if !ok || c.Occupied(cell) {
			return false
		}
		return c.place(cell)
	}

	if len(c.cells) == 0 || c.stale {
		c.refreshCells()
		if len(c.cells) == 0 {
			return false
		}
	}
	for range len(c.cells) {
		cell := c.cells[c.rng.Intn(len(c.cells))]
		if c.Occupied(cell) || !c.grid.HasTile(cell) {
			continue
		}
		return c.place(cell)
	}
	// Every sample hit an occupied or emptied cell; resample the grid next
	// time in case the layout changed.
	c.stale = true
	return false
}

func (c *Coordinator[T]) place(cell grid.Cell) bool {
	inst, ok := c.factory(c, cell)
	if !ok {
		return false
	}
	c.active[cell] = inst
	return true
}

func (c *Coordinator[T]) refreshCells() {
	c.cells = slices.Collect(c.grid.EnumerateWalkableCells())
	c.stale = false
}

// HandleDespawn removes the entry at cell only when it still holds inst.
// Late or duplicate reports are ignored.
func (c *Coordinator[T]) HandleDespawn(cell grid.Cell, inst T) bool {
	existing, ok := c.active[cell]
	if !ok || existing != inst {
		return false
	}
	delete(c.active, cell)
	return true
}

// DestroyAll destroys every instance but leaves the registry as is.
func (c *Coordinator[T]) DestroyAll() {
	for _, cell := range c.sortedCells() {
		if inst, ok := c.active[cell]; ok {
			inst.Destroy()
		}
	}
}

// ClearAll destroys every instance and empties the registry.
func (c *Coordinator[T]) ClearAll() {
	c.DestroyAll()
	clear(c.active)
}

func (c *Coordinator[T]) sortedCells() []grid.Cell {
	return slices.SortedFunc(maps.Keys(c.active), func(a, b grid.Cell) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
}
