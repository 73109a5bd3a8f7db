package spawn

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/hazard"
)

const tick = 100 * time.Millisecond

type fakeInstance struct {
	cell      grid.Cell
	ticks     int
	destroyed int
	onUpdate  func()
}

func (f *fakeInstance) Update(time.Duration) {
	f.ticks++
	if f.onUpdate != nil {
		f.onUpdate()
	}
}

func (f *fakeInstance) Destroy() { f.destroyed++ }

func fakeFactory(made *[]*fakeInstance) Factory[*fakeInstance] {
	return func(_ *Coordinator[*fakeInstance], cell grid.Cell) (*fakeInstance, bool) {
		inst := &fakeInstance{cell: cell}
		*made = append(*made, inst)
		return inst, true
	}
}

func TestTimerInitialDelayThenInterval(t *testing.T) {
	var made []*fakeInstance
	c := New(Config{Label: "spike", InitialDelay: 400 * time.Millisecond, Interval: time.Second, MaxActive: 5},
		grid.Filled(5, 5, "floor"), fakeFactory(&made), WithSeed(1))

	for range 3 {
		c.Update(tick)
	}
	if len(made) != 0 {
		t.Fatal("spawned before the initial delay")
	}
	c.Update(tick)
	if len(made) != 1 {
		t.Fatalf("spawned %d after the initial delay, expected 1", len(made))
	}
	for range 9 {
		c.Update(tick)
	}
	if len(made) != 1 {
		t.Fatal("spawned before the interval elapsed")
	}
	c.Update(tick)
	if len(made) != 2 {
		t.Errorf("spawned %d after one interval, expected 2", len(made))
	}
}

func TestTimerPausedAtCap(t *testing.T) {
	var made []*fakeInstance
	c := New(Config{Interval: time.Second, MaxActive: 1}, grid.Filled(3, 3, "floor"), fakeFactory(&made), WithSeed(2))

	c.Update(tick)
	if c.Active() != 1 {
		t.Fatalf("Active() = %d, expected 1", c.Active())
	}
	timer := c.Timer()
	for range 50 {
		c.Update(tick)
	}
	if c.Timer() != timer {
		t.Errorf("timer moved from %v to %v while at cap", timer, c.Timer())
	}
	if made[0].ticks != 50 {
		t.Errorf("instance ticked %d times, expected 50", made[0].ticks)
	}

	// Freeing the slot resumes the countdown where it stopped.
	c.HandleDespawn(made[0].cell, made[0])
	for range 9 {
		c.Update(tick)
	}
	if len(made) != 1 {
		t.Fatal("respawned too early")
	}
	c.Update(tick)
	if len(made) != 2 {
		t.Error("expected a respawn once the interval elapsed")
	}
}

func TestCellExclusivityPerKind(t *testing.T) {
	var made []*fakeInstance
	g := grid.Filled(3, 3, "floor")
	c := New(Config{Interval: time.Second, MaxActive: 100, Manual: true}, g, fakeFactory(&made), WithSeed(3))

	for range 30 {
		c.TrySpawn()
	}
	if c.Active() > 9 {
		t.Fatalf("Active() = %d on a 3x3 grid", c.Active())
	}
	seen := make(map[grid.Cell]bool)
	c.Each(func(cell grid.Cell, inst *fakeInstance) {
		if seen[cell] {
			t.Errorf("cell %v occupied twice", cell)
		}
		seen[cell] = true
		if inst.cell != cell {
			t.Errorf("instance for %v registered at %v", inst.cell, cell)
		}
	})
	if c.TrySpawn() && c.Active() > 9 {
		t.Error("full grid should reject further spawns")
	}
}

func TestSkipsCellsWithoutTile(t *testing.T) {
	var made []*fakeInstance
	g := grid.Filled(2, 1, "floor")
	c := New(Config{MaxActive: 5, Manual: true}, g, fakeFactory(&made), WithSeed(4))

	// Cache the walkable cells, then erase one tile behind the cache.
	if !c.TrySpawn() {
		t.Fatal("first spawn failed")
	}
	free := grid.C(0, 0)
	if c.Occupied(free) {
		free = grid.C(1, 0)
	}
	g.SetTile(free, grid.NoTile)

	if c.TrySpawn() {
		t.Error("spawned on a cell with no tile")
	}
	if c.Occupied(free) {
		t.Error("empty cell must not be occupied")
	}
}

func TestNoWalkableCellsIsSilent(t *testing.T) {
	var made []*fakeInstance
	g := grid.Filled(3, 3, grid.NoTile)
	c := New(Config{Interval: tick, MaxActive: 2}, g, fakeFactory(&made))

	for range 10 {
		c.Update(tick)
	}
	if len(made) != 0 || c.Disabled() {
		t.Error("an empty grid should be a silent no-op")
	}
}

func TestMissingCollaboratorsDisable(t *testing.T) {
	var made []*fakeInstance
	noGrid := New[*fakeInstance](Config{Label: "spike"}, nil, fakeFactory(&made))
	noFactory := New[*fakeInstance](Config{Label: "spike"}, grid.Filled(2, 2, "floor"), nil)

	for _, c := range []*Coordinator[*fakeInstance]{noGrid, noFactory} {
		if !c.Disabled() {
			t.Error("expected the coordinator to be disabled")
		}
		c.Update(time.Hour)
		if c.TrySpawn() || c.Active() != 0 {
			t.Error("disabled coordinator must not spawn")
		}
	}
}

func TestHandleDespawnIdentityGuard(t *testing.T) {
	var made []*fakeInstance
	c := New(Config{MaxActive: 1, Manual: true}, grid.Filled(1, 1, "floor"), fakeFactory(&made), WithSeed(5))
	c.TrySpawn()
	cell := grid.C(0, 0)

	stranger := &fakeInstance{cell: cell}
	if c.HandleDespawn(cell, stranger) {
		t.Error("a different instance must not remove the entry")
	}
	if c.HandleDespawn(grid.C(4, 4), made[0]) {
		t.Error("a missing cell must be ignored")
	}
	if !c.HandleDespawn(cell, made[0]) {
		t.Error("the owning instance should remove its entry")
	}
	if c.HandleDespawn(cell, made[0]) {
		t.Error("a duplicate despawn must be ignored")
	}
}

func TestInstanceDespawningAnotherDuringUpdate(t *testing.T) {
	var made []*fakeInstance
	c := New(Config{MaxActive: 2, Manual: true}, grid.Filled(2, 1, "floor"), fakeFactory(&made), WithSeed(6))
	c.TrySpawn()
	c.TrySpawn()
	if c.Active() != 2 {
		t.Fatalf("Active() = %d, expected 2", c.Active())
	}
	first, second := made[0], made[1]
	if second.cell.Less(first.cell) {
		first, second = second, first
	}
	first.onUpdate = func() { c.HandleDespawn(second.cell, second) }

	c.Update(tick)
	if second.ticks != 0 {
		t.Error("despawned instance should not be ticked")
	}
	if c.Active() != 1 {
		t.Errorf("Active() = %d, expected 1", c.Active())
	}
}

func TestClearAllAndDestroyAll(t *testing.T) {
	var made []*fakeInstance
	c := New(Config{MaxActive: 3, Manual: true}, grid.Filled(3, 3, "floor"), fakeFactory(&made), WithSeed(7))
	c.ClearAll()

	for range 3 {
		c.TrySpawn()
	}
	c.DestroyAll()
	if c.Active() != 3 {
		t.Error("DestroyAll must leave the registry alone")
	}
	c.ClearAll()
	c.ClearAll()
	if c.Active() != 0 {
		t.Errorf("Active() = %d after ClearAll", c.Active())
	}
	for _, inst := range made {
		if inst.destroyed != 2 {
			t.Errorf("instance destroyed %d times, expected once per call that saw it", inst.destroyed)
		}
	}
}

func TestSetSpawnIntervalFloor(t *testing.T) {
	c := New(Config{Interval: time.Second, IntervalMax: 3 * time.Second}, grid.Filled(1, 1, "floor"), fakeFactory(new([]*fakeInstance)))
	c.SetSpawnInterval(time.Millisecond)
	if c.SpawnInterval() != MinInterval {
		t.Errorf("SpawnInterval() = %v, expected %v", c.SpawnInterval(), MinInterval)
	}
	c.SetSpawnInterval(2 * time.Second)
	if c.SpawnInterval() != 2*time.Second {
		t.Errorf("SpawnInterval() = %v", c.SpawnInterval())
	}
}

func TestRandomIntervalRange(t *testing.T) {
	c := New(Config{Interval: time.Second, IntervalMax: 2 * time.Second}, grid.Filled(1, 1, "floor"),
		fakeFactory(new([]*fakeInstance)), WithRand(rand.New(rand.NewSource(8))))
	for range 100 {
		d := c.nextInterval()
		if d < time.Second || d >= 2*time.Second {
			t.Fatalf("interval %v outside [1s, 2s)", d)
		}
	}
}

func TestPlacer(t *testing.T) {
	var made []*fakeInstance
	row := grid.C(0, 2)
	c := New(Config{MaxActive: 2, Manual: true}, grid.Filled(5, 5, "floor"), fakeFactory(&made),
		WithPlacer(func(*rand.Rand) (grid.Cell, bool) { return row, true }))

	if !c.TrySpawn() || !c.Occupied(row) {
		t.Fatal("placer cell should be used")
	}
	if c.TrySpawn() {
		t.Error("placer cell already occupied")
	}
}

func TestSameSeedSamePlacements(t *testing.T) {
	run := func() []grid.Cell {
		var made []*fakeInstance
		c := New(Config{MaxActive: 10, Manual: true}, grid.Filled(6, 6, "floor"), fakeFactory(&made), WithSeed(42))
		for range 10 {
			c.TrySpawn()
		}
		var cells []grid.Cell
		for _, m := range made {
			cells = append(cells, m.cell)
		}
		return cells
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("placement %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

// The spike lifecycle end to end: the coordinator owns the hazard, the
// hazard reports its own despawn and the cell frees up.
func TestSpikeCoordinatorRemovesExpiredSpike(t *testing.T) {
	g := grid.Filled(5, 5, "floor")
	cfg := hazard.Config{
		Telegraph: hazard.Telegraph{On: 200 * time.Millisecond, Off: 200 * time.Millisecond, Blinks: 2},
		ActiveFor: 5 * time.Second,
	}
	spikes := New(Config{Label: "spike", MaxActive: 1, Manual: true}, g,
		func(c *Coordinator[*hazard.Hazard], cell grid.Cell) (*hazard.Hazard, bool) {
			return hazard.New(hazard.KindSpike, cfg, cell, hazard.Deps{Owner: c, Grid: g}), true
		},
		WithPlacer(func(*rand.Rand) (grid.Cell, bool) { return grid.C(2, 2), true }))

	if !spikes.TrySpawn() {
		t.Fatal("spawn failed")
	}
	spike, _ := spikes.Get(grid.C(2, 2))
	for range 57 {
		spikes.Update(tick)
	}
	if spike.Phase() != hazard.PhaseArmed || !spikes.Occupied(grid.C(2, 2)) {
		t.Fatal("spike should still be armed and registered at 5.7s")
	}
	spikes.Update(tick)
	if spike.Phase() != hazard.PhaseTerminal || spikes.Occupied(grid.C(2, 2)) {
		t.Error("spike should be gone from the registry at 5.8s")
	}
}
