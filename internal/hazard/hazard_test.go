package hazard

import (
	"context"
	"testing"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/overlap"
	"github.com/vovakirdan/helltiles/internal/schedule"
)

const (
	dt    = 100 * time.Millisecond
	floor = grid.Tile("floor")
	crack = grid.Tile("cracked")
)

// countingGrid records writes per cell on top of a real model.
type countingGrid struct {
	*grid.Model
	writes map[grid.Cell][]grid.Tile
}

func newCountingGrid(w, h int) *countingGrid {
	return &countingGrid{Model: grid.Filled(w, h, floor), writes: make(map[grid.Cell][]grid.Tile)}
}

func (g *countingGrid) SetTile(c grid.Cell, t grid.Tile) {
	g.writes[c] = append(g.writes[c], t)
	g.Model.SetTile(c, t)
}

type fakeOwner struct {
	despawned []*Hazard
}

func (o *fakeOwner) HandleDespawn(_ grid.Cell, h *Hazard) bool {
	o.despawned = append(o.despawned, h)
	return true
}

type fakePlayer struct {
	pos    cp.Vector
	hits   int
	moving bool
	shoves []grid.Dir
}

func (p *fakePlayer) Bounds() cp.BB { return overlap.Box(p.pos, 0.3, 0.3) }
func (p *fakePlayer) TakeHit() bool { p.hits++; return true }
func (p *fakePlayer) IsMoving() bool {
	return p.moving
}

func (p *fakePlayer) ForceMoveWithLock(d grid.Dir) bool {
	p.shoves = append(p.shoves, d)
	return true
}

type rig struct {
	grid   *countingGrid
	space  *overlap.Space
	sched  *schedule.Scheduler
	owner  *fakeOwner
	player *fakePlayer
}

func newRig() *rig {
	r := &rig{
		grid:   newCountingGrid(5, 5),
		space:  overlap.NewSpace(),
		sched:  schedule.New(),
		owner:  &fakeOwner{},
		player: &fakePlayer{pos: cp.Vector{X: -10, Y: -10}},
	}
	r.space.AddBody(r.player)
	return r
}

func (r *rig) deps() Deps {
	return Deps{Owner: r.owner, Grid: r.grid, Space: r.space, Scheduler: r.sched, Visual: core.NewSprite('^', core.ColorRed)}
}

// step runs one game tick in arena order: scheduler, hazard, overlap.
func (r *rig) step(h *Hazard) {
	r.sched.Update(dt)
	h.Update(dt)
	r.space.Step()
}

func (r *rig) moveTo(c grid.Cell) {
	r.player.pos = r.grid.CellToWorldCenter(c)
}

func spikeConfig() Config {
	return Config{
		Telegraph: Telegraph{On: 200 * time.Millisecond, Off: 200 * time.Millisecond, Blinks: 2},
		ActiveFor: 5 * time.Second,
	}
}

func TestSpikeScenario(t *testing.T) {
	r := newRig()
	h := New(KindSpike, spikeConfig(), grid.C(2, 2), r.deps())

	if h.Phase() != PhaseTelegraphing || !h.Visible() {
		t.Fatal("spike should start telegraphing and visible")
	}

	// Standing on the cell during the telegraph is harmless.
	r.moveTo(grid.C(2, 2))
	for range 7 {
		r.step(h)
		if h.Phase() != PhaseTelegraphing {
			t.Fatalf("armed early at %d ticks", h.blinks)
		}
	}
	if r.player.hits != 0 {
		t.Fatal("telegraphing spike must not hit")
	}

	// 0.8s: second harmless blink completes and the spike arms, hitting the
	// player already standing there.
	r.step(h)
	if h.Phase() != PhaseArmed {
		t.Fatalf("phase = %s at 0.8s, expected armed", h.Phase())
	}
	if r.player.hits != 1 {
		t.Fatalf("hits = %d on arm, expected the immediate overlap hit", r.player.hits)
	}

	// Staying inside does not hit again; leaving and re-entering does.
	r.step(h)
	r.moveTo(grid.C(0, 0))
	r.step(h)
	r.moveTo(grid.C(2, 2))
	r.step(h)
	if r.player.hits != 2 {
		t.Fatalf("hits = %d, expected one per enter", r.player.hits)
	}

	// Run to 5.8s in total.
	elapsed := 11 * dt
	for elapsed < 5800*time.Millisecond {
		if h.Phase() == PhaseTerminal {
			t.Fatalf("spike ended early at %v", elapsed)
		}
		r.step(h)
		elapsed += dt
	}
	if h.Phase() != PhaseTerminal || !h.Destroyed() {
		t.Fatalf("phase = %s at 5.8s, expected terminal", h.Phase())
	}
	if len(r.owner.despawned) != 1 || r.owner.despawned[0] != h {
		t.Error("spike should report its despawn exactly once")
	}
	if len(r.grid.writes) != 0 {
		t.Error("spike must never touch the grid")
	}
	if r.space.Hitboxes() != 0 {
		t.Error("despawned spike should remove its hitbox")
	}
}

func TestBlinkTelegraphToggles(t *testing.T) {
	r := newRig()
	sprite := core.NewSprite('^', core.ColorRed)
	d := r.deps()
	d.Visual = sprite
	h := New(KindSpike, spikeConfig(), grid.C(1, 1), d)

	want := []bool{true, false, false, true, true, false, false, true}
	for i, w := range want {
		h.Update(dt)
		if h.Visible() != w || sprite.Visible != w {
			t.Errorf("tick %d: visible = %v, expected %v", i+1, h.Visible(), w)
		}
	}
}

func TestZeroBlinksArmsOnFirstTick(t *testing.T) {
	r := newRig()
	cfg := spikeConfig()
	cfg.Telegraph.Blinks = 0
	h := New(KindSpike, cfg, grid.C(1, 1), r.deps())
	h.Update(dt)
	if h.Phase() != PhaseArmed {
		t.Errorf("phase = %s, expected armed on the first tick", h.Phase())
	}
}

func TestLargeTickTogglesOncePerUpdate(t *testing.T) {
	r := newRig()
	h := New(KindSpike, spikeConfig(), grid.C(1, 1), r.deps())

	h.Update(time.Second)
	if h.Phase() != PhaseTelegraphing || h.Visible() {
		t.Fatal("one update should toggle only once")
	}
	h.Update(0)
	h.Update(0)
	if h.Phase() != PhaseTelegraphing {
		t.Fatal("carried time should toggle one segment per update")
	}
	h.Update(0)
	if h.Phase() != PhaseArmed {
		t.Errorf("phase = %s, expected armed after the carried segments", h.Phase())
	}
}

func crackedConfig() Config {
	return Config{
		Telegraph:       Telegraph{On: 200 * time.Millisecond, Off: 200 * time.Millisecond, Blinks: 2},
		PassiveLifetime: 3 * time.Second,
		RestoreDelay:    10 * time.Second,
	}
}

func crackedDeps(r *rig) Deps {
	d := r.deps()
	d.CrackedTile = crack
	return d
}

func TestCrackedTileNeverEnteredRestoresOnce(t *testing.T) {
	r := newRig()
	cell := grid.C(3, 1)
	h := New(KindCrackedTile, crackedConfig(), cell, crackedDeps(r))

	for range 8 {
		r.step(h)
	}
	if h.Phase() != PhaseArmed || r.grid.Tile(cell) != crack {
		t.Fatalf("armed cracked tile should paint the crack, tile = %q", r.grid.Tile(cell))
	}

	for range 29 {
		r.step(h)
	}
	if h.Destroyed() {
		t.Fatal("restored before the passive lifetime")
	}
	r.step(h)
	if !h.Destroyed() || h.Broken() {
		t.Fatal("passive lifetime should restore without breaking")
	}
	if r.grid.Tile(cell) != floor {
		t.Errorf("tile = %q, expected the original floor", r.grid.Tile(cell))
	}
	if h.Restores() != 1 || len(r.owner.despawned) != 1 {
		t.Errorf("restores = %d, despawns = %d, expected exactly one each", h.Restores(), len(r.owner.despawned))
	}

	for range 200 {
		r.step(h)
	}
	if got := r.grid.writes[cell]; len(got) != 2 || got[0] != crack || got[1] != floor {
		t.Errorf("grid writes = %v, expected [cracked floor]", got)
	}
}

func TestCrackedTileBreaksOnExitAndRestoresAfterDelay(t *testing.T) {
	r := newRig()
	cell := grid.C(2, 2)
	h := New(KindCrackedTile, crackedConfig(), cell, crackedDeps(r))
	for range 8 {
		r.step(h)
	}

	r.moveTo(cell)
	r.step(h)
	// Standing past the passive lifetime keeps the tile intact.
	for range 40 {
		r.step(h)
	}
	if h.Broken() || h.Destroyed() {
		t.Fatal("occupied tile must not break or restore")
	}

	r.moveTo(grid.C(2, 3))
	r.step(h)
	if !h.Broken() || h.Phase() != PhaseResolving {
		t.Fatal("tile should break on the exit tick")
	}
	if r.grid.HasTile(cell) {
		t.Error("broken tile should be cleared")
	}

	// Coming back does not re-trigger anything while broken.
	r.moveTo(cell)
	r.step(h)

	for range 98 {
		r.step(h)
	}
	if h.Destroyed() {
		t.Fatal("restored before the restore delay")
	}
	r.step(h)
	if !h.Destroyed() || r.grid.Tile(cell) != floor || h.Restores() != 1 {
		t.Errorf("after delay: destroyed=%v tile=%q restores=%d", h.Destroyed(), r.grid.Tile(cell), h.Restores())
	}
	if len(r.owner.despawned) != 1 {
		t.Errorf("despawns = %d, expected 1", len(r.owner.despawned))
	}
}

func TestCrackedTileFallbackPollWhenTrackingLost(t *testing.T) {
	r := newRig()
	cell := grid.C(1, 1)
	h := New(KindCrackedTile, crackedConfig(), cell, crackedDeps(r))
	for range 8 {
		r.step(h)
	}
	r.moveTo(cell)
	r.step(h)

	// The overlap layer forgets the body, then the body leaves.
	r.space.RemoveBody(r.player)
	r.moveTo(grid.C(4, 4))
	r.step(h)
	if !h.Broken() {
		t.Error("lost tracking should fall back to polling and break")
	}
}

func TestCrackedTileWithoutOriginalRestoresEmpty(t *testing.T) {
	r := newRig()
	cell := grid.C(0, 0)
	r.grid.Model.SetTile(cell, grid.NoTile)
	h := New(KindCrackedTile, crackedConfig(), cell, crackedDeps(r))
	for range 38 {
		r.step(h)
	}
	if !h.Destroyed() {
		t.Fatal("expected passive restore")
	}
	if r.grid.HasTile(cell) {
		t.Error("restoring with no cached tile should leave the cell empty")
	}
}

func TestCrackedTileDestroyCancelsRestore(t *testing.T) {
	r := newRig()
	cell := grid.C(2, 2)
	h := New(KindCrackedTile, crackedConfig(), cell, crackedDeps(r))
	for range 8 {
		r.step(h)
	}
	r.moveTo(cell)
	r.step(h)
	r.moveTo(grid.C(0, 0))
	r.step(h)

	h.Destroy()
	h.Destroy()
	for range 150 {
		r.step(h)
	}
	if h.Restores() != 0 || len(r.owner.despawned) != 0 {
		t.Error("a destroyed hazard must not restore or report")
	}
	if r.sched.Pending() != 0 {
		t.Errorf("Pending() = %d, cancelled restore should be dropped", r.sched.Pending())
	}
}

func pushConfig() Config {
	return Config{
		Telegraph: Telegraph{On: 200 * time.Millisecond, Off: 200 * time.Millisecond, Blinks: 1},
		ActiveFor: 5 * time.Second,
	}
}

func TestPushPadShovesAfterHopCompletes(t *testing.T) {
	r := newRig()
	cell := grid.C(2, 2)
	sprite := core.NewSprite('?', core.ColorCyan)
	d := r.deps()
	d.Visual = sprite
	d.Direction = grid.DirLeft
	h := New(KindPushPad, pushConfig(), cell, d)
	if sprite.Glyph != '←' {
		t.Errorf("glyph = %q, expected the direction arrow", sprite.Glyph)
	}
	h.SetDirection(grid.DirUp)
	if sprite.Glyph != '↑' || h.Direction() != grid.DirUp {
		t.Error("SetDirection should swap the arrow")
	}

	for range 4 {
		r.step(h)
	}
	if h.Phase() != PhaseArmed {
		t.Fatalf("phase = %s, expected armed after one blink", h.Phase())
	}

	r.player.moving = true
	r.moveTo(cell)
	r.step(h)
	r.step(h)
	if len(r.player.shoves) != 0 {
		t.Fatal("shove must wait for the hop to finish")
	}
	r.player.moving = false
	r.step(h)
	if len(r.player.shoves) != 1 || r.player.shoves[0] != grid.DirUp {
		t.Errorf("shoves = %v, expected [up]", r.player.shoves)
	}
}

func TestPushPadDestroyCancelsPendingShove(t *testing.T) {
	r := newRig()
	cell := grid.C(2, 2)
	h := New(KindPushPad, pushConfig(), cell, r.deps())
	for range 4 {
		r.step(h)
	}
	r.player.moving = true
	r.moveTo(cell)
	r.step(h)

	h.Destroy()
	r.player.moving = false
	for range 5 {
		r.step(h)
	}
	if len(r.player.shoves) != 0 {
		t.Error("pending shove fired after the pad was destroyed")
	}
}

func TestPushPadExpires(t *testing.T) {
	r := newRig()
	h := New(KindPushPad, pushConfig(), grid.C(1, 1), r.deps())
	for range 4 + 50 {
		r.step(h)
	}
	if !h.Destroyed() || len(r.owner.despawned) != 1 {
		t.Error("push pad should despawn after its active window")
	}
}

func sweepConfig() Config {
	return Config{
		Telegraph:   Telegraph{Delay: 500 * time.Millisecond},
		ActiveFor:   time.Second,
		MaxLifetime: 3 * time.Second,
	}
}

func TestRowSweepHitsWholeRowOnceOnActivation(t *testing.T) {
	r := newRig()
	sprite := core.NewSprite('!', core.ColorYellow)
	d := r.deps()
	d.Visual = sprite
	d.FireLeft = true
	h := New(KindRowSweep, sweepConfig(), grid.C(0, 3), d)
	if !sprite.FlipX {
		t.Error("left-firing sweep should flip its visual")
	}

	r.moveTo(grid.C(4, 3))
	for range 4 {
		r.step(h)
		if !h.Visible() {
			t.Fatal("row sweep telegraph does not blink")
		}
	}
	if r.player.hits != 0 {
		t.Fatal("sweep hit during its telegraph")
	}
	r.step(h)
	if h.Phase() != PhaseArmed || r.player.hits != 1 {
		t.Fatalf("phase = %s hits = %d, expected armed with one immediate hit", h.Phase(), r.player.hits)
	}
	for range 3 {
		r.step(h)
	}
	if r.player.hits != 1 {
		t.Errorf("hits = %d, standing still should not hit again", r.player.hits)
	}

	// Another row is safe.
	r.moveTo(grid.C(4, 2))
	r.step(h)
	r.moveTo(grid.C(2, 3))
	r.step(h)
	if r.player.hits != 2 {
		t.Errorf("hits = %d, re-entering during the active window hits", r.player.hits)
	}

	for range 10 {
		r.step(h)
	}
	if !h.Destroyed() {
		t.Error("sweep should end after its active window")
	}
}

func TestRowSweepColumnAxis(t *testing.T) {
	r := newRig()
	d := r.deps()
	d.SweepAxis = SweepColumn
	cfg := sweepConfig()
	cfg.Telegraph.Delay = 0
	h := New(KindRowSweep, cfg, grid.C(1, 0), d)

	r.moveTo(grid.C(1, 4))
	r.step(h)
	if r.player.hits != 1 {
		t.Errorf("hits = %d, column sweep should cover the whole column", r.player.hits)
	}
}

func TestRowSweepSafetyLifetime(t *testing.T) {
	r := newRig()
	cfg := sweepConfig()
	cfg.Telegraph.Delay = time.Hour
	h := New(KindRowSweep, cfg, grid.C(0, 0), r.deps())
	for range 30 {
		r.step(h)
	}
	if !h.Destroyed() || len(r.owner.despawned) != 1 {
		t.Error("safety lifetime should end a stuck sweep")
	}
}

func TestMissingCollaboratorsDegrade(t *testing.T) {
	for _, kind := range []Kind{KindSpike, KindCrackedTile, KindPushPad, KindRowSweep} {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := Config{
				Telegraph:       Telegraph{On: dt, Off: dt, Blinks: 1},
				ActiveFor:       time.Second,
				PassiveLifetime: time.Second,
				RestoreDelay:    time.Second,
				MaxLifetime:     5 * time.Second,
			}
			h := New(kind, cfg, grid.C(0, 0), Deps{})
			for range 100 {
				h.Update(dt)
			}
			if !h.Destroyed() {
				t.Errorf("%s without collaborators should still run to completion", kind)
			}
			if h.Context().Err() != context.Canceled {
				t.Error("context should be cancelled once the hazard ends")
			}
		})
	}
}
