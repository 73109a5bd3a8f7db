package pickup

import (
	"testing"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/overlap"
	"github.com/vovakirdan/helltiles/internal/schedule"
)

const dt = 100 * time.Millisecond

type fakePlayer struct {
	pos    cp.Vector
	hearts int
}

func (f *fakePlayer) Bounds() cp.BB { return overlap.Box(f.pos, 0.3, 0.3) }
func (f *fakePlayer) TryAddHearts(n int) bool {
	f.hearts += n
	return true
}

type stone struct{ pos cp.Vector }

func (s stone) Bounds() cp.BB { return overlap.Box(s.pos, 0.5, 0.5) }

type purse struct{ coins int }

func (p *purse) AddCoins(n int) { p.coins += n }

type owner struct{ gone []*Pickup }

func (o *owner) HandleDespawn(_ grid.Cell, p *Pickup) bool {
	o.gone = append(o.gone, p)
	return true
}

type rig struct {
	grid   *grid.Model
	space  *overlap.Space
	sched  *schedule.Scheduler
	owner  *owner
	player *fakePlayer
	purse  *purse
}

func newRig() *rig {
	r := &rig{
		grid:   grid.Filled(5, 5, "floor"),
		space:  overlap.NewSpace(),
		sched:  schedule.New(),
		owner:  &owner{},
		player: &fakePlayer{pos: cp.Vector{X: -5, Y: -5}},
		purse:  &purse{},
	}
	r.space.AddBody(r.player)
	return r
}

func (r *rig) deps() Deps {
	return Deps{Owner: r.owner, Grid: r.grid, Space: r.space, Scheduler: r.sched, Wallet: r.purse}
}

func (r *rig) step(p *Pickup) {
	r.sched.Update(dt)
	p.Update(dt)
	r.space.Step()
}

func heartConfig() Config {
	return Config{Lifetime: 4 * time.Second, Flicker: 1500 * time.Millisecond, Value: 1}
}

func TestHeartCollected(t *testing.T) {
	r := newRig()
	p := New(KindHeart, heartConfig(), grid.C(2, 2), r.deps())
	r.step(p)

	r.player.pos = r.grid.CellToWorldCenter(grid.C(2, 2))
	r.step(p)
	if r.player.hearts != 1 || !p.Collected() || !p.Destroyed() {
		t.Fatal("heart should be collected on contact")
	}
	if len(r.owner.gone) != 1 {
		t.Errorf("despawn reports = %d, expected 1", len(r.owner.gone))
	}
	r.step(p)
	if r.player.hearts != 1 {
		t.Error("collected heart must not grant twice")
	}
}

func TestPickupUnderPlayerCollectsOnFirstTick(t *testing.T) {
	r := newRig()
	r.player.pos = r.grid.CellToWorldCenter(grid.C(1, 1))
	p := New(KindHeart, heartConfig(), grid.C(1, 1), r.deps())
	if p.Collected() {
		t.Fatal("pickup must not fire while it is being created")
	}
	p.Update(dt)
	if !p.Collected() || len(r.owner.gone) != 1 {
		t.Error("first update should collect a pickup spawned under the player")
	}
}

func TestHeartExpiresWithFlicker(t *testing.T) {
	r := newRig()
	sprite := core.NewSprite('♥', core.ColorRed)
	d := r.deps()
	d.Visual = sprite
	p := New(KindHeart, heartConfig(), grid.C(0, 0), d)

	for range 25 {
		r.step(p)
	}
	if p.Alpha() != 1 {
		t.Errorf("Alpha() = %v before the flicker window", p.Alpha())
	}
	r.step(p)
	if p.Alpha() >= 1 || sprite.Alpha != p.Alpha() {
		t.Errorf("Alpha() = %v, expected the flicker to fade", p.Alpha())
	}
	for range 13 {
		r.step(p)
	}
	if p.Destroyed() {
		t.Fatal("expired early")
	}
	r.step(p)
	if !p.Destroyed() || p.Collected() || sprite.Visible {
		t.Error("heart should vanish uncollected at its lifetime")
	}
}

func TestCoinFillsWallet(t *testing.T) {
	r := newRig()
	p := New(KindCoin, Config{Lifetime: 6 * time.Second, Flicker: time.Second, Value: 3}, grid.C(4, 4), r.deps())
	r.step(p)
	r.player.pos = r.grid.CellToWorldCenter(grid.C(4, 4))
	r.step(p)
	if r.purse.coins != 3 || r.player.hearts != 0 {
		t.Errorf("coins = %d hearts = %d", r.purse.coins, r.player.hearts)
	}
}

func TestNonCollectorsIgnored(t *testing.T) {
	r := newRig()
	r.space.AddBody(stone{pos: r.grid.CellToWorldCenter(grid.C(3, 3))})
	p := New(KindCoin, Config{Value: 1}, grid.C(3, 3), r.deps())
	for range 10 {
		r.step(p)
	}
	if p.Collected() || p.Destroyed() {
		t.Error("only collectors pick things up")
	}
}

func TestAngelRunsResetAndDespawnsAfterDelay(t *testing.T) {
	r := newRig()
	var triggered []*Pickup
	d := r.deps()
	d.OnAngel = func(p *Pickup) {
		triggered = append(triggered, p)
		p.Consume()
	}
	angel := New(KindAngel, Config{DespawnAfter: 5 * time.Second}, grid.C(2, 2), d)
	r.step(angel)
	r.player.pos = r.grid.CellToWorldCenter(grid.C(2, 2))
	r.step(angel)
	if len(triggered) != 1 || triggered[0] != angel {
		t.Fatal("touching the angel should run the reset")
	}
	if !angel.Destroyed() || len(r.owner.gone) != 1 {
		t.Error("angel should be consumed exactly once")
	}

	lonely := New(KindAngel, Config{DespawnAfter: 5 * time.Second}, grid.C(0, 0), d)
	for range 49 {
		r.step(lonely)
	}
	if lonely.Destroyed() {
		t.Fatal("angel left early")
	}
	r.step(lonely)
	if !lonely.Destroyed() || lonely.Collected() {
		t.Error("untouched angel should leave after its delay")
	}
	if r.sched.Pending() != 0 {
		t.Errorf("Pending() = %d, despawn wait should be spent", r.sched.Pending())
	}
}

func TestDestroyCancelsAngelWait(t *testing.T) {
	r := newRig()
	angel := New(KindAngel, Config{DespawnAfter: time.Second}, grid.C(0, 0), r.deps())
	angel.Destroy()
	angel.Destroy()
	for range 20 {
		r.step(angel)
	}
	if len(r.owner.gone) != 0 {
		t.Error("destroyed angel must not report a despawn")
	}
}

func TestPingPong(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0}, {0.5, 0.5}, {1, 1}, {1.5, 0.5}, {2, 0}, {2.25, 0.25},
	}
	for _, tc := range cases {
		if got := pingPong(tc.in, 1); got != tc.want {
			t.Errorf("pingPong(%v) = %v, expected %v", tc.in, got, tc.want)
		}
	}
}
