package helltiles

import (
	"fmt"
	"strings"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/vovakirdan/helltiles/internal/core"
	"github.com/vovakirdan/helltiles/internal/grid"
	"github.com/vovakirdan/helltiles/internal/hazard"
	"github.com/vovakirdan/helltiles/internal/pickup"
	"github.com/vovakirdan/helltiles/internal/projectile"
)

// cellW is how many screen columns one arena cell takes. Terminal cells
// are about twice as tall as wide.
const cellW = 3

const (
	PlayerChar     = '@'
	DeadPlayerChar = 'x'
	FloorChar      = '·'
	BlockedChar    = '█'
	CrackedChar    = '░'
	RingChar       = 'o'
	HeartFull      = '♥'
	HeartEmpty     = '♡'
)

// Render draws the arena into dst.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.screenTooSmall {
		dst.DrawTextCentered(dst.Height()/2-1, "Window too small")
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("Need %dx%d", g.minScreenW, g.minScreenH))
		return
	}

	ox, oy := g.origin(dst)
	b := g.grid.Bounds()

	g.renderHUD(dst, ox, oy)
	dst.DrawBox(core.NewRect(ox, oy+1, b.W*cellW+2, b.H+2), core.ColorGray)
	g.renderTiles(dst, ox, oy)
	g.renderHazards(dst, ox, oy)
	g.renderPickups(dst, ox, oy)
	g.renderProjectiles(dst, ox, oy)
	g.renderPlayer(dst, ox, oy)
	g.renderRings(dst, ox, oy)
	dst.DrawTextColor(ox, oy+b.H+3, "arrows hop  p pause  q quit", core.ColorDarkGray)

	g.renderOverlay(dst)
}

// origin is the top-left screen corner of the HUD row; the arena box
// starts one row below it.
func (g *Game) origin(dst *core.Screen) (int, int) {
	b := g.grid.Bounds()
	w, h := b.W*cellW+2, b.H+4
	return max((dst.Width()-w)/2, 0), max((dst.Height()-h)/2, 0)
}

// cellScreen returns the middle column and the row of cell c.
func (g *Game) cellScreen(ox, oy int, c grid.Cell) (int, int) {
	b := g.grid.Bounds()
	return ox + 1 + (c.X-b.Min.X)*cellW + cellW/2, oy + 2 + (c.Y - b.Min.Y)
}

// worldScreen maps a world point into the arena box, using the position
// inside the cell to pick one of its columns.
func (g *Game) worldScreen(ox, oy int, p cp.Vector) (int, int, bool) {
	b := g.grid.Bounds()
	cs := g.grid.CellSize()
	corner := g.grid.CellToWorldCenter(b.Min).Sub(cp.Vector{X: cs / 2, Y: cs / 2})
	fx, fy := (p.X-corner.X)/cs, (p.Y-corner.Y)/cs
	if fx < 0 || fy < 0 || fx >= float64(b.W) || fy >= float64(b.H) {
		return 0, 0, false
	}
	return ox + 1 + int(fx*cellW), oy + 2 + int(fy), true
}

func (g *Game) renderHUD(dst *core.Screen, ox, oy int) {
	title := "HELLTILES"
	if g.mode == ModeEndless {
		title = "HELLTILES ∞"
	}
	dst.DrawTextColor(ox, oy, title, core.ColorBrightRed)

	hearts := strings.Repeat(string(HeartFull), g.player.Current()) +
		strings.Repeat(string(HeartEmpty), max(g.player.Max()-g.player.Current(), 0))
	x := ox + len([]rune(title)) + 2
	dst.DrawTextColor(x, oy, hearts, core.ColorRed)

	clock := fmt.Sprintf("%ds", int(g.elapsed/time.Second))
	if g.mode == ModeSurvival && g.cfg.Mode.Countdown > 0 {
		clock = fmt.Sprintf("T-%ds", int((g.Remaining()+time.Second-1)/time.Second))
	}
	right := fmt.Sprintf("$%d  %s", g.wallet.coins, clock)
	b := g.grid.Bounds()
	dst.DrawTextColor(ox+b.W*cellW+2-len([]rune(right)), oy, right, core.ColorBrightYellow)
}

func (g *Game) renderTiles(dst *core.Screen, ox, oy int) {
	b := g.grid.Bounds()
	cracked := g.cfg.Hazards.Cracked.Tile
	for y := b.Min.Y; y < b.Min.Y+b.H; y++ {
		for x := b.Min.X; x < b.Min.X+b.W; x++ {
			c := grid.C(x, y)
			sx, sy := g.cellScreen(ox, oy, c)
			tile := g.grid.Tile(c)
			switch {
			case tile == grid.NoTile:
			case g.grid.IsBlocked(c):
				for i := -1; i <= 1; i++ {
					dst.SetWithColor(sx+i, sy, BlockedChar, core.ColorGray)
				}
			case cracked != grid.NoTile && tile == cracked:
				for i := -1; i <= 1; i++ {
					dst.SetWithColor(sx+i, sy, CrackedChar, core.ColorOrange)
				}
			default:
				color := core.ColorDarkGray
				if g.grid.CellOffset(c) != 0 {
					color = core.ColorWhite
				}
				dst.SetWithColor(sx, sy, FloorChar, color)
			}
		}
	}
}

func spriteOf(v core.Visual) *core.Sprite {
	s, _ := v.(*core.Sprite)
	return s
}

func (g *Game) renderHazards(dst *core.Screen, ox, oy int) {
	draw := func(_ grid.Cell, h *hazard.Hazard) {
		s := spriteOf(h.Visual())
		if !s.Shown() || h.Broken() {
			return
		}
		color := s.Color
		if h.Phase() == hazard.PhaseArmed {
			color = core.ColorBrightRed
			if h.Kind() == hazard.KindPushPad {
				color = core.ColorBrightCyan
			}
		}
		x, y := g.cellScreen(ox, oy, h.Cell())
		dst.SetWithColor(x, y, s.Glyph, color)
	}
	g.spikes.Each(draw)
	g.cracked.Each(draw)
	g.pushes.Each(draw)
	g.rowSweeps.Each(func(_ grid.Cell, h *hazard.Hazard) { g.renderSweep(dst, ox, oy, h, false) })
	g.columnSweeps.Each(func(_ grid.Cell, h *hazard.Hazard) { g.renderSweep(dst, ox, oy, h, true) })
}

// renderSweep paints the whole row or column of a sweep with an arrow on
// the edge it enters from.
func (g *Game) renderSweep(dst *core.Screen, ox, oy int, h *hazard.Hazard, column bool) {
	s := spriteOf(h.Visual())
	if !s.Shown() {
		return
	}
	armed := h.Phase() == hazard.PhaseArmed
	color := core.ColorYellow
	if armed {
		color = core.ColorBrightRed
	}
	b := g.grid.Bounds()
	last := b.Max()
	if column {
		glyph := '¦'
		if armed {
			glyph = '‖'
		}
		for y := b.Min.Y; y <= last.Y; y++ {
			x, sy := g.cellScreen(ox, oy, grid.C(h.Cell().X, y))
			dst.SetWithColor(x, sy, glyph, color)
		}
		entry, arrow := grid.C(h.Cell().X, b.Min.Y), '▼'
		if s.FlipX {
			entry, arrow = grid.C(h.Cell().X, last.Y), '▲'
		}
		x, y := g.cellScreen(ox, oy, entry)
		dst.SetWithColor(x, y, arrow, color)
		return
	}
	for x := b.Min.X; x <= last.X; x++ {
		sx, sy := g.cellScreen(ox, oy, grid.C(x, h.Cell().Y))
		for i := -1; i <= 1; i++ {
			dst.SetWithColor(sx+i, sy, s.Glyph, color)
		}
	}
	entry, arrow := grid.C(b.Min.X, h.Cell().Y), '►'
	if s.FlipX {
		entry, arrow = grid.C(last.X, h.Cell().Y), '◄'
	}
	x, y := g.cellScreen(ox, oy, entry)
	dst.SetWithColor(x, y, arrow, color)
}

func (g *Game) renderPickups(dst *core.Screen, ox, oy int) {
	draw := func(_ grid.Cell, p *pickup.Pickup) {
		s := spriteOf(p.Visual())
		if !s.Shown() {
			return
		}
		x, y := g.cellScreen(ox, oy, p.Cell())
		dst.SetWithColor(x, y, s.Glyph, s.Color)
	}
	g.hearts.Each(draw)
	g.coins.Each(draw)
	g.angels.Each(draw)
}

func (g *Game) renderProjectiles(dst *core.Screen, ox, oy int) {
	g.field.Each(func(p *projectile.Projectile) {
		x, y, ok := g.worldScreen(ox, oy, p.Position())
		if !ok {
			return
		}
		glyph, color := p.Spec().Glyph, core.ColorRed
		if glyph == 0 {
			glyph = p.Heading().Arrow()
		}
		if p.Tracking() {
			color = core.ColorBrightMagenta
		}
		dst.SetWithColor(x, y, glyph, color)
	})
}

func (g *Game) renderPlayer(dst *core.Screen, ox, oy int) {
	x, y, ok := g.worldScreen(ox, oy, g.player.Position())
	if !ok {
		return
	}
	switch {
	case g.player.Dead():
		dst.SetWithColor(x, y, DeadPlayerChar, core.ColorRed)
	case g.player.Tinted():
		dst.SetWithColor(x, y, PlayerChar, core.ColorRed)
	default:
		dst.SetWithColor(x, y, PlayerChar, core.ColorBrightCyan)
	}
}

// renderRings draws each reset ring as a square that grows with its age.
func (g *Game) renderRings(dst *core.Screen, ox, oy int) {
	life := g.reset.RingLifetime
	if life <= 0 {
		return
	}
	for _, r := range g.reset.Rings() {
		center := g.grid.WorldToCell(r.Pos)
		radius := 1 + int(2*r.Age/life)
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if max(abs(dx), abs(dy)) != radius {
					continue
				}
				c := center.Add(dx, dy)
				if !g.grid.InBounds(c) {
					continue
				}
				x, y := g.cellScreen(ox, oy, c)
				dst.SetWithColor(x, y, RingChar, core.ColorBrightWhite)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (g *Game) renderOverlay(dst *core.Screen) {
	switch g.state {
	case StatePaused:
		g.drawCenteredBox(dst, "PAUSED", "Press P to resume")
	case StateGameOver:
		g.drawCenteredBox(dst, "GAME OVER", fmt.Sprintf("Survived %ds - R to restart", int(g.elapsed/time.Second)))
	case StateWon:
		g.drawCenteredBox(dst, "YOU SURVIVED", "R to play again")
	}
}

// drawCenteredBox draws a box with title and subtitle in the center.
func (g *Game) drawCenteredBox(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH), core.ColorWhite)

	dst.DrawText(boxX+(boxW-len([]rune(title)))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len([]rune(subtitle)))/2, boxY+3, subtitle)
}
