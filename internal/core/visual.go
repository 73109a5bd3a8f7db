package core

// Visual is the sink hazards and pickups drive while telegraphing. It may be
// nil; callers must treat a nil Visual as "nothing to draw".
type Visual interface {
	SetVisible(on bool)
	SetAlpha(a float64)
	SetGlyph(r rune)
	SetFlipX(flip bool)
}

// Sprite is the terminal implementation of Visual: one glyph, a colour and
// a visibility state the renderer reads back.
type Sprite struct {
	Glyph   rune
	Color   Color
	Visible bool
	Alpha   float64
	FlipX   bool
}

// NewSprite creates a visible, opaque sprite.
func NewSprite(glyph rune, c Color) *Sprite {
	return &Sprite{Glyph: glyph, Color: c, Visible: true, Alpha: 1}
}

func (s *Sprite) SetVisible(on bool) { s.Visible = on }
func (s *Sprite) SetAlpha(a float64) { s.Alpha = Clamp(a, 0, 1) }
func (s *Sprite) SetGlyph(r rune)    { s.Glyph = r }
func (s *Sprite) SetFlipX(flip bool) { s.FlipX = flip }

// Shown reports whether the sprite should be drawn this frame. Faded
// sprites below half alpha are hidden, which is how flicker shows up in a
// terminal.
func (s *Sprite) Shown() bool {
	return s != nil && s.Visible && s.Alpha >= 0.5
}
