package grid

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

// LayoutSpec is the YAML form of a Layout. Rows are drawn with one glyph per
// cell; Legend maps glyphs to tile names and a space means no tile.
type LayoutSpec struct {
	Name          string          `yaml:"name"`
	CellSize      float64         `yaml:"cell_size"`
	Origin        Point           `yaml:"origin"`
	Min           Point           `yaml:"min"`
	Legend        map[string]Tile `yaml:"legend"`
	Rows          []string        `yaml:"rows"`
	BlockedRows   []string        `yaml:"blocked_rows"`
	BlockedTiles  []Tile          `yaml:"blocked_tiles"`
	WalkableTiles []Tile          `yaml:"walkable_tiles"`
}

// Point is a YAML-friendly 2D point.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ParseLayoutYAML decodes a layout document.
func ParseLayoutYAML(data []byte) (LayoutSpec, error) {
	var spec LayoutSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("grid: cannot parse layout: %w", err)
	}
	return spec, nil
}

// Layout converts the spec into a Layout. Every row must have the same
// number of glyphs.
func (s LayoutSpec) Layout() (Layout, error) {
	if len(s.Rows) == 0 {
		return Layout{}, fmt.Errorf("%w: no rows", ErrInvalidLayout)
	}
	w := len([]rune(s.Rows[0]))
	minCell := Cell{X: int(s.Min.X), Y: int(s.Min.Y)}
	layout := Layout{
		Bounds:        Bounds{Min: minCell, W: w, H: len(s.Rows)},
		Origin:        cp.Vector{X: s.Origin.X, Y: s.Origin.Y},
		CellSize:      s.CellSize,
		Tiles:         make(map[Cell]Tile),
		Blocked:       make(map[Cell]Tile),
		BlockedTiles:  s.BlockedTiles,
		WalkableTiles: s.WalkableTiles,
	}

	if err := s.decodeRows(s.Rows, w, minCell, layout.Tiles); err != nil {
		return Layout{}, err
	}
	if len(s.BlockedRows) > 0 {
		if err := s.decodeRows(s.BlockedRows, w, minCell, layout.Blocked); err != nil {
			return Layout{}, fmt.Errorf("blocked rows: %w", err)
		}
	}
	return layout, nil
}

func (s LayoutSpec) decodeRows(rows []string, w int, origin Cell, out map[Cell]Tile) error {
	for y, row := range rows {
		glyphs := []rune(row)
		if len(glyphs) != w {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidLayout, y, len(glyphs), w)
		}
		for x, g := range glyphs {
			if g == ' ' {
				continue
			}
			tile, ok := s.Legend[string(g)]
			if !ok {
				return fmt.Errorf("%w: unknown glyph %q at row %d", ErrInvalidLayout, g, y)
			}
			out[origin.Add(x, y)] = tile
		}
	}
	return nil
}

// Build converts the spec and constructs the Model.
func (s LayoutSpec) Build() (*Model, error) {
	layout, err := s.Layout()
	if err != nil {
		return nil, err
	}
	return New(layout)
}
