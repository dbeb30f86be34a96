package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/Astrarium/Astrarium-sub009/internal/astro"
	"github.com/Astrarium/Astrarium-sub009/internal/projection"
)

// LabelMode controls which objects get a name next to their glyph.
type LabelMode int

const (
	LabelNone   LabelMode = iota // No labels
	LabelBright                  // Stars brighter than Options.LabelMag, and the Sun
	LabelAll                     // Every object on the chart
)

func (m LabelMode) String() string {
	switch m {
	case LabelNone:
		return "off"
	case LabelBright:
		return "bright"
	case LabelAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseLabelMode parses a label mode name.
func ParseLabelMode(s string) (LabelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LabelNone, nil
	case "bright", "":
		return LabelBright, nil
	case "all":
		return LabelAll, nil
	default:
		return 0, fmt.Errorf("unknown label mode %q", s)
	}
}

// Next cycles to the following label mode.
func (m LabelMode) Next() LabelMode {
	return (m + 1) % 3
}

// Glyphs is the set of runes a chart is drawn with.
type Glyphs struct {
	StarBright, StarMedium, StarDim rune
	Sun                             rune
	Horizon                         rune
	Grid                            rune
}

// UnicodeGlyphs is used by the terminal chart.
var UnicodeGlyphs = Glyphs{
	StarBright: '✶',
	StarMedium: '✸',
	StarDim:    '·',
	Sun:        '☉',
	Horizon:    '─',
	Grid:       '┄',
}

// ASCIIGlyphs is used for plain output.
var ASCIIGlyphs = Glyphs{
	StarBright: '*',
	StarMedium: '+',
	StarDim:    '.',
	Sun:        'O',
	Horizon:    '-',
	Grid:       ':',
}

// Options control what Render draws.
type Options struct {
	Glyphs      Glyphs
	Grid        bool
	GridSpacing float64 // degrees between grid lines
	Labels      LabelMode
	LabelMag    float64 // LabelBright threshold
	Focus       string  // name of the highlighted object, if any
}

// DefaultOptions returns the options used by the terminal chart.
func DefaultOptions() Options {
	return Options{
		Glyphs:      UnicodeGlyphs,
		GridSpacing: 15,
		Labels:      LabelBright,
		LabelMag:    1.0,
	}
}

// StarClass picks a glyph and class for a star from its magnitude.
func StarClass(g Glyphs, mag float64) (rune, Class) {
	switch {
	case mag < 1.5:
		return g.StarBright, ClassStarBright
	case mag < 3.0:
		return g.StarMedium, ClassStarMedium
	default:
		return g.StarDim, ClassStarDim
	}
}

// sampleStep returns a sampling interval in degrees fine enough that
// consecutive samples are about half a pixel apart.
func sampleStep(v projection.ViewState) float64 {
	longer := v.Width
	if v.Height > longer {
		longer = v.Height
	}
	step := v.FieldOfView / longer / 2
	if step < 0.05 {
		step = 0.05
	}
	if step > 2 {
		step = 2
	}
	return step
}

// Render draws the scene onto the canvas and returns the markers it placed.
// The scene's view should cover the canvas (see Canvas.Viewport).
func Render(c *Canvas, s Scene, cat astro.StarCatalog, opt Options) []Marker {
	step := sampleStep(s.View)

	if opt.Grid {
		for _, p := range s.Grid(opt.GridSpacing, step) {
			c.Plot(p, opt.Glyphs.Grid, ClassGrid)
		}
	}

	for _, p := range s.Horizon(step) {
		c.Plot(p, opt.Glyphs.Horizon, ClassHorizon)
	}

	var placed []Marker
	for _, m := range s.Cardinals() {
		c.Plot(m.Pos, []rune(m.Name)[0], ClassCardinal)
	}

	for _, m := range s.Stars(cat) {
		r, class := StarClass(opt.Glyphs, m.Mag)
		if m.Name == opt.Focus && opt.Focus != "" {
			class = ClassFocus
		}
		c.Plot(m.Pos, r, class)
		placed = append(placed, m)
	}

	if sun, ok := s.Sun(); ok {
		class := ClassSun
		if sun.Name == opt.Focus {
			class = ClassFocus
		}
		c.Plot(sun.Pos, opt.Glyphs.Sun, class)
		placed = append(placed, sun)
	}

	drawLabels(c, placed, opt)
	return placed
}

// drawLabels writes names to the right of their glyphs with a one cell gap.
// The focused label is drawn last at a higher class so it wins overlaps.
func drawLabels(c *Canvas, markers []Marker, opt Options) {
	if opt.Labels == LabelNone {
		return
	}

	var focused *Marker
	for i := range markers {
		m := &markers[i]
		if opt.Focus != "" && m.Name == opt.Focus {
			focused = m
			continue
		}
		show := opt.Labels == LabelAll ||
			m.Kind == MarkerSun ||
			m.Mag < opt.LabelMag
		if !show {
			continue
		}
		if col, row, ok := c.CellAt(m.Pos); ok {
			c.Text(col+2, row, m.Name, ClassLabel)
		}
	}

	if focused != nil {
		if col, row, ok := c.CellAt(focused.Pos); ok {
			c.Text(col+2, row, "◄ "+focused.Name, ClassFocus)
		}
	}
}

// WriteMiniSky writes a plain text chart of cols x rows characters, with a
// one line header describing the view.
func WriteMiniSky(w io.Writer, s Scene, cat astro.StarCatalog, cols, rows int) error {
	c := NewCanvas(cols, rows)
	s.View.Width, s.View.Height = c.Viewport()
	if err := s.View.Validate(); err != nil {
		return fmt.Errorf("mini sky: %w", err)
	}

	opt := DefaultOptions()
	opt.Glyphs = ASCIIGlyphs
	opt.Grid = true
	Render(c, s, cat, opt)

	header := fmt.Sprintf("%s %s | center %.1f° %.1f° | fov %.1f° | %s",
		s.Projection.Kind(), s.Frame,
		s.View.Center.Azimuth, s.View.Center.Altitude,
		s.View.FieldOfView,
		s.Time.UTC().Format("2006-01-02 15:04 MST"),
	)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", cols)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, c.String())
	return err
}
