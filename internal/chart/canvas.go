package chart

import (
	"math"
	"strings"

	"github.com/Astrarium/Astrarium-sub009/internal/projection"
)

// CellAspect is the height of a terminal cell in view pixels; one cell is
// one pixel wide.
const CellAspect = 2.0

// Class tags what was drawn in a cell. Higher classes win when two things
// land on the same cell.
type Class int

const (
	ClassEmpty Class = iota
	ClassGrid
	ClassHorizon
	ClassCardinal
	ClassStarDim
	ClassStarMedium
	ClassStarBright
	ClassSun
	ClassLabel
	ClassRuler
	ClassFocus
	ClassCursor
)

// Cell is one character of the canvas.
type Cell struct {
	Rune  rune
	Class Class
}

// Canvas is a character grid addressed in view pixels.
type Canvas struct {
	cols, rows int
	cells      []Cell
}

// NewCanvas creates a blank canvas of cols x rows cells.
func NewCanvas(cols, rows int) *Canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c := &Canvas{cols: cols, rows: rows, cells: make([]Cell, cols*rows)}
	for i := range c.cells {
		c.cells[i] = Cell{Rune: ' '}
	}
	return c
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

// Viewport returns the view pixel size covered by the canvas.
func (c *Canvas) Viewport() (width, height float64) {
	return float64(c.cols), float64(c.rows) * CellAspect
}

// CellAt maps a view pixel to the cell containing it.
func (c *Canvas) CellAt(p projection.PlanarPoint) (col, row int, ok bool) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return 0, 0, false
	}
	col = int(math.Floor(p.X))
	row = int(math.Floor(p.Y / CellAspect))
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0, 0, false
	}
	return col, row, true
}

// CellCenter returns the view pixel at the center of a cell.
func CellCenter(col, row int) projection.PlanarPoint {
	return projection.PlanarPoint{
		X: float64(col) + 0.5,
		Y: (float64(row) + 0.5) * CellAspect,
	}
}

// At returns the cell at col,row. Out of range cells are blank.
func (c *Canvas) At(col, row int) Cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return Cell{Rune: ' '}
	}
	return c.cells[row*c.cols+col]
}

// Set writes a cell unless it already holds a higher class.
func (c *Canvas) Set(col, row int, r rune, class Class) bool {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return false
	}
	cell := &c.cells[row*c.cols+col]
	if cell.Class > class {
		return false
	}
	*cell = Cell{Rune: r, Class: class}
	return true
}

// Plot draws a rune at a view pixel.
func (c *Canvas) Plot(p projection.PlanarPoint, r rune, class Class) bool {
	col, row, ok := c.CellAt(p)
	if !ok {
		return false
	}
	return c.Set(col, row, r, class)
}

// Text writes s starting at col,row, clipped to the canvas.
func (c *Canvas) Text(col, row int, s string, class Class) {
	for i, r := range []rune(s) {
		c.Set(col+i, row, r, class)
	}
}

// Line draws a straight segment between two view pixels.
func (c *Canvas) Line(a, b projection.PlanarPoint, r rune, class Class) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y)/CellAspect)))
	if steps > 4*(c.cols+c.rows) {
		steps = 4 * (c.cols + c.rows)
	}
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		c.Plot(projection.PlanarPoint{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}, r, class)
	}
}

// String renders the canvas as plain text, one line per row.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			b.WriteRune(c.cells[row*c.cols+col].Rune)
		}
		if row < c.rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
