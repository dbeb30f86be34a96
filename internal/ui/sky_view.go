package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Astrarium/Astrarium-sub009/internal/astro"
	"github.com/Astrarium/Astrarium-sub009/internal/chart"
	"github.com/Astrarium/Astrarium-sub009/internal/projection"
	"github.com/Astrarium/Astrarium-sub009/internal/state"
)

const (
	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	// Pan step as a fraction of the field of view
	panFraction = 0.1
	zoomStep    = 1.25

	// Pick radius in view pixels
	pickRadius = 2.0

	// Observation time step for [ and ]
	timeStep = time.Hour

	// View changes listed in the status line
	recentShown = 3

	glyphCursor = '┼'
	glyphRuler  = '∙'
)

// Cell colors by chart class. Stars stay grayscale so the cursor and the
// ruler stand out.
var classColors = map[chart.Class]lipgloss.Color{
	chart.ClassEmpty:      "236",
	chart.ClassGrid:       "238",
	chart.ClassHorizon:    "60",
	chart.ClassCardinal:   "252",
	chart.ClassStarDim:    "244",
	chart.ClassStarMedium: "250",
	chart.ClassStarBright: "255",
	chart.ClassSun:        "220",
	chart.ClassLabel:      "#d0c8ff",
	chart.ClassRuler:      "135",
	chart.ClassFocus:      "229",
	chart.ClassCursor:     "46",
}

// SkyViewModel renders the chart and handles navigation.
type SkyViewModel struct {
	width  int
	height int

	state    *state.Manager
	snapshot state.Snapshot
	catalog  astro.StarCatalog

	// Cursor cell on the canvas
	cursorCol int
	cursorRow int

	// Ruler start point, in the frame it was set in
	mark *projection.SphericalPoint

	// Animation state for re-centering
	animating bool
	animFrom  projection.SphericalPoint
	animTo    projection.SphericalPoint
	animStart time.Time

	grid             bool
	labelMode        chart.LabelMode
	showBelowHorizon bool

	err error
}

// SkyOptions are the initial chart options.
type SkyOptions struct {
	Grid             bool
	Labels           chart.LabelMode
	ShowBelowHorizon bool
}

// NewSkyViewModel creates a new sky view model.
func NewSkyViewModel(stateMgr *state.Manager, catalog astro.StarCatalog, opts SkyOptions) SkyViewModel {
	return SkyViewModel{
		state:            stateMgr,
		snapshot:         stateMgr.Snapshot(),
		catalog:          catalog,
		grid:             opts.Grid,
		labelMode:        opts.Labels,
		showBelowHorizon: opts.ShowBelowHorizon,
	}
}

// canvasSize returns the chart area in cells; one line each is reserved for
// the header and two for the status.
func (m SkyViewModel) canvasSize() (cols, rows int) {
	return m.width, m.height - 3
}

// SetSize updates the viewport size and resizes the view to match.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = width
	m.height = height

	cols, rows := m.canvasSize()
	if cols < 1 || rows < 1 {
		return m
	}
	w, h := chart.NewCanvas(cols, rows).Viewport()
	m.err = m.state.Resize(w, h)
	m.snapshot = m.state.Snapshot()
	m = m.centerCursor()
	return m
}

// UpdateData refreshes the model from a new state snapshot.
func (m SkyViewModel) UpdateData(snapshot state.Snapshot) SkyViewModel {
	m.snapshot = snapshot
	return m
}

func (m SkyViewModel) centerCursor() SkyViewModel {
	cols, rows := m.canvasSize()
	m.cursorCol = cols / 2
	m.cursorRow = rows / 2
	return m
}

// animTickMsg is sent during animation
type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m SkyViewModel) Update(msg tea.Msg) (SkyViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

// handleKey applies a key. A failed view change is returned as an ErrorMsg
// command so the root model reports and logs it.
func (m SkyViewModel) handleKey(key string) (SkyViewModel, tea.Cmd) {
	m.err = nil
	fov := m.snapshot.View.FieldOfView

	var err error
	switch key {
	case "up", "k":
		m = m.moveCursor(0, -1)
	case "down", "j":
		m = m.moveCursor(0, 1)
	case "left", "h":
		m = m.moveCursor(-1, 0)
	case "right", "l":
		m = m.moveCursor(1, 0)

	case "w":
		err = m.state.Pan(0, fov*panFraction)
	case "s":
		err = m.state.Pan(0, -fov*panFraction)
	case "a":
		err = m.state.Pan(-fov*panFraction, 0)
	case "d":
		err = m.state.Pan(fov*panFraction, 0)

	case "+", "=":
		err = m.state.Zoom(zoomStep)
	case "-", "_":
		err = m.state.Zoom(1 / zoomStep)

	case "c":
		return m.startAnimation(m.cursorSky())

	case "m":
		p := m.cursorSky()
		m.mark = &p
	case "x":
		m.mark = nil

	case "p":
		err = m.state.SetKind(m.snapshot.Kind.Next())
	case "f":
		err = m.state.SetFrame(m.snapshot.Frame.Toggle())
		m.mark = nil
	case "g":
		m.grid = !m.grid
	case "b":
		m.state.Back()
	case "L":
		m.labelMode = m.labelMode.Next()
	case "z":
		m.showBelowHorizon = !m.showBelowHorizon

	case "[":
		m.state.SetTime(m.snapshot.Time.Add(-timeStep))
	case "]":
		m.state.SetTime(m.snapshot.Time.Add(timeStep))
	case "n":
		m.state.ResumeClock(time.Now())
	}

	m.snapshot = m.state.Snapshot()
	if err != nil {
		return m, SendError(err)
	}
	return m, nil
}

func (m SkyViewModel) moveCursor(dCol, dRow int) SkyViewModel {
	cols, rows := m.canvasSize()
	m.cursorCol = clampInt(m.cursorCol+dCol, 0, cols-1)
	m.cursorRow = clampInt(m.cursorRow+dRow, 0, rows-1)
	return m
}

func (m SkyViewModel) startAnimation(target projection.SphericalPoint) (SkyViewModel, tea.Cmd) {
	m.animating = true
	m.animFrom = m.snapshot.View.Center
	m.animTo = target
	m.animStart = time.Now()
	return m, animTick()
}

func (m SkyViewModel) updateAnimation() (SkyViewModel, tea.Cmd) {
	elapsed := time.Since(m.animStart)
	t := float64(elapsed) / float64(animDuration)

	if t >= 1.0 {
		// Animation complete; one history entry for the whole move
		m.animating = false
		m.err = m.state.CenterOn(m.animTo)
		m.snapshot = m.state.Snapshot()
		m = m.centerCursor()
		return m, nil
	}

	return m, animTick()
}

// center returns the view center to draw with, following any animation.
func (m SkyViewModel) center() projection.SphericalPoint {
	if !m.animating {
		return m.snapshot.View.Center
	}

	t := float64(time.Since(m.animStart)) / float64(animDuration)
	if t > 1 {
		t = 1
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	return projection.SphericalPoint{
		Azimuth:  projection.NormalizeAzimuth(lerpAngle(m.animFrom.Azimuth, m.animTo.Azimuth, t)),
		Altitude: lerp(m.animFrom.Altitude, m.animTo.Altitude, t),
	}
}

// scene builds the chart scene for the current snapshot.
func (m SkyViewModel) scene() chart.Scene {
	s := m.snapshot.Scene()
	s.View.Center = m.center()
	s.ShowBelowHorizon = m.showBelowHorizon
	return s
}

// cursorPixel is the view pixel at the middle of the cursor cell.
func (m SkyViewModel) cursorPixel() projection.PlanarPoint {
	return chart.CellCenter(m.cursorCol, m.cursorRow)
}

// cursorSky unprojects the cursor into the scene's frame.
func (m SkyViewModel) cursorSky() projection.SphericalPoint {
	s := m.scene()
	return s.Projection.Unproject(m.cursorPixel(), s.View)
}

// View renders the sky view.
func (m SkyViewModel) View() string {
	cols, rows := m.canvasSize()
	if cols < 20 || rows < 5 {
		return "Sky view requires larger terminal"
	}

	s := m.scene()
	canvas := m.renderCanvas(s, cols, rows)

	var b strings.Builder
	b.WriteString(m.renderHeader(s))
	b.WriteString("\n")
	b.WriteString(canvas)
	b.WriteString("\n")
	b.WriteString(m.renderStatus(s))

	return b.String()
}

func (m SkyViewModel) renderHeader(s chart.Scene) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135")) // violet
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))               // muted purple
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#d0c8ff"))       // soft purple

	title := titleStyle.Render("Sky Chart")
	proj := accentStyle.Render(s.Projection.Kind().String())
	frame := accentStyle.Render(s.Frame.String())

	grid := "Grid: off"
	if m.grid {
		grid = "Grid: on"
	}
	labels := "Labels: " + m.labelMode.String()

	c := s.View.Center
	compass := dimStyle.Render(fmt.Sprintf("%s:%.1f° %s:%.1f° FOV:%.1f°",
		axisNames(s.Frame)[0], c.Azimuth, axisNames(s.Frame)[1], c.Altitude, s.View.FieldOfView))

	return fmt.Sprintf("%s | %s | %s | %s | %s | %s",
		title, proj, frame, dimStyle.Render(grid), dimStyle.Render(labels), compass)
}

// axisNames returns the short names of the frame's two coordinates.
func axisNames(f chart.Frame) [2]string {
	if f == chart.FrameEquatorial {
		return [2]string{"RA", "Dec"}
	}
	return [2]string{"Az", "Alt"}
}

func (m SkyViewModel) renderStatus(s chart.Scene) string {
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#d0c8ff"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	line1, line2 := m.statusLines(s)

	status := accentStyle.Render(line1)
	if m.err != nil {
		status += "\n" + errorStyle.Render("    "+m.err.Error())
	} else {
		status += "\n" + dimStyle.Render("    "+line2)
	}
	return status
}

// statusLines describes the cursor position, the star under it and the
// ruler, without styling.
func (m SkyViewModel) statusLines(s chart.Scene) (string, string) {
	sky := s.Projection.Unproject(m.cursorPixel(), s.View)
	both := s.FromFrame(sky)

	line1 := fmt.Sprintf(">>> Az %6.2f° Alt %+6.2f° | RA %s Dec %s",
		both.AzDeg, both.ElDeg, formatRA(both.RAdeg), formatDec(both.DecDeg))

	var parts []string
	if star, ok := s.Pick(m.catalog, m.cursorPixel(), pickRadius); ok {
		parts = append(parts, fmt.Sprintf("%s (mag %.2f)", star.Name, star.Mag))
	} else if sun, ok := s.Sun(); ok && math.Hypot(sun.Pos.X-m.cursorPixel().X, sun.Pos.Y-m.cursorPixel().Y) <= pickRadius {
		parts = append(parts, "Sun")
	}
	if m.mark != nil {
		parts = append(parts, fmt.Sprintf("Ruler %.2f°", projection.Separation(*m.mark, sky)))
	}
	if tp, ok := s.Projection.(projection.TileProjection); ok {
		tile := projection.TileFor(tp, sky, projection.ZoomFor(s.View.FieldOfView))
		parts = append(parts, "Tile "+tile.String())
	}
	parts = append(parts, m.snapshot.Time.Format("2006-01-02 15:04:05 MST"))
	if recent := m.recentEvents(); recent != "" {
		parts = append(parts, recent)
	}

	return line1, strings.Join(parts, " | ")
}

// recentEvents lists the latest view changes, oldest first.
func (m SkyViewModel) recentEvents() string {
	events := m.state.RecentEvents(recentShown)
	if len(events) == 0 {
		return ""
	}
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = string(e.Type)
	}
	return "Recent: " + strings.Join(names, " ")
}

// picked returns the name of the object under the cursor, if any.
func (m SkyViewModel) picked(s chart.Scene) string {
	if star, ok := s.Pick(m.catalog, m.cursorPixel(), pickRadius); ok {
		return star.Name
	}
	return ""
}

func (m SkyViewModel) renderCanvas(s chart.Scene, cols, rows int) string {
	c := chart.NewCanvas(cols, rows)

	opts := chart.DefaultOptions()
	opts.Grid = m.grid
	opts.Labels = m.labelMode
	opts.Focus = m.picked(s)
	chart.Render(c, s, m.catalog, opts)

	// Ruler from the mark to the cursor
	cursor := m.cursorPixel()
	if m.mark != nil {
		from := s.Projection.Project(*m.mark, s.View)
		if s.Visible(*m.mark, from) {
			c.Line(from, cursor, glyphRuler, chart.ClassRuler)
		}
	}
	c.Set(m.cursorCol, m.cursorRow, glyphCursor, chart.ClassCursor)

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell := c.At(col, row)
			style := lipgloss.NewStyle().Foreground(classColors[cell.Class])
			b.WriteString(style.Render(string(cell.Rune)))
		}
		if row < rows-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// formatRA formats right ascension degrees as hours, minutes and seconds.
func formatRA(deg float64) string {
	total := int(math.Round(projection.NormalizeAzimuth(deg) / 15 * 3600))
	total %= 24 * 3600
	return fmt.Sprintf("%02dh%02dm%02ds", total/3600, total/60%60, total%60)
}

// formatDec formats declination degrees as signed degrees and arcminutes.
func formatDec(deg float64) string {
	sign := '+'
	if deg < 0 {
		sign = '-'
	}
	total := int(math.Round(math.Abs(deg) * 60))
	return fmt.Sprintf("%c%02d°%02d′", sign, total/60, total%60)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}

// lerp linear interpolation
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Init returns nil cmd
func (m SkyViewModel) Init() tea.Cmd {
	return nil
}
