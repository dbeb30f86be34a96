package ui

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Astrarium/Astrarium-sub009/internal/astro"
	"github.com/Astrarium/Astrarium-sub009/internal/chart"
	"github.com/Astrarium/Astrarium-sub009/internal/projection"
	"github.com/Astrarium/Astrarium-sub009/internal/state"
)

func newTestState(t *testing.T) *state.Manager {
	t.Helper()
	cfg := state.DefaultConfig()
	cfg.Observer = astro.Observer{Name: "Greenwich", LatDeg: 51.48, LonDeg: 0}
	cfg.Time = time.Date(2024, 1, 15, 4, 0, 0, 0, time.UTC)
	cfg.FollowClock = false
	m, err := state.NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

// newTestSky returns a sky view with an 80x24 cell canvas.
func newTestSky(t *testing.T) SkyViewModel {
	t.Helper()
	m := NewSkyViewModel(newTestState(t), astro.DefaultStarCatalog(), SkyOptions{Labels: chart.LabelBright})
	return m.SetSize(80, 27)
}

func press(m SkyViewModel, keys ...string) SkyViewModel {
	for _, k := range keys {
		m, _ = m.handleKey(k)
	}
	return m
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{180, 180},
		{-180, -180},
		{360, 0},
		{-360, 0},
		{350, -10},   // wraps to -10
		{370, 10},    // wraps to 10
		{-190, 170},  // wraps to 170
		{540, 180},   // multiple wraps
		{-540, -180}, // multiple wraps
	}

	for _, tt := range tests {
		got := normalizeAngle(tt.input)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLerpAngle_ShortestPath(t *testing.T) {
	tests := []struct {
		from     float64
		to       float64
		t        float64
		expected float64
	}{
		{0, 90, 0.5, 45},
		{0, 180, 0.5, 90},

		// Wrap-around: 350 to 10 should go +20, not -340
		{350, 10, 0.5, 360},
		{350, 10, 0.0, 350},
		{350, 10, 1.0, 370},

		// Other direction: 10 to 350 should go -20
		{10, 350, 0.5, 0},
		{10, 350, 1.0, -10},
	}

	for _, tt := range tests {
		got := normalizeAngle(lerpAngle(tt.from, tt.to, tt.t))
		exp := normalizeAngle(tt.expected)

		diff := math.Abs(got - exp)
		if diff > 180 {
			diff = 360 - diff
		}
		if diff > 0.001 {
			t.Errorf("lerpAngle(%v, %v, %v) = %v, want %v", tt.from, tt.to, tt.t, got, exp)
		}
	}
}

func TestSkyView_SetSizeResizesView(t *testing.T) {
	m := newTestSky(t)

	v := m.snapshot.View
	if v.Width != 80 || v.Height != 48 {
		t.Errorf("view = %vx%v, want 80x48", v.Width, v.Height)
	}
	if m.cursorCol != 40 || m.cursorRow != 12 {
		t.Errorf("cursor = %d,%d, want centered 40,12", m.cursorCol, m.cursorRow)
	}

	// The centered cursor sits within a cell of the view center
	if sep := projection.Separation(m.cursorSky(), v.Center); sep > 2 {
		t.Errorf("cursor is %v° from the view center", sep)
	}
}

func TestSkyView_CursorClampsToCanvas(t *testing.T) {
	m := newTestSky(t)

	for i := 0; i < 100; i++ {
		m = press(m, "left", "up")
	}
	if m.cursorCol != 0 || m.cursorRow != 0 {
		t.Errorf("cursor = %d,%d, want 0,0", m.cursorCol, m.cursorRow)
	}

	for i := 0; i < 100; i++ {
		m = press(m, "l", "j")
	}
	if m.cursorCol != 79 || m.cursorRow != 23 {
		t.Errorf("cursor = %d,%d, want 79,23", m.cursorCol, m.cursorRow)
	}
}

func TestSkyView_PanAndZoomKeys(t *testing.T) {
	m := newTestSky(t)
	start := m.snapshot.View

	m = press(m, "w")
	if got := m.snapshot.View.Center.Altitude; math.Abs(got-(start.Center.Altitude+start.FieldOfView*panFraction)) > 1e-9 {
		t.Errorf("after w altitude = %v", got)
	}

	m = press(m, "d")
	if got := m.snapshot.View.Center.Azimuth; math.Abs(got-(start.Center.Azimuth+start.FieldOfView*panFraction)) > 1e-9 {
		t.Errorf("after d azimuth = %v", got)
	}

	m = press(m, "+")
	if got := m.snapshot.View.FieldOfView; math.Abs(got-start.FieldOfView/zoomStep) > 1e-9 {
		t.Errorf("after + fov = %v", got)
	}

	m = press(m, "b", "b", "b")
	if m.snapshot.View.Center != start.Center || m.snapshot.View.FieldOfView != start.FieldOfView {
		t.Errorf("three backs should restore %+v, got %+v", start, m.snapshot.View)
	}
}

func TestSkyView_ToggleKeys(t *testing.T) {
	m := newTestSky(t)

	m = press(m, "p")
	if m.snapshot.Kind != projection.KindMercator {
		t.Errorf("p should switch to mercator, got %v", m.snapshot.Kind)
	}

	m = press(m, "f")
	if m.snapshot.Frame != chart.FrameEquatorial {
		t.Errorf("f should switch to equatorial, got %v", m.snapshot.Frame)
	}

	m = press(m, "g")
	if !m.grid {
		t.Error("g should turn the grid on")
	}

	m = press(m, "L")
	if m.labelMode != chart.LabelAll {
		t.Errorf("L should cycle labels to all, got %v", m.labelMode)
	}
}

func TestSkyView_TimeKeys(t *testing.T) {
	m := newTestSky(t)
	start := m.snapshot.Time

	m = press(m, "]", "]")
	if got := m.snapshot.Time; !got.Equal(start.Add(2 * timeStep)) {
		t.Errorf("after ]] time = %v, want %v", got, start.Add(2*timeStep))
	}
	m = press(m, "[")
	if got := m.snapshot.Time; !got.Equal(start.Add(timeStep)) {
		t.Errorf("after [ time = %v, want %v", got, start.Add(timeStep))
	}
	if m.snapshot.FollowClock {
		t.Error("stepping the time should pin it")
	}

	before := time.Now()
	m = press(m, "n")
	if !m.snapshot.FollowClock {
		t.Error("n should follow the clock again")
	}
	if m.snapshot.Time.Before(before.Add(-time.Second)) {
		t.Errorf("n should jump to now, time = %v", m.snapshot.Time)
	}
}

func TestSkyView_FailedChangeSendsError(t *testing.T) {
	m := newTestSky(t)
	start := m.snapshot.View

	// A corrupt field of view turns the pan step into NaN.
	m.snapshot.View.FieldOfView = math.NaN()
	m, cmd := m.handleKey("w")
	if cmd == nil {
		t.Fatal("a rejected pan should return a command")
	}
	msg, ok := cmd().(ErrorMsg)
	if !ok {
		t.Fatalf("command sent %T, want ErrorMsg", cmd())
	}
	if !errors.Is(msg.Error, projection.ErrInvalidCenter) {
		t.Errorf("error = %v, want ErrInvalidCenter", msg.Error)
	}
	if m.snapshot.View != start {
		t.Errorf("view changed to %+v", m.snapshot.View)
	}

	if _, cmd := m.handleKey("d"); cmd != nil {
		t.Error("a valid pan should not return a command")
	}
}

func TestSkyView_StatusShowsRecentEvents(t *testing.T) {
	m := newTestSky(t)
	m = press(m, "w", "+", "d", "-")

	_, line2 := m.statusLines(m.scene())
	if !strings.Contains(line2, "Recent: ZOOM PAN ZOOM") {
		t.Errorf("status should list the last three changes: %q", line2)
	}
}

func TestSkyView_StatusShowsTileForTileProjections(t *testing.T) {
	m := newTestSky(t)

	_, line2 := m.statusLines(m.scene())
	if strings.Contains(line2, "Tile ") {
		t.Errorf("sin projection should not show a tile: %q", line2)
	}

	m = press(m, "p")
	s := m.scene()
	tp := s.Projection.(projection.TileProjection)
	want := projection.TileFor(tp, m.cursorSky(), projection.ZoomFor(s.View.FieldOfView))

	_, line2 = m.statusLines(s)
	if !strings.Contains(line2, "Tile "+want.String()) {
		t.Errorf("status = %q, want tile %v", line2, want)
	}
	if want.Z != 2 {
		t.Errorf("zoom for a 90° view = %d, want 2", want.Z)
	}
}

func TestSkyView_Ruler(t *testing.T) {
	m := newTestSky(t)

	m = press(m, "m")
	if m.mark == nil {
		t.Fatal("m should set the ruler mark")
	}

	for i := 0; i < 10; i++ {
		m = press(m, "right")
	}

	_, line2 := m.statusLines(m.scene())
	if !strings.Contains(line2, "Ruler") {
		t.Errorf("status should show the ruler: %q", line2)
	}

	want := projection.Separation(*m.mark, m.cursorSky())
	if want <= 0 {
		t.Errorf("ruler separation = %v, want > 0", want)
	}

	m = press(m, "x")
	if m.mark != nil {
		t.Error("x should clear the ruler")
	}
}

func TestSkyView_CenterOnCursorAnimates(t *testing.T) {
	m := newTestSky(t)
	for i := 0; i < 10; i++ {
		m = press(m, "right")
	}
	target := m.cursorSky()

	m, cmd := m.handleKey("c")
	if cmd == nil || !m.animating {
		t.Fatal("c should start an animation")
	}

	// Finish the animation
	m.animStart = time.Now().Add(-2 * animDuration)
	m, cmd = m.Update(animTickMsg(time.Now()))
	if cmd != nil || m.animating {
		t.Error("animation should be complete")
	}

	if sep := projection.Separation(m.snapshot.View.Center, target); sep > 1e-6 {
		t.Errorf("view center is %v° from the cursor target", sep)
	}
	if m.cursorCol != 40 || m.cursorRow != 12 {
		t.Errorf("cursor should return to center, got %d,%d", m.cursorCol, m.cursorRow)
	}
	if m.snapshot.HistoryLen != 1 {
		t.Errorf("animation should add one history entry, got %d", m.snapshot.HistoryLen)
	}
}

func TestSkyView_PicksStarUnderCursor(t *testing.T) {
	st := newTestState(t)
	cat := astro.DefaultStarCatalog()
	sirius, _ := cat.Find("Sirius")

	if err := st.SetFrame(chart.FrameEquatorial); err != nil {
		t.Fatal(err)
	}
	if err := st.CenterOn(projection.SphericalPoint{Azimuth: sirius.RAdeg, Altitude: sirius.DecDeg}); err != nil {
		t.Fatal(err)
	}

	m := NewSkyViewModel(st, cat, SkyOptions{ShowBelowHorizon: true}).SetSize(80, 27)
	line1, line2 := m.statusLines(m.scene())

	if !strings.Contains(line2, "Sirius") {
		t.Errorf("status should name Sirius: %q", line2)
	}
	if !strings.Contains(line1, "RA 06h") || !strings.Contains(line1, "Dec -1") {
		t.Errorf("status should show Sirius' coordinates: %q", line1)
	}
}

func TestSkyView_View(t *testing.T) {
	m := newTestSky(t)
	out := m.View()

	if !strings.Contains(out, "Sky Chart") {
		t.Error("view should have a header")
	}
	if !strings.Contains(out, ">>> Az") {
		t.Error("view should have a status line")
	}
	if !strings.Contains(out, string(glyphCursor)) {
		t.Error("view should draw the cursor")
	}

	small := m.SetSize(10, 5)
	if got := small.View(); got != "Sky view requires larger terminal" {
		t.Errorf("small view = %q", got)
	}
}

func TestFormatRA(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "00h00m00s"},
		{15, "01h00m00s"},
		{101.287, "06h45m09s"},
		{359.9999, "00h00m00s"},
		{-15, "23h00m00s"},
	}
	for _, tt := range tests {
		if got := formatRA(tt.deg); got != tt.want {
			t.Errorf("formatRA(%v) = %q, want %q", tt.deg, got, tt.want)
		}
	}
}

func TestFormatDec(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "+00°00′"},
		{-16.716, "-16°43′"},
		{89.264, "+89°16′"},
		{-0.5, "-00°30′"},
	}
	for _, tt := range tests {
		if got := formatDec(tt.deg); got != tt.want {
			t.Errorf("formatDec(%v) = %q, want %q", tt.deg, got, tt.want)
		}
	}
}
