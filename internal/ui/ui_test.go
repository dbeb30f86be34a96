package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Astrarium/Astrarium-sub009/internal/astro"
	"github.com/Astrarium/Astrarium-sub009/internal/chart"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := New(newTestState(t), astro.DefaultStarCatalog(), SkyOptions{Labels: chart.LabelBright}, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 34})
	return updated.(Model)
}

func TestModel_NotReadyBeforeSize(t *testing.T) {
	m := New(newTestState(t), astro.DefaultStarCatalog(), SkyOptions{}, nil)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q", got)
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(t)

	if !m.ready {
		t.Fatal("model should be ready after a window size message")
	}
	cols, rows := m.skyView.canvasSize()
	if cols != 100 || rows != 34-headerLines-1-3 {
		t.Errorf("canvas = %dx%d", cols, rows)
	}

	out := m.View()
	if !strings.Contains(out, "Sky projection explorer") {
		t.Error("view should include the title block")
	}
	if !strings.Contains(out, "q: quit") {
		t.Error("view should include the key help")
	}
	if got := strings.Count(out, "\n") + 1; got != 34 {
		t.Errorf("view has %d lines, want 34", got)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%q should return a command", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q should quit", key.String())
		}
	}
}

func TestModel_ForwardsKeysToSkyView(t *testing.T) {
	m := newTestModel(t)
	before := m.skyView.snapshot.View.FieldOfView

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	m = updated.(Model)

	if got := m.skyView.snapshot.View.FieldOfView; got >= before {
		t.Errorf("fov = %v, want less than %v after zooming in", got, before)
	}
}

func TestModel_ClockMsg(t *testing.T) {
	m := newTestModel(t)

	st := m.state
	later := time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC)
	st.SetTime(later)

	updated, _ := m.Update(ClockMsg{Snapshot: st.Snapshot()})
	m = updated.(Model)

	if !m.skyView.snapshot.Time.Equal(later) {
		t.Errorf("sky view time = %v, want %v", m.skyView.snapshot.Time, later)
	}
}

func TestModel_ErrorMsg(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(ErrorMsg{Error: errors.New("clock stalled")})
	m = updated.(Model)

	if !strings.Contains(m.View(), "clock stalled") {
		t.Error("error should appear in the footer")
	}

	// Any key clears it
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	m = updated.(Model)
	if m.statusMsg != "" {
		t.Errorf("statusMsg = %q, want cleared", m.statusMsg)
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 10); got != "#3B82F6" {
		t.Errorf("gradient start = %s, want #3B82F6", got)
	}
	if got := gradientColor(19, 20); got != "#E947A5" {
		t.Errorf("gradient end = %s, want #E947A5", got)
	}
	for col := 0; col < 20; col++ {
		got := gradientColor(col, 20)
		if len(got) != 7 || got[0] != '#' {
			t.Errorf("gradientColor(%d) = %q", col, got)
		}
	}
}
