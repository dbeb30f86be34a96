// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Astrarium/Astrarium-sub009/internal/astro"
	"github.com/Astrarium/Astrarium-sub009/internal/state"
	"github.com/Astrarium/Astrarium-sub009/internal/version"
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// ClockMsg signals that the observation time advanced.
	ClockMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg reports an error from a view change or the background loop.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state *state.Manager
	log   *zap.Logger

	// UI state
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	skyView SkyViewModel
}

// New creates a new root UI model.
func New(stateMgr *state.Manager, catalog astro.StarCatalog, opts SkyOptions, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	return Model{
		state:   stateMgr,
		log:     log,
		skyView: NewSkyViewModel(stateMgr, catalog, opts),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// headerLines is the height of the title block above the chart.
const headerLines = 3

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		default:
			m.statusMsg = ""
			var cmd tea.Cmd
			m.skyView, cmd = m.skyView.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Title block above, footer below
		contentHeight := msg.Height - headerLines - 1
		m.skyView = m.skyView.SetSize(msg.Width, contentHeight)
		m.log.Debug("window resized", zap.Int("width", msg.Width), zap.Int("height", msg.Height))

	case TickMsg:
		m.animTick++
		cmds = append(cmds, tickCmd())

	case ClockMsg:
		m.skyView = m.skyView.UpdateData(msg.Snapshot)

	case ErrorMsg:
		m.statusMsg = "ERROR: " + msg.Error.Error()
		m.log.Warn("background error", zap.Error(msg.Error))

	default:
		var cmd tea.Cmd
		m.skyView, cmd = m.skyView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.renderHeader() + "\n" + m.skyView.View() + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString("\n  ")

	title := "✦ S K Y P R O J ✦"
	runes := []rune(title)
	for col, r := range runes {
		style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(gradientColor(col, len(runes))))
		b.WriteString(style.Render(string(r)))
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  Sky projection explorer · v%s", version.Version)))
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color for a column of the title gradient.
// Blue -> purple -> magenta -> pink.
func gradientColor(col, width int) string {
	xRatio := float64(col) / float64(width)

	// Blue (#3B82F6) -> Purple (#8B5CF6) -> Magenta (#D946EF) -> Pink (#EC4899)
	var r, g, b float64

	if xRatio < 0.33 {
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	return fmt.Sprintf("#%02X%02X%02X",
		clampInt(int(r), 0, 255),
		clampInt(int(g), 0, 255),
		clampInt(int(b), 0, 255),
	)
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	// Animated spinner frames
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	var status string
	if m.statusMsg != "" {
		status = errorStyle.Render(m.statusMsg)
	} else if m.skyView.snapshot.FollowClock {
		spinner := spinnerFrames[m.animTick%len(spinnerFrames)]
		status = accentStyle.Render(spinner) + dimStyle.Render(" live")
	} else {
		status = accentStyle.Render("■") + dimStyle.Render(" fixed time")
	}

	help := dimStyle.Render("hjkl: cursor | wasd: pan | +/-: zoom | c: center | m/x: ruler | p: proj | f: frame | g: grid | b: back | L: labels | [/]: time | n: now | q: quit")

	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

func tickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}
