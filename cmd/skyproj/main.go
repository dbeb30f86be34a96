// Command skyproj is a terminal sky chart built on an orthographic (SIN)
// projection engine, with headless modes for scripting.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Astrarium/Astrarium-sub009/internal/chart"
	"github.com/Astrarium/Astrarium-sub009/internal/config"
	"github.com/Astrarium/Astrarium-sub009/internal/logging"
	"github.com/Astrarium/Astrarium-sub009/internal/projection"
	"github.com/Astrarium/Astrarium-sub009/internal/state"
	"github.com/Astrarium/Astrarium-sub009/internal/ui"
)

// CLI flags for headless mode
type headlessFlags struct {
	project    string
	unproject  string
	miniSky    bool
	exportPath string
	saveConfig string
}

func (h headlessFlags) any() bool {
	return h.project != "" || h.unproject != "" || h.miniSky || h.exportPath != "" || h.saveConfig != ""
}

func main() {
	fs := flag.NewFlagSet("skyproj", flag.ExitOnError)
	cfgFlags := config.RegisterFlags(fs)

	var h headlessFlags
	fs.StringVar(&h.project, "project", "", "Project a point given as az,alt (or ra,dec) and print the pixel")
	fs.StringVar(&h.unproject, "unproject", "", "Unproject a pixel given as x,y and print the sky point (and z/x/y tile for tile projections)")
	fs.BoolVar(&h.miniSky, "mini-sky", false, "Print an ASCII mini sky chart")
	fs.StringVar(&h.exportPath, "export", "", "Export the projected scene as JSON to file (use - for stdout)")
	fs.StringVar(&h.saveConfig, "save-config", "", "Write the effective config to this path and exit")

	if err := cfgFlags.Parse(fs, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(cfgFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so it only logs to the file
	var console io.Writer = os.Stderr
	if !h.any() {
		console = nil
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.File, console)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	stateMgr, err := newStateManager(cfg, logger)
	if err != nil {
		logger.Error("invalid initial state", zap.Error(err))
		os.Exit(1)
	}

	if h.any() {
		if err := runHeadless(os.Stdout, cfg, stateMgr, h); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: the sky chart needs a terminal; use -mini-sky or -export for piped output")
		os.Exit(1)
	}

	labels, _ := cfg.LabelMode()
	model := ui.New(stateMgr, cfg.StarCatalog(), ui.SkyOptions{
		Grid:             cfg.View.Grid,
		Labels:           labels,
		ShowBelowHorizon: cfg.View.ShowBelowHorizon,
	}, logger)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// SIGHUP re-reads the config file; flags still win
	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	load := func() (*config.Config, error) { return config.Load(cfgFlags) }

	// Start clock loop in background
	go runClockLoop(ctx, stateMgr, p, hupCh, load, logger)

	logger.Info("starting sky chart",
		zap.String("projection", cfg.View.Projection),
		zap.String("frame", cfg.View.Frame),
		zap.String("observer", cfg.Observer.Name),
	)

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// newStateManager builds the view state from the loaded configuration.
func newStateManager(cfg *config.Config, logger *zap.Logger) (*state.Manager, error) {
	kind, err := cfg.Kind()
	if err != nil {
		return nil, err
	}
	frame, err := cfg.Frame()
	if err != nil {
		return nil, err
	}
	start, err := cfg.StartTime(time.Now)
	if err != nil {
		return nil, err
	}

	stateCfg := state.DefaultConfig()
	stateCfg.View = cfg.ViewState()
	stateCfg.Kind = kind
	stateCfg.Frame = frame
	stateCfg.Observer = cfg.ObserverSite()
	stateCfg.Time = start
	stateCfg.FollowClock = !cfg.Fixed()
	stateCfg.RefreshInterval = cfg.Clock.Refresh
	stateCfg.Logger = logger.Named("state")
	return state.NewManager(stateCfg)
}

// sender is the part of tea.Program the clock loop talks to.
type sender interface {
	Send(msg tea.Msg)
}

// runClockLoop advances the observation time and applies config reloads,
// notifying the program of both.
func runClockLoop(ctx context.Context, stateMgr *state.Manager, p sender, reload <-chan os.Signal, load func() (*config.Config, error), logger *zap.Logger) {
	ticker := time.NewTicker(stateMgr.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("clock loop shutting down")
			return
		case now := <-ticker.C:
			if stateMgr.Tick(now) {
				p.Send(ui.ClockMsg{Snapshot: stateMgr.Snapshot()})
			}
		case <-reload:
			cfg, err := load()
			if err != nil {
				err = fmt.Errorf("reload config: %w", err)
				logger.Warn("config reload failed", zap.Error(err))
				p.Send(ui.ErrorMsg{Error: err})
				continue
			}
			if err := applyReload(stateMgr, cfg); err != nil {
				logger.Warn("config reload failed", zap.Error(err))
				p.Send(ui.ErrorMsg{Error: err})
				continue
			}
			ticker.Reset(stateMgr.RefreshInterval())
			logger.Info("config reloaded",
				zap.String("observer", cfg.Observer.Name),
				zap.Duration("refresh", stateMgr.RefreshInterval()),
			)
			p.Send(ui.ClockMsg{Snapshot: stateMgr.Snapshot()})
		}
	}
}

// applyReload moves a running chart to a reloaded config's observer, refresh
// interval and, when the config pins one, observation time. The view itself
// is left alone.
func applyReload(stateMgr *state.Manager, cfg *config.Config) error {
	if cfg.Fixed() {
		t, err := cfg.StartTime(time.Now)
		if err != nil {
			return fmt.Errorf("reload config: %w", err)
		}
		stateMgr.SetTime(t)
	}
	stateMgr.SetObserver(cfg.ObserverSite())
	stateMgr.SetRefreshInterval(cfg.Clock.Refresh)
	return nil
}

// runHeadless handles all headless modes without starting the TUI.
func runHeadless(w io.Writer, cfg *config.Config, stateMgr *state.Manager, h headlessFlags) error {
	snap := stateMgr.Snapshot()
	scene := snap.Scene()
	scene.ShowBelowHorizon = cfg.View.ShowBelowHorizon
	catalog := cfg.StarCatalog()

	if h.saveConfig != "" {
		if err := cfg.SaveTo(h.saveConfig); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(w, "Config written to %s\n", h.saveConfig)
	}

	if h.project != "" {
		az, alt, err := parsePair(h.project)
		if err != nil {
			return fmt.Errorf("-project: %w", err)
		}
		p := scene.Projection.Project(projection.SphericalPoint{Azimuth: az, Altitude: alt}, scene.View)
		fmt.Fprintf(w, "%.6f %.6f\n", p.X, p.Y)
	}

	if h.unproject != "" {
		x, y, err := parsePair(h.unproject)
		if err != nil {
			return fmt.Errorf("-unproject: %w", err)
		}
		s := scene.Projection.Unproject(projection.PlanarPoint{X: x, Y: y}, scene.View)
		if tp, ok := scene.Projection.(projection.TileProjection); ok {
			tile := projection.TileFor(tp, s, projection.ZoomFor(scene.View.FieldOfView))
			fmt.Fprintf(w, "%.6f %.6f %s\n", s.Azimuth, s.Altitude, tile)
		} else {
			fmt.Fprintf(w, "%.6f %.6f\n", s.Azimuth, s.Altitude)
		}
	}

	if h.exportPath != "" {
		export := chart.Export(scene, catalog)
		if h.exportPath == "-" {
			if err := export.WriteJSON(w); err != nil {
				return fmt.Errorf("write JSON to stdout: %w", err)
			}
		} else {
			f, err := os.Create(h.exportPath)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			if err := export.WriteJSON(f); err != nil {
				return fmt.Errorf("write JSON to file: %w", err)
			}
		}
	}

	if h.miniSky {
		cols, rows := miniSkySize()
		if err := chart.WriteMiniSky(w, scene, catalog, cols, rows); err != nil {
			return err
		}
	}

	return nil
}

// miniSkySize fits the mini sky to the terminal, or uses 72x24 when stdout
// is not a terminal.
func miniSkySize() (cols, rows int) {
	cols, rows = 72, 24
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 && h > 8 {
			cols, rows = w, h-4
		}
	}
	return cols, rows
}

// parsePair parses "a,b" into two floats.
func parsePair(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want two comma-separated numbers, got %q", s)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
