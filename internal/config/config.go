// Package config handles skyproj configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Astrarium/Astrarium-sub009/internal/astro"
	"github.com/Astrarium/Astrarium-sub009/internal/chart"
	"github.com/Astrarium/Astrarium-sub009/internal/logging"
	"github.com/Astrarium/Astrarium-sub009/internal/projection"
)

// Clock refresh bounds; Load clamps into this range.
const (
	MinRefresh = 100 * time.Millisecond
	MaxRefresh = 5 * time.Minute
)

// Config holds all skyproj settings.
type Config struct {
	View     ViewConfig     `yaml:"view"`
	Observer ObserverConfig `yaml:"observer"`
	Clock    ClockConfig    `yaml:"clock"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ViewConfig holds the initial view and chart options.
type ViewConfig struct {
	Projection       string  `yaml:"projection"`
	Frame            string  `yaml:"frame"`
	CenterAzimuth    float64 `yaml:"center_azimuth"`
	CenterAltitude   float64 `yaml:"center_altitude"`
	FieldOfView      float64 `yaml:"fov"`
	Width            float64 `yaml:"width"`  // headless viewport, pixels
	Height           float64 `yaml:"height"` // headless viewport, pixels
	Grid             bool    `yaml:"grid"`
	Labels           string  `yaml:"labels"`
	ShowBelowHorizon bool    `yaml:"show_below_horizon"`
	MagLimit         float64 `yaml:"mag_limit"` // faintest star drawn
}

// ObserverConfig holds the observing site.
type ObserverConfig struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// ClockConfig holds the observation time settings.
type ClockConfig struct {
	Time    string        `yaml:"time"` // RFC 3339; empty follows the wall clock
	Refresh time.Duration `yaml:"refresh"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string             `yaml:"level"`
	File  logging.FileConfig `yaml:"file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		View: ViewConfig{
			Projection:     projection.KindSin.String(),
			Frame:          chart.FrameHorizontal.String(),
			CenterAzimuth:  180,
			CenterAltitude: 45,
			FieldOfView:    90,
			Width:          800,
			Height:         600,
			Labels:         chart.LabelBright.String(),
			MagLimit:       6,
		},
		Observer: ObserverConfig{
			Name:      "Greenwich",
			Latitude:  51.4769,
			Longitude: -0.0005,
		},
		Clock: ClockConfig{
			Refresh: time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  logging.DefaultFileConfig(""),
		},
	}
}

// Validate checks that every setting can be turned into a working view.
func (c *Config) Validate() error {
	var errs []error

	if err := c.ViewState().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("view: %w", err))
	}
	if c.View.CenterAltitude < -90 || c.View.CenterAltitude > 90 {
		errs = append(errs, fmt.Errorf("view: center altitude %v outside [-90, 90]", c.View.CenterAltitude))
	}
	if _, err := projection.ParseKind(c.View.Projection); err != nil {
		errs = append(errs, fmt.Errorf("view: %w", err))
	}
	if _, err := chart.ParseFrame(c.View.Frame); err != nil {
		errs = append(errs, fmt.Errorf("view: %w", err))
	}
	if _, err := chart.ParseLabelMode(c.View.Labels); err != nil {
		errs = append(errs, fmt.Errorf("view: %w", err))
	}
	if math.IsNaN(c.View.MagLimit) {
		errs = append(errs, errors.New("view: mag_limit is not a number"))
	}
	if c.Observer.Latitude < -90 || c.Observer.Latitude > 90 {
		errs = append(errs, fmt.Errorf("observer: latitude %v outside [-90, 90]", c.Observer.Latitude))
	}
	if c.Observer.Longitude < -180 || c.Observer.Longitude > 180 {
		errs = append(errs, fmt.Errorf("observer: longitude %v outside [-180, 180]", c.Observer.Longitude))
	}
	if _, err := c.StartTime(time.Now); err != nil {
		errs = append(errs, fmt.Errorf("clock: %w", err))
	}

	return errors.Join(errs...)
}

// ViewState returns the configured initial view.
func (c *Config) ViewState() projection.ViewState {
	return projection.ViewState{
		Center: projection.SphericalPoint{
			Azimuth:  projection.NormalizeAzimuth(c.View.CenterAzimuth),
			Altitude: c.View.CenterAltitude,
		},
		FieldOfView: c.View.FieldOfView,
		Width:       c.View.Width,
		Height:      c.View.Height,
	}
}

// Kind returns the configured projection kind.
func (c *Config) Kind() (projection.Kind, error) {
	return projection.ParseKind(c.View.Projection)
}

// Frame returns the configured coordinate frame.
func (c *Config) Frame() (chart.Frame, error) {
	return chart.ParseFrame(c.View.Frame)
}

// LabelMode returns the configured label mode.
func (c *Config) LabelMode() (chart.LabelMode, error) {
	return chart.ParseLabelMode(c.View.Labels)
}

// StarCatalog returns the built-in catalog cut at the magnitude limit.
func (c *Config) StarCatalog() astro.StarCatalog {
	return astro.DefaultStarCatalog().Brighter(c.View.MagLimit)
}

// ObserverSite returns the configured observer.
func (c *Config) ObserverSite() astro.Observer {
	return astro.Observer{
		Name:   c.Observer.Name,
		LatDeg: c.Observer.Latitude,
		LonDeg: c.Observer.Longitude,
	}
}

// StartTime returns the configured observation time, or now() when the
// clock follows the wall clock.
func (c *Config) StartTime(now func() time.Time) (time.Time, error) {
	if c.Clock.Time == "" {
		return now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, c.Clock.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", c.Clock.Time, err)
	}
	return t.UTC(), nil
}

// Fixed reports whether the observation time is pinned by configuration.
func (c *Config) Fixed() bool {
	return c.Clock.Time != ""
}

// clampRefresh keeps the clock refresh interval within bounds.
func (c *Config) clampRefresh() {
	if c.Clock.Refresh < MinRefresh {
		c.Clock.Refresh = MinRefresh
	} else if c.Clock.Refresh > MaxRefresh {
		c.Clock.Refresh = MaxRefresh
	}
}
