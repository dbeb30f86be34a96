package config

import (
	"flag"
	"time"
)

// Flags holds command-line overrides. Only flags the user actually set are
// applied on top of the file configuration.
type Flags struct {
	ConfigPath string
	Debug      bool
	Projection string
	Frame      string
	Azimuth    float64
	Altitude   float64
	FOV        float64
	Width      float64
	Height     float64
	MagLimit   float64
	Latitude   float64
	Longitude  float64
	Time       string
	Refresh    time.Duration
	LogLevel   string
	LogFile    string

	set map[string]bool
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Projection, "projection", "", "Projection (sin, mercator, plate-carree)")
	fs.StringVar(&f.Frame, "frame", "", "Coordinate frame (horizontal, equatorial)")
	fs.Float64Var(&f.Azimuth, "az", 0, "View center azimuth or RA in degrees")
	fs.Float64Var(&f.Altitude, "alt", 0, "View center altitude or Dec in degrees")
	fs.Float64Var(&f.FOV, "fov", 0, "Field of view in degrees")
	fs.Float64Var(&f.Width, "width", 0, "Viewport width in pixels (headless modes)")
	fs.Float64Var(&f.Height, "height", 0, "Viewport height in pixels (headless modes)")
	fs.Float64Var(&f.MagLimit, "mag", 0, "Faintest star magnitude to draw")
	fs.Float64Var(&f.Latitude, "lat", 0, "Observer latitude in degrees")
	fs.Float64Var(&f.Longitude, "lon", 0, "Observer longitude in degrees, east positive")
	fs.StringVar(&f.Time, "time", "", "Observation time (RFC 3339), default now")
	fs.DurationVar(&f.Refresh, "refresh", 0, "Clock refresh interval (e.g., 1s, 30s)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file with rotation")
	return f
}

// Parse parses args and records which flags were given.
func (f *Flags) Parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return nil
}

func (f *Flags) isSet(name string) bool {
	return f.set[name]
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.isSet("log-level") {
		cfg.Logging.Level = f.LogLevel
	}
	if f.isSet("log-file") {
		cfg.Logging.File.Path = f.LogFile
	}
	if f.isSet("projection") {
		cfg.View.Projection = f.Projection
	}
	if f.isSet("frame") {
		cfg.View.Frame = f.Frame
	}
	if f.isSet("az") {
		cfg.View.CenterAzimuth = f.Azimuth
	}
	if f.isSet("alt") {
		cfg.View.CenterAltitude = f.Altitude
	}
	if f.isSet("fov") {
		cfg.View.FieldOfView = f.FOV
	}
	if f.isSet("width") {
		cfg.View.Width = f.Width
	}
	if f.isSet("height") {
		cfg.View.Height = f.Height
	}
	if f.isSet("mag") {
		cfg.View.MagLimit = f.MagLimit
	}
	if f.isSet("lat") {
		cfg.Observer.Latitude = f.Latitude
	}
	if f.isSet("lon") {
		cfg.Observer.Longitude = f.Longitude
	}
	if f.isSet("time") {
		cfg.Clock.Time = f.Time
	}
	if f.isSet("refresh") {
		cfg.Clock.Refresh = f.Refresh
	}
}
