// Package chart assembles what a sky chart shows: stars, the Sun, the
// horizon and coordinate grid, projected for one view at one instant.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Astrarium/Astrarium-sub009/internal/astro"
	"github.com/Astrarium/Astrarium-sub009/internal/projection"
)

// Frame selects which coordinate system the view center and the projected
// points are expressed in.
type Frame int

const (
	// FrameHorizontal uses azimuth/altitude for the observer.
	FrameHorizontal Frame = iota

	// FrameEquatorial uses right ascension/declination.
	FrameEquatorial
)

func (f Frame) String() string {
	switch f {
	case FrameHorizontal:
		return "horizontal"
	case FrameEquatorial:
		return "equatorial"
	default:
		return fmt.Sprintf("Frame(%d)", int(f))
	}
}

// Toggle returns the other frame.
func (f Frame) Toggle() Frame {
	if f == FrameHorizontal {
		return FrameEquatorial
	}
	return FrameHorizontal
}

// ParseFrame parses a frame name.
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "altaz", "hz", "":
		return FrameHorizontal, nil
	case "equatorial", "radec", "eq":
		return FrameEquatorial, nil
	default:
		return 0, fmt.Errorf("unknown frame %q", s)
	}
}

// MarkerKind classifies a charted object.
type MarkerKind int

const (
	MarkerStar MarkerKind = iota
	MarkerSun
	MarkerCardinal
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerStar:
		return "star"
	case MarkerSun:
		return "sun"
	case MarkerCardinal:
		return "cardinal"
	default:
		return "unknown"
	}
}

// Marker is an object placed on the chart.
type Marker struct {
	Name string
	Kind MarkerKind
	Mag  float64
	Sky  projection.SphericalPoint // in the scene's frame
	Pos  projection.PlanarPoint
}

// Scene is everything needed to place objects for one frame of a chart.
type Scene struct {
	View       projection.ViewState
	Projection projection.Projection
	Frame      Frame
	Observer   astro.Observer
	Time       time.Time

	// ShowBelowHorizon keeps objects under the horizon on the chart.
	ShowBelowHorizon bool
}

// Site fixes the scene's observer and time for a batch of conversions.
func (s Scene) Site() astro.Site {
	return astro.NewSite(s.Observer, s.Time)
}

// ToFrame converts catalog coordinates (RA/Dec) into the scene's frame.
func (s Scene) ToFrame(eq astro.SkyCoord) projection.SphericalPoint {
	return s.toFrame(s.Site(), eq)
}

func (s Scene) toFrame(site astro.Site, eq astro.SkyCoord) projection.SphericalPoint {
	if s.Frame == FrameEquatorial {
		return projection.SphericalPoint{
			Azimuth:  projection.NormalizeAzimuth(eq.RAdeg),
			Altitude: eq.DecDeg,
		}
	}
	hz := site.ToHorizontal(eq)
	return projection.SphericalPoint{Azimuth: hz.AzDeg, Altitude: hz.ElDeg}
}

// FromFrame expresses a point of the scene's frame in both coordinate
// systems.
func (s Scene) FromFrame(p projection.SphericalPoint) astro.SkyCoord {
	return s.fromFrame(s.Site(), p)
}

func (s Scene) fromFrame(site astro.Site, p projection.SphericalPoint) astro.SkyCoord {
	if s.Frame == FrameEquatorial {
		return site.ToHorizontal(astro.SkyCoord{RAdeg: p.Azimuth, DecDeg: p.Altitude})
	}
	return site.ToEquatorial(astro.SkyCoord{AzDeg: p.Azimuth, ElDeg: p.Altitude})
}

// fromHorizontal converts an observer-relative direction into the frame.
func (s Scene) fromHorizontal(site astro.Site, az, alt float64) projection.SphericalPoint {
	if s.Frame == FrameHorizontal {
		return projection.SphericalPoint{Azimuth: projection.NormalizeAzimuth(az), Altitude: alt}
	}
	eq := site.ToEquatorial(astro.SkyCoord{AzDeg: az, ElDeg: alt})
	return projection.SphericalPoint{Azimuth: eq.RAdeg, Altitude: eq.DecDeg}
}

// Visible reports whether a projected point belongs on the chart: inside the
// viewport and, for the SIN projection, on the hemisphere facing the viewer.
func (s Scene) Visible(sky projection.SphericalPoint, pos projection.PlanarPoint) bool {
	if pos.X < 0 || pos.Y < 0 || pos.X >= s.View.Width || pos.Y >= s.View.Height {
		return false
	}
	if s.Projection.Kind() == projection.KindSin && projection.Separation(sky, s.View.Center) >= 90 {
		return false
	}
	return true
}

// place projects an object and reports whether it is on the chart.
func (s Scene) place(site astro.Site, name string, kind MarkerKind, mag float64, eq astro.SkyCoord) (Marker, bool) {
	if !s.ShowBelowHorizon && site.ToHorizontal(eq).ElDeg < 0 {
		return Marker{}, false
	}

	sky := s.toFrame(site, eq)
	pos := s.Projection.Project(sky, s.View)
	if !s.Visible(sky, pos) {
		return Marker{}, false
	}
	return Marker{Name: name, Kind: kind, Mag: mag, Sky: sky, Pos: pos}, true
}

// Stars returns the catalog stars that land on the chart.
func (s Scene) Stars(cat astro.StarCatalog) []Marker {
	site := s.Site()
	var out []Marker
	for _, star := range cat.Stars {
		eq := astro.SkyCoord{RAdeg: star.RAdeg, DecDeg: star.DecDeg}
		if m, ok := s.place(site, star.Name, MarkerStar, star.Mag, eq); ok {
			out = append(out, m)
		}
	}
	return out
}

// Sun returns the Sun's marker if it is on the chart.
func (s Scene) Sun() (Marker, bool) {
	ra, dec := astro.SunPosition(s.Time)
	return s.place(s.Site(), "Sun", MarkerSun, -26.74, astro.SkyCoord{RAdeg: ra, DecDeg: dec})
}

// Cardinals returns the compass points on the horizon that are on the chart.
func (s Scene) Cardinals() []Marker {
	points := []struct {
		name string
		az   float64
	}{
		{"N", 0}, {"E", 90}, {"S", 180}, {"W", 270},
	}

	site := s.Site()
	var out []Marker
	for _, c := range points {
		sky := s.fromHorizontal(site, c.az, 0)
		pos := s.Projection.Project(sky, s.View)
		if s.Visible(sky, pos) {
			out = append(out, Marker{Name: c.name, Kind: MarkerCardinal, Sky: sky, Pos: pos})
		}
	}
	return out
}

// Horizon samples the horizon every stepDeg of azimuth and returns the
// samples that are on the chart.
func (s Scene) Horizon(stepDeg float64) []projection.PlanarPoint {
	if stepDeg <= 0 {
		return nil
	}
	site := s.Site()
	var out []projection.PlanarPoint
	for az := 0.0; az < 360; az += stepDeg {
		sky := s.fromHorizontal(site, az, 0)
		pos := s.Projection.Project(sky, s.View)
		if s.Visible(sky, pos) {
			out = append(out, pos)
		}
	}
	return out
}

// Grid samples lines of constant azimuth and altitude of the scene's frame,
// spaced spacingDeg apart and sampled every sampleDeg.
func (s Scene) Grid(spacingDeg, sampleDeg float64) []projection.PlanarPoint {
	if spacingDeg <= 0 || sampleDeg <= 0 {
		return nil
	}

	var out []projection.PlanarPoint
	add := func(sky projection.SphericalPoint) {
		pos := s.Projection.Project(sky, s.View)
		if s.Visible(sky, pos) {
			out = append(out, pos)
		}
	}

	for alt := -90 + spacingDeg; alt < 90; alt += spacingDeg {
		for az := 0.0; az < 360; az += sampleDeg {
			add(projection.SphericalPoint{Azimuth: az, Altitude: alt})
		}
	}
	for az := 0.0; az < 360; az += spacingDeg {
		for alt := -90 + sampleDeg; alt < 90; alt += sampleDeg {
			add(projection.SphericalPoint{Azimuth: az, Altitude: alt})
		}
	}
	return out
}

// Pick returns the catalog star nearest to a pixel within radius pixels.
func (s Scene) Pick(cat astro.StarCatalog, at projection.PlanarPoint, radius float64) (Marker, bool) {
	return Nearest(s.Stars(cat), at, radius)
}

// Nearest returns the marker nearest to a pixel within radius pixels.
func Nearest(markers []Marker, at projection.PlanarPoint, radius float64) (Marker, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, m := range markers {
		d := math.Hypot(m.Pos.X-at.X, m.Pos.Y-at.Y)
		if d <= radius && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Marker{}, false
	}
	return markers[best], true
}
