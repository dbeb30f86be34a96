// Package astro provides astronomical coordinate transformations and sky math.
package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates (J2000)
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg float64 // Latitude in degrees (north positive)
	LonDeg float64 // Longitude in degrees (east positive)
	Name   string  // Optional name for the site
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/El) for a given observer and time.
//
// The function preserves the input RA/Dec values and populates Az/El.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, obs Observer, t time.Time) SkyCoord {
	return NewSite(obs, t).ToHorizontal(eq)
}

// HorizontalToEquatorial converts horizontal coordinates (Az/El) back to
// equatorial coordinates (RA/Dec). The input Az/El values are preserved.
func HorizontalToEquatorial(hz SkyCoord, obs Observer, t time.Time) SkyCoord {
	return NewSite(obs, t).ToEquatorial(hz)
}

// Site is an observer at a fixed instant. Conversions through a Site share
// one sidereal time, which is the expensive part of a conversion.
type Site struct {
	Observer Observer
	LSTdeg   float64
}

// NewSite computes the local sidereal time for an observer at t.
func NewSite(obs Observer, t time.Time) Site {
	return Site{Observer: obs, LSTdeg: LocalSiderealTime(t, obs.LonDeg)}
}

// ToHorizontal converts RA/Dec to Az/El, preserving the input RA/Dec.
func (s Site) ToHorizontal(eq SkyCoord) SkyCoord {
	lat := unit.AngleFromDeg(s.Observer.LatDeg)
	dec := unit.AngleFromDeg(eq.DecDeg)

	// Hour Angle = LST - RA
	ha := unit.AngleFromDeg(s.LSTdeg - eq.RAdeg)

	sinAlt := lat.Sin()*dec.Sin() + lat.Cos()*dec.Cos()*ha.Cos()
	alt := math.Asin(clamp(sinAlt))

	az := math.Atan2(
		-dec.Cos()*ha.Sin(),
		lat.Cos()*dec.Sin()-lat.Sin()*dec.Cos()*ha.Cos(),
	)

	return SkyCoord{
		RAdeg:  eq.RAdeg,
		DecDeg: eq.DecDeg,
		AzDeg:  normalizeDeg(unit.Angle(az).Deg()),
		ElDeg:  unit.Angle(alt).Deg(),
	}
}

// ToEquatorial converts Az/El to RA/Dec, preserving the input Az/El.
func (s Site) ToEquatorial(hz SkyCoord) SkyCoord {
	lat := unit.AngleFromDeg(s.Observer.LatDeg)
	az := unit.AngleFromDeg(hz.AzDeg)
	alt := unit.AngleFromDeg(hz.ElDeg)

	sinDec := lat.Sin()*alt.Sin() + lat.Cos()*alt.Cos()*az.Cos()
	dec := math.Asin(clamp(sinDec))

	ha := math.Atan2(
		-alt.Cos()*az.Sin(),
		lat.Cos()*alt.Sin()-lat.Sin()*alt.Cos()*az.Cos(),
	)

	return SkyCoord{
		RAdeg:  normalizeDeg(s.LSTdeg - unit.Angle(ha).Deg()),
		DecDeg: unit.Angle(dec).Deg(),
		AzDeg:  hz.AzDeg,
		ElDeg:  hz.ElDeg,
	}
}

// LocalSiderealTime returns the apparent Local Sidereal Time in degrees
// [0, 360) for a UTC instant and an east-positive longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	jd := julian.TimeToJD(t.UTC())
	gast := sidereal.Apparent(jd).Angle().Deg()
	return normalizeDeg(gast + lonDeg)
}

// normalizeDeg wraps an angle into [0, 360).
func normalizeDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

func clamp(f float64) float64 {
	return math.Max(-1, math.Min(1, f))
}
