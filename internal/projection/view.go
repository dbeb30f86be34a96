// Package projection maps directions on the celestial sphere to viewport
// pixels and back.
//
// All angles at the package boundary are degrees. Viewport coordinates have
// their origin at the top-left corner with y increasing downward. A ViewState
// is an immutable value; every Projection is safe for concurrent use.
package projection

import (
	"errors"
	"fmt"
	"math"
)

// Validation errors returned by ViewState.Validate.
var (
	ErrInvalidFieldOfView = errors.New("field of view must be in (0, 360]")
	ErrInvalidViewport    = errors.New("viewport dimensions must be positive and finite")
	ErrInvalidCenter      = errors.New("view center must be finite")
)

// SphericalPoint is a direction on the sphere. Azimuth doubles as right
// ascension and Altitude as declination when the caller works in the
// equatorial frame.
type SphericalPoint struct {
	Azimuth  float64 // degrees, [0, 360)
	Altitude float64 // degrees, [-90, 90]
}

// PlanarPoint is a position in viewport pixels.
type PlanarPoint struct {
	X float64
	Y float64
}

// ViewState describes what the viewport is looking at.
type ViewState struct {
	Center      SphericalPoint
	FieldOfView float64 // degrees across the longer viewport dimension
	Width       float64 // pixels
	Height      float64 // pixels
}

// Validate reports whether the view can be handed to a Projection. The
// projections themselves never check; callers validate once at the boundary.
func (v ViewState) Validate() error {
	if math.IsNaN(v.FieldOfView) || v.FieldOfView <= 0 || v.FieldOfView > 360 {
		return fmt.Errorf("%w: got %v", ErrInvalidFieldOfView, v.FieldOfView)
	}
	if !finitePositive(v.Width) || !finitePositive(v.Height) {
		return fmt.Errorf("%w: got %vx%v", ErrInvalidViewport, v.Width, v.Height)
	}
	if !finite(v.Center.Azimuth) || !finite(v.Center.Altitude) {
		return fmt.Errorf("%w: got %v, %v", ErrInvalidCenter, v.Center.Azimuth, v.Center.Altitude)
	}
	return nil
}

// CenterPixel returns the pixel at the middle of the viewport.
func (v ViewState) CenterPixel() PlanarPoint {
	return PlanarPoint{X: v.Width / 2, Y: v.Height / 2}
}

// longerSide is the viewport dimension the field of view spans.
func (v ViewState) longerSide() float64 {
	return math.Max(v.Width, v.Height)
}

func finitePositive(f float64) bool {
	return f > 0 && finite(f)
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// NormalizeAzimuth wraps an angle into [0, 360).
func NormalizeAzimuth(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	// -1e-15 + 360 rounds to 360
	if a >= 360 {
		a = 0
	}
	return a
}

// clampAltitude keeps a latitude-like angle within [-90, 90].
func clampAltitude(deg float64) float64 {
	return math.Max(-90, math.Min(90, deg))
}

// distance is the Euclidean distance between two pixels.
func distance(a, b PlanarPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
