package projection

import (
	"fmt"
	"strings"

	"github.com/golang/geo/s2"
)

// Projection converts between sky directions and viewport pixels for a
// given view. Implementations hold no state of their own.
type Projection interface {
	// Project maps a direction to a pixel. It never fails; directions far
	// from the view center may land outside the viewport.
	Project(p SphericalPoint, v ViewState) PlanarPoint

	// Unproject maps a pixel back to a direction.
	Unproject(p PlanarPoint, v ViewState) SphericalPoint

	// Kind identifies the projection family.
	Kind() Kind
}

// Kind enumerates the supported projection families.
type Kind int

const (
	// KindSin is the zenithal orthographic (SIN) projection.
	KindSin Kind = iota

	// KindMercator is the Web Mercator tile projection.
	KindMercator

	// KindPlateCarree is the equirectangular (WGS84 lat/lon) tile projection.
	KindPlateCarree
)

// Kinds lists every projection family in display order.
var Kinds = []Kind{KindSin, KindMercator, KindPlateCarree}

func (k Kind) String() string {
	switch k {
	case KindSin:
		return "sin"
	case KindMercator:
		return "mercator"
	case KindPlateCarree:
		return "plate-carree"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Next returns the following kind, wrapping around.
func (k Kind) Next() Kind {
	return Kinds[(int(k)+1)%len(Kinds)]
}

// ParseKind parses a projection name as accepted in configuration files.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sin", "orthographic", "zenithal", "":
		return KindSin, nil
	case "mercator", "web-mercator":
		return KindMercator, nil
	case "plate-carree", "platecarree", "equirectangular", "wgs84":
		return KindPlateCarree, nil
	default:
		return 0, fmt.Errorf("unknown projection %q", s)
	}
}

// New returns the projection for a kind.
func New(k Kind) (Projection, error) {
	switch k {
	case KindSin:
		return Sin{}, nil
	case KindMercator:
		return NewMercator(), nil
	case KindPlateCarree:
		return NewPlateCarree(), nil
	default:
		return nil, fmt.Errorf("unknown projection kind %d", int(k))
	}
}

// Separation returns the great-circle angle between two directions in
// degrees.
func Separation(a, b SphericalPoint) float64 {
	la := s2.LatLngFromDegrees(a.Altitude, a.Azimuth)
	lb := s2.LatLngFromDegrees(b.Altitude, b.Azimuth)
	return la.Distance(lb).Degrees()
}
