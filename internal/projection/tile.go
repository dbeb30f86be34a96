package projection

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"
)

// MaxMercatorLatitude is where the square Web Mercator world ends. The
// projection diverges at the poles, so latitudes are clamped to it.
const MaxMercatorLatitude = 85.05112877980659

// TileProjection is a cylindrical projection that treats azimuth as
// longitude and altitude as latitude, as used for tiled maps. The longer
// viewport side spans FieldOfView degrees of longitude.
type TileProjection struct {
	kind   Kind
	proj   s2.Projection
	maxLat float64
}

// NewMercator returns the Web Mercator tile projection.
func NewMercator() TileProjection {
	return TileProjection{
		kind:   KindMercator,
		proj:   s2.NewMercatorProjection(180),
		maxLat: MaxMercatorLatitude,
	}
}

// NewPlateCarree returns the equirectangular (WGS84 lat/lon) tile projection.
func NewPlateCarree() TileProjection {
	return TileProjection{
		kind:   KindPlateCarree,
		proj:   s2.NewPlateCarreeProjection(180),
		maxLat: 90,
	}
}

// Kind implements Projection.
func (t TileProjection) Kind() Kind { return t.kind }

// world returns the projected world position in degree units: x in
// [-180, 180], y in [-180, 180] for Mercator and [-90, 90] for plate carrée.
// The s2 projections do not wrap longitude, so azimuth is folded here.
func (t TileProjection) world(p SphericalPoint) r2.Point {
	lat := math.Max(-t.maxLat, math.Min(t.maxLat, p.Altitude))
	lng := math.Remainder(p.Azimuth, 360)
	return t.proj.FromLatLng(s2.LatLngFromDegrees(lat, lng))
}

// Project implements Projection. Longitude offsets wrap to the world copy
// nearest the view center.
func (t TileProjection) Project(p SphericalPoint, v ViewState) PlanarPoint {
	w := t.world(p)
	c := t.world(v.Center)
	k := v.longerSide() / v.FieldOfView

	dx := math.Remainder(w.X-c.X, 360)
	return PlanarPoint{
		X: v.Width/2 + dx*k,
		Y: v.Height/2 - (w.Y-c.Y)*k,
	}
}

// Unproject implements Projection.
func (t TileProjection) Unproject(p PlanarPoint, v ViewState) SphericalPoint {
	c := t.world(v.Center)
	k := v.longerSide() / v.FieldOfView

	w := r2.Point{
		X: c.X + (p.X-v.Width/2)/k,
		Y: c.Y - (p.Y-v.Height/2)/k,
	}
	ll := t.proj.ToLatLng(w)
	lat := math.Max(-t.maxLat, math.Min(t.maxLat, ll.Lat.Degrees()))
	return SphericalPoint{
		Azimuth:  NormalizeAzimuth(ll.Lng.Degrees()),
		Altitude: lat,
	}
}

// Tile addresses one square of a z/x/y tile pyramid. X grows eastward from
// longitude -180 and Y grows southward from the northern edge.
type Tile struct {
	Z, X, Y int
}

func (t Tile) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// tileGrid returns the number of columns and rows at a zoom level. The
// plate carrée pyramid starts with two tiles side by side.
func tileGrid(k Kind, zoom int) (cols, rows int) {
	n := 1 << uint(zoom)
	if k == KindPlateCarree {
		return 2 * n, n
	}
	return n, n
}

// worldHeight is the y extent of the projected world in degree units.
func worldHeight(k Kind) float64 {
	if k == KindPlateCarree {
		return 180
	}
	return 360
}

// TileFor returns the tile of a tile projection containing a direction.
func TileFor(t TileProjection, p SphericalPoint, zoom int) Tile {
	cols, rows := tileGrid(t.kind, zoom)
	w := t.world(p)

	u := (w.X + 180) / 360
	vv := (worldHeight(t.kind)/2 - w.Y) / worldHeight(t.kind)

	x := clampIndex(int(math.Floor(u*float64(cols))), cols)
	y := clampIndex(int(math.Floor(vv*float64(rows))), rows)
	return Tile{Z: zoom, X: x, Y: y}
}

// MaxTileZoom is the deepest zoom level ZoomFor returns.
const MaxTileZoom = 20

// ZoomFor returns the tile zoom level at which one tile column spans about
// a field of view.
func ZoomFor(fieldOfView float64) int {
	if !(fieldOfView > 0) || math.IsInf(fieldOfView, 1) {
		return 0
	}
	z := int(math.Floor(math.Log2(360 / fieldOfView)))
	return clampIndex(z, MaxTileZoom+1)
}

// Bounds returns the north-west and south-east corners of a tile.
func (tl Tile) Bounds(t TileProjection) (nw, se SphericalPoint) {
	cols, rows := tileGrid(t.kind, tl.Z)
	h := worldHeight(t.kind)

	corner := func(x, y int) SphericalPoint {
		w := r2.Point{
			X: float64(x)/float64(cols)*360 - 180,
			Y: h/2 - float64(y)/float64(rows)*h,
		}
		ll := t.proj.ToLatLng(w)
		return SphericalPoint{
			Azimuth:  NormalizeAzimuth(ll.Lng.Degrees()),
			Altitude: ll.Lat.Degrees(),
		}
	}
	return corner(tl.X, tl.Y), corner(tl.X+1, tl.Y+1)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
