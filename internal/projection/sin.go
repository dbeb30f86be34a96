package projection

import "math"

const (
	// MaxCorrectionIterations caps the azimuth search in Sin.Unproject.
	// Unproject runs on every pointer move, so the cap is a latency bound and
	// not a tuning knob.
	MaxCorrectionIterations = 5

	// CorrectionTolerancePx is the reprojection error, in pixels, below which
	// a corrected direction is visually indistinguishable from the target.
	CorrectionTolerancePx = 2.0

	// exactResidualPx is the reprojection error treated as an exact inverse.
	exactResidualPx = 1e-6
)

// Sin is the zenithal orthographic (SIN) projection centered on the view
// direction. The longer viewport side spans FieldOfView degrees at a scale of
// 45/FieldOfView of that side per unit direction cosine.
type Sin struct{}

// Kind implements Projection.
func (Sin) Kind() Kind { return KindSin }

// sinScale is the number of pixels per unit of direction cosine.
func sinScale(v ViewState) float64 {
	return v.longerSide() * 45 / v.FieldOfView
}

// Project implements Projection.
func (Sin) Project(p SphericalPoint, v ViewState) PlanarPoint {
	dAz := degToRad(p.Azimuth - v.Center.Azimuth)
	alt := degToRad(p.Altitude)
	alt0 := degToRad(v.Center.Altitude)

	x := math.Cos(alt) * math.Sin(dAz)
	y := math.Sin(alt)*math.Cos(alt0) - math.Cos(alt)*math.Sin(alt0)*math.Cos(dAz)

	k := sinScale(v)
	return PlanarPoint{
		X: v.Width/2 + x*k,
		Y: v.Height/2 - y*k,
	}
}

// Unproject implements Projection. Pixels outside the projection disk map to
// its limb.
func (s Sin) Unproject(p PlanarPoint, v ViewState) SphericalPoint {
	pt, _ := s.unproject(p, v)
	return pt
}

// unproject is Unproject that also reports how many correction iterations
// ran.
func (s Sin) unproject(p PlanarPoint, v ViewState) (SphericalPoint, int) {
	candidate, dAz, ok := s.arcsine(p, v)
	if !ok {
		return candidate, 0
	}
	return s.correctInverse(p, candidate, dAz, v)
}

// arcsine is the direct inverse on the front hemisphere. It returns the
// candidate direction, its azimuth offset from the center in degrees, and
// false when the pixel is the view center and needs no correction.
func (Sin) arcsine(p PlanarPoint, v ViewState) (SphericalPoint, float64, bool) {
	k := sinScale(v)
	l := (p.X - v.Width/2) / k
	m := (v.Height/2 - p.Y) / k

	theta := math.Hypot(l, m)
	if theta == 0 || math.IsNaN(theta) {
		return SphericalPoint{
			Azimuth:  NormalizeAzimuth(v.Center.Azimuth),
			Altitude: v.Center.Altitude,
		}, 0, false
	}
	if theta > 1 {
		l, m, theta = l/theta, m/theta, 1
	}

	alt0 := degToRad(v.Center.Altitude)
	cosC := math.Sqrt(1 - theta*theta)
	alt := math.Asin(clampUnit(cosC*math.Sin(alt0) + m*math.Cos(alt0)))

	// At a pole the azimuth is undefined; keep the center's.
	var dAz float64
	if cosAlt := math.Cos(alt); cosAlt > 1e-12 {
		dAz = math.Asin(clampUnit(l / cosAlt))
	}

	return SphericalPoint{
		Azimuth:  NormalizeAzimuth(v.Center.Azimuth + radToDeg(dAz)),
		Altitude: radToDeg(alt),
	}, radToDeg(dAz), true
}

// correctInverse picks the right azimuth for a direct arcsine solution.
// asin only yields azimuth offsets within ±90° of the center, but the mirrored
// offset (180° minus it) has the same sine and belongs to the same pixel
// whenever the direction lies past the ±90° edge points or the view looks
// straight at a pole. A candidate that does not reproject onto the target is
// corrected as well. dAz is the candidate's offset from the center azimuth.
//
// The search starts from the mirrored offset and rescales the offset past
// the edge point by the ratio of screen distances from that edge point until
// the reprojection lands within CorrectionTolerancePx of the target. The best
// estimate seen, including the uncorrected candidate, is returned.
func (s Sin) correctInverse(target PlanarPoint, candidate SphericalPoint, dAz float64, v ViewState) (SphericalPoint, int) {
	best := candidate
	bestResidual := distance(s.Project(candidate, v), target)

	center := v.CenterPixel()
	pole := s.Project(SphericalPoint{Azimuth: v.Center.Azimuth, Altitude: 90}, v)
	right := s.Project(SphericalPoint{Azimuth: v.Center.Azimuth + 90, Altitude: candidate.Altitude}, v)
	left := s.Project(SphericalPoint{Azimuth: v.Center.Azimuth - 90, Altitude: candidate.Altitude}, v)

	// The smaller angle at the pole between the target and an edge point
	// decides which half of the view the correction shifts toward.
	side, edge := 1.0, right
	if angleAt(pole, target, left) < angleAt(pole, target, right) {
		side, edge = -1, left
	}

	polar := math.Abs(v.Center.Altitude) == 90
	beyondEdge := distance(target, center) > distance(edge, center)
	if !polar && !beyondEdge && bestResidual <= exactResidualPx {
		return best, 0
	}

	shift := side*90 - dAz
	toTarget := distance(edge, target)

	iterations := 0
	for iterations < MaxCorrectionIterations {
		iterations++

		trial := SphericalPoint{
			Azimuth:  NormalizeAzimuth(v.Center.Azimuth + side*90 + shift),
			Altitude: candidate.Altitude,
		}
		reprojected := s.Project(trial, v)
		residual := distance(reprojected, target)
		if residual < bestResidual {
			best, bestResidual = trial, residual
		}
		if residual <= CorrectionTolerancePx {
			break
		}

		fromEdge := distance(edge, reprojected)
		if fromEdge == 0 {
			break
		}
		shift *= toTarget / fromEdge
	}
	return best, iterations
}

// angleAt returns the angle at vertex between the rays toward a and b, in
// radians within [0, π].
func angleAt(vertex, a, b PlanarPoint) float64 {
	ta := math.Atan2(a.Y-vertex.Y, a.X-vertex.X)
	tb := math.Atan2(b.Y-vertex.Y, b.X-vertex.X)
	d := math.Abs(ta - tb)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// clampUnit clamps rounding overshoot before asin/acos.
func clampUnit(f float64) float64 {
	if f > 1 {
		return 1
	}
	if f < -1 {
		return -1
	}
	return f
}
