package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// SunPosition returns the apparent equatorial coordinates of the Sun in
// degrees. The difference between TT and UT is ignored; it moves the Sun by
// a few arcseconds.
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	jd := julian.TimeToJD(t.UTC())
	ra, dec := solar.ApparentEquatorial(jd)
	return normalizeDeg(unit.Angle(ra).Deg()), dec.Deg()
}
