// Package astro provides the spherical geometry and time conversions used by
// the disparu catalog: great-circle separations, cone/ellipse sky regions,
// candidate-to-source matching, and Modified Julian Date handling.
package astro

import "math"

// DefaultMatchRadius is the candidate-to-source match tolerance in
// arcseconds: one ACS/WFC pixel on the reference instrument.
const DefaultMatchRadius = 0.05

const (
	degToRad     = math.Pi / 180
	arcsecPerDeg = 3600.0
)

// Position is a sky position in ICRS decimal degrees.
type Position struct {
	RA  float64
	Dec float64
}

// Separation returns the great-circle angular separation between p and q in
// degrees. The haversine form is used so that small separations keep full
// precision; RA wrap-around at 0/360 and declination sign need no special
// casing.
func Separation(p, q Position) float64 {
	ra1, dec1 := p.RA*degToRad, p.Dec*degToRad
	ra2, dec2 := q.RA*degToRad, q.Dec*degToRad

	sinDec := math.Sin((dec2 - dec1) / 2)
	sinRA := math.Sin((ra2 - ra1) / 2)
	h := sinDec*sinDec + math.Cos(dec1)*math.Cos(dec2)*sinRA*sinRA
	if h > 1 {
		h = 1
	}
	return 2 * math.Asin(math.Sqrt(h)) / degToRad
}

// SeparationArcsec returns the separation between p and q in arcseconds.
func SeparationArcsec(p, q Position) float64 {
	return Separation(p, q) * arcsecPerDeg
}

// Match returns the indices of every catalog position whose angular
// separation from p is at most radiusArcsec, boundary inclusive. All ties
// are returned, in catalog order; an empty catalog yields an empty result.
func Match(p Position, catalog []Position, radiusArcsec float64) []int {
	matches := []int{}
	for i, q := range catalog {
		if SeparationArcsec(p, q) <= radiusArcsec {
			matches = append(matches, i)
		}
	}
	return matches
}

// PositionAngle returns the position angle of q as seen from p, in degrees
// east of north in [0, 360).
func PositionAngle(p, q Position) float64 {
	ra1, dec1 := p.RA*degToRad, p.Dec*degToRad
	ra2, dec2 := q.RA*degToRad, q.Dec*degToRad

	dRA := ra2 - ra1
	y := math.Sin(dRA) * math.Cos(dec2)
	x := math.Cos(dec1)*math.Sin(dec2) - math.Sin(dec1)*math.Cos(dec2)*math.Cos(dRA)
	pa := math.Atan2(y, x) / degToRad
	if pa < 0 {
		pa += 360
	}
	return pa
}
