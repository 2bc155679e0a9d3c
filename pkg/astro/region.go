package astro

import "math"

// Region is a sky region that can test membership of a position. The
// datastore prefilters rows with BoundingBox in SQL and refines with
// Contains in-process, which keeps the matching contract independent of
// whether the backing store has native spherical indexing.
type Region interface {
	Contains(p Position) bool
	BoundingBox() (raMin, raMax, decMin, decMax float64, wraps bool)
}

// Cone is a circular sky region. Radius is in arcseconds, matching the
// cone-search filter literal `ra,dec,radius`.
type Cone struct {
	Center       Position
	RadiusArcsec float64
}

// Contains reports whether p lies within the cone, boundary inclusive.
func (c Cone) Contains(p Position) bool {
	return SeparationArcsec(c.Center, p) <= c.RadiusArcsec
}

// BoundingBox returns a rectangle in RA/Dec that encloses the cone. wraps is
// true when the RA interval crosses 0/360, in which case the RA condition is
// (ra >= raMin OR ra <= raMax).
func (c Cone) BoundingBox() (raMin, raMax, decMin, decMax float64, wraps bool) {
	return boundingBox(c.Center, c.RadiusArcsec/arcsecPerDeg)
}

// Ellipse is an elliptical sky region with q3c_ellipse_query semantics:
// MajorDeg is the semi-major axis in degrees, AxisRatio is minor/major in
// (0, 1], and PositionAngle is the major-axis orientation in degrees east of
// north.
type Ellipse struct {
	Center        Position
	MajorDeg      float64
	AxisRatio     float64
	PositionAngle float64
}

// Contains reports whether p lies within the ellipse, boundary inclusive.
// The radial extent of the ellipse at the position angle of p is compared
// against the great-circle separation, which is exact for the small regions
// these searches cover.
func (e Ellipse) Contains(p Position) bool {
	sep := Separation(e.Center, p)
	if sep == 0 {
		return true
	}
	a := e.MajorDeg
	b := e.MajorDeg * e.AxisRatio
	if a <= 0 || b <= 0 {
		return false
	}
	theta := (PositionAngle(e.Center, p) - e.PositionAngle) * degToRad
	sin, cos := math.Sincos(theta)
	r := a * b / math.Hypot(b*cos, a*sin)
	return sep <= r
}

// BoundingBox returns a rectangle enclosing the ellipse (the enclosing
// circle of the semi-major axis is used; refinement discards the corners).
func (e Ellipse) BoundingBox() (raMin, raMax, decMin, decMax float64, wraps bool) {
	return boundingBox(e.Center, e.MajorDeg)
}

// boundingBox encloses a circle of the given radius (degrees) around center.
// Near the poles the RA interval degenerates to the full circle.
func boundingBox(center Position, radiusDeg float64) (raMin, raMax, decMin, decMax float64, wraps bool) {
	decMin = center.Dec - radiusDeg
	decMax = center.Dec + radiusDeg
	if decMin <= -90 || decMax >= 90 {
		if decMin < -90 {
			decMin = -90
		}
		if decMax > 90 {
			decMax = 90
		}
		return 0, 360, decMin, decMax, false
	}

	// Widen the RA half-width by the cosine of the closest-to-pole
	// declination so the box holds at all latitudes inside it.
	maxAbsDec := math.Max(math.Abs(decMin), math.Abs(decMax))
	halfWidth := radiusDeg / math.Cos(maxAbsDec*degToRad)
	raMin = center.RA - halfWidth
	raMax = center.RA + halfWidth
	if raMin < 0 {
		raMin += 360
		wraps = true
	}
	if raMax >= 360 {
		raMax -= 360
		wraps = true
	}
	return raMin, raMax, decMin, decMax, wraps
}
