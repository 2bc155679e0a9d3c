package astro

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeparation_Zero(t *testing.T) {
	p := Position{RA: 40.669, Dec: 37.340}
	assert.Equal(t, 0.0, Separation(p, p))
}

func TestSeparation_Symmetric(t *testing.T) {
	p := Position{RA: 40.669, Dec: 37.340}
	q := Position{RA: 41.123, Dec: 36.998}
	assert.InDelta(t, Separation(p, q), Separation(q, p), 1e-12)
}

func TestSeparation_KnownValue(t *testing.T) {
	// One degree apart along the equator.
	p := Position{RA: 10.0, Dec: 0.0}
	q := Position{RA: 11.0, Dec: 0.0}
	assert.InDelta(t, 1.0, Separation(p, q), 1e-9)
}

func TestSeparation_DecOnly(t *testing.T) {
	p := Position{RA: 180.0, Dec: 10.0}
	q := Position{RA: 180.0, Dec: 12.5}
	assert.InDelta(t, 2.5, Separation(p, q), 1e-9)
}

func TestSeparation_RAWrap(t *testing.T) {
	// 0.2 degrees apart across the RA zero meridian.
	p := Position{RA: 359.9, Dec: 0.0}
	q := Position{RA: 0.1, Dec: 0.0}
	assert.InDelta(t, 0.2, Separation(p, q), 1e-9)
}

func TestSeparation_RAConvergesAtPole(t *testing.T) {
	// Near the pole a degree of RA spans almost no sky.
	p := Position{RA: 0.0, Dec: 89.9}
	q := Position{RA: 90.0, Dec: 89.9}
	assert.Less(t, Separation(p, q), 0.2)
}

func TestSeparationArcsec(t *testing.T) {
	p := Position{RA: 10.0, Dec: 0.0}
	q := Position{RA: 10.0, Dec: 1.0 / 3600.0}
	assert.InDelta(t, 1.0, SeparationArcsec(p, q), 1e-6)
}

func TestMatch_Empty(t *testing.T) {
	got := Match(Position{RA: 1, Dec: 1}, nil, DefaultMatchRadius)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatch_BoundaryInclusive(t *testing.T) {
	p := Position{RA: 10.0, Dec: 0.0}
	// Exactly 0.05 arcsec north.
	q := Position{RA: 10.0, Dec: 0.05 / 3600.0}
	got := Match(p, []Position{q}, DefaultMatchRadius)
	assert.Equal(t, []int{0}, got)
}

func TestMatch_OutsideRadius(t *testing.T) {
	p := Position{RA: 10.0, Dec: 0.0}
	q := Position{RA: 10.0, Dec: 0.06 / 3600.0}
	got := Match(p, []Position{q}, DefaultMatchRadius)
	assert.Empty(t, got)
}

func TestMatch_AllTiesInCatalogOrder(t *testing.T) {
	p := Position{RA: 10.0, Dec: 0.0}
	catalog := []Position{
		{RA: 10.0, Dec: 0.01 / 3600.0},
		{RA: 50.0, Dec: 20.0},
		{RA: 10.0, Dec: -0.02 / 3600.0},
	}
	got := Match(p, catalog, DefaultMatchRadius)
	assert.Equal(t, []int{0, 2}, got)
}

func TestPositionAngle_North(t *testing.T) {
	p := Position{RA: 10.0, Dec: 0.0}
	q := Position{RA: 10.0, Dec: 1.0}
	assert.InDelta(t, 0.0, PositionAngle(p, q), 1e-9)
}

func TestPositionAngle_East(t *testing.T) {
	p := Position{RA: 10.0, Dec: 0.0}
	q := Position{RA: 11.0, Dec: 0.0}
	assert.InDelta(t, 90.0, PositionAngle(p, q), 1e-6)
}

func TestSeparation_AntipodalClamped(t *testing.T) {
	p := Position{RA: 0.0, Dec: 0.0}
	q := Position{RA: 180.0, Dec: 0.0}
	sep := Separation(p, q)
	require.False(t, math.IsNaN(sep))
	assert.InDelta(t, 180.0, sep, 1e-6)
}
