// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the synthetic fields used across test files:
// equator-centred areas with exact kilometre extents and a handful of
// analytic surfaces (bowls, pits, ramps, constants).
package testutil

import (
	"testing"

	"github.com/banshee-data/highlow/internal/field"
)

// Missing is the missing-value sentinel used by every fixture grid.
const Missing = -999.0

// EquatorArea returns a square area centred on (0, 0) whose width and
// height are both spanKm. On the equator the east-west haversine distance
// equals the arc length, so the extents are exact.
func EquatorArea(spanKm float64) field.Area {
	half := spanKm / field.KmPerDegree / 2
	return field.Area{
		BottomLeft: field.LatLon{Lat: -half, Lon: -half},
		TopRight:   field.LatLon{Lat: half, Lon: half},
	}
}

// NewFuncGrid builds an n×n grid over EquatorArea(spanKm) from fn.
func NewFuncGrid(t testing.TB, n int, spanKm float64, fn func(x, y int) float64) *field.Grid {
	t.Helper()
	g, err := field.NewGridFunc(n, n, Missing, EquatorArea(spanKm), fn)
	if err != nil {
		t.Fatalf("NewGridFunc: %v", err)
	}
	return g
}

// BowlGrid is a paraboloid peak: peak minus the squared distance from
// (cx, cy). Values strictly decrease with distance from the centre.
func BowlGrid(t testing.TB, n int, spanKm float64, cx, cy int, peak float64) *field.Grid {
	t.Helper()
	return NewFuncGrid(t, n, spanKm, func(x, y int) float64 {
		dx, dy := float64(x-cx), float64(y-cy)
		return peak - (dx*dx + dy*dy)
	})
}

// PitGrid is the inverted bowl: floor plus the squared distance from
// (cx, cy).
func PitGrid(t testing.TB, n int, spanKm float64, cx, cy int, floor float64) *field.Grid {
	t.Helper()
	return NewFuncGrid(t, n, spanKm, func(x, y int) float64 {
		dx, dy := float64(x-cx), float64(y-cy)
		return floor + dx*dx + dy*dy
	})
}

// RampGrid is the plane 2x + y. Its only maximum is the top-right corner.
func RampGrid(t testing.TB, n int, spanKm float64) *field.Grid {
	t.Helper()
	return NewFuncGrid(t, n, spanKm, func(x, y int) float64 {
		return float64(2*x + y)
	})
}

// ConstantGrid has every sample set to v.
func ConstantGrid(t testing.TB, n int, spanKm, v float64) *field.Grid {
	t.Helper()
	return NewFuncGrid(t, n, spanKm, func(int, int) float64 { return v })
}

// MissingGrid has every sample set to Missing.
func MissingGrid(t testing.TB, n int, spanKm float64) *field.Grid {
	t.Helper()
	return ConstantGrid(t, n, spanKm, Missing)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
