// Package testutil provides shared test infrastructure for the simulation
// packages: float assertions and a scripted RandomSource.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal fails t when got differs from want by more than relTol
// relative to the larger magnitude. Two zeros are always equal.
func AssertFloat64Equal(t testing.TB, name string, want, got, relTol float64) {
	t.Helper()
	scale := math.Max(math.Abs(want), math.Abs(got))
	if scale == 0 {
		return
	}
	if rel := math.Abs(want-got) / scale; rel > relTol || math.IsNaN(rel) {
		t.Errorf("%s = %v, want %v (relative error %.3g > %.3g)", name, got, want, rel, relTol)
	}
}
