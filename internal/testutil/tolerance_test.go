package testutil

import (
	"math"
	"testing"
)

func TestRequireNearlyEqual(t *testing.T) {
	RequireNearlyEqual(t, 1.00005, 1.0, 1e-4)
}

func TestRequireSliceNearlyEqual(t *testing.T) {
	a := []float64{1.0, 2.0, 3.0}
	b := []float64{1.0, 2.00001, 3.0}

	RequireSliceNearlyEqual(t, a, b, 1e-4)
}

func TestRequireFinite(t *testing.T) {
	RequireFinite(t, []float64{0, -1.5, math.Pi})
}
