// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"

	"github.com/banshee-data/altitude.report/internal/geom"
)

// ChainStep is the planar length of every feature built by Chain.
const ChainStep = 10.0

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertInDelta fails the test if got and want differ by more than delta.
func AssertInDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	if math.Abs(got-want) > delta {
		t.Errorf("got %v, want %v (±%v)", got, want, delta)
	}
}

// Chain builds one flat two-vertex feature per elevation, laid end to end
// along the X axis. Feature i has ID i and spans [i*ChainStep, (i+1)*ChainStep].
func Chain(elevations ...float64) []geom.Feature {
	out := make([]geom.Feature, len(elevations))
	for i, z := range elevations {
		x := float64(i) * ChainStep
		out[i] = geom.NewFeature(int64(i), geom.V(x, 0, z), geom.V(x+ChainStep, 0, z))
	}
	return out
}

// Shift returns a copy of f translated by (dx, dy).
func Shift(f geom.Feature, dx, dy float64) geom.Feature {
	parts := make(geom.MultiPolyline, len(f.Parts))
	for i, part := range f.Parts {
		moved := part.Clone()
		for j := range moved {
			moved[j].X += dx
			moved[j].Y += dy
		}
		parts[i] = moved
	}
	return geom.Feature{ID: f.ID, Parts: parts}
}
