package testutil

import (
	"testing"
)

func TestChain(t *testing.T) {
	features := Chain(100, 200, 300)
	if len(features) != 3 {
		t.Fatalf("len = %d, want 3", len(features))
	}
	for i, f := range features {
		if f.ID != int64(i) {
			t.Errorf("feature %d has ID %d", i, f.ID)
		}
		if f.Length() != ChainStep {
			t.Errorf("feature %d length = %v", i, f.Length())
		}
		if z := f.Vertices()[0].Z; z != float64(100*(i+1)) {
			t.Errorf("feature %d elevation = %v", i, z)
		}
	}
	end := features[0].Vertices()[1].Planar()
	start := features[1].Vertices()[0].Planar()
	if end != start {
		t.Errorf("chain is not contiguous: %v != %v", end, start)
	}
}

func TestShiftCopies(t *testing.T) {
	orig := Chain(50)[0]
	moved := Shift(orig, 1, 2)
	if moved.Parts[0][0].X != 1 || moved.Parts[0][0].Y != 2 {
		t.Errorf("Shift did not translate: %+v", moved.Parts[0][0])
	}
	if orig.Parts[0][0].X != 0 {
		t.Error("Shift modified its input")
	}
}

func TestAssertInDelta(t *testing.T) {
	AssertInDelta(t, 1.0000001, 1, 1e-6)
	AssertNoError(t, nil)
}
