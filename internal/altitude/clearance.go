package altitude

import (
	"errors"
	"fmt"

	"github.com/banshee-data/altitude.report/internal/geom"
	"github.com/banshee-data/altitude.report/internal/monitoring"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrVertexMismatch is returned when a draped line does not have the
	// same parts and vertex counts as its original.
	ErrVertexMismatch = errors.New("draped geometry does not match original vertex count")
	// ErrEmptyGeometry is returned for a feature without vertices.
	ErrEmptyGeometry = errors.New("feature has no geometry")
	// ErrNoElevation is returned when a vertex lacks a Z value.
	ErrNoElevation = errors.New("feature has vertices without elevation")
	// ErrNoFeatures is returned when there is nothing to process.
	ErrNoFeatures = errors.New("no features")
)

// Clearance is the height of a line above the terrain it was draped on.
type Clearance struct {
	FeatureID        int64
	GroundAltitude   float64
	RelativeAltitude float64
	// Relative has the original planar geometry with Z replaced by the
	// per-vertex height above ground.
	Relative LineFeature
}

// ComputeClearance compares a 3D line with the same line draped on terrain.
func ComputeClearance(original, draped LineFeature) (Clearance, error) {
	if original.IsEmpty() || draped.IsEmpty() {
		return Clearance{}, fmt.Errorf("feature %d: %w", original.ID, ErrEmptyGeometry)
	}
	if len(original.Parts) != len(draped.Parts) {
		return Clearance{}, fmt.Errorf("feature %d: %d parts vs %d draped: %w",
			original.ID, len(original.Parts), len(draped.Parts), ErrVertexMismatch)
	}

	var origZ, groundZ []float64
	relative := make(geom.MultiPolyline, len(original.Parts))
	for i, part := range original.Parts {
		dpart := draped.Parts[i]
		if len(part) != len(dpart) {
			return Clearance{}, fmt.Errorf("feature %d part %d: %d vertices vs %d draped: %w",
				original.ID, i, len(part), len(dpart), ErrVertexMismatch)
		}
		rel := make(geom.Polyline, len(part))
		for j, v := range part {
			d := dpart[j]
			if !v.HasZ || !d.HasZ {
				return Clearance{}, fmt.Errorf("feature %d part %d vertex %d: %w", original.ID, i, j, ErrNoElevation)
			}
			origZ = append(origZ, v.Z)
			groundZ = append(groundZ, d.Z)
			rel[j] = geom.V(v.X, v.Y, v.Z-d.Z)
		}
		relative[i] = rel
	}

	ground := stat.Mean(groundZ, nil)
	return Clearance{
		FeatureID:        original.ID,
		GroundAltitude:   ground,
		RelativeAltitude: stat.Mean(origZ, nil) - ground,
		Relative:         LineFeature{ID: original.ID, Parts: relative},
	}, nil
}

// ComputeClearances pairs originals with draped features by ID. Features
// with no draped counterpart or with mismatched geometry are logged and
// skipped.
func ComputeClearances(originals, draped []LineFeature, progress ProgressFunc) ([]Clearance, error) {
	if len(originals) == 0 {
		return nil, ErrNoFeatures
	}

	byID := make(map[int64]LineFeature, len(draped))
	for _, f := range draped {
		byID[f.ID] = f
	}

	out := make([]Clearance, 0, len(originals))
	for i, f := range originals {
		if progress != nil {
			progress(i+1, len(originals))
		}
		d, ok := byID[f.ID]
		if !ok {
			monitoring.Debugf("feature %d has no draped counterpart, skipping", f.ID)
			continue
		}
		c, err := ComputeClearance(f, d)
		if err != nil {
			monitoring.Warnf("clearance skipped: %v", err)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
