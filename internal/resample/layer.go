package resample

import (
	"fmt"

	"github.com/banshee-data/altitude.report/internal/geom"
)

// LayerSegment ties a sub-segment to the feature it was cut from.
type LayerSegment struct {
	FeatureID int64
	SubSegment
}

// Layer is the colored segment layer built from a source layer.
type Layer struct {
	Name          string
	SegmentLength float64
	Segments      []LayerSegment
}

// LayerName follows the "<source>_segments_<length>m" convention.
func LayerName(source string, segmentLength float64) string {
	return fmt.Sprintf("%s_segments_%gm", source, segmentLength)
}

// BuildLayer resamples every feature of a source layer, single- and
// multi-part alike. An empty name falls back to LayerName(source, length).
func (r *Resampler) BuildLayer(source, name string, features []geom.Feature) *Layer {
	if name == "" {
		name = LayerName(source, r.SegmentLength)
	}
	layer := &Layer{Name: name, SegmentLength: r.SegmentLength}
	for _, f := range features {
		for _, s := range r.SplitFeature(f.Parts) {
			layer.Segments = append(layer.Segments, LayerSegment{FeatureID: f.ID, SubSegment: s})
		}
	}
	return layer
}

// Categories lists the distinct segment colors in first-seen order, one
// symbology class per color.
func (l *Layer) Categories() []RGB {
	seen := make(map[RGB]bool)
	var out []RGB
	for _, s := range l.Segments {
		if seen[s.Color] {
			continue
		}
		seen[s.Color] = true
		out = append(out, s.Color)
	}
	return out
}

// TotalLength sums the 3D length of every segment in the layer.
func (l *Layer) TotalLength() float64 {
	var total float64
	for _, s := range l.Segments {
		total += s.Length
	}
	return total
}
