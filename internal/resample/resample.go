// Package resample cuts 3D polylines into fixed-length sub-segments and
// colors each one by its average altitude.
package resample

import (
	"github.com/banshee-data/altitude.report/internal/geom"
	"gonum.org/v1/gonum/stat"
)

// DefaultSegmentLength is the sub-segment length in map units.
const DefaultSegmentLength = 5.0

// SubSegment is one piece of a resampled line.
type SubSegment struct {
	Points geom.Polyline
	AvgZ   float64
	Length float64
	Color  RGB
}

// Resampler holds the segment length and color ramp used for every line.
type Resampler struct {
	SegmentLength float64
	Ramp          ColorRamp
}

// NewResampler returns a Resampler. A nil or empty stops slice selects
// DefaultColorStops; stops are sorted by altitude.
func NewResampler(segmentLength float64, stops []ColorStop) *Resampler {
	if len(stops) == 0 {
		stops = DefaultColorStops
	}
	return &Resampler{
		SegmentLength: segmentLength,
		Ramp:          NewColorRamp(stops),
	}
}

// SplitLine3D walks the line accumulating 3D distance and cuts it every
// SegmentLength units, interpolating the cut point. The final piece is kept
// even when shorter. Lines with fewer than two vertices yield nothing. A
// non-positive SegmentLength yields the whole line as one sub-segment.
func (r *Resampler) SplitLine3D(vertices geom.Polyline) []SubSegment {
	if len(vertices) < 2 {
		return nil
	}
	if r.SegmentLength <= 0 {
		return []SubSegment{r.close(vertices.Clone())}
	}

	var segments []SubSegment
	current := geom.Polyline{vertices[0]}
	distAcc := 0.0

	for i := 1; i < len(vertices); i++ {
		prev, curr := vertices[i-1], vertices[i]
		d := geom.Distance3D(prev, curr)

		for distAcc+d >= r.SegmentLength {
			t := (r.SegmentLength - distAcc) / d
			p := geom.Lerp(prev, curr, t)

			current = append(current, p)
			segments = append(segments, r.close(current))

			current = geom.Polyline{p}
			prev = p
			d = geom.Distance3D(prev, curr)
			distAcc = 0
		}

		// A cut landing exactly on curr leaves curr duplicated at the start
		// of the next piece, and a line that is an exact multiple of
		// SegmentLength ends with a zero-length piece.
		current = append(current, curr)
		distAcc += d
	}

	if len(current) > 1 {
		segments = append(segments, r.close(current))
	}
	return segments
}

// SplitFeature resamples each part independently so no sub-segment spans a
// part boundary.
func (r *Resampler) SplitFeature(parts geom.MultiPolyline) []SubSegment {
	var out []SubSegment
	for _, part := range parts {
		out = append(out, r.SplitLine3D(part)...)
	}
	return out
}

func (r *Resampler) close(points geom.Polyline) SubSegment {
	zs := make([]float64, len(points))
	for i, p := range points {
		zs[i] = p.Z
	}
	avg := stat.Mean(zs, nil)
	return SubSegment{
		Points: points,
		AvgZ:   avg,
		Length: points.Length3D(),
		Color:  r.Ramp.Interpolate(avg),
	}
}
