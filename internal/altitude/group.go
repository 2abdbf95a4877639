package altitude

import (
	"math"

	"github.com/banshee-data/altitude.report/internal/geom"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/stat"
)

// ConsecutiveTolerance is the largest planar gap, in layer units, between one
// feature's end and the next feature's start for both to belong to the same
// run. It is a fixed constant and does not scale with the coordinate system.
const ConsecutiveTolerance = 0.001

// LineFeature is a line read from the source layer.
type LineFeature = geom.Feature

// AverageElevation is the mean Z over vertices that carry one. ok is false
// when the line is empty or no vertex has an elevation.
func AverageElevation(vertices geom.Polyline) (avg float64, ok bool) {
	zs := make([]float64, 0, len(vertices))
	for _, v := range vertices {
		if v.HasZ {
			zs = append(zs, v.Z)
		}
	}
	if len(zs) == 0 {
		return 0, false
	}
	return stat.Mean(zs, nil), true
}

// IsConsecutive reports whether a feature starting at start continues a run
// that ended at prevEnd. A nil prevEnd (no run yet) is always consecutive.
func IsConsecutive(start orb.Point, prevEnd *orb.Point) bool {
	if prevEnd == nil {
		return true
	}
	return planar.Distance(start, *prevEnd) <= ConsecutiveTolerance
}

// SegmentGroup accumulates one contiguous run of low features.
type SegmentGroup struct {
	MemberIDs    []int64
	MinElevation float64
	Merged       geom.MultiPolyline
	Start        orb.Point
	End          orb.Point
	TotalLength  float64
}

// Len is the number of member features.
func (g *SegmentGroup) Len() int {
	if g == nil {
		return 0
	}
	return len(g.MemberIDs)
}

// GroupState is either empty or accumulating one SegmentGroup. The zero
// value is the empty state.
//
// Transitions take ownership of the state passed in: callers must continue
// with the returned state and never reuse the old one.
type GroupState struct {
	group *SegmentGroup
}

// Open reports whether a group is accumulating.
func (s GroupState) Open() bool {
	return s.group != nil
}

// Group returns the accumulating group, or nil when empty.
func (s GroupState) Group() *SegmentGroup {
	return s.group
}

// OnLowFeature adds a feature whose average elevation is below the threshold.
// If the feature does not start where the open group ends, that group is
// closed first and returned; the feature then opens a new group. An empty
// feature leaves the state untouched.
func OnLowFeature(s GroupState, f LineFeature, avg float64) (GroupState, *SegmentGroup) {
	vertices := f.Vertices()
	if len(vertices) == 0 {
		return s, nil
	}
	start := vertices[0].Planar()

	var closed *SegmentGroup
	if s.group != nil && !IsConsecutive(start, &s.group.End) {
		closed = s.group
		s = GroupState{}
	}

	g := s.group
	if g == nil {
		g = &SegmentGroup{
			MinElevation: math.Inf(1),
			Merged:       geom.MultiPolyline(nil).Union(f.Parts),
			Start:        start,
		}
	} else {
		g.Merged = g.Merged.Union(f.Parts)
	}

	g.TotalLength += f.Length()
	g.MinElevation = math.Min(g.MinElevation, avg)
	g.End = vertices[len(vertices)-1].Planar()
	g.MemberIDs = append(g.MemberIDs, f.ID)

	return GroupState{group: g}, closed
}

// OnHighFeature closes the open group, if any. The high feature itself joins
// no group.
func OnHighFeature(s GroupState) (GroupState, *SegmentGroup) {
	return GroupState{}, s.group
}

// OnStreamEnd closes the open group, if any.
func OnStreamEnd(s GroupState) (GroupState, *SegmentGroup) {
	return GroupState{}, s.group
}
