package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Vertex3D is a planar coordinate with an optional elevation.
// When HasZ is false, Z must not take part in elevation averaging.
type Vertex3D struct {
	X    float64
	Y    float64
	Z    float64
	HasZ bool
}

// V returns a vertex with elevation.
func V(x, y, z float64) Vertex3D {
	return Vertex3D{X: x, Y: y, Z: z, HasZ: true}
}

// Planar drops the elevation.
func (v Vertex3D) Planar() orb.Point {
	return orb.Point{v.X, v.Y}
}

// Distance3D returns the Euclidean distance between a and b including Z.
func Distance3D(a, b Vertex3D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dz := b.Z - a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Lerp returns the point at fraction t along a→b, linear in x, y and z.
func Lerp(a, b Vertex3D, t float64) Vertex3D {
	return Vertex3D{
		X:    a.X + t*(b.X-a.X),
		Y:    a.Y + t*(b.Y-a.Y),
		Z:    a.Z + t*(b.Z-a.Z),
		HasZ: a.HasZ || b.HasZ,
	}
}

// Polyline is an ordered sequence of vertices forming one simple line.
type Polyline []Vertex3D

// Length3D sums the 3D distances between consecutive vertices.
func (p Polyline) Length3D() float64 {
	var length float64
	for i := 1; i < len(p); i++ {
		length += Distance3D(p[i-1], p[i])
	}
	return length
}

// Length2D is the planar length of the line.
func (p Polyline) Length2D() float64 {
	return planar.Length(p.LineString())
}

// LineString converts the line to a planar orb.LineString.
func (p Polyline) LineString() orb.LineString {
	ls := make(orb.LineString, len(p))
	for i, v := range p {
		ls[i] = v.Planar()
	}
	return ls
}

// Bound is the planar bounding box of the line.
func (p Polyline) Bound() orb.Bound {
	return p.LineString().Bound()
}

// Clone returns a copy that shares no memory with p.
func (p Polyline) Clone() Polyline {
	if p == nil {
		return nil
	}
	out := make(Polyline, len(p))
	copy(out, p)
	return out
}

// MultiPolyline is a logical collection of simple lines. A single-part
// feature is a MultiPolyline with one part.
type MultiPolyline []Polyline

// IsEmpty reports whether no part holds any vertex.
func (m MultiPolyline) IsEmpty() bool {
	for _, part := range m {
		if len(part) > 0 {
			return false
		}
	}
	return true
}

// Vertices flattens all parts in order.
func (m MultiPolyline) Vertices() Polyline {
	n := 0
	for _, part := range m {
		n += len(part)
	}
	out := make(Polyline, 0, n)
	for _, part := range m {
		out = append(out, part...)
	}
	return out
}

// Length2D sums the planar length of every part.
func (m MultiPolyline) Length2D() float64 {
	var length float64
	for _, part := range m {
		length += part.Length2D()
	}
	return length
}

// Length3D sums the 3D length of every part.
func (m MultiPolyline) Length3D() float64 {
	var length float64
	for _, part := range m {
		length += part.Length3D()
	}
	return length
}

// MultiLineString converts every part to planar orb geometry.
func (m MultiPolyline) MultiLineString() orb.MultiLineString {
	mls := make(orb.MultiLineString, 0, len(m))
	for _, part := range m {
		if len(part) == 0 {
			continue
		}
		mls = append(mls, part.LineString())
	}
	return mls
}

// Bound is the planar bounding box of all parts. An empty collection
// returns an empty orb.Bound (IsEmpty reports true).
func (m MultiPolyline) Bound() orb.Bound {
	return m.MultiLineString().Bound()
}

// Union merges other into a new collection holding the parts of both, in
// order. Neither input is modified.
func (m MultiPolyline) Union(other MultiPolyline) MultiPolyline {
	out := make(MultiPolyline, 0, len(m)+len(other))
	for _, part := range m {
		out = append(out, part.Clone())
	}
	for _, part := range other {
		out = append(out, part.Clone())
	}
	return out
}

// Feature is a line read from a data source. It is immutable once read and
// owned by the caller; algorithms only read it.
type Feature struct {
	ID    int64
	Parts MultiPolyline
}

// NewFeature builds a single-part feature.
func NewFeature(id int64, vertices ...Vertex3D) Feature {
	return Feature{ID: id, Parts: MultiPolyline{Polyline(vertices)}}
}

// IsEmpty reports whether the feature has no vertices.
func (f Feature) IsEmpty() bool {
	return f.Parts.IsEmpty()
}

// Vertices returns the vertices of all parts in order.
func (f Feature) Vertices() Polyline {
	return f.Parts.Vertices()
}

// Length is the planar length of the feature.
func (f Feature) Length() float64 {
	return f.Parts.Length2D()
}

// IsMultipart reports whether the feature has more than one part.
func (f Feature) IsMultipart() bool {
	return len(f.Parts) > 1
}
