// Package geom holds the line geometry value types shared by the altitude
// grouper and the polyline resampler.
//
// Planar math (bounds, 2D length, point distance) is delegated to
// github.com/paulmach/orb; the 3D operations (elevation-aware length and
// interpolation) live here because orb points carry no Z.
//
// No I/O is allowed in this package.
package geom
