// Package altitude finds contiguous runs of line features flying below an
// altitude threshold and computes height above terrain for draped lines.
//
// Responsibilities: per-feature average elevation, the grouping state
// machine (OnLowFeature, OnHighFeature, OnStreamEnd), the Grouper driving
// loop with captures, result summaries, and relative-altitude computation.
// Key types: LineFeature, SegmentGroup, GroupState, EmittedGroup, Grouper.
//
// Rendering of captures lives behind the Capturer interface; see package
// capture for the PNG implementation.
package altitude
