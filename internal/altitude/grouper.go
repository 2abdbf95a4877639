package altitude

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/banshee-data/altitude.report/internal/geom"
	"github.com/banshee-data/altitude.report/internal/monitoring"
	"github.com/paulmach/orb"
)

// ErrNoArtifact is reported when a Capturer returns neither a path nor an error.
var ErrNoArtifact = errors.New("capture produced no artifact")

// CaptureRequest describes one finalized group to materialize.
type CaptureRequest struct {
	Geometry      geom.MultiPolyline
	Start         orb.Point
	End           orb.Point
	DistanceLabel string
	BufferSize    float64
	MinAltitude   float64
	Filename      string
}

// Capturer persists a visual artifact for a group and returns its path.
// Failures are not retried.
type Capturer interface {
	Capture(req CaptureRequest) (string, error)
}

// CapturerFunc adapts a function to the Capturer interface.
type CapturerFunc func(req CaptureRequest) (string, error)

// Capture calls f(req).
func (f CapturerFunc) Capture(req CaptureRequest) (string, error) {
	return f(req)
}

// ProgressFunc receives (current, total) after each processed feature.
// A negative total means the total is unknown.
type ProgressFunc func(current, total int)

// EmittedGroup is the record of one finalized and captured group.
type EmittedGroup struct {
	Index        int
	SegmentCount int
	MinElevation float64
	TotalLength  float64
	ArtifactPath string
	MemberIDs    []int64
	Start        orb.Point
	End          orb.Point
	Bound        orb.Bound
	Geometry     geom.MultiPolyline
}

// Result is the outcome of one Analyze call.
type Result struct {
	Groups    []EmittedGroup
	Processed int
	Total     int
	Cancelled bool
}

// DistanceLabel formats a run length for titles and filenames.
func DistanceLabel(distance float64) string {
	return fmt.Sprintf("%.0fm", distance)
}

// GroupFilename names the capture of the index-th group.
func GroupFilename(index int, minElevation, distance float64) string {
	return fmt.Sprintf("group_%d_alt%.0fm_%s.png", index, minElevation, DistanceLabel(distance))
}

// Grouper drives the grouping state machine over a feature stream and
// captures every finalized group.
//
// Group indexes are 1-based and increase for the lifetime of the Grouper,
// across Analyze calls. Call Reset (or use a fresh Grouper) per logical run
// to keep indexes and filenames reproducible.
type Grouper struct {
	MinAltitude float64
	BufferSize  float64
	// Capturer may be nil, in which case groups are emitted without an
	// artifact.
	Capturer Capturer

	groupCount int
	state      GroupState
}

// NewGrouper returns a Grouper for the given threshold.
func NewGrouper(minAltitude, bufferSize float64, capturer Capturer) *Grouper {
	return &Grouper{
		MinAltitude: minAltitude,
		BufferSize:  bufferSize,
		Capturer:    capturer,
	}
}

// GroupCount is the number of groups finalized so far, including ones whose
// capture failed.
func (g *Grouper) GroupCount() int {
	return g.groupCount
}

// Reset discards any open group and restarts group numbering at 1.
func (g *Grouper) Reset() {
	g.groupCount = 0
	g.state = GroupState{}
}

// Step feeds one feature and returns the group it closed, if any. Empty
// features and features without elevation are skipped: they neither join
// nor break a run.
func (g *Grouper) Step(f LineFeature) *EmittedGroup {
	if f.IsEmpty() {
		monitoring.Debugf("skipping feature %d: empty geometry", f.ID)
		return nil
	}
	avg, ok := AverageElevation(f.Vertices())
	if !ok {
		monitoring.Debugf("skipping feature %d: no elevation data", f.ID)
		return nil
	}

	var closed *SegmentGroup
	if avg < g.MinAltitude {
		g.state, closed = OnLowFeature(g.state, f, avg)
	} else {
		g.state, closed = OnHighFeature(g.state)
	}
	return g.finalize(closed)
}

// Flush closes the open group, if any.
func (g *Grouper) Flush() *EmittedGroup {
	var closed *SegmentGroup
	g.state, closed = OnStreamEnd(g.state)
	return g.finalize(closed)
}

// Scan lazily feeds features and yields (index, group-or-nil) once per
// feature. When the input is exhausted a final (len(features), group) item
// is yielded if a group was still open. If the consumer stops early the open
// group stays pending until Flush.
func (g *Grouper) Scan(features []LineFeature) iter.Seq2[int, *EmittedGroup] {
	return func(yield func(int, *EmittedGroup) bool) {
		for i, f := range features {
			if !yield(i, g.Step(f)) {
				return
			}
		}
		if eg := g.Flush(); eg != nil {
			yield(len(features), eg)
		}
	}
}

// Analyze runs a full scan. ctx is checked between features only; on
// cancellation the scan stops consuming input but the open group is still
// finalized before returning.
func (g *Grouper) Analyze(ctx context.Context, features []LineFeature, progress ProgressFunc) Result {
	res := Result{Total: len(features)}

	for i, eg := range g.Scan(features) {
		if eg != nil {
			res.Groups = append(res.Groups, *eg)
		}
		if i >= len(features) {
			continue
		}
		res.Processed = i + 1
		if progress != nil {
			progress(res.Processed, res.Total)
		}
		if ctx.Err() != nil && res.Processed < res.Total {
			res.Cancelled = true
			break
		}
	}

	if eg := g.Flush(); eg != nil {
		res.Groups = append(res.Groups, *eg)
	}
	if res.Cancelled {
		monitoring.Logf("analysis cancelled after %d of %d features", res.Processed, res.Total)
	}
	return res
}

func (g *Grouper) finalize(sg *SegmentGroup) *EmittedGroup {
	if sg.Len() == 0 {
		return nil
	}

	g.groupCount++
	eg := &EmittedGroup{
		Index:        g.groupCount,
		SegmentCount: sg.Len(),
		MinElevation: sg.MinElevation,
		TotalLength:  sg.TotalLength,
		MemberIDs:    sg.MemberIDs,
		Start:        sg.Start,
		End:          sg.End,
		Bound:        sg.Merged.Bound(),
		Geometry:     sg.Merged,
	}
	if g.Capturer == nil {
		return eg
	}

	path, err := g.Capturer.Capture(CaptureRequest{
		Geometry:      sg.Merged,
		Start:         sg.Start,
		End:           sg.End,
		DistanceLabel: DistanceLabel(sg.TotalLength),
		BufferSize:    g.BufferSize,
		MinAltitude:   sg.MinElevation,
		Filename:      GroupFilename(eg.Index, sg.MinElevation, sg.TotalLength),
	})
	if err == nil && path == "" {
		err = ErrNoArtifact
	}
	if err != nil {
		monitoring.Warnf("capture of group %d failed: %v", eg.Index, err)
		return nil
	}

	eg.ArtifactPath = path
	return eg
}
