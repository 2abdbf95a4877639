package altitude

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/banshee-data/altitude.report/internal/geom"
	"github.com/banshee-data/altitude.report/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCapturer struct {
	requests  []CaptureRequest
	failCalls map[int]bool
	emptyPath bool
}

func (c *recordingCapturer) Capture(req CaptureRequest) (string, error) {
	c.requests = append(c.requests, req)
	if c.failCalls[len(c.requests)] {
		return "", errors.New("disk full")
	}
	if c.emptyPath {
		return "", nil
	}
	return "/captures/" + req.Filename, nil
}

func memberSets(groups []EmittedGroup) [][]int64 {
	out := make([][]int64, len(groups))
	for i, g := range groups {
		out[i] = g.MemberIDs
	}
	return out
}

func TestAnalyze_SingleRun(t *testing.T) {
	capt := &recordingCapturer{}
	g := NewGrouper(1000, 250, capt)

	res := g.Analyze(context.Background(), testutil.Chain(1200, 800, 750, 900, 1100), nil)

	require.Len(t, res.Groups, 1)
	got := res.Groups[0]
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, 3, got.SegmentCount)
	assert.Equal(t, 750.0, got.MinElevation)
	assert.Equal(t, 30.0, got.TotalLength)
	assert.Equal(t, []int64{1, 2, 3}, got.MemberIDs)
	assert.Equal(t, orb.Point{10, 0}, got.Start)
	assert.Equal(t, orb.Point{40, 0}, got.End)
	assert.Equal(t, orb.Bound{Min: orb.Point{10, 0}, Max: orb.Point{40, 0}}, got.Bound)
	assert.Equal(t, "/captures/group_1_alt750m_30m.png", got.ArtifactPath)

	require.Len(t, capt.requests, 1)
	req := capt.requests[0]
	assert.Equal(t, "30m", req.DistanceLabel)
	assert.Equal(t, 250.0, req.BufferSize)
	assert.Equal(t, 750.0, req.MinAltitude)
	assert.Len(t, req.Geometry, 3)

	assert.Equal(t, 5, res.Processed)
	assert.False(t, res.Cancelled)
}

func TestAnalyze_GapSplitsRun(t *testing.T) {
	features := testutil.Chain(1200, 800, 750, 900, 1100)
	for i := 2; i < len(features); i++ {
		features[i] = testutil.Shift(features[i], 0, 5)
	}

	res := NewGrouper(1000, 0, nil).Analyze(context.Background(), features, nil)

	if diff := cmp.Diff([][]int64{{1}, {2, 3}}, memberSets(res.Groups)); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 800.0, res.Groups[0].MinElevation)
	assert.Equal(t, 750.0, res.Groups[1].MinElevation)
	assert.Equal(t, []int{1, 2}, []int{res.Groups[0].Index, res.Groups[1].Index})
	assert.Empty(t, res.Groups[0].ArtifactPath, "nil capturer emits groups without artifacts")
}

func TestAnalyze_RunAtStreamEnd(t *testing.T) {
	res := NewGrouper(1000, 0, nil).Analyze(context.Background(), testutil.Chain(1500, 10, 20), nil)
	if diff := cmp.Diff([][]int64{{1, 2}}, memberSets(res.Groups)); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_SkippedFeaturesDoNotBreakRun(t *testing.T) {
	f := testutil.Chain(100, 100)
	noZ := geom.Feature{ID: 42, Parts: geom.MultiPolyline{{{X: 10, Y: 0}, {X: 10, Y: 0}}}}
	stream := []LineFeature{f[0], {ID: 41}, noZ, f[1]}

	res := NewGrouper(1000, 0, nil).Analyze(context.Background(), stream, nil)

	require.Len(t, res.Groups, 1)
	assert.Equal(t, []int64{0, 1}, res.Groups[0].MemberIDs)
	assert.Equal(t, 4, res.Processed)
}

// randomStream builds a chain of features where some links are broken by a
// lateral offset. offsets[i] identifies which connected piece feature i is on.
func randomStream(r *rand.Rand, n int) ([]LineFeature, []float64, []int) {
	elevations := make([]float64, n)
	for i := range elevations {
		elevations[i] = float64(r.IntN(2000))
	}
	features := testutil.Chain(elevations...)
	offsets := make([]int, n)
	off := 0
	for i := range features {
		if r.IntN(4) == 0 {
			off++
		}
		offsets[i] = off
		features[i] = testutil.Shift(features[i], 0, float64(off))
	}
	return features, elevations, offsets
}

func TestAnalyze_RandomStreams(t *testing.T) {
	const threshold = 1000.0
	r := rand.New(rand.NewPCG(7, 11))

	for trial := 0; trial < 200; trial++ {
		features, elevations, offsets := randomStream(r, 1+r.IntN(30))
		res := NewGrouper(threshold, 0, nil).Analyze(context.Background(), features, nil)

		grouped := map[int64]bool{}
		var groupedLength, lowLength float64
		for gi, g := range res.Groups {
			require.NotEmpty(t, g.MemberIDs)
			groupedLength += g.TotalLength
			for mi, id := range g.MemberIDs {
				require.Less(t, elevations[id], threshold, "trial %d: member %d is not low", trial, id)
				require.False(t, grouped[id], "trial %d: feature %d in two groups", trial, id)
				grouped[id] = true
				if mi > 0 {
					prev := g.MemberIDs[mi-1]
					require.Equal(t, prev+1, id, "trial %d: members must be adjacent in the stream", trial)
					require.Equal(t, offsets[prev], offsets[id], "trial %d: members must touch", trial)
				}
			}
			if gi > 0 {
				prev := res.Groups[gi-1]
				last := prev.MemberIDs[len(prev.MemberIDs)-1]
				first := g.MemberIDs[0]
				if first == last+1 {
					require.NotEqual(t, offsets[last], offsets[first],
						"trial %d: touching neighbors split into separate groups", trial)
				}
			}
		}
		for i, z := range elevations {
			if z < threshold {
				lowLength += features[i].Length()
				require.True(t, grouped[int64(i)], "trial %d: low feature %d not grouped", trial, i)
			}
		}
		require.Equal(t, lowLength, groupedLength, "trial %d", trial)
	}
}

func TestAnalyze_CaptureFailureDropsRecord(t *testing.T) {
	features := testutil.Chain(100, 2000, 200, 2000, 300)
	capt := &recordingCapturer{failCalls: map[int]bool{2: true}}
	g := NewGrouper(1000, 0, capt)

	res := g.Analyze(context.Background(), features, nil)

	require.Len(t, res.Groups, 2)
	assert.Equal(t, 1, res.Groups[0].Index)
	assert.Equal(t, 3, res.Groups[1].Index, "failed group still consumes its index")
	assert.Equal(t, "group_3_alt300m_10m.png", capt.requests[2].Filename)
	assert.Equal(t, 3, g.GroupCount())
	assert.Equal(t, 5, res.Processed)
}

func TestAnalyze_EmptyArtifactPathDropsRecord(t *testing.T) {
	res := NewGrouper(1000, 0, &recordingCapturer{emptyPath: true}).
		Analyze(context.Background(), testutil.Chain(100), nil)
	assert.Empty(t, res.Groups)
}

func TestGrouper_CounterPersistsUntilReset(t *testing.T) {
	g := NewGrouper(1000, 0, nil)
	ctx := context.Background()

	first := g.Analyze(ctx, testutil.Chain(100), nil)
	second := g.Analyze(ctx, testutil.Chain(100), nil)
	require.Len(t, first.Groups, 1)
	require.Len(t, second.Groups, 1)
	assert.Equal(t, 1, first.Groups[0].Index)
	assert.Equal(t, 2, second.Groups[0].Index)

	g.Reset()
	third := g.Analyze(ctx, testutil.Chain(100), nil)
	assert.Equal(t, 1, third.Groups[0].Index)
}

func TestAnalyze_Progress(t *testing.T) {
	var calls [][2]int
	NewGrouper(1000, 0, nil).Analyze(context.Background(), testutil.Chain(1, 2, 3), func(current, total int) {
		calls = append(calls, [2]int{current, total})
	})
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestAnalyze_CancelFinalizesOpenGroup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	features := testutil.Chain(100, 200, 300, 400, 500)
	res := NewGrouper(1000, 0, nil).Analyze(ctx, features, func(current, _ int) {
		if current == 2 {
			cancel()
		}
	})

	assert.True(t, res.Cancelled)
	assert.Equal(t, 2, res.Processed)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, []int64{0, 1}, res.Groups[0].MemberIDs)
}

func TestAnalyze_CancelAfterLastFeatureCompletes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := NewGrouper(1000, 0, nil).Analyze(ctx, testutil.Chain(100, 200), func(current, total int) {
		if current == total {
			cancel()
		}
	})
	assert.False(t, res.Cancelled)
	require.Len(t, res.Groups, 1)
	assert.Len(t, res.Groups[0].MemberIDs, 2)
}

func TestScan_YieldsPerFeatureAndTrailingFlush(t *testing.T) {
	g := NewGrouper(1000, 0, nil)
	features := testutil.Chain(100, 2000, 200)

	var indexes []int
	var emitted [][]int64
	for i, eg := range g.Scan(features) {
		indexes = append(indexes, i)
		if eg != nil {
			emitted = append(emitted, eg.MemberIDs)
		}
	}

	assert.Equal(t, []int{0, 1, 2, 3}, indexes)
	assert.Equal(t, [][]int64{{0}, {2}}, emitted)
}

func TestScan_EarlyStopThenFlush(t *testing.T) {
	g := NewGrouper(1000, 0, nil)
	for i, eg := range g.Scan(testutil.Chain(100, 200, 300)) {
		assert.Nil(t, eg)
		if i == 1 {
			break
		}
	}
	eg := g.Flush()
	require.NotNil(t, eg)
	assert.Equal(t, []int64{0, 1}, eg.MemberIDs)
	assert.Nil(t, g.Flush(), "second flush has nothing to emit")
}

func TestGroupFilename(t *testing.T) {
	assert.Equal(t, "group_12_alt751m_1235m.png", GroupFilename(12, 750.6, 1234.6))
	assert.Equal(t, "0m", DistanceLabel(0.2))
}
