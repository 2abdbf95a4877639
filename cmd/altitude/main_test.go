package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/altitude.report/internal/db"
	"github.com/banshee-data/altitude.report/internal/fsutil"
	"github.com/banshee-data/altitude.report/internal/geojsonio"
	"github.com/banshee-data/altitude.report/internal/geom"
	"github.com/banshee-data/altitude.report/internal/monitoring"
	"github.com/banshee-data/altitude.report/internal/testutil"
	"github.com/banshee-data/altitude.report/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFixture(t *testing.T, path string, features []geom.Feature) {
	t.Helper()
	err := geojsonio.CreateFile(fsutil.OSFileSystem{}, path, func(w io.Writer) error {
		return geojsonio.WriteFeatures(w, features)
	})
	require.NoError(t, err)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestRunUnknownCommand(t *testing.T) {
	out, err := runCLI(t, "fly")
	assert.Error(t, err)
	assert.Contains(t, out, "Usage: altitude")

	_, err = runCLI(t)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "altitude "), out)
}

func TestAnalyzeRecordsRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "lines.geojson")
	dbPath := filepath.Join(dir, "runs.db")
	groupsOut := filepath.Join(dir, "groups.geojson")
	captures := filepath.Join(dir, "captures")
	writeFixture(t, input, testutil.Chain(1200, 800, 700, 1200, 900))

	out, err := runCLI(t, "analyze", "-input", input, "-db", dbPath,
		"-captures", captures, "-groups-out", groupsOut)
	require.NoError(t, err)
	assert.Contains(t, out, "3 segments in 2 group(s) below the minimum altitude of 1000m. Total distance: 30m")
	assert.Contains(t, out, "group_1_alt700m_20m.png")
	assert.Contains(t, out, "group_2_alt900m_10m.png")

	var runID string
	for _, line := range strings.Split(out, "\n") {
		if id, ok := strings.CutPrefix(line, "Run recorded as "); ok {
			runID = id
		}
	}
	require.NotEmpty(t, runID)

	pngs, err := filepath.Glob(filepath.Join(captures, runID, "*.png"))
	require.NoError(t, err)
	assert.Len(t, pngs, 2)

	data, err := os.ReadFile(groupsOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"segment_count":2`)

	out, err = runCLI(t, "runs", "-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "complete")

	out, err = runCLI(t, "runs", "-db", dbPath, "-id", runID)
	require.NoError(t, err)
	assert.Contains(t, out, "[1 2]")
	assert.Contains(t, out, "[4]")

	_, err = runCLI(t, "runs", "-db", dbPath, "-id", runID, "-delete")
	require.NoError(t, err)
	out, err = runCLI(t, "runs", "-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestAnalyzeNoGroups(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "high.geojson")
	writeFixture(t, input, testutil.Chain(1500, 1600))

	out, err := runCLI(t, "analyze", "-input", input, "-no-capture", "-no-record", "-units", "ft")
	require.NoError(t, err)
	assert.Contains(t, out, "No segment below the minimum altitude of 3281ft.")
}

func TestAnalyzeFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "lines.geojson")
	cfgPath := filepath.Join(dir, "cfg.json")
	writeFixture(t, input, testutil.Chain(1200, 800, 700))
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"min_altitude": 500}`), 0o644))

	out, err := runCLI(t, "analyze", "-input", input, "-config", cfgPath, "-no-capture", "-no-record")
	require.NoError(t, err)
	assert.Contains(t, out, "No segment below the minimum altitude of 500m.")

	out, err = runCLI(t, "analyze", "-input", input, "-config", cfgPath, "-min-altitude", "750", "-no-capture", "-no-record")
	require.NoError(t, err)
	assert.Contains(t, out, "1 segments in 1 group(s) below the minimum altitude of 750m")
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	_, err := runCLI(t, "analyze")
	assert.Error(t, err)

	_, err = runCLI(t, "analyze", "-input", filepath.Join(t.TempDir(), "missing.geojson"), "-no-record")
	assert.Error(t, err)

	_, err = runCLI(t, "analyze", "-input", "x.geojson", "-min-altitude", "-5")
	assert.Error(t, err)

	_, err = runCLI(t, "analyze", "-h")
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestSegmentsWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "track.geojson")
	out := filepath.Join(dir, "segments.geojson")
	png := filepath.Join(dir, "map.png")
	html := filepath.Join(dir, "profile.html")
	writeFixture(t, input, testutil.Chain(100, 900))

	stdout, err := runCLI(t, "segments", "-input", input, "-out", out, "-length", "5",
		"-png", png, "-profile", html)
	require.NoError(t, err)
	assert.Contains(t, stdout, "track_segments_5m: 6 segments, 2 colors")

	for _, p := range []string{out, png, html} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Positive(t, info.Size(), p)
	}

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"track_segments_5m"`)
}

func TestSegmentsRequiresOutput(t *testing.T) {
	_, err := runCLI(t, "segments", "-input", "x.geojson")
	assert.Error(t, err)
}

func TestClearanceCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "flight.geojson")
	draped := filepath.Join(dir, "draped.geojson")
	out := filepath.Join(dir, "relative.geojson")
	dbPath := filepath.Join(dir, "runs.db")
	writeFixture(t, input, testutil.Chain(1200, 800))
	writeFixture(t, draped, testutil.Chain(200, 300))

	stdout, err := runCLI(t, "clearance", "-input", input, "-draped", draped, "-out", out, "-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 of 2 features computed. Mean height above terrain 750.0m, lowest 500.0m")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"alt_relative":1000`)

	stdout, err = runCLI(t, "runs", "-db", dbPath, "-clearance")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2/2")
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "m.db")

	out, err := runCLI(t, "migrate", "up", "-db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 2")

	out, err = runCLI(t, "migrate", "-db", dbPath, "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 1")

	_, err = runCLI(t, "migrate", "-db", dbPath)
	assert.Error(t, err)
}

func TestProgressLoggerLogsDeciles(t *testing.T) {
	var calls int
	orig := monitoring.Logf
	t.Cleanup(func() { monitoring.SetLogger(orig) })
	monitoring.SetLogger(func(string, ...interface{}) { calls++ })

	p := progressLogger("test")
	for i := 1; i <= 100; i++ {
		p(i, 100)
	}
	assert.Equal(t, 11, calls, "one log per decile, 0 through 10")

	calls = 0
	p = progressLogger("test")
	p(1, -1)
	assert.Zero(t, calls)
}

func TestAnalyzeStampsRunWithClock(t *testing.T) {
	orig := clock
	t.Cleanup(func() { clock = orig })
	clock = timeutil.NewSteppingMockClock(time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC), 1500*time.Millisecond)

	dir := t.TempDir()
	input := filepath.Join(dir, "lines.geojson")
	dbPath := filepath.Join(dir, "runs.db")
	writeFixture(t, input, testutil.Chain(900))

	_, err := runCLI(t, "analyze", "-input", input, "-db", dbPath, "-no-capture")
	require.NoError(t, err)

	database, err := db.NewDB(dbPath)
	require.NoError(t, err)
	defer database.Close()

	runs, err := database.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.True(t, runs[0].StartedAt.Equal(time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)), runs[0].StartedAt)
	assert.Equal(t, 1500*time.Millisecond, runs[0].FinishedAt.Sub(runs[0].StartedAt))

	out, err := runCLI(t, "runs", "-db", dbPath, "-id", runs[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "took: 1.5s (complete)")
}

func TestCommandsLogThroughZap(t *testing.T) {
	origLog, origWarn, origDebug := monitoring.Logf, monitoring.Warnf, monitoring.Debugf
	t.Cleanup(func() {
		monitoring.SetLogger(origLog)
		monitoring.SetWarnLogger(origWarn)
		monitoring.Debugf = origDebug
	})

	dir := t.TempDir()
	input := filepath.Join(dir, "lines.geojson")
	writeFixture(t, input, testutil.Chain(1200))

	_, err := runCLI(t, "analyze", "-input", input, "-no-capture", "-no-record")
	require.NoError(t, err)
	core := monitoring.Sugared().Desugar().Core()
	assert.True(t, core.Enabled(zap.InfoLevel), "zap should back logging without -debug")
	assert.False(t, core.Enabled(zap.DebugLevel))

	_, err = runCLI(t, "analyze", "-input", input, "-no-capture", "-no-record", "-debug")
	require.NoError(t, err)
	assert.True(t, monitoring.Sugared().Desugar().Core().Enabled(zap.DebugLevel))
}
