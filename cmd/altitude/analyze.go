package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/altitude.report/internal/altitude"
	"github.com/banshee-data/altitude.report/internal/capture"
	"github.com/banshee-data/altitude.report/internal/config"
	"github.com/banshee-data/altitude.report/internal/db"
	"github.com/banshee-data/altitude.report/internal/fsutil"
	"github.com/banshee-data/altitude.report/internal/geojsonio"
	"github.com/banshee-data/altitude.report/internal/monitoring"
	"github.com/banshee-data/altitude.report/internal/timeutil"
)

// clock stamps recorded runs.
var clock timeutil.Clock = timeutil.RealClock{}

func runAnalyze(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	input := fs.String("input", "", "GeoJSON file of 3D line features (required)")
	configPath := fs.String("config", "", "analysis config JSON")
	minAltitude := fs.Float64("min-altitude", config.DefaultMinAltitude, "minimum altitude in meters")
	buffer := fs.Float64("buffer", config.DefaultBufferSize, "capture buffer around each group, in map units")
	captures := fs.String("captures", config.DefaultCaptureDir, "directory for PNG captures")
	dbPath := fs.String("db", config.DefaultDBPath, "SQLite database path")
	groupsOut := fs.String("groups-out", "", "write group footprints to this GeoJSON file")
	units := fs.String("units", "m", "display units for the summary (m, ft, km)")
	noCapture := fs.Bool("no-capture", false, "do not render PNG captures")
	noRecord := fs.Bool("no-record", false, "do not record the run in the database")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("analyze: -input is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	set := setFlags(fs)
	if set["min-altitude"] {
		cfg.SetMinAltitude(*minAltitude)
	}
	if set["buffer"] {
		cfg.SetBufferSize(*buffer)
	}
	if set["captures"] {
		cfg.SetCaptureDir(*captures)
	}
	if set["db"] {
		cfg.SetDBPath(*dbPath)
	}
	if set["units"] {
		cfg.SetDisplayUnits(*units)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	if err := initLogging(cfg, *debug); err != nil {
		return err
	}

	features, err := geojsonio.ReadFile(fsutil.OSFileSystem{}, *input)
	if err != nil {
		return err
	}

	runID := db.NewRunID()
	captureDir := cfg.GetCaptureDir()
	if cfg.GetRunSubdir() {
		captureDir = filepath.Join(captureDir, runID)
	}

	var capturer altitude.Capturer
	if !*noCapture {
		capturer = capture.NewMapCapturer(captureDir, nil)
	} else {
		captureDir = ""
	}

	grouper := altitude.NewGrouper(cfg.GetMinAltitude(), cfg.GetBufferSize(), capturer)
	started := clock.Now()
	res := grouper.Analyze(ctx, features, progressLogger("analyze"))
	finished := clock.Now()

	summary := altitude.Summarize(res.Groups)
	fmt.Fprint(stdout, altitude.FormatSummary(summary, cfg.GetMinAltitude(), captureDir, cfg.GetDisplayUnits()))
	if res.Cancelled {
		fmt.Fprintf(stdout, "Analysis cancelled after %d of %d features.\n", res.Processed, res.Total)
	}

	if *groupsOut != "" {
		err := geojsonio.CreateFile(fsutil.OSFileSystem{}, *groupsOut, func(w io.Writer) error {
			return geojsonio.WriteGroups(w, res.Groups)
		})
		if err != nil {
			return err
		}
		monitoring.Logf("wrote %d group footprints to %s", len(res.Groups), *groupsOut)
	}

	if *noRecord {
		return nil
	}
	database, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		return fmt.Errorf("failed to open run database: %w", err)
	}
	defer database.Close()

	run := db.NewRun(runID, *input, cfg.GetMinAltitude(), cfg.GetBufferSize(), captureDir, res, started, finished)
	if err := database.RecordRun(run); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Run recorded as %s\n", run.ID)
	return nil
}
