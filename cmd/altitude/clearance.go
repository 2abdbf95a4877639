package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/banshee-data/altitude.report/internal/altitude"
	"github.com/banshee-data/altitude.report/internal/config"
	"github.com/banshee-data/altitude.report/internal/db"
	"github.com/banshee-data/altitude.report/internal/fsutil"
	"github.com/banshee-data/altitude.report/internal/geojsonio"
	"github.com/banshee-data/altitude.report/internal/units"
)

func runClearance(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("clearance", flag.ContinueOnError)
	input := fs.String("input", "", "GeoJSON file of 3D line features (required)")
	draped := fs.String("draped", "", "the same features draped on terrain (required)")
	out := fs.String("out", "", "output GeoJSON with relative altitudes (required)")
	configPath := fs.String("config", "", "analysis config JSON")
	dbPath := fs.String("db", config.DefaultDBPath, "SQLite database path")
	noRecord := fs.Bool("no-record", false, "do not record the run in the database")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *draped == "" || *out == "" {
		return errors.New("clearance: -input, -draped and -out are required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if setFlags(fs)["db"] {
		cfg.SetDBPath(*dbPath)
	}
	if err := initLogging(cfg, *debug); err != nil {
		return err
	}

	osfs := fsutil.OSFileSystem{}
	originals, err := geojsonio.ReadFile(osfs, *input)
	if err != nil {
		return err
	}
	drapedFeatures, err := geojsonio.ReadFile(osfs, *draped)
	if err != nil {
		return err
	}

	clearances, err := altitude.ComputeClearances(originals, drapedFeatures, progressLogger("clearance"))
	if err != nil {
		return err
	}
	if err := geojsonio.CreateFile(osfs, *out, func(w io.Writer) error {
		return geojsonio.WriteClearances(w, sourceName(*input)+"_relative", clearances)
	}); err != nil {
		return err
	}

	run := db.NewClearanceRun(*input, *draped, len(originals), clearances, clock.Now())
	unit := cfg.GetDisplayUnits()
	fmt.Fprintf(stdout, "%d of %d features computed. Mean height above terrain %s, lowest %s\n",
		run.ComputedCount, run.FeatureCount,
		units.FormatLength(run.MeanRelativeAlt, unit, 1),
		units.FormatLength(run.MinRelativeAlt, unit, 1))

	if *noRecord {
		return nil
	}
	database, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		return fmt.Errorf("failed to open run database: %w", err)
	}
	defer database.Close()
	return database.RecordClearanceRun(run)
}
