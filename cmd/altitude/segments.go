package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/altitude.report/internal/capture"
	"github.com/banshee-data/altitude.report/internal/config"
	"github.com/banshee-data/altitude.report/internal/fsutil"
	"github.com/banshee-data/altitude.report/internal/geojsonio"
	"github.com/banshee-data/altitude.report/internal/profile"
	"github.com/banshee-data/altitude.report/internal/resample"
)

func runSegments(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("segments", flag.ContinueOnError)
	input := fs.String("input", "", "GeoJSON file of 3D line features (required)")
	out := fs.String("out", "", "output GeoJSON of colored segments (required)")
	configPath := fs.String("config", "", "analysis config JSON")
	length := fs.Float64("length", config.DefaultSegmentLength, "segment length in map units")
	name := fs.String("name", "", "layer name (default <input>_segments_<length>m)")
	pngOut := fs.String("png", "", "also render the colored segments to this PNG")
	buffer := fs.Float64("buffer", 0, "extent buffer for -png, in map units")
	profileOut := fs.String("profile", "", "also write an HTML altitude profile")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" || *out == "" {
		return errors.New("segments: -input and -out are required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if setFlags(fs)["length"] {
		cfg.SetSegmentLength(*length)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("segments: %w", err)
	}
	if err := initLogging(cfg, *debug); err != nil {
		return err
	}

	osfs := fsutil.OSFileSystem{}
	features, err := geojsonio.ReadFile(osfs, *input)
	if err != nil {
		return err
	}

	r := resample.NewResampler(cfg.GetSegmentLength(), cfg.GetColorStops())
	layer := r.BuildLayer(sourceName(*input), *name, features)

	if err := geojsonio.CreateFile(osfs, *out, func(w io.Writer) error {
		return geojsonio.WriteSegments(w, layer)
	}); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d segments, %d colors, total length %.1f\n",
		layer.Name, len(layer.Segments), len(layer.Categories()), layer.TotalLength())

	if *pngOut != "" {
		mc := capture.NewMapCapturer(filepath.Dir(*pngOut), osfs)
		path, err := mc.CaptureLayer(layer, filepath.Base(*pngOut), *buffer)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", *pngOut, err)
		}
		fmt.Fprintf(stdout, "Map saved to %s\n", path)
	}

	if *profileOut != "" {
		o := profile.Options{
			Title:     layer.Name,
			Threshold: cfg.GetMinAltitude(),
			Ramp:      r.Ramp,
		}
		if err := geojsonio.CreateFile(osfs, *profileOut, func(w io.Writer) error {
			return profile.Render(w, profile.FromLayer(layer), o)
		}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Profile saved to %s\n", *profileOut)
	}
	return nil
}
