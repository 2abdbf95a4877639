package geojsonio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/altitude.report/internal/altitude"
	"github.com/banshee-data/altitude.report/internal/fsutil"
	"github.com/banshee-data/altitude.report/internal/geom"
	"github.com/banshee-data/altitude.report/internal/resample"
	"github.com/paulmach/orb/geojson"
)

// Record is a feature with the properties to write alongside it.
type Record struct {
	Feature    geom.Feature
	Properties map[string]any
}

type outGeometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

type outFeature struct {
	Type       string         `json:"type"`
	ID         int64          `json:"id"`
	Geometry   *outGeometry   `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type outCollection struct {
	Type     string       `json:"type"`
	Name     string       `json:"name,omitempty"`
	Features []outFeature `json:"features"`
}

// WriteRecords encodes records as a 3D FeatureCollection. Single-part
// features are written as LineString, others as MultiLineString.
func WriteRecords(w io.Writer, name string, records []Record) error {
	out := outCollection{Type: "FeatureCollection", Name: name, Features: make([]outFeature, 0, len(records))}
	for _, rec := range records {
		props := rec.Properties
		if props == nil {
			props = map[string]any{}
		}
		out.Features = append(out.Features, outFeature{
			Type:       "Feature",
			ID:         rec.Feature.ID,
			Geometry:   encodeGeometry(rec.Feature.Parts),
			Properties: props,
		})
	}
	return encode(w, out)
}

// WriteFeatures encodes features without properties.
func WriteFeatures(w io.Writer, features []geom.Feature) error {
	records := make([]Record, len(features))
	for i, f := range features {
		records[i] = Record{Feature: f}
	}
	return WriteRecords(w, "", records)
}

// WriteSegments encodes a resampled layer, one LineString per sub-segment,
// with the attributes used for categorized styling.
func WriteSegments(w io.Writer, layer *resample.Layer) error {
	records := make([]Record, len(layer.Segments))
	for i, s := range layer.Segments {
		records[i] = Record{
			Feature: geom.NewFeature(int64(i), s.Points...),
			Properties: map[string]any{
				"feature_id": s.FeatureID,
				"z_avg":      s.AvgZ,
				"length":     s.Length,
				"color":      s.Color.Hex(),
			},
		}
	}
	return WriteRecords(w, layer.Name, records)
}

// WriteClearances encodes relative-altitude lines with their ground and
// relative means.
func WriteClearances(w io.Writer, name string, clearances []altitude.Clearance) error {
	records := make([]Record, len(clearances))
	for i, c := range clearances {
		records[i] = Record{
			Feature: c.Relative,
			Properties: map[string]any{
				"alt_sol":      c.GroundAltitude,
				"alt_relative": c.RelativeAltitude,
			},
		}
	}
	return WriteRecords(w, name, records)
}

// GroupCollection builds planar footprints of emitted groups.
func GroupCollection(groups []altitude.EmittedGroup) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, g := range groups {
		feature := geojson.NewFeature(g.Geometry.MultiLineString())
		feature.ID = g.Index
		if !g.Bound.IsEmpty() {
			feature.BBox = geojson.NewBBox(g.Bound)
		}
		feature.Properties["index"] = g.Index
		feature.Properties["segment_count"] = g.SegmentCount
		feature.Properties["min_elevation"] = g.MinElevation
		feature.Properties["total_length"] = g.TotalLength
		feature.Properties["member_ids"] = g.MemberIDs
		if g.ArtifactPath != "" {
			feature.Properties["capture"] = g.ArtifactPath
		}
		fc.Append(feature)
	}
	return fc
}

// WriteGroups encodes GroupCollection(groups).
func WriteGroups(w io.Writer, groups []altitude.EmittedGroup) error {
	data, err := GroupCollection(groups).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode groups: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// CreateFile creates path on fsys and hands the writer to write.
func CreateFile(fsys fsutil.FileSystem, path string, write func(io.Writer) error) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func encodeGeometry(parts geom.MultiPolyline) *outGeometry {
	if parts.IsEmpty() {
		return nil
	}
	if len(parts) == 1 {
		return &outGeometry{Type: "LineString", Coordinates: positions(parts[0])}
	}
	coords := make([][][]float64, len(parts))
	for i, p := range parts {
		coords[i] = positions(p)
	}
	return &outGeometry{Type: "MultiLineString", Coordinates: coords}
}

func positions(line geom.Polyline) [][]float64 {
	out := make([][]float64, len(line))
	for i, v := range line {
		if v.HasZ {
			out[i] = []float64{v.X, v.Y, v.Z}
		} else {
			out[i] = []float64{v.X, v.Y}
		}
	}
	return out
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return nil
}
