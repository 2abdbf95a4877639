// Package geojsonio reads and writes line layers as GeoJSON.
//
// Positions keep their third coordinate: a LineString position of length 3
// or more yields a vertex with HasZ set, a 2-coordinate position one
// without. orb's GeoJSON types are planar, so 3D geometry goes through
// the local position codec below; 2D exports use orb/geojson directly.
package geojsonio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/banshee-data/altitude.report/internal/fsutil"
	"github.com/banshee-data/altitude.report/internal/geom"
)

// MaxFileSize bounds files read by ReadFile.
const MaxFileSize = 256 * 1024 * 1024

var (
	// ErrUnsupportedGeometry is returned for geometry types other than
	// LineString and MultiLineString.
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")
	// ErrInvalidPosition is returned for positions with fewer than two
	// coordinates.
	ErrInvalidPosition = errors.New("position needs at least two coordinates")
)

type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type rawFeature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Geometry   *rawGeometry    `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type rawDocument struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
	rawFeature
}

// ReadFeatures decodes a FeatureCollection (or a single Feature) of line
// geometries. Features keep their numeric "id", falling back to a numeric
// "fid" or "id" property, then to their 0-based position. A null geometry
// yields an empty feature.
func ReadFeatures(r io.Reader) ([]geom.Feature, error) {
	var doc rawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode GeoJSON: %w", err)
	}

	var raws []rawFeature
	switch doc.Type {
	case "FeatureCollection":
		raws = doc.Features
	case "Feature":
		raws = []rawFeature{doc.rawFeature}
	default:
		return nil, fmt.Errorf("expected FeatureCollection or Feature, got %q", doc.Type)
	}

	features := make([]geom.Feature, 0, len(raws))
	for i, rf := range raws {
		f, err := decodeFeature(rf, int64(i))
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		features = append(features, f)
	}
	return features, nil
}

// ReadFile reads path from fsys and decodes it with ReadFeatures.
func ReadFile(fsys fsutil.FileSystem, path string) ([]geom.Feature, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s is too large (%d bytes, max %d)", path, info.Size(), MaxFileSize)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	features, err := ReadFeatures(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return features, nil
}

func decodeFeature(rf rawFeature, position int64) (geom.Feature, error) {
	f := geom.Feature{ID: featureID(rf, position)}
	if rf.Geometry == nil {
		return f, nil
	}

	switch rf.Geometry.Type {
	case "LineString":
		var coords [][]float64
		if err := json.Unmarshal(rf.Geometry.Coordinates, &coords); err != nil {
			return f, fmt.Errorf("invalid LineString coordinates: %w", err)
		}
		line, err := toPolyline(coords)
		if err != nil {
			return f, err
		}
		f.Parts = geom.MultiPolyline{line}
	case "MultiLineString":
		var coords [][][]float64
		if err := json.Unmarshal(rf.Geometry.Coordinates, &coords); err != nil {
			return f, fmt.Errorf("invalid MultiLineString coordinates: %w", err)
		}
		f.Parts = make(geom.MultiPolyline, 0, len(coords))
		for _, c := range coords {
			line, err := toPolyline(c)
			if err != nil {
				return f, err
			}
			f.Parts = append(f.Parts, line)
		}
	default:
		return f, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, rf.Geometry.Type)
	}
	return f, nil
}

func toPolyline(coords [][]float64) (geom.Polyline, error) {
	line := make(geom.Polyline, len(coords))
	for i, c := range coords {
		switch {
		case len(c) < 2:
			return nil, ErrInvalidPosition
		case len(c) == 2:
			line[i] = geom.Vertex3D{X: c[0], Y: c[1]}
		default:
			line[i] = geom.V(c[0], c[1], c[2])
		}
	}
	return line, nil
}

func featureID(rf rawFeature, position int64) int64 {
	if id, ok := numericID(rf.ID); ok {
		return id
	}
	for _, key := range []string{"fid", "id"} {
		if v, ok := rf.Properties[key].(float64); ok {
			return int64(v)
		}
	}
	return position
}

func numericID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	id, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return id, true
}
