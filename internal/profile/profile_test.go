package profile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/banshee-data/altitude.report/internal/geom"
	"github.com/banshee-data/altitude.report/internal/resample"
)

func TestFromLayer(t *testing.T) {
	layer := resample.NewResampler(5, nil).BuildLayer("track", "", []geom.Feature{
		geom.NewFeature(1, geom.V(0, 0, 100), geom.V(12, 0, 100)),
	})
	points := FromLayer(layer)

	want := []Point{{2.5, 100}, {7.5, 100}, {11, 100}}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i := range want {
		if d := points[i].Distance - want[i].Distance; d > 1e-9 || d < -1e-9 {
			t.Errorf("point %d distance = %v, want %v", i, points[i].Distance, want[i].Distance)
		}
		if points[i].Altitude != want[i].Altitude {
			t.Errorf("point %d altitude = %v", i, points[i].Altitude)
		}
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, []Point{{0, 1200}, {50, 800}, {100, 950}}, Options{Title: "Track 7", Threshold: 1000})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	html := buf.String()
	for _, want := range []string{"<html", "Track 7", "threshold", "#ffa500"} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderNoPoints(t *testing.T) {
	if err := Render(&bytes.Buffer{}, nil, Options{}); err != ErrNoPoints {
		t.Errorf("err = %v, want ErrNoPoints", err)
	}
}
