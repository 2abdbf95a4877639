package capture

import (
	"fmt"

	"github.com/banshee-data/altitude.report/internal/geom"
	"github.com/banshee-data/altitude.report/internal/resample"
	"github.com/banshee-data/altitude.report/internal/security"
	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// CaptureLayer renders every sub-segment of layer in its ramp color, with
// one legend entry per color, and returns the written path. buffer grows
// the layer extent like a group capture.
func (c *MapCapturer) CaptureLayer(layer *resample.Layer, filename string, buffer float64) (string, error) {
	path, err := security.JoinWithin(c.OutputDir, filename)
	if err != nil {
		return "", err
	}
	if len(layer.Segments) == 0 {
		return "", ErrEmptyGeometry
	}

	bound := layerBound(layer)
	extent := Extent(bound, buffer)
	p := newMapPlot(fmt.Sprintf("%s - %d segments of %gm", layer.Name, len(layer.Segments), layer.SegmentLength), extent)

	legend := make(map[resample.RGB]bool)
	for _, s := range layer.Segments {
		if err := addLine(p, s.Points, s.Color.RGBA(), segmentLine); err != nil {
			return "", err
		}
		if !legend[s.Color] {
			legend[s.Color] = true
			if err := addLegend(p, s.Color); err != nil {
				return "", err
			}
		}
	}
	p.Legend.Top = true

	if err := c.write(path, p, extent); err != nil {
		return "", err
	}
	return path, nil
}

func layerBound(layer *resample.Layer) orb.Bound {
	parts := make(geom.MultiPolyline, len(layer.Segments))
	for i, s := range layer.Segments {
		parts[i] = s.Points
	}
	return parts.Bound()
}

// addLegend registers a zero-length swatch so the legend lists colors in
// first-seen order without duplicating the drawn lines.
func addLegend(p *plot.Plot, c resample.RGB) error {
	swatch, err := plotter.NewLine(plotter.XYs{{}})
	if err != nil {
		return err
	}
	swatch.Color = c.RGBA()
	swatch.Width = segmentLine
	p.Legend.Add(c.Hex(), swatch)
	return nil
}
