// Package profile renders altitude-along-track charts as standalone HTML
// using go-echarts.
package profile

import (
	"errors"
	"fmt"
	"io"

	"github.com/banshee-data/altitude.report/internal/resample"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ErrNoPoints is returned when there is nothing to chart.
var ErrNoPoints = errors.New("no profile points")

// Point is one sample of the profile: cumulative distance along the layer
// and the average altitude of the sub-segment ending there.
type Point struct {
	Distance float64
	Altitude float64
}

// FromLayer walks the layer's sub-segments in order and places each one at
// the midpoint of its run along the accumulated 3D length.
func FromLayer(layer *resample.Layer) []Point {
	points := make([]Point, 0, len(layer.Segments))
	var travelled float64
	for _, s := range layer.Segments {
		points = append(points, Point{Distance: travelled + s.Length/2, Altitude: s.AvgZ})
		travelled += s.Length
	}
	return points
}

// Options configures Render.
type Options struct {
	Title     string
	Threshold float64
	Ramp      resample.ColorRamp
}

// Render writes an HTML page with the altitude profile, a flat series at
// the threshold, and a visual map using the ramp colors.
func Render(w io.Writer, points []Point, o Options) error {
	if len(points) == 0 {
		return ErrNoPoints
	}

	profile := make([]opts.LineData, len(points))
	lo, hi := points[0].Altitude, points[0].Altitude
	for i, p := range points {
		profile[i] = opts.LineData{Value: []interface{}{p.Distance, p.Altitude}}
		lo = min(lo, p.Altitude)
		hi = max(hi, p.Altitude)
	}
	last := points[len(points)-1].Distance
	threshold := []opts.LineData{
		{Value: []interface{}{0.0, o.Threshold}},
		{Value: []interface{}{last, o.Threshold}},
	}

	ramp := o.Ramp
	if len(ramp) == 0 {
		ramp = resample.NewColorRamp(resample.DefaultColorStops)
	}
	colors := make([]string, len(ramp))
	for i, s := range ramp {
		colors[i] = s.Color.Hex()
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: fmt.Sprintf("points=%d min=%.0fm max=%.0fm threshold=%.0fm", len(points), lo, hi, o.Threshold)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Distance (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Altitude (m)", NameLocation: "middle", NameGap: 40}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(ramp[0].Altitude),
			Max:        float32(ramp[len(ramp)-1].Altitude),
			Dimension:  "1",
			InRange:    &opts.VisualMapInRange{Color: colors},
		}),
	)
	line.AddSeries("altitude", profile, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	line.AddSeries("threshold", threshold,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#000000", Type: "dashed"}),
	)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render profile: %w", err)
	}
	return nil
}
