// Package capture renders PNG map snapshots of low-altitude groups and of
// resampled segment layers.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/banshee-data/altitude.report/internal/altitude"
	"github.com/banshee-data/altitude.report/internal/fsutil"
	"github.com/banshee-data/altitude.report/internal/geom"
	"github.com/banshee-data/altitude.report/internal/monitoring"
	"github.com/banshee-data/altitude.report/internal/security"
	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Page layout: the longer side of the map area, the margins around it and
// the band reserved for the title.
const (
	DefaultLongSide  = 180 * vg.Millimeter
	DefaultMargin    = 10 * vg.Millimeter
	DefaultTitleBand = 25 * vg.Millimeter
	DefaultDPI       = 150

	// markerInset keeps start/end markers this fraction of the extent inside
	// its edges.
	markerInset = 0.02
)

// ErrEmptyGeometry is returned when a capture request has nothing to draw.
var ErrEmptyGeometry = errors.New("nothing to draw")

var (
	lineColor   = color.RGBA{R: 0, G: 90, B: 200, A: 255}
	markerFill  = color.RGBA{R: 255, A: 255}
	markerEdge  = color.Black
	markerSize  = vg.Points(5)
	lineWidth   = vg.Points(2)
	segmentLine = vg.Points(2.5)
)

// MapCapturer writes one PNG per captured group into OutputDir.
type MapCapturer struct {
	OutputDir string
	FS        fsutil.FileSystem
	LongSide  vg.Length
	Margin    vg.Length
	TitleBand vg.Length
	DPI       int
}

var _ altitude.Capturer = (*MapCapturer)(nil)

// NewMapCapturer returns a MapCapturer with the default page layout. A nil
// fsys writes to the OS filesystem.
func NewMapCapturer(outputDir string, fsys fsutil.FileSystem) *MapCapturer {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &MapCapturer{
		OutputDir: outputDir,
		FS:        fsys,
		LongSide:  DefaultLongSide,
		Margin:    DefaultMargin,
		TitleBand: DefaultTitleBand,
		DPI:       DefaultDPI,
	}
}

// Title is the caption drawn above a group capture.
func Title(req altitude.CaptureRequest) string {
	return fmt.Sprintf("ALTITUDE BREACH - Length: %s - minimum altitude: %.0fm", req.DistanceLabel, req.MinAltitude)
}

// Capture renders the group geometry over its buffered extent with red
// start and end markers, and returns the written path.
func (c *MapCapturer) Capture(req altitude.CaptureRequest) (string, error) {
	path, err := security.JoinWithin(c.OutputDir, req.Filename)
	if err != nil {
		return "", err
	}
	if req.Geometry.IsEmpty() {
		return "", ErrEmptyGeometry
	}

	extent := Extent(req.Geometry.Bound(), req.BufferSize)
	p := newMapPlot(Title(req), extent)

	for _, part := range req.Geometry {
		if err := addLine(p, part, lineColor, lineWidth); err != nil {
			return "", err
		}
	}
	if err := addMarkers(p, extent, req.Start, req.End); err != nil {
		return "", err
	}

	if err := c.write(path, p, extent); err != nil {
		return "", err
	}
	monitoring.Debugf("wrote capture %s", path)
	return path, nil
}

// Extent grows bound by buffer on every side. A degenerate result is padded
// to a unit square so the map keeps a drawable area.
func Extent(bound orb.Bound, buffer float64) orb.Bound {
	ext := bound.Pad(buffer)
	if ext.Right()-ext.Left() <= 0 || ext.Top()-ext.Bottom() <= 0 {
		ext = ext.Pad(0.5)
	}
	return ext
}

// PageSize returns the map area size: the longer side of the extent maps
// to longSide and the other side keeps the aspect ratio.
func PageSize(extent orb.Bound, longSide vg.Length) (vg.Length, vg.Length) {
	dx := extent.Right() - extent.Left()
	dy := extent.Top() - extent.Bottom()
	if dx <= 0 || dy <= 0 {
		return longSide, longSide
	}
	if dx >= dy {
		return longSide, longSide * vg.Length(dy/dx)
	}
	return longSide * vg.Length(dx/dy), longSide
}

// ClampInside moves pt so it lies at least markerInset of the extent's size
// inside every edge.
func ClampInside(pt orb.Point, extent orb.Bound) orb.Point {
	mx := (extent.Right() - extent.Left()) * markerInset
	my := (extent.Top() - extent.Bottom()) * markerInset
	return orb.Point{
		math.Min(math.Max(pt[0], extent.Left()+mx), extent.Right()-mx),
		math.Min(math.Max(pt[1], extent.Bottom()+my), extent.Top()-my),
	}
}

func newMapPlot(title string, extent orb.Bound) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.X.Min, p.X.Max = extent.Left(), extent.Right()
	p.Y.Min, p.Y.Max = extent.Bottom(), extent.Top()
	return p
}

func addLine(p *plot.Plot, part geom.Polyline, c color.Color, width vg.Length) error {
	if len(part) < 2 {
		return nil
	}
	pts := make(plotter.XYs, len(part))
	for i, v := range part {
		pts[i] = plotter.XY{X: v.X, Y: v.Y}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = width
	p.Add(line)
	return nil
}

func addMarkers(p *plot.Plot, extent orb.Bound, start, end orb.Point) error {
	pts := make(plotter.XYs, 0, 2)
	for _, pt := range []orb.Point{start, end} {
		pt = ClampInside(pt, extent)
		pts = append(pts, plotter.XY{X: pt[0], Y: pt[1]})
	}

	fill, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	fill.GlyphStyle = draw.GlyphStyle{Color: markerFill, Radius: markerSize, Shape: draw.CircleGlyph{}}

	ring, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	ring.GlyphStyle = draw.GlyphStyle{Color: markerEdge, Radius: markerSize, Shape: draw.RingGlyph{}}

	p.Add(fill, ring)
	return nil
}

// render draws p on a page sized for extent, with margins and title band,
// and encodes it as PNG.
func (c *MapCapturer) render(w io.Writer, p *plot.Plot, extent orb.Bound) error {
	mapW, mapH := PageSize(extent, c.LongSide)
	width := mapW + 2*c.Margin
	height := mapH + c.Margin + c.TitleBand

	canvas := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(c.DPI))
	dc := draw.New(canvas)
	p.Draw(draw.Crop(dc, c.Margin, -c.Margin, c.Margin, 0))

	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func (c *MapCapturer) write(path string, p *plot.Plot, extent orb.Bound) error {
	var buf bytes.Buffer
	if err := c.render(&buf, p, extent); err != nil {
		return err
	}
	if err := c.FS.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", c.OutputDir, err)
	}
	if err := c.FS.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
