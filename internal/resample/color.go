package resample

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// Hex encodes the color as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Uint24 packs the color into a 24-bit value (0xRRGGBB).
func (c RGB) Uint24() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// RGBA converts to an opaque image/color value for rendering.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// ParseHex decodes "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ColorStop anchors a color at an altitude.
type ColorStop struct {
	Altitude float64
	Color    RGB
}

// DefaultColorStops runs red at sea level through orange and yellow to green
// at 1000 m.
var DefaultColorStops = []ColorStop{
	{Altitude: 0, Color: RGB{255, 0, 0}},
	{Altitude: 500, Color: RGB{255, 165, 0}},
	{Altitude: 800, Color: RGB{255, 255, 0}},
	{Altitude: 1000, Color: RGB{0, 128, 0}},
}

// ColorRamp is a sequence of stops ascending by altitude.
type ColorRamp []ColorStop

// NewColorRamp copies stops and sorts them ascending by altitude. Stops
// with equal altitude keep their relative order.
func NewColorRamp(stops []ColorStop) ColorRamp {
	r := make(ColorRamp, len(stops))
	copy(r, stops)
	sort.SliceStable(r, func(i, j int) bool { return r[i].Altitude < r[j].Altitude })
	return r
}

// Interpolate maps an altitude to a color.
//
// Altitudes at or above the last stop get the last color exactly. Inside the
// ramp the first bracketing pair is interpolated channel by channel and
// truncated. Below the first stop the first color is returned. A single stop
// colors every altitude; an empty ramp returns black. A pair with zero span
// yields its lower color.
func (r ColorRamp) Interpolate(z float64) RGB {
	if len(r) == 0 {
		return RGB{}
	}
	last := r[len(r)-1]
	if len(r) == 1 || z >= last.Altitude {
		return last.Color
	}

	for i := 0; i < len(r)-1; i++ {
		lo, hi := r[i], r[i+1]
		if lo.Altitude <= z && z <= hi.Altitude {
			span := hi.Altitude - lo.Altitude
			if span == 0 {
				return lo.Color
			}
			t := (z - lo.Altitude) / span
			return RGB{
				R: lerpChannel(lo.Color.R, hi.Color.R, t),
				G: lerpChannel(lo.Color.G, hi.Color.G, t),
				B: lerpChannel(lo.Color.B, hi.Color.B, t),
			}
		}
	}

	return r[0].Color
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := math.Trunc(float64(a) + t*(float64(b)-float64(a)))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
