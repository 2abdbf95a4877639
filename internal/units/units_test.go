package units

import (
	"math"
	"testing"
)

func TestConvertLength(t *testing.T) {
	tests := []struct {
		name     string
		meters   float64
		units    string
		expected float64
	}{
		{"1000 m to ft", 1000, Feet, 3280.84},
		{"1000 m to km", 1000, Kilometers, 1.0},
		{"1000 m to m", 1000, Meters, 1000},
		{"unknown units default to m", 1000, "furlong", 1000},
		{"0 m to ft", 0, Feet, 0},
		{"one foot", 0.3048, Feet, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertLength(tt.meters, tt.units)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("ConvertLength(%f, %s) = %f, want %f", tt.meters, tt.units, result, tt.expected)
			}
		})
	}
}

func TestToMetersRoundTrip(t *testing.T) {
	for _, u := range ValidUnits {
		got := ToMeters(ConvertLength(1234.5, u), u)
		if math.Abs(got-1234.5) > 1e-9 {
			t.Errorf("round trip through %s = %f", u, got)
		}
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid m", Meters, true},
		{"valid ft", Feet, true},
		{"valid km", Kilometers, true},
		{"invalid unit", "mph", false},
		{"empty string", "", false},
		{"case sensitive", "FT", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.unit); got != tt.expected {
				t.Errorf("IsValid(%q) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestFormatLength(t *testing.T) {
	if got := FormatLength(1500, Meters, 0); got != "1500m" {
		t.Errorf("FormatLength m = %q", got)
	}
	if got := FormatLength(1500, Kilometers, 2); got != "1.50km" {
		t.Errorf("FormatLength km = %q", got)
	}
	if got := FormatLength(10, "", 1); got != "10.0m" {
		t.Errorf("FormatLength default = %q", got)
	}
}
