// Package units provides shared constants and validation for display length units
package units

import "fmt"

// Unit constants
const (
	Meters     = "m"
	Feet       = "ft"
	Kilometers = "km"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Feet, Kilometers}

const metersPerFoot = 0.3048

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, ft, km"
}

// ConvertLength converts a length in meters to the target units.
// Geometry and the run store always hold meters.
func ConvertLength(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return meters / metersPerFoot
	case Kilometers:
		return meters / 1000
	default:
		return meters
	}
}

// ToMeters converts a length given in unit back to meters.
func ToMeters(value float64, unit string) float64 {
	switch unit {
	case Feet:
		return value * metersPerFoot
	case Kilometers:
		return value * 1000
	default:
		return value
	}
}

// Suffix returns the label printed after a value, defaulting to meters.
func Suffix(unit string) string {
	if IsValid(unit) {
		return unit
	}
	return Meters
}

// FormatLength renders meters in the target units with the given precision.
func FormatLength(meters float64, unit string, precision int) string {
	return fmt.Sprintf("%.*f%s", precision, ConvertLength(meters, unit), Suffix(unit))
}
