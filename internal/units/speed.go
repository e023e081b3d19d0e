// Package units converts tracker speeds between the pixel domain and
// real-world units. The tracking core only ever produces pixels/second;
// everything here is applied after the core returns.
package units

// Speed unit identifiers accepted by the API and CLI.
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all accepted unit values.
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid reports whether unit is one of ValidUnits. Matching is case-sensitive.
func IsValid(unit string) bool {
	for _, v := range ValidUnits {
		if unit == v {
			return true
		}
	}
	return false
}

// ValidUnitsString returns a comma-separated list of valid units for error messages.
func ValidUnitsString() string {
	return "mps, mph, kmph, kph"
}

// PixelsToMeters converts a pixel-domain speed to meters per second using a
// caller-supplied scale. A non-positive scale disables conversion and yields 0,
// so callers without a calibrated scene fall back to pixel speeds only.
func PixelsToMeters(speedPxS, metersPerPixel float64) float64 {
	if metersPerPixel <= 0 {
		return 0
	}
	return speedPxS * metersPerPixel
}

// ConvertSpeed converts a speed in meters per second to the target units.
// Unknown units pass the value through unchanged.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}
