package units

import (
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		expected bool
	}{
		{"valid mps", MPS, true},
		{"valid mph", MPH, true},
		{"valid kmph", KMPH, true},
		{"valid kph", KPH, true},
		{"invalid unit", "furlongs", false},
		{"empty unit", "", false},
		{"uppercase MPS", "MPS", false}, // Case-sensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.unit); got != tt.expected {
				t.Errorf("IsValid(%s) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedMPS float64
		unit     string
		expected float64
	}{
		{"0 m/s to mps", 0.0, MPS, 0.0},
		{"5 m/s to mps", 5.0, MPS, 5.0},

		{"1 m/s to mph", 1.0, MPH, 2.2369362920544},
		{"5 m/s to mph", 5.0, MPH, 11.184681460272},

		{"1 m/s to kmph", 1.0, KMPH, 3.6},
		{"1 m/s to kph", 1.0, KPH, 3.6},
		{"10 m/s to kmph", 10.0, KMPH, 36.0},

		{"unknown unit passes through", 7.5, "furlongs", 7.5},
		{"empty unit passes through", 7.5, "", 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertSpeed(tt.speedMPS, tt.unit)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ConvertSpeed(%v, %s) = %v, want %v", tt.speedMPS, tt.unit, got, tt.expected)
			}
		})
	}
}

func TestPixelsToMeters(t *testing.T) {
	tests := []struct {
		name           string
		speedPxS       float64
		metersPerPixel float64
		expected       float64
	}{
		{"simple scale", 100.0, 0.05, 5.0},
		{"zero speed", 0.0, 0.05, 0.0},
		{"zero scale disables", 100.0, 0.0, 0.0},
		{"negative scale disables", 100.0, -1.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PixelsToMeters(tt.speedPxS, tt.metersPerPixel)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("PixelsToMeters(%v, %v) = %v, want %v", tt.speedPxS, tt.metersPerPixel, got, tt.expected)
			}
		})
	}
}

func TestPixelChainToUnits(t *testing.T) {
	// 40 px/s at 0.05 m/px is 2 m/s, which is 7.2 km/h.
	mps := PixelsToMeters(40.0, 0.05)
	if math.Abs(mps-2.0) > 1e-9 {
		t.Fatalf("PixelsToMeters = %v, want 2.0", mps)
	}
	kmh := ConvertSpeed(mps, KMPH)
	if math.Abs(kmh-7.2) > 1e-9 {
		t.Errorf("ConvertSpeed = %v, want 7.2", kmh)
	}
}
