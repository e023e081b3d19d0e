package report

import (
	"math"
	"testing"
)

func TestComputeSpeedStats(t *testing.T) {
	speeds := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	stats := ComputeSpeedStats(speeds)

	if stats.Count != 10 {
		t.Errorf("expected count 10, got %d", stats.Count)
	}
	if stats.Mean != 5.5 {
		t.Errorf("expected mean 5.5, got %v", stats.Mean)
	}
	if stats.P50 != 5 {
		t.Errorf("expected p50 5, got %v", stats.P50)
	}
	if stats.P85 != 9 {
		t.Errorf("expected p85 9, got %v", stats.P85)
	}
	if stats.P95 != 10 {
		t.Errorf("expected p95 10, got %v", stats.P95)
	}
	if stats.Max != 10 {
		t.Errorf("expected max 10, got %v", stats.Max)
	}
}

func TestComputeSpeedStats_Empty(t *testing.T) {
	stats := ComputeSpeedStats(nil)
	if stats != (SpeedStats{}) {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestComputeSpeedStats_Single(t *testing.T) {
	stats := ComputeSpeedStats([]float64{4})
	want := SpeedStats{Count: 1, Mean: 4, P50: 4, P85: 4, P95: 4, Max: 4}
	if stats != want {
		t.Errorf("expected %+v, got %+v", want, stats)
	}
}

func TestComputeSpeedStats_DoesNotMutateInput(t *testing.T) {
	speeds := []float64{3, 1, 2}
	stats := ComputeSpeedStats(speeds)

	if stats.Max != 3 {
		t.Errorf("expected max 3, got %v", stats.Max)
	}
	if speeds[0] != 3 || speeds[1] != 1 || speeds[2] != 2 {
		t.Errorf("input order changed: %v", speeds)
	}
}

func TestSpeedStats_Scale(t *testing.T) {
	stats := SpeedStats{Count: 2, Mean: 5, P50: 4, P85: 6, P95: 6, Max: 6}
	scaled := stats.Scale(1.8)

	if scaled.Count != 2 {
		t.Errorf("count must not scale, got %d", scaled.Count)
	}
	if math.Abs(scaled.Mean-9) > 1e-9 || math.Abs(scaled.Max-10.8) > 1e-9 {
		t.Errorf("unexpected scaled stats: %+v", scaled)
	}
}
