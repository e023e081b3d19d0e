// Package report derives summary statistics and rendered artifacts from
// recorded tracking sessions.
package report

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SpeedStats summarizes a speed series. Values are in whatever unit the
// input series used; Scale converts them.
type SpeedStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P85   float64 `json:"p85"`
	P95   float64 `json:"p95"`
	Max   float64 `json:"max"`
}

// ComputeSpeedStats computes mean, empirical percentiles (no interpolation)
// and max over a speed series. An empty series yields zero stats.
func ComputeSpeedStats(speeds []float64) SpeedStats {
	if len(speeds) == 0 {
		return SpeedStats{}
	}

	sorted := make([]float64, len(speeds))
	copy(sorted, speeds)
	sort.Float64s(sorted)

	return SpeedStats{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P85:   stat.Quantile(0.85, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Max:   sorted[len(sorted)-1],
	}
}

// Scale returns a copy with every speed multiplied by factor. Count is
// unchanged. Used to convert pixel-domain stats to real-world units at
// the reporting boundary.
func (s SpeedStats) Scale(factor float64) SpeedStats {
	return SpeedStats{
		Count: s.Count,
		Mean:  s.Mean * factor,
		P50:   s.P50 * factor,
		P85:   s.P85 * factor,
		P95:   s.P95 * factor,
		Max:   s.Max * factor,
	}
}
