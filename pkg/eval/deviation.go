package eval

import (
	"errors"
	"math"

	"github.com/montanaflynn/stats"

	"cadgrade/pkg/geometry"
)

// ErrEmptyCloud is returned when either side of an analysis has no points.
var ErrEmptyCloud = errors.New("point cloud has no points")

// DeviationStats holds the bidirectional nearest-neighbor distance arrays and
// the summary statistics derived from them. Summary statistics are computed
// on the reference→candidate direction only: that is the grading-relevant
// "how far is the true shape from the submission" question. Hausdorff is the
// single symmetric quantity and catches divergence the one-way stats miss,
// such as an extra protrusion on the candidate.
type DeviationStats struct {
	RefToCand []float64 `json:"-" yaml:"-"`
	CandToRef []float64 `json:"-" yaml:"-"`

	Mean      float64 `json:"mean_deviation" yaml:"meanDeviation"`
	Max       float64 `json:"max_deviation" yaml:"maxDeviation"`
	Std       float64 `json:"std_deviation" yaml:"stdDeviation"`
	Median    float64 `json:"median_deviation" yaml:"medianDeviation"`
	P95       float64 `json:"percentile_95" yaml:"percentile95"`
	P99       float64 `json:"percentile_99" yaml:"percentile99"`
	Hausdorff float64 `json:"hausdorff_distance" yaml:"hausdorffDistance"`
}

// Analyze computes deviation statistics between a reference cloud and a
// candidate cloud. The clouds may have different sizes. Neither cloud is
// mutated.
func Analyze(reference, candidate geometry.PointCloud) (*DeviationStats, error) {
	if len(reference) == 0 || len(candidate) == 0 {
		return nil, ErrEmptyCloud
	}

	refToCand := nearestDistances(reference, candidate)
	candToRef := nearestDistances(candidate, reference)

	mean, err := stats.Mean(refToCand)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(refToCand)
	if err != nil {
		return nil, err
	}
	std, err := stats.StandardDeviationPopulation(refToCand)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(refToCand)
	if err != nil {
		return nil, err
	}
	p95, err := stats.Percentile(refToCand, 95)
	if err != nil {
		return nil, err
	}
	p99, err := stats.Percentile(refToCand, 99)
	if err != nil {
		return nil, err
	}
	maxBack, err := stats.Max(candToRef)
	if err != nil {
		return nil, err
	}

	return &DeviationStats{
		RefToCand: refToCand,
		CandToRef: candToRef,
		Mean:      mean,
		Max:       max,
		Std:       std,
		Median:    median,
		P95:       p95,
		P99:       p99,
		Hausdorff: math.Max(max, maxBack),
	}, nil
}

// nearestDistances returns, for every point in from, the Euclidean distance
// to its nearest point in to. Exact exhaustive scan: at the default 2048
// points per cloud the quadratic cost is a few million comparisons, well
// under anything worth an index structure.
func nearestDistances(from, to geometry.PointCloud) []float64 {
	out := make([]float64, len(from))
	for i, p := range from {
		best := math.MaxFloat64
		for _, q := range to {
			if d := p.DistSq(q); d < best {
				best = d
			}
		}
		out[i] = math.Sqrt(best)
	}
	return out
}
