package eval

import (
	"encoding/json"
	"fmt"
	"math"
)

// Band maps a letter grade to its inclusive mean-deviation threshold and
// numerical score sub-range.
type Band struct {
	Letter    string
	Threshold float64
	MinScore  float64
	MaxScore  float64
}

// Policy holds the grading table and outlier penalty rules. Bands are
// evaluated in order, first match wins, so the slice must be ascending by
// threshold with the catch-all F band last.
type Policy struct {
	Bands []Band

	// Outlier penalties keyed on max deviation. Only the largest applicable
	// penalty is subtracted.
	MajorOutlierThreshold float64
	MajorOutlierPenalty   float64
	MinorOutlierThreshold float64
	MinorOutlierPenalty   float64

	// FailAnchor is where the F band's linear decay starts. The decay is
	// FailAnchor - mean*10, floored at 0.
	FailAnchor float64
}

// DefaultPolicy returns the standard grading table: thresholds in model
// units, scores out of 100.
func DefaultPolicy() Policy {
	return Policy{
		Bands: []Band{
			{Letter: "A", Threshold: 0.1, MinScore: 95, MaxScore: 100},
			{Letter: "B", Threshold: 0.5, MinScore: 85, MaxScore: 94},
			{Letter: "C", Threshold: 1.0, MinScore: 75, MaxScore: 84},
			{Letter: "D", Threshold: 2.0, MinScore: 65, MaxScore: 74},
			{Letter: "F", Threshold: math.Inf(1), MinScore: 0, MaxScore: 64},
		},
		MajorOutlierThreshold: 5.0,
		MajorOutlierPenalty:   10,
		MinorOutlierThreshold: 3.0,
		MinorOutlierPenalty:   5,
		FailAnchor:            64,
	}
}

// GradeResult is the graded outcome for one submission.
type GradeResult struct {
	Letter        string  `json:"letter_grade" yaml:"letterGrade"`
	Score         float64 `json:"numerical_score" yaml:"numericalScore"`
	MeanDeviation float64 `json:"mean_deviation" yaml:"meanDeviation"`
	MaxDeviation  float64 `json:"max_deviation" yaml:"maxDeviation"`
	Threshold     float64 `json:"grading_threshold" yaml:"gradingThreshold"`
}

// Grade maps deviation statistics onto a letter grade and numerical score.
// Mean and max deviations must be finite and non-negative: a NaN would pass
// silently through every band comparison and corrupt score ordering, so it
// is rejected here rather than propagated.
func (p Policy) Grade(ds *DeviationStats) (*GradeResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("deviation statistics required")
	}
	if !validDeviation(ds.Mean) || !validDeviation(ds.Max) {
		return nil, fmt.Errorf("invalid deviation values: mean=%v max=%v", ds.Mean, ds.Max)
	}

	idx := len(p.Bands) - 1
	for i, b := range p.Bands {
		if ds.Mean <= b.Threshold {
			idx = i
			break
		}
	}
	band := p.Bands[idx]

	score := p.bandScore(idx, ds.Mean)

	if ds.Max > p.MajorOutlierThreshold {
		score -= p.MajorOutlierPenalty
	} else if ds.Max > p.MinorOutlierThreshold {
		score -= p.MinorOutlierPenalty
	}

	score = math.Max(0, math.Min(100, score))

	return &GradeResult{
		Letter:        band.Letter,
		Score:         round1(score),
		MeanDeviation: ds.Mean,
		MaxDeviation:  ds.Max,
		Threshold:     band.Threshold,
	}, nil
}

// bandScore interpolates the numerical score inside band idx. The top band
// rewards proximity to zero, the bottom band decays without a lower bound
// other than zero, and the middle bands map the mean's position between the
// neighboring thresholds onto the band's score range.
func (p Policy) bandScore(idx int, mean float64) float64 {
	band := p.Bands[idx]
	span := band.MaxScore - band.MinScore

	switch {
	case idx == 0:
		factor := math.Max(0, 1-mean/band.Threshold)
		return band.MinScore + span*factor
	case idx == len(p.Bands)-1:
		return math.Max(0, p.FailAnchor-mean*10)
	default:
		prev := p.Bands[idx-1].Threshold
		factor := (band.Threshold - mean) / (band.Threshold - prev)
		return band.MinScore + span*factor
	}
}

// MarshalJSON reports the catch-all band's open-ended threshold as -1, the
// same sentinel the storage layer uses: encoding/json has no representation
// for +Inf and would fail the whole encode.
func (r GradeResult) MarshalJSON() ([]byte, error) {
	type plain GradeResult
	p := plain(r)
	if math.IsInf(p.Threshold, 1) {
		p.Threshold = -1
	}
	return json.Marshal(p)
}

// MarshalYAML applies the same threshold sentinel so both output formats
// match what query returns from storage.
func (r GradeResult) MarshalYAML() (interface{}, error) {
	type plain GradeResult
	p := plain(r)
	if math.IsInf(p.Threshold, 1) {
		p.Threshold = -1
	}
	return p, nil
}

func validDeviation(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
