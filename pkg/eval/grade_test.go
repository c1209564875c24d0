package eval

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradeOf(t *testing.T, mean, max float64) *GradeResult {
	t.Helper()
	res, err := DefaultPolicy().Grade(&DeviationStats{Mean: mean, Max: max})
	require.NoError(t, err)
	return res
}

func TestGrade_Bands(t *testing.T) {
	tests := []struct {
		name   string
		mean   float64
		letter string
		score  float64
	}{
		{"perfect", 0, "A", 100},
		{"mid A", 0.05, "A", 97.5},
		{"A boundary", 0.1, "A", 95},
		{"mid B", 0.3, "B", 89.5},
		{"B boundary", 0.5, "B", 85},
		{"mid C", 0.75, "C", 79.5},
		{"mid D", 1.5, "D", 69.5},
		{"D boundary", 2.0, "D", 65},
		{"F", 3.0, "F", 34},
		{"F floor", 7.0, "F", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := gradeOf(t, tc.mean, tc.mean)
			assert.Equal(t, tc.letter, res.Letter)
			assert.InDelta(t, tc.score, res.Score, 0.05)
		})
	}
}

func TestGrade_IdenticalModels(t *testing.T) {
	res := gradeOf(t, 0, 0)
	assert.Equal(t, "A", res.Letter)
	assert.GreaterOrEqual(t, res.Score, 99.0)
}

func TestGrade_OutlierPenalty(t *testing.T) {
	// max > 5 subtracts 10; the > 3 rule does not stack on top
	res := gradeOf(t, 0.05, 6.0)
	assert.Equal(t, "A", res.Letter)
	assert.InDelta(t, 87.5, res.Score, 0.05)

	res = gradeOf(t, 0.05, 4.0)
	assert.InDelta(t, 92.5, res.Score, 0.05)

	res = gradeOf(t, 0.05, 2.0)
	assert.InDelta(t, 97.5, res.Score, 0.05)
}

func TestGrade_Monotonic(t *testing.T) {
	// for fixed max deviation, the score never increases with mean
	prev := math.Inf(1)
	for mean := 0.0; mean <= 8.0; mean += 0.01 {
		res := gradeOf(t, mean, 0.5)
		assert.LessOrEqual(t, res.Score, prev, "mean=%f", mean)
		prev = res.Score
	}
}

func TestGrade_BoundaryContinuity(t *testing.T) {
	p := DefaultPolicy()

	// at each interior threshold the next band's formula lands on its own
	// declared range, so the jump across the boundary stays within the
	// band's width
	for i := 0; i < len(p.Bands)-1; i++ {
		thr := p.Bands[i].Threshold
		below := gradeOf(t, thr, 0)
		above := gradeOf(t, thr+1e-9, 0)

		jump := below.Score - above.Score
		width := p.Bands[i+1].MaxScore - p.Bands[i+1].MinScore
		assert.LessOrEqual(t, jump, width+0.2, "boundary %s/%s",
			p.Bands[i].Letter, p.Bands[i+1].Letter)
	}
}

func TestGrade_EchoesThreshold(t *testing.T) {
	res := gradeOf(t, 0.3, 0.3)
	assert.InDelta(t, 0.5, res.Threshold, 1e-12)

	res = gradeOf(t, 9.0, 9.0)
	assert.True(t, math.IsInf(res.Threshold, 1))
}

func TestGrade_RejectsInvalidInput(t *testing.T) {
	p := DefaultPolicy()

	_, err := p.Grade(nil)
	assert.Error(t, err)

	_, err = p.Grade(&DeviationStats{Mean: math.NaN(), Max: 0})
	assert.Error(t, err)

	_, err = p.Grade(&DeviationStats{Mean: 0.1, Max: math.NaN()})
	assert.Error(t, err)

	_, err = p.Grade(&DeviationStats{Mean: -0.1, Max: 0})
	assert.Error(t, err)
}

func TestGradeResult_JSONEncoding(t *testing.T) {
	// the F band's +Inf threshold must not break the json encoder
	res := gradeOf(t, 3.0, 3.0)
	require.Equal(t, "F", res.Letter)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"grading_threshold":-1`)

	res = gradeOf(t, 0.05, 0.05)
	b, err = json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"grading_threshold":0.1`)
}

func TestBatchResult_JSONEncoding(t *testing.T) {
	batch := &BatchResult{
		Results: []*Evaluation{
			{
				Name:  "late.stl",
				Stats: &DeviationStats{Mean: 3.0, Max: 3.0},
				Grade: gradeOf(t, 3.0, 3.0),
			},
		},
	}

	b, err := json.Marshal(batch)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"letter_grade":"F"`)
}

func TestGrade_ClampedToRange(t *testing.T) {
	// heavy penalty on an already low F score cannot go below zero
	res := gradeOf(t, 6.5, 9.0)
	assert.Equal(t, 0.0, res.Score)

	res = gradeOf(t, 0, 0)
	assert.LessOrEqual(t, res.Score, 100.0)
}
