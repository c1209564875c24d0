package data

import (
	"database/sql"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"

	"cadgrade/pkg/eval"
)

const (
	upsertEvaluationSQL = `INSERT INTO evaluation (name, reference, letter, score,
			mean_deviation, max_deviation, std_deviation, median_deviation,
			percentile_95, percentile_99, hausdorff, threshold, points, error, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			reference = excluded.reference,
			letter = excluded.letter,
			score = excluded.score,
			mean_deviation = excluded.mean_deviation,
			max_deviation = excluded.max_deviation,
			std_deviation = excluded.std_deviation,
			median_deviation = excluded.median_deviation,
			percentile_95 = excluded.percentile_95,
			percentile_99 = excluded.percentile_99,
			hausdorff = excluded.hausdorff,
			threshold = excluded.threshold,
			points = excluded.points,
			error = excluded.error,
			evaluated_at = excluded.evaluated_at
	`

	selectEvaluationsSQL = `SELECT name, reference, letter, score,
			mean_deviation, max_deviation, std_deviation, median_deviation,
			percentile_95, percentile_99, hausdorff, threshold, points, error
		FROM evaluation
		ORDER BY score DESC, name
	`
)

// EvaluationRow is one stored evaluation outcome. Failed submissions keep
// their row with the failure reason in Error and no grade.
type EvaluationRow struct {
	Name      string  `json:"name" yaml:"name"`
	Reference string  `json:"reference" yaml:"reference"`
	Letter    string  `json:"letter_grade,omitempty" yaml:"letterGrade,omitempty"`
	Score     float64 `json:"numerical_score" yaml:"numericalScore"`
	Mean      float64 `json:"mean_deviation" yaml:"meanDeviation"`
	Max       float64 `json:"max_deviation" yaml:"maxDeviation"`
	Std       float64 `json:"std_deviation" yaml:"stdDeviation"`
	Median    float64 `json:"median_deviation" yaml:"medianDeviation"`
	P95       float64 `json:"percentile_95" yaml:"percentile95"`
	P99       float64 `json:"percentile_99" yaml:"percentile99"`
	Hausdorff float64 `json:"hausdorff_distance" yaml:"hausdorffDistance"`
	Threshold float64 `json:"grading_threshold" yaml:"gradingThreshold"`
	Points    int     `json:"points" yaml:"points"`
	Error     string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// SaveEvaluations persists a whole batch result, successes and failures,
// in one transaction.
func SaveEvaluations(db *sql.DB, reference string, points int, batch *eval.BatchResult) error {
	if db == nil {
		return errDBNotInitialized
	}
	if batch == nil {
		return errors.New("batch result required")
	}

	now := time.Now().UTC().Format(timeFormat)

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin evaluation tx")
	}

	stmt, err := tx.Prepare(upsertEvaluationSQL)
	if err != nil {
		rollbackTransaction(tx)
		return errors.Wrap(err, "failed to prepare evaluation upsert")
	}

	for _, r := range batch.Results {
		if _, err := stmt.Exec(r.Name, reference, r.Grade.Letter, r.Grade.Score,
			r.Stats.Mean, r.Stats.Max, r.Stats.Std, r.Stats.Median,
			r.Stats.P95, r.Stats.P99, r.Stats.Hausdorff,
			thresholdValue(r.Grade.Threshold), points, nil, now); err != nil {
			rollbackTransaction(tx)
			return errors.Wrapf(err, "failed to save evaluation: %s", r.Name)
		}
	}

	for _, fl := range batch.Failures {
		if _, err := stmt.Exec(fl.Name, reference, nil, nil,
			nil, nil, nil, nil, nil, nil, nil, nil, points, fl.Reason, now); err != nil {
			rollbackTransaction(tx)
			return errors.Wrapf(err, "failed to save failed evaluation: %s", fl.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit evaluation tx")
	}

	slog.Debug("evaluations saved", "results", len(batch.Results), "failures", len(batch.Failures))
	return nil
}

// GetEvaluations returns stored evaluations ordered by score descending.
func GetEvaluations(db *sql.DB) ([]*EvaluationRow, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectEvaluationsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query evaluations")
	}
	defer rows.Close()

	var out []*EvaluationRow
	for rows.Next() {
		r := &EvaluationRow{}
		var letter, errMsg sql.NullString
		var score, mean, max, std, median, p95, p99, hausdorff, threshold sql.NullFloat64
		if err := rows.Scan(&r.Name, &r.Reference, &letter, &score,
			&mean, &max, &std, &median, &p95, &p99, &hausdorff, &threshold,
			&r.Points, &errMsg); err != nil {
			return nil, errors.Wrap(err, "failed to scan evaluation row")
		}
		r.Letter = letter.String
		r.Score = score.Float64
		r.Mean = mean.Float64
		r.Max = max.Float64
		r.Std = std.Float64
		r.Median = median.Float64
		r.P95 = p95.Float64
		r.P99 = p99.Float64
		r.Hausdorff = hausdorff.Float64
		r.Threshold = threshold.Float64
		r.Error = errMsg.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// thresholdValue keeps the catch-all band storable: sqlite has no +Inf
// literal on the way back out, so the F band threshold is stored as -1.
func thresholdValue(t float64) float64 {
	if math.IsInf(t, 1) {
		return -1
	}
	return t
}
