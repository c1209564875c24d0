package eval

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"cadgrade/pkg/geometry"
)

// Submission is one sampled student model queued for evaluation.
type Submission struct {
	Name  string
	Cloud geometry.PointCloud
}

// Evaluation is the full per-submission outcome.
type Evaluation struct {
	Name  string          `json:"name" yaml:"name"`
	Stats *DeviationStats `json:"stats" yaml:"stats"`
	Grade *GradeResult    `json:"grade" yaml:"grade"`
}

// Failure records a submission that could not be evaluated.
type Failure struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

// BatchResult carries successful evaluations alongside per-item failures.
type BatchResult struct {
	Results  []*Evaluation `json:"results" yaml:"results"`
	Failures []Failure     `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// EvaluateAll analyzes and grades every submission against the reference
// cloud. Submissions are independent, so they run in parallel; the reference
// cloud is shared read-only. A failed submission is reported in Failures and
// never aborts the rest of the batch.
func EvaluateAll(ctx context.Context, policy Policy, reference geometry.PointCloud, subs []Submission) *BatchResult {
	type slot struct {
		eval *Evaluation
		fail *Failure
	}
	slots := make([]slot, len(subs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, sub := range subs {
		i, sub := i, sub
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ds, err := Analyze(reference, sub.Cloud)
			if err != nil {
				slots[i].fail = &Failure{Name: sub.Name, Reason: err.Error()}
				return nil
			}

			grade, err := policy.Grade(ds)
			if err != nil {
				slots[i].fail = &Failure{Name: sub.Name, Reason: err.Error()}
				return nil
			}

			slots[i].eval = &Evaluation{Name: sub.Name, Stats: ds, Grade: grade}
			slog.Debug("submission evaluated", "name", sub.Name, "grade", grade.Letter, "score", grade.Score)
			return nil
		})
	}

	// workers only return ctx errors, which means the batch was abandoned
	if err := g.Wait(); err != nil {
		slog.Warn("evaluation batch interrupted", "error", err)
	}

	res := &BatchResult{}
	for _, s := range slots {
		switch {
		case s.eval != nil:
			res.Results = append(res.Results, s.eval)
		case s.fail != nil:
			res.Failures = append(res.Failures, *s.fail)
		}
	}
	return res
}
