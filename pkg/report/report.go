// Package report renders the human-readable assessment artifacts: one
// markdown report per student and a class summary, optionally bundled into
// a zip archive.
package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"gonum.org/v1/gonum/stat"

	"cadgrade/pkg/data"
	"cadgrade/pkg/suspicion"
)

// Match is a suspicion record seen from one student's side.
type Match struct {
	SimilarTo string
	Score     int
	Severity  string
	Reasons   []string
}

// StudentReport is the full input to the per-student template.
type StudentReport struct {
	Student    string
	Date       string
	Evaluation *data.EvaluationRow
	Matches    []Match
	Assessment string
	Advice     []string
}

// ClassSummary aggregates one assessment run.
type ClassSummary struct {
	Date         string
	Students     int
	MeanScore    float64
	MedianScore  float64
	HighScore    float64
	LowScore     float64
	StdScore     float64
	Distribution []GradeCount
	TotalPairs   int
	TopPairs     []suspicion.Record
	Failures     []*data.EvaluationRow
}

// GradeCount is one slice of the grade distribution.
type GradeCount struct {
	Letter  string
	Count   int
	Percent float64
}

// Build assembles per-student reports and the class summary from stored
// evaluations and suspicion records.
func Build(evals []*data.EvaluationRow, records []suspicion.Record) ([]*StudentReport, *ClassSummary) {
	now := time.Now().Format("2006-01-02 15:04")

	var reports []*StudentReport
	for _, e := range evals {
		if e.Error != "" {
			continue
		}
		reports = append(reports, &StudentReport{
			Student:    e.Name,
			Date:       now,
			Evaluation: e,
			Matches:    matchesFor(e.Name, records),
			Assessment: assessmentFor(e.Letter),
			Advice:     adviceFor(e),
		})
	}

	return reports, summarize(now, evals, records)
}

func matchesFor(name string, records []suspicion.Record) []Match {
	var out []Match
	for _, r := range records {
		switch name {
		case r.NameA:
			out = append(out, Match{SimilarTo: r.NameB, Score: r.Score, Severity: r.Tier, Reasons: r.Reasons})
		case r.NameB:
			out = append(out, Match{SimilarTo: r.NameA, Score: r.Score, Severity: r.Tier, Reasons: r.Reasons})
		}
	}
	return out
}

func assessmentFor(letter string) string {
	switch letter {
	case "A":
		return "Excellent work. Model shows exceptional accuracy with professional-level precision."
	case "B":
		return "Good work. Most dimensions are accurate with minor areas for improvement."
	case "C":
		return "Acceptable. Basic geometry is correct but lacks precision in several areas."
	case "D":
		return "Needs improvement. Significant geometric inaccuracies detected."
	default:
		return "Unsatisfactory. Major geometric problems require complete revision."
	}
}

func adviceFor(e *data.EvaluationRow) []string {
	var advice []string
	if e.Std > 0.5 {
		advice = append(advice, "Dimensional accuracy: focus on consistent precision throughout the model.")
	} else {
		advice = append(advice, "Dimensional accuracy: maintain current level of precision.")
	}
	if e.Max > 2*e.Mean {
		advice = append(advice, "Critical features: check for missing or misplaced features.")
	} else {
		advice = append(advice, "Critical features: all features appear correctly placed.")
	}
	advice = append(advice, "Modeling technique: review workflow for areas with highest deviation.")
	return advice
}

func summarize(now string, evals []*data.EvaluationRow, records []suspicion.Record) *ClassSummary {
	sum := &ClassSummary{Date: now}

	var scores []float64
	letters := map[string]int{}
	for _, e := range evals {
		if e.Error != "" {
			sum.Failures = append(sum.Failures, e)
			continue
		}
		scores = append(scores, e.Score)
		letters[e.Letter]++
	}

	sum.Students = len(scores)
	if len(scores) > 0 {
		sorted := append([]float64(nil), scores...)
		sort.Float64s(sorted)
		sum.MeanScore = stat.Mean(sorted, nil)
		sum.MedianScore = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		sum.LowScore = sorted[0]
		sum.HighScore = sorted[len(sorted)-1]
		if len(sorted) > 1 {
			sum.StdScore = stat.PopStdDev(sorted, nil)
		}
	}

	for _, letter := range []string{"A", "B", "C", "D", "F"} {
		if c := letters[letter]; c > 0 {
			sum.Distribution = append(sum.Distribution, GradeCount{
				Letter:  letter,
				Count:   c,
				Percent: 100 * float64(c) / float64(sum.Students),
			})
		}
	}

	// report the full count, list only the top pairs
	sum.TotalPairs = len(records)
	if len(records) > 5 {
		records = records[:5]
	}
	sum.TopPairs = records
	return sum
}

// Render produces the markdown for one student report.
func (r *StudentReport) Render() (string, error) {
	return renderTemplate("student", studentTemplate, r)
}

// Render produces the markdown for the class summary.
func (s *ClassSummary) Render() (string, error) {
	return renderTemplate("summary", summaryTemplate, s)
}

func renderTemplate(name, text string, v any) (string, error) {
	t, err := template.New(name).Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// FileName returns the per-student markdown file name.
func (r *StudentReport) FileName() string {
	stem := strings.TrimSuffix(r.Student, filepath.Ext(r.Student))
	return stem + "_report.md"
}

// WriteDir renders every report plus the class summary into dir.
func WriteDir(dir string, reports []*StudentReport, summary *ClassSummary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	for _, r := range reports {
		md, err := r.Render()
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, r.FileName()), []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing report for %s: %w", r.Student, err)
		}
	}
	md, err := summary.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "class_summary.md"), []byte(md), 0o644); err != nil {
		return fmt.Errorf("writing class summary: %w", err)
	}
	return nil
}

// WriteArchive renders everything into a single zip file.
func WriteArchive(path string, reports []*StudentReport, summary *ClassSummary) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, r := range reports {
		md, err := r.Render()
		if err != nil {
			return err
		}
		w, err := zw.Create(r.FileName())
		if err != nil {
			return fmt.Errorf("archiving report for %s: %w", r.Student, err)
		}
		if _, err := w.Write([]byte(md)); err != nil {
			return fmt.Errorf("archiving report for %s: %w", r.Student, err)
		}
	}

	md, err := summary.Render()
	if err != nil {
		return err
	}
	w, err := zw.Create("class_summary.md")
	if err != nil {
		return fmt.Errorf("archiving class summary: %w", err)
	}
	if _, err := w.Write([]byte(md)); err != nil {
		return fmt.Errorf("archiving class summary: %w", err)
	}

	return zw.Close()
}
