package report

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadgrade/pkg/data"
	"cadgrade/pkg/suspicion"
)

func testEvaluations() []*data.EvaluationRow {
	return []*data.EvaluationRow{
		{
			Name: "alice.stl", Reference: "ref.stl", Letter: "A", Score: 97.5,
			Mean: 0.05, Max: 0.2, Std: 0.01, Median: 0.04,
			P95: 0.15, P99: 0.19, Hausdorff: 0.25, Points: 2048,
		},
		{
			Name: "bob.obj", Reference: "ref.stl", Letter: "C", Score: 79.5,
			Mean: 0.75, Max: 2.1, Std: 0.6, Median: 0.7,
			P95: 1.9, P99: 2.0, Hausdorff: 2.2, Points: 2048,
		},
		{
			Name: "carol.off", Reference: "ref.stl", Points: 2048,
			Error: "mesh has no vertices",
		},
	}
}

func testRecords() []suspicion.Record {
	return []suspicion.Record{
		{
			NameA: "alice.stl", NameB: "bob.obj", Score: 160,
			Reasons: []string{"Identical file size", "EXACT COPY - identical file hash"},
			Tier:    "CRITICAL",
		},
	}
}

func TestBuild(t *testing.T) {
	reports, summary := Build(testEvaluations(), testRecords())

	// the failed submission gets no report but shows in the summary
	require.Len(t, reports, 2)
	assert.Equal(t, 2, summary.Students)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "carol.off", summary.Failures[0].Name)

	assert.InDelta(t, 88.5, summary.MeanScore, 0.01)
	assert.InDelta(t, 97.5, summary.HighScore, 0.01)
	assert.InDelta(t, 79.5, summary.LowScore, 0.01)
	// population std of {97.5, 79.5}
	assert.InDelta(t, 9.0, summary.StdScore, 1e-9)
	assert.Equal(t, 1, summary.TotalPairs)
	require.Len(t, summary.Distribution, 2)
	assert.Equal(t, "A", summary.Distribution[0].Letter)
	assert.Equal(t, 1, summary.Distribution[0].Count)

	// both sides of the flagged pair see the match
	assert.Len(t, reports[0].Matches, 1)
	assert.Equal(t, "bob.obj", reports[0].Matches[0].SimilarTo)
	assert.Len(t, reports[1].Matches, 1)
	assert.Equal(t, "alice.stl", reports[1].Matches[0].SimilarTo)
}

func TestStudentReport_Render(t *testing.T) {
	reports, _ := Build(testEvaluations(), testRecords())
	require.NotEmpty(t, reports)

	md, err := reports[0].Render()
	require.NoError(t, err)

	assert.Contains(t, md, "## Student: alice.stl")
	assert.Contains(t, md, "**Grade:** A (97.5%)")
	assert.Contains(t, md, "**Mean Deviation:** 0.0500 units")
	assert.Contains(t, md, "**Hausdorff Distance:** 0.2500 units")
	assert.Contains(t, md, "Similar to: bob.obj")
	assert.Contains(t, md, "Severity: CRITICAL")
	assert.Contains(t, md, "Excellent work")
}

func TestStudentReport_RenderClean(t *testing.T) {
	reports, _ := Build(testEvaluations(), nil)

	md, err := reports[0].Render()
	require.NoError(t, err)
	assert.Contains(t, md, "No plagiarism detected")
}

func TestClassSummary_Render(t *testing.T) {
	_, summary := Build(testEvaluations(), testRecords())

	md, err := summary.Render()
	require.NoError(t, err)

	assert.Contains(t, md, "**Total Students:** 2")
	assert.Contains(t, md, "**Average Score:** 88.5%")
	assert.Contains(t, md, "alice.stl vs bob.obj (160%, CRITICAL)")
	assert.Contains(t, md, "carol.off: mesh has no vertices")
}

func TestClassSummary_ManyPairs(t *testing.T) {
	// more flagged pairs than the summary lists: the count stays truthful
	var records []suspicion.Record
	for i := 0; i < 7; i++ {
		records = append(records, suspicion.Record{
			NameA: fmt.Sprintf("s%d.stl", i), NameB: fmt.Sprintf("s%d.stl", i+1),
			Score: 200 - i, Tier: "CRITICAL",
		})
	}

	_, summary := Build(testEvaluations(), records)
	assert.Equal(t, 7, summary.TotalPairs)
	require.Len(t, summary.TopPairs, 5)

	md, err := summary.Render()
	require.NoError(t, err)
	assert.Contains(t, md, "**Suspicious Pairs Found:** 7")
	assert.Equal(t, 5, strings.Count(md, " vs "))
}

func TestFileName(t *testing.T) {
	r := &StudentReport{Student: "alice.stl"}
	assert.Equal(t, "alice_report.md", r.FileName())

	r = &StudentReport{Student: "bob"}
	assert.Equal(t, "bob_report.md", r.FileName())
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	reports, summary := Build(testEvaluations(), testRecords())

	require.NoError(t, WriteDir(dir, reports, summary))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "alice_report.md")
	assert.Contains(t, names, "bob_report.md")
	assert.Contains(t, names, "class_summary.md")
}

func TestWriteArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assessment.zip")
	reports, summary := Build(testEvaluations(), testRecords())

	require.NoError(t, WriteArchive(path, reports, summary))

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Len(t, names, 3)
	assert.Contains(t, names, "alice_report.md")
	assert.Contains(t, names, "class_summary.md")
}
