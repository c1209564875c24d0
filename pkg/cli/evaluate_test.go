package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadgrade/pkg/eval"
	"cadgrade/pkg/geometry"
)

const quadOBJ = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestSubmissionPaths(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "alice.obj", quadOBJ)
	writeTestFile(t, dir, "bob.stl", "solid x\nendsolid x\n")
	writeTestFile(t, dir, "notes.txt", "not a mesh")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	extra := writeTestFile(t, t.TempDir(), "carol.off", "OFF\n0 0 0\n")

	paths, err := submissionPaths(dir, []string{extra})
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, extra, paths[0])
	assert.Contains(t, paths, filepath.Join(dir, "alice.obj"))
	assert.Contains(t, paths, filepath.Join(dir, "bob.stl"))
}

func TestSubmissionPaths_MissingDir(t *testing.T) {
	_, err := submissionPaths(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func TestSubmissionPaths_NoInputs(t *testing.T) {
	paths, err := submissionPaths("", nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestEvaluateResult_JSONEncoding(t *testing.T) {
	// a failing submission yields the open-ended F threshold; the summary
	// must still encode in the default json format
	grade, err := eval.DefaultPolicy().Grade(&eval.DeviationStats{Mean: 4.0, Max: 4.0})
	require.NoError(t, err)
	require.Equal(t, "F", grade.Letter)

	res := &EvaluateResult{
		Reference:   "ref.stl",
		Points:      2048,
		Submissions: 1,
		Duration:    "1s",
		Results: []*eval.Evaluation{
			{Name: "late.stl", Stats: &eval.DeviationStats{Mean: 4.0, Max: 4.0}, Grade: grade},
		},
	}

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"grading_threshold":-1`)
}

func TestLoadSubmissions(t *testing.T) {
	dir := t.TempDir()
	good := writeTestFile(t, dir, "alice.obj", quadOBJ)
	bad := writeTestFile(t, dir, "bob.obj", "v 0 0\nf 1 2 3\n")
	missing := filepath.Join(dir, "gone.obj")

	sampler := geometry.NewSampler(64, 1)
	subs, rows, failures := loadSubmissions(sampler, []string{good, bad, missing})

	require.Len(t, subs, 1)
	assert.Equal(t, "alice.obj", subs[0].Name)
	assert.Len(t, subs[0].Cloud, 64)

	// metadata is captured for every readable file, parse failures included
	require.Len(t, rows, 2)
	assert.Equal(t, "alice.obj", rows[0].Meta.Name)
	assert.NotEmpty(t, rows[0].Meta.Hash)
	assert.Equal(t, "bob.obj", rows[1].Meta.Name)

	require.Len(t, failures, 2)
	names := []string{failures[0].Name, failures[1].Name}
	assert.Contains(t, names, "bob.obj")
	assert.Contains(t, names, "gone.obj")
}
