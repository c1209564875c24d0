package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"cadgrade/pkg/data"
	"cadgrade/pkg/eval"
	"cadgrade/pkg/geometry"
	"cadgrade/pkg/mesh"
	"cadgrade/pkg/suspicion"
)

var (
	referenceFlag = &cli.StringFlag{
		Name:     "reference",
		Aliases:  []string{"r"},
		Usage:    "Path to the instructor's reference model",
		Required: true,
	}

	submissionDirFlag = &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "Directory of student submissions (all supported mesh files)",
	}

	submissionFileFlag = &cli.StringSliceFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "Individual submission file (can be specified multiple times)",
	}

	pointsFlag = &cli.IntFlag{
		Name:  "points",
		Usage: fmt.Sprintf("Number of sample points per cloud (default: %d)", geometry.SampleCountDefault),
	}

	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Sampling seed for reproducible runs (default: time-based)",
	}

	evaluateCmd = &cli.Command{
		Name:    "evaluate",
		Aliases: []string{"e"},
		Usage:   "Grade student submissions against the reference model",
		UsageText: `cadgrade evaluate --reference bracket.stl --dir submissions/   # grade a whole class
   cadgrade e -r bracket.stl -f alice.obj -f bob.stl              # grade specific files`,
		HideHelpCommand: true,
		Action:          cmdEvaluate,
		Flags: []cli.Flag{
			referenceFlag,
			submissionDirFlag,
			submissionFileFlag,
			pointsFlag,
			seedFlag,
		},
	}
)

// EvaluateResult is the encoded output of one evaluation run.
type EvaluateResult struct {
	Reference   string             `json:"reference" yaml:"reference"`
	Points      int                `json:"points" yaml:"points"`
	Submissions int                `json:"submissions" yaml:"submissions"`
	Duration    string             `json:"duration" yaml:"duration"`
	Results     []*eval.Evaluation `json:"results" yaml:"results"`
	Failures    []eval.Failure     `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func cmdEvaluate(c *cli.Context) error {
	start := time.Now()
	cfg := getConfig(c)

	points := c.Int(pointsFlag.Name)
	if points < 1 {
		points = cfg.Conf.SamplePoints
	}
	if points < 1 {
		points = geometry.SampleCountDefault
	}

	seed := c.Int64(seedFlag.Name)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	paths, err := submissionPaths(c.String(submissionDirFlag.Name), c.StringSlice(submissionFileFlag.Name))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no submissions given, use --%s or --%s",
			submissionDirFlag.Name, submissionFileFlag.Name)
	}

	refPath := c.String(referenceFlag.Name)
	sampler := geometry.NewSampler(points, seed)

	refMesh, err := mesh.Load(refPath)
	if err != nil {
		return fmt.Errorf("loading reference: %w", err)
	}
	refCloud, err := sampler.Sample(refMesh)
	if err != nil {
		return fmt.Errorf("sampling reference: %w", err)
	}
	slog.Info("reference model loaded", "name", refMesh.Name,
		"vertices", len(refMesh.Vertices), "faces", len(refMesh.Faces))

	subs, rows, failures := loadSubmissions(sampler, paths)
	slog.Info("submissions loaded", "ok", len(subs), "failed", len(failures))

	batch := eval.EvaluateAll(c.Context, policyFromConfig(cfg.Conf), refCloud, subs)
	batch.Failures = append(failures, batch.Failures...)

	if err := data.SaveSubmissions(cfg.DB, rows); err != nil {
		return fmt.Errorf("saving submissions: %w", err)
	}
	if err := data.SaveEvaluations(cfg.DB, refMesh.Name, points, batch); err != nil {
		return fmt.Errorf("saving evaluations: %w", err)
	}

	res := &EvaluateResult{
		Reference:   refMesh.Name,
		Points:      points,
		Submissions: len(paths),
		Duration:    time.Since(start).Round(time.Millisecond).String(),
		Results:     batch.Results,
		Failures:    batch.Failures,
	}

	if err := encode(res); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

// submissionPaths merges the --dir scan with explicit --file paths.
func submissionPaths(dir string, files []string) ([]string, error) {
	paths := append([]string(nil), files...)

	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("reading submission dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !mesh.Supported(e.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// loadSubmissions reads, parses, and samples every submission file. A file
// that cannot be loaded becomes a Failure; the rest of the batch proceeds.
// The file's modification time stands in for the upload timestamp.
func loadSubmissions(sampler *geometry.Sampler, paths []string) ([]eval.Submission, []data.SubmissionRow, []eval.Failure) {
	var (
		subs     []eval.Submission
		rows     []data.SubmissionRow
		failures []eval.Failure
	)

	for _, p := range paths {
		name := filepath.Base(p)

		raw, err := os.ReadFile(p)
		if err != nil {
			failures = append(failures, eval.Failure{Name: name, Reason: err.Error()})
			continue
		}

		uploaded := time.Now()
		if fi, err := os.Stat(p); err == nil {
			uploaded = fi.ModTime()
		}
		rows = append(rows, data.SubmissionRow{
			Meta: suspicion.Extract(name, raw, uploaded),
			Path: p,
		})

		m, err := mesh.LoadBytes(name, raw)
		if err != nil {
			failures = append(failures, eval.Failure{Name: name, Reason: err.Error()})
			continue
		}

		cloud, err := sampler.Sample(m)
		if err != nil {
			failures = append(failures, eval.Failure{Name: name, Reason: err.Error()})
			continue
		}

		subs = append(subs, eval.Submission{Name: name, Cloud: cloud})
	}
	return subs, rows, failures
}
