package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"cadgrade/pkg/data"
	"cadgrade/pkg/suspicion"
)

var (
	floorFlag = &cli.IntFlag{
		Name:  "floor",
		Usage: "Minimum suspicion score for a pair to be reported",
	}

	nearBytesFlag = &cli.Int64Flag{
		Name:  "near-bytes",
		Usage: "Byte window for the near-size signal",
	}

	windowSecondsFlag = &cli.Float64Flag{
		Name:  "window-seconds",
		Usage: "Time window for the close-upload signal",
	}

	checkCmd = &cli.Command{
		Name:    "check",
		Aliases: []string{"c"},
		Usage:   "Screen stored submissions for plagiarism signals",
		UsageText: `cadgrade check                      # scan with configured weights
   cadgrade check --floor 100          # report only exact-copy tier pairs`,
		HideHelpCommand: true,
		Action:          cmdCheck,
		Flags: []cli.Flag{
			floorFlag,
			nearBytesFlag,
			windowSecondsFlag,
		},
	}
)

// CheckResult is the encoded output of one suspicion scan.
type CheckResult struct {
	Submissions int                `json:"submissions" yaml:"submissions"`
	Pairs       int                `json:"pairs_evaluated" yaml:"pairsEvaluated"`
	Flagged     []suspicion.Record `json:"flagged" yaml:"flagged"`
	Duration    string             `json:"duration" yaml:"duration"`
}

func cmdCheck(c *cli.Context) error {
	start := time.Now()
	cfg := getConfig(c)

	subs, err := data.GetSubmissions(cfg.DB)
	if err != nil {
		return fmt.Errorf("loading submissions: %w", err)
	}
	if len(subs) < 2 {
		return fmt.Errorf("need at least 2 stored submissions, have %d (run evaluate first)", len(subs))
	}

	scorer := scorerFromConfig(cfg.Conf)
	if v := c.Int(floorFlag.Name); v > 0 {
		scorer.Floor = v
	}
	if v := c.Int64(nearBytesFlag.Name); v > 0 {
		scorer.NearSizeWindow = v
	}
	if v := c.Float64(windowSecondsFlag.Name); v > 0 {
		scorer.TimeWindow = v
	}

	records := scorer.ScoreAll(subs)
	slog.Info("suspicion scan complete", "submissions", len(subs), "flagged", len(records))

	if err := data.SaveSuspicionRecords(cfg.DB, records); err != nil {
		return fmt.Errorf("saving suspicion records: %w", err)
	}

	res := &CheckResult{
		Submissions: len(subs),
		Pairs:       len(subs) * (len(subs) - 1) / 2,
		Flagged:     records,
		Duration:    time.Since(start).Round(time.Millisecond).String(),
	}

	if err := encode(res); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}
