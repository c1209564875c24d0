package cli

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"cadgrade/pkg/data"
	"cadgrade/pkg/report"
)

var (
	reportOutFlag = &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Directory to write markdown reports into",
	}

	reportZipFlag = &cli.StringFlag{
		Name:  "zip",
		Usage: "Write all reports into a single zip archive at this path",
	}

	reportCmd = &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Render student reports and the class summary from stored results",
		UsageText: `cadgrade report --out reports/             # one markdown file per student
   cadgrade report --zip assessment.zip       # everything in one archive`,
		HideHelpCommand: true,
		Action:          cmdReport,
		Flags: []cli.Flag{
			reportOutFlag,
			reportZipFlag,
		},
	}
)

func cmdReport(c *cli.Context) error {
	cfg := getConfig(c)

	outDir := c.String(reportOutFlag.Name)
	zipPath := c.String(reportZipFlag.Name)
	if outDir == "" && zipPath == "" {
		return fmt.Errorf("use --%s and/or --%s", reportOutFlag.Name, reportZipFlag.Name)
	}

	evals, err := data.GetEvaluations(cfg.DB)
	if err != nil {
		return fmt.Errorf("loading evaluations: %w", err)
	}
	if len(evals) == 0 {
		return fmt.Errorf("no stored evaluations, run evaluate first")
	}

	records, err := data.GetSuspicionRecords(cfg.DB)
	if err != nil {
		return fmt.Errorf("loading suspicion records: %w", err)
	}

	reports, summary := report.Build(evals, records)

	if outDir != "" {
		if err := report.WriteDir(outDir, reports, summary); err != nil {
			return err
		}
		slog.Info("reports written", "dir", outDir, "students", len(reports))
	}
	if zipPath != "" {
		if err := report.WriteArchive(zipPath, reports, summary); err != nil {
			return err
		}
		slog.Info("report archive written", "path", zipPath, "students", len(reports))
	}
	return nil
}
