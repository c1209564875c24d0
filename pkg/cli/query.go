package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"cadgrade/pkg/data"
)

var queryCmd = &cli.Command{
	Name:            "query",
	Aliases:         []string{"q"},
	Usage:           "Query stored assessment data",
	HideHelpCommand: true,
	Subcommands: []*cli.Command{
		{
			Name:   "grades",
			Usage:  "List stored evaluations ordered by score",
			Action: cmdQueryGrades,
		},
		{
			Name:   "suspicion",
			Usage:  "List stored suspicion records ordered by score",
			Action: cmdQuerySuspicion,
		},
		{
			Name:   "state",
			Usage:  "Show row counts for all stored data",
			Action: cmdQueryState,
		},
	},
}

func cmdQueryGrades(c *cli.Context) error {
	cfg := getConfig(c)
	rows, err := data.GetEvaluations(cfg.DB)
	if err != nil {
		return fmt.Errorf("querying evaluations: %w", err)
	}
	if err := encode(rows); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

func cmdQuerySuspicion(c *cli.Context) error {
	cfg := getConfig(c)
	records, err := data.GetSuspicionRecords(cfg.DB)
	if err != nil {
		return fmt.Errorf("querying suspicion records: %w", err)
	}
	if err := encode(records); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}

func cmdQueryState(c *cli.Context) error {
	cfg := getConfig(c)
	state, err := data.GetState(cfg.DB)
	if err != nil {
		return fmt.Errorf("querying state: %w", err)
	}
	if err := encode(state); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	return nil
}
