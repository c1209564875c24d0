package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"cadgrade/pkg/config"
	"cadgrade/pkg/data"
	"cadgrade/pkg/eval"
	"cadgrade/pkg/logging"
	"cadgrade/pkg/suspicion"
)

const (
	appName      = "cadgrade"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFilePathFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the Sqlite database file",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	DBPath string
	Debug  bool
	DB     *sql.DB
	Conf   *config.Config
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Grade student CAD models against a reference and screen for plagiarism",
		Flags: []urfave.Flag{
			debugFlag,
			dbFilePathFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			evaluateCmd,
			checkCmd,
			queryCmd,
			reportCmd,
			resetCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				logging.SetDefaultCLILogger("debug")
			}

			f := c.String(formatFlag.Name)
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			home, created, err := config.GetOrCreateHomeDir(appName)
			if err != nil {
				return fmt.Errorf("resolving app home: %w", err)
			}
			if created {
				slog.Debug("app home created", "path", home)
			}

			conf, err := config.ReadOrCreate(home)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			dbPath := c.String(dbFilePathFlag.Name)
			if dbPath == "" {
				dbPath = path.Join(home, data.DataFileName)
			}

			if err := data.Init(dbPath); err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}

			db, err := data.GetDB(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				DBPath: dbPath,
				Debug:  c.Bool(debugFlag.Name),
				DB:     db,
				Conf:   conf,
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

// policyFromConfig maps the config file tunables onto a grading policy.
func policyFromConfig(c *config.Config) eval.Policy {
	p := eval.DefaultPolicy()
	if c == nil {
		return p
	}
	p.Bands[0].Threshold = c.Grading.Thresholds.A
	p.Bands[1].Threshold = c.Grading.Thresholds.B
	p.Bands[2].Threshold = c.Grading.Thresholds.C
	p.Bands[3].Threshold = c.Grading.Thresholds.D
	p.MinorOutlierThreshold = c.Grading.MinorOutlierThreshold
	p.MinorOutlierPenalty = c.Grading.MinorOutlierPenalty
	p.MajorOutlierThreshold = c.Grading.MajorOutlierThreshold
	p.MajorOutlierPenalty = c.Grading.MajorOutlierPenalty
	return p
}

// scorerFromConfig maps the config file tunables onto a suspicion scorer.
func scorerFromConfig(c *config.Config) *suspicion.Scorer {
	s := suspicion.NewScorer()
	if c == nil {
		return s
	}
	s.ExactSizeWeight = c.Suspicion.ExactSizeWeight
	s.NearSizeWeight = c.Suspicion.NearSizeWeight
	s.NearSizeWindow = c.Suspicion.NearSizeWindow
	s.HashWeight = c.Suspicion.HashWeight
	s.TimeWeight = c.Suspicion.TimeWeight
	s.TimeWindow = c.Suspicion.TimeWindow
	s.Floor = c.Suspicion.Floor
	return s
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
