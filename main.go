package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/commands"
	"github.com/hay-kot/tally/internal/core/config"
	"github.com/hay-kot/tally/internal/tally"
	"github.com/hay-kot/tally/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		tallyApp  = &tally.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "tally",
		Usage:     "Track tasks with a fuzzy command grammar and a rewindable history",
		UsageText: "tally [global options] command [command options]",
		Description: `Tally keeps tasks in memory for the lifetime of the process and records
every change as an event, so any mistake is one "undo" away.

Run 'tally' with no arguments to open the interactive session. Typed
commands are matched fuzzily: "del 2", "done 1", and bare menu numbers
all work. Destructive commands always ask first.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TALLY_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/tally.log)",
				Sources:     cli.EnvVars("TALLY_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TALLY_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory (logs only; tasks stay in memory)",
				Sources:     cli.EnvVars("TALLY_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output mode (auto, pretty, json)",
				Sources:     cli.EnvVars("TALLY_OUTPUT"),
				Destination: &flags.Output,
			},
			&cli.BoolFlag{
				Name:        "paranoid",
				Usage:       "replay the event log after every change and verify it matches",
				Sources:     cli.EnvVars("TALLY_PARANOID"),
				Destination: &flags.Paranoid,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/tally.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "tally.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			newApp, err := tally.NewApp(cfg, logger)
			if err != nil {
				return ctx, fmt.Errorf("initialize: %w", err)
			}
			newApp.Tasks.SetParanoid(flags.Paranoid)
			*tallyApp = *newApp

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	replCmd := commands.NewReplCmd(flags, tallyApp)

	app = commands.NewAddCmd(flags, tallyApp).Register(app)
	app = commands.NewLsCmd(flags, tallyApp).Register(app)
	app = commands.NewUpdateCmd(flags, tallyApp).Register(app)
	app = commands.NewCompleteCmd(flags, tallyApp).Register(app)
	app = commands.NewRmCmd(flags, tallyApp).Register(app)
	app = commands.NewUndoCmd(flags, tallyApp).Register(app)
	app = commands.NewHistoryCmd(flags, tallyApp).Register(app)
	app = commands.NewBatchCmd(flags, tallyApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Open the interactive session when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'tally --help' for usage", c.Args().First())
		}
		return replCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
