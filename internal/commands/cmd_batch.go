package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/tally"
	"github.com/hay-kot/tally/pkg/iojson"
	"github.com/hay-kot/tally/pkg/logutils"
	"github.com/hay-kot/tally/pkg/randid"
)

// BatchCmd implements the tally batch command: a non-interactive run of
// commands through the same session state machine the REPL uses.
type BatchCmd struct {
	flags *Flags
	app   *tally.App
	fr    *iojson.FileReader[BatchInput]
}

// NewBatchCmd creates a new batch command.
func NewBatchCmd(flags *Flags, app *tally.App) *BatchCmd {
	return &BatchCmd{
		flags: flags,
		app:   app,
		fr:    &iojson.FileReader[BatchInput]{},
	}
}

// Register adds the batch command to the application.
func (cmd *BatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "batch",
		Usage: "Execute commands from JSON input",
		UsageText: `tally batch [options]

Read from stdin:
  echo '{"commands":["add Buy milk","complete 1"]}' | tally batch

Read from file:
  tally batch -f commands.json`,
		Description: `Executes command lines sequentially through the session state machine,
exactly as if typed into the REPL. Confirmation dialogs must be answered
by the next command line ("yes" or "no"); a batch that ends while a
confirmation is pending aborts that action.

Processing stops after 3 failed commands. Commands not attempted are
marked as skipped.

Input JSON schema:
  {
    "commands": ["add Buy milk", "add Write report +work", "complete 1"]
  }

Output is JSON with a batch ID, log file path, and a result per command.`,
		Flags: []cli.Flag{
			cmd.fr.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BatchCmd) run(ctx context.Context, c *cli.Command) error {
	batchID := randid.Generate(6)
	logFile := filepath.Join(cmd.flags.Config.LogsDir(), "batch-"+batchID+".log")

	logger, closer, err := logutils.New(cmd.flags.LogLevel, logFile)
	if err != nil {
		return iojson.WriteError(fmt.Sprintf("setup logger: %s", err), nil)
	}
	defer closer()

	logger.Info().Str("batch_id", batchID).Msg("starting batch")

	input, err := cmd.fr.Read()
	if err != nil {
		logger.Error().Err(err).Msg("failed to read input")
		return iojson.WriteError(fmt.Sprintf("read input: %s", err), nil)
	}

	if err := input.Validate(); err != nil {
		logger.Error().Err(err).Msg("input validation failed")
		return iojson.WriteError(fmt.Sprintf("invalid input: %s", err), nil)
	}

	output := cmd.execute(input, logger)
	output.BatchID = batchID
	output.LogFile = logFile

	logger.Info().
		Int("total", len(input.Commands)).
		Int("ok", countByStatus(output.Results, StatusOK)).
		Int("failed", countByStatus(output.Results, StatusFailed)).
		Int("skipped", countByStatus(output.Results, StatusSkipped)).
		Msg("batch complete")

	return iojson.Write(output)
}

// execute runs every command line through a fresh session and collects
// per-line results.
func (cmd *BatchCmd) execute(input BatchInput, logger zerolog.Logger) BatchOutput {
	output := BatchOutput{
		Results: make([]BatchResult, 0, len(input.Commands)),
	}

	sess := tally.NewSession()
	failures := 0
	for i, line := range input.Commands {
		if failures >= maxFailures {
			logger.Warn().Str("command", line).Msg("skipping command due to failure threshold")
			for j := i; j < len(input.Commands); j++ {
				output.Results = append(output.Results, BatchResult{
					Command: input.Commands[j],
					Status:  StatusSkipped,
				})
			}
			break
		}

		res := cmd.app.Executor.HandleLine(line, sess)

		result := BatchResult{
			Command: line,
			Status:  StatusOK,
			Summary: res.Summary,
			State:   string(res.State),
		}
		if !res.Success {
			result.Status = StatusFailed
			result.Errors = res.Errors
			failures++
			logger.Error().Str("command", line).Str("summary", res.Summary).Msg("command failed")
		} else {
			logger.Info().Str("command", line).Str("summary", res.Summary).Msg("command ok")
		}
		output.Results = append(output.Results, result)

		if res.Quit {
			for j := i + 1; j < len(input.Commands); j++ {
				output.Results = append(output.Results, BatchResult{
					Command: input.Commands[j],
					Status:  StatusSkipped,
				})
			}
			break
		}
	}

	return output
}

const (
	StatusOK      = "ok"      // StatusOK indicates the command executed successfully.
	StatusFailed  = "failed"  // StatusFailed indicates the command was rejected or failed.
	StatusSkipped = "skipped" // StatusSkipped indicates the command was not attempted.
	maxFailures   = 3         // maxFailures is the number of failures before stopping the batch.
)

// BatchInput is the JSON input schema for batch execution.
type BatchInput struct {
	Commands []string `json:"commands"`
}

// Validate checks the batch input for errors using criterio.
func (b BatchInput) Validate() error {
	if len(b.Commands) == 0 {
		return criterio.NewFieldErrors("commands", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	for i, line := range b.Commands {
		if strings.TrimSpace(line) == "" {
			errs = errs.Append(fmt.Sprintf("commands[%d]", i), fmt.Errorf("command must not be blank"))
		}
	}

	return errs.ToError()
}

// BatchResult is the outcome of a single command line.
type BatchResult struct {
	Command string              `json:"command"`
	Status  string              `json:"status"`
	Summary string              `json:"summary,omitempty"`
	State   string              `json:"state,omitempty"`
	Errors  []tally.ResultError `json:"errors,omitempty"`
}

// BatchOutput is the JSON output schema.
type BatchOutput struct {
	BatchID string        `json:"batch_id"`
	LogFile string        `json:"log_file"`
	Results []BatchResult `json:"results"`
}

func countByStatus(results []BatchResult, status string) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}
