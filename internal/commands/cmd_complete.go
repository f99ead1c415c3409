package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/core/task"
	"github.com/hay-kot/tally/internal/tally"
)

// CompleteCmd implements the tally complete and reopen commands. They share
// one type because they are the same status flip in opposite directions.
type CompleteCmd struct {
	flags *Flags
	app   *tally.App
}

// NewCompleteCmd creates the complete/reopen command pair.
func NewCompleteCmd(flags *Flags, app *tally.App) *CompleteCmd {
	return &CompleteCmd{flags: flags, app: app}
}

// Register adds both commands to the application.
func (cmd *CompleteCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "complete",
			Aliases:   []string{"done"},
			Usage:     "Mark a task completed",
			UsageText: "tally complete <id>",
			Description: `Marks a task completed. Completing an already-completed task is a
no-op that still lands in the audit trail.

Examples:
  tally complete 1`,
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.run(c, "complete")
			},
		},
		&cli.Command{
			Name:      "reopen",
			Usage:     "Mark a completed task pending again",
			UsageText: "tally reopen <id>",
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.run(c, "reopen")
			},
		},
	)

	return app
}

func (cmd *CompleteCmd) run(c *cli.Command, op string) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tally %s <id>", op)
	}

	var (
		t       task.Task
		changed bool
		err     error
	)
	if op == "complete" {
		t, changed, err = cmd.app.Tasks.Complete(c.Args().First())
	} else {
		t, changed, err = cmd.app.Tasks.Reopen(c.Args().First())
	}
	if err != nil {
		return fmt.Errorf("%s task: %w", op, err)
	}

	summary := fmt.Sprintf("%sd task %d", op, t.Num)
	if op == "reopen" {
		summary = fmt.Sprintf("reopened task %d", t.Num)
	}
	if !changed {
		summary = fmt.Sprintf("task %d already %s", t.Num, t.Status)
	}

	return newRenderer(cmd.flags, c).Result(tally.ExecutionResult{
		Success: true,
		Intent:  op,
		State:   tally.StateMainMenu,
		Summary: summary,
		Tasks:   []task.Task{t},
	})
}
