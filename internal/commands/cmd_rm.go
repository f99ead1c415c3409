package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/core/task"
	"github.com/hay-kot/tally/internal/tally"
)

// RmCmd implements the tally rm command.
type RmCmd struct {
	flags *Flags
	app   *tally.App

	yes bool
}

// NewRmCmd creates a new rm command.
func NewRmCmd(flags *Flags, app *tally.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application.
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a task",
		UsageText: "tally rm <id> [--yes]",
		Description: `Deletes a task after an interactive confirmation. Deletion frees the
task number for display but the number is never reassigned.

Examples:
  tally rm 2
  tally rm 2 --yes`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tally rm <id>")
	}
	ref := c.Args().First()

	t, err := cmd.app.Tasks.Get(ref)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	confirmed := cmd.yes || cmd.flags.Config.Confirm.AssumeYes
	if !confirmed {
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete task %d %q?", t.Num, t.Title)).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
	}

	r := newRenderer(cmd.flags, c)
	if !confirmed {
		return r.Result(tally.ExecutionResult{
			Success: true,
			Intent:  "delete",
			State:   tally.StateMainMenu,
			Summary: "aborted, nothing changed",
		})
	}

	removed, err := cmd.app.Tasks.Delete(ref)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return r.Result(tally.ExecutionResult{
		Success: true,
		Intent:  "delete",
		State:   tally.StateMainMenu,
		Summary: fmt.Sprintf("deleted task %d", removed.Num),
		Tasks:   []task.Task{removed},
	})
}
