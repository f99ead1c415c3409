package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/tally"
)

// UndoCmd implements the tally undo command.
type UndoCmd struct {
	flags *Flags
	app   *tally.App
}

// NewUndoCmd creates a new undo command.
func NewUndoCmd(flags *Flags, app *tally.App) *UndoCmd {
	return &UndoCmd{flags: flags, app: app}
}

// Register adds the undo command to the application.
func (cmd *UndoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "undo",
		Usage:     "Rewind the most recent change",
		UsageText: "tally undo",
		Description: `Rewinds the most recent event and restores the prior task state.
Undo on an empty history is a no-op.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *UndoCmd) run(ctx context.Context, c *cli.Command) error {
	res := cmd.app.Tasks.Undo()

	r := newRenderer(cmd.flags, c)
	if !res.Success {
		if err := r.Result(tally.ExecutionResult{
			Success: false,
			Intent:  "undo",
			State:   tally.StateMainMenu,
			Summary: res.Reason,
			Undo:    &res,
		}); err != nil {
			return err
		}
		return cli.Exit("", 1)
	}

	return r.Result(tally.ExecutionResult{
		Success: true,
		Intent:  "undo",
		State:   tally.StateMainMenu,
		Summary: fmt.Sprintf("undid %s (seq %d)", res.Undone.Type, res.Undone.Seq),
		Undo:    &res,
	})
}
