package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/core/event"
	"github.com/hay-kot/tally/internal/tally"
)

// HistoryCmd implements the tally history command.
type HistoryCmd struct {
	flags *Flags
	app   *tally.App

	limit int
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags, app *tally.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "Show the event audit trail",
		UsageText: "tally history [--limit <n>]",
		Description: `Shows retained events in append order. When an event cap is
configured, the oldest events may have been evicted.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "show only the most recent n events",
				Destination: &cmd.limit,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	events := cmd.app.Tasks.Events()
	if cmd.limit > 0 && len(events) > cmd.limit {
		events = events[len(events)-cmd.limit:]
	}

	r := newRenderer(cmd.flags, c)
	if !cmd.app.Tasks.LogComplete() && !r.JSON() {
		if err := r.Result(tally.ExecutionResult{
			Success: true,
			State:   tally.StateMainMenu,
			Summary: fmt.Sprintf("history truncated; oldest retained event is #%d", firstSeq(events)),
		}); err != nil {
			return err
		}
	}

	return r.Events(events)
}

func firstSeq(events []event.Event) int64 {
	if len(events) == 0 {
		return 0
	}
	return events[0].Seq
}
