package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/core/task"
	"github.com/hay-kot/tally/internal/tally"
)

// LsCmd implements the tally ls command.
type LsCmd struct {
	flags *Flags
	app   *tally.App

	status string
	filter string
}

// NewLsCmd creates a new ls command.
func NewLsCmd(flags *Flags, app *tally.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application.
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List tasks",
		UsageText: "tally ls [--status <status>] [--filter <glob>]",
		Description: `Lists tasks ordered by number.

The --filter glob is matched against the title and each tag.

Examples:
  tally ls
  tally ls --status completed
  tally ls --filter "Buy*"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "filter by status (pending, completed)",
				Destination: &cmd.status,
			},
			&cli.StringFlag{
				Name:        "filter",
				Aliases:     []string{"f"},
				Usage:       "glob matched against title and tags",
				Destination: &cmd.filter,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	filter := tally.ListFilter{Pattern: cmd.filter}

	if cmd.status != "" {
		status := task.Status(cmd.status)
		if !status.IsValid() {
			return fmt.Errorf("invalid status %q: must be one of %s, %s", cmd.status, task.StatusPending, task.StatusCompleted)
		}
		filter.Status = status
	}

	items, err := cmd.app.Tasks.List(filter)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	return newRenderer(cmd.flags, c).Tasks(items)
}
