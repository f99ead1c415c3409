package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/core/task"
	"github.com/hay-kot/tally/internal/tally"
)

// AddCmd implements the tally add command.
type AddCmd struct {
	flags *Flags
	app   *tally.App

	description string
	tags        []string
}

// NewAddCmd creates a new add command.
func NewAddCmd(flags *Flags, app *tally.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application.
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Aliases:   []string{"new"},
		Usage:     "Create a task",
		UsageText: "tally add <title> [+tag ...] [--description <desc>]",
		Description: `Creates a pending task. Tags can be given inline with a + prefix
or via the --tag flag.

Examples:
  tally add Buy milk
  tally add "Write report" +work --description "due friday"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "optional description",
				Destination: &cmd.description,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Aliases:     []string{"t"},
				Usage:       "tag to attach (repeatable)",
				Destination: &cmd.tags,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	title, inlineTags := splitTitleArgs(c.Args().Slice())
	tags := append(inlineTags, cmd.tags...)

	created, err := cmd.app.Tasks.Create(title, cmd.description, tags)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return newRenderer(cmd.flags, c).Result(tally.ExecutionResult{
		Success: true,
		Intent:  "add",
		State:   tally.StateMainMenu,
		Summary: fmt.Sprintf("created task %d", created.Num),
		Tasks:   []task.Task{created},
	})
}
