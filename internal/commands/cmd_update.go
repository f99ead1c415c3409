package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/core/task"
	"github.com/hay-kot/tally/internal/tally"
)

// UpdateCmd implements the tally update command.
type UpdateCmd struct {
	flags *Flags
	app   *tally.App

	title       string
	description string
	tags        []string
}

// NewUpdateCmd creates a new update command.
func NewUpdateCmd(flags *Flags, app *tally.App) *UpdateCmd {
	return &UpdateCmd{flags: flags, app: app}
}

// Register adds the update command to the application.
func (cmd *UpdateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "update",
		Aliases:   []string{"edit"},
		Usage:     "Update a task's fields",
		UsageText: "tally update <id> [--title <title>] [--description <desc>] [--tag <tag> ...]",
		Description: `Updates the given fields on a task; omitted fields are unchanged.
Passing --tag replaces the whole tag set.

Examples:
  tally update 2 --title "Buy oat milk"
  tally update 2 --description "" --tag errands`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "new title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "new description (empty clears)",
				Destination: &cmd.description,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Usage:       "replacement tag (repeatable; replaces all tags)",
				Destination: &cmd.tags,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *UpdateCmd) run(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tally update <id>")
	}

	input := tally.UpdateInput{}
	if c.IsSet("title") {
		input.Title = &cmd.title
	}
	if c.IsSet("description") {
		input.Description = &cmd.description
	}
	if c.IsSet("tag") {
		input.Tags = cmd.tags
		input.HasTags = true
	}

	if input.Title == nil && input.Description == nil && !input.HasTags {
		return fmt.Errorf("nothing to update: provide at least one of --title, --description, --tag")
	}

	updated, err := cmd.app.Tasks.Update(c.Args().First(), input)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	return newRenderer(cmd.flags, c).Result(tally.ExecutionResult{
		Success: true,
		Intent:  "update",
		State:   tally.StateMainMenu,
		Summary: fmt.Sprintf("updated task %d", updated.Num),
		Tasks:   []task.Task{updated},
	})
}
