package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/pkg/iojson"
)

// ConfigValidateCmd implements the tally config validate command.
type ConfigValidateCmd struct {
	flags *Flags

	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config command group to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tally config validate [options]",
				Description: "Validates the configuration file, checking the event log cap, output mode, and grammar synonyms.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type configValidationOutput struct {
	Valid  bool                    `json:"valid"`
	Errors []configValidationError `json:"errors,omitempty"`
}

type configValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	err := cmd.flags.Config.Validate()

	out := configValidationOutput{Valid: err == nil}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			out.Errors = append(out.Errors, configValidationError{
				Field:   fe.Field,
				Message: fe.Err.Error(),
			})
		}
	} else if err != nil {
		out.Errors = append(out.Errors, configValidationError{Message: err.Error()})
	}

	if cmd.format == "json" {
		if werr := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); werr != nil {
			return werr
		}
		if !out.Valid {
			return cli.Exit("", 1)
		}
		return nil
	}

	w := c.Root().Writer
	for _, verr := range out.Errors {
		if verr.Field != "" {
			fmt.Fprintf(w, "error: %s: %s\n", verr.Field, verr.Message)
			continue
		}
		fmt.Fprintf(w, "error: %s\n", verr.Message)
	}

	if out.Valid {
		fmt.Fprintln(w, "configuration is valid")
		return nil
	}

	fmt.Fprintf(w, "%d error(s) found\n", len(out.Errors))
	return cli.Exit("", 1)
}
