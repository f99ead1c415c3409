package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/renderer"
	"github.com/hay-kot/tally/internal/tally"
)

// ReplCmd is the interactive session loop. It is the default action when no
// subcommand is given rather than a registered command.
type ReplCmd struct {
	flags *Flags
	app   *tally.App

	// stdin overrides os.Stdin. Test use only.
	stdin io.Reader
}

// NewReplCmd creates a new REPL command.
func NewReplCmd(flags *Flags, app *tally.App) *ReplCmd {
	return &ReplCmd{flags: flags, app: app}
}

// Run drives the read-parse-dispatch-render loop until quit or EOF.
func (cmd *ReplCmd) Run(ctx context.Context, c *cli.Command) error {
	r := renderer.New(c.Root().Writer, cmd.flags.OutputMode())

	if err := r.Menu(cmd.app.Grammar); err != nil {
		return err
	}

	stdin := cmd.stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	sess := tally.NewSession()
	in := bufio.NewScanner(stdin)
	prompt := "tally"

	for {
		if !r.JSON() {
			fmt.Fprintf(c.Root().Writer, "%s> ", prompt)
		}

		if !in.Scan() {
			break
		}

		res := cmd.app.Executor.HandleLine(in.Text(), sess)
		if err := r.Result(res); err != nil {
			return err
		}

		log.Debug().
			Str("intent", res.Intent).
			Bool("success", res.Success).
			Str("state", string(res.State)).
			Msg("repl dispatch")

		if res.Quit {
			return nil
		}

		prompt = "tally"
		if res.Prompt != "" {
			prompt = res.Prompt
		}
	}

	return in.Err()
}
