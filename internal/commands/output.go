package commands

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tally/internal/renderer"
)

func newRenderer(flags *Flags, c *cli.Command) *renderer.Renderer {
	return renderer.New(c.Root().Writer, flags.OutputMode())
}

// splitTitleArgs separates +tag tokens from title words in positional args.
func splitTitleArgs(args []string) (title string, tags []string) {
	var words []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "+") && len(arg) > 1 {
			tags = append(tags, strings.TrimPrefix(arg, "+"))
			continue
		}
		words = append(words, arg)
	}
	return strings.Join(words, " "), tags
}
