package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/named-data/ndnfwd/utils/comparison"
)

// CmdTree is a command with optional subcommands. A leaf runs Fun with the remaining arguments,
// where args[0] is the full command name.
type CmdTree struct {
	Name string
	Help string
	Sub  []*CmdTree
	Fun  func([]string)
}

func (c *CmdTree) Usage(args []string) {
	fmt.Fprintf(os.Stderr, "%s (%s)\n\n", c.Help, c.Name)
	fmt.Fprintf(os.Stderr, "Usage: %s [command]\n", args[0])
	for _, sub := range c.Sub {
		spaces := strings.Repeat(" ", comparison.Max(16-len(sub.Name), 1))
		fmt.Fprintf(os.Stderr, "  %s%s%s\n", sub.Name, spaces, sub.Help)
	}
	fmt.Fprintln(os.Stderr)
	os.Exit(2)
}

// Find returns the leaf command selected by args and the arguments to pass to it.
func (c *CmdTree) Find(args []string) (*CmdTree, []string) {
	if c.Fun != nil || len(args) <= 1 {
		return c, args
	}

	// recursively search for subcommand
	for _, sub := range c.Sub {
		if len(sub.Name) > 0 && args[1] == sub.Name {
			name := args[0] + " " + args[1]
			sargs := append([]string{name}, args[2:]...)
			return sub.Find(sargs)
		}
	}
	return c, args
}

func (c *CmdTree) Execute(args []string) {
	cmd, cargs := c.Find(args)
	if cmd.Fun == nil {
		// command not found
		cmd.Usage(cargs)
		return
	}
	cmd.Fun(cargs)
}
