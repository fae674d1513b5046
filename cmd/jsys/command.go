package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// command is a CLI command or subcommand.
type command struct {
	// name is the command name as typed by the user.
	name string

	// summary is a one-line description shown in the parent's help listing.
	summary string

	// usage is the argument synopsis, e.g. "IN OUT".
	usage string

	// flags returns the command's flag set. If nil, the command takes no flags.
	flags func() *pflag.FlagSet

	// subcommands are dispatched by the first positional argument.
	subcommands []*command

	// run executes the command with the positional arguments.
	run func(args []string) error

	parent *command
}

// execute parses args and dispatches to a subcommand or run.
func (c *command) execute(out io.Writer, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.printHelp(out)
		return nil
	}

	if len(c.subcommands) > 0 {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			c.printHelp(out)
			return fmt.Errorf("%s: subcommand required", c.fullName())
		}
		for _, sub := range c.subcommands {
			if sub.name == args[0] {
				sub.parent = c
				return sub.execute(out, args[1:])
			}
		}
		return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", args[0], c.fullName())
	}

	if c.flags != nil {
		fs := c.flags()
		fs.SetOutput(io.Discard)
		if err := fs.Parse(args); err != nil {
			if err == pflag.ErrHelp { //nolint:errorlint // sentinel returned unwrapped
				c.printHelp(out)
				return nil
			}
			return fmt.Errorf("%w\n\nRun '%s --help' for usage.", err, c.fullName())
		}
		args = fs.Args()
	}
	return c.run(args)
}

// printHelp writes help output to w.
func (c *command) printHelp(w io.Writer) {
	if c.summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.summary)
	}
	switch {
	case len(c.subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", c.fullName())
	case c.usage != "":
		fmt.Fprintf(w, "Usage:\n  %s [flags] %s\n", c.fullName(), c.usage)
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", c.fullName())
	}

	if len(c.subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.name, sub.summary)
		}
		tw.Flush()
	}

	if c.flags != nil {
		var help strings.Builder
		fs := c.flags()
		fs.SetOutput(&help)
		fs.PrintDefaults()
		if help.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", help.String())
		}
	}
}

// fullName returns the command path, e.g. "jsys rarc pack".
func (c *command) fullName() string {
	if c.parent == nil {
		return c.name
	}
	return c.parent.fullName() + " " + c.name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// exactArgs returns an error unless args has n elements.
func exactArgs(c *command, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d arguments (%s), got %d", c.fullName(), n, c.usage, len(args))
	}
	return nil
}
