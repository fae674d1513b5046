package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/meigma/jsystem"
	"github.com/meigma/jsystem/hashname"
	"github.com/meigma/jsystem/yaz0"
)

func (a *app) hashCommand() *command {
	var lookup bool
	c := &command{
		name:    "hash",
		summary: "Print field name hashes",
		usage:   "NAME...",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("hash", pflag.ContinueOnError)
			fs.BoolVar(&lookup, "lookup", false, "treat arguments as hex hashes and resolve them with --names")
			return fs
		},
	}
	c.run = func(args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%s: no names", c.fullName())
		}
		tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
		for _, arg := range args {
			if lookup {
				var h uint32
				if _, err := fmt.Sscanf(arg, "%x", &h); err != nil {
					return fmt.Errorf("invalid hash %q", arg)
				}
				fmt.Fprintf(tw, "%08X\t%s\n", h, a.names.Resolve(h))
				continue
			}
			fmt.Fprintf(tw, "%s\t%08X\n", arg, hashname.HashOf(arg))
		}
		return tw.Flush()
	}
	return c
}

func (a *app) detectCommand() *command {
	c := &command{
		name:    "detect",
		summary: "Identify the container format of files",
		usage:   "FILE...",
	}
	c.run = func(args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%s: no files", c.fullName())
		}
		name := color.New(color.FgCyan)
		tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
		for _, path := range args {
			data, err := os.ReadFile(path) //nolint:gosec // user-provided input
			if err != nil {
				return err
			}
			format := jsystem.Detect(data)
			if format != jsystem.FormatYaz0 {
				fmt.Fprintf(tw, "%s\t%s\n", path, name.Sprint(format))
				continue
			}
			inner, err := yaz0.Decompress(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(tw, "%s\t%s+%s\n", path, name.Sprint(format), name.Sprint(jsystem.Detect(inner)))
		}
		return tw.Flush()
	}
	return c
}
