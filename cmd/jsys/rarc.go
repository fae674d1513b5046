package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/meigma/jsystem"
	"github.com/meigma/jsystem/internal/batch"
	"github.com/meigma/jsystem/rarc"
)

func (a *app) rarcCommand() *command {
	return &command{
		name:    "rarc",
		summary: "Pack, unpack and list RARC archives",
		subcommands: []*command{
			a.rarcPackCommand(),
			a.rarcUnpackCommand(),
			a.rarcListCommand(),
		},
	}
}

func (a *app) rarcPackCommand() *command {
	var (
		compress bool
		rootName string
	)
	c := &command{
		name:    "pack",
		summary: "Pack a directory into an archive",
		usage:   "DIR ARCHIVE",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("pack", pflag.ContinueOnError)
			fs.BoolVar(&compress, "yaz0", false, "wrap the archive in Yaz0")
			fs.StringVar(&rootName, "root-name", "", "root directory name (default: DIR's base name)")
			return fs
		},
	}
	c.run = func(args []string) error {
		if err := exactArgs(c, args, 2); err != nil {
			return err
		}
		root, err := jsystem.ReadTree(args[0])
		if err != nil {
			return err
		}
		if rootName != "" {
			root.Name = rootName
		}

		opts := []rarc.Option{rarc.WithLogger(a.logger), rarc.WithEncoding(a.enc)}
		if compress {
			opts = append(opts, rarc.WithYaz0Encoder(a.encoder()))
		}
		data, err := rarc.Encode(root, opts...)
		if err != nil {
			return err
		}
		dirs, files := root.Count()
		a.logger.Info("packed archive", "path", args[1], "dirs", dirs, "files", files, "size", len(data))
		return batch.WriteFile(args[1], data, 0o644)
	}
	return c
}

func (a *app) rarcUnpackCommand() *command {
	var force bool
	c := &command{
		name:    "unpack",
		summary: "Extract an archive into a directory",
		usage:   "ARCHIVE DIR",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("unpack", pflag.ContinueOnError)
			fs.BoolVarP(&force, "force", "f", false, "overwrite existing files")
			return fs
		},
	}
	c.run = func(args []string) error {
		if err := exactArgs(c, args, 2); err != nil {
			return err
		}
		root, err := a.readArchive(args[0])
		if err != nil {
			return err
		}
		return jsystem.WriteTree(root, args[1], jsystem.WriteWithOverwrite(force))
	}
	return c
}

func (a *app) rarcListCommand() *command {
	var long bool
	c := &command{
		name:    "ls",
		summary: "List the tree of an archive",
		usage:   "ARCHIVE",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("ls", pflag.ContinueOnError)
			fs.BoolVarP(&long, "long", "l", false, "show file sizes")
			return fs
		},
	}
	c.run = func(args []string) error {
		if err := exactArgs(c, args, 1); err != nil {
			return err
		}
		root, err := a.readArchive(args[0])
		if err != nil {
			return err
		}
		return printTree(a.stdout, root, long)
	}
	return c
}

func (a *app) readArchive(path string) (*rarc.Dir, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return rarc.Decode(data, rarc.WithLogger(a.logger), rarc.WithEncoding(a.enc))
}

// treePrinter renders an archive as an indented tree.
type treePrinter struct {
	w    io.Writer
	long bool
	err  error

	dir  *color.Color
	size *color.Color
}

func printTree(w io.Writer, root *rarc.Dir, long bool) error {
	p := &treePrinter{
		w:    w,
		long: long,
		dir:  color.New(color.FgBlue, color.Bold),
		size: color.New(color.FgHiBlack),
	}
	if err := rarc.Visit(root, p); err != nil {
		return err
	}
	dirs, files := root.Count()
	p.printf("\n%d directories, %d files\n", dirs, files)
	return p.err
}

func (p *treePrinter) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *treePrinter) VisitDir(d *rarc.Dir, depth int) error {
	name := d.Name
	if depth == 0 && name == "" {
		name = "."
	}
	p.printf("%s%s/\n", strings.Repeat("  ", depth), p.dir.Sprint(name))
	return p.err
}

func (p *treePrinter) VisitFile(f *rarc.File, depth int) error {
	p.printf("%s%s", strings.Repeat("  ", depth), f.Name)
	if p.long {
		p.printf("  %s", p.size.Sprintf("%d", len(f.Data)))
	}
	p.printf("\n")
	return p.err
}
