package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/meigma/jsystem/bcsv"
	"github.com/meigma/jsystem/internal/batch"
)

func (a *app) bcsvCommand() *command {
	return &command{
		name:    "bcsv",
		summary: "Convert BCSV tables to and from YAML or CBOR documents",
		subcommands: []*command{
			a.bcsvDumpCommand(),
			a.bcsvBuildCommand(),
		},
	}
}

func (a *app) bcsvOptions() []bcsv.Option {
	return []bcsv.Option{
		bcsv.WithNames(a.names),
		bcsv.WithEncoding(a.enc),
		bcsv.WithLogger(a.logger),
	}
}

func (a *app) bcsvDumpCommand() *command {
	var format, out string
	c := &command{
		name:    "dump",
		summary: "Decode a table into a document",
		usage:   "FILE",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("dump", pflag.ContinueOnError)
			fs.StringVar(&format, "format", "yaml", "document format: yaml or cbor")
			fs.StringVarP(&out, "output", "o", "", "write the document to a file instead of stdout")
			return fs
		},
	}
	c.run = func(args []string) error {
		if err := exactArgs(c, args, 1); err != nil {
			return err
		}
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		tbl, err := bcsv.Decode(data, a.bcsvOptions()...)
		if err != nil {
			return err
		}

		var doc []byte
		switch strings.ToLower(format) {
		case "yaml", "yml":
			doc, err = bcsv.MarshalYAML(tbl)
		case "cbor":
			doc, err = bcsv.MarshalCBOR(tbl)
		default:
			return fmt.Errorf("unknown format %q (want yaml or cbor)", format)
		}
		if err != nil {
			return err
		}
		if out != "" {
			return batch.WriteFile(out, doc, 0o644)
		}
		_, err = a.stdout.Write(doc)
		return err
	}
	return c
}

func (a *app) bcsvBuildCommand() *command {
	var format string
	c := &command{
		name:    "build",
		summary: "Encode a document into a table",
		usage:   "DOC OUT",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
			fs.StringVar(&format, "format", "", "document format: yaml or cbor (default: from DOC's extension)")
			return fs
		},
	}
	c.run = func(args []string) error {
		if err := exactArgs(c, args, 2); err != nil {
			return err
		}
		doc, err := os.ReadFile(args[0]) //nolint:gosec // user-provided input
		if err != nil {
			return err
		}
		if format == "" {
			format = strings.TrimPrefix(filepath.Ext(args[0]), ".")
		}

		var tbl *bcsv.Table
		switch strings.ToLower(format) {
		case "yaml", "yml":
			tbl, err = bcsv.UnmarshalYAML(doc)
		case "cbor":
			tbl, err = bcsv.UnmarshalCBOR(doc)
		default:
			return fmt.Errorf("cannot infer document format of %s; use --format", args[0])
		}
		if err != nil {
			return err
		}
		data, err := bcsv.Encode(tbl, a.bcsvOptions()...)
		if err != nil {
			return err
		}
		a.logger.Info("built table", "path", args[1], "fields", len(tbl.Fields), "rows", len(tbl.Records))
		return batch.WriteFile(args[1], data, 0o644)
	}
	return c
}
