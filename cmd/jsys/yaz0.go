package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/meigma/jsystem/internal/batch"
	"github.com/meigma/jsystem/yaz0"
)

// transcodeFlags are shared by yaz0 compress and decompress.
type transcodeFlags struct {
	outDir string
	suffix string
	force  bool
}

func (f *transcodeFlags) register(fs *pflag.FlagSet, suffix string) {
	fs.StringVarP(&f.outDir, "output-dir", "o", "", "write outputs into this directory (batch mode)")
	fs.StringVar(&f.suffix, "suffix", suffix, "suffix added to or removed from outputs in batch mode")
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite existing outputs")
}

func (a *app) yaz0Command() *command {
	return &command{
		name:    "yaz0",
		summary: "Compress and decompress Yaz0 containers",
		subcommands: []*command{
			a.yaz0TranscodeCommand("compress", "Wrap files in Yaz0 containers", ".szs",
				func(_ context.Context, _ batch.Job, data []byte) ([]byte, error) {
					return a.encoder().Compress(data), nil
				}),
			a.yaz0TranscodeCommand("decompress", "Unwrap Yaz0 containers", ".szs",
				func(_ context.Context, _ batch.Job, data []byte) ([]byte, error) {
					return yaz0.Decompress(data)
				}),
		},
	}
}

// yaz0TranscodeCommand builds a command that runs fn either on one IN OUT
// pair or, with --output-dir, on every input file concurrently.
func (a *app) yaz0TranscodeCommand(name, summary, suffix string, fn batch.Transform) *command {
	var flags transcodeFlags
	c := &command{
		name:    name,
		summary: summary,
		usage:   "IN OUT | -o DIR IN...",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
			flags.register(fs, suffix)
			return fs
		},
	}
	c.run = func(args []string) error {
		var jobs []batch.Job
		switch {
		case flags.outDir != "":
			if len(args) == 0 {
				return fmt.Errorf("%s: no inputs", c.fullName())
			}
			for _, in := range args {
				jobs = append(jobs, batch.Job{Src: in, Dst: filepath.Join(flags.outDir, outputName(in, name, flags.suffix))})
			}
		default:
			if err := exactArgs(c, args, 2); err != nil {
				return err
			}
			jobs = []batch.Job{{Src: args[0], Dst: args[1]}}
			// A single explicit output is always replaced.
			flags.force = true
		}

		results, err := batch.Run(a.ctx, jobs, fn,
			batch.WithConcurrency(a.cfg.Jobs),
			batch.WithOverwrite(flags.force),
			batch.WithLogger(a.logger),
		)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Skipped {
				a.logger.Warn("output exists, skipped", "path", r.Job.Dst)
				continue
			}
			a.logger.Info(name, "src", r.Job.Src, "dst", r.Job.Dst, "in", r.InSize, "out", r.OutSize)
		}
		return nil
	}
	return c
}

// outputName derives a batch output file name from an input path.
func outputName(in, mode, suffix string) string {
	base := filepath.Base(in)
	if mode == "compress" {
		return base + suffix
	}
	if trimmed, ok := strings.CutSuffix(base, suffix); ok && suffix != "" && trimmed != "" {
		return trimmed
	}
	return base + ".bin"
}

// readInput reads a file, unwrapping Yaz0 if present.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided input
	if err != nil {
		return nil, err
	}
	if yaz0.IsCompressed(data) {
		return yaz0.Decompress(data)
	}
	return data, nil
}
