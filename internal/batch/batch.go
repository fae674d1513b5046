// Package batch runs whole-buffer transforms over many files concurrently.
//
// The codecs themselves are synchronous; batch is where the CLI fans out
// work such as compressing a directory of files. Each job reads its input,
// applies the transform and atomically writes the output. The first failure
// cancels the remaining jobs.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Job names one input file and where its output goes.
type Job struct {
	Src string
	Dst string
}

// Transform converts the contents of one file.
type Transform func(ctx context.Context, job Job, data []byte) ([]byte, error)

// Result reports one completed job.
type Result struct {
	Job     Job
	InSize  int
	OutSize int

	// Skipped is set when the output existed and overwrite was disabled.
	Skipped bool
}

// Option configures Run.
type Option func(*config)

type config struct {
	concurrency  int
	memoryBudget int64
	overwrite    bool
	perm         os.FileMode
	logger       *slog.Logger
}

// WithConcurrency sets the number of jobs run at once.
// Values below one use GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(c *config) {
		c.concurrency = n
	}
}

// WithMemoryBudget bounds the total size of inputs held in memory at once.
// A single input larger than the budget still runs, alone.
// Zero disables the budget.
func WithMemoryBudget(n int64) Option {
	return func(c *config) {
		c.memoryBudget = n
	}
}

// WithOverwrite allows replacing existing outputs.
// By default, jobs whose output exists are skipped.
func WithOverwrite(overwrite bool) Option {
	return func(c *config) {
		c.overwrite = overwrite
	}
}

// WithPerm sets the permission bits of written files. The default is 0644.
func WithPerm(perm os.FileMode) Option {
	return func(c *config) {
		c.perm = perm
	}
}

// WithLogger sets the logger for per-job diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Run applies fn to every job. Results are returned in job order.
//
// On failure Run returns the first error; outputs of jobs that finished
// before it are left in place, and no partial output is ever written.
func Run(ctx context.Context, jobs []Job, fn Transform, opts ...Option) ([]Result, error) {
	cfg := config{perm: 0o644}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = runtime.GOMAXPROCS(0)
	}

	var budget *semaphore.Weighted
	if cfg.memoryBudget > 0 {
		budget = semaphore.NewWeighted(cfg.memoryBudget)
	}

	results := make([]Result, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.concurrency)

	for i, job := range jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := runJob(ctx, &cfg, budget, job, fn)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Src, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runJob(ctx context.Context, cfg *config, budget *semaphore.Weighted, job Job, fn Transform) (Result, error) {
	res := Result{Job: job}
	if !cfg.overwrite && exists(job.Dst) {
		cfg.log().Debug("skipping existing output", "dst", job.Dst)
		res.Skipped = true
		return res, nil
	}

	if budget != nil {
		info, err := os.Stat(job.Src)
		if err != nil {
			return res, err
		}
		weight := min(info.Size(), cfg.memoryBudget)
		if err := budget.Acquire(ctx, weight); err != nil {
			return res, err
		}
		defer budget.Release(weight)
	}

	data, err := os.ReadFile(job.Src)
	if err != nil {
		return res, err
	}
	out, err := fn(ctx, job, data)
	if err != nil {
		return res, err
	}
	if err := WriteFile(job.Dst, out, cfg.perm); err != nil {
		return res, err
	}

	res.InSize = len(data)
	res.OutSize = len(out)
	cfg.log().Debug("batch job done", "src", job.Src, "dst", job.Dst, "in", res.InSize, "out", res.OutSize)
	return res, nil
}
