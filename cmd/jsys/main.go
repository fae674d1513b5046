// Command jsys converts and publishes Yaz0, RARC and BCSV game assets.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding"

	"github.com/meigma/jsystem/cache"
	"github.com/meigma/jsystem/cache/disk"
	"github.com/meigma/jsystem/hashname"
	"github.com/meigma/jsystem/internal/config"
	"github.com/meigma/jsystem/registry"
	"github.com/meigma/jsystem/yaz0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newApp(ctx, os.Stdout, os.Stderr).run(os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds state shared by all commands.
type app struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer

	// global flags
	configPath string
	namesFiles []string
	cacheDir   string
	encName    string
	jobs       int
	plainHTTP  bool
	noColor    bool
	verbose    int

	// regOpts are appended to the registry options derived from the config.
	regOpts []registry.Option

	cfg    *config.Config
	logger *slog.Logger
	enc    encoding.Encoding
	names  *hashname.Table
	cache  cache.Cache
}

func newApp(ctx context.Context, stdout, stderr io.Writer) *app {
	return &app{ctx: ctx, stdout: stdout, stderr: stderr}
}

// run parses the global flags and dispatches args to a command.
func (a *app) run(args []string) error {
	stdout, stderr := a.stdout, a.stderr

	fs := pflag.NewFlagSet("jsys", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvVar+")")
	fs.StringArrayVar(&a.namesFiles, "names", nil, "word list for resolving field hashes (repeatable)")
	fs.StringVar(&a.cacheDir, "cache-dir", "", "Yaz0 compression cache directory")
	fs.StringVar(&a.encName, "encoding", "", "text encoding of names and strings (default shift_jis)")
	fs.IntVarP(&a.jobs, "jobs", "j", 0, "concurrent jobs for batch work (default GOMAXPROCS)")
	fs.BoolVar(&a.plainHTTP, "plain-http", false, "use plain HTTP for registries")
	fs.BoolVar(&a.noColor, "no-color", false, "disable coloured output")
	fs.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity (repeatable)")

	root := a.commands()
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp { //nolint:errorlint // sentinel returned unwrapped
			root.printHelp(stdout)
			printGlobalFlags(stdout, fs)
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		root.printHelp(stderr)
		printGlobalFlags(stderr, fs)
		return fmt.Errorf("command required")
	}
	if err := a.setup(fs); err != nil {
		return err
	}
	return root.execute(stdout, fs.Args())
}

func printGlobalFlags(w io.Writer, fs *pflag.FlagSet) {
	fs.SetOutput(w)
	fmt.Fprintf(w, "\nGlobal Flags:\n")
	fs.PrintDefaults()
}

// setup loads the config file and merges the global flags over it.
func (a *app) setup(fs *pflag.FlagSet) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if fs.Changed("names") {
		a.cfg.Names = a.namesFiles
	}
	if fs.Changed("cache-dir") {
		a.cfg.CacheDir = a.cacheDir
	}
	if fs.Changed("encoding") {
		a.cfg.Encoding = a.encName
	}
	if fs.Changed("jobs") {
		a.cfg.Jobs = a.jobs
	}
	if fs.Changed("plain-http") {
		a.cfg.Registry.PlainHTTP = a.plainHTTP
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level := slog.LevelWarn
	switch {
	case a.verbose >= 2:
		level = slog.LevelDebug
	case a.verbose == 1:
		level = slog.LevelInfo
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	if a.noColor || !isTerminal(a.stdout) {
		color.NoColor = true
	}

	if a.enc, err = a.cfg.TextEncoding(); err != nil {
		return err
	}
	if a.names, err = loadNames(a.cfg.Names); err != nil {
		return err
	}
	if a.cfg.CacheDir != "" {
		dc, err := disk.New(a.cfg.CacheDir)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		a.cache = dc
	}

	a.logger.Debug("configured",
		"names", a.names.Len(),
		"cache_dir", a.cfg.CacheDir,
		"encoding", a.cfg.Encoding,
		"jobs", a.cfg.Jobs,
	)
	return nil
}

// encoder returns a Yaz0 encoder sharing the configured cache.
func (a *app) encoder() *yaz0.Encoder {
	return yaz0.NewEncoder(yaz0.WithCache(a.cache), yaz0.WithLogger(a.logger))
}

// loadNames loads every word list into one table.
func loadNames(paths []string) (*hashname.Table, error) {
	t := hashname.NewTable()
	if len(paths) == 0 {
		return t, nil
	}
	readers := make([]io.Reader, 0, 2*len(paths))
	for _, p := range paths {
		f, err := os.Open(p) //nolint:gosec // user-provided word list
		if err != nil {
			return nil, fmt.Errorf("names: %w", err)
		}
		defer f.Close()
		readers = append(readers, f, newline{})
	}
	if err := t.Load(io.MultiReader(readers...)); err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}
	return t, nil
}

// newline yields a single line break so concatenated word lists never
// join their last and first lines.
type newline struct{}

func (newline) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = '\n'
	return 1, io.EOF
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func (a *app) commands() *command {
	return &command{
		name:    "jsys",
		summary: "Convert and publish Yaz0, RARC and BCSV game assets.",
		subcommands: []*command{
			a.yaz0Command(),
			a.rarcCommand(),
			a.bcsvCommand(),
			a.hashCommand(),
			a.detectCommand(),
			a.pushCommand(),
			a.pullCommand(),
			a.inspectCommand(),
		},
	}
}
