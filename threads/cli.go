package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/marcodamonte/concurrency/threads/mutexbench"
)

const usageLine = "Usage: threads [flags] <value>"

type options struct {
	loops    int
	workers  int
	interval time.Duration
	variant  mutexbench.Variant
	compare  bool
	verbose  bool
}

// UsageError is a malformed command line. It is reported with the usage
// text and exit status 1.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("threads", pflag.ContinueOnError)
	fs.IntVarP(&opts.workers, "workers", "w", mutexbench.DefaultWorkers, "number of worker goroutines")
	fs.DurationVarP(&opts.interval, "interval", "i", mutexbench.DefaultInterval, "sleep after each increment")
	fs.Var(&opts.variant, "variant", "locking variant: fine (worker) or coarse (slow)")
	fs.BoolVar(&opts.compare, "compare", false, "run the fine and the coarse variant and compare their times")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log worker lifecycle to stderr")
	return fs
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, usageLine)
	fmt.Fprint(w, fs.FlagUsages())
}

// parseArgs returns pflag.ErrHelp for -h/--help and a *UsageError for
// anything else that is not exactly one non-negative integer plus valid flags.
func parseArgs(fs *pflag.FlagSet, opts *options, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return &UsageError{Msg: err.Error()}
	}

	if fs.NArg() != 1 {
		return &UsageError{Msg: fmt.Sprintf("expected exactly one <value> argument, got %d", fs.NArg())}
	}
	loops, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return &UsageError{Msg: fmt.Sprintf("<value> must be an integer, got %q", fs.Arg(0))}
	}
	if loops < 0 {
		return &UsageError{Msg: fmt.Sprintf("<value> must be non-negative, got %d", loops)}
	}
	if opts.workers <= 0 {
		return &UsageError{Msg: fmt.Sprintf("--workers must be positive, got %d", opts.workers)}
	}
	if opts.interval <= 0 {
		return &UsageError{Msg: fmt.Sprintf("--interval must be positive, got %s", opts.interval)}
	}
	opts.loops = loops
	return nil
}

// newLogger returns a no-op logger unless verbose is set; the plain report
// and error lines are the program's real output.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// run is main without os.Exit. It returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := parseArgs(fs, &opts, args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0 // pflag already printed the usage
		}
		fmt.Fprintln(stderr, err)
		printUsage(stderr, fs)
		return 1
	}

	logger := newLogger(stderr, opts.verbose)
	defer logger.Sync()

	bench := func(v mutexbench.Variant) (mutexbench.Result, error) {
		return mutexbench.New(mutexbench.Config{
			Workers:  opts.workers,
			Loops:    opts.loops,
			Interval: opts.interval,
			Variant:  v,
			Output:   stdout,
			Logger:   logger,
		}).Run()
	}

	if !opts.compare {
		if _, err := bench(opts.variant); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	section(stdout, "fine-grained locking")
	fine, err := bench(mutexbench.FineGrained)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	section(stdout, "coarse-grained locking")
	coarse, err := bench(mutexbench.CoarseGrained)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	section(stdout, "comparison")
	mutexbench.WriteComparison(stdout, fine, coarse)
	return 0
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n━━━ %s ━━━\n", title)
}
