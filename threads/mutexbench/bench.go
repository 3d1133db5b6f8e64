// Package mutexbench measures what a mutex costs two (or N) goroutines that
// share a counter.
//
// Every worker increments the counter Loops times and sleeps Interval after
// each increment to stand in for real work. The fine-grained variant holds
// the lock only around the increment, so the sleeps overlap; the
// coarse-grained variant holds it across the whole loop, so the workers run
// one after the other. Either way the final count is Workers*Loops.
package mutexbench

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers  = 2
	DefaultInterval = time.Second
)

// Config holds benchmark construction parameters.
type Config struct {
	// Workers is the number of goroutines incrementing the counter.
	// Defaults to 2.
	Workers int

	// Loops is how many times each worker increments the counter.
	// It must be non-negative.
	Loops int

	// Interval is how long a worker sleeps after each increment.
	// Defaults to 1 s.
	Interval time.Duration

	// Variant selects the worker body. The zero value is FineGrained.
	Variant Variant

	// Clock provides Sleep for the workers and Now for the timing window.
	// If nil, the wall clock is used. Tests inject clock.NewMock().
	Clock clock.Clock

	// Lock guards the counter. If nil, a fresh *Mutex is used.
	Lock Locker

	// Output receives the human-readable report. If nil, it is discarded.
	Output io.Writer

	// Logger is used for structured diagnostics. If nil, nothing is logged.
	Logger *zap.Logger

	// OnIncrement, if set, is called inside the critical section after
	// every increment.
	OnIncrement func(Increment)
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Workers <= 0 {
		out.Workers = DefaultWorkers
	}
	if out.Interval <= 0 {
		out.Interval = DefaultInterval
	}
	if out.Clock == nil {
		out.Clock = clock.New()
	}
	if out.Lock == nil {
		out.Lock = NewMutex()
	}
	if out.Output == nil {
		out.Output = io.Discard
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return out
}

// Benchmark owns the shared counter and the lock guarding it.
//
// A Benchmark is single-use:
//
//	b := mutexbench.New(cfg)
//	res, err := b.Run()  // spawn, join, report
//	b.Run()              // ErrAlreadyRun
type Benchmark struct {
	cfg     Config
	counter Counter
	log     *zap.Logger

	started atomic.Bool

	// failOnce records the first fatal error and stops the other workers.
	failOnce sync.Once
	err      error
	cancel   context.CancelFunc
}

// New creates a Benchmark whose counter starts at zero.
func New(cfg Config) *Benchmark {
	cfg = cfg.withDefaults()
	return &Benchmark{
		cfg: cfg,
		log: cfg.Logger.With(
			zap.Stringer("variant", cfg.Variant),
			zap.Int("workers", cfg.Workers),
			zap.Int("loops", cfg.Loops),
		),
	}
}

// Run reports the initial value, starts the workers, waits for all of them
// and reports the elapsed time and the final value.
//
// The first lock, unlock, create or join failure is fatal: the remaining
// workers stop at their next iteration, are joined, and Run returns that
// failure without a Result.
func (b *Benchmark) Run() (Result, error) {
	if !b.started.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyRun
	}
	if b.cfg.Loops < 0 {
		return Result{}, fmt.Errorf("run %d loops: %w", b.cfg.Loops, ErrNegativeLoops)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.cancel = cancel

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)

	initial := b.counter.Value()
	writeInitial(b.cfg.Output, initial)

	start := b.cfg.Clock.Now()
	for id := 1; id <= b.cfg.Workers; id++ {
		if !g.TryGo(func() error { return b.runWorker(ctx, id) }) {
			b.fail(&TaskError{Op: "create", Worker: id, Err: ErrSpawnRefused})
			break
		}
	}
	_ = g.Wait() // every worker error is already recorded by fail
	end := b.cfg.Clock.Now()

	if b.err != nil {
		b.log.Error("benchmark aborted", zap.Error(b.err))
		return Result{}, b.err
	}

	res := Result{
		Variant: b.cfg.Variant,
		Workers: b.cfg.Workers,
		Loops:   b.cfg.Loops,
		Initial: initial,
		Final:   b.counter.Value(),
		Elapsed: end.Sub(start),
	}
	if res.Final != res.Expected() {
		err := fmt.Errorf("final value %d, want %d: %w", res.Final, res.Expected(), ErrLostUpdates)
		b.log.Error("benchmark finished with lost updates", zap.Error(err))
		return Result{}, err
	}

	writeSummary(b.cfg.Output, res)
	b.log.Info("benchmark finished",
		zap.Int64("final", res.Final),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// fail records err if it is the first failure of the run and cancels the
// remaining workers.
func (b *Benchmark) fail(err error) {
	b.failOnce.Do(func() {
		b.err = err
		b.cancel()
	})
}
