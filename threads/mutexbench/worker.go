package mutexbench

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
)

// Variant selects how long a worker holds the lock.
type Variant int

const (
	// FineGrained locks around each increment only. Sleeps of different
	// workers overlap; increments serialize.
	FineGrained Variant = iota

	// CoarseGrained locks once around the whole loop. The second worker
	// cannot increment until the first has finished every iteration, so
	// the run takes as long as running the workers one after another.
	CoarseGrained
)

func (v Variant) String() string {
	switch v {
	case FineGrained:
		return "fine"
	case CoarseGrained:
		return "coarse"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant accepts "fine" / "worker" and "coarse" / "slow" / "slow_worker".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fine", "worker":
		return FineGrained, nil
	case "coarse", "slow", "slow_worker":
		return CoarseGrained, nil
	default:
		return 0, fmt.Errorf("unknown variant %q (want fine or coarse)", s)
	}
}

// Set and Type make *Variant usable as a command-line flag value.
func (v *Variant) Set(s string) error {
	parsed, err := ParseVariant(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v *Variant) Type() string { return "variant" }

// worker is the per-goroutine state. holding is only touched by the
// goroutine that owns it.
type worker struct {
	id      int
	holding bool
}

// runWorker is the goroutine body for one worker. A panic is recovered and
// reported as a "join" TaskError, the way a failed join would be.
func (b *Benchmark) runWorker(ctx context.Context, id int) (err error) {
	w := &worker{id: id}
	log := b.log.With(zap.Int("worker", id))
	log.Debug("worker started")

	defer func() {
		if r := recover(); r != nil {
			err = &TaskError{Op: "join", Worker: id, Err: &PanicError{Value: r, Stack: debug.Stack()}}
			b.fail(err)
			if w.holding {
				b.abandon(log)
			}
		}
		if err != nil {
			b.fail(err)
			log.Error("worker failed", zap.Error(err))
			return
		}
		log.Debug("worker exited")
	}()

	switch b.cfg.Variant {
	case CoarseGrained:
		return b.coarse(ctx, w)
	default:
		return b.fine(ctx, w)
	}
}

// fine is the fine-grained worker: lock, increment, unlock, sleep.
func (b *Benchmark) fine(ctx context.Context, w *worker) error {
	for j := 0; j < b.cfg.Loops; j++ {
		if ctx.Err() != nil {
			return nil // another worker failed; the run already has its error
		}
		if err := b.cfg.Lock.Lock(); err != nil {
			return &SyncError{Op: "lock", Worker: w.id, Err: err}
		}
		w.holding = true
		b.increment(w.id)
		w.holding = false
		if err := b.cfg.Lock.Unlock(); err != nil {
			return &SyncError{Op: "unlock", Worker: w.id, Err: err}
		}
		b.cfg.Clock.Sleep(b.cfg.Interval)
	}
	return nil
}

// coarse is the coarse-grained worker: lock once, do every iteration
// (increments and sleeps) while holding it, unlock once.
func (b *Benchmark) coarse(ctx context.Context, w *worker) error {
	if err := b.cfg.Lock.Lock(); err != nil {
		return &SyncError{Op: "lock", Worker: w.id, Err: err}
	}
	w.holding = true
	for j := 0; j < b.cfg.Loops; j++ {
		if ctx.Err() != nil {
			break
		}
		b.increment(w.id)
		b.cfg.Clock.Sleep(b.cfg.Interval)
	}
	w.holding = false
	if err := b.cfg.Lock.Unlock(); err != nil {
		return &SyncError{Op: "unlock", Worker: w.id, Err: err}
	}
	return nil
}

// increment is the critical section. The caller holds the lock.
func (b *Benchmark) increment(id int) {
	before, after := b.counter.Increment()
	if b.cfg.OnIncrement != nil {
		b.cfg.OnIncrement(Increment{Worker: id, Before: before, After: after})
	}
}

// abandon poisons and releases a lock whose holder panicked, so waiting
// workers fail with ErrPoisoned instead of blocking forever.
func (b *Benchmark) abandon(log *zap.Logger) {
	if p, ok := b.cfg.Lock.(poisoner); ok {
		p.Poison()
	}
	if err := b.cfg.Lock.Unlock(); err != nil {
		log.Warn("release abandoned lock", zap.Error(err))
	}
}
