package mutexbench

import (
	"sync"
	"sync/atomic"
)

// Locker is the mutual-exclusion primitive guarding the shared counter.
//
// Unlike sync.Locker, both operations report failure. A failed Lock or
// Unlock is fatal for the benchmark run; there is no retry path.
type Locker interface {
	Lock() error
	Unlock() error
}

// Mutex is the default Locker: a sync.Mutex that remembers whether it is
// held and whether a holder abandoned it by panicking.
//
// sync.Mutex cannot fail to lock, and unlocking an unlocked sync.Mutex is an
// unrecoverable runtime fatal error. Mutex turns both conditions that can
// actually go wrong into errors instead:
//
//   - Unlock without a matching Lock returns ErrNotHeld.
//   - Lock after Poison returns ErrPoisoned.
type Mutex struct {
	mu       sync.Mutex
	held     atomic.Bool
	poisoned atomic.Bool
}

// NewMutex returns an unlocked, healthy Mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

func (m *Mutex) Lock() error {
	m.mu.Lock()
	if m.poisoned.Load() {
		m.mu.Unlock()
		return ErrPoisoned
	}
	m.held.Store(true)
	return nil
}

func (m *Mutex) Unlock() error {
	if !m.held.CompareAndSwap(true, false) {
		return ErrNotHeld
	}
	m.mu.Unlock()
	return nil
}

// Poison marks the mutex as abandoned. Every later Lock fails with
// ErrPoisoned; a current holder may still Unlock.
func (m *Mutex) Poison() {
	m.poisoned.Store(true)
}

// Poisoned reports whether Poison has been called.
func (m *Mutex) Poisoned() bool {
	return m.poisoned.Load()
}

// poisoner is implemented by lockers that can record an abandoned critical
// section. The benchmark poisons the lock when a worker panics while holding it.
type poisoner interface {
	Poison()
}
