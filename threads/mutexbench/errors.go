package mutexbench

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the benchmark and its Mutex.
var (
	ErrNegativeLoops = errors.New("loops must be non-negative")
	ErrNotHeld       = errors.New("mutex is not locked")
	ErrPoisoned      = errors.New("mutex poisoned: a holder panicked inside the critical section")
	ErrSpawnRefused  = errors.New("task group refused a new worker")
	ErrAlreadyRun    = errors.New("benchmark has already been run")
	ErrLostUpdates   = errors.New("counter lost updates")
)

// SyncError reports a failed Lock or Unlock. It is always fatal for the run.
type SyncError struct {
	Op     string // "lock" or "unlock"
	Worker int
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("error: %s the mutex (worker %d): %v", e.Op, e.Worker, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// TaskError reports that a worker could not be started ("create") or did not
// terminate normally ("join").
type TaskError struct {
	Op     string // "create" or "join"
	Worker int
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("error %s the thread (worker %d): %v", e.Op, e.Worker, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// PanicError is the cause carried by a "join" TaskError when a worker panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker panicked: %v", e.Value)
}
