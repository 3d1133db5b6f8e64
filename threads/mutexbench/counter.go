package mutexbench

// Counter is the shared integer the workers increment. It carries no
// synchronization of its own: every increment must happen while the
// benchmark's Locker is held.
type Counter struct {
	value int64
}

// Increment adds one and returns the values seen before and after.
func (c *Counter) Increment() (before, after int64) {
	before = c.value
	c.value = before + 1 // read-modify-write: caller holds the lock
	return before, c.value
}

// Value returns the current count. Only call it while holding the lock or
// after every worker has been joined.
func (c *Counter) Value() int64 {
	return c.value
}

// Increment describes one update of the counter, as seen from inside the
// critical section.
type Increment struct {
	Worker int
	Before int64
	After  int64
}
