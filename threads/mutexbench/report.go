package mutexbench

import (
	"fmt"
	"io"
	"time"
)

// Result is what a completed run observed.
type Result struct {
	Variant Variant
	Workers int
	Loops   int
	Initial int64
	Final   int64
	Elapsed time.Duration
}

// Expected is the only correct final value: Workers * Loops.
func (r Result) Expected() int64 {
	return int64(r.Workers) * int64(r.Loops)
}

// Seconds is the elapsed time truncated to whole seconds.
func (r Result) Seconds() int64 {
	return int64(r.Elapsed / time.Second)
}

// Micros is the whole elapsed time in microseconds (not the remainder
// after Seconds).
func (r Result) Micros() int64 {
	return r.Elapsed.Microseconds()
}

func writeInitial(w io.Writer, v int64) {
	fmt.Fprintf(w, "Initial value: %d\n", v)
}

func writeSummary(w io.Writer, r Result) {
	fmt.Fprintf(w, "Time elapsed is %d seconds and %d micros\n", r.Seconds(), r.Micros())
	fmt.Fprintf(w, "Final value: %d\n", r.Final)
}

// WriteComparison prints how much slower the coarse-grained run was than
// the fine-grained one.
func WriteComparison(w io.Writer, fine, coarse Result) {
	fmt.Fprintf(w, "fine-grained:   %s\n", fine.Elapsed.Round(time.Microsecond))
	fmt.Fprintf(w, "coarse-grained: %s\n", coarse.Elapsed.Round(time.Microsecond))
	if fine.Elapsed <= 0 {
		fmt.Fprintln(w, "ratio: n/a (fine-grained run took no measurable time)")
		return
	}
	fmt.Fprintf(w, "ratio: coarse-grained locking took %.2fx as long\n",
		float64(coarse.Elapsed)/float64(fine.Elapsed))
}
