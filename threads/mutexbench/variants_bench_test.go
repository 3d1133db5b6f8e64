package mutexbench_test

import (
	"testing"

	"github.com/marcodamonte/concurrency/threads/mutexbench"
)

// Run:
//
//	go test -bench=. -benchmem ./threads/mutexbench
//
// Sleeps are disabled, so this measures pure locking overhead: the
// fine-grained variant pays one Lock/Unlock per increment and contends on
// every iteration, the coarse-grained one pays once per worker.

func BenchmarkVariants(b *testing.B) {
	for _, v := range []mutexbench.Variant{mutexbench.FineGrained, mutexbench.CoarseGrained} {
		b.Run(v.String(), func(b *testing.B) {
			b.ReportAllocs()
			for range b.N {
				bench := mutexbench.New(mutexbench.Config{
					Loops:   1000,
					Variant: v,
					Clock:   instant(),
				})
				if _, err := bench.Run(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
