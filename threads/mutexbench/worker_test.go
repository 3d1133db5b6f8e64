package mutexbench_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcodamonte/concurrency/threads/mutexbench"
)

func TestParseVariant(t *testing.T) {
	t.Parallel()

	cases := map[string]mutexbench.Variant{
		"fine":        mutexbench.FineGrained,
		"worker":      mutexbench.FineGrained,
		"Coarse":      mutexbench.CoarseGrained,
		" slow ":      mutexbench.CoarseGrained,
		"slow_worker": mutexbench.CoarseGrained,
	}
	for in, want := range cases {
		got, err := mutexbench.ParseVariant(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := mutexbench.ParseVariant("medium")
	assert.Error(t, err)
}

func TestVariantFlagValue(t *testing.T) {
	t.Parallel()

	var v mutexbench.Variant
	require.NoError(t, v.Set("slow"))
	assert.Equal(t, "coarse", v.String())
	assert.Equal(t, "variant", v.Type())
	assert.Error(t, v.Set("bogus"))
	assert.Equal(t, mutexbench.CoarseGrained, v, "failed Set must not change the value")

	assert.Equal(t, "Variant(7)", mutexbench.Variant(7).String())
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	cause := errors.New("EAGAIN")

	cases := []struct {
		err    error
		prefix string
	}{
		{&mutexbench.SyncError{Op: "lock", Worker: 1, Err: cause}, "error: lock the mutex"},
		{&mutexbench.SyncError{Op: "unlock", Worker: 2, Err: cause}, "error: unlock the mutex"},
		{&mutexbench.TaskError{Op: "create", Worker: 1, Err: cause}, "error create the thread"},
		{&mutexbench.TaskError{Op: "join", Worker: 2, Err: cause}, "error join the thread"},
	}
	for _, c := range cases {
		assert.True(t, strings.HasPrefix(c.err.Error(), c.prefix), c.err.Error())
		assert.ErrorIs(t, c.err, cause)
	}
}

func TestResultArithmetic(t *testing.T) {
	t.Parallel()

	r := mutexbench.Result{Workers: 2, Loops: 3, Elapsed: 3*time.Second + 1500*time.Microsecond}
	assert.Equal(t, int64(6), r.Expected())
	assert.Equal(t, int64(3), r.Seconds())
	assert.Equal(t, int64(3_001_500), r.Micros())
}

func TestWriteComparison(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	mutexbench.WriteComparison(&out,
		mutexbench.Result{Elapsed: 2 * time.Second},
		mutexbench.Result{Elapsed: 4 * time.Second},
	)
	assert.Contains(t, out.String(), "fine-grained:   2s")
	assert.Contains(t, out.String(), "coarse-grained: 4s")
	assert.Contains(t, out.String(), "2.00x")

	out.Reset()
	mutexbench.WriteComparison(&out, mutexbench.Result{}, mutexbench.Result{Elapsed: time.Second})
	assert.Contains(t, out.String(), "n/a")
}
