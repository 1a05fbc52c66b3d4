package fanin

import (
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpickle/fanin/inputs"
)

func TestSequentialExecutor(t *testing.T) {
	RunExecutorTests(t, SequentialExecutor{})
}

func TestPermutedExecutor(t *testing.T) {
	RunExecutorTests(t, &PermutedExecutor{Rand: rand.New(rand.NewSource(1337))})
	RunExecutorTests(t, &PermutedExecutor{})
}

func TestParallelExecutor(t *testing.T) {
	for _, limit := range []int{0, 1, 3, 64} {
		t.Run(fmt.Sprintf("MaxGoroutines=%d", limit), func(t *testing.T) {
			RunExecutorTests(t, ParallelExecutor{MaxGoroutines: limit})
		})
	}
}

func TestVirtualExecutor(t *testing.T) {
	RunExecutorTests(t, &VirtualExecutor{})
}

func TestSequentialExecutorOrder(t *testing.T) {
	var order []int
	err := SequentialExecutor{}.Execute(Round{ActiveWorkers: 5}, func(w int) error {
		order = append(order, w)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPermutedExecutorCoversWorkers(t *testing.T) {
	exec := &PermutedExecutor{Rand: rand.New(rand.NewSource(0))}
	orders := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen := make([]bool, 4)
		err := exec.Execute(Round{ActiveWorkers: 4}, func(w int) error {
			seen[w] = true
			return nil
		})
		require.NoError(t, err)
		for w, ok := range seen {
			require.True(t, ok, "worker %d never ran", w)
		}
		var order []int
		exec.Execute(Round{ActiveWorkers: 4}, func(w int) error {
			order = append(order, w)
			return nil
		})
		orders[fmt.Sprint(order)] = true
	}
	assert.Greater(t, len(orders), 1, "permutations should vary between rounds")
}

func TestParallelExecutorLimit(t *testing.T) {
	var running, maxRunning int64
	exec := ParallelExecutor{MaxGoroutines: 2}
	err := exec.Execute(Round{ActiveWorkers: 16}, func(w int) error {
		n := atomic.AddInt64(&running, 1)
		for {
			old := atomic.LoadInt64(&maxRunning)
			if n <= old || atomic.CompareAndSwapInt64(&maxRunning, old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&running, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, maxRunning, int64(2))
	assert.Equal(t, int64(0), running)
}

func TestExecutorErrors(t *testing.T) {
	failure := errors.New("worker failed")
	executors := map[string]Executor{
		"Sequential": SequentialExecutor{},
		"Permuted":   &PermutedExecutor{},
		"Parallel":   ParallelExecutor{},
		"Virtual":    &VirtualExecutor{},
	}
	for name, exec := range executors {
		t.Run(name, func(t *testing.T) {
			err := exec.Execute(Round{ActiveWorkers: 8}, func(w int) error {
				if w == 5 {
					return failure
				}
				return nil
			})
			assert.Equal(t, failure, err)
		})
	}
}

// TestParallelExecutorFirstError makes sure the lowest
// failing worker's error wins.
func TestParallelExecutorFirstError(t *testing.T) {
	err := ParallelExecutor{}.Execute(Round{ActiveWorkers: 8}, func(w int) error {
		if w%3 == 2 {
			return fmt.Errorf("worker %d", w)
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, "worker 2", err.Error())
}

func TestVirtualExecutorTime(t *testing.T) {
	exec := &VirtualExecutor{AddTime: 1, BarrierTime: 0.5}
	reducer := &Reducer{Executor: exec}

	res, err := reducer.Reduce(inputs.Ramp(512))
	require.NoError(t, err)
	assert.Equal(t, int64(130816), res.Sum)
	assert.Equal(t, 13.5, res.VirtualTime)

	// The clock keeps running across reductions.
	res, err = reducer.Reduce(inputs.Ramp(8))
	require.NoError(t, err)
	assert.Equal(t, 4.5, res.VirtualTime)
	assert.Equal(t, 18.0, exec.Time())

	exec.Reset()
	assert.Equal(t, 0.0, exec.Time())
}

func TestVirtualExecutorDefaults(t *testing.T) {
	exec := &VirtualExecutor{}
	res, err := (&Reducer{Executor: exec}).Reduce(inputs.Ramp(1024))
	require.NoError(t, err)
	assert.InDelta(t, 10*(DefaultAddTime+DefaultBarrierTime), res.VirtualTime, 1e-15)
}

func TestNonClockVirtualTime(t *testing.T) {
	res, err := (&Reducer{Executor: ParallelExecutor{}}).Reduce(inputs.Ramp(64))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.VirtualTime)
}
