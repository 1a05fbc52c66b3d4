package fanin

import (
	"fmt"
	"math/bits"
	"testing"

	"github.com/unixpickle/fanin/inputs"
)

// RunExecutorTests runs a battery of reductions on an
// Executor and checks the sums and the round schedules.
func RunExecutorTests(t *testing.T, executor Executor) {
	for _, size := range []int{1, 2, 4, 8, 64, 512, 4096} {
		for _, randomized := range []bool{false, true} {
			testName := fmt.Sprintf("Size=%d,Random=%v", size, randomized)
			t.Run(testName, func(t *testing.T) {
				var buf []int64
				if randomized {
					buf = inputs.Seeded([]byte(testName), size, 1<<40)
				} else {
					buf = inputs.Ramp(size)
				}
				expected := inputs.Sum(buf)

				reducer := &Reducer{Executor: executor}
				res, err := reducer.Reduce(buf)
				if err != nil {
					t.Fatal(err)
				}
				if res.Sum != expected {
					t.Errorf("expected sum %d but got %d", expected, res.Sum)
				}
				if buf[0] != expected {
					t.Errorf("expected buf[0] to be %d but got %d", expected, buf[0])
				}
				verifyRounds(t, size, res.Rounds)
			})
		}
	}
}

func verifyRounds(t *testing.T, size int, rounds []Round) {
	expectedRounds := bits.Len(uint(size)) - 1
	if len(rounds) != expectedRounds {
		t.Errorf("expected %d rounds but got %d", expectedRounds, len(rounds))
		return
	}
	for i, r := range rounds {
		if r.Index != i {
			t.Errorf("round %d has index %d", i, r.Index)
		}
		if expected := (size / 2) >> uint(i); r.ActiveWorkers != expected {
			t.Errorf("round %d: expected %d workers but got %d", i, expected, r.ActiveWorkers)
		}
		if expected := 1 << uint(i); r.Stride != expected {
			t.Errorf("round %d: expected stride %d but got %d", i, expected, r.Stride)
		}
	}
}
