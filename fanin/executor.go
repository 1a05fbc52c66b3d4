package fanin

import (
	"math/rand"
	"runtime"
	"sync"
)

// An Executor runs the workers of a single Round.
//
// Execute must call work exactly once for every worker in
// [0, round.ActiveWorkers), and it must not return until
// every call has finished, so that the next round sees
// every write from this one.
// The calls may happen in any order or concurrently.
//
// If any call fails, Execute returns one of the errors.
type Executor interface {
	Execute(round Round, work func(worker int) error) error
}

// A Clock is an Executor that measures the simulated time
// spent executing rounds.
type Clock interface {
	Time() float64
}

// A SequentialExecutor runs the workers one at a time in
// ascending order, stopping at the first error.
type SequentialExecutor struct{}

// Execute runs the workers in order.
func (s SequentialExecutor) Execute(round Round, work func(worker int) error) error {
	for w := 0; w < round.ActiveWorkers; w++ {
		if err := work(w); err != nil {
			return err
		}
	}
	return nil
}

// A PermutedExecutor runs the workers one at a time in a
// random order, which differs from round to round.
//
// It is not safe to use a PermutedExecutor from multiple
// Goroutines at once.
type PermutedExecutor struct {
	// Rand is the source of permutations.
	// If nil, the global source is used.
	Rand *rand.Rand
}

// Execute runs the workers in a random order.
func (p *PermutedExecutor) Execute(round Round, work func(worker int) error) error {
	var order []int
	if p.Rand != nil {
		order = p.Rand.Perm(round.ActiveWorkers)
	} else {
		order = rand.Perm(round.ActiveWorkers)
	}
	for _, w := range order {
		if err := work(w); err != nil {
			return err
		}
	}
	return nil
}

// A ParallelExecutor runs every worker in its own
// Goroutine and waits for all of them to finish.
type ParallelExecutor struct {
	// MaxGoroutines limits how many workers run at once.
	//
	// If MaxGoroutines is 0, runtime.NumCPU() is used.
	MaxGoroutines int
}

// Execute runs the workers concurrently.
//
// If several workers fail, the error from the lowest
// worker index is returned.
func (p ParallelExecutor) Execute(round Round, work func(worker int) error) error {
	limit := p.MaxGoroutines
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	sem := make(chan struct{}, limit)
	errs := make([]error, round.ActiveWorkers)

	var wg sync.WaitGroup
	for w := 0; w < round.ActiveWorkers; w++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(w int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			errs[w] = work(w)
		}(w)
	}
	wg.Wait()

	return firstError(errs)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
