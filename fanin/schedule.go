package fanin

// A Round is one synchronized step of a reduction, in
// which every active worker performs a single add.
type Round struct {
	// Index is the zero-based round number.
	Index int

	// ActiveWorkers is the number of independent adds
	// performed during the round.
	ActiveWorkers int

	// Stride is the distance from a worker's base index to
	// its partner index, always 1 << Index.
	Stride int

	// ElementsPerWorker is the length of the contiguous
	// segment each worker owns during the round.
	ElementsPerWorker int
}

// Base returns the index that a worker writes to.
func (r Round) Base(worker int) int {
	return worker * r.ElementsPerWorker
}

// Partner returns the index that a worker adds into its
// base index.
func (r Round) Partner(worker int) int {
	return r.Base(worker) + r.Stride
}

// Segment returns the half-open range of buffer indices
// owned by a worker in a buffer of the given size.
//
// Segments of distinct workers never overlap.
// The range is empty if the worker's base index is past
// the end of the buffer.
func (r Round) Segment(worker, size int) (start, end int) {
	start = min(r.Base(worker), size)
	end = min(start+r.ElementsPerWorker, size)
	return
}

// Schedule computes the rounds for reducing a buffer of
// n elements.
//
// The first round has ceil(n/2) workers, and each round
// after that has half as many (rounded down) with twice
// the stride.
// Buffers with fewer than two elements need no rounds.
//
// The schedule is only hazard-free when n is a power of
// two; see IsPowerOfTwo.
func Schedule(n int) []Round {
	if n < 2 {
		return nil
	}
	var rounds []Round
	workers := (n + 1) >> 1
	for i := 0; workers > 0; i++ {
		rounds = append(rounds, Round{
			Index:             i,
			ActiveWorkers:     workers,
			Stride:            1 << uint(i),
			ElementsPerWorker: (n + workers - 1) / workers,
		})
		workers >>= 1
	}
	return rounds
}

// IsPowerOfTwo checks if n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
