// Package fanin sums integer buffers with a tree
// reduction, the way a power-of-two number of threads
// would cooperatively sum an array in logarithmic time.
//
// Each round, the active workers add a partner cell into
// their own base cell, then the number of workers halves
// and the distance to the partner doubles.
// After the last round, the sum is in the first cell.
//
// Within a round, workers touch disjoint cells, so an
// Executor is free to run them concurrently.
// Rounds are separated by a barrier.
package fanin

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// A Result describes a finished reduction.
type Result struct {
	// RunID identifies the reduction in logs.
	RunID uuid.UUID

	// Sum is the sum of the original buffer.
	Sum int64

	// Rounds contains every round that was executed.
	Rounds []Round

	// VirtualTime is the simulated time the reduction took,
	// if the Executor is a Clock.
	VirtualTime float64
}

// ActiveWorkers returns the number of active workers in
// each round, in descending order.
func (r *Result) ActiveWorkers() []int {
	t := Trace{Rounds: r.Rounds}
	return t.ActiveWorkers()
}

// A Reducer runs tree reductions.
type Reducer struct {
	// Executor runs the workers of each round.
	// If nil, a SequentialExecutor is used.
	Executor Executor

	// Observer, if non-nil, is notified of each round.
	Observer Observer

	// Logger, if non-nil, receives debug records for each
	// reduction.
	Logger *slog.Logger

	// AllowAnySize disables the power-of-two size check.
	//
	// Sizes other than powers of two do not reduce to the
	// correct sum, and usually fail with an
	// IndexOutOfRangeError partway through.
	// This is only useful for studying those failures.
	AllowAnySize bool
}

// Reduce sums the buffer in place with a SequentialExecutor.
//
// The buffer's length must be a power of two.
func Reduce(buf []int64) (int64, error) {
	res, err := (&Reducer{}).Reduce(buf)
	if err != nil {
		return 0, err
	}
	return res.Sum, nil
}

// Reduce sums the buffer in place.
//
// When the call returns, the sum is stored in buf[0] and
// the rest of the buffer holds partial sums.
// The caller must not access buf during the call.
//
// If an error is returned during a round, the buffer is
// left partially reduced.
func (r *Reducer) Reduce(buf []int64) (*Result, error) {
	if len(buf) == 0 {
		return nil, &InvalidSizeError{Size: 0, Reason: "buffer is empty"}
	}
	if !r.AllowAnySize && !IsPowerOfTwo(len(buf)) {
		return nil, &InvalidSizeError{Size: len(buf), Reason: "size is not a power of two"}
	}

	res := &Result{RunID: uuid.New()}
	logger := r.logger().With(slog.String("run", res.RunID.String()),
		slog.Int("size", len(buf)))

	executor := r.executor()
	clock, hasClock := executor.(Clock)
	var startTime float64
	if hasClock {
		startTime = clock.Time()
	}

	for _, round := range Schedule(len(buf)) {
		if r.Observer != nil {
			r.Observer.ObserveRound(round)
		}
		logger.Debug("starting round", slog.Int("round", round.Index),
			slog.Int("active_workers", round.ActiveWorkers),
			slog.Int("stride", round.Stride))
		if err := runRound(executor, round, buf); err != nil {
			logger.Warn("reduction aborted", slog.Int("round", round.Index),
				slog.Any("error", err))
			return nil, err
		}
		res.Rounds = append(res.Rounds, round)
	}

	res.Sum = buf[0]
	if hasClock {
		res.VirtualTime = clock.Time() - startTime
	}
	logger.Debug("reduction complete", slog.Int("rounds", len(res.Rounds)),
		slog.Int64("sum", res.Sum))
	return res, nil
}

func (r *Reducer) executor() Executor {
	if r.Executor == nil {
		return SequentialExecutor{}
	}
	return r.Executor
}

func (r *Reducer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}

// runRound splits buf into one segment per worker and has
// the executor add each segment's partner cell into its
// first cell.
func runRound(executor Executor, round Round, buf []int64) error {
	segments := make([][]int64, round.ActiveWorkers)
	for w := range segments {
		start, end := round.Segment(w, len(buf))
		segments[w] = buf[start:end:end]
	}

	ran := make([]bool, round.ActiveWorkers)
	err := executor.Execute(round, func(worker int) error {
		if ran[worker] {
			panic("worker executed twice in one round")
		}
		ran[worker] = true

		seg := segments[worker]
		if len(seg) == 0 {
			return &IndexOutOfRangeError{
				Round:  round.Index,
				Worker: worker,
				Index:  round.Base(worker),
				Len:    len(buf),
			}
		} else if round.Stride >= len(seg) {
			return &IndexOutOfRangeError{
				Round:  round.Index,
				Worker: worker,
				Index:  round.Partner(worker),
				Len:    len(buf),
			}
		}
		seg[0] += seg[round.Stride]
		return nil
	})
	if err != nil {
		return err
	}

	for _, ok := range ran {
		if !ok {
			panic("executor skipped a worker")
		}
	}
	return nil
}
