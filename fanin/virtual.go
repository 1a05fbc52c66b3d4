package fanin

import "github.com/unixpickle/fanin/simulator"

const (
	// DefaultAddTime is the virtual time it takes a worker
	// to perform a single add.
	DefaultAddTime = 1e-9

	// DefaultBarrierTime is the virtual time it takes all
	// the workers to synchronize at the end of a round.
	DefaultBarrierTime = 1e-7
)

// A VirtualExecutor runs every worker as a Goroutine on a
// simulated machine with one core per worker, and keeps
// track of the virtual time taken by all the rounds.
//
// The clock keeps running across rounds and reductions
// until Reset is called.
// It is not safe to use a VirtualExecutor from multiple
// Goroutines at once.
type VirtualExecutor struct {
	// AddTime is the virtual cost of one add.
	// If 0, DefaultAddTime is used.
	AddTime float64

	// BarrierTime is the virtual cost of synchronizing
	// after a round.
	// If 0, DefaultBarrierTime is used.
	BarrierTime float64

	loop *simulator.EventLoop
}

// Execute runs the round's workers on the event loop and
// waits for all of them to finish.
//
// If several workers fail, the error from the lowest
// worker index is returned.
func (v *VirtualExecutor) Execute(round Round, work func(worker int) error) error {
	if v.loop == nil {
		v.loop = simulator.NewEventLoop()
	}
	addTime := v.AddTime
	if addTime == 0 {
		addTime = DefaultAddTime
	}
	barrierTime := v.BarrierTime
	if barrierTime == 0 {
		barrierTime = DefaultBarrierTime
	}

	errs := make([]error, round.ActiveWorkers)
	for w := 0; w < round.ActiveWorkers; w++ {
		worker := w
		v.loop.Go(func(h *simulator.Handle) {
			h.Sleep(addTime)
			errs[worker] = work(worker)
		})
	}
	if err := v.loop.Run(); err != nil {
		return err
	}
	v.loop.Advance(barrierTime)

	return firstError(errs)
}

// Time gets the virtual time spent in every round since
// the executor was created or last reset.
func (v *VirtualExecutor) Time() float64 {
	if v.loop == nil {
		return 0
	}
	return v.loop.Time()
}

// Reset sets the clock back to zero.
func (v *VirtualExecutor) Reset() {
	v.loop = nil
}
