// Package simulator runs Goroutines against a virtual
// clock, so that the cost of a parallel computation can
// be measured without depending on real timing.
package simulator

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/unixpickle/essentials"
)

// A timer wakes up a sleeping Handle at a point in
// virtual time.
type timer struct {
	time   float64
	handle *Handle
}

// A Handle is a Goroutine's mechanism for accessing an
// EventLoop. Goroutines should not share Handles.
type Handle struct {
	*EventLoop

	// wake is non-nil while the Goroutine is sleeping.
	wake chan struct{}
}

// Sleep waits for a certain amount of virtual time to
// elapse.
//
// A delay of 0 still yields to the loop, so sleepers with
// equal deadlines are woken in a random order.
func (h *Handle) Sleep(delay float64) {
	ch := make(chan struct{}, 1)
	h.modifyHandles(func() {
		if h.wake != nil {
			panic("Handle is shared between Goroutines")
		}
		t := &timer{time: h.time + delay, handle: h}
		if math.IsInf(t.time, 0) || math.IsNaN(t.time) || delay < 0 {
			panic(fmt.Sprintf("invalid deadline: %f", t.time))
		}
		h.timers = append(h.timers, t)
		h.wake = ch
	})
	<-ch
}

// An EventLoop is a scheduler for Goroutines that work in
// virtual time.
//
// All Goroutines which access an EventLoop should be
// started using the EventLoop.Go() method.
//
// The clock only advances when every active Goroutine is
// sleeping, so real computation takes no virtual time.
type EventLoop struct {
	lock    sync.Mutex
	timers  []*timer
	handles []*Handle

	time float64

	running  bool
	notifyCh chan struct{}
}

// NewEventLoop creates an event loop.
//
// The event loop's clock starts at 0.
func NewEventLoop() *EventLoop {
	return &EventLoop{notifyCh: make(chan struct{}, 1)}
}

// Go runs a function in a Goroutine and passes it a new
// handle to the EventLoop.
func (e *EventLoop) Go(f func(h *Handle)) {
	h := &Handle{EventLoop: e}
	e.lock.Lock()
	e.handles = append(e.handles, h)
	e.lock.Unlock()
	go func() {
		f(h)
		e.modifyHandles(func() {
			for i, handle := range e.handles {
				if handle == h {
					essentials.UnorderedDelete(&e.handles, i)
					return
				}
			}
			panic("cannot free handle that does not exist")
		})
	}()
}

// Run runs the loop and blocks until all handles have
// been closed.
//
// The clock is not reset, so calling Go() and Run()
// repeatedly measures a sequence of phases.
//
// It is not safe to run the loop from more than one
// Goroutine at once.
//
// Returns with an error if a Goroutine is waiting on a
// timer that no longer exists.
func (e *EventLoop) Run() error {
	e.lock.Lock()
	if e.running {
		e.lock.Unlock()
		panic("EventLoop is already running.")
	}
	e.running = true
	e.lock.Unlock()

	defer func() {
		e.lock.Lock()
		e.running = false
		e.lock.Unlock()
	}()

	// Handles may have been added and finished before the
	// loop started, in which case nothing else will notify.
	select {
	case e.notifyCh <- struct{}{}:
	default:
	}

	for range e.notifyCh {
		if shouldContinue, err := e.step(); !shouldContinue {
			return err
		}
	}

	panic("unreachable")
}

// MustRun is like Run, but it panics on error.
func (e *EventLoop) MustRun() {
	if err := e.Run(); err != nil {
		panic(err)
	}
}

// Time gets the current virtual time.
func (e *EventLoop) Time() float64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.time
}

// Advance moves the clock forward without waking anybody.
// It may only be called while the loop is not running.
func (e *EventLoop) Advance(delay float64) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.running {
		panic("cannot advance a running EventLoop")
	}
	e.time += delay
}

// modifyHandles calls f() such that f can safely change
// the loop state, then wakes the scheduler.
func (e *EventLoop) modifyHandles(f func()) {
	e.lock.Lock()
	defer func() {
		e.lock.Unlock()
		select {
		case e.notifyCh <- struct{}{}:
		default:
		}
	}()
	f()
}

// step wakes the next sleeper, if possible.
//
// If the event loop can no longer run, the first return
// value is false.
// If this is due to an error, the second argument
// indicates the error.
func (e *EventLoop) step() (bool, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if len(e.handles) == 0 {
		return false, nil
	}

	for _, h := range e.handles {
		if h.wake == nil {
			// Do not run the loop while a Goroutine is
			// doing work in real-time.
			return true, nil
		}
	}

	if len(e.timers) == 0 {
		return false, errors.New("deadlock: all Handles are waiting")
	}

	// Shuffle so that two timers with the same deadline
	// don't fire in a deterministic order.
	indices := rand.Perm(len(e.timers))
	minTimerIdx := indices[0]
	for _, i := range indices[1:] {
		if e.timers[i].time < e.timers[minTimerIdx].time {
			minTimerIdx = i
		}
	}
	next := e.timers[minTimerIdx]
	essentials.UnorderedDelete(&e.timers, minTimerIdx)

	e.time = math.Max(e.time, next.time)
	ch := next.handle.wake
	next.handle.wake = nil
	ch <- struct{}{}
	return true, nil
}
