package fanin

import (
	"context"
	"log/slog"
)

// An Observer is notified of every round of a reduction
// before the round's workers start.
type Observer interface {
	ObserveRound(round Round)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(round Round)

// ObserveRound calls f(round).
func (f ObserverFunc) ObserveRound(round Round) {
	f(round)
}

// A Trace is an Observer that records every round.
type Trace struct {
	Rounds []Round
}

// ObserveRound appends the round to the trace.
func (t *Trace) ObserveRound(round Round) {
	t.Rounds = append(t.Rounds, round)
}

// ActiveWorkers returns the number of active workers in
// each recorded round, in order.
func (t *Trace) ActiveWorkers() []int {
	res := make([]int, len(t.Rounds))
	for i, r := range t.Rounds {
		res[i] = r.ActiveWorkers
	}
	return res
}

// A LogObserver writes one record per round to a logger.
type LogObserver struct {
	Logger *slog.Logger

	// Level is the level of each record.
	// The zero value is slog.LevelInfo.
	Level slog.Level
}

// ObserveRound logs the round.
func (l LogObserver) ObserveRound(round Round) {
	l.Logger.Log(context.Background(), l.Level, "round",
		slog.Int("index", round.Index),
		slog.Int("active_workers", round.ActiveWorkers),
		slog.Int("stride", round.Stride))
}

// Observers combines multiple Observers into one, which
// notifies each of them in order.
func Observers(obs ...Observer) Observer {
	return ObserverFunc(func(round Round) {
		for _, o := range obs {
			o.ObserveRound(round)
		}
	})
}
