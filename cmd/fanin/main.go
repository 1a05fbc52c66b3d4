// Command fanin sums a buffer with a tree reduction and
// prints the number of active workers in every round.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/fanin/fanin"
	"github.com/unixpickle/fanin/inputs"
)

func main() {
	var size int
	var seed string
	var mode string
	var anySize bool
	var verbose bool
	flag.IntVar(&size, "n", 512, "number of elements when no values are given")
	flag.StringVar(&seed, "seed", "", "fill the buffer with seeded random values instead of 0..n-1")
	flag.StringVar(&mode, "mode", "parallel", "executor: sequential, permuted, parallel or virtual")
	flag.BoolVar(&anySize, "any-size", false, "allow sizes that are not powers of two")
	flag.BoolVar(&verbose, "v", false, "log every round")
	flag.Parse()

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	buf, err := makeBuffer(flag.Args(), size, seed)
	if err != nil {
		essentials.Die(err)
	}
	executor, err := makeExecutor(mode)
	if err != nil {
		essentials.Die(err)
	}

	reducer := &fanin.Reducer{
		Executor: executor,
		Observer: fanin.ObserverFunc(func(r fanin.Round) {
			fmt.Println("active workers:", r.ActiveWorkers)
		}),
		Logger:       logger,
		AllowAnySize: anySize,
	}
	res, err := reducer.Reduce(buf)
	if err != nil {
		essentials.Die(essentials.AddCtx("reduce", err))
	}
	fmt.Println("sum:", res.Sum)
	if mode == "virtual" {
		fmt.Printf("virtual time: %e\n", res.VirtualTime)
	}
}

func makeBuffer(args []string, size int, seed string) ([]int64, error) {
	if len(args) > 0 {
		return inputs.Parse(args)
	} else if size <= 0 {
		return nil, errors.New("-n must be positive")
	} else if seed != "" {
		return inputs.Seeded([]byte(seed), size, 1000), nil
	}
	return inputs.Ramp(size), nil
}

func makeExecutor(mode string) (fanin.Executor, error) {
	switch mode {
	case "sequential":
		return fanin.SequentialExecutor{}, nil
	case "permuted":
		return &fanin.PermutedExecutor{}, nil
	case "parallel":
		return fanin.ParallelExecutor{}, nil
	case "virtual":
		return &fanin.VirtualExecutor{}, nil
	default:
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}
}
