package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/fanin/fanin"
	"github.com/unixpickle/fanin/inputs"
)

// RunInfo describes a simulated machine.
type RunInfo struct {
	AddTime     float64
	BarrierTime float64
}

// Run reduces a fresh buffer on the simulated machine and
// returns the virtual time it took.
func (r *RunInfo) Run(size int) float64 {
	exec := &fanin.VirtualExecutor{AddTime: r.AddTime, BarrierTime: r.BarrierTime}
	res, err := (&fanin.Reducer{Executor: exec}).Reduce(inputs.Ramp(size))
	essentials.Must(err)
	return res.VirtualTime
}

func main() {
	executors := []fanin.Executor{
		fanin.SequentialExecutor{},
		fanin.ParallelExecutor{},
	}
	executorNames := []string{"Sequential", "Parallel"}
	runs := []RunInfo{
		{AddTime: 1e-9, BarrierTime: 1e-7},
		{AddTime: 1e-9, BarrierTime: 1e-5},
	}
	sizes := []int{8, 1 << 8, 1 << 12}

	// Markdown table header.
	fmt.Print("| Size | Rounds ")
	for _, name := range executorNames {
		fmt.Printf("| %s ", name)
	}
	for _, run := range runs {
		fmt.Printf("| Virtual (barrier=%s) ", strconv.FormatFloat(run.BarrierTime, 'E', -1, 64))
	}
	fmt.Println("|")
	for i := 0; i < 2+len(executors)+len(runs); i++ {
		fmt.Print("|:--")
	}
	fmt.Println("|")

	// Markdown table body.
	for _, size := range sizes {
		fmt.Printf("| %d | %d ", size, len(fanin.Schedule(size)))
		for _, exec := range executors {
			buf := inputs.Ramp(size)
			start := time.Now()
			_, err := (&fanin.Reducer{Executor: exec}).Reduce(buf)
			essentials.Must(err)
			fmt.Printf("| %s ", time.Since(start))
		}
		for _, run := range runs {
			fmt.Printf("| %e ", run.Run(size))
		}
		fmt.Println("|")
	}
}
