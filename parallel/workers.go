package parallel

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Workers returns the default number of worker goroutines: one per physical
// core when the CPU reports it, otherwise one per logical CPU.
func Workers() int {
	n := cpuid.CPU.PhysicalCores
	if n <= 0 {
		n = cpuid.CPU.LogicalCores
	}
	if procs := runtime.GOMAXPROCS(0); n <= 0 || n > procs {
		n = procs
	}
	return n
}
