// Package fold implements the dynamic programming engines that turn loop
// scores into the highest scoring nested secondary structure.
package fold

import "math"

// Scorer scores the loops of the nearest neighbor decomposition of one
// sequence. Positions are 1-based, i < j, and larger scores are better.
type Scorer interface {
	Len() int
	CanPair(i, j int) bool

	// Hairpin scores the hairpin loop closed by (i, j).
	Hairpin(i, j int) float64
	// SingleLoop scores the stack, bulge or internal loop closed by the
	// outer pair (i, j) and the inner pair (k, l).
	SingleLoop(i, j, k, l int) float64
	// MultiLoop scores the closing pair (i, j) of a multi-branch loop.
	MultiLoop(i, j int) float64
	// MultiPaired scores a branch (i, j) of a multi-branch loop.
	MultiPaired(i, j int) float64
	// MultiUnpaired scores an unpaired base inside a multi-branch loop.
	MultiUnpaired(i int) float64
	// ExternalPaired scores a branch (i, j) of the exterior loop.
	ExternalPaired(i, j int) float64
	// ExternalUnpaired scores an unpaired base of the exterior loop.
	ExternalUnpaired(i int) float64
}

// PairScorer scores structures as a sum of independent base pair and
// unpaired base terms.
type PairScorer interface {
	Len() int
	CanPair(i, j int) bool
	Paired(i, j int) float64
	Unpaired(i int) float64
}

// Visitor receives the loops of a structure, see Decompose.
type Visitor interface {
	Hairpin(i, j int)
	SingleLoop(i, j, k, l int)
	MultiLoop(i, j int)
	MultiPaired(i, j int)
	MultiUnpaired(i int)
	ExternalPaired(i, j int)
	ExternalUnpaired(i int)
}

// Options bound the loops the engines consider.
type Options struct {
	// MinHairpin is the least number of unpaired bases in a hairpin loop.
	MinHairpin int
	// MaxInternal is the largest number of unpaired bases in a bulge or
	// internal loop.
	MaxInternal int
}

// DefaultOptions returns the usual bounds: hairpins of at least 3 bases and
// internal loops of up to 30 bases.
func DefaultOptions() Options {
	return Options{MinHairpin: 3, MaxInternal: 30}
}

func (o Options) normalize() Options {
	if o.MinHairpin < 0 {
		o.MinHairpin = 0
	}
	if o.MaxInternal <= 0 {
		o.MaxInternal = 30
	}
	return o
}

var negInf = math.Inf(-1)

// table is a square (L+2)x(L+2) matrix addressed by 1-based positions.
type table struct {
	n    int
	data []float64
}

func newTable(L int, fill float64) table {
	t := table{n: L + 2, data: make([]float64, (L+2)*(L+2))}
	for i := range t.data {
		t.data[i] = fill
	}
	return t
}

func (t table) at(i, j int) float64 {
	return t.data[i*t.n+j]
}

func (t table) set(i, j int, v float64) {
	t.data[i*t.n+j] = v
}
