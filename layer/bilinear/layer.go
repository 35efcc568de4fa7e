// Package bilinear implements a bilinear form joining two feature rows
package bilinear

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/dnnfold/layer"
)

// Bilinear computes y_c = lᵀ·W_c·r + b_c for every pair of rows l and r.
type Bilinear struct {
	In1, In2, Out int

	Weight []float64 // [out, in1, in2]
	Bias   []float64 // [out]
}

// New creates a new bilinear layer. Weights are initialised from rng unless
// rng is nil.
func New(in1, in2, out int, rng *rand.Rand) (*Bilinear, error) {
	if in1 <= 0 || in2 <= 0 || out <= 0 {
		return nil, fmt.Errorf("New Bilinear: bad size %dx%d -> %d", in1, in2, out)
	}
	b := &Bilinear{
		In1:    in1,
		In2:    in2,
		Out:    out,
		Weight: make([]float64, out*in1*in2),
		Bias:   make([]float64, out),
	}
	if rng != nil {
		layer.InitUniform(rng, b.Weight, in1)
		layer.InitUniform(rng, b.Bias, in1)
	}
	return b, nil
}

// Project computes l·W_c for every output channel c. Row n of the c-th
// matrix dotted with a right row r gives y_c - b_c for the pair (l_n, r).
func (b *Bilinear) Project(l mat.Matrix) []*mat.Dense {
	n, c1 := l.Dims()
	if c1 != b.In1 {
		panic(fmt.Sprintf("bilinear: left width %d, want %d", c1, b.In1))
	}
	out := make([]*mat.Dense, b.Out)
	for c := range out {
		w := mat.NewDense(b.In1, b.In2, b.Weight[c*b.In1*b.In2:(c+1)*b.In1*b.In2])
		out[c] = mat.NewDense(n, b.In2, nil)
		out[c].Mul(l, w)
	}
	return out
}

// Params lists weight and bias.
func (b *Bilinear) Params() []layer.Param {
	return []layer.Param{
		{Name: "weight", Shape: []int{b.Out, b.In1, b.In2}, Data: b.Weight},
		{Name: "bias", Shape: []int{b.Out}, Data: b.Bias},
	}
}
