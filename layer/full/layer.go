// Package full implements a fully connected layer
package full

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/dnnfold/layer"
)

// FullLayer describes a fully connected layer.
type FullLayer struct {
	in, out int
	relu    bool
}

// Full computes y = x·Wᵀ + b for every row x, optionally followed by ReLU.
type Full struct {
	In, Out int
	ReLU    bool

	Weight []float64 // [out, in]
	Bias   []float64 // [out]
}

// MustNew creates a new full layer with in inputs and out outputs
func MustNew(in, out int, relu bool) *FullLayer {
	o, err := New(in, out, relu)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new full layer with in inputs and out outputs
func New(in, out int, relu bool) (o *FullLayer, err error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("New Full: bad size %dx%d", in, out)
	}
	return &FullLayer{in: in, out: out, relu: relu}, nil
}

// Lay turns the full layer description into a layer
func (i *FullLayer) Lay(rng *rand.Rand) layer.Layer {
	return i.LayFull(rng)
}

// LayFull is Lay returning the concrete type
func (i *FullLayer) LayFull(rng *rand.Rand) *Full {
	o := &Full{
		In:     i.in,
		Out:    i.out,
		ReLU:   i.relu,
		Weight: make([]float64, i.out*i.in),
		Bias:   make([]float64, i.out),
	}
	if rng != nil {
		layer.InitUniform(rng, o.Weight, i.in)
		layer.InitUniform(rng, o.Bias, i.in)
	}
	return o
}

// Forward applies the layer to every row of x.
func (f *Full) Forward(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	if cols != f.In {
		panic(fmt.Sprintf("full: input width %d, want %d", cols, f.In))
	}
	w := mat.NewDense(f.Out, f.In, f.Weight)
	y := mat.NewDense(rows, f.Out, nil)
	y.Mul(x, w.T())
	for r := 0; r < rows; r++ {
		row := y.RawRowView(r)
		for c := range row {
			row[c] += f.Bias[c]
		}
	}
	if f.ReLU {
		layer.ReLU(y)
	}
	return y
}

// Params lists weight and bias.
func (f *Full) Params() []layer.Param {
	return []layer.Param{
		{Name: "weight", Shape: []int{f.Out, f.In}, Data: f.Weight},
		{Name: "bias", Shape: []int{f.Out}, Data: f.Bias},
	}
}
