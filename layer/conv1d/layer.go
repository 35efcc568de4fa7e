// Package conv1d implements a one dimensional convolution layer over sequence positions
package conv1d

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/dnnfold/layer"
)

// Conv1DLayer describes a convolution with same padding.
type Conv1DLayer struct {
	in, out, kernel, dilation int
}

// Conv1D convolves the rows of its input along the sequence axis, adds the
// bias and applies ReLU.
type Conv1D struct {
	In, Out, Kernel, Dilation int

	Weight []float64 // [out, in, kernel]
	Bias   []float64 // [out]
}

// MustNew creates a new Conv1D layer with in and out channels, kernel size and dilation
func MustNew(in, out, kernel, dilation int) *Conv1DLayer {
	o, err := New(in, out, kernel, dilation)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new Conv1D layer with in and out channels, kernel size and dilation
func New(in, out, kernel, dilation int) (o *Conv1DLayer, err error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("New Conv1D: bad channels %d -> %d", in, out)
	}
	if kernel <= 0 {
		return nil, fmt.Errorf("New Conv1D: Kernel %d is not positive", kernel)
	}
	if dilation <= 0 {
		dilation = 1
	}
	o = new(Conv1DLayer)
	o.in = in
	o.out = out
	o.kernel = kernel
	o.dilation = dilation
	return
}

// Lay turns the Conv1D layer description into a layer
func (i *Conv1DLayer) Lay(rng *rand.Rand) layer.Layer {
	o := &Conv1D{
		In:       i.in,
		Out:      i.out,
		Kernel:   i.kernel,
		Dilation: i.dilation,
		Weight:   make([]float64, i.out*i.in*i.kernel),
		Bias:     make([]float64, i.out),
	}
	if rng != nil {
		layer.InitUniform(rng, o.Weight, i.in*i.kernel)
		layer.InitUniform(rng, o.Bias, i.in*i.kernel)
	}
	return o
}

// Forward computes the convolution of x, one row per position.
func (c *Conv1D) Forward(x *mat.Dense) *mat.Dense {
	L, in := x.Dims()
	if in != c.In {
		panic(fmt.Sprintf("conv1d: input width %d, want %d", in, c.In))
	}
	left := c.Dilation * (c.Kernel - 1) / 2

	cols := mat.NewDense(L, c.In*c.Kernel, nil)
	for t := 0; t < L; t++ {
		row := cols.RawRowView(t)
		for k := 0; k < c.Kernel; k++ {
			p := t - left + k*c.Dilation
			if p < 0 || p >= L {
				continue
			}
			src := x.RawRowView(p)
			for ch := 0; ch < c.In; ch++ {
				row[ch*c.Kernel+k] = src[ch]
			}
		}
	}

	w := mat.NewDense(c.Out, c.In*c.Kernel, c.Weight)
	y := mat.NewDense(L, c.Out, nil)
	y.Mul(cols, w.T())
	for t := 0; t < L; t++ {
		row := y.RawRowView(t)
		for o := range row {
			row[o] += c.Bias[o]
		}
	}
	layer.ReLU(y)
	return y
}

// Params lists weight and bias.
func (c *Conv1D) Params() []layer.Param {
	return []layer.Param{
		{Name: "weight", Shape: []int{c.Out, c.In, c.Kernel}, Data: c.Weight},
		{Name: "bias", Shape: []int{c.Out}, Data: c.Bias},
	}
}
