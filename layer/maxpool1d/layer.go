// Package maxpool1d implements max pooling with stride 1 along the sequence axis
package maxpool1d

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/dnnfold/layer"
)

// MaxPool1DLayer describes a pooling window.
type MaxPool1DLayer struct {
	size int
}

// MaxPool1D replaces every value by the maximum over a window of Size
// positions centred on it. The output has the same shape as the input.
type MaxPool1D struct {
	Size int
}

// New creates a new MaxPool1D layer with window size
func New(size int) (o *MaxPool1DLayer, err error) {
	if size <= 0 {
		return nil, fmt.Errorf("New MaxPool1D: Size %d is not positive", size)
	}
	return &MaxPool1DLayer{size: size}, nil
}

// MustNew creates a new MaxPool1D layer with window size
func MustNew(size int) *MaxPool1DLayer {
	o, err := New(size)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// Lay turns the MaxPool1D layer description into a layer
func (i *MaxPool1DLayer) Lay(*rand.Rand) layer.Layer {
	return &MaxPool1D{Size: i.size}
}

// Forward pools every column of x.
func (m *MaxPool1D) Forward(x *mat.Dense) *mat.Dense {
	L, w := x.Dims()
	y := mat.NewDense(L, w, nil)
	y.Copy(x)
	if m.Size <= 1 {
		return y
	}
	left := (m.Size - 1) / 2
	for t := 0; t < L; t++ {
		dst := y.RawRowView(t)
		for p := t - left; p < t-left+m.Size; p++ {
			if p < 0 || p >= L || p == t {
				continue
			}
			src := x.RawRowView(p)
			for c, v := range src {
				if v > dst[c] {
					dst[c] = v
				}
			}
		}
	}
	return y
}

// Params returns nil, pooling has no parameters.
func (m *MaxPool1D) Params() []layer.Param {
	return nil
}
