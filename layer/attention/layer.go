// Package attention implements multi-head self-attention with a residual connection
package attention

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/dnnfold/layer"
)

// AttentionLayer describes a multi-head self-attention layer.
type AttentionLayer struct {
	dim   int
	heads int
}

// Attention attends every position to every other position and adds the
// result to its input.
type Attention struct {
	Dim, Heads int

	InProjWeight  []float64 // [3*dim, dim], query, key and value stacked
	InProjBias    []float64 // [3*dim]
	OutProjWeight []float64 // [dim, dim]
	OutProjBias   []float64 // [dim]
}

// MustNew creates a new self-attention layer with dim features and heads heads
func MustNew(dim, heads int) *AttentionLayer {
	o, err := New(dim, heads)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new self-attention layer with dim features and heads heads
func New(dim, heads int) (o *AttentionLayer, err error) {
	if heads <= 0 || dim <= 0 {
		return nil, fmt.Errorf("New Attention: bad size dim=%d heads=%d", dim, heads)
	}
	if dim%heads != 0 {
		return nil, fmt.Errorf("New Attention: dim %d is not divisible by %d heads", dim, heads)
	}
	return &AttentionLayer{dim: dim, heads: heads}, nil
}

// Lay turns the attention description into a layer
func (i *AttentionLayer) Lay(rng *rand.Rand) layer.Layer {
	d := i.dim
	o := &Attention{
		Dim:           d,
		Heads:         i.heads,
		InProjWeight:  make([]float64, 3*d*d),
		InProjBias:    make([]float64, 3*d),
		OutProjWeight: make([]float64, d*d),
		OutProjBias:   make([]float64, d),
	}
	if rng != nil {
		layer.InitUniform(rng, o.InProjWeight, d)
		layer.InitUniform(rng, o.OutProjWeight, d)
	}
	return o
}

// Forward computes x + attention(x).
func (a *Attention) Forward(x *mat.Dense) *mat.Dense {
	L, d := x.Dims()
	if d != a.Dim {
		panic(fmt.Sprintf("attention: input width %d, want %d", d, a.Dim))
	}
	dh := d / a.Heads

	qkv := mat.NewDense(L, 3*d, nil)
	qkv.Mul(x, mat.NewDense(3*d, d, a.InProjWeight).T())
	addBias(qkv, a.InProjBias)

	ctx := mat.NewDense(L, d, nil)
	scores := mat.NewDense(L, L, nil)
	scale := 1 / math.Sqrt(float64(dh))
	for h := 0; h < a.Heads; h++ {
		q := qkv.Slice(0, L, h*dh, (h+1)*dh)
		k := qkv.Slice(0, L, d+h*dh, d+(h+1)*dh)
		v := qkv.Slice(0, L, 2*d+h*dh, 2*d+(h+1)*dh)
		scores.Mul(q, k.T())
		scores.Scale(scale, scores)
		for r := 0; r < L; r++ {
			softmax(scores.RawRowView(r))
		}
		ctx.Slice(0, L, h*dh, (h+1)*dh).(*mat.Dense).Mul(scores, v)
	}

	y := mat.NewDense(L, d, nil)
	y.Mul(ctx, mat.NewDense(d, d, a.OutProjWeight).T())
	addBias(y, a.OutProjBias)
	y.Add(y, x)
	return y
}

func addBias(m *mat.Dense, b []float64) {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := range row {
			row[j] += b[j]
		}
	}
}

func softmax(v []float64) {
	top := math.Inf(-1)
	for _, x := range v {
		top = math.Max(top, x)
	}
	var sum float64
	for i, x := range v {
		v[i] = math.Exp(x - top)
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
}

// Params lists the projections.
func (a *Attention) Params() []layer.Param {
	d := a.Dim
	return []layer.Param{
		{Name: "in_proj_weight", Shape: []int{3 * d, d}, Data: a.InProjWeight},
		{Name: "in_proj_bias", Shape: []int{3 * d}, Data: a.InProjBias},
		{Name: "out_proj.weight", Shape: []int{d, d}, Data: a.OutProjWeight},
		{Name: "out_proj.bias", Shape: []int{d}, Data: a.OutProjBias},
	}
}
