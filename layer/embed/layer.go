// Package embed turns nucleotide codes into feature rows
package embed

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/dnnfold/layer"
	"github.com/neurlang/dnnfold/sequence"
)

// Embed maps every base to a feature row. With Dim zero it is a one-hot
// encoding with four columns, otherwise a learned table of NumBases rows.
type Embed struct {
	Dim    int
	Weight []float64 // [NumBases, Dim]
}

// New creates a new embedding of dim features, or a one-hot encoding when
// dim is zero. A learned table is initialised from rng unless rng is nil.
func New(dim int, rng *rand.Rand) (*Embed, error) {
	if dim < 0 {
		return nil, fmt.Errorf("New Embed: negative dim %d", dim)
	}
	e := &Embed{Dim: dim}
	if dim > 0 {
		e.Weight = make([]float64, sequence.NumBases*dim)
		if rng != nil {
			for i := range e.Weight {
				e.Weight[i] = rng.NormFloat64()
			}
		}
	}
	return e, nil
}

// Out is the width of the embedded rows.
func (e *Embed) Out() int {
	if e.Dim == 0 {
		return 4
	}
	return e.Dim
}

// Encode embeds a sequence, one row per base.
func (e *Embed) Encode(seq string) *mat.Dense {
	codes := sequence.Encode(seq)
	y := mat.NewDense(len(codes), e.Out(), nil)
	if e.Dim == 0 {
		for i, row := range sequence.OneHot(codes) {
			copy(y.RawRowView(i), row[:])
		}
		return y
	}
	for i, c := range codes {
		copy(y.RawRowView(i), e.Weight[int(c)*e.Dim:int(c+1)*e.Dim])
	}
	return y
}

// Params lists the embedding table, if any.
func (e *Embed) Params() []layer.Param {
	if e.Dim == 0 {
		return nil
	}
	return []layer.Param{{Name: "weight", Shape: []int{sequence.NumBases, e.Dim}, Data: e.Weight}}
}
