// Package layer defines the neural layer interface and the named parameters
// shared by layers, networks and parameter files
package layer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrShape is returned when a stored tensor does not match a parameter shape.
var ErrShape = errors.New("shape mismatch")

// Layer transforms a matrix with one row per sequence position.
type Layer interface {

	// Forward computes the layer output for input x. The input is not modified.
	Forward(x *mat.Dense) *mat.Dense

	// Params lists the trainable parameters of the layer.
	Params() []Param
}

// Builder describes the shape of a layer. Lay allocates the layer and
// initialises its weights from rng, or leaves them zero when rng is nil.
type Builder interface {
	Lay(rng *rand.Rand) Layer
}

// Param is a named view over parameter storage. Data aliases the storage of
// the owning layer, so copying into it updates the layer.
type Param struct {
	Name  string
	Shape []int
	Data  []float64
}

// Size is the number of elements implied by the shape.
func (p Param) Size() int {
	return shapeSize(p.Shape)
}

// Prefix renames parameters by prepending prefix.
func Prefix(prefix string, params []Param) []Param {
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = p
		out[i].Name = prefix + p.Name
	}
	return out
}

// Tensor is a shaped block of values as stored in parameter files.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// StateDict maps parameter names to tensors.
type StateDict map[string]Tensor

// Keys returns the sorted tensor names.
func (sd StateDict) Keys() []string {
	keys := make([]string, 0, len(sd))
	for k := range sd {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Export copies the parameters into a new state dict.
func Export(params []Param) StateDict {
	sd := make(StateDict, len(params))
	for _, p := range params {
		sd[p.Name] = Tensor{
			Shape: append([]int(nil), p.Shape...),
			Data:  append([]float64(nil), p.Data...),
		}
	}
	return sd
}

// Load copies tensors from sd into params. Missing parameters are an error
// when strict is set, and so are tensors that match no parameter.
func Load(params []Param, sd StateDict, strict bool) error {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		seen[p.Name] = struct{}{}
		t, ok := sd[p.Name]
		if !ok {
			if strict {
				return fmt.Errorf("missing parameter %q", p.Name)
			}
			continue
		}
		if !sameShape(t.Shape, p.Shape) || len(t.Data) != p.Size() {
			return fmt.Errorf("parameter %q: file %v, model %v: %w", p.Name, t.Shape, p.Shape, ErrShape)
		}
		copy(p.Data, t.Data)
	}
	if strict {
		for _, k := range sd.Keys() {
			if _, ok := seen[k]; !ok {
				return fmt.Errorf("unexpected parameter %q", k)
			}
		}
	}
	return nil
}

// InitUniform fills data with values uniform in ±1/sqrt(fanIn).
func InitUniform(rng *rand.Rand, data []float64, fanIn int) {
	if fanIn <= 0 {
		fanIn = 1
	}
	bound := 1 / math.Sqrt(float64(fanIn))
	for i := range data {
		data[i] = (2*rng.Float64() - 1) * bound
	}
}

// ReLU applies max(0, v) in place.
func ReLU(m *mat.Dense) {
	raw := m.RawMatrix()
	for r := 0; r < raw.Rows; r++ {
		row := raw.Data[r*raw.Stride : r*raw.Stride+raw.Cols]
		for i, v := range row {
			if v < 0 {
				row[i] = 0
			}
		}
	}
}

func shapeSize(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
