// Package lstm implements a stacked bidirectional LSTM over sequence positions
package lstm

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/dnnfold/layer"
)

// LSTMLayer describes a stacked LSTM.
type LSTMLayer struct {
	in, hidden, layers int
	bidirectional      bool
}

// cell holds the weights of one direction of one layer. Gates are stacked in
// the order input, forget, cell, output.
type cell struct {
	in, hidden int

	wih, whh []float64 // [4*hidden, in], [4*hidden, hidden]
	bih, bhh []float64 // [4*hidden]
}

// LSTM runs Layers LSTM layers over the rows of its input. A bidirectional
// LSTM outputs the forward and the reverse hidden states side by side.
type LSTM struct {
	In, Hidden, Layers int
	Bidirectional      bool

	cells [][]*cell // [layer][direction]
}

// MustNew creates a new LSTM with in inputs, hidden units and layers
func MustNew(in, hidden, layers int, bidirectional bool) *LSTMLayer {
	o, err := New(in, hidden, layers, bidirectional)
	if err != nil {
		panic(err.Error())
	}
	return o
}

// New creates a new LSTM with in inputs, hidden units and layers
func New(in, hidden, layers int, bidirectional bool) (o *LSTMLayer, err error) {
	if in <= 0 || hidden <= 0 || layers <= 0 {
		return nil, fmt.Errorf("New LSTM: bad size in=%d hidden=%d layers=%d", in, hidden, layers)
	}
	return &LSTMLayer{in: in, hidden: hidden, layers: layers, bidirectional: bidirectional}, nil
}

// Lay turns the LSTM description into a layer
func (i *LSTMLayer) Lay(rng *rand.Rand) layer.Layer {
	o := &LSTM{In: i.in, Hidden: i.hidden, Layers: i.layers, Bidirectional: i.bidirectional}
	dirs := 1
	if i.bidirectional {
		dirs = 2
	}
	in := i.in
	for l := 0; l < i.layers; l++ {
		var row []*cell
		for d := 0; d < dirs; d++ {
			c := &cell{
				in:     in,
				hidden: i.hidden,
				wih:    make([]float64, 4*i.hidden*in),
				whh:    make([]float64, 4*i.hidden*i.hidden),
				bih:    make([]float64, 4*i.hidden),
				bhh:    make([]float64, 4*i.hidden),
			}
			if rng != nil {
				for _, data := range [][]float64{c.wih, c.whh, c.bih, c.bhh} {
					layer.InitUniform(rng, data, i.hidden)
				}
			}
			row = append(row, c)
		}
		o.cells = append(o.cells, row)
		in = i.hidden * dirs
	}
	return o
}

// Out is the width of the output rows.
func (m *LSTM) Out() int {
	if m.Bidirectional {
		return 2 * m.Hidden
	}
	return m.Hidden
}

// Forward runs all layers over x.
func (m *LSTM) Forward(x *mat.Dense) *mat.Dense {
	L, w := x.Dims()
	if w != m.In {
		panic(fmt.Sprintf("lstm: input width %d, want %d", w, m.In))
	}
	for _, row := range m.cells {
		y := mat.NewDense(L, m.Out(), nil)
		for d, c := range row {
			c.run(x, y, d*m.Hidden, d == 1)
		}
		x = y
	}
	return x
}

// run writes the hidden states of c over x into columns [col, col+hidden) of y.
func (c *cell) run(x, y *mat.Dense, col int, reverse bool) {
	L, _ := x.Dims()
	H := c.hidden

	pre := mat.NewDense(L, 4*H, nil)
	pre.Mul(x, mat.NewDense(4*H, c.in, c.wih).T())

	whh := mat.NewDense(4*H, H, c.whh)
	h := mat.NewVecDense(H, nil)
	cs := make([]float64, H)
	g := mat.NewVecDense(4*H, nil)

	for n := 0; n < L; n++ {
		t := n
		if reverse {
			t = L - 1 - n
		}
		g.MulVec(whh, h)
		gates := g.RawVector().Data
		p := pre.RawRowView(t)
		for k := range gates {
			gates[k] += p[k] + c.bih[k] + c.bhh[k]
		}
		out := y.RawRowView(t)[col : col+H]
		for k := 0; k < H; k++ {
			ig := sigmoid(gates[k])
			fg := sigmoid(gates[H+k])
			gg := math.Tanh(gates[2*H+k])
			og := sigmoid(gates[3*H+k])
			cs[k] = fg*cs[k] + ig*gg
			hv := og * math.Tanh(cs[k])
			h.SetVec(k, hv)
			out[k] = hv
		}
	}
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

// Params lists the weights under the usual names, weight_ih_l0,
// weight_hh_l0_reverse and so on.
func (m *LSTM) Params() []layer.Param {
	var ps []layer.Param
	for l, row := range m.cells {
		for d, c := range row {
			suffix := fmt.Sprintf("_l%d", l)
			if d == 1 {
				suffix += "_reverse"
			}
			H := c.hidden
			ps = append(ps,
				layer.Param{Name: "weight_ih" + suffix, Shape: []int{4 * H, c.in}, Data: c.wih},
				layer.Param{Name: "weight_hh" + suffix, Shape: []int{4 * H, H}, Data: c.whh},
				layer.Param{Name: "bias_ih" + suffix, Shape: []int{4 * H}, Data: c.bih},
				layer.Param{Name: "bias_hh" + suffix, Shape: []int{4 * H}, Data: c.bhh},
			)
		}
	}
	return ps
}
