package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/dnnfold/layer"
	"github.com/neurlang/dnnfold/layer/attention"
	"github.com/neurlang/dnnfold/layer/bilinear"
	"github.com/neurlang/dnnfold/layer/conv1d"
	"github.com/neurlang/dnnfold/layer/embed"
	"github.com/neurlang/dnnfold/layer/full"
	"github.com/neurlang/dnnfold/layer/lstm"
	"github.com/neurlang/dnnfold/layer/maxpool1d"
	"github.com/neurlang/dnnfold/net/feedforward"
	"github.com/neurlang/dnnfold/parallel"
	"github.com/neurlang/dnnfold/sequence"
)

// Unpaired base channels of ZukerL.
const (
	unpairedHairpin = iota
	unpairedInternal
	unpairedMulti
	unpairedExternal
	numUnpaired
)

// pairNet encodes a sequence and scores every candidate base pair with a
// fully connected head over joined left and right position features.
type pairNet struct {
	cfg Config

	embed *embed.Embed
	enc   feedforward.FeedforwardNetwork
	join  *bilinear.Bilinear
	head  feedforward.FeedforwardNetwork

	unpaired *full.Full

	width    int // encoder output
	half     int // left and right features
	joinW    int
	in       int // head input
	channels int
	offsets  [][2]int
}

func newPairNet(cfg *Config, channels int, withUnpaired bool, rng *rand.Rand) (*pairNet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := &pairNet{cfg: *cfg, channels: channels}
	var err error
	if n.embed, err = embed.New(cfg.EmbedSize, rng); err != nil {
		return nil, err
	}
	width := n.embed.Out()

	addLSTM := func() error {
		if cfg.NumLSTMLayers == 0 {
			return nil
		}
		b, err := lstm.New(width, cfg.NumLSTMUnits, cfg.NumLSTMLayers, true)
		if err != nil {
			return err
		}
		n.enc.NewLayer("lstm", b, rng)
		width = 2 * cfg.NumLSTMUnits
		return nil
	}
	addCNN := func() error {
		k := 0
		for i, f := range cfg.NumFilters {
			if f <= 0 {
				continue
			}
			dilation := 1
			if cfg.Dilation > 0 {
				dilation = 1 << k
			}
			b, err := conv1d.New(width, f, pick(cfg.FilterSize, i), dilation)
			if err != nil {
				return err
			}
			n.enc.NewLayer(fmt.Sprintf("conv.%d", k), b, rng)
			if p := pick(cfg.PoolSize, i); p > 1 {
				n.enc.NewLayer(fmt.Sprintf("pool.%d", k), maxpool1d.MustNew(p), rng)
			}
			width = f
			k++
		}
		return nil
	}
	steps := []func() error{addCNN, addLSTM}
	if cfg.LSTMCNN {
		steps = []func() error{addLSTM, addCNN}
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if cfg.NumAtt > 0 {
		b, err := attention.New(width, cfg.NumAtt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		n.enc.NewLayer("att", b, rng)
	}

	n.width = width
	n.half = width
	if !cfg.NoSplitLR {
		if width%2 != 0 {
			return nil, fmt.Errorf("%w: encoder width %d cannot be split into left and right halves", ErrConfig, width)
		}
		n.half = width / 2
	}

	switch cfg.PairJoin {
	case "cat":
		n.joinW = 2 * n.half
	case "bilinear":
		if n.join, err = bilinear.New(n.half, n.half, n.half, rng); err != nil {
			return nil, err
		}
		n.joinW = n.half
	default:
		n.joinW = n.half
	}

	c := (cfg.ContextLength - 1) / 2
	for a := -c; a < cfg.ContextLength-c; a++ {
		if cfg.FC == "conv" {
			for b := -c; b < cfg.ContextLength-c; b++ {
				n.offsets = append(n.offsets, [2]int{a, b})
			}
		} else {
			n.offsets = append(n.offsets, [2]int{a, -a})
		}
	}

	n.in = len(n.offsets)*n.joinW + 2*4*(2*cfg.MixBase+1)
	in := n.in
	for i, h := range cfg.NumHiddenUnits {
		if h == 0 {
			continue
		}
		n.head.NewLayer(fmt.Sprintf("fc.%d", i), full.MustNew(in, h, true), rng)
		in = h
	}
	n.head.NewLayer("fc.out", full.MustNew(in, channels, false), rng)

	if withUnpaired {
		n.unpaired = full.MustNew(width, numUnpaired, false).LayFull(rng)
	}
	return n, nil
}

func (n *pairNet) params() []layer.Param {
	ps := layer.Prefix("embedding.", n.embed.Params())
	ps = append(ps, layer.Prefix("encoder.", n.enc.Params())...)
	if n.join != nil {
		ps = append(ps, layer.Prefix("join.", n.join.Params())...)
	}
	ps = append(ps, n.head.Params()...)
	if n.unpaired != nil {
		ps = append(ps, layer.Prefix("unpaired.", n.unpaired.Params())...)
	}
	return ps
}

// pairTable holds the channel scores of every base pair (i, j), 1-based.
type pairTable struct {
	L, n int
	data []float64
}

func newPairTable(L, n int) *pairTable {
	return &pairTable{L: L, n: n, data: make([]float64, (L+1)*(L+1)*n)}
}

func (t *pairTable) at(i, j int) []float64 {
	o := (i*(t.L+1) + j) * t.n
	return t.data[o : o+t.n]
}

// get returns channel c of (i, j), or zero for a missing channel.
func (t *pairTable) get(i, j, c int) float64 {
	if c < 0 {
		return 0
	}
	return t.data[(i*(t.L+1)+j)*t.n+c]
}

// encoded is a sequence run through a pairNet.
type encoded struct {
	pairs *pairTable
	// prefix sums of the unpaired channels, nil without them
	unpaired [numUnpaired][]float64
}

// unpairedSum adds channel c over positions from..to.
func (e *encoded) unpairedSum(c, from, to int) float64 {
	u := e.unpaired[c]
	if u == nil || to < from {
		return 0
	}
	return u[to] - u[from-1]
}

// encode scores the pairs (i, j) of seq that can pair and enclose at least
// minHairpin bases.
func (n *pairNet) encode(seq string, minHairpin int) *encoded {
	L := len(seq)
	e := &encoded{pairs: newPairTable(L, n.channels)}
	if L == 0 {
		return e
	}
	codes := sequence.Encode(seq)
	h := n.enc.Forward(n.embed.Encode(seq))
	left := h.Slice(0, L, 0, n.half).(*mat.Dense)
	right := h.Slice(0, L, n.width-n.half, n.width).(*mat.Dense)
	var proj []*mat.Dense
	if n.join != nil {
		proj = n.join.Project(left)
	}
	onehot := sequence.OneHot(codes)

	workers := n.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	parallel.ForEach(L, workers, func(r int) {
		i := r + 1
		var js []int
		for j := i + minHairpin + 1; j <= L; j++ {
			if sequence.CanPair(codes[i-1], codes[j-1]) {
				js = append(js, j)
			}
		}
		if len(js) == 0 {
			return
		}
		x := mat.NewDense(len(js), n.in, nil)
		for row, j := range js {
			n.pairFeature(x.RawRowView(row), i, j, left, right, proj, onehot)
		}
		y := n.head.Forward(x)
		for row, j := range js {
			copy(e.pairs.at(i, j), y.RawRowView(row))
		}
	})

	if n.unpaired != nil {
		u := n.unpaired.Forward(h)
		for c := 0; c < numUnpaired; c++ {
			sum := make([]float64, L+1)
			for p := 1; p <= L; p++ {
				sum[p] = sum[p-1] + u.At(p-1, c)
			}
			e.unpaired[c] = sum
		}
	}
	return e
}

// pairFeature writes the head input of (i, j) to dst: the joined features
// of every context offset followed by the one-hot bases around i and j.
// Offsets outside the sequence contribute zeros.
func (n *pairNet) pairFeature(dst []float64, i, j int, left, right *mat.Dense, proj []*mat.Dense, onehot [][4]float64) {
	L, _ := left.Dims()
	off := 0
	for _, o := range n.offsets {
		p, q := i+o[0], j+o[1]
		if p >= 1 && p <= L && q >= 1 && q <= L {
			l, r := left.RawRowView(p-1), right.RawRowView(q-1)
			out := dst[off : off+n.joinW]
			switch n.cfg.PairJoin {
			case "cat":
				copy(out, l)
				copy(out[n.half:], r)
			case "add":
				for k := range out {
					out[k] = l[k] + r[k]
				}
			case "mul":
				for k := range out {
					out[k] = l[k] * r[k]
				}
			case "bilinear":
				for c := range out {
					t := proj[c].RawRowView(p - 1)
					v := n.join.Bias[c]
					for k, rv := range r {
						v += t[k] * rv
					}
					out[c] = v
				}
			}
		}
		off += n.joinW
	}
	m := n.cfg.MixBase
	for _, centre := range [2]int{i, j} {
		for p := centre - m; p <= centre+m; p++ {
			if p >= 1 && p <= L {
				copy(dst[off:off+4], onehot[p-1][:])
			}
			off += 4
		}
	}
}
