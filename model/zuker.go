package model

import (
	"math"
	"math/rand"

	"github.com/neurlang/dnnfold/fold"
	"github.com/neurlang/dnnfold/layer"
	"github.com/neurlang/dnnfold/sequence"
	"github.com/neurlang/dnnfold/structure"
	"github.com/neurlang/dnnfold/turner"
)

type variant int

const (
	variantS variant = iota // paired only
	variantM                // stacking and terminal mismatches
	variantL                // M plus paired and unpaired bases
)

// channel layout of the pair head, -1 when a variant has no such channel
type channels struct {
	n int

	paired, stack, mmHairpin, mmInternal, mmMulti, mmExternal int
}

func channelsOf(v variant) channels {
	switch v {
	case variantS:
		return channels{n: 1, paired: 0, stack: -1, mmHairpin: -1, mmInternal: -1, mmMulti: -1, mmExternal: -1}
	case variantL:
		return channels{n: 6, paired: 5, stack: 0, mmHairpin: 1, mmInternal: 2, mmMulti: 3, mmExternal: 4}
	}
	return channels{n: 5, paired: -1, stack: 0, mmHairpin: 1, mmInternal: 2, mmMulti: 3, mmExternal: 4}
}

const (
	maxExplicit  = 4
	maxAsymmetry = 28
)

// Zuker folds with the nearest neighbor decomposition, scoring the loops with
// a neural network and learned loop length tables.
type Zuker struct {
	variant variant
	ch      channels
	net     *pairNet

	HairpinLength     []float64 // [MaxLoop+1]
	BulgeLength       []float64 // [MaxLoop+1]
	InternalLength    []float64 // [MaxLoop+1]
	InternalExplicit  []float64 // [maxExplicit+1, maxExplicit+1]
	InternalAsymmetry []float64 // [maxAsymmetry+1]
	Multi             []float64 // base, closing, intern
}

// NewZuker builds a neural Zuker model. ZukerS scores base pairs only,
// Zuker adds helix stacking and terminal mismatches, and ZukerL adds base
// pairs and unpaired bases on top.
func NewZuker(v variant, cfg *Config, rng *rand.Rand) (*Zuker, error) {
	ch := channelsOf(v)
	net, err := newPairNet(cfg, ch.n, v == variantL, rng)
	if err != nil {
		return nil, err
	}
	const loop = turner.MaxLoop
	return &Zuker{
		variant:           v,
		ch:                ch,
		net:               net,
		HairpinLength:     make([]float64, loop+1),
		BulgeLength:       make([]float64, loop+1),
		InternalLength:    make([]float64, loop+1),
		InternalExplicit:  make([]float64, (maxExplicit+1)*(maxExplicit+1)),
		InternalAsymmetry: make([]float64, maxAsymmetry+1),
		Multi:             make([]float64, 3),
	}, nil
}

// Name implements Model.
func (z *Zuker) Name() string {
	switch z.variant {
	case variantS:
		return "ZukerS"
	case variantL:
		return "ZukerL"
	}
	return "Zuker"
}

// Config returns the network setting the model was built with.
func (z *Zuker) Config() Config {
	return z.net.cfg
}

func (z *Zuker) params() []layer.Param {
	return append(z.net.params(),
		layer.Param{Name: "score_hairpin_length", Shape: []int{len(z.HairpinLength)}, Data: z.HairpinLength},
		layer.Param{Name: "score_bulge_length", Shape: []int{len(z.BulgeLength)}, Data: z.BulgeLength},
		layer.Param{Name: "score_internal_length", Shape: []int{len(z.InternalLength)}, Data: z.InternalLength},
		layer.Param{Name: "score_internal_explicit", Shape: []int{maxExplicit + 1, maxExplicit + 1}, Data: z.InternalExplicit},
		layer.Param{Name: "score_internal_asymmetry", Shape: []int{len(z.InternalAsymmetry)}, Data: z.InternalAsymmetry},
		layer.Param{Name: "score_multi", Shape: []int{len(z.Multi)}, Data: z.Multi},
	)
}

// StateDict implements Model.
func (z *Zuker) StateDict() layer.StateDict {
	return layer.Export(z.params())
}

// LoadStateDict implements Model.
func (z *Zuker) LoadStateDict(sd layer.StateDict) error {
	return layer.Load(z.params(), sd, true)
}

func (z *Zuker) scorer(seq string) *zukerScorer {
	opt := fold.DefaultOptions()
	return &zukerScorer{
		z:   z,
		s:   sequence.EncodePadded(seq),
		L:   len(seq),
		enc: z.net.encode(seq, opt.MinHairpin),
	}
}

// Fold implements Model.
func (z *Zuker) Fold(seq string) (*Prediction, error) {
	score, pairs := fold.Zuker(z.scorer(seq), fold.DefaultOptions())
	return &Prediction{Score: score, Pairs: pairs}, nil
}

// Evaluate implements Model.
func (z *Zuker) Evaluate(seq string, pairs structure.Pairs) (float64, error) {
	return fold.Evaluate(z.scorer(seq), pairs)
}

// zukerScorer implements fold.Scorer for one encoded sequence. Every base
// pair receives its paired score in the loop it closes.
type zukerScorer struct {
	z   *Zuker
	s   []byte
	L   int
	enc *encoded
}

func (sc *zukerScorer) pair(i, j, c int) float64 {
	return sc.enc.pairs.get(i, j, c)
}

func clampLoop(table []float64, n int) float64 {
	if n >= len(table) {
		n = len(table) - 1
	}
	return table[n]
}

func (sc *zukerScorer) Len() int {
	return sc.L
}

func (sc *zukerScorer) CanPair(i, j int) bool {
	return sequence.CanPair(sc.s[i], sc.s[j])
}

func (sc *zukerScorer) Hairpin(i, j int) float64 {
	ch := sc.z.ch
	return clampLoop(sc.z.HairpinLength, j-i-1) +
		sc.pair(i, j, ch.mmHairpin) +
		sc.pair(i, j, ch.paired) +
		sc.enc.unpairedSum(unpairedHairpin, i+1, j-1)
}

func (sc *zukerScorer) SingleLoop(i, j, k, l int) float64 {
	z, ch := sc.z, sc.z.ch
	l1, l2 := k-i-1, j-l-1
	e := sc.pair(i, j, ch.paired)
	switch {
	case l1 == 0 && l2 == 0:
		return e + sc.pair(i, j, ch.stack)
	case l1 == 0 || l2 == 0:
		e += clampLoop(z.BulgeLength, l1+l2)
	default:
		e += clampLoop(z.InternalLength, l1+l2)
		if l1 <= maxExplicit && l2 <= maxExplicit {
			e += z.InternalExplicit[l1*(maxExplicit+1)+l2]
		}
		e += clampLoop(z.InternalAsymmetry, int(math.Abs(float64(l1-l2))))
		e += sc.pair(i, j, ch.mmInternal) + sc.pair(k, l, ch.mmInternal)
	}
	return e + sc.enc.unpairedSum(unpairedInternal, i+1, k-1) + sc.enc.unpairedSum(unpairedInternal, l+1, j-1)
}

func (sc *zukerScorer) MultiLoop(i, j int) float64 {
	ch := sc.z.ch
	return sc.z.Multi[1] + sc.z.Multi[2] + sc.pair(i, j, ch.mmMulti) + sc.pair(i, j, ch.paired)
}

func (sc *zukerScorer) MultiPaired(i, j int) float64 {
	return sc.z.Multi[2] + sc.pair(i, j, sc.z.ch.mmMulti)
}

func (sc *zukerScorer) MultiUnpaired(i int) float64 {
	return sc.z.Multi[0] + sc.enc.unpairedSum(unpairedMulti, i, i)
}

func (sc *zukerScorer) ExternalPaired(i, j int) float64 {
	return sc.pair(i, j, sc.z.ch.mmExternal)
}

func (sc *zukerScorer) ExternalUnpaired(i int) float64 {
	return sc.enc.unpairedSum(unpairedExternal, i, i)
}
