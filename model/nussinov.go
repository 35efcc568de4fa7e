package model

import (
	"math/rand"

	"github.com/neurlang/dnnfold/fold"
	"github.com/neurlang/dnnfold/layer"
	"github.com/neurlang/dnnfold/sequence"
	"github.com/neurlang/dnnfold/structure"
)

// Nussinov folds by maximising the sum of neural base pair scores.
type Nussinov struct {
	net *pairNet
}

// NewNussinov builds a neural Nussinov model.
func NewNussinov(cfg *Config, rng *rand.Rand) (*Nussinov, error) {
	net, err := newPairNet(cfg, 1, false, rng)
	if err != nil {
		return nil, err
	}
	return &Nussinov{net: net}, nil
}

// Name implements Model.
func (n *Nussinov) Name() string {
	return "Nussinov"
}

// Config returns the network setting the model was built with.
func (n *Nussinov) Config() Config {
	return n.net.cfg
}

type nussinovScorer struct {
	s   []byte
	L   int
	enc *encoded
}

func (sc *nussinovScorer) Len() int                { return sc.L }
func (sc *nussinovScorer) CanPair(i, j int) bool   { return sequence.CanPair(sc.s[i], sc.s[j]) }
func (sc *nussinovScorer) Paired(i, j int) float64 { return sc.enc.pairs.get(i, j, 0) }
func (sc *nussinovScorer) Unpaired(i int) float64  { return 0 }

func (n *Nussinov) scorer(seq string) *nussinovScorer {
	return &nussinovScorer{
		s:   sequence.EncodePadded(seq),
		L:   len(seq),
		enc: n.net.encode(seq, fold.DefaultOptions().MinHairpin),
	}
}

// Fold implements Model.
func (n *Nussinov) Fold(seq string) (*Prediction, error) {
	score, pairs := fold.Nussinov(n.scorer(seq), fold.DefaultOptions())
	return &Prediction{Score: score, Pairs: pairs}, nil
}

// Evaluate implements Model.
func (n *Nussinov) Evaluate(seq string, pairs structure.Pairs) (float64, error) {
	if err := pairs.Validate(); err != nil {
		return 0, err
	}
	return fold.EvaluatePairs(n.scorer(seq), pairs), nil
}

// StateDict implements Model.
func (n *Nussinov) StateDict() layer.StateDict {
	return layer.Export(n.net.params())
}

// LoadStateDict implements Model.
func (n *Nussinov) LoadStateDict(sd layer.StateDict) error {
	return layer.Load(n.net.params(), sd, true)
}
