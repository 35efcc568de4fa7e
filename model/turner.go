package model

import (
	"github.com/neurlang/dnnfold/fold"
	"github.com/neurlang/dnnfold/layer"
	"github.com/neurlang/dnnfold/structure"
	"github.com/neurlang/dnnfold/turner"
)

// Turner folds with nearest neighbor free energy parameters.
type Turner struct {
	Params *turner.Params
}

// NewTurner returns the Turner model with the built-in Turner 2004 set.
func NewTurner() *Turner {
	return &Turner{Params: turner.Default()}
}

// Name implements Model.
func (t *Turner) Name() string {
	return "Turner"
}

// Fold implements Model.
func (t *Turner) Fold(seq string) (*Prediction, error) {
	score, pairs := fold.Zuker(turner.NewScorer(t.Params, seq), fold.DefaultOptions())
	return &Prediction{Score: score, Pairs: pairs}, nil
}

// Evaluate implements Model.
func (t *Turner) Evaluate(seq string, pairs structure.Pairs) (float64, error) {
	return fold.Evaluate(turner.NewScorer(t.Params, seq), pairs)
}

// Count adds v for every parameter the loops of pairs use to counts, which
// must come from turner.NewLike(t.Params).
func (t *Turner) Count(seq string, pairs structure.Pairs, counts *turner.Params, v float64) error {
	return fold.Decompose(pairs, turner.NewCounter(t.Params, counts, seq, v))
}

// StateDict implements Model.
func (t *Turner) StateDict() layer.StateDict {
	return t.Params.StateDict()
}

// LoadStateDict implements Model. The tables are replaced as a whole.
func (t *Turner) LoadStateDict(sd layer.StateDict) error {
	p, err := turner.FromStateDict(sd)
	if err != nil {
		return err
	}
	t.Params = p
	return nil
}
