// Package turner implements the nearest neighbor (Turner) scoring model for
// RNA secondary structures. Scores are negated free energies in kcal/mol,
// so larger is more stable.
package turner

import (
	"fmt"

	"github.com/neurlang/dnnfold/layer"
	"github.com/neurlang/dnnfold/sequence"
)

// MaxLoop is the longest loop with a tabulated length score. Longer loops are
// extrapolated logarithmically.
const MaxLoop = 30

const (
	np = sequence.NumPairTypes
	nb = sequence.NumBases
)

// Params is a complete nearest neighbor parameter set.
type Params struct {
	Stack []float64 // [pair][pair]

	Hairpin  []float64 // [MaxLoop+1]
	Bulge    []float64 // [MaxLoop+1]
	Internal []float64 // [MaxLoop+1]

	// The length tables hold increments instead of absolute values.
	HairpinAtLeast  bool
	BulgeAtLeast    bool
	InternalAtLeast bool

	MismatchExternal   []float64 // [pair][base][base]
	MismatchHairpin    []float64
	MismatchInternal   []float64
	MismatchInternal1n []float64
	MismatchInternal23 []float64
	MismatchMulti      []float64

	Int11 []float64 // [pair][pair][base][base]
	Int21 []float64 // [pair][pair][base][base][base]
	Int22 []float64 // [pair][pair][base][base][base][base]

	Dangle5 []float64 // [pair][base]
	Dangle3 []float64 // [pair][base]

	MLBase     []float64 // [1]
	MLClosing  []float64
	MLIntern   []float64
	Ninio      []float64
	MaxNinio   []float64
	DuplexInit []float64
	TerminalAU []float64
	LXC        []float64

	cacheHairpin, cacheBulge, cacheInternal []float64
}

// New returns a zeroed parameter set.
func New() *Params {
	p := &Params{
		Stack:              make([]float64, np*np),
		Hairpin:            make([]float64, MaxLoop+1),
		Bulge:              make([]float64, MaxLoop+1),
		Internal:           make([]float64, MaxLoop+1),
		MismatchExternal:   make([]float64, np*nb*nb),
		MismatchHairpin:    make([]float64, np*nb*nb),
		MismatchInternal:   make([]float64, np*nb*nb),
		MismatchInternal1n: make([]float64, np*nb*nb),
		MismatchInternal23: make([]float64, np*nb*nb),
		MismatchMulti:      make([]float64, np*nb*nb),
		Int11:              make([]float64, np*np*nb*nb),
		Int21:              make([]float64, np*np*nb*nb*nb),
		Int22:              make([]float64, np*np*nb*nb*nb*nb),
		Dangle5:            make([]float64, np*nb),
		Dangle3:            make([]float64, np*nb),
		MLBase:             make([]float64, 1),
		MLClosing:          make([]float64, 1),
		MLIntern:           make([]float64, 1),
		Ninio:              make([]float64, 1),
		MaxNinio:           make([]float64, 1),
		DuplexInit:         make([]float64, 1),
		TerminalAU:         make([]float64, 1),
		LXC:                make([]float64, 1),
	}
	p.Refresh()
	return p
}

// NewLike returns a zeroed parameter set with the same length table forms as p.
// It is used as a count accumulator.
func NewLike(p *Params) *Params {
	q := New()
	q.HairpinAtLeast = p.HairpinAtLeast
	q.BulgeAtLeast = p.BulgeAtLeast
	q.InternalAtLeast = p.InternalAtLeast
	q.Refresh()
	return q
}

func lengthName(base string, atLeast bool) string {
	if atLeast {
		return base + "_at_least"
	}
	return base
}

// Named lists the tables with the given name prefix ("score" or "count").
func (p *Params) Named(prefix string) []layer.Param {
	t := func(name string, data []float64, shape ...int) layer.Param {
		return layer.Param{Name: prefix + "_" + name, Shape: shape, Data: data}
	}
	return []layer.Param{
		t("stack", p.Stack, np, np),
		t(lengthName("hairpin", p.HairpinAtLeast), p.Hairpin, MaxLoop+1),
		t(lengthName("bulge", p.BulgeAtLeast), p.Bulge, MaxLoop+1),
		t(lengthName("internal", p.InternalAtLeast), p.Internal, MaxLoop+1),
		t("mismatch_external", p.MismatchExternal, np, nb, nb),
		t("mismatch_hairpin", p.MismatchHairpin, np, nb, nb),
		t("mismatch_internal", p.MismatchInternal, np, nb, nb),
		t("mismatch_internal_1n", p.MismatchInternal1n, np, nb, nb),
		t("mismatch_internal_23", p.MismatchInternal23, np, nb, nb),
		t("mismatch_multi", p.MismatchMulti, np, nb, nb),
		t("int11", p.Int11, np, np, nb, nb),
		t("int21", p.Int21, np, np, nb, nb, nb),
		t("int22", p.Int22, np, np, nb, nb, nb, nb),
		t("dangle5", p.Dangle5, np, nb),
		t("dangle3", p.Dangle3, np, nb),
		t("ml_base", p.MLBase, 1),
		t("ml_closing", p.MLClosing, 1),
		t("ml_intern", p.MLIntern, 1),
		t("ninio", p.Ninio, 1),
		t("max_ninio", p.MaxNinio, 1),
		t("duplex_init", p.DuplexInit, 1),
		t("terminalAU", p.TerminalAU, 1),
		t("lxc", p.LXC, 1),
	}
}

// Params lists the score tables under their parameter file names.
func (p *Params) Params() []layer.Param {
	return p.Named("score")
}

// StateDict exports the score tables.
func (p *Params) StateDict() layer.StateDict {
	return layer.Export(p.Params())
}

// LoadStateDict replaces the score tables with the tensors in sd. The length
// table forms are taken from the tensor names present.
func (p *Params) LoadStateDict(sd layer.StateDict) error {
	_, p.HairpinAtLeast = sd["score_hairpin_at_least"]
	_, p.BulgeAtLeast = sd["score_bulge_at_least"]
	_, p.InternalAtLeast = sd["score_internal_at_least"]
	if err := layer.Load(p.Params(), sd, true); err != nil {
		return fmt.Errorf("turner parameters: %w", err)
	}
	p.Refresh()
	return nil
}

// FromStateDict builds a parameter set from a parameter file.
func FromStateDict(sd layer.StateDict) (*Params, error) {
	p := New()
	if err := p.LoadStateDict(sd); err != nil {
		return nil, err
	}
	return p, nil
}

// Refresh rebuilds the absolute loop length tables. It must be called after
// the length tables are modified.
func (p *Params) Refresh() {
	p.cacheHairpin = cumulate(p.Hairpin, p.HairpinAtLeast, 4)
	p.cacheBulge = cumulate(p.Bulge, p.BulgeAtLeast, 2)
	p.cacheInternal = cumulate(p.Internal, p.InternalAtLeast, 3)
}

func cumulate(src []float64, atLeast bool, from int) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	if atLeast {
		for i := from; i < len(out); i++ {
			out[i] = out[i-1] + src[i]
		}
	}
	return out
}

func i2(a, b int) int { return a*nb + b }

func ipp(a, b int) int { return a*np + b }

func i3(t int, a, b byte) int { return (t*nb+int(a))*nb + int(b) }

func i4(t1, t2 int, a, b byte) int { return ((t1*np+t2)*nb+int(a))*nb + int(b) }

func i5(t1, t2 int, a, b, c byte) int {
	return (((t1*np+t2)*nb+int(a))*nb+int(b))*nb + int(c)
}

func i6(t1, t2 int, a, b, c, d byte) int {
	return ((((t1*np+t2)*nb+int(a))*nb+int(b))*nb+int(c))*nb + int(d)
}
