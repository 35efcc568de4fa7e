package turner

import (
	"math"

	"github.com/neurlang/dnnfold/sequence"
)

// Scorer scores the loops of one sequence with a parameter set. Positions
// are 1-based.
type Scorer struct {
	p *Params
	s []byte
	L int
}

// NewScorer prepares seq for scoring with p.
func NewScorer(p *Params, seq string) *Scorer {
	return &Scorer{p: p, s: sequence.EncodePadded(seq), L: len(seq)}
}

// Len returns the sequence length.
func (sc *Scorer) Len() int {
	return sc.L
}

// CanPair reports whether bases i and j form a canonical or wobble pair.
func (sc *Scorer) CanPair(i, j int) bool {
	return sequence.CanPair(sc.s[i], sc.s[j])
}

func (sc *Scorer) pair(i, j int) int {
	return sequence.PairType(sc.s[i], sc.s[j])
}

// loopLength returns the length score of a loop with n unpaired bases.
func (sc *Scorer) loopLength(table []float64, n int) float64 {
	if n <= MaxLoop {
		return table[n]
	}
	return table[MaxLoop] + sc.p.LXC[0]*math.Log(float64(n)/MaxLoop)
}

// Hairpin scores the hairpin loop closed by (i, j).
func (sc *Scorer) Hairpin(i, j int) float64 {
	p, s := sc.p, sc.s
	l := j - i - 1
	e := sc.loopLength(p.cacheHairpin, l)
	if l < 3 {
		return e
	}
	t := sc.pair(i, j)
	if l == 3 {
		if sequence.IsAUGU(t) {
			e += p.TerminalAU[0]
		}
	} else {
		e += p.MismatchHairpin[i3(t, s[i+1], s[j-1])]
	}
	return e
}

// SingleLoop scores the stack, bulge or internal loop between the outer
// pair (i, j) and the inner pair (k, l).
func (sc *Scorer) SingleLoop(i, j, k, l int) float64 {
	p, s := sc.p, sc.s
	t1 := sc.pair(i, j)
	t2 := sc.pair(l, k)
	l1 := k - i - 1
	l2 := j - l - 1
	ls, ll := l1, l2
	if ls > ll {
		ls, ll = ll, ls
	}

	switch {
	case ll == 0: // stack
		return p.Stack[ipp(t1, t2)]

	case ls == 0: // bulge
		e := sc.loopLength(p.cacheBulge, ll)
		if ll == 1 {
			e += p.Stack[ipp(t1, t2)]
		} else {
			if sequence.IsAUGU(t1) {
				e += p.TerminalAU[0]
			}
			if sequence.IsAUGU(t2) {
				e += p.TerminalAU[0]
			}
		}
		return e

	case ll == 1 && ls == 1:
		return p.Int11[i4(t1, t2, s[i+1], s[j-1])]

	case l1 == 2 && l2 == 1:
		return p.Int21[i5(t2, t1, s[l+1], s[i+1], s[k-1])]

	case l1 == 1 && l2 == 2:
		return p.Int21[i5(t1, t2, s[i+1], s[l+1], s[j-1])]

	case ls == 1: // 1xn
		e := sc.loopLength(p.cacheInternal, ll+1)
		e += math.Max(p.MaxNinio[0], float64(ll-ls)*p.Ninio[0])
		e += p.MismatchInternal1n[i3(t1, s[i+1], s[j-1])] + p.MismatchInternal1n[i3(t2, s[l+1], s[k-1])]
		return e

	case ls == 2 && ll == 2:
		return p.Int22[i6(t1, t2, s[i+1], s[k-1], s[l+1], s[j-1])]

	case ls == 2 && ll == 3:
		e := p.cacheInternal[ls+ll] + p.Ninio[0]
		e += p.MismatchInternal23[i3(t1, s[i+1], s[j-1])] + p.MismatchInternal23[i3(t2, s[l+1], s[k-1])]
		return e

	default:
		e := sc.loopLength(p.cacheInternal, ls+ll)
		e += math.Max(p.MaxNinio[0], float64(ll-ls)*p.Ninio[0])
		e += p.MismatchInternal[i3(t1, s[i+1], s[j-1])] + p.MismatchInternal[i3(t2, s[l+1], s[k-1])]
		return e
	}
}

// MultiLoop scores the closing pair (i, j) of a multi-branch loop.
func (sc *Scorer) MultiLoop(i, j int) float64 {
	p, s := sc.p, sc.s
	t := sc.pair(j, i)
	e := p.MismatchMulti[i3(t, s[j-1], s[i+1])]
	if sequence.IsAUGU(t) {
		e += p.TerminalAU[0]
	}
	return e + p.MLIntern[0] + p.MLClosing[0]
}

// MultiPaired scores the branch (i, j) inside a multi-branch loop.
func (sc *Scorer) MultiPaired(i, j int) float64 {
	p := sc.p
	t := sc.pair(i, j)
	e := sc.terminal(p.MismatchMulti, t, i, j)
	if sequence.IsAUGU(t) {
		e += p.TerminalAU[0]
	}
	return e + p.MLIntern[0]
}

// MultiUnpaired scores the unpaired base i inside a multi-branch loop.
func (sc *Scorer) MultiUnpaired(i int) float64 {
	return sc.p.MLBase[0]
}

// ExternalPaired scores the branch (i, j) in the exterior loop.
func (sc *Scorer) ExternalPaired(i, j int) float64 {
	p := sc.p
	t := sc.pair(i, j)
	e := sc.terminal(p.MismatchExternal, t, i, j)
	if sequence.IsAUGU(t) {
		e += p.TerminalAU[0]
	}
	return e
}

// ExternalUnpaired scores the unpaired base i in the exterior loop.
func (sc *Scorer) ExternalUnpaired(i int) float64 {
	return 0
}

// terminal returns the mismatch or dangle score of the helix end (i, j),
// depending on which flanking bases exist.
func (sc *Scorer) terminal(mismatch []float64, t, i, j int) float64 {
	p, s := sc.p, sc.s
	switch {
	case i-1 >= 1 && j+1 <= sc.L:
		return mismatch[i3(t, s[i-1], s[j+1])]
	case i-1 >= 1:
		return p.Dangle5[i2(t, int(s[i-1]))]
	case j+1 <= sc.L:
		return p.Dangle3[i2(t, int(s[j+1]))]
	}
	return 0
}
