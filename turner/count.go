package turner

import (
	"math"

	"github.com/neurlang/dnnfold/sequence"
)

// Counter accumulates how often each parameter is used by the loops of a
// structure. Every visited loop adds the weight V to the entries of Counts
// that its score reads.
type Counter struct {
	Counts *Params
	V      float64

	sc *Scorer
}

// NewCounter returns a counter for seq scored with p. Counts must have the
// same length table forms as p, see NewLike.
func NewCounter(p, counts *Params, seq string, v float64) *Counter {
	return &Counter{Counts: counts, V: v, sc: NewScorer(p, seq)}
}

// countLength adds v to the length entries read for a loop of n bases. In the
// "at least" form every increment from min up to n is used.
func (c *Counter) countLength(table []float64, atLeast bool, min, n int) {
	v := c.V
	top := n
	if n > MaxLoop {
		top = MaxLoop
		c.Counts.LXC[0] += v * math.Log(float64(n)/MaxLoop)
	}
	if !atLeast {
		table[top] += v
		return
	}
	for k := top; k >= min; k-- {
		table[k] += v
	}
}

func (c *Counter) countNinio(ls, ll int) {
	p := c.sc.p
	if p.MaxNinio[0] > float64(ll-ls)*p.Ninio[0] {
		c.Counts.MaxNinio[0] += c.V
	} else {
		c.Counts.Ninio[0] += c.V * float64(ll-ls)
	}
}

// Hairpin counts the hairpin loop closed by (i, j).
func (c *Counter) Hairpin(i, j int) {
	q, s := c.Counts, c.sc.s
	l := j - i - 1
	c.countLength(q.Hairpin, q.HairpinAtLeast, 3, l)
	if l < 3 {
		return
	}
	t := c.sc.pair(i, j)
	if l == 3 {
		if sequence.IsAUGU(t) {
			q.TerminalAU[0] += c.V
		}
	} else {
		q.MismatchHairpin[i3(t, s[i+1], s[j-1])] += c.V
	}
}

// SingleLoop counts the loop between (i, j) and the inner pair (k, l).
func (c *Counter) SingleLoop(i, j, k, l int) {
	q, s, v := c.Counts, c.sc.s, c.V
	t1 := c.sc.pair(i, j)
	t2 := c.sc.pair(l, k)
	l1 := k - i - 1
	l2 := j - l - 1
	ls, ll := l1, l2
	if ls > ll {
		ls, ll = ll, ls
	}

	switch {
	case ll == 0:
		q.Stack[ipp(t1, t2)] += v

	case ls == 0:
		c.countLength(q.Bulge, q.BulgeAtLeast, 1, ll)
		if ll == 1 {
			q.Stack[ipp(t1, t2)] += v
		} else {
			if sequence.IsAUGU(t1) {
				q.TerminalAU[0] += v
			}
			if sequence.IsAUGU(t2) {
				q.TerminalAU[0] += v
			}
		}

	case ll == 1 && ls == 1:
		q.Int11[i4(t1, t2, s[i+1], s[j-1])] += v

	case l1 == 2 && l2 == 1:
		q.Int21[i5(t2, t1, s[l+1], s[i+1], s[k-1])] += v

	case l1 == 1 && l2 == 2:
		q.Int21[i5(t1, t2, s[i+1], s[l+1], s[j-1])] += v

	case ls == 1:
		c.countLength(q.Internal, q.InternalAtLeast, 2, ll+1)
		c.countNinio(ls, ll)
		q.MismatchInternal1n[i3(t1, s[i+1], s[j-1])] += v
		q.MismatchInternal1n[i3(t2, s[l+1], s[k-1])] += v

	case ls == 2 && ll == 2:
		q.Int22[i6(t1, t2, s[i+1], s[k-1], s[l+1], s[j-1])] += v

	case ls == 2 && ll == 3:
		c.countLength(q.Internal, q.InternalAtLeast, 2, ls+ll)
		q.Ninio[0] += v
		q.MismatchInternal23[i3(t1, s[i+1], s[j-1])] += v
		q.MismatchInternal23[i3(t2, s[l+1], s[k-1])] += v

	default:
		c.countLength(q.Internal, q.InternalAtLeast, 2, ls+ll)
		c.countNinio(ls, ll)
		q.MismatchInternal[i3(t1, s[i+1], s[j-1])] += v
		q.MismatchInternal[i3(t2, s[l+1], s[k-1])] += v
	}
}

// MultiLoop counts the closing pair (i, j) of a multi-branch loop.
func (c *Counter) MultiLoop(i, j int) {
	q, s, v := c.Counts, c.sc.s, c.V
	t := c.sc.pair(j, i)
	q.MismatchMulti[i3(t, s[j-1], s[i+1])] += v
	if sequence.IsAUGU(t) {
		q.TerminalAU[0] += v
	}
	q.MLIntern[0] += v
	q.MLClosing[0] += v
}

// MultiPaired counts the branch (i, j) inside a multi-branch loop.
func (c *Counter) MultiPaired(i, j int) {
	q := c.Counts
	t := c.sc.pair(i, j)
	c.countTerminal(q.MismatchMulti, t, i, j)
	if sequence.IsAUGU(t) {
		q.TerminalAU[0] += c.V
	}
	q.MLIntern[0] += c.V
}

// MultiUnpaired counts the unpaired base i inside a multi-branch loop.
func (c *Counter) MultiUnpaired(i int) {
	c.Counts.MLBase[0] += c.V
}

// ExternalPaired counts the branch (i, j) in the exterior loop.
func (c *Counter) ExternalPaired(i, j int) {
	t := c.sc.pair(i, j)
	c.countTerminal(c.Counts.MismatchExternal, t, i, j)
	if sequence.IsAUGU(t) {
		c.Counts.TerminalAU[0] += c.V
	}
}

// ExternalUnpaired reads no parameter.
func (c *Counter) ExternalUnpaired(i int) {}

func (c *Counter) countTerminal(mismatch []float64, t, i, j int) {
	q, s, L := c.Counts, c.sc.s, c.sc.L
	switch {
	case i-1 >= 1 && j+1 <= L:
		mismatch[i3(t, s[i-1], s[j+1])] += c.V
	case i-1 >= 1:
		q.Dangle5[i2(t, int(s[i-1]))] += c.V
	case j+1 <= L:
		q.Dangle3[i2(t, int(s[j+1]))] += c.V
	}
}
