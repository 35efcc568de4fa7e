package fold

import "github.com/neurlang/dnnfold/structure"

// back-pointer kinds
const (
	bpNone uint8 = iota
	bpHairpin
	bpSingle
	bpMulti
	bpM1Pair
	bpM1Extend
	bpMUnpaired
	bpMSingle
	bpMBifurcation
	bpFUnpaired
	bpFPair
)

type backPointer struct {
	kind uint8
	a, b int32
}

type zuker struct {
	sc  Scorer
	opt Options
	L   int

	c, m, m1    table
	bc, bm, bm1 []backPointer
	f           []float64
	bf          []backPointer
}

// Zuker computes the highest scoring nested structure under the nearest
// neighbor decomposition of sc. It returns the score and the structure.
func Zuker(sc Scorer, opt Options) (float64, structure.Pairs) {
	L := sc.Len()
	if L == 0 {
		return 0, structure.New(0)
	}
	z := &zuker{
		sc:  sc,
		opt: opt.normalize(),
		L:   L,
		c:   newTable(L, negInf),
		m:   newTable(L, negInf),
		m1:  newTable(L, negInf),
		bc:  make([]backPointer, (L+2)*(L+2)),
		bm:  make([]backPointer, (L+2)*(L+2)),
		bm1: make([]backPointer, (L+2)*(L+2)),
		f:   make([]float64, L+1),
		bf:  make([]backPointer, L+1),
	}
	z.fill()
	return z.f[L], z.traceback()
}

func (z *zuker) idx(i, j int) int {
	return i*(z.L+2) + j
}

func (z *zuker) fill() {
	sc, L := z.sc, z.L
	for j := 1; j <= L; j++ {
		for i := j; i >= 1; i-- {
			if j-i-1 >= z.opt.MinHairpin && sc.CanPair(i, j) {
				z.fillC(i, j)
			}
			z.fillM1(i, j)
			z.fillM(i, j)
		}
	}

	z.f[0] = 0
	for j := 1; j <= L; j++ {
		best := z.f[j-1] + sc.ExternalUnpaired(j)
		bp := backPointer{kind: bpFUnpaired}
		for k := 1; k < j-z.opt.MinHairpin; k++ {
			c := z.c.at(k, j)
			if c == negInf {
				continue
			}
			if v := z.f[k-1] + c + sc.ExternalPaired(k, j); v > best {
				best, bp = v, backPointer{kind: bpFPair, a: int32(k)}
			}
		}
		z.f[j], z.bf[j] = best, bp
	}
}

func (z *zuker) fillC(i, j int) {
	sc, opt := z.sc, z.opt
	best := sc.Hairpin(i, j)
	bp := backPointer{kind: bpHairpin}

	for k := i + 1; k <= j-2-opt.MinHairpin && k-i-1 <= opt.MaxInternal; k++ {
		l1 := k - i - 1
		for l := j - 1; l-k-1 >= opt.MinHairpin && l1+(j-l-1) <= opt.MaxInternal; l-- {
			c := z.c.at(k, l)
			if c == negInf {
				continue
			}
			if v := sc.SingleLoop(i, j, k, l) + c; v > best {
				best, bp = v, backPointer{kind: bpSingle, a: int32(k), b: int32(l)}
			}
		}
	}

	inner, u0 := negInf, 0
	for u := i + 2; u < j; u++ {
		a, b := z.m.at(i+1, u-1), z.m1.at(u, j-1)
		if a == negInf || b == negInf {
			continue
		}
		if a+b > inner {
			inner, u0 = a+b, u
		}
	}
	if inner > negInf {
		if v := sc.MultiLoop(i, j) + inner; v > best {
			best, bp = v, backPointer{kind: bpMulti, a: int32(u0)}
		}
	}

	z.c.set(i, j, best)
	z.bc[z.idx(i, j)] = bp
}

func (z *zuker) fillM1(i, j int) {
	best, bp := negInf, backPointer{}
	if c := z.c.at(i, j); c > negInf {
		best, bp = c+z.sc.MultiPaired(i, j), backPointer{kind: bpM1Pair}
	}
	if j > i {
		if v := z.m1.at(i, j-1); v > negInf {
			if v += z.sc.MultiUnpaired(j); v > best {
				best, bp = v, backPointer{kind: bpM1Extend}
			}
		}
	}
	z.m1.set(i, j, best)
	z.bm1[z.idx(i, j)] = bp
}

func (z *zuker) fillM(i, j int) {
	best, bp := negInf, backPointer{}
	if v := z.m1.at(i, j); v > negInf {
		best, bp = v, backPointer{kind: bpMSingle}
	}
	if j > i {
		if v := z.m.at(i+1, j); v > negInf {
			if v += z.sc.MultiUnpaired(i); v > best {
				best, bp = v, backPointer{kind: bpMUnpaired}
			}
		}
	}
	for u := i + 1; u <= j; u++ {
		a, b := z.m.at(i, u-1), z.m1.at(u, j)
		if a == negInf || b == negInf {
			continue
		}
		if a+b > best {
			best, bp = a+b, backPointer{kind: bpMBifurcation, a: int32(u)}
		}
	}
	z.m.set(i, j, best)
	z.bm[z.idx(i, j)] = bp
}

type frame struct {
	t    uint8 // 'C', 'M' or '1' for M1
	i, j int
}

func (z *zuker) traceback() structure.Pairs {
	pairs := structure.New(z.L)
	var stack []frame

	for j := z.L; j > 0; {
		bp := z.bf[j]
		if bp.kind == bpFPair {
			k := int(bp.a)
			stack = append(stack, frame{'C', k, j})
			j = k - 1
		} else {
			j--
		}
	}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i, j := fr.i, fr.j
		switch fr.t {
		case 'C':
			pairs.Pair(i, j)
			bp := z.bc[z.idx(i, j)]
			switch bp.kind {
			case bpSingle:
				stack = append(stack, frame{'C', int(bp.a), int(bp.b)})
			case bpMulti:
				u := int(bp.a)
				stack = append(stack, frame{'M', i + 1, u - 1}, frame{'1', u, j - 1})
			}
		case '1':
			switch z.bm1[z.idx(i, j)].kind {
			case bpM1Pair:
				stack = append(stack, frame{'C', i, j})
			case bpM1Extend:
				stack = append(stack, frame{'1', i, j - 1})
			}
		case 'M':
			bp := z.bm[z.idx(i, j)]
			switch bp.kind {
			case bpMSingle:
				stack = append(stack, frame{'1', i, j})
			case bpMUnpaired:
				stack = append(stack, frame{'M', i + 1, j})
			case bpMBifurcation:
				u := int(bp.a)
				stack = append(stack, frame{'M', i, u - 1}, frame{'1', u, j})
			}
		}
	}
	return pairs
}
