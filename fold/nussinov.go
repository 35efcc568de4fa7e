package fold

import "github.com/neurlang/dnnfold/structure"

// Nussinov computes the structure maximising the sum of pair and unpaired
// base scores of ps.
func Nussinov(ps PairScorer, opt Options) (float64, structure.Pairs) {
	L := ps.Len()
	if L == 0 {
		return 0, structure.New(0)
	}
	opt = opt.normalize()
	n := newTable(L, 0)
	bp := make([]int32, (L+2)*(L+2))

	for j := 1; j <= L; j++ {
		for i := j; i >= 1; i-- {
			best := n.at(i+1, j) + ps.Unpaired(i)
			var bk int32
			for k := i + opt.MinHairpin + 1; k <= j; k++ {
				if !ps.CanPair(i, k) {
					continue
				}
				if v := ps.Paired(i, k) + n.at(i+1, k-1) + n.at(k+1, j); v > best {
					best, bk = v, int32(k)
				}
			}
			n.set(i, j, best)
			bp[i*(L+2)+j] = bk
		}
	}

	pairs := structure.New(L)
	stack := [][2]int{{1, L}}
	for len(stack) > 0 {
		i, j := stack[len(stack)-1][0], stack[len(stack)-1][1]
		stack = stack[:len(stack)-1]
		if i >= j {
			continue
		}
		k := int(bp[i*(L+2)+j])
		if k == 0 {
			stack = append(stack, [2]int{i + 1, j})
			continue
		}
		pairs.Pair(i, k)
		stack = append(stack, [2]int{i + 1, k - 1}, [2]int{k + 1, j})
	}
	return n.at(1, L), pairs
}

// EvaluatePairs returns the score of pairs under ps.
func EvaluatePairs(ps PairScorer, pairs structure.Pairs) float64 {
	var e float64
	for i := 1; i <= pairs.Len(); i++ {
		switch j := pairs[i]; {
		case j == 0:
			e += ps.Unpaired(i)
		case j > i:
			e += ps.Paired(i, j)
		}
	}
	return e
}
