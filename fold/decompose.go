package fold

import (
	"fmt"

	"github.com/neurlang/dnnfold/structure"
)

// Decompose walks the loops of a nested structure and reports each of them
// to v: first the exterior loop, then every loop closed by a base pair.
func Decompose(pairs structure.Pairs, v Visitor) error {
	L := pairs.Len()
	var closing [][2]int

	for i := 1; i <= L; i++ {
		j := pairs[i]
		switch {
		case j == 0:
			v.ExternalUnpaired(i)
		case j > i && j <= L:
			v.ExternalPaired(i, j)
			closing = append(closing, [2]int{i, j})
			i = j
		default:
			return fmt.Errorf("base %d pairs with %d: %w", i, j, structure.ErrPseudoknot)
		}
	}

	for len(closing) > 0 {
		i, j := closing[len(closing)-1][0], closing[len(closing)-1][1]
		closing = closing[:len(closing)-1]
		if pairs[j] != i {
			return fmt.Errorf("base %d pairs with %d but %d pairs with %d: %w", i, j, j, pairs[j], structure.ErrPseudoknot)
		}

		var branches [][2]int
		for k := i + 1; k < j; k++ {
			l := pairs[k]
			if l == 0 {
				continue
			}
			if l < k || l >= j {
				return fmt.Errorf("base %d pairs with %d across (%d, %d): %w", k, l, i, j, structure.ErrPseudoknot)
			}
			branches = append(branches, [2]int{k, l})
			k = l
		}

		switch len(branches) {
		case 0:
			v.Hairpin(i, j)
		case 1:
			v.SingleLoop(i, j, branches[0][0], branches[0][1])
		default:
			v.MultiLoop(i, j)
			for k := i + 1; k < j; k++ {
				if l := pairs[k]; l > k {
					v.MultiPaired(k, l)
					k = l
				} else {
					v.MultiUnpaired(k)
				}
			}
		}
		closing = append(closing, branches...)
	}
	return nil
}

// Evaluate returns the score of pairs under sc.
func Evaluate(sc Scorer, pairs structure.Pairs) (float64, error) {
	e := &evaluator{sc: sc}
	if err := Decompose(pairs, e); err != nil {
		return 0, err
	}
	return e.sum, nil
}

type evaluator struct {
	sc  Scorer
	sum float64
}

func (e *evaluator) Hairpin(i, j int)          { e.sum += e.sc.Hairpin(i, j) }
func (e *evaluator) SingleLoop(i, j, k, l int) { e.sum += e.sc.SingleLoop(i, j, k, l) }
func (e *evaluator) MultiLoop(i, j int)        { e.sum += e.sc.MultiLoop(i, j) }
func (e *evaluator) MultiPaired(i, j int)      { e.sum += e.sc.MultiPaired(i, j) }
func (e *evaluator) MultiUnpaired(i int)       { e.sum += e.sc.MultiUnpaired(i) }
func (e *evaluator) ExternalPaired(i, j int)   { e.sum += e.sc.ExternalPaired(i, j) }
func (e *evaluator) ExternalUnpaired(i int)    { e.sum += e.sc.ExternalUnpaired(i) }
