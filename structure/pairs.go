// Package structure implements RNA secondary structures as base pair lists
package structure

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPseudoknot is returned for structures with crossing base pairs.
var ErrPseudoknot = errors.New("structure contains crossing base pairs")

// Pairs is a 1-based base pair list. Pairs[0] is unused, Pairs[i] is the
// partner of base i or 0 when base i is unpaired.
type Pairs []int

// New returns an all-unpaired structure of length L.
func New(L int) Pairs {
	return make(Pairs, L+1)
}

// Len returns the number of bases.
func (p Pairs) Len() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Pair sets i and j as partners.
func (p Pairs) Pair(i, j int) {
	p[i] = j
	p[j] = i
}

// NumPairs counts the base pairs.
func (p Pairs) NumPairs() (n int) {
	for i := 1; i < len(p); i++ {
		if p[i] > i {
			n++
		}
	}
	return
}

// Validate checks that the partners are in range, symmetric and nested.
func (p Pairs) Validate() error {
	L := p.Len()
	for i := 1; i <= L; i++ {
		j := p[i]
		if j == 0 {
			continue
		}
		if j < 0 || j > L || j == i {
			return fmt.Errorf("base %d has invalid partner %d", i, j)
		}
		if p[j] != i {
			return fmt.Errorf("base %d pairs with %d but %d pairs with %d", i, j, j, p[j])
		}
	}
	var stack []int
	for i := 1; i <= L; i++ {
		j := p[i]
		switch {
		case j > i:
			stack = append(stack, i)
		case j > 0 && j < i:
			if len(stack) == 0 || stack[len(stack)-1] != j {
				return fmt.Errorf("pair %d-%d: %w", j, i, ErrPseudoknot)
			}
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}

// DotBracket renders a nested structure in dot-bracket notation.
func (p Pairs) DotBracket() string {
	var b strings.Builder
	b.Grow(p.Len())
	for i := 1; i < len(p); i++ {
		switch {
		case p[i] == 0:
			b.WriteByte('.')
		case p[i] > i:
			b.WriteByte('(')
		default:
			b.WriteByte(')')
		}
	}
	return b.String()
}

// FromDotBracket parses dot-bracket notation. Any character other than
// brackets denotes an unpaired base.
func FromDotBracket(s string) (Pairs, error) {
	p := New(len(s))
	var stack []int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			stack = append(stack, i+1)
		case ')':
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced ')' at %d", i+1)
			}
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.Pair(j, i+1)
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unbalanced '(' at %d", stack[len(stack)-1])
	}
	return p, nil
}
