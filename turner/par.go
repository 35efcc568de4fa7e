package turner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrPar is wrapped by errors reading a ViennaRNA parameter file.
var ErrPar = errors.New("malformed parameter file")

const (
	parInf = 10000000
	parDef = -50

	// pair types in the file, including the nonstandard pair
	parPairs = np
)

type parSection struct {
	name string
	size int
	load func(p *Params, v []float64)
}

var parSections = []parSection{
	{"stack", parPairs * parPairs, func(p *Params, v []float64) {
		for a := 1; a < np; a++ {
			for b := 1; b < np; b++ {
				p.Stack[ipp(a, b)] = v[(a-1)*parPairs+b-1]
			}
		}
	}},
	{"mismatch_hairpin", parPairs * nb * nb, parMismatch(func(p *Params) []float64 { return p.MismatchHairpin })},
	{"mismatch_interior", parPairs * nb * nb, parMismatch(func(p *Params) []float64 { return p.MismatchInternal })},
	{"mismatch_interior_1n", parPairs * nb * nb, parMismatch(func(p *Params) []float64 { return p.MismatchInternal1n })},
	{"mismatch_interior_23", parPairs * nb * nb, parMismatch(func(p *Params) []float64 { return p.MismatchInternal23 })},
	{"mismatch_multi", parPairs * nb * nb, parMismatch(func(p *Params) []float64 { return p.MismatchMulti })},
	{"mismatch_exterior", parPairs * nb * nb, parMismatch(func(p *Params) []float64 { return p.MismatchExternal })},
	{"dangle5", parPairs * nb, parDangle(func(p *Params) []float64 { return p.Dangle5 })},
	{"dangle3", parPairs * nb, parDangle(func(p *Params) []float64 { return p.Dangle3 })},
	{"int11", parPairs * parPairs * nb * nb, func(p *Params, v []float64) {
		for t1 := 1; t1 < np; t1++ {
			for t2 := 1; t2 < np; t2++ {
				block := v[((t1-1)*parPairs+t2-1)*nb*nb:]
				for a := byte(0); a < nb; a++ {
					for b := byte(0); b < nb; b++ {
						p.Int11[i4(t1, t2, a, b)] = block[int(a)*nb+int(b)]
					}
				}
			}
		}
	}},
	{"int21", parPairs * parPairs * nb * nb * nb, func(p *Params, v []float64) {
		for t1 := 1; t1 < np; t1++ {
			for t2 := 1; t2 < np; t2++ {
				block := v[((t1-1)*parPairs+t2-1)*nb*nb*nb:]
				for a := byte(0); a < nb; a++ {
					for b := byte(0); b < nb; b++ {
						for c := byte(0); c < nb; c++ {
							p.Int21[i5(t1, t2, a, b, c)] = block[(int(a)*nb+int(b))*nb+int(c)]
						}
					}
				}
			}
		}
	}},
	// int22 lists the canonical pairs and the bases A, C, G, U only
	{"int22", (np - 1) * (np - 1) * 256, func(p *Params, v []float64) {
		for t1 := 1; t1 < np; t1++ {
			for t2 := 1; t2 < np; t2++ {
				block := v[((t1-1)*(np-1)+t2-1)*256:]
				n := 0
				for a := byte(1); a < nb; a++ {
					for b := byte(1); b < nb; b++ {
						for c := byte(1); c < nb; c++ {
							for d := byte(1); d < nb; d++ {
								p.Int22[i6(t1, t2, a, b, c, d)] = block[n]
								n++
							}
						}
					}
				}
			}
		}
	}},
	{"hairpin", MaxLoop + 1, func(p *Params, v []float64) { copy(p.Hairpin, v) }},
	{"bulge", MaxLoop + 1, func(p *Params, v []float64) { copy(p.Bulge, v) }},
	{"interior", MaxLoop + 1, func(p *Params, v []float64) { copy(p.Internal, v) }},
	// values alternate with their enthalpies
	{"ML_params", 6, func(p *Params, v []float64) {
		p.MLBase[0], p.MLClosing[0], p.MLIntern[0] = v[0], v[2], v[4]
	}},
	{"NINIO", 3, func(p *Params, v []float64) {
		p.Ninio[0], p.MaxNinio[0] = v[0], v[2]
	}},
	{"Misc", 6, func(p *Params, v []float64) {
		p.DuplexInit[0], p.TerminalAU[0], p.LXC[0] = v[0], v[2], v[4]
	}},
}

func parMismatch(table func(*Params) []float64) func(*Params, []float64) {
	return func(p *Params, v []float64) {
		dst := table(p)
		for t := 1; t < np; t++ {
			for a := byte(0); a < nb; a++ {
				for b := byte(0); b < nb; b++ {
					dst[i3(t, a, b)] = v[((t-1)*nb+int(a))*nb+int(b)]
				}
			}
		}
	}
}

func parDangle(table func(*Params) []float64) func(*Params, []float64) {
	return func(p *Params, v []float64) {
		dst := table(p)
		for t := 1; t < np; t++ {
			copy(dst[i2(t, 0):i2(t, 0)+nb], v[(t-1)*nb:t*nb])
		}
	}
}

// ReadParFile reads a parameter file in the ViennaRNA 2.0 format, such as
// rna_turner2004.par.
func ReadParFile(path string) (*Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ReadPar(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ReadPar reads a parameter file in the ViennaRNA 2.0 format. Free energies
// in dcal/mol become scores. Enthalpies and the special hairpin sections are
// skipped, as are the entries of the nonstandard pair type.
func ReadPar(r io.Reader) (*Params, error) {
	tokens, err := parTokens(r)
	if err != nil {
		return nil, err
	}
	p := New()
	found := 0
	for _, s := range parSections {
		tok, ok := tokens[s.name]
		if !ok {
			continue
		}
		if len(tok) < s.size {
			return nil, fmt.Errorf("%w: section %s has %d values, want %d", ErrPar, s.name, len(tok), s.size)
		}
		v := make([]float64, s.size)
		for i := range v {
			e, err := parValue(tok[i])
			if err != nil {
				return nil, fmt.Errorf("%w: section %s: %v", ErrPar, s.name, err)
			}
			v[i] = score(e)
		}
		s.load(p, v)
		found++
	}
	if found == 0 {
		return nil, fmt.Errorf("%w: no known sections", ErrPar)
	}
	p.Refresh()
	return p, nil
}

// parTokens splits the file into the value tokens of each section.
func parTokens(r io.Reader) (map[string][]string, error) {
	tokens := make(map[string][]string)
	section := ""
	comment := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		var b strings.Builder
		for len(line) > 0 {
			if comment {
				end := strings.Index(line, "*/")
				if end < 0 {
					line = ""
					break
				}
				comment = false
				line = line[end+2:]
				continue
			}
			start := strings.Index(line, "/*")
			if start < 0 {
				b.WriteString(line)
				break
			}
			b.WriteString(line[:start])
			b.WriteByte(' ')
			comment = true
			line = line[start+2:]
		}
		text := strings.TrimSpace(b.String())
		if strings.HasPrefix(text, "##") {
			continue
		}
		if strings.HasPrefix(text, "#") {
			section = strings.TrimSpace(text[1:])
			if section == "END" {
				break
			}
			continue
		}
		if section == "" {
			continue
		}
		tokens[section] = append(tokens[section], strings.Fields(text)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func parValue(tok string) (float64, error) {
	switch tok {
	case "INF":
		return parInf, nil
	case "DEF":
		return parDef, nil
	}
	return strconv.ParseFloat(tok, 64)
}
