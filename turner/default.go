package turner

import "github.com/neurlang/dnnfold/sequence"

// Energies below are in dcal/mol as published. Rows and columns follow the
// pair type order CG, GC, GU, UG, AU, UA; base columns follow A, C, G, U.

var stack2004 = [6][6]float64{
	{-240, -330, -210, -140, -210, -210},
	{-330, -340, -250, -150, -220, -240},
	{-210, -250, 130, -50, -140, -130},
	{-140, -150, -50, 30, -60, -100},
	{-210, -220, -140, -60, -110, -90},
	{-210, -240, -130, -100, -90, -130},
}

var hairpin2004 = [...]float64{
	540, 560, 570, 540, 600, 550, 640, 650, 660, 670,
	678, 686, 694, 701, 707, 713, 719, 725, 729, 734,
	738, 742, 746, 750, 753, 757, 760, 763,
} // lengths 3..30

var bulge2004 = [...]float64{
	380, 280, 320, 360, 400, 440, 459, 470, 480, 490,
	500, 510, 519, 527, 534, 541, 548, 554, 560, 565,
	571, 576, 580, 585, 589, 594, 598, 602, 605, 609,
} // lengths 1..30

var interior2004 = [...]float64{
	50, 160, 110, 200, 200, 210, 230, 240, 250, 260,
	270, 280, 290, 290, 300, 310, 310, 320, 330, 330,
	340, 340, 350, 350, 350, 360, 360, 370, 370,
} // lengths 2..30

var dangle5of2004 = [6][4]float64{
	{-50, -30, -20, -10},
	{-20, -30, 0, 0},
	{-30, -30, -40, -20},
	{-30, -10, -20, -20},
	{-30, -30, -40, -20},
	{-30, -10, -20, -20},
}

var dangle3of2004 = [6][4]float64{
	{-110, -40, -130, -60},
	{-170, -80, -170, -120},
	{-70, -10, -70, -10},
	{-80, -50, -80, -60},
	{-70, -10, -70, -10},
	{-80, -50, -80, -60},
}

const (
	mlClosing2004  = 930
	mlIntern2004   = -90
	mlBase2004     = 0
	ninio2004      = 60
	maxNinio2004   = 300
	terminalAU2004 = 50
	lxc2004        = 107.856
	duplexInit2004 = 410
)

func score(dcal float64) float64 {
	return -dcal / 100
}

// Default returns the built-in Turner 2004 parameter set. Stacking, loop
// initiation, dangles, asymmetry, multi-loop and terminal AU terms are the
// published values. Terminal mismatches are derived from the dangles and
// the small interior loop tables are approximated by their initiation and
// closure penalties; ReadParFile loads the complete published tables.
func Default() *Params {
	p := New()
	for a := 0; a < 6; a++ {
		for b := 0; b < 6; b++ {
			p.Stack[ipp(a+1, b+1)] = score(stack2004[a][b])
		}
	}
	for i, v := range hairpin2004 {
		p.Hairpin[i+3] = score(v)
	}
	for i, v := range bulge2004 {
		p.Bulge[i+1] = score(v)
	}
	for i, v := range interior2004 {
		p.Internal[i+2] = score(v)
	}

	p.MLClosing[0] = score(mlClosing2004)
	p.MLIntern[0] = score(mlIntern2004)
	p.MLBase[0] = score(mlBase2004)
	p.Ninio[0] = score(ninio2004)
	p.MaxNinio[0] = score(maxNinio2004)
	p.TerminalAU[0] = score(terminalAU2004)
	p.LXC[0] = score(lxc2004)
	p.DuplexInit[0] = score(duplexInit2004)

	bases := []byte{sequence.A, sequence.C, sequence.G, sequence.U}
	for t := sequence.CG; t <= sequence.UA; t++ {
		augu := 0.0
		if sequence.IsAUGU(t) {
			augu = 1
		}
		for bi, b := range bases {
			p.Dangle5[i2(t, int(b))] = score(dangle5of2004[t-1][bi])
			p.Dangle3[i2(t, int(b))] = score(dangle3of2004[t-1][bi])
		}
		for ai, a := range bases {
			for bi, b := range bases {
				mm := score(dangle5of2004[t-1][ai] + dangle3of2004[t-1][bi])
				p.MismatchExternal[i3(t, a, b)] = mm
				p.MismatchMulti[i3(t, a, b)] = mm

				p.MismatchHairpin[i3(t, a, b)] = hairpinBonus(a, b)

				closure := score(70) * augu
				p.MismatchInternal1n[i3(t, a, b)] = closure
				p.MismatchInternal[i3(t, a, b)] = closure + internalBonus(a, b)
				p.MismatchInternal23[i3(t, a, b)] = closure + internalBonus(a, b)
			}
		}
		for t2 := sequence.CG; t2 <= sequence.UA; t2++ {
			n := augu
			if sequence.IsAUGU(t2) {
				n++
			}
			fill(p.Int11[i4(t, t2, 0, 0):i4(t, t2, 0, 0)+nb*nb], score(50+70*n))
			fill(p.Int21[i5(t, t2, 0, 0, 0):i5(t, t2, 0, 0, 0)+nb*nb*nb], score(160+70*n))
			fill(p.Int22[i6(t, t2, 0, 0, 0, 0):i6(t, t2, 0, 0, 0, 0)+nb*nb*nb*nb], score(110+70*n))
		}
	}
	p.Refresh()
	return p
}

// hairpinBonus is the first mismatch bonus of a hairpin loop.
func hairpinBonus(a, b byte) float64 {
	switch {
	case a == sequence.U && b == sequence.U:
		return score(-90)
	case a == sequence.G && b == sequence.A:
		return score(-80)
	case a == sequence.G && b == sequence.G:
		return score(-80)
	}
	return 0
}

func internalBonus(a, b byte) float64 {
	switch {
	case a == sequence.G && b == sequence.A:
		return score(-110)
	case a == sequence.U && b == sequence.U:
		return score(-70)
	}
	return 0
}

func fill(data []float64, v float64) {
	for i := range data {
		data[i] = v
	}
}
