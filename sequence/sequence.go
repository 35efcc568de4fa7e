// Package sequence implements the nucleotide encoding shared by the folding engines
package sequence

// NumBases is the size of the base alphabet including the unknown base 0.
const NumBases = 5

// NumPairTypes is the number of distinguishable base pair types including the non-pair 0.
const NumPairTypes = 7

// Base codes.
const (
	N byte = iota
	A
	C
	G
	U
)

// Pair type codes.
const (
	NP = iota
	CG
	GC
	GU
	UG
	AU
	UA
)

var pairTable = [NumBases][NumBases]int{
	// _  A   C   G   U
	{NP, NP, NP, NP, NP}, // _
	{NP, NP, NP, NP, AU}, // A
	{NP, NP, NP, CG, NP}, // C
	{NP, NP, GC, NP, GU}, // G
	{NP, UA, NP, UG, NP}, // U
}

// Code converts a single nucleotide letter into its base code. T is read as U
// and anything outside ACGTU maps to N.
func Code(c byte) byte {
	switch c | 0x20 {
	case 'a':
		return A
	case 'c':
		return C
	case 'g':
		return G
	case 'u', 't':
		return U
	default:
		return N
	}
}

// Encode converts a sequence into base codes.
func Encode(seq string) []byte {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		out[i] = Code(seq[i])
	}
	return out
}

// EncodePadded converts a sequence into base codes at positions 1..L. The
// sequence wraps around: position 0 holds base L and position L+1 holds base 1.
func EncodePadded(seq string) []byte {
	L := len(seq)
	out := make([]byte, L+2)
	for i := 0; i < L; i++ {
		out[i+1] = Code(seq[i])
	}
	if L > 0 {
		out[0] = out[L]
		out[L+1] = out[1]
	}
	return out
}

// PairType returns the pair type of bases a (5' side) and b (3' side), or NP.
func PairType(a, b byte) int {
	if a >= NumBases || b >= NumBases {
		return NP
	}
	return pairTable[a][b]
}

// CanPair reports whether the two bases form a Watson-Crick or wobble pair.
func CanPair(a, b byte) bool {
	return PairType(a, b) != NP
}

// IsAUGU reports whether the pair type is an AU, UA, GU or UG pair, the
// closures that receive the terminal AU penalty.
func IsAUGU(t int) bool {
	return t > GC
}

// OneHot returns the one-hot matrix of the base codes, one row per base with
// columns A, C, G, U. Unknown bases get an all-zero row.
func OneHot(codes []byte) [][4]float64 {
	out := make([][4]float64, len(codes))
	for i, c := range codes {
		if c >= A && c <= U {
			out[i][c-1] = 1
		}
	}
	return out
}
