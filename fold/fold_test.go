package fold

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/dnnfold/sequence"
	"github.com/neurlang/dnnfold/structure"
	"github.com/neurlang/dnnfold/turner"
)

type countPairs struct {
	s []byte
}

func (c countPairs) Len() int                { return len(c.s) - 2 }
func (c countPairs) CanPair(i, j int) bool   { return sequence.CanPair(c.s[i], c.s[j]) }
func (c countPairs) Paired(i, j int) float64 { return 1 }
func (c countPairs) Unpaired(i int) float64  { return 0 }

func randomRNA(rng *rand.Rand, n int) string {
	const letters = "ACGU"
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}

func TestNussinovHairpin(t *testing.T) {
	ps := countPairs{s: sequence.EncodePadded("GGGGAAAACCCC")}
	score, pairs := Nussinov(ps, DefaultOptions())
	assert.Equal(t, 4.0, score)
	assert.Equal(t, "((((....))))", pairs.DotBracket())
	require.NoError(t, pairs.Validate())
}

func TestNussinovEvaluate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 20; n++ {
		seq := randomRNA(rng, 10+rng.Intn(50))
		ps := countPairs{s: sequence.EncodePadded(seq)}
		score, pairs := Nussinov(ps, DefaultOptions())
		require.NoError(t, pairs.Validate(), seq)
		assert.Equal(t, score, EvaluatePairs(ps, pairs), seq)
		for i := 1; i <= pairs.Len(); i++ {
			if j := pairs[i]; j > i {
				assert.GreaterOrEqual(t, j-i-1, 3, seq)
				assert.True(t, ps.CanPair(i, j), seq)
			}
		}
	}
}

func TestZukerTurner(t *testing.T) {
	sc := turner.NewScorer(turner.Default(), "GGGGAAAACCCC")
	score, pairs := Zuker(sc, DefaultOptions())
	assert.Equal(t, "((((....))))", pairs.DotBracket())
	assert.InDelta(t, 4.3, score, 1e-9)

	e, err := Evaluate(sc, pairs)
	require.NoError(t, err)
	assert.InDelta(t, score, e, 1e-9)
}

func TestZukerEvaluate(t *testing.T) {
	p := turner.Default()
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 20; n++ {
		seq := randomRNA(rng, 20+rng.Intn(60))
		sc := turner.NewScorer(p, seq)
		score, pairs := Zuker(sc, DefaultOptions())
		require.NoError(t, pairs.Validate(), seq)
		e, err := Evaluate(sc, pairs)
		require.NoError(t, err, seq)
		assert.InDelta(t, score, e, 1e-6, seq)

		// the unstructured chain scores zero with these parameters
		assert.GreaterOrEqual(t, score, 0.0, seq)
	}
}

func TestZukerEmpty(t *testing.T) {
	score, pairs := Zuker(turner.NewScorer(turner.Default(), ""), DefaultOptions())
	assert.Zero(t, score)
	assert.Equal(t, 0, pairs.Len())

	score, pairs = Zuker(turner.NewScorer(turner.Default(), "ACGU"), DefaultOptions())
	assert.Zero(t, score)
	assert.Equal(t, "....", pairs.DotBracket())
}

type recorder struct {
	loops []string
}

func (r *recorder) Hairpin(i, j int)          { r.loops = append(r.loops, "hairpin") }
func (r *recorder) SingleLoop(i, j, k, l int) { r.loops = append(r.loops, "single") }
func (r *recorder) MultiLoop(i, j int)        { r.loops = append(r.loops, "multi") }
func (r *recorder) MultiPaired(i, j int)      { r.loops = append(r.loops, "branch") }
func (r *recorder) MultiUnpaired(i int)       { r.loops = append(r.loops, "m") }
func (r *recorder) ExternalPaired(i, j int)   { r.loops = append(r.loops, "ext") }
func (r *recorder) ExternalUnpaired(i int)    { r.loops = append(r.loops, "e") }

func TestDecompose(t *testing.T) {
	pairs, err := structure.FromDotBracket(".((...)(...)).")
	require.NoError(t, err)
	r := &recorder{}
	require.NoError(t, Decompose(pairs, r))
	assert.Equal(t, []string{
		"e", "ext", "e",
		"multi", "branch", "branch",
		"hairpin", "hairpin",
	}, r.loops)

	knot := structure.New(8)
	knot.Pair(1, 5)
	knot.Pair(3, 8)
	assert.ErrorIs(t, Decompose(knot, &recorder{}), structure.ErrPseudoknot)
}
