package turner

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/dnnfold/fold"
	"github.com/neurlang/dnnfold/structure"
)

func randomRNA(rng *rand.Rand, n int) string {
	const letters = "ACGU"
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}

// atLeast rewrites the length tables of p as increments.
func atLeast(p *Params) *Params {
	q := Default()
	q.HairpinAtLeast, q.BulgeAtLeast, q.InternalAtLeast = true, true, true
	for i := 4; i <= MaxLoop; i++ {
		q.Hairpin[i] = p.Hairpin[i] - p.Hairpin[i-1]
	}
	for i := 2; i <= MaxLoop; i++ {
		q.Bulge[i] = p.Bulge[i] - p.Bulge[i-1]
	}
	for i := 3; i <= MaxLoop; i++ {
		q.Internal[i] = p.Internal[i] - p.Internal[i-1]
	}
	q.Refresh()
	return q
}

func dot(a, b *Params) float64 {
	pa, pb := a.Params(), b.Params()
	var sum float64
	for n := range pa {
		for i := range pa[n].Data {
			sum += pa[n].Data[i] * pb[n].Data[i]
		}
	}
	return sum
}

func TestDefault(t *testing.T) {
	p := Default()
	sc := NewScorer(p, "GGGGAAAACCCC")

	assert.InDelta(t, 3.3, sc.SingleLoop(1, 12, 2, 11), 1e-12)
	assert.InDelta(t, -5.6, sc.Hairpin(4, 9), 1e-12)
	assert.InDelta(t, -5.4, sc.Hairpin(3, 10), 1e-12)
	assert.Zero(t, sc.ExternalPaired(1, 12))
	assert.InDelta(t, 0.8, sc.ExternalPaired(1, 11), 1e-12)

	long := NewScorer(p, "G"+strings.Repeat("A", 40)+"C")
	assert.InDelta(t, -7.63-1.07856*math.Log(40.0/30), long.Hairpin(1, 42), 1e-9)
}

func TestAtLeastTables(t *testing.T) {
	p := Default()
	q := atLeast(p)
	assert.InDeltaSlice(t, p.cacheHairpin, q.cacheHairpin, 1e-12)
	assert.InDeltaSlice(t, p.cacheBulge, q.cacheBulge, 1e-12)
	assert.InDeltaSlice(t, p.cacheInternal, q.cacheInternal, 1e-12)

	sd := q.StateDict()
	assert.Contains(t, sd, "score_hairpin_at_least")
	assert.NotContains(t, sd, "score_hairpin")

	r, err := FromStateDict(sd)
	require.NoError(t, err)
	assert.True(t, r.HairpinAtLeast)
	assert.InDeltaSlice(t, p.cacheHairpin, r.cacheHairpin, 1e-12)
}

func TestStateDictStrict(t *testing.T) {
	sd := Default().StateDict()
	delete(sd, "score_stack")
	_, err := FromStateDict(sd)
	assert.Error(t, err)
}

func TestCounterMatchesScore(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, p := range []*Params{Default(), atLeast(Default())} {
		for n := 0; n < 10; n++ {
			seq := randomRNA(rng, 30+rng.Intn(80))
			sc := NewScorer(p, seq)
			score, pairs := fold.Zuker(sc, fold.DefaultOptions())

			counts := NewLike(p)
			require.NoError(t, fold.Decompose(pairs, NewCounter(p, counts, seq, 1)))
			assert.InDelta(t, score, dot(p, counts), 1e-6, seq)
		}
	}
}

func TestCounterLongLoops(t *testing.T) {
	p := atLeast(Default())
	seq := "GGG" + strings.Repeat("A", 35) + "C" + strings.Repeat("A", 3) + "GAAAAC" + strings.Repeat("A", 33) + "CC"
	pairs := structure.New(len(seq))
	pairs.Pair(1, len(seq))
	pairs.Pair(2, len(seq)-1)
	pairs.Pair(3, 39)
	pairs.Pair(43, 48)

	sc := NewScorer(p, seq)
	e, err := fold.Evaluate(sc, pairs)
	require.NoError(t, err)

	counts := NewLike(p)
	require.NoError(t, fold.Decompose(pairs, NewCounter(p, counts, seq, 2)))
	assert.InDelta(t, 2*e, dot(p, counts), 1e-9)
	assert.NotZero(t, counts.LXC[0])
}
