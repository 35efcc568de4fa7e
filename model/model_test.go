package model

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/dnnfold/structure"
	"github.com/neurlang/dnnfold/turner"
)

func smallConfig() Config {
	c := DefaultConfig()
	c.NumFilters = []int{8}
	c.FilterSize = []int{3}
	c.NumLSTMLayers = 1
	c.NumLSTMUnits = 4
	c.NumHiddenUnits = []int{8}
	c.ContextLength = 3
	c.MixBase = 1
	c.NumAtt = 2
	return c
}

func randomRNA(rng *rand.Rand, n int) string {
	const letters = "ACGU"
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}

func TestBuildUnknown(t *testing.T) {
	cfg := DefaultConfig()
	_, err := Build("Contrafold", &cfg, nil)
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestTurner(t *testing.T) {
	m, err := Build("Turner", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Turner", m.Name())

	pred, err := m.Fold("GGGGAAAACCCC")
	require.NoError(t, err)
	assert.Equal(t, "((((....))))", pred.DotBracket())
	e, err := m.Evaluate("GGGGAAAACCCC", pred.Pairs)
	require.NoError(t, err)
	assert.InDelta(t, pred.Score, e, 1e-9)

	tm := m.(*Turner)
	counts := turner.NewLike(tm.Params)
	require.NoError(t, tm.Count("GGGGAAAACCCC", pred.Pairs, counts, 1))
	var stacks float64
	for _, v := range counts.Stack {
		stacks += v
	}
	assert.Equal(t, 3.0, stacks)

	other := &Turner{Params: turner.New()}
	assert.NotEqual(t, Fingerprint(m), Fingerprint(other))
	require.NoError(t, other.LoadStateDict(m.StateDict()))
	assert.Equal(t, Fingerprint(m), Fingerprint(other))
}

func TestNeuralModels(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	seqs := []string{randomRNA(rng, 40), randomRNA(rng, 25), "GGGGAAAACCCC", ""}

	for _, name := range []string{"Zuker", "ZukerS", "ZukerL", "Nussinov"} {
		for _, join := range []string{"cat", "add", "mul", "bilinear"} {
			cfg := smallConfig()
			cfg.PairJoin = join
			if join == "mul" {
				cfg.FC = "conv"
			}
			m, err := Build(name, &cfg, rand.New(rand.NewSource(1)))
			require.NoError(t, err, "%s %s", name, join)
			assert.Equal(t, name, m.Name())

			for _, seq := range seqs {
				pred, err := m.Fold(seq)
				require.NoError(t, err)
				require.Equal(t, len(seq), pred.Pairs.Len())
				require.NoError(t, pred.Pairs.Validate())
				e, err := m.Evaluate(seq, pred.Pairs)
				require.NoError(t, err)
				assert.InDelta(t, pred.Score, e, 1e-6, "%s %s %q", name, join, seq)
			}
		}
	}
}

func TestNeuralStateDict(t *testing.T) {
	cfg := smallConfig()
	cfg.PairJoin = "bilinear"
	cfg.EmbedSize = 3

	src, err := Build("ZukerL", &cfg, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	sd := src.StateDict()
	for _, k := range []string{
		"embedding.weight",
		"encoder.conv.0.weight",
		"encoder.lstm.weight_ih_l0_reverse",
		"encoder.att.in_proj_weight",
		"join.weight",
		"fc.0.weight",
		"fc.out.bias",
		"unpaired.weight",
		"score_hairpin_length",
		"score_multi",
	} {
		assert.Contains(t, sd, k)
	}
	// make the loop tables matter
	hp := sd["score_hairpin_length"]
	for i := range hp.Data {
		hp.Data[i] = -0.1 * float64(i)
	}

	dst, err := Build("ZukerL", &cfg, nil)
	require.NoError(t, err)
	require.NoError(t, dst.LoadStateDict(sd))

	cfg.Workers = 4
	par, err := Build("ZukerL", &cfg, nil)
	require.NoError(t, err)
	require.NoError(t, par.LoadStateDict(sd))
	assert.Equal(t, Fingerprint(dst), Fingerprint(par))

	seq := randomRNA(rand.New(rand.NewSource(2)), 50)
	a, err := dst.Fold(seq)
	require.NoError(t, err)
	b, err := par.Fold(seq)
	require.NoError(t, err)
	assert.Equal(t, a.DotBracket(), b.DotBracket())
	assert.Equal(t, a.Score, b.Score)

	zs, err := Build("ZukerS", &cfg, nil)
	require.NoError(t, err)
	assert.Error(t, zs.LoadStateDict(sd))
}

func TestFingerprintNetworkSetting(t *testing.T) {
	add := smallConfig()
	add.PairJoin = "add"
	mul := smallConfig()
	mul.PairJoin = "mul"
	mul.Dilation = 1

	a, err := Build("Zuker", &add, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	b, err := Build("Zuker", &mul, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	require.Equal(t, a.StateDict().Keys(), b.StateDict().Keys())
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

	add.Workers = 8
	c, err := Build("Zuker", &add, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(a), Fingerprint(c))
}

func TestNussinovEvaluateRejectsKnots(t *testing.T) {
	cfg := smallConfig()
	m, err := Build("Nussinov", &cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	knot := structure.New(10)
	knot.Pair(1, 6)
	knot.Pair(3, 9)
	_, err = m.Evaluate("GGGGAAACCC", knot)
	assert.ErrorIs(t, err, structure.ErrPseudoknot)
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	for _, mod := range []func(*Config){
		func(c *Config) { c.PairJoin = "concat" },
		func(c *Config) { c.FC = "rnn" },
		func(c *Config) { c.ContextLength = 0 },
		func(c *Config) {
			c.NumFilters = []int{8, 8}
			c.FilterSize = []int{3, 3, 3}
		},
		func(c *Config) { c.NumLSTMLayers = 2 },
		func(c *Config) { c.DropoutRate = 1 },
	} {
		c := DefaultConfig()
		mod(&c)
		assert.ErrorIs(t, c.Validate(), ErrConfig)
	}

	odd := DefaultConfig()
	odd.NumFilters = []int{7}
	_, err := Build("Zuker", &odd, nil)
	assert.ErrorIs(t, err, ErrConfig)
	odd.NoSplitLR = true
	_, err = Build("Zuker", &odd, nil)
	assert.NoError(t, err)

	heads := smallConfig()
	heads.NumAtt = 3
	_, err = Build("Nussinov", &heads, nil)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_filters: [32, 32]\nfilter_size: [3, 5]\nnum_lstm_layers: 2\nnum_lstm_units: 16\npair_join: bilinear\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []int{32, 32}, cfg.NumFilters)
	assert.Equal(t, []int{3, 5}, cfg.FilterSize)
	assert.Equal(t, []int{1}, cfg.PoolSize)
	assert.Equal(t, 16, cfg.NumLSTMUnits)
	assert.Equal(t, "bilinear", cfg.PairJoin)
	assert.Equal(t, "linear", cfg.FC)
	require.NoError(t, cfg.Validate())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
