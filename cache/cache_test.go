package cache

import (
	"crypto/sha256"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/dnnfold/structure"
)

func TestCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions")
	fp := sha256.Sum256([]byte("Turner"))
	other := sha256.Sum256([]byte("Zuker"))
	pairs, err := structure.FromDotBracket("((((....))))")
	require.NoError(t, err)

	c := Open(path, 32<<20)
	_, _, ok := c.Get(fp, "GGGGAAAACCCC")
	assert.False(t, ok)
	c.Put(fp, "GGGGAAAACCCC", 4.3, pairs)

	// long enough for a big entry
	n := 20000
	long := strings.Repeat("G", n) + strings.Repeat("C", n)
	lp := structure.New(2 * n)
	for i := 1; i <= n; i++ {
		lp.Pair(i, 2*n+1-i)
	}
	c.Put(fp, long, -1.5, lp)
	require.NoError(t, c.Save())

	c = Open(path, 32<<20)
	score, got, ok := c.Get(fp, "GGGGAAAACCCC")
	require.True(t, ok)
	assert.Equal(t, 4.3, score)
	if diff := cmp.Diff(pairs, got); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
	_, _, ok = c.Get(other, "GGGGAAAACCCC")
	assert.False(t, ok)

	score, got, ok = c.Get(fp, long)
	require.True(t, ok)
	assert.Equal(t, -1.5, score)
	assert.Equal(t, lp, got)
	assert.Positive(t, c.Len())
}

func TestDecodeCorrupt(t *testing.T) {
	p := structure.New(3)
	p.Pair(1, 3)
	b := encode(1, p)
	_, got, err := decode(b, 3)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, _, err = decode(b, 4)
	assert.ErrorIs(t, err, errCorrupt)
	_, _, err = decode(b[:5], 3)
	assert.ErrorIs(t, err, errCorrupt)
	_, _, err = decode(append(b, 0), 3)
	assert.ErrorIs(t, err, errCorrupt)
}

func TestMemoryOnly(t *testing.T) {
	c := Open("", 1<<20)
	c.Put([32]byte{}, "A", 0, structure.New(1))
	assert.Equal(t, uint64(1), c.Len())
	assert.NoError(t, c.Save())
}
