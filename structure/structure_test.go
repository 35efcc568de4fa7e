package structure

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotBracket(t *testing.T) {
	p, err := FromDotBracket("((..((...))..))")
	require.NoError(t, err)
	require.NoError(t, p.Validate())
	assert.Equal(t, 15, p.Len())
	assert.Equal(t, 4, p.NumPairs())
	assert.Equal(t, 15, p[1])
	assert.Equal(t, 10, p[6])
	assert.Equal(t, "((..((...))..))", p.DotBracket())

	_, err = FromDotBracket("(()")
	assert.Error(t, err)
	_, err = FromDotBracket("())")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	p := New(8)
	p.Pair(1, 5)
	p.Pair(3, 8)
	assert.ErrorIs(t, p.Validate(), ErrPseudoknot)

	q := New(4)
	q[1] = 4
	assert.Error(t, q.Validate())
}

func TestCompare(t *testing.T) {
	ref, err := FromDotBracket("((((....))))")
	require.NoError(t, err)
	pred, err := FromDotBracket(".(((....))).")
	require.NoError(t, err)

	c := Compare(ref, pred)
	assert.Equal(t, Confusion{TP: 3, FN: 1, TN: 12*11/2 - 4}, c)

	shifted := New(12)
	shifted.Pair(1, 11)
	c = Compare(ref, shifted)
	assert.Equal(t, 1, c.FP)
	assert.Equal(t, 4, c.FN)
	assert.Equal(t, 0, c.TP)
}

func TestAccuracy(t *testing.T) {
	sen, ppv, f, mcc := Accuracy(Confusion{TP: 3, FP: 1, FN: 1, TN: 10})
	assert.InDelta(t, 0.75, sen, 1e-12)
	assert.InDelta(t, 0.75, ppv, 1e-12)
	assert.InDelta(t, 0.75, f, 1e-12)
	assert.InDelta(t, 29.0/44.0, mcc, 1e-12)

	sen, ppv, f, mcc = Accuracy(Confusion{})
	assert.Zero(t, sen)
	assert.Zero(t, ppv)
	assert.Zero(t, f)
	assert.Zero(t, mcc)
}

func TestBPSEQ(t *testing.T) {
	in := "# comment\n1 G 6\n2 A 0\n3 A 0\n\n4 A 0\n5 A 0\n6 C 1\n"
	seq, p, err := ReadBPSEQ(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "GAAAAC", seq)
	if diff := cmp.Diff(Pairs{0, 6, 0, 0, 0, 0, 1}, p); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBPSEQ(&buf, "hp", -1.5, 1500*time.Microsecond, seq, p))
	assert.Equal(t, "# hp (s=-1.5, 0.00150s)\n1\tG\t6\n2\tA\t0\n3\tA\t0\n4\tA\t0\n5\tA\t0\n6\tC\t1\n", buf.String())

	_, _, err = ReadBPSEQ(strings.NewReader("1 G 0\n3 C 0\n"))
	assert.Error(t, err)
	_, _, err = ReadBPSEQ(strings.NewReader("1 G 5\n2 C 0\n"))
	assert.Error(t, err)
}
