package results

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/dnnfold/structure"
)

func mustPairs(t *testing.T, db string) structure.Pairs {
	t.Helper()
	p, err := structure.FromDotBracket(db)
	require.NoError(t, err)
	return p
}

func TestNewRow(t *testing.T) {
	ref := mustPairs(t, "((((....))))")
	pred := mustPairs(t, ".(((....))).")
	r := NewRow("x", time.Second, 4.5, ref, pred)
	assert.Equal(t, 12, r.Length)
	assert.Equal(t, structure.Confusion{TP: 3, TN: 62, FP: 0, FN: 1}, r.Confusion)
	assert.InDelta(t, 0.75, r.Sen, 1e-12)
	assert.InDelta(t, 1.0, r.PPV, 1e-12)

	shifted := mustPairs(t, "(((....)))..")
	r = NewRow("y", 0, 0, ref, shifted)
	assert.Equal(t, structure.Confusion{TP: 0, TN: 66 - 3 - 4, FP: 3, FN: 4}, r.Confusion)
	assert.Equal(t, 0.0, r.F)
}

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSVSink(&buf)
	ref := mustPairs(t, "((((....))))")
	require.NoError(t, s.Write(NewRow("seq1", 250*time.Millisecond, 4.3, ref, ref)))
	require.NoError(t, s.Close())
	assert.Equal(t, "seq1, 12, 0.25, 4.3, 4, 62, 0, 0, 1.0, 1.0, 1.0, 1.0\n", buf.String())
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.0", formatFloat(0))
	assert.Equal(t, "-3.0", formatFloat(-3))
	assert.Equal(t, "1e-07", formatFloat(1e-7))
	assert.Equal(t, "0.125", formatFloat(0.125))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	ref := mustPairs(t, "((((....))))")
	pred := mustPairs(t, "(((......)))")

	csv, err := Open(filepath.Join(dir, "out.csv"), "")
	require.NoError(t, err)
	require.IsType(t, &CSVSink{}, csv)
	require.NoError(t, csv.Write(NewRow("a", 0, 1, ref, pred)))
	require.NoError(t, csv.Close())
	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "a, 12, 0.0, 1.0, 3, "))

	db := filepath.Join(dir, "out.sqlite")
	sink, err := Open(db, "run-1")
	require.NoError(t, err)
	s := sink.(*SQLiteSink)
	assert.Equal(t, "run-1", s.RunID())
	var want Summary
	for _, p := range []structure.Pairs{ref, pred} {
		r := NewRow("a", time.Millisecond, 1, ref, p)
		want.Add(r)
		require.NoError(t, s.Write(r))
	}
	require.NoError(t, s.Write(NewRow("b", 0, 0, ref, ref)))

	got, err := s.Summary("run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.N)

	other, err := s.Summary("run-2")
	require.NoError(t, err)
	assert.Equal(t, 0, other.N)
	assert.Equal(t, 0.0, other.MeanF())
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteSink(db, "run-2")
	require.NoError(t, err)
	defer reopened.Close()
	got, err = reopened.Summary("run-1")
	require.NoError(t, err)
	want.Add(NewRow("b", 0, 0, ref, ref))
	assert.Equal(t, want.Confusion, got.Confusion)
	assert.InDelta(t, want.MeanF(), got.MeanF(), 1e-12)
	assert.InDelta(t, want.MeanMCC(), got.MeanMCC(), 1e-12)
}

func TestSummaryFields(t *testing.T) {
	var s Summary
	ref := mustPairs(t, "((((....))))")
	s.Add(NewRow("a", 0, 0, ref, ref))
	fields := s.Fields()
	require.NotEmpty(t, fields)
	assert.Equal(t, "sequences", fields[0].Key)
	assert.Equal(t, 1.0, s.MeanF())
}
