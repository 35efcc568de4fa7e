package inference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/neurlang/dnnfold/cache"
	"github.com/neurlang/dnnfold/datasets"
	"github.com/neurlang/dnnfold/layer"
	"github.com/neurlang/dnnfold/model"
	"github.com/neurlang/dnnfold/results"
	"github.com/neurlang/dnnfold/structure"
)

// slowModel pairs nothing and sleeps longer for earlier records.
type slowModel struct {
	mu    sync.Mutex
	folds int
	fail  string
}

func (m *slowModel) Name() string { return "slow" }

func (m *slowModel) Fold(seq string) (*model.Prediction, error) {
	m.mu.Lock()
	m.folds++
	m.mu.Unlock()
	if seq == m.fail {
		return nil, errors.New("boom")
	}
	time.Sleep(time.Duration(20-len(seq)) * time.Millisecond)
	return &model.Prediction{Score: float64(len(seq)), Pairs: structure.New(len(seq))}, nil
}

func (m *slowModel) Evaluate(seq string, pairs structure.Pairs) (float64, error) {
	return float64(pairs.NumPairs()), nil
}

func (m *slowModel) StateDict() layer.StateDict             { return layer.StateDict{} }
func (m *slowModel) LoadStateDict(sd layer.StateDict) error { return nil }

type memSink struct {
	rows []results.Row
}

func (s *memSink) Write(r results.Row) error {
	s.rows = append(s.rows, r)
	return nil
}

func (s *memSink) Close() error { return nil }

func records(n int) []datasets.Record {
	recs := make([]datasets.Record, n)
	for i := range recs {
		recs[i] = datasets.Record{Header: fmt.Sprintf("r%d", i), Seq: strings.Repeat("A", i+1)}
	}
	return recs
}

func TestRunOrdered(t *testing.T) {
	m := &slowModel{}
	r := &Runner{Model: m, Workers: 4, Log: zaptest.NewLogger(t)}
	var buf bytes.Buffer
	_, err := r.Run(context.Background(), records(12), &TextWriter{W: &buf}, nil)
	require.NoError(t, err)

	var want strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&want, ">r%d\n%s\n%s (%d.0)\n", i, strings.Repeat("A", i+1), strings.Repeat(".", i+1), i+1)
	}
	assert.Equal(t, want.String(), buf.String())
}

func TestRunError(t *testing.T) {
	m := &slowModel{fail: "AAA"}
	r := &Runner{Model: m, Workers: 2}
	var buf bytes.Buffer
	_, err := r.Run(context.Background(), records(6), &TextWriter{W: &buf}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "r2: boom")
	assert.Equal(t, 2, strings.Count(buf.String(), ">"))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Model: &slowModel{}, Workers: 2}
	_, err := r.Run(ctx, records(4), &TextWriter{W: &bytes.Buffer{}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunTurner(t *testing.T) {
	m, err := model.Build("Turner", nil, nil)
	require.NoError(t, err)
	ref, err := structure.FromDotBracket("((((....))))")
	require.NoError(t, err)
	recs := []datasets.Record{
		{Header: "dir/hairpin.bpseq", Seq: "GGGGAAAACCCC", Ref: ref},
		{Header: "plain", Seq: "AAAA"},
	}

	c := cache.Open("", 1<<20)
	sink := &memSink{}
	var buf bytes.Buffer
	r := &Runner{Model: m, Workers: 2, Cache: c}
	sum, err := r.Run(context.Background(), recs, &TextWriter{W: &buf}, sink)
	require.NoError(t, err)
	assert.Equal(t, ">dir/hairpin.bpseq\nGGGGAAAACCCC\n((((....)))) (4.3)\n>plain\nAAAA\n.... (0.0)\n", buf.String())
	require.Len(t, sink.rows, 1)
	assert.Equal(t, 4, sink.rows[0].TP)
	assert.Equal(t, 1.0, sink.rows[0].F)
	assert.Equal(t, 1, sum.N)
	assert.Equal(t, uint64(2), c.Len())

	// served from the cache
	var again bytes.Buffer
	r.Model = &slowModel{}
	r.Cache = c
	_, err = r.Run(context.Background(), recs, &TextWriter{W: &again}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, buf.String(), again.String())
	r.Model = m
	again.Reset()
	_, err = r.Run(context.Background(), recs, &TextWriter{W: &again}, nil)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), again.String())
}

func TestWriters(t *testing.T) {
	pairs, err := structure.FromDotBracket("((...))")
	require.NoError(t, err)
	res := &Result{
		Record:  &datasets.Record{Header: "data/seq1.bpseq", Seq: "GGAAACC"},
		Pred:    &model.Prediction{Score: 1.25, Pairs: pairs},
		Elapsed: 1500 * time.Microsecond,
	}
	const bpseq = "# data/seq1.bpseq (s=1.2, 0.00150s)\n1\tG\t7\n2\tG\t6\n3\tA\t0\n4\tA\t0\n5\tA\t0\n6\tC\t2\n7\tC\t1\n"

	var out bytes.Buffer
	w, err := NewWriter("stdout", &out)
	require.NoError(t, err)
	require.NoError(t, w.Write(res))
	assert.Equal(t, bpseq, out.String())

	dir := filepath.Join(t.TempDir(), "out")
	w, err = NewWriter(dir, &out)
	require.NoError(t, err)
	require.NoError(t, w.Write(res))
	data, err := os.ReadFile(filepath.Join(dir, "seq1.bpseq"))
	require.NoError(t, err)
	assert.Equal(t, bpseq, string(data))

	w, err = NewWriter("", &out)
	require.NoError(t, err)
	assert.IsType(t, &TextWriter{}, w)
}

func TestEvaluate(t *testing.T) {
	ref, err := structure.FromDotBracket("((...))")
	require.NoError(t, err)
	recs := []datasets.Record{
		{Header: "a", Seq: "GGAAACC", Ref: ref},
		{Header: "b", Seq: "GGAAACC"},
		{Header: "c", Seq: "GGAAACC", Ref: ref},
	}
	r := &Runner{Model: &slowModel{}, Workers: 3}
	var got []string
	err = r.Evaluate(context.Background(), recs, func(rec *datasets.Record, score float64) error {
		got = append(got, fmt.Sprintf("%s=%g", rec.Header, score))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a=2", "c=2"}, got)
}
