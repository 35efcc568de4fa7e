// Package datasets loads the sequences to fold and their reference structures
package datasets

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/neurlang/dnnfold/parallel"
	"github.com/neurlang/dnnfold/structure"
)

// Record is one input sequence. Ref is empty unless a reference structure was
// read with the sequence.
type Record struct {
	Header string
	Seq    string
	Ref    structure.Pairs
}

// HasRef reports whether r carries a reference structure for its sequence.
func (r *Record) HasRef() bool {
	return r.Ref != nil && r.Ref.Len() == len(r.Seq)
}

// ErrNotFasta is returned for a file that does not start with a FASTA header.
var ErrNotFasta = errors.New("not a FASTA file")

// Loader reads input files. The zero value logs nothing and reads BPSEQ
// files with one goroutine per CPU core.
type Loader struct {
	Log     *zap.Logger
	Workers int
}

func (l *Loader) log() *zap.Logger {
	if l.Log == nil {
		return zap.NewNop()
	}
	return l.Log
}

func (l *Loader) workers() int {
	if l.Workers <= 0 {
		return parallel.Workers()
	}
	return l.Workers
}

// Load reads path as FASTA and falls back to a BPSEQ file list when it is not
// FASTA or holds no sequences.
func (l *Loader) Load(ctx context.Context, path string) ([]Record, error) {
	recs, err := LoadFasta(path)
	switch {
	case errors.Is(err, ErrNotFasta):
		l.log().Debug("input is not FASTA", zap.String("path", path))
	case err != nil:
		return nil, err
	case len(recs) > 0:
		l.log().Debug("loaded FASTA", zap.String("path", path), zap.Int("records", len(recs)))
		return recs, nil
	}
	recs, err = l.LoadBPSEQList(ctx, path)
	if err != nil {
		return nil, err
	}
	l.log().Debug("loaded BPSEQ list", zap.String("path", path), zap.Int("records", len(recs)))
	return recs, nil
}

// Load reads path with the zero Loader.
func Load(ctx context.Context, path string) ([]Record, error) {
	var l Loader
	return l.Load(ctx, path)
}
