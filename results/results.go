// Package results records the prediction accuracy of sequences with known
// reference structures.
package results

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neurlang/dnnfold/structure"
)

// Row is the accuracy of one prediction.
type Row struct {
	Header  string
	Length  int
	Elapsed time.Duration
	Score   float64

	structure.Confusion

	Sen, PPV, F, MCC float64
}

// NewRow compares pred against ref.
func NewRow(header string, elapsed time.Duration, score float64, ref, pred structure.Pairs) Row {
	c := structure.Compare(ref, pred)
	sen, ppv, f, mcc := structure.Accuracy(c)
	return Row{
		Header:    header,
		Length:    ref.Len(),
		Elapsed:   elapsed,
		Score:     score,
		Confusion: c,
		Sen:       sen,
		PPV:       ppv,
		F:         f,
		MCC:       mcc,
	}
}

// Sink stores rows.
type Sink interface {
	Write(r Row) error
	io.Closer
}

// Open creates the sink for path: SQLite for .db, .sqlite and .sqlite3
// files, CSV otherwise. An empty runID gets a fresh one.
func Open(path, runID string) (Sink, error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteSink(path, runID)
	}
	return CreateCSV(path)
}

// Summary aggregates rows.
type Summary struct {
	N int
	structure.Confusion
	sumF, sumMCC float64
}

// Add counts r.
func (s *Summary) Add(r Row) {
	s.N++
	s.TP += r.TP
	s.TN += r.TN
	s.FP += r.FP
	s.FN += r.FN
	s.sumF += r.F
	s.sumMCC += r.MCC
}

// MeanF is the average per sequence F-value.
func (s *Summary) MeanF() float64 {
	if s.N == 0 {
		return 0
	}
	return s.sumF / float64(s.N)
}

// MeanMCC is the average per sequence MCC.
func (s *Summary) MeanMCC() float64 {
	if s.N == 0 {
		return 0
	}
	return s.sumMCC / float64(s.N)
}

// Fields returns the summary as log fields. The pooled values are computed
// over the summed confusion counts.
func (s *Summary) Fields() []zap.Field {
	sen, ppv, f, mcc := structure.Accuracy(s.Confusion)
	return []zap.Field{
		zap.Int("sequences", s.N),
		zap.Int("tp", s.TP),
		zap.Int("fp", s.FP),
		zap.Int("fn", s.FN),
		zap.Float64("mean_f", s.MeanF()),
		zap.Float64("mean_mcc", s.MeanMCC()),
		zap.Float64("sen", sen),
		zap.Float64("ppv", ppv),
		zap.Float64("f", f),
		zap.Float64("mcc", mcc),
	}
}
