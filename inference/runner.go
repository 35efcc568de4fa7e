// Package inference runs a folding model over a set of input sequences.
package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/neurlang/dnnfold/cache"
	"github.com/neurlang/dnnfold/datasets"
	"github.com/neurlang/dnnfold/model"
	"github.com/neurlang/dnnfold/parallel"
	"github.com/neurlang/dnnfold/results"
)

// Result is the prediction of one record.
type Result struct {
	Record  *datasets.Record
	Pred    *model.Prediction
	Elapsed time.Duration
	Cached  bool
	Err     error
}

// Runner folds records on a pool of goroutines. Results are handed on in
// input order.
type Runner struct {
	Model   model.Model
	Workers int          // zero means parallel.Workers()
	Cache   *cache.Cache // optional
	Log     *zap.Logger  // optional
}

func (r *Runner) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func (r *Runner) workers() int {
	if r.Workers <= 0 {
		return parallel.Workers()
	}
	return r.Workers
}

// ordered runs task for every index on an ants pool and calls emit with the
// results in index order. It stops at the first error.
func (r *Runner) ordered(ctx context.Context, n int, task func(i int) Result, emit func(i int, res *Result) error) error {
	if n == 0 {
		return nil
	}
	workers := r.workers()
	if workers > n {
		workers = n
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	out := make([]Result, n)
	done := make([]chan struct{}, n)
	for i := range done {
		done[i] = make(chan struct{})
	}
	go func() {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				close(done[i])
				continue
			}
			err := pool.Submit(func() {
				defer close(done[i])
				out[i] = task(i)
			})
			if err != nil {
				out[i].Err = err
				close(done[i])
			}
		}
	}()

	for i := 0; i < n; i++ {
		select {
		case <-done[i]:
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := emit(i, &out[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) predict(rec *datasets.Record, fp [32]byte) Result {
	start := time.Now()
	if r.Cache != nil {
		if score, pairs, ok := r.Cache.Get(fp, rec.Seq); ok {
			return Result{
				Record:  rec,
				Pred:    &model.Prediction{Score: score, Pairs: pairs},
				Elapsed: time.Since(start),
				Cached:  true,
			}
		}
	}
	pred, err := r.Model.Fold(rec.Seq)
	elapsed := time.Since(start)
	if err != nil {
		return Result{Record: rec, Err: err}
	}
	if r.Cache != nil {
		r.Cache.Put(fp, rec.Seq, pred.Score, pred.Pairs)
	}
	return Result{Record: rec, Pred: pred, Elapsed: elapsed}
}

// Run folds recs and writes every prediction to w. Records carrying a
// reference structure of the predicted length also get an accuracy row in
// sink when sink is not nil. The returned summary covers those rows.
func (r *Runner) Run(ctx context.Context, recs []datasets.Record, w Writer, sink results.Sink) (*results.Summary, error) {
	var fp [32]byte
	if r.Cache != nil {
		fp = model.Fingerprint(r.Model)
	}
	log := r.log()
	sum := &results.Summary{}
	var cached int
	start := time.Now()
	err := r.ordered(ctx, len(recs),
		func(i int) Result {
			return r.predict(&recs[i], fp)
		},
		func(i int, res *Result) error {
			rec := &recs[i]
			if res.Err != nil {
				return fmt.Errorf("%s: %w", rec.Header, res.Err)
			}
			if res.Cached {
				cached++
			}
			log.Debug("folded",
				zap.String("header", rec.Header),
				zap.Int("length", len(rec.Seq)),
				zap.Float64("score", res.Pred.Score),
				zap.Duration("elapsed", res.Elapsed),
				zap.Bool("cached", res.Cached))
			if err := w.Write(res); err != nil {
				return err
			}
			if sink == nil || rec.Ref == nil || rec.Ref.Len() != res.Pred.Pairs.Len() {
				return nil
			}
			row := results.NewRow(rec.Header, res.Elapsed, res.Pred.Score, rec.Ref, res.Pred.Pairs)
			sum.Add(row)
			return sink.Write(row)
		})
	if err != nil {
		return sum, err
	}
	log.Info("prediction finished",
		zap.Int("sequences", len(recs)),
		zap.Int("cached", cached),
		zap.Duration("elapsed", time.Since(start)))
	return sum, nil
}

// Evaluate scores the reference structure of every record under the model
// and calls emit in input order. Records without a reference are skipped.
func (r *Runner) Evaluate(ctx context.Context, recs []datasets.Record, emit func(rec *datasets.Record, score float64) error) error {
	return r.ordered(ctx, len(recs),
		func(i int) Result {
			rec := &recs[i]
			if !rec.HasRef() {
				return Result{Record: rec}
			}
			start := time.Now()
			score, err := r.Model.Evaluate(rec.Seq, rec.Ref)
			return Result{
				Record:  rec,
				Pred:    &model.Prediction{Score: score, Pairs: rec.Ref},
				Elapsed: time.Since(start),
				Err:     err,
			}
		},
		func(i int, res *Result) error {
			if res.Err != nil {
				return fmt.Errorf("%s: %w", recs[i].Header, res.Err)
			}
			if res.Pred == nil {
				r.log().Warn("no reference structure", zap.String("header", recs[i].Header))
				return nil
			}
			return emit(&recs[i], res.Pred.Score)
		})
}
