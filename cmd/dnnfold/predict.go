package main

import (
	"bufio"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neurlang/dnnfold/cache"
	"github.com/neurlang/dnnfold/datasets"
	"github.com/neurlang/dnnfold/device"
	"github.com/neurlang/dnnfold/inference"
	"github.com/neurlang/dnnfold/results"
)

type predictOptions struct {
	modelOptions
	result    string
	bpseq     string
	cache     string
	cacheSize int
}

func newPredictCmd(a *app) *cobra.Command {
	o := &predictOptions{}
	cmd := &cobra.Command{
		Use:   "predict INPUT",
		Short: "Predict secondary structures",
		Long: `Predicts the secondary structure of every sequence of INPUT, a FASTA
file or a list of BPSEQ files.

Example:
  dnnfold predict seqs.fa
  dnnfold predict --model Zuker --param trained.json.zlib --bpseq out/ list.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.predict(cmd, o, args[0])
		},
	}
	fs := cmd.Flags()
	o.register(fs)
	fs.StringVar(&o.result, "result", "", "output the prediction accuracy if reference structures are given")
	fs.StringVar(&o.bpseq, "bpseq", "", "output the prediction with BPSEQ format to the specified directory, or stdout")
	fs.StringVar(&o.cache, "cache", "", "directory of a persistent prediction cache")
	fs.IntVar(&o.cacheSize, "cache-size", 64, "prediction cache size in MiB")
	return cmd
}

func (a *app) predict(cmd *cobra.Command, o *predictOptions, input string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := a.log

	dev, err := device.Select(o.gpu)
	if err != nil {
		return err
	}
	log.Debug("device", zap.Stringer("device", dev))

	workers := o.numWorkers()
	loader := &datasets.Loader{Log: log, Workers: workers}
	recs, err := loader.Load(ctx, input)
	if err != nil {
		return err
	}

	pairWorkers := 1
	if len(recs) < workers {
		pairWorkers = workers
	}
	m, _, err := o.build(cmd.Flags(), log, pairWorkers)
	if err != nil {
		return err
	}
	log.Info("predicting",
		zap.String("model", m.Name()),
		zap.String("input", input),
		zap.Int("sequences", len(recs)),
		zap.Int("workers", workers))

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()
	w, err := inference.NewWriter(o.bpseq, out)
	if err != nil {
		return err
	}

	var sink results.Sink
	if o.result != "" {
		if sink, err = results.Open(o.result, a.runID); err != nil {
			return err
		}
		defer func() {
			if cerr := sink.Close(); err == nil {
				err = cerr
			}
		}()
	}

	runner := &inference.Runner{Model: m, Workers: workers, Log: log}
	if o.cache != "" {
		runner.Cache = cache.Open(o.cache, o.cacheSize<<20)
	}

	sum, err := runner.Run(ctx, recs, w, sink)
	if err != nil {
		return err
	}
	if runner.Cache != nil {
		if err := runner.Cache.Save(); err != nil {
			return err
		}
		log.Debug("saved prediction cache",
			zap.String("cache", o.cache),
			zap.Uint64("entries", runner.Cache.Len()))
	}
	if sink != nil {
		log.Info("accuracy", sum.Fields()...)
	}
	if db, ok := sink.(*results.SQLiteSink); ok {
		stored, err := db.Summary(db.RunID())
		if err != nil {
			return err
		}
		log.Debug("stored results", append(stored.Fields(), zap.String("run_id", db.RunID()))...)
	}
	return nil
}
