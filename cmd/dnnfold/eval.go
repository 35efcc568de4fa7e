package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neurlang/dnnfold/datasets"
	"github.com/neurlang/dnnfold/inference"
	"github.com/neurlang/dnnfold/layer"
	"github.com/neurlang/dnnfold/model"
	"github.com/neurlang/dnnfold/net/feedforward"
	"github.com/neurlang/dnnfold/turner"
)

type evalOptions struct {
	modelOptions
	counts string
}

func newEvalCmd(a *app) *cobra.Command {
	o := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval INPUT",
		Short: "Score the reference structures of a BPSEQ list",
		Long: `Scores the reference structure of every BPSEQ file listed in INPUT under
the configured model. With --counts and the Turner model the number of times
each nearest neighbor parameter is used is summed over all structures and
written as a parameter file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eval(cmd, o, args[0])
		},
	}
	o.register(cmd.Flags())
	cmd.Flags().StringVar(&o.counts, "counts", "", "write the summed Turner parameter counts to this file")
	return cmd
}

func (a *app) eval(cmd *cobra.Command, o *evalOptions, input string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := a.log

	workers := o.numWorkers()
	recs, err := (&datasets.Loader{Log: log, Workers: workers}).Load(ctx, input)
	if err != nil {
		return err
	}
	m, _, err := o.build(cmd.Flags(), log, 1)
	if err != nil {
		return err
	}

	var tm *model.Turner
	var counts *turner.Params
	if o.counts != "" {
		var ok bool
		if tm, ok = m.(*model.Turner); !ok {
			return fmt.Errorf("--counts needs the Turner model, not %s", m.Name())
		}
		counts = turner.NewLike(tm.Params)
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()
	text := &inference.TextWriter{W: out}
	var n int
	runner := &inference.Runner{Model: m, Workers: workers, Log: log}
	err = runner.Evaluate(ctx, recs, func(rec *datasets.Record, score float64) error {
		n++
		if counts != nil {
			if err := tm.Count(rec.Seq, rec.Ref, counts, 1); err != nil {
				return fmt.Errorf("%s: %w", rec.Header, err)
			}
		}
		return text.Write(&inference.Result{
			Record: rec,
			Pred:   &model.Prediction{Score: score, Pairs: rec.Ref},
		})
	})
	if err != nil {
		return err
	}
	log.Info("evaluated", zap.String("model", m.Name()), zap.Int("structures", n))

	if counts != nil {
		if err := feedforward.WriteCompressedWeightsToFile(o.counts, &feedforward.Weights{StateDict: layer.Export(counts.Named("count"))}); err != nil {
			return err
		}
		log.Info("wrote parameter counts", zap.String("counts", o.counts))
	}
	return nil
}
