package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neurlang/dnnfold/net/feedforward"
)

func newDumpParamCmd(a *app) *cobra.Command {
	o := &modelOptions{}
	cmd := &cobra.Command{
		Use:   "dump-param FILE",
		Short: "Write the parameters of the configured model",
		Long: `Writes the parameters of the configured model to FILE: the built-in
Turner 2004 tables, or the seeded initial weights of a neural model together
with its network setting. FILE is compressed as its .lzw or .zlib suffix
says.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cfg, err := o.build(cmd.Flags(), a.log, 1)
			if err != nil {
				return err
			}
			w := &feedforward.Weights{StateDict: m.StateDict()}
			if m.Name() != "Turner" {
				if w.Config, err = json.Marshal(cfg); err != nil {
					return err
				}
			}
			if err := feedforward.WriteCompressedWeightsToFile(args[0], w); err != nil {
				return err
			}
			a.log.Info("wrote parameters",
				zap.String("model", m.Name()),
				zap.String("file", args[0]),
				zap.Int("tensors", len(w.StateDict)))
			return nil
		},
	}
	o.register(cmd.Flags())
	return cmd
}
