package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the state shared by every subcommand.
type app struct {
	verbose    bool
	cpuprofile string

	runID   string
	log     *zap.Logger
	profile *os.File
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:   "dnnfold",
		Short: "RNA secondary structure prediction",
		Long: `dnnfold predicts RNA secondary structures by dynamic programming over
nearest neighbor free energies (Turner) or over loop scores computed by a
neural network (Zuker, ZukerS, ZukerL, Nussinov).`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.cpuprofile, "cpuprofile", "", "write a CPU profile to this file")

	root.AddCommand(newPredictCmd(a))
	root.AddCommand(newEvalCmd(a))
	root.AddCommand(newDumpParamCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	config := zap.NewProductionConfig()
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.runID = uuid.NewString()
	a.log = logger.With(zap.String("run_id", a.runID))

	if a.cpuprofile != "" {
		f, err := os.Create(a.cpuprofile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return err
		}
		a.profile = f
	}
	return nil
}

func (a *app) teardown() {
	if a.profile != nil {
		pprof.StopCPUProfile()
		a.profile.Close()
		a.profile = nil
	}
	_ = a.log.Sync()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
