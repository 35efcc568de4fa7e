package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/neurlang/dnnfold/model"
	"github.com/neurlang/dnnfold/net/feedforward"
	"github.com/neurlang/dnnfold/parallel"
	"github.com/neurlang/dnnfold/turner"
)

// modelOptions are the flags selecting and configuring the folding model.
type modelOptions struct {
	name    string
	param   string
	config  string
	seed    int64
	gpu     int
	workers int

	// network flags, applied only when set on the command line
	net model.Config
}

func (o *modelOptions) register(fs *pflag.FlagSet) {
	d := model.DefaultConfig()
	fs.Int64Var(&o.seed, "seed", 0, "random seed, negative for a time based seed")
	fs.IntVar(&o.gpu, "gpu", -1, "use GPU with the specified ID (-1 = CPU)")
	fs.StringVar(&o.param, "param", "", "file name of trained parameters, or a ViennaRNA .par file for the Turner model")
	fs.StringVar(&o.config, "config", "", "YAML file with the network setting")
	fs.IntVar(&o.workers, "workers", 0, "worker goroutines (default: one per CPU core)")

	fs.StringVar(&o.name, "model", "Turner", "folding model ('"+strings.Join(model.Names, "', '")+"')")
	fs.IntVar(&o.net.EmbedSize, "embed-size", d.EmbedSize, "the dimension of embedding (0 = one-hot)")
	fs.IntSliceVar(&o.net.NumFilters, "num-filters", d.NumFilters, "the number of CNN filters, repeat per layer")
	fs.IntSliceVar(&o.net.FilterSize, "filter-size", d.FilterSize, "the length of each filter of CNN")
	fs.IntSliceVar(&o.net.PoolSize, "pool-size", d.PoolSize, "the width of the max-pooling layer of CNN")
	fs.IntVar(&o.net.Dilation, "dilation", d.Dilation, "use the dilated convolution")
	fs.IntVar(&o.net.NumLSTMLayers, "num-lstm-layers", d.NumLSTMLayers, "the number of the LSTM hidden layers")
	fs.IntVar(&o.net.NumLSTMUnits, "num-lstm-units", d.NumLSTMUnits, "the number of the LSTM hidden units")
	fs.IntSliceVar(&o.net.NumHiddenUnits, "num-hidden-units", d.NumHiddenUnits, "the number of the hidden units of fully connected layers")
	fs.Float64Var(&o.net.DropoutRate, "dropout-rate", d.DropoutRate, "dropout rate of the CNN and LSTM units")
	fs.Float64Var(&o.net.FCDropoutRate, "fc-dropout-rate", d.FCDropoutRate, "dropout rate of the hidden units")
	fs.BoolVar(&o.net.LSTMCNN, "lstm-cnn", d.LSTMCNN, "use LSTM layer before CNN")
	fs.IntVar(&o.net.NumAtt, "num-att", d.NumAtt, "the number of the heads of attention")
	fs.IntVar(&o.net.ContextLength, "context-length", d.ContextLength, "the length of context for FC layers")
	fs.IntVar(&o.net.MixBase, "mix-base", d.MixBase, "the length of context for mixing the base features to the input of the folding layer")
	fs.StringVar(&o.net.PairJoin, "pair-join", d.PairJoin, "how pairs of vectors are joined ('cat', 'add', 'mul', 'bilinear')")
	fs.StringVar(&o.net.FC, "fc", d.FC, "type of final layers ('linear', 'conv')")
	fs.BoolVar(&o.net.NoSplitLR, "no-split-lr", d.NoSplitLR, "do not split the encoder output into left and right features")
}

var networkFlags = []struct {
	name  string
	apply func(dst, src *model.Config)
}{
	{"embed-size", func(dst, src *model.Config) { dst.EmbedSize = src.EmbedSize }},
	{"num-filters", func(dst, src *model.Config) { dst.NumFilters = src.NumFilters }},
	{"filter-size", func(dst, src *model.Config) { dst.FilterSize = src.FilterSize }},
	{"pool-size", func(dst, src *model.Config) { dst.PoolSize = src.PoolSize }},
	{"dilation", func(dst, src *model.Config) { dst.Dilation = src.Dilation }},
	{"num-lstm-layers", func(dst, src *model.Config) { dst.NumLSTMLayers = src.NumLSTMLayers }},
	{"num-lstm-units", func(dst, src *model.Config) { dst.NumLSTMUnits = src.NumLSTMUnits }},
	{"num-hidden-units", func(dst, src *model.Config) { dst.NumHiddenUnits = src.NumHiddenUnits }},
	{"dropout-rate", func(dst, src *model.Config) { dst.DropoutRate = src.DropoutRate }},
	{"fc-dropout-rate", func(dst, src *model.Config) { dst.FCDropoutRate = src.FCDropoutRate }},
	{"lstm-cnn", func(dst, src *model.Config) { dst.LSTMCNN = src.LSTMCNN }},
	{"num-att", func(dst, src *model.Config) { dst.NumAtt = src.NumAtt }},
	{"context-length", func(dst, src *model.Config) { dst.ContextLength = src.ContextLength }},
	{"mix-base", func(dst, src *model.Config) { dst.MixBase = src.MixBase }},
	{"pair-join", func(dst, src *model.Config) { dst.PairJoin = src.PairJoin }},
	{"fc", func(dst, src *model.Config) { dst.FC = src.FC }},
	{"no-split-lr", func(dst, src *model.Config) { dst.NoSplitLR = src.NoSplitLR }},
}

func (o *modelOptions) numWorkers() int {
	if o.workers <= 0 {
		return parallel.Workers()
	}
	return o.workers
}

// resolve layers the network configuration: defaults, then the configuration
// stored with the parameters, then the YAML file, then the flags given.
func (o *modelOptions) resolve(fs *pflag.FlagSet, embedded json.RawMessage) (model.Config, error) {
	cfg := model.DefaultConfig()
	if len(embedded) > 0 {
		if err := json.Unmarshal(embedded, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: config: %w", o.param, err)
		}
	}
	if o.config != "" {
		if err := cfg.LoadConfig(o.config); err != nil {
			return cfg, err
		}
	}
	for _, f := range networkFlags {
		if fs.Changed(f.name) {
			f.apply(&cfg, &o.net)
		}
	}
	return cfg, cfg.Validate()
}

// build creates the model. Without --param neural weights are drawn from the
// seeded generator; pairWorkers bounds the goroutines scoring the base pairs
// of one sequence.
func (o *modelOptions) build(fs *pflag.FlagSet, log *zap.Logger, pairWorkers int) (model.Model, model.Config, error) {
	var w *feedforward.Weights
	switch {
	case strings.HasSuffix(o.param, ".par"):
		p, err := turner.ReadParFile(o.param)
		if err != nil {
			return nil, model.Config{}, err
		}
		w = &feedforward.Weights{StateDict: p.StateDict()}
	case o.param != "":
		var err error
		if w, err = feedforward.ReadCompressedWeightsFromFile(o.param); err != nil {
			return nil, model.Config{}, err
		}
	}
	var embedded json.RawMessage
	if w != nil {
		embedded = w.Config
	}
	cfg, err := o.resolve(fs, embedded)
	if err != nil {
		return nil, cfg, err
	}
	cfg.Workers = pairWorkers

	var rng *rand.Rand
	if w == nil {
		seed := o.seed
		if seed < 0 {
			seed = time.Now().UnixNano()
		}
		log.Debug("initialising weights", zap.Int64("seed", seed))
		rng = rand.New(rand.NewSource(seed))
	}
	m, err := model.Build(o.name, &cfg, rng)
	if err != nil {
		return nil, cfg, err
	}
	if w != nil {
		if err := m.LoadStateDict(w.StateDict); err != nil {
			return nil, cfg, fmt.Errorf("%s: %w", o.param, err)
		}
		log.Debug("loaded parameters", zap.String("param", o.param), zap.Int("tensors", len(w.StateDict)))
	}
	return m, cfg, nil
}
