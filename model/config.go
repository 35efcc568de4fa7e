package model

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the network configuration of the neural folding models. Keys
// follow the names stored next to trained parameters.
type Config struct {
	EmbedSize      int     `yaml:"embed_size" json:"embed_size"`
	NumFilters     []int   `yaml:"num_filters" json:"num_filters"`
	FilterSize     []int   `yaml:"filter_size" json:"filter_size"`
	PoolSize       []int   `yaml:"pool_size" json:"pool_size"`
	Dilation       int     `yaml:"dilation" json:"dilation"`
	NumLSTMLayers  int     `yaml:"num_lstm_layers" json:"num_lstm_layers"`
	NumLSTMUnits   int     `yaml:"num_lstm_units" json:"num_lstm_units"`
	NumHiddenUnits []int   `yaml:"num_hidden_units" json:"num_hidden_units"`
	DropoutRate    float64 `yaml:"dropout_rate" json:"dropout_rate"`
	FCDropoutRate  float64 `yaml:"fc_dropout_rate" json:"fc_dropout_rate"`
	LSTMCNN        bool    `yaml:"lstm_cnn" json:"lstm_cnn"`
	NumAtt         int     `yaml:"num_att" json:"num_att"`
	ContextLength  int     `yaml:"context_length" json:"context_length"`
	MixBase        int     `yaml:"mix_base" json:"mix_base"`
	PairJoin       string  `yaml:"pair_join" json:"pair_join"`
	FC             string  `yaml:"fc" json:"fc"`
	NoSplitLR      bool    `yaml:"no_split_lr" json:"no_split_lr"`

	// Workers bounds the goroutines scoring base pairs of one sequence.
	Workers int `yaml:"-" json:"-"`
}

// DefaultConfig returns the configuration used when nothing is given.
func DefaultConfig() Config {
	return Config{
		NumFilters:     []int{96},
		FilterSize:     []int{5},
		PoolSize:       []int{1},
		NumHiddenUnits: []int{32},
		ContextLength:  1,
		PairJoin:       "cat",
		FC:             "linear",
		Workers:        1,
	}
}

// LoadConfig reads a YAML file over c. Keys missing from the file keep
// their current values.
func (c *Config) LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// LoadConfig reads a YAML configuration over the defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	err := c.LoadConfig(path)
	return c, err
}

// ErrConfig is wrapped by configuration validation errors.
var ErrConfig = errors.New("invalid configuration")

// Validate checks that the configuration describes a network that can be
// built.
func (c *Config) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
	}
	if c.EmbedSize < 0 {
		return bad("embed_size %d is negative", c.EmbedSize)
	}
	for _, f := range c.NumFilters {
		if f < 0 {
			return bad("num_filters %d is negative", f)
		}
	}
	convs := c.convLayers()
	for _, f := range []struct {
		name string
		v    []int
	}{{"filter_size", c.FilterSize}, {"pool_size", c.PoolSize}} {
		if convs > 0 && len(f.v) != 1 && len(f.v) != len(c.NumFilters) {
			return bad("%d %s values for %d num_filters", len(f.v), f.name, len(c.NumFilters))
		}
		for _, v := range f.v {
			if v <= 0 {
				return bad("%s %d is not positive", f.name, v)
			}
		}
	}
	if c.NumLSTMLayers < 0 || c.NumLSTMUnits < 0 {
		return bad("negative LSTM size")
	}
	if c.NumLSTMLayers > 0 && c.NumLSTMUnits == 0 {
		return bad("num_lstm_layers %d with no units", c.NumLSTMLayers)
	}
	if c.NumAtt < 0 {
		return bad("num_att %d is negative", c.NumAtt)
	}
	if c.ContextLength < 1 {
		return bad("context_length %d is less than 1", c.ContextLength)
	}
	if c.MixBase < 0 {
		return bad("mix_base %d is negative", c.MixBase)
	}
	for _, h := range c.NumHiddenUnits {
		if h < 0 {
			return bad("num_hidden_units %d is negative", h)
		}
	}
	switch c.PairJoin {
	case "cat", "add", "mul", "bilinear":
	default:
		return bad("unknown pair_join %q", c.PairJoin)
	}
	switch c.FC {
	case "linear", "conv":
	default:
		return bad("unknown fc %q", c.FC)
	}
	if c.DropoutRate < 0 || c.DropoutRate >= 1 || c.FCDropoutRate < 0 || c.FCDropoutRate >= 1 {
		return bad("dropout rate outside [0, 1)")
	}
	return nil
}

// convLayers counts the convolutions; a zero filter count disables them.
func (c *Config) convLayers() int {
	n := 0
	for _, f := range c.NumFilters {
		if f > 0 {
			n++
		}
	}
	return n
}

func pick(v []int, n int) int {
	if len(v) == 1 {
		return v[0]
	}
	return v[n]
}
