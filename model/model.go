// Package model builds the folding models selectable from the command line:
// the classical Turner model and the neural Zuker and Nussinov models.
package model

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/neurlang/dnnfold/layer"
	"github.com/neurlang/dnnfold/structure"
)

// ErrUnknown is returned by Build for a model name it does not know.
var ErrUnknown = errors.New("not implemented")

// Names lists the models Build knows.
var Names = []string{"Turner", "Zuker", "ZukerS", "ZukerL", "Nussinov"}

// Prediction is the folding result of one sequence.
type Prediction struct {
	Score float64
	Pairs structure.Pairs
}

// DotBracket renders the predicted structure.
func (p *Prediction) DotBracket() string {
	return p.Pairs.DotBracket()
}

// Model predicts secondary structures. Implementations are safe for
// concurrent use once their parameters are loaded.
type Model interface {
	Name() string

	// Fold predicts the highest scoring structure of seq.
	Fold(seq string) (*Prediction, error)

	// Evaluate scores a given structure of seq.
	Evaluate(seq string, pairs structure.Pairs) (float64, error)

	StateDict() layer.StateDict
	LoadStateDict(sd layer.StateDict) error
}

// Build creates the model called name. Neural models are initialised from
// rng; pass nil to leave their weights zero.
func Build(name string, cfg *Config, rng *rand.Rand) (Model, error) {
	switch name {
	case "Turner":
		return NewTurner(), nil
	case "Zuker", "ZukerS", "ZukerL":
		variant := variantM
		switch name {
		case "ZukerS":
			variant = variantS
		case "ZukerL":
			variant = variantL
		}
		return NewZuker(variant, cfg, rng)
	case "Nussinov":
		return NewNussinov(cfg, rng)
	}
	return nil, fmt.Errorf("model %q: %w", name, ErrUnknown)
}

// configured is implemented by the models built from a network Config.
type configured interface {
	Config() Config
}

// Fingerprint identifies a model with its network setting and parameters.
// The worker count does not take part.
func Fingerprint(m Model) [sha256.Size]byte {
	h := sha256.New()
	h.Write([]byte(m.Name()))
	if c, ok := m.(configured); ok {
		cfg := c.Config()
		cfg.Workers = 0
		h.Write([]byte{0})
		fmt.Fprintf(h, "%+v", cfg)
	}
	sd := m.StateDict()
	var buf [8]byte
	for _, k := range sd.Keys() {
		h.Write([]byte{0})
		h.Write([]byte(k))
		t := sd[k]
		for _, s := range t.Shape {
			binary.LittleEndian.PutUint64(buf[:], uint64(s))
			h.Write(buf[:])
		}
		for _, v := range t.Data {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
