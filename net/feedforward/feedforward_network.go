// Package feedforward implements a feedforward network type
package feedforward

import "fmt"
import "math/rand"

import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/dnnfold/layer"

// FeedforwardNetwork is an ordered stack of named layers. The output of each
// layer is the input of the next one.
type FeedforwardNetwork struct {
	names  []string
	layers []layer.Layer
}

// NewLayer lays out b and adds it to the end of the network. Its parameters
// are listed under name followed by a dot.
func (f *FeedforwardNetwork) NewLayer(name string, b layer.Builder, rng *rand.Rand) layer.Layer {
	l := b.Lay(rng)
	f.NewCombiner(name, l)
	return l
}

// NewCombiner adds an already built layer to the end of the network.
func (f *FeedforwardNetwork) NewCombiner(name string, l layer.Layer) {
	f.names = append(f.names, name)
	f.layers = append(f.layers, l)
}

// Forward runs x through all layers.
func (f FeedforwardNetwork) Forward(x *mat.Dense) *mat.Dense {
	for _, l := range f.layers {
		x = l.Forward(x)
	}
	return x
}

// Params lists the parameters of all layers, prefixed by layer name.
func (f FeedforwardNetwork) Params() (o []layer.Param) {
	for i, l := range f.layers {
		o = append(o, layer.Prefix(f.names[i]+".", l.Params())...)
	}
	return
}

// LoadStateDict copies the tensors of sd into the layers. In strict mode
// every parameter must be present and no tensor may be left over.
func (f *FeedforwardNetwork) LoadStateDict(sd layer.StateDict, strict bool) error {
	if err := layer.Load(f.Params(), sd, strict); err != nil {
		return fmt.Errorf("feedforward: %w", err)
	}
	return nil
}

// StateDict exports the parameters of all layers.
func (f FeedforwardNetwork) StateDict() layer.StateDict {
	return layer.Export(f.Params())
}
