package feedforward

import "bufio"
import "compress/lzw"
import "compress/zlib"
import "encoding/json"
import "errors"
import "fmt"
import "io"
import "os"
import "strings"

import "github.com/neurlang/dnnfold/layer"

// ErrShape is returned when a parameter file does not fit the model.
var ErrShape = layer.ErrShape

// Weights is the content of a parameter file: the tensors and, optionally,
// the model configuration they were trained with.
type Weights struct {
	StateDict layer.StateDict
	Config    json.RawMessage
}

type wrapped struct {
	StateDict layer.StateDict `json:"model_state_dict"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Compression is the codec around the JSON text of a parameter file.
type Compression int

const (
	Plain Compression = iota
	LZW
	Zlib
)

// CompressionOf picks the codec from the file name suffix.
func CompressionOf(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".lzw"):
		return LZW
	case strings.HasSuffix(name, ".zlib"):
		return Zlib
	}
	return Plain
}

// WriteCompressedWeightsToFile writes model weights to a file, compressed as
// its suffix says
func WriteCompressedWeightsToFile(name string, w *Weights) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = WriteCompressedWeights(file, w, CompressionOf(name))
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressedWeights writes model weights to a writer
func WriteCompressedWeights(w io.Writer, weights *Weights, c Compression) error {
	var cw io.WriteCloser
	switch c {
	case LZW:
		cw = lzw.NewWriter(w, lzw.LSB, 8)
	case Zlib:
		cw = zlib.NewWriter(w)
	default:
		bw := bufio.NewWriter(w)
		cw = flushCloser{bw}
	}
	var v any = weights.StateDict
	if len(weights.Config) > 0 {
		v = wrapped{StateDict: weights.StateDict, Config: weights.Config}
	}
	enc := json.NewEncoder(cw)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return cw.Close()
}

type flushCloser struct {
	*bufio.Writer
}

func (f flushCloser) Close() error {
	return f.Flush()
}

// ReadCompressedWeightsFromFile reads model weights from a file, decompressed
// as its suffix says
func ReadCompressedWeightsFromFile(name string) (*Weights, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	w, err := ReadCompressedWeights(file, CompressionOf(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return w, nil
}

// ReadCompressedWeights reads model weights from a reader
func ReadCompressedWeights(r io.Reader, c Compression) (*Weights, error) {
	switch c {
	case LZW:
		lr := lzw.NewReader(r, lzw.LSB, 8)
		defer lr.Close()
		r = lr
	case Zlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		r = zr
	default:
		r = bufio.NewReader(r)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	if _, ok := raw["model_state_dict"]; ok {
		w := new(Weights)
		if err := json.Unmarshal(raw["model_state_dict"], &w.StateDict); err != nil {
			return nil, fmt.Errorf("model_state_dict: %w", err)
		}
		w.Config = raw["config"]
		return w, nil
	}

	sd := make(layer.StateDict, len(raw))
	for k, v := range raw {
		var t layer.Tensor
		if err := json.Unmarshal(v, &t); err != nil {
			return nil, fmt.Errorf("tensor %q: %w", k, err)
		}
		sd[k] = t
	}
	if len(sd) == 0 {
		return nil, errors.New("no tensors")
	}
	return &Weights{StateDict: sd}, nil
}
