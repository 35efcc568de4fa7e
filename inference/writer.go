package inference

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/neurlang/dnnfold/structure"
)

// Writer outputs predictions.
type Writer interface {
	Write(res *Result) error
}

// NewWriter picks the output for the --bpseq setting: plain text for "",
// BPSEQ on stdout for "stdout" and one BPSEQ file per sequence in the
// directory named otherwise.
func NewWriter(bpseq string, stdout io.Writer) (Writer, error) {
	switch bpseq {
	case "":
		return &TextWriter{W: stdout}, nil
	case "stdout":
		return &BPSEQWriter{W: stdout}, nil
	}
	if err := os.MkdirAll(bpseq, 0o755); err != nil {
		return nil, err
	}
	return &BPSEQDirWriter{Dir: bpseq}, nil
}

// TextWriter prints the header, the sequence and the dot-bracket structure
// with its score.
type TextWriter struct {
	W io.Writer
}

func (t *TextWriter) Write(res *Result) error {
	_, err := fmt.Fprintf(t.W, ">%s\n%s\n%s (%.1f)\n",
		res.Record.Header, res.Record.Seq, res.Pred.DotBracket(), res.Pred.Score)
	return err
}

// BPSEQWriter prints every prediction in BPSEQ format.
type BPSEQWriter struct {
	W io.Writer
}

func (b *BPSEQWriter) Write(res *Result) error {
	return structure.WriteBPSEQ(b.W, res.Record.Header, res.Pred.Score, res.Elapsed, res.Record.Seq, res.Pred.Pairs)
}

// BPSEQDirWriter writes each prediction to Dir, naming the file after the
// base name of the header without its extension.
type BPSEQDirWriter struct {
	Dir string
}

// FileName returns the path written for header.
func (b *BPSEQDirWriter) FileName(header string) string {
	base := filepath.Base(header)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(b.Dir, base+".bpseq")
}

func (b *BPSEQDirWriter) Write(res *Result) error {
	f, err := os.Create(b.FileName(res.Record.Header))
	if err != nil {
		return err
	}
	if err := structure.WriteBPSEQ(f, res.Record.Header, res.Pred.Score, res.Elapsed, res.Record.Seq, res.Pred.Pairs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
