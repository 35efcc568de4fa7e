package results

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
)

// CSVSink writes one ", " separated line per row: header, length, elapsed
// seconds, score, TP, TN, FP, FN, sensitivity, PPV, F-value and MCC.
type CSVSink struct {
	mu sync.Mutex
	w  *bufio.Writer
	c  io.Closer
}

// NewCSVSink writes to w.
func NewCSVSink(w io.Writer) *CSVSink {
	s := &CSVSink{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}
	return s
}

// CreateCSV truncates path and writes rows to it.
func CreateCSV(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return NewCSVSink(f), nil
}

// Write implements Sink.
func (s *CSVSink) Write(r Row) error {
	fields := []string{
		r.Header,
		strconv.Itoa(r.Length),
		formatFloat(r.Elapsed.Seconds()),
		formatFloat(r.Score),
		strconv.Itoa(r.TP),
		strconv.Itoa(r.TN),
		strconv.Itoa(r.FP),
		strconv.Itoa(r.FN),
		formatFloat(r.Sen),
		formatFloat(r.PPV),
		formatFloat(r.F),
		formatFloat(r.MCC),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.w, strings.Join(fields, ", ")); err != nil {
		return err
	}
	return s.w.Flush()
}

// Close implements Sink.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.w.Flush()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// formatFloat prints the shortest representation, keeping a decimal point on
// integral values.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if math.IsInf(v, 0) || math.IsNaN(v) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}
