package structure

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ReadBPSEQ parses a BPSEQ file: one "index base partner" line per base,
// indices starting at 1. Blank lines and lines starting with '#' are skipped.
func ReadBPSEQ(r io.Reader) (seq string, p Pairs, err error) {
	var bases strings.Builder
	p = Pairs{0}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if len(f) < 3 {
			return "", nil, fmt.Errorf("line %d: bad field count", ln)
		}
		idx, err := strconv.Atoi(f[0])
		if err != nil {
			return "", nil, fmt.Errorf("line %d: %w", ln, err)
		}
		if idx != len(p) {
			return "", nil, fmt.Errorf("line %d: index %d out of order", ln, idx)
		}
		j, err := strconv.Atoi(f[2])
		if err != nil {
			return "", nil, fmt.Errorf("line %d: %w", ln, err)
		}
		if j < 0 {
			return "", nil, fmt.Errorf("line %d: negative partner %d", ln, j)
		}
		bases.WriteString(f[1][:1])
		p = append(p, j)
	}
	if err := sc.Err(); err != nil {
		return "", nil, err
	}
	L := len(p) - 1
	for i := 1; i <= L; i++ {
		if p[i] > L {
			return "", nil, fmt.Errorf("base %d pairs with %d beyond length %d", i, p[i], L)
		}
	}
	return bases.String(), p, nil
}

// WriteBPSEQ writes a predicted structure in BPSEQ format preceded by a
// comment line carrying the header, the score and the elapsed time.
func WriteBPSEQ(w io.Writer, header string, score float64, elapsed time.Duration, seq string, p Pairs) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s (s=%.1f, %.5fs)\n", header, score, elapsed.Seconds())
	for i := 1; i < len(p) && i <= len(seq); i++ {
		fmt.Fprintf(bw, "%d\t%c\t%d\n", i, seq[i-1], p[i])
	}
	return bw.Flush()
}
