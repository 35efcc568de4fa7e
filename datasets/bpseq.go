package datasets

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/neurlang/dnnfold/structure"
)

// LoadBPSEQList reads a file listing one BPSEQ path per line. The files are
// read concurrently and returned in list order, each headed by its path.
func LoadBPSEQList(ctx context.Context, path string) ([]Record, error) {
	var l Loader
	return l.LoadBPSEQList(ctx, path)
}

// LoadBPSEQList is the package level LoadBPSEQList bounded by l.Workers.
func (l *Loader) LoadBPSEQList(ctx context.Context, path string) ([]Record, error) {
	paths, err := readList(path)
	if err != nil {
		return nil, err
	}
	recs := make([]Record, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers())
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seq, ref, err := LoadBPSEQ(p)
			if err != nil {
				return err
			}
			recs[i] = Record{Header: p, Seq: seq, Ref: ref}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}

// LoadBPSEQ reads a single BPSEQ file.
func LoadBPSEQ(path string) (string, structure.Pairs, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	seq, ref, err := structure.ReadBPSEQ(bufio.NewReader(f))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	return seq, ref, nil
}

func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if p := strings.TrimSpace(sc.Text()); p != "" {
			paths = append(paths, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return paths, nil
}
