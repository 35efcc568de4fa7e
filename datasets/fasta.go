package datasets

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// LoadFasta reads every sequence of a FASTA file. The header of a record is
// its name followed by the description.
func LoadFasta(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFasta(f)
}

// ReadFasta reads FASTA records from r.
func ReadFasta(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	if err := checkFasta(br); err != nil {
		return nil, err
	}
	in := fasta.NewReader(br, linear.NewSeq("", nil, alphabet.RNA))
	var recs []Record
	for {
		s, err := in.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read FASTA record %d: %w", len(recs)+1, err)
		}
		ls := s.(*linear.Seq)
		header := ls.Name()
		if d := ls.Description(); d != "" {
			header += " " + d
		}
		b := make([]byte, len(ls.Seq))
		for i, l := range ls.Seq {
			b[i] = byte(l)
		}
		recs = append(recs, Record{Header: header, Seq: string(b)})
	}
	return recs, nil
}

// checkFasta peeks at the first non-blank line of br.
func checkFasta(br *bufio.Reader) error {
	for n := 1; ; n *= 2 {
		peek, err := br.Peek(n)
		trimmed := bytes.TrimLeft(peek, " \t\r\n")
		if len(trimmed) > 0 {
			if trimmed[0] != '>' {
				return ErrNotFasta
			}
			return nil
		}
		if err != nil {
			// empty input
			return nil
		}
	}
}
