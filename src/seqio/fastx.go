package seqio

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	bioseqio "github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
)

// FastxSource is a Source that reads FASTA or FASTQ formatted records
type FastxSource struct {
	scanner *bioseqio.Scanner
	closers []io.Closer
	nextID  int
	empty   bool
}

// NewFastxSource is the constructor, the format is taken from the first byte of the stream
func NewFastxSource(r io.Reader) (*FastxSource, error) {
	br := bufio.NewReader(r)
	first, err := firstByte(br)
	if err == io.EOF {
		return &FastxSource{empty: true}, nil
	}
	if err != nil {
		return nil, err
	}
	var reader bioseqio.Reader
	switch first {
	case '>':
		reader = fasta.NewReader(br, linear.NewSeq("", nil, alphabet.DNA))
	case '@':
		reader = fastq.NewReader(br, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
	default:
		return nil, fmt.Errorf("%w: input does not begin with '>' or '@' (found %q)", ErrMalformedRecord, first)
	}
	return &FastxSource{scanner: bioseqio.NewScanner(reader)}, nil
}

// OpenFastx opens a FASTA/FASTQ file, handling gzipped input
func OpenFastx(path string) (*FastxSource, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	closers := []io.Closer{fh}
	var r io.Reader = fh
	splitFilename := strings.Split(path, ".")
	if splitFilename[len(splitFilename)-1] == "gz" {
		gz, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("could not open gzipped file %v: %w", path, err)
		}
		closers = append(closers, gz)
		r = gz
	}
	src, err := NewFastxSource(r)
	if err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("could not read %v: %w", path, err)
	}
	src.closers = closers
	return src, nil
}

// Next satisfies the Source interface
func (FastxSource *FastxSource) Next() (*Sequence, error) {
	if FastxSource.empty || !FastxSource.scanner.Next() {
		if FastxSource.scanner != nil {
			if err := FastxSource.scanner.Error(); err != nil {
				return nil, err
			}
		}
		return nil, io.EOF
	}
	s := FastxSource.scanner.Seq()
	record := &Sequence{
		ID:   FastxSource.nextID,
		Name: s.Name(),
		Seq:  letters(s),
	}
	FastxSource.nextID++
	return record, nil
}

// Close releases any file handles held by the source
func (FastxSource *FastxSource) Close() error {
	return closeAll(FastxSource.closers)
}

// letters collects the bases of a biogo sequence
func letters(s seq.Sequence) []byte {
	out := make([]byte, 0, s.Len())
	for i := s.Start(); i < s.End(); i++ {
		out = append(out, byte(s.At(i).L))
	}
	return out
}

// firstByte returns the first non-whitespace byte without consuming it
func firstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}

func closeAll(closers []io.Closer) error {
	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
