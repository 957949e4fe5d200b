/*
	the seqio package contains custom types and methods for holding sequence data and the sources that supply it to the indexer
*/
package seqio

import (
	"errors"
	"io"
	"unicode"
)

// ErrMalformedRecord is returned when a source yields a record that can't be indexed
var ErrMalformedRecord = errors.New("malformed sequence record")

// complementBases is the lookup table used during reverse complementation
var complementBases = [256]byte{
	'A': 'T',
	'T': 'A',
	'C': 'G',
	'G': 'C',
	'N': 'N',
	'a': 't',
	't': 'a',
	'c': 'g',
	'g': 'c',
	'n': 'n',
}

// Sequence is the base type for a record supplied by a Source
type Sequence struct {
	ID   int
	Name string
	Seq  []byte
}

// Source is the interface satisfied by anything that can supply sequences to the indexer
// Next returns io.EOF once the source is exhausted
type Source interface {
	Next() (*Sequence, error)
}

// Len returns the number of bases held by the sequence
func (Sequence *Sequence) Len() int {
	return len(Sequence.Seq)
}

// BaseCheck is a method to convert bases to upper case
// other symbols are left in place so that the extractor can reject them
func (Sequence *Sequence) BaseCheck() {
	for i, j := 0, len(Sequence.Seq); i < j; i++ {
		if b := Sequence.Seq[i]; b >= 'a' && b <= 'z' {
			Sequence.Seq[i] = byte(unicode.ToUpper(rune(b)))
		}
	}
}

// RevComplement returns the reverse complement of a sequence, leaving the input untouched
func RevComplement(seq []byte) []byte {
	rc := make([]byte, len(seq))
	for i, j := 0, len(seq)-1; j >= 0; i, j = i+1, j-1 {
		if c := complementBases[seq[j]]; c != 0 {
			rc[i] = c
		} else {
			rc[i] = seq[j]
		}
	}
	return rc
}

// SliceSource is an in-memory Source
type SliceSource struct {
	seqs [][]byte
	next int
}

// NewSliceSource is the constructor for an in-memory source, IDs follow the argument order
func NewSliceSource(seqs ...[]byte) *SliceSource {
	return &SliceSource{seqs: seqs}
}

// Next satisfies the Source interface
func (SliceSource *SliceSource) Next() (*Sequence, error) {
	if SliceSource.next >= len(SliceSource.seqs) {
		return nil, io.EOF
	}
	seq := &Sequence{
		ID:  SliceSource.next,
		Seq: append([]byte(nil), SliceSource.seqs[SliceSource.next]...),
	}
	SliceSource.next++
	return seq, nil
}

// MultiSource chains several sources together, renumbering sequence IDs so they stay contiguous
type MultiSource struct {
	sources []Source
	current int
	nextID  int
}

// NewMultiSource is the constructor
func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{sources: sources}
}

// Next satisfies the Source interface
func (MultiSource *MultiSource) Next() (*Sequence, error) {
	for MultiSource.current < len(MultiSource.sources) {
		seq, err := MultiSource.sources[MultiSource.current].Next()
		if err == io.EOF {
			MultiSource.current++
			continue
		}
		if err != nil {
			return nil, err
		}
		if seq == nil {
			return nil, ErrMalformedRecord
		}
		seq.ID = MultiSource.nextID
		MultiSource.nextID++
		return seq, nil
	}
	return nil, io.EOF
}
