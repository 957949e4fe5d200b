package seqio

import (
	"io"

	"github.com/biogo/biogo/seq/multi"
	"github.com/will-rowe/gfa"
)

// MSASource is a Source that yields the ungapped rows of a multiple sequence alignment
type MSASource struct {
	msa  *multi.Multi
	next int
}

// OpenMSA reads a multiple sequence alignment (FASTA formatted) as a Source
func OpenMSA(path string) (*MSASource, error) {
	msa, err := gfa.ReadMSA(path)
	if err != nil {
		return nil, err
	}
	return &MSASource{msa: msa}, nil
}

// Next satisfies the Source interface
func (MSASource *MSASource) Next() (*Sequence, error) {
	if MSASource.next >= len(MSASource.msa.Seq) {
		return nil, io.EOF
	}
	row := MSASource.msa.Seq[MSASource.next]
	bases := make([]byte, 0, row.Len())
	for i := row.Start(); i < row.End(); i++ {
		l := byte(row.At(i).L)

		// drop alignment gaps
		if l == '-' || l == '.' || l == ' ' {
			continue
		}
		bases = append(bases, l)
	}
	seq := &Sequence{
		ID:   MSASource.next,
		Name: row.Name(),
		Seq:  bases,
	}
	MSASource.next++
	return seq, nil
}

// Close satisfies io.Closer, the alignment is read into memory when opened
func (MSASource *MSASource) Close() error {
	return nil
}
