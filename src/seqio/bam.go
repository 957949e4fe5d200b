package seqio

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/sam"
)

// BAMSource is a Source that reads the query sequences held in a BAM file (aligned or unaligned)
type BAMSource struct {
	reader *bam.Reader
	fh     *os.File
	nextID int
}

// NewBAMSource is the constructor for a BAM stream
func NewBAMSource(r io.Reader) (*BAMSource, error) {
	b, err := bam.NewReader(r, 0)
	if err != nil {
		return nil, fmt.Errorf("could not read BAM: %w", err)
	}
	return &BAMSource{reader: b}, nil
}

// OpenBAM opens a BAM file as a Source
func OpenBAM(path string) (*BAMSource, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	ok, err := bgzf.HasEOF(fh)
	if err != nil {
		fh.Close()
		return nil, fmt.Errorf("could not open BAM file %v: %w", path, err)
	}
	if !ok {
		log.Printf("\tfile %q has no bgzf magic block: may be truncated", path)
	}
	src, err := NewBAMSource(fh)
	if err != nil {
		fh.Close()
		return nil, err
	}
	src.fh = fh
	return src, nil
}

// Next satisfies the Source interface
// secondary and supplementary alignments are skipped so each read is only indexed once
func (BAMSource *BAMSource) Next() (*Sequence, error) {
	for {
		record, err := BAMSource.reader.Read()
		if err != nil {
			return nil, err
		}
		if record.Flags&(sam.Secondary|sam.Supplementary) != 0 {
			continue
		}
		bases := record.Seq.Expand()

		// reads mapped to the reverse strand are stored reverse complemented
		if record.Flags&sam.Reverse != 0 {
			bases = RevComplement(bases)
		}
		seq := &Sequence{
			ID:   BAMSource.nextID,
			Name: record.Name,
			Seq:  bases,
		}
		BAMSource.nextID++
		return seq, nil
	}
}

// Close releases the BAM reader and any file handle
func (BAMSource *BAMSource) Close() error {
	err := BAMSource.reader.Close()
	if BAMSource.fh != nil {
		if ferr := BAMSource.fh.Close(); err == nil {
			err = ferr
		}
	}
	return err
}
