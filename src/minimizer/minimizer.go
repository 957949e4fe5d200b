// Package minimizer contains the (k,w)-minimizer extractor. K-mers are 2-bit encoded (A=0, C=1, G=2, T=3, first base most significant) and the canonical representation of a k-mer is the smaller of its forward and reverse complement encodings.
package minimizer

import (
	"errors"
	"fmt"

	"github.com/shenwei356/kmers"
)

// MaxKmerSize is the largest k-mer that fits in a 64 bit representation
const MaxKmerSize = 32

// MaxWindowSize bounds w so that window offsets fit in an int on every platform
const MaxWindowSize = 1 << 30

var (
	// ErrInvalidParameter is returned for a zero k-mer or window size, or sizes above MaxKmerSize/MaxWindowSize
	ErrInvalidParameter = errors.New("invalid minimizer parameter")

	// ErrInvalidBase is returned when a k-mer contains a symbol other than A/C/G/T
	ErrInvalidBase = errors.New("invalid base in sequence")
)

// seqNT4table converts an upper or lower case nucleotide to its 2-bit code, anything else is 4
var seqNT4table [256]uint8

func init() {
	for i := range seqNT4table {
		seqNT4table[i] = 4
	}
	for code, bases := range []string{"Aa", "Cc", "Gg", "Tt"} {
		for _, b := range []byte(bases) {
			seqNT4table[b] = uint8(code)
		}
	}
}

// Direction records which strand gave the canonical representation of a minimizer
type Direction uint8

const (
	// Forward means the forward encoding was <= the reverse complement encoding
	Forward Direction = iota
	// Reverse means the reverse complement encoding was smaller
	Reverse
)

// String satisfies the Stringer interface
func (d Direction) String() string {
	if d == Reverse {
		return "-"
	}
	return "+"
}

// Minimizer is a single selected k-mer
type Minimizer struct {
	Representation uint64
	Position       uint64
	SequenceID     uint64
	Direction      Direction
}

// Kmer decodes the representation back to bases (this is the canonical strand, not necessarily the one in the sequence)
func (m Minimizer) Kmer(k int) []byte {
	return kmers.MustDecode(m.Representation, k)
}

// String satisfies the Stringer interface
func (m Minimizer) String() string {
	return fmt.Sprintf("seq%d:%d(%v):%d", m.SequenceID, m.Position, m.Direction, m.Representation)
}

// checkParams validates a k-mer and window size pair
func checkParams(k, w uint64) error {
	if k == 0 {
		return fmt.Errorf("%w: minimizer size must be greater than 0", ErrInvalidParameter)
	}
	if w == 0 {
		return fmt.Errorf("%w: window size must be greater than 0", ErrInvalidParameter)
	}
	if k > MaxKmerSize {
		return fmt.Errorf("%w: minimizer size (%d) exceeds maximum (%d)", ErrInvalidParameter, k, MaxKmerSize)
	}
	if w > MaxWindowSize {
		return fmt.Errorf("%w: window size (%d) exceeds maximum (%d)", ErrInvalidParameter, w, MaxWindowSize)
	}
	return nil
}
