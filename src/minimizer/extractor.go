package minimizer

import "fmt"

// Extractor selects (k,w)-minimizers from single sequences
// it holds no per-sequence state and can be shared between goroutines
type Extractor struct {
	kmerSize   uint64
	windowSize uint64
	bitmask    uint64
	bitshift   uint64
}

// NewExtractor is the constructor, it fails with ErrInvalidParameter for a bad k/w pair
func NewExtractor(k, w uint64) (*Extractor, error) {
	if err := checkParams(k, w); err != nil {
		return nil, err
	}
	return &Extractor{
		kmerSize:   k,
		windowSize: w,
		bitmask:    (uint64(1) << (2 * k)) - uint64(1),
		bitshift:   2 * (k - 1),
	}, nil
}

// KmerSize returns k
func (e *Extractor) KmerSize() uint64 { return e.kmerSize }

// WindowSize returns w
func (e *Extractor) WindowSize() uint64 { return e.windowSize }

// Extract returns every minimizer of a sequence, in position order with one entry per selected position
/*
 the windows are visited in this order:
	-1. end windows anchored at the sequence start, holding 1..w-1 k-mers
	-2. the full central windows of w k-mers
	-3. end windows anchored at the sequence end, holding w-1..1 k-mers
 each window either gains a k-mer on the right or loses one on the left, so the selected offsets never decrease
*/
func (e *Extractor) Extract(seqID uint64, sequence []byte) ([]Minimizer, error) {
	cands, err := e.encode(sequence)
	if err != nil || len(cands) == 0 {
		return nil, err
	}
	c := newCollector(seqID, cands)
	e.frontEndWindows(c)
	e.centralWindows(c)
	e.backEndWindows(c)
	return c.out, nil
}

// CentralMinimizers returns the minimizers of the full windows only
func (e *Extractor) CentralMinimizers(seqID uint64, sequence []byte) ([]Minimizer, error) {
	cands, err := e.encode(sequence)
	if err != nil || len(cands) == 0 {
		return nil, err
	}
	c := newCollector(seqID, cands)
	e.centralWindows(c)
	return c.out, nil
}

// EndMinimizers returns the minimizers of the boundary windows that hold fewer than w k-mers
func (e *Extractor) EndMinimizers(seqID uint64, sequence []byte) ([]Minimizer, error) {
	cands, err := e.encode(sequence)
	if err != nil || len(cands) == 0 {
		return nil, err
	}
	c := newCollector(seqID, cands)
	e.frontEndWindows(c)
	e.backEndWindows(c)
	return c.out, nil
}

// encode computes the canonical representation of every k-mer in the sequence
func (e *Extractor) encode(sequence []byte) ([]candidate, error) {
	if uint64(len(sequence)) < e.kmerSize {
		return nil, nil
	}
	cands := make([]candidate, 0, uint64(len(sequence))-e.kmerSize+1)

	// a holder for evaluating the forward and reverse complement k-mers
	var fwd, rev uint64
	for i := 0; i < len(sequence); i++ {
		c := seqNT4table[sequence[i]]
		if c > 3 {
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidBase, sequence[i], i)
		}
		fwd = (fwd<<2 | uint64(c)) & e.bitmask
		rev = (rev >> 2) | (uint64(3)-uint64(c))<<e.bitshift
		if uint64(i+1) < e.kmerSize {
			continue
		}
		if fwd <= rev {
			cands = append(cands, candidate{rep: fwd, dir: Forward})
		} else {
			cands = append(cands, candidate{rep: rev, dir: Reverse})
		}
	}
	return cands, nil
}

// frontEndWindows covers the windows [0, j] for j < w-1
func (e *Extractor) frontEndWindows(c *collector) {
	n := minInt(int(e.windowSize)-1, len(c.cands))
	if n <= 0 {
		return
	}
	win := newWindow(c.cands, n)
	for j := 0; j < n; j++ {
		win.push(j)
		c.emit(win.front())
	}
}

// centralWindows slides a full window of w k-mers along the sequence
func (e *Extractor) centralWindows(c *collector) {
	w := int(e.windowSize)
	if len(c.cands) < w {
		return
	}
	win := newWindow(c.cands, w)
	for i := range c.cands {
		win.evict(i - w + 1)
		win.push(i)
		if i < w-1 {
			continue
		}
		c.emit(win.front())
	}
}

// backEndWindows covers the windows that end on the last k-mer and hold fewer than w k-mers, largest first
func (e *Extractor) backEndWindows(c *collector) {
	numKmers := len(c.cands)
	first := maxInt(numKmers-int(e.windowSize), 0) + 1
	if first >= numKmers {
		return
	}
	win := newWindow(c.cands, numKmers-first)
	for i := first; i < numKmers; i++ {
		win.push(i)
	}
	for left := first; left < numKmers; left++ {
		win.evict(left)
		c.emit(win.front())
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
