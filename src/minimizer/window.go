package minimizer

// candidate is the canonical encoding of the k-mer starting at a given offset
type candidate struct {
	rep uint64
	dir Direction
}

// window is a monotonic deque of candidate offsets, the front always holds the leftmost minimum of the current window
type window struct {
	cands []candidate
	buf   []int
	head  int
	size  int
}

// newWindow returns a deque that can hold up to w offsets
func newWindow(cands []candidate, w int) *window {
	return &window{cands: cands, buf: make([]int, w)}
}

// push adds an offset to the back of the deque, dropping any offsets that can no longer be a window minimum
// equal values are kept so that ties resolve to the leftmost offset
func (win *window) push(i int) {
	for win.size > 0 {
		back := win.buf[(win.head+win.size-1)%len(win.buf)]
		if win.cands[back].rep <= win.cands[i].rep {
			break
		}
		win.size--
	}
	win.buf[(win.head+win.size)%len(win.buf)] = i
	win.size++
}

// evict drops offsets left of the window start
func (win *window) evict(left int) {
	for win.size > 0 && win.buf[win.head] < left {
		win.head = (win.head + 1) % len(win.buf)
		win.size--
	}
}

// front returns the offset of the current window minimum
func (win *window) front() int {
	return win.buf[win.head]
}

// collector accumulates minimizers for one sequence, skipping consecutive windows that select the same offset
type collector struct {
	seqID uint64
	cands []candidate
	out   []Minimizer
	last  int
}

func newCollector(seqID uint64, cands []candidate) *collector {
	return &collector{seqID: seqID, cands: cands, last: -1}
}

// emit records the minimum of the current window
// window minima arrive in non-decreasing offset order, so comparing with the last offset is enough
func (c *collector) emit(i int) {
	if i == c.last {
		return
	}
	c.last = i
	c.out = append(c.out, Minimizer{
		Representation: c.cands[i].rep,
		Position:       uint64(i),
		SequenceID:     c.seqID,
		Direction:      c.cands[i].dir,
	})
}
