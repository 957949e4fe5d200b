package minimizer

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shenwei356/kmers"
)

var (
	kmerSize   = uint64(3)
	windowSize = uint64(4)
	seqA       = []byte("ACGTACGT")
	seqB       = []byte("ACTGCGTGCGTGAAACGTGCACGTGACGTG")
)

// expected minimizers of seqA for k=3, w=4
// the k-mers ACG/CGT encode to 6 (canonical) and GTA/TAC to 44
var expectedSeqA = []Minimizer{
	{Representation: 6, Position: 0, SequenceID: 0, Direction: Forward},
	{Representation: 6, Position: 1, SequenceID: 0, Direction: Reverse},
	{Representation: 6, Position: 4, SequenceID: 0, Direction: Forward},
	{Representation: 6, Position: 5, SequenceID: 0, Direction: Reverse},
}

// revComp is a test helper to reverse complement a k-mer
func revComp(kmer []byte) []byte {
	comp := map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A'}
	rc := make([]byte, len(kmer))
	for i, b := range kmer {
		rc[len(kmer)-1-i] = comp[b]
	}
	return rc
}

// naiveCandidates encodes every k-mer independently using the kmers package
func naiveCandidates(t testing.TB, seq []byte, k int) []candidate {
	cands := []candidate{}
	for i := 0; i+k <= len(seq); i++ {
		fwd, err := kmers.Encode(seq[i : i+k])
		if err != nil {
			t.Fatal(err)
		}
		rev, err := kmers.Encode(revComp(seq[i : i+k]))
		if err != nil {
			t.Fatal(err)
		}
		if fwd <= rev {
			cands = append(cands, candidate{rep: fwd, dir: Forward})
		} else {
			cands = append(cands, candidate{rep: rev, dir: Reverse})
		}
	}
	return cands
}

// naiveMinimizers rescans every window, it is the quadratic reference for the deque implementation
func naiveMinimizers(t testing.TB, seqID uint64, seq []byte, k, w int) []Minimizer {
	cands := naiveCandidates(t, seq, k)
	n := len(cands)
	windows := [][2]int{}
	for j := 0; j < w-1 && j < n; j++ {
		windows = append(windows, [2]int{0, j})
	}
	for start := 0; start+w <= n; start++ {
		windows = append(windows, [2]int{start, start + w - 1})
	}
	first := n - w + 1
	if first < 1 {
		first = 1
	}
	for left := first; left < n; left++ {
		windows = append(windows, [2]int{left, n - 1})
	}
	out := []Minimizer{}
	last := -1
	for _, win := range windows {
		best := win[0]
		for i := win[0]; i <= win[1]; i++ {
			if cands[i].rep < cands[best].rep {
				best = i
			}
		}
		if best == last {
			continue
		}
		last = best
		out = append(out, Minimizer{Representation: cands[best].rep, Position: uint64(best), SequenceID: seqID, Direction: cands[best].dir})
	}
	return out
}

// randomSeq returns a random ACGT sequence
func randomSeq(r *rand.Rand, n int) []byte {
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = "ACGT"[r.Intn(4)]
	}
	return seq
}

// minimizerSliceCheck is a test function to check equality of slices
func minimizerSliceCheck(a, b []Minimizer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExtractorConstructor(t *testing.T) {
	e, err := NewExtractor(kmerSize, windowSize)
	if err != nil {
		t.Fatal(err)
	}
	if e.KmerSize() != kmerSize || e.WindowSize() != windowSize {
		t.Fatalf("NewExtractor did not record k and w")
	}
	for _, params := range [][2]uint64{{0, 4}, {3, 0}, {0, 0}, {33, 4}} {
		if _, err := NewExtractor(params[0], params[1]); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("NewExtractor(%d, %d) should fail with ErrInvalidParameter, got %v", params[0], params[1], err)
		}
	}
	if _, err := NewExtractor(MaxKmerSize, 1); err != nil {
		t.Fatalf("k == MaxKmerSize should be accepted: %v", err)
	}
}

func TestExtractExample(t *testing.T) {
	e, err := NewExtractor(kmerSize, windowSize)
	if err != nil {
		t.Fatal(err)
	}
	mins, err := e.Extract(0, seqA)
	if err != nil {
		t.Fatal(err)
	}
	if !minimizerSliceCheck(mins, expectedSeqA) {
		t.Fatalf("unexpected minimizers for %s: %v", seqA, mins)
	}
	central, err := e.CentralMinimizers(0, seqA)
	if err != nil {
		t.Fatal(err)
	}
	if len(central) != 3 || central[0].Position != 0 || central[1].Position != 1 || central[2].Position != 4 {
		t.Fatalf("unexpected central minimizers: %v", central)
	}
	ends, err := e.EndMinimizers(0, seqA)
	if err != nil {
		t.Fatal(err)
	}
	if len(ends) != 3 || ends[0].Position != 0 || ends[1].Position != 4 || ends[2].Position != 5 {
		t.Fatalf("unexpected end minimizers: %v", ends)
	}
	if string(mins[0].Kmer(int(kmerSize))) != "ACG" {
		t.Fatalf("could not decode minimizer k-mer: %s", mins[0].Kmer(int(kmerSize)))
	}
}

func TestShortSequences(t *testing.T) {
	e, err := NewExtractor(5, 10)
	if err != nil {
		t.Fatal(err)
	}

	// shorter than k yields nothing, even with bases that would otherwise be rejected
	for _, seq := range [][]byte{nil, []byte("ACGT"), []byte("NNNN")} {
		mins, err := e.Extract(0, seq)
		if err != nil {
			t.Fatal(err)
		}
		if len(mins) != 0 {
			t.Fatalf("sequence shorter than k should yield no minimizers, got %v", mins)
		}
	}

	// sequences between k and w+k-2 only have end windows but must still be covered
	for n := 5; n <= 13; n++ {
		seq := randomSeq(rand.New(rand.NewSource(int64(n))), n)
		mins, err := e.Extract(1, seq)
		if err != nil {
			t.Fatal(err)
		}
		if len(mins) == 0 {
			t.Fatalf("sequence of length %d yielded no minimizers", n)
		}
		if mins[0].Position != 0 || mins[len(mins)-1].Position != uint64(n-5) {
			t.Fatalf("end minimizers should cover the first and last k-mer (length %d): %v", n, mins)
		}
	}
}

func TestInvalidBase(t *testing.T) {
	e, err := NewExtractor(kmerSize, windowSize)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Extract(0, []byte("ACGTNACGT")); !errors.Is(err, ErrInvalidBase) {
		t.Fatalf("expected ErrInvalidBase, got %v", err)
	}

	// lower case bases are encoded like upper case ones
	lower, err := e.Extract(0, []byte("acgtacgt"))
	if err != nil {
		t.Fatal(err)
	}
	if !minimizerSliceCheck(lower, expectedSeqA) {
		t.Fatalf("lower case sequence gave different minimizers: %v", lower)
	}
}

func TestCanonicalRepresentation(t *testing.T) {
	e, err := NewExtractor(uint64(len(seqB)), 1)
	if err != nil {
		t.Fatal(err)
	}
	fwd, err := e.Extract(0, seqB)
	if err != nil {
		t.Fatal(err)
	}
	rev, err := e.Extract(0, revComp(seqB))
	if err != nil {
		t.Fatal(err)
	}
	if len(fwd) != 1 || len(rev) != 1 {
		t.Fatalf("a sequence of length k should yield exactly one minimizer")
	}
	if fwd[0].Representation != rev[0].Representation || fwd[0].Direction == rev[0].Direction {
		t.Fatalf("reverse complements should share a representation with opposite directions: %v vs %v", fwd[0], rev[0])
	}

	// palindromes resolve to the forward strand
	e, err = NewExtractor(4, 1)
	if err != nil {
		t.Fatal(err)
	}
	pal, err := e.Extract(0, []byte("ACGT"))
	if err != nil {
		t.Fatal(err)
	}
	if pal[0].Direction != Forward || pal[0].Representation != 27 {
		t.Fatalf("unexpected palindrome minimizer: %v", pal[0])
	}
}

func TestMaxKmerSize(t *testing.T) {
	r := rand.New(rand.NewSource(32))
	seq := randomSeq(r, 200)
	e, err := NewExtractor(MaxKmerSize, 8)
	if err != nil {
		t.Fatal(err)
	}
	mins, err := e.Extract(3, seq)
	if err != nil {
		t.Fatal(err)
	}
	if !minimizerSliceCheck(mins, naiveMinimizers(t, 3, seq, MaxKmerSize, 8)) {
		t.Fatal("k=32 minimizers do not match the naive reference")
	}
}

func TestAgainstNaive(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		k := 1 + r.Intn(12)
		w := 1 + r.Intn(15)
		n := r.Intn(120)

		// low complexity sequences exercise the tie-break
		var seq []byte
		if trial%4 == 0 {
			seq = make([]byte, n)
			for i := range seq {
				seq[i] = "AT"[r.Intn(2)]
			}
		} else {
			seq = randomSeq(r, n)
		}
		e, err := NewExtractor(uint64(k), uint64(w))
		if err != nil {
			t.Fatal(err)
		}
		mins, err := e.Extract(uint64(trial), seq)
		if err != nil {
			t.Fatal(err)
		}
		expected := naiveMinimizers(t, uint64(trial), seq, k, w)
		if !minimizerSliceCheck(mins, expected) {
			t.Fatalf("k=%d w=%d seq=%s\n got: %v\nwant: %v", k, w, seq, mins, expected)
		}

		// coverage: at least one minimizer, positions strictly increase and never jump more than w
		if n < k {
			continue
		}
		if len(mins) == 0 {
			t.Fatalf("k=%d w=%d: no minimizers for sequence of length %d", k, w, n)
		}
		for i := 1; i < len(mins); i++ {
			gap := mins[i].Position - mins[i-1].Position
			if mins[i].Position <= mins[i-1].Position || gap > uint64(w) {
				t.Fatalf("k=%d w=%d: bad gap between %v and %v", k, w, mins[i-1], mins[i])
			}
		}
	}
}

func TestDeterminism(t *testing.T) {
	e, err := NewExtractor(7, 5)
	if err != nil {
		t.Fatal(err)
	}
	first, err := e.Extract(0, seqB)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Extract(0, seqB)
		if err != nil {
			t.Fatal(err)
		}
		if !minimizerSliceCheck(first, again) {
			t.Fatal("repeated extraction gave different results")
		}
	}
}

// benchmark extraction
func BenchmarkExtract(b *testing.B) {
	seq := randomSeq(rand.New(rand.NewSource(1)), 100000)
	e, err := NewExtractor(15, 10)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := e.Extract(0, seq); err != nil {
			b.Fatal(err)
		}
	}
}
