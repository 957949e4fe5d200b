package reporting

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/will-rowe/kwindex/src/index"
	"github.com/will-rowe/kwindex/src/minimizer"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// KmerCount records how often a representation occurs in the index
type KmerCount struct {
	Kmer           string
	Representation uint64
	Count          int
}

// Summary holds the statistics for a minimizer index
type Summary struct {
	KmerSize           uint64
	WindowSize         uint64
	NumKeys            int
	NumEntries         int
	Singletons         int
	EntriesPerSequence map[uint64]int
	MaxGap             uint64
	MeanGap            float64
	TopKmers           []KmerCount
	gaps               plotter.Values
}

// Summarise collects the statistics for an index, topN limits the number of repetitive k-mers reported
func Summarise(idx *index.Index, k, w uint64, topN int) *Summary {
	summary := &Summary{
		KmerSize:           k,
		WindowSize:         w,
		NumKeys:            idx.NumKeys(),
		NumEntries:         idx.NumEntries(),
		EntriesPerSequence: make(map[uint64]int),
	}
	positions := make(map[uint64][]uint64)
	counts := []KmerCount{}
	idx.Range(func(rep uint64, entries []minimizer.Minimizer) bool {
		if len(entries) == 1 {
			summary.Singletons++
		}
		for _, e := range entries {
			summary.EntriesPerSequence[e.SequenceID]++
			positions[e.SequenceID] = append(positions[e.SequenceID], e.Position)
		}
		counts = append(counts, KmerCount{
			Kmer:           string(entries[0].Kmer(int(k))),
			Representation: rep,
			Count:          len(entries),
		})
		return true
	})

	// get the distance between neighbouring minimizers in each sequence
	gapTotal := 0.0
	for _, pos := range positions {
		sort.Slice(pos, func(i, j int) bool { return pos[i] < pos[j] })
		for i := 1; i < len(pos); i++ {
			gap := pos[i] - pos[i-1]
			if gap > summary.MaxGap {
				summary.MaxGap = gap
			}
			summary.gaps = append(summary.gaps, float64(gap))
			gapTotal += float64(gap)
		}
	}
	if len(summary.gaps) != 0 {
		summary.MeanGap = gapTotal / float64(len(summary.gaps))
	}

	// keep the most repetitive k-mers, ties broken by representation so the report is stable
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Representation < counts[j].Representation
	})
	if topN < len(counts) {
		counts = counts[:topN]
	}
	summary.TopKmers = counts
	return summary
}

// Write prints the summary as a tab separated report
func (summary *Summary) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 1, '\t', 0)
	fmt.Fprintf(tw, "minimizer size (k)\t%d\n", summary.KmerSize)
	fmt.Fprintf(tw, "window size (w)\t%d\n", summary.WindowSize)
	fmt.Fprintf(tw, "sequences with minimizers\t%d\n", len(summary.EntriesPerSequence))
	fmt.Fprintf(tw, "minimizers\t%d\n", summary.NumEntries)
	fmt.Fprintf(tw, "distinct representations\t%d\n", summary.NumKeys)
	fmt.Fprintf(tw, "singleton representations\t%d\n", summary.Singletons)
	fmt.Fprintf(tw, "mean gap between minimizers\t%.2f\n", summary.MeanGap)
	fmt.Fprintf(tw, "max gap between minimizers\t%d\n", summary.MaxGap)
	for _, kc := range summary.TopKmers {
		fmt.Fprintf(tw, "repetitive k-mer\t%v\t%d\n", kc.Kmer, kc.Count)
	}
	return tw.Flush()
}

// PlotGaps saves a histogram of the gaps between neighbouring minimizers
func (summary *Summary) PlotGaps(fileName string) error {
	if len(summary.gaps) == 0 {
		return fmt.Errorf("no gaps to plot, every sequence has fewer than 2 minimizers")
	}
	gapPlot, err := plot.New()
	if err != nil {
		return err
	}
	gapPlot.Title.Text = fmt.Sprintf("minimizer spacing (k=%d, w=%d)", summary.KmerSize, summary.WindowSize)
	gapPlot.X.Label.Text = "gap between neighbouring minimizers (bases)"
	gapPlot.Y.Label.Text = "count"
	bins := int(summary.MaxGap)
	if bins < 1 {
		bins = 1
	}
	hist, err := plotter.NewHist(summary.gaps, bins)
	if err != nil {
		return err
	}
	gapPlot.Add(hist)
	return gapPlot.Save(6*vg.Inch, 4*vg.Inch, fileName)
}
