package pipeline

/*
 this part of the pipeline streams sequences from a source, extracts their minimizers in parallel and merges the results into a single index
*/

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/will-rowe/kwindex/src/index"
	"github.com/will-rowe/kwindex/src/minimizer"
	"github.com/will-rowe/kwindex/src/seqio"
)

// SequenceStreamer is a pipeline process that pulls records from a sequence source
type SequenceStreamer struct {
	info     *Info
	input    seqio.Source
	output   chan *seqio.Sequence
	abort    <-chan struct{}
	err      error
	numSeqs  int
	numBases int
}

// NewSequenceStreamer is the constructor
func NewSequenceStreamer(info *Info) *SequenceStreamer {
	return &SequenceStreamer{info: info, output: make(chan *seqio.Sequence, BUFFERSIZE)}
}

// Connect is the method to connect the SequenceStreamer to some data source
func (proc *SequenceStreamer) Connect(input seqio.Source) {
	proc.input = input
}

// Run is the method to run this process, which satisfies the pipeline interface
// streaming stops at the first unreadable or malformed record
func (proc *SequenceStreamer) Run() {
	defer close(proc.output)
	for {
		seq, err := proc.input.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			proc.err = fmt.Errorf("could not read record %d: %w", proc.numSeqs, err)
			return
		}
		if err := proc.check(seq); err != nil {
			proc.err = err
			return
		}
		seq.BaseCheck()
		proc.numSeqs++
		proc.numBases += seq.Len()
		select {
		case proc.output <- seq:
		case <-proc.abort:
			return
		}
	}
	if proc.numSeqs == 0 {
		log.Printf("\tno sequences received from input, the index will be empty")
	}
}

// check makes sure a record is usable and that the source numbered it correctly
func (proc *SequenceStreamer) check(seq *seqio.Sequence) error {
	if seq == nil {
		return fmt.Errorf("%w: record %d is nil", seqio.ErrMalformedRecord, proc.numSeqs)
	}
	if seq.ID != proc.numSeqs {
		return fmt.Errorf("%w: record %d has sequence ID %d (IDs must be contiguous from 0)", seqio.ErrMalformedRecord, proc.numSeqs, seq.ID)
	}
	if seq.Len() == 0 {
		return fmt.Errorf("%w: sequence %d (%v) has no bases", seqio.ErrMalformedRecord, seq.ID, seq.Name)
	}
	return nil
}

// Err returns the error that stopped the streamer, if any
func (proc *SequenceStreamer) Err() error {
	return proc.err
}

// NumSequences returns the number of records streamed
func (proc *SequenceStreamer) NumSequences() int {
	return proc.numSeqs
}

// NumBases returns the total length of the records streamed
func (proc *SequenceStreamer) NumBases() int {
	return proc.numBases
}

// MinimizerSketcher is a pipeline process that extracts minimizers using a pool of workers
// each worker fills a private index builder which is only handed on once the worker has finished
type MinimizerSketcher struct {
	info      *Info
	input     chan *seqio.Sequence
	output    chan *index.Builder
	abort     chan struct{}
	abortOnce sync.Once
	sync.Mutex
	err error
}

// NewMinimizerSketcher is the constructor
func NewMinimizerSketcher(info *Info) *MinimizerSketcher {
	return &MinimizerSketcher{
		info:   info,
		output: make(chan *index.Builder, info.NumProc),
		abort:  make(chan struct{}),
	}
}

// Connect is the method to join the input of this process with the output of a SequenceStreamer
func (proc *MinimizerSketcher) Connect(previous *SequenceStreamer) {
	proc.input = previous.output
	previous.abort = proc.abort
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *MinimizerSketcher) Run() {
	defer close(proc.output)
	extractor, err := minimizer.NewExtractor(proc.info.KmerSize, proc.info.WindowSize)
	if err != nil {
		proc.fail(err)
		for range proc.input {
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(proc.info.NumProc)
	for i := 0; i < proc.info.NumProc; i++ {
		go func() {
			defer wg.Done()
			partial := index.NewBuilder()
			for seq := range proc.input {
				// keep draining after a failure so the streamer is never blocked
				if proc.Err() != nil {
					continue
				}
				mins, err := extractor.Extract(uint64(seq.ID), seq.Seq)
				if err != nil {
					proc.fail(fmt.Errorf("could not extract minimizers from sequence %d (%v): %w", seq.ID, seq.Name, err))
					continue
				}
				partial.AddAll(mins)
			}
			proc.output <- partial
		}()
	}

	// the partial indexes are only merged once every worker is done
	wg.Wait()
}

// fail records the first error and tells the streamer to stop
func (proc *MinimizerSketcher) fail(err error) {
	proc.Lock()
	if proc.err == nil {
		proc.err = err
	}
	proc.Unlock()
	proc.abortOnce.Do(func() { close(proc.abort) })
}

// Err returns the first error encountered by the workers, if any
func (proc *MinimizerSketcher) Err() error {
	proc.Lock()
	defer proc.Unlock()
	return proc.err
}

// IndexMerger is a pipeline process that unions the partial indexes from the sketcher
type IndexMerger struct {
	info  *Info
	input chan *index.Builder
	index *index.Index
}

// NewIndexMerger is the constructor
func NewIndexMerger(info *Info) *IndexMerger {
	return &IndexMerger{info: info}
}

// Connect is the method to join the input of this process with the output of a MinimizerSketcher
func (proc *IndexMerger) Connect(previous *MinimizerSketcher) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *IndexMerger) Run() {
	merged := index.NewBuilder()
	numPartials := 0
	for partial := range proc.input {
		merged.Merge(partial)
		numPartials++
	}
	proc.index = merged.Build()
	log.Printf("\tmerged %d partial indexes: %d minimizers under %d distinct representations", numPartials, proc.index.NumEntries(), proc.index.NumKeys())
}

// Index returns the merged index, nil until the process has run
func (proc *IndexMerger) Index() *index.Index {
	return proc.index
}
