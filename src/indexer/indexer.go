// Package indexer is the entry point for building a (k,w)-minimizer index over a set of sequences.
package indexer

import (
	"errors"
	"fmt"
	"log"

	"github.com/will-rowe/kwindex/src/index"
	"github.com/will-rowe/kwindex/src/minimizer"
	"github.com/will-rowe/kwindex/src/pipeline"
	"github.com/will-rowe/kwindex/src/seqio"
	"github.com/will-rowe/kwindex/src/version"
)

var (
	// ErrInvalidParameter is returned when k or w is 0 (or k is too large to encode)
	ErrInvalidParameter = minimizer.ErrInvalidParameter

	// ErrSourceRead is returned when the sequence source can't be read or yields a malformed record
	ErrSourceRead = errors.New("could not read sequence source")

	// ErrNotReady is returned when the index is requested before a successful construction
	ErrNotReady = errors.New("index has not been constructed")

	// ErrConstructed is returned when Construct is called more than once
	ErrConstructed = errors.New("index generator has already been used")
)

// State is the lifecycle stage of an IndexGenerator
type State int

const (
	// Uninitialized generators have not started construction
	Uninitialized State = iota
	// Loading generators are extracting minimizers
	Loading
	// Ready generators hold a finished index
	Ready
	// Failed generators hit an error and can't be used
	Failed
)

// String satisfies the Stringer interface
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// IndexGenerator builds and holds one (k,w)-minimizer index
type IndexGenerator struct {
	info  *pipeline.Info
	state State
	index *index.Index
	err   error
}

// NewIndexGenerator returns an uninitialized generator, numProc <= 0 uses every CPU
func NewIndexGenerator(minimizerSize, windowSize uint64, numProc int) *IndexGenerator {
	return &IndexGenerator{
		info: pipeline.NewInfo(version.GetVersion(), minimizerSize, windowSize, numProc),
	}
}

// Generate is a helper that creates a generator and runs a construction using every CPU
func Generate(src seqio.Source, minimizerSize, windowSize uint64) (*IndexGenerator, error) {
	ig := NewIndexGenerator(minimizerSize, windowSize, 0)
	if err := ig.Construct(src); err != nil {
		return nil, err
	}
	return ig, nil
}

// Construct reads every sequence from the source and builds the index
// construction is all or nothing, on error the generator moves to the Failed state and no index is kept
func (ig *IndexGenerator) Construct(src seqio.Source) error {
	if ig.state != Uninitialized {
		return ErrConstructed
	}
	ig.state = Loading
	if _, err := minimizer.NewExtractor(ig.info.KmerSize, ig.info.WindowSize); err != nil {
		return ig.fail(err)
	}
	if src == nil {
		return ig.fail(fmt.Errorf("%w: no source provided", ErrSourceRead))
	}
	log.Printf("building minimizer index (%v)", ig.info)

	// connect the pipeline processes
	indexingPipeline := pipeline.NewPipeline()
	streamer := pipeline.NewSequenceStreamer(ig.info)
	sketcher := pipeline.NewMinimizerSketcher(ig.info)
	merger := pipeline.NewIndexMerger(ig.info)
	streamer.Connect(src)
	sketcher.Connect(streamer)
	merger.Connect(sketcher)
	indexingPipeline.AddProcesses(streamer, sketcher, merger)
	indexingPipeline.Run()

	// any per-sequence failure is treated as a bad source
	if err := streamer.Err(); err != nil {
		return ig.fail(fmt.Errorf("%w: %v", ErrSourceRead, err))
	}
	if err := sketcher.Err(); err != nil {
		return ig.fail(fmt.Errorf("%w: %v", ErrSourceRead, err))
	}
	log.Printf("\tsequences indexed: %d (%d bases)", streamer.NumSequences(), streamer.NumBases())
	ig.index = merger.Index()
	ig.state = Ready
	return nil
}

// fail moves the generator to the Failed state
func (ig *IndexGenerator) fail(err error) error {
	ig.state = Failed
	ig.index = nil
	ig.err = err
	return err
}

// MinimizerSize returns k
func (ig *IndexGenerator) MinimizerSize() uint64 {
	return ig.info.KmerSize
}

// WindowSize returns w
func (ig *IndexGenerator) WindowSize() uint64 {
	return ig.info.WindowSize
}

// State returns the current lifecycle stage
func (ig *IndexGenerator) State() State {
	return ig.state
}

// Err returns the error that failed the construction, if any
func (ig *IndexGenerator) Err() error {
	return ig.err
}

// Index returns the finished index, it is read only and safe for concurrent use
func (ig *IndexGenerator) Index() (*index.Index, error) {
	if ig.state != Ready {
		if ig.err != nil {
			return nil, fmt.Errorf("%w: construction failed: %v", ErrNotReady, ig.err)
		}
		return nil, ErrNotReady
	}
	return ig.index, nil
}
