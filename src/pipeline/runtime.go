package pipeline

import (
	"fmt"
	"runtime"
)

// Info stores the runtime information shared by the pipeline processes
type Info struct {
	Version    string
	NumProc    int
	KmerSize   uint64
	WindowSize uint64
}

// NewInfo returns the runtime info for an indexing run, numProc <= 0 uses every CPU
func NewInfo(version string, k, w uint64, numProc int) *Info {
	if numProc <= 0 {
		numProc = runtime.NumCPU()
	}
	return &Info{
		Version:    version,
		NumProc:    numProc,
		KmerSize:   k,
		WindowSize: w,
	}
}

// String satisfies the Stringer interface
func (Info *Info) String() string {
	return fmt.Sprintf("k=%d w=%d processors=%d", Info.KmerSize, Info.WindowSize, Info.NumProc)
}
