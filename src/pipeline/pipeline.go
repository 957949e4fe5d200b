// Package pipeline contains the indexing pipeline, built on the pattern from the Gopher Academy article by S. Lampa - Patterns for composable concurrent pipelines in Go (https://blog.gopheracademy.com/advent-2015/composable-pipelines-improvements/)
package pipeline

import "sync"

// BUFFERSIZE is the size of the buffer used by the sequence channel
const BUFFERSIZE int = 64

// process is the interface used by pipeline
type process interface {
	Run()
}

// Pipeline runs a set of connected processes until every one of them has returned
type Pipeline struct {
	processes []process
}

// NewPipeline is the pipeline constructor
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddProcesses registers processes in the order data flows through them
func (Pipeline *Pipeline) AddProcesses(procs ...process) {
	Pipeline.processes = append(Pipeline.processes, procs...)
}

// Run starts the pipeline and blocks until all processes are done
// upstream processes run in goroutines, the last one runs in the foreground
// waiting on every process means their results and errors can be read safely once Run returns
func (Pipeline *Pipeline) Run() {
	if len(Pipeline.processes) == 0 {
		return
	}
	var wg sync.WaitGroup
	last := len(Pipeline.processes) - 1
	wg.Add(last)
	for _, proc := range Pipeline.processes[:last] {
		go func(proc process) {
			defer wg.Done()
			proc.Run()
		}(proc)
	}
	Pipeline.processes[last].Run()
	wg.Wait()
}

// GetNumProcesses returns the number of processes registered in a pipeline
func (Pipeline *Pipeline) GetNumProcesses() int {
	return len(Pipeline.processes)
}
