// Package index contains the multi-valued minimizer index and the builder used to populate it.
package index

import (
	"sort"

	"github.com/will-rowe/kwindex/src/minimizer"
)

// Builder accumulates minimizers, it is not safe for concurrent use
// each worker should own a Builder and the results be combined with Merge once all workers are done
type Builder struct {
	entries    map[uint64][]minimizer.Minimizer
	numEntries int
}

// NewBuilder is the constructor
func NewBuilder() *Builder {
	return &Builder{entries: make(map[uint64][]minimizer.Minimizer)}
}

// Add inserts a single minimizer under its representation
func (Builder *Builder) Add(m minimizer.Minimizer) {
	Builder.entries[m.Representation] = append(Builder.entries[m.Representation], m)
	Builder.numEntries++
}

// AddAll inserts a batch of minimizers
func (Builder *Builder) AddAll(mins []minimizer.Minimizer) {
	for _, m := range mins {
		Builder.Add(m)
	}
}

// Merge moves the entries of another builder into this one by key-wise concatenation, the other builder is emptied
func (Builder *Builder) Merge(other *Builder) {
	if other == nil || other == Builder {
		return
	}
	for rep, entries := range other.entries {
		Builder.entries[rep] = append(Builder.entries[rep], entries...)
	}
	Builder.numEntries += other.numEntries
	other.entries = make(map[uint64][]minimizer.Minimizer)
	other.numEntries = 0
}

// NumEntries returns the number of minimizers added so far
func (Builder *Builder) NumEntries() int {
	return Builder.numEntries
}

// Build freezes the accumulated entries into an Index, the builder must not be used afterwards
// entries under each key are ordered by sequence ID then position so that identical input always gives an identical index,
// regardless of how sequences were spread across workers
func (Builder *Builder) Build() *Index {
	keys := make([]uint64, 0, len(Builder.entries))
	for rep, entries := range Builder.entries {
		keys = append(keys, rep)
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].SequenceID != entries[j].SequenceID {
				return entries[i].SequenceID < entries[j].SequenceID
			}
			return entries[i].Position < entries[j].Position
		})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	idx := &Index{
		entries:    Builder.entries,
		keys:       keys,
		numEntries: Builder.numEntries,
	}
	Builder.entries = nil
	Builder.numEntries = 0
	return idx
}

// Index maps a minimizer representation to every minimizer sharing it
// an Index is immutable and can be read from any number of goroutines
type Index struct {
	entries    map[uint64][]minimizer.Minimizer
	keys       []uint64
	numEntries int
}

// Lookup returns a copy of the entries stored under a representation
func (Index *Index) Lookup(rep uint64) []minimizer.Minimizer {
	entries := Index.entries[rep]
	if len(entries) == 0 {
		return nil
	}
	return append([]minimizer.Minimizer(nil), entries...)
}

// Count returns the number of entries stored under a representation
func (Index *Index) Count(rep uint64) int {
	return len(Index.entries[rep])
}

// Keys returns the distinct representations in ascending order
func (Index *Index) Keys() []uint64 {
	return append([]uint64(nil), Index.keys...)
}

// NumKeys returns the number of distinct representations
func (Index *Index) NumKeys() int {
	return len(Index.keys)
}

// NumEntries returns the total number of minimizers held
func (Index *Index) NumEntries() int {
	return Index.numEntries
}

// Range calls fn for each representation in ascending order, stopping early if fn returns false
// fn must not modify the entries slice
func (Index *Index) Range(fn func(rep uint64, entries []minimizer.Minimizer) bool) {
	for _, rep := range Index.keys {
		if !fn(rep, Index.entries[rep]) {
			return
		}
	}
}

// Equal reports whether two indexes hold exactly the same entries in the same order
func (Index *Index) Equal(other *Index) bool {
	if other == nil || Index.numEntries != other.numEntries || len(Index.keys) != len(other.keys) {
		return false
	}
	for i, rep := range Index.keys {
		if other.keys[i] != rep {
			return false
		}
		a, b := Index.entries[rep], other.entries[rep]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}
