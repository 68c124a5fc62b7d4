// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpumeter

import "fmt"

// Snapshot is the point-in-time result of a usage query. It is recomputed
// fresh on every [Tracker.Usage] call and never persisted; callers own the
// returned value and may modify it freely.
//
// Both maps always carry an entry for every [Category], zero-valued when
// nothing in that category is live, so consumers can index without
// existence checks.
type Snapshot struct {
	// Memory maps each category to the bytes currently attributed to it.
	Memory map[Category]uint64

	// Resources maps each category to its live object count.
	Resources map[Category]int

	// Total is the sum of Memory across all categories.
	Total uint64
}

// newSnapshot returns a snapshot with every counter initialized to zero.
func newSnapshot() *Snapshot {
	s := &Snapshot{
		Memory:    make(map[Category]uint64, numCategories),
		Resources: make(map[Category]int, numCategories),
	}
	for c := Category(0); c < numCategories; c++ {
		s.Memory[c] = 0
		s.Resources[c] = 0
	}
	return s
}

// TotalResources returns the live object count summed across categories.
func (s *Snapshot) TotalResources() int {
	var n int
	for _, count := range s.Resources {
		n += count
	}
	return n
}

// String returns a human-readable summary of the snapshot.
func (s *Snapshot) String() string {
	return fmt.Sprintf("Usage[%d bytes, %d resources]", s.Total, s.TotalResources())
}
