// Package capability models typed facts about workspace state.
//
// A Capability is produced by a completed pipeline step (or derived from the
// user's input files at startup) and consumed by applicability checks on
// candidate services. The Set accumulates monotonically during a run: there
// is deliberately no removal API. This invariant is what keeps planning a
// single forward pass instead of a constraint solve.
package capability

import "sort"

// Capability is a typed fact about workspace state, e.g. "paired_reads".
type Capability string

// Capabilities derived from the user's input files. Services declare further
// capabilities (trimmed_reads, contigs from assembly, ...) in the catalog;
// those are plain strings there and need no constant here.
const (
	Reads       Capability = "reads"
	PairedReads Capability = "paired_reads"
	SingleReads Capability = "single_reads"
	Contigs     Capability = "contigs"
	Reference   Capability = "reference"
)

// Set is a monotonically growing collection of capabilities.
type Set map[Capability]struct{}

// NewSet returns a Set seeded with the given capabilities.
func NewSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	s.Add(caps...)
	return s
}

// Add records the given capabilities in the set.
func (s Set) Add(caps ...Capability) {
	for _, c := range caps {
		s[c] = struct{}{}
	}
}

// Has reports whether the capability is present.
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// HasAll reports whether every given capability is present.
func (s Set) HasAll(caps []Capability) bool {
	for _, c := range caps {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one of the given capabilities is present.
func (s Set) HasAny(caps []Capability) bool {
	for _, c := range caps {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the capabilities in lexical order, for stable logs and reports.
func (s Set) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
