// Package adapter implements the pairwise/single-ended adapter alignment
// engine.
package adapter

import "fmt"

import "trimkit/internal/xerrors"

// Pair is one (adapter1, adapter2) entry of an adapter set. Adapter2 is
// empty for single-ended adapter pairs.
type Pair struct {
	Name     string
	Adapter1 []byte
	Adapter2 []byte
}

// Set is the ordered list of adapter pairs searched during alignment.
type Set struct {
	Pairs []Pair
}

// NullAdapterID marks an alignment that did not reference any adapter
// pair (e.g. the null alignment, or a pure mate-overlap with no adapter
// list configured).
const NullAdapterID = -1

// Validate rejects a set containing any pair whose Adapter1 is empty. It
// places no constraint on adapter lengths; an empty set is valid.
func (s Set) Validate() error {
	if len(s.Pairs) == 0 {
		return nil
	}
	for i, p := range s.Pairs {
		if len(p.Adapter1) == 0 {
			return fmt.Errorf("adapter pair %d (%s) has an empty adapter1: %w", i, p.Name, xerrors.ErrConfigInvalid)
		}
	}
	return nil
}
