package fastq

import "fmt"

import "trimkit/internal/xerrors"

// InterleavedSplitter demultiplexes a single alternating R1/R2/R1/R2...
// record stream into read pairs, validating mate-pair consistency the same
// way as the two-file case.
type InterleavedSplitter struct {
	sep     byte
	pending *Read
}

// NewInterleavedSplitter builds a splitter using sep as the mate-number
// separator for header validation.
func NewInterleavedSplitter(sep byte) *InterleavedSplitter {
	return &InterleavedSplitter{sep: sep}
}

// Push feeds the next record from the interleaved stream. It returns a
// complete (r1, r2) pair once every two records, or ok=false while the
// first of a pair is buffered.
func (s *InterleavedSplitter) Push(r *Read) (r1, r2 *Read, ok bool, err error) {
	if s.pending == nil {
		s.pending = r
		return nil, nil, false, nil
	}
	first := s.pending
	s.pending = nil
	if verr := ValidateMatePair(first.ID, r.ID, s.sep); verr != nil {
		return nil, nil, false, verr
	}
	return first, r, true, nil
}

// Flush reports whether an unpaired record remains buffered, which means
// the interleaved file had an odd number of records.
func (s *InterleavedSplitter) Flush() error {
	if s.pending != nil {
		return fmt.Errorf("interleaved input ended with an unpaired mate %q: %w",
			s.pending.ID, xerrors.ErrMalformedRecord)
	}
	return nil
}
