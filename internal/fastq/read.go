// Package fastq implements the in-memory FASTQ record representation and
// the quality-score codec.
//
// The raw byte-level tokenizer that splits a file into four-line records is
// treated as an external collaborator: this package only knows about
// already-split records (RawRecord) and the Read they decode into.
package fastq

import "fmt"

// Mate identifies which half of a pair a read belongs to, or that it is
// single-ended.
type Mate int

const (
	MateNone Mate = 0
	Mate1    Mate = 1
	Mate2    Mate = 2
)

// Read is the in-memory representation of one FASTQ record. Quality is
// stored as decoded Phred scores, not as the ASCII bytes of any particular
// encoding scheme.
//
// Invariant: len(Seq) == len(Quality).
type Read struct {
	ID       string
	Seq      []byte
	Quality  []byte
	MateNum  Mate
}

// Len returns the number of bases in the read.
func (r *Read) Len() int { return len(r.Seq) }

var complement = [256]byte{}

func init() {
	for i := range complement {
		complement[i] = 'N'
	}
	pairs := map[byte]byte{
		'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'N': 'N',
		'a': 't', 't': 'a', 'c': 'g', 'g': 'c', 'n': 'n',
	}
	for k, v := range pairs {
		complement[k] = v
	}
}

// ReverseComplement reverses the sequence in place, complementing each
// base, and reverses the quality vector to match. It is its own inverse:
// calling it twice restores the original read byte-for-byte.
func (r *Read) ReverseComplement() {
	n := len(r.Seq)
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		r.Seq[i], r.Seq[j] = complement[r.Seq[j]], complement[r.Seq[i]]
		r.Quality[i], r.Quality[j] = r.Quality[j], r.Quality[i]
	}
	if n%2 == 1 {
		mid := n / 2
		r.Seq[mid] = complement[r.Seq[mid]]
	}
}

// AddHeaderPrefix prepends prefix to the read identifier, e.g. "M_" or
// "MT_" for a full-length or truncated collapsed consensus.
func (r *Read) AddHeaderPrefix(prefix string) {
	r.ID = prefix + r.ID
}

// TrimFromEnds removes left bases from the front and right bases from the
// back. It never leaves the read longer than it started.
func (r *Read) TrimFromEnds(left, right int) {
	n := len(r.Seq)
	if left < 0 {
		left = 0
	}
	if right < 0 {
		right = 0
	}
	if left+right >= n {
		r.Seq = r.Seq[:0]
		r.Quality = r.Quality[:0]
		return
	}
	r.Seq = r.Seq[left : n-right]
	r.Quality = r.Quality[left : n-right]
}

// Clone returns a deep copy, so truncation/trimming of one instance never
// aliases another chunk's backing array.
func (r *Read) Clone() *Read {
	seq := make([]byte, len(r.Seq))
	copy(seq, r.Seq)
	qual := make([]byte, len(r.Quality))
	copy(qual, r.Quality)
	return &Read{ID: r.ID, Seq: seq, Quality: qual, MateNum: r.MateNum}
}

func (r *Read) String() string {
	return fmt.Sprintf("Read{ID:%q, Seq:%q, len=%d}", r.ID, r.Seq, len(r.Seq))
}
