package fastq

import (
	"bytes"
	"fmt"

	"trimkit/internal/xerrors"
)

// RawRecord is the four-line shape the byte-level tokenizer is specified
// to produce. Decode converts it into a Read against a named quality
// scheme; Encode is its inverse.
type RawRecord struct {
	Header string // includes the leading '@', excludes the trailing newline
	Seq    []byte
	Plus   string // the '+' separator line, with optional repeated header
	Qual   []byte
}

var iupac = [256]bool{}

func init() {
	for _, b := range []byte("ACGTNacgtn") {
		iupac[b] = true
	}
}

// normalizeSeq upper-cases IUPAC letters and replaces anything else with
// 'N', per the FASTQ grammar.
func normalizeSeq(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		switch {
		case b >= 'a' && b <= 'z':
			b -= 'a' - 'A'
		}
		if iupac[b] {
			out[i] = b
		} else {
			out[i] = 'N'
		}
	}
	return out
}

// Decode converts a raw tokenized record into a Read, validating the
// sequence/quality length invariant and decoding each quality byte
// against scheme.
func Decode(raw RawRecord, scheme Scheme) (Read, error) {
	if len(raw.Header) == 0 || raw.Header[0] != '@' {
		return Read{}, fmt.Errorf("record header missing '@': %w", xerrors.ErrMalformedRecord)
	}
	if len(raw.Seq) != len(raw.Qual) {
		return Read{}, fmt.Errorf("sequence/quality length mismatch (%d vs %d): %w",
			len(raw.Seq), len(raw.Qual), xerrors.ErrMalformedRecord)
	}
	quality := make([]byte, len(raw.Qual))
	for i, b := range raw.Qual {
		q, err := scheme.ToPhred(b)
		if err != nil {
			return Read{}, fmt.Errorf("record %q position %d: %w", raw.Header, i, err)
		}
		quality[i] = byte(q)
	}
	return Read{
		ID:      raw.Header[1:],
		Seq:     normalizeSeq(raw.Seq),
		Quality: quality,
	}, nil
}

// Encode renders a Read back into the four FASTQ lines, terminated with
// newlines, using scheme to re-encode the quality vector.
func Encode(r *Read, scheme Scheme) []byte {
	var buf bytes.Buffer
	buf.Grow(len(r.Seq)*2 + len(r.ID) + 8)
	buf.WriteByte('@')
	buf.WriteString(r.ID)
	buf.WriteByte('\n')
	buf.Write(r.Seq)
	buf.WriteByte('\n')
	buf.WriteByte('+')
	buf.WriteByte('\n')
	for _, q := range r.Quality {
		buf.WriteByte(scheme.FromPhred(int(q)))
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

// SplitMateHeader splits a read identifier into its pair-invariant base and
// mate number, using sep as the mate-number separator (e.g. '/' in
// "read42/1"). sep == 0 means the convention is disabled: the whole
// identifier is the base and no mate number is present.
func SplitMateHeader(id string, sep byte) (base string, mate Mate, ok bool) {
	if sep == 0 {
		return id, MateNone, true
	}
	n := len(id)
	if n < 2 || id[n-2] != sep {
		return id, MateNone, true
	}
	switch id[n-1] {
	case '1':
		return id[:n-2], Mate1, true
	case '2':
		return id[:n-2], Mate2, true
	default:
		return id, MateNone, true
	}
}

// ValidateMatePair fails fast if two mate headers do not
// share the same base identifier under sep.
func ValidateMatePair(id1, id2 string, sep byte) error {
	base1, _, _ := SplitMateHeader(id1, sep)
	base2, _, _ := SplitMateHeader(id2, sep)
	if base1 != base2 {
		return fmt.Errorf("mate headers %q and %q disagree on base id %q vs %q: %w",
			id1, id2, base1, base2, xerrors.ErrMatePairMismatch)
	}
	return nil
}
