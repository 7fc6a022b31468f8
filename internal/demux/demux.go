// Package demux classifies a read, or read pair, into one of N samples by
// barcode prefix within a mismatch budget.
package demux

import (
	"fmt"

	"trimkit/internal/fastq"
	"trimkit/internal/xerrors"
)

// Barcode is one sample's barcode pair.
type Barcode struct {
	Name     string
	Barcode1 []byte
	Barcode2 []byte // empty when the library is not dual-indexed
}

// Config is the demultiplexer's static, read-only setup.
type Config struct {
	Barcodes []Barcode
	MM       int // total mismatch budget across both barcodes
	MMR1     int // per-barcode-1 budget
	MMR2     int // per-barcode-2 budget
}

// Kind is the classification outcome for one read (pair).
type Kind int

const (
	Unidentified Kind = iota
	Ambiguous
	Identified
)

// Result is the classification of one read (pair).
type Result struct {
	Kind    Kind
	Sample  int // valid iff Kind == Identified
	Mm1, Mm2 int
}

// Demultiplexer holds validated, read-only barcode metadata shared by every
// worker.
type Demultiplexer struct {
	cfg  Config
	len1 int
	len2 int
}

// New validates the barcode-length invariant (all barcode1 entries
// share a length, likewise barcode2 or all are empty) and builds a
// Demultiplexer.
func New(cfg Config) (*Demultiplexer, error) {
	if len(cfg.Barcodes) == 0 {
		return nil, fmt.Errorf("demultiplexer requires at least one sample barcode: %w", xerrors.ErrConfigInvalid)
	}
	len1 := len(cfg.Barcodes[0].Barcode1)
	len2 := len(cfg.Barcodes[0].Barcode2)
	for _, b := range cfg.Barcodes {
		if len(b.Barcode1) != len1 {
			return nil, fmt.Errorf("sample %q barcode1 length %d disagrees with %d: %w", b.Name, len(b.Barcode1), len1, xerrors.ErrConfigInvalid)
		}
		if len(b.Barcode2) != len2 {
			return nil, fmt.Errorf("sample %q barcode2 length %d disagrees with %d: %w", b.Name, len(b.Barcode2), len2, xerrors.ErrConfigInvalid)
		}
	}
	return &Demultiplexer{cfg: cfg, len1: len1, len2: len2}, nil
}

// BarcodeLengths returns the fixed (barcode1, barcode2) prefix lengths that
// Strip removes.
func (d *Demultiplexer) BarcodeLengths() (int, int) {
	return d.len1, d.len2
}

func hamming(a, b []byte) int {
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}

// Classify computes the Hamming distance from (r1[:len1], r2[:len2]) to
// every configured barcode pair. A barcode is within budget when mm1 <=
// MMR1, mm2 <= MMR2 and mm1+mm2 <= MM. The read is Identified when exactly
// one in-budget barcode has the smallest total, Ambiguous when several tie
// for it, and Unidentified when none is in budget. r2 may be nil for
// single-ended libraries (len2 must be 0).
func (d *Demultiplexer) Classify(r1, r2 *fastq.Read) Result {
	if len(r1.Seq) < d.len1 || (r2 != nil && len(r2.Seq) < d.len2) {
		return Result{Kind: Unidentified}
	}
	p1 := r1.Seq[:d.len1]
	var p2 []byte
	if d.len2 > 0 && r2 != nil {
		p2 = r2.Seq[:d.len2]
	}

	bestMM := d.len1 + d.len2 + 1
	bestIdx := -1
	tieCount := 0

	for i, b := range d.cfg.Barcodes {
		mm1 := hamming(p1, b.Barcode1)
		mm2 := 0
		if d.len2 > 0 {
			mm2 = hamming(p2, b.Barcode2)
		}
		if mm1 > d.cfg.MMR1 || mm2 > d.cfg.MMR2 || mm1+mm2 > d.cfg.MM {
			continue
		}
		total := mm1 + mm2
		switch {
		case total < bestMM:
			bestMM = total
			bestIdx = i
			tieCount = 1
		case total == bestMM:
			tieCount++
		}
	}

	switch {
	case bestIdx < 0:
		return Result{Kind: Unidentified}
	case tieCount > 1:
		return Result{Kind: Ambiguous}
	default:
		mm1 := hamming(p1, d.cfg.Barcodes[bestIdx].Barcode1)
		mm2 := 0
		if d.len2 > 0 {
			mm2 = hamming(p2, d.cfg.Barcodes[bestIdx].Barcode2)
		}
		return Result{Kind: Identified, Sample: bestIdx, Mm1: mm1, Mm2: mm2}
	}
}

// Strip removes the barcode prefix bases from r1 (and r2, if dual-indexed)
// in place, after classification.
func (d *Demultiplexer) Strip(r1, r2 *fastq.Read) {
	r1.TrimFromEnds(d.len1, 0)
	if d.len2 > 0 && r2 != nil {
		r2.TrimFromEnds(d.len2, 0)
	}
}

// Samples returns the configured sample names in order.
func (d *Demultiplexer) Samples() []string {
	names := make([]string, len(d.cfg.Barcodes))
	for i, b := range d.cfg.Barcodes {
		names[i] = b.Name
	}
	return names
}

// Barcode returns sample i's barcode pair.
func (d *Demultiplexer) Barcode(i int) Barcode {
	return d.cfg.Barcodes[i]
}
