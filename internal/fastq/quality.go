package fastq

import (
	"fmt"
	"math"

	"trimkit/internal/xerrors"
)

// Scheme converts between a quality-score encoding's ASCII byte
// representation and decoded Phred scores.
type Scheme interface {
	Name() string
	MaxScore() int
	ToPhred(b byte) (int, error)
	FromPhred(q int) byte
}

// Schemes recognized by name.
const (
	SchemePhred33         = "phred33"
	SchemePhred64         = "phred64"
	SchemeSolexa64        = "solexa64"
	SchemePhred64Extended = "phred64x"
)

// LookupScheme resolves a scheme by its configuration name.
func LookupScheme(name string) (Scheme, error) {
	switch name {
	case SchemePhred33:
		return phred33{}, nil
	case SchemePhred64:
		return phred64{}, nil
	case SchemeSolexa64:
		return solexa64{}, nil
	case SchemePhred64Extended:
		return phred64ext{}, nil
	default:
		return nil, fmt.Errorf("unknown quality scheme %q: %w", name, xerrors.ErrConfigInvalid)
	}
}

type phred33 struct{}

func (phred33) Name() string   { return SchemePhred33 }
func (phred33) MaxScore() int  { return 41 }
func (phred33) FromPhred(q int) byte { return byte(q + 33) }
func (s phred33) ToPhred(b byte) (int, error) {
	q := int(b) - 33
	return rangeCheck(s, q)
}

type phred64 struct{}

func (phred64) Name() string   { return SchemePhred64 }
func (phred64) MaxScore() int  { return 41 }
func (phred64) FromPhred(q int) byte { return byte(q + 64) }
func (s phred64) ToPhred(b byte) (int, error) {
	q := int(b) - 64
	return rangeCheck(s, q)
}

// phred64ext is the extended Illumina 1.3+/1.5 scale, scores 0..62.
type phred64ext struct{}

func (phred64ext) Name() string   { return SchemePhred64Extended }
func (phred64ext) MaxScore() int  { return 62 }
func (phred64ext) FromPhred(q int) byte { return byte(q + 64) }
func (s phred64ext) ToPhred(b byte) (int, error) {
	q := int(b) - 64
	return rangeCheck(s, q)
}

// solexa64 stores scores in [-5, 41] and converts them to the Phred scale
// on decode.
type solexa64 struct{}

func (solexa64) Name() string  { return SchemeSolexa64 }
func (solexa64) MaxScore() int { return 41 }
func (solexa64) FromPhred(q int) byte {
	sol := solexaFromPhred(q)
	return byte(sol + 64)
}
func (s solexa64) ToPhred(b byte) (int, error) {
	sol := int(b) - 64
	if sol < -5 || sol > 41 {
		return 0, fmt.Errorf("solexa score %d out of range [-5,41]: %w", sol, xerrors.ErrQualityOutOfRange)
	}
	return phredFromSolexa(sol), nil
}

func rangeCheck(s Scheme, q int) (int, error) {
	if q < 0 || q > s.MaxScore() {
		return 0, fmt.Errorf("%s score %d out of range [0,%d]: %w", s.Name(), q, s.MaxScore(), xerrors.ErrQualityOutOfRange)
	}
	return q, nil
}

// phredFromSolexa and solexaFromPhred implement the standard logarithmic
// conversion between the two error-probability scales.
func phredFromSolexa(sol int) int {
	if sol < 0 {
		// Q_phred = 10*log10(10^(Q_solexa/10) + 1)
		p := 10.0 * math.Log10(math.Pow(10, float64(sol)/10.0)+1.0)
		return int(p + 0.5)
	}
	return sol
}

func solexaFromPhred(phred int) int {
	if phred <= 0 {
		return -5
	}
	// Q_solexa = 10*log10(10^(Q_phred/10) - 1), floored at -5
	sol := int(math.Round(10.0 * math.Log10(math.Pow(10, float64(phred)/10.0)-1.0)))
	if sol < -5 {
		return -5
	}
	return sol
}
