package demux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimkit/internal/fastq"
)

func newTestDemux(t *testing.T) *Demultiplexer {
	t.Helper()
	cfg := Config{
		Barcodes: []Barcode{
			{Name: "sample0", Barcode1: []byte("ACGT")},
			{Name: "sample1", Barcode1: []byte("TTTT")},
		},
		MM: 1, MMR1: 1, MMR2: 0,
	}
	d, err := New(cfg)
	require.NoError(t, err)
	return d
}

// TestClassifyWithinMismatchBudgetIdentifiesSample covers classification
// when a read is within each barcode's mismatch budget.
func TestClassifyWithinMismatchBudgetIdentifiesSample(t *testing.T) {
	d := newTestDemux(t)

	r1 := &fastq.Read{ID: "r1", Seq: []byte("ACGTACGT"), Quality: make([]byte, 8)}
	res := d.Classify(r1, nil)
	assert.Equal(t, Identified, res.Kind)
	assert.Equal(t, 0, res.Sample)

	r2 := &fastq.Read{ID: "r2", Seq: []byte("TTTTACGT"), Quality: make([]byte, 8)}
	res = d.Classify(r2, nil)
	assert.Equal(t, Identified, res.Kind)
	assert.Equal(t, 1, res.Sample)

	r3 := &fastq.Read{ID: "r3", Seq: []byte("ACGAACGT"), Quality: make([]byte, 8)}
	res = d.Classify(r3, nil)
	assert.Equal(t, Identified, res.Kind, "one mismatch from ACGT should still identify sample0")
	assert.Equal(t, 0, res.Sample)

	d.Strip(r3, nil)
	assert.Equal(t, "ACGT", string(r3.Seq))
}

func TestClassifyAmbiguousOnTie(t *testing.T) {
	cfg := Config{
		Barcodes: []Barcode{
			{Name: "s0", Barcode1: []byte("AAAA")},
			{Name: "s1", Barcode1: []byte("AAAT")},
		},
		MM: 2, MMR1: 2, MMR2: 0,
	}
	d, err := New(cfg)
	require.NoError(t, err)

	r := &fastq.Read{ID: "r", Seq: []byte("AAACACGT"), Quality: make([]byte, 8)}
	res := d.Classify(r, nil)
	assert.Equal(t, Ambiguous, res.Kind)
}

func TestClassifyUnidentifiedBeyondBudget(t *testing.T) {
	d := newTestDemux(t)
	r := &fastq.Read{ID: "r", Seq: []byte("GGGGACGT"), Quality: make([]byte, 8)}
	res := d.Classify(r, nil)
	assert.Equal(t, Unidentified, res.Kind)
}

func TestNewRejectsMismatchedBarcodeLengths(t *testing.T) {
	_, err := New(Config{Barcodes: []Barcode{
		{Name: "a", Barcode1: []byte("ACGT")},
		{Name: "b", Barcode1: []byte("ACG")},
	}})
	assert.Error(t, err)
}
