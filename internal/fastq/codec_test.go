package fastq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeEncodeRoundTrip verifies that parsing then encoding a record
// with identical offset schemes yields identical bytes (round-trip
// property).
func TestDecodeEncodeRoundTrip(t *testing.T) {
	scheme, err := LookupScheme(SchemePhred33)
	require.NoError(t, err)

	raw := RawRecord{
		Header: "@read1",
		Seq:    []byte("ACGTACGT"),
		Plus:   "+",
		Qual:   []byte("IIIIIIII"),
	}

	r, err := Decode(raw, scheme)
	require.NoError(t, err)

	got := Encode(&r, scheme)
	want := "@read1\nACGTACGT\n+\nIIIIIIII\n"
	assert.Equal(t, want, string(got))
}

func TestDecodeNormalizesSequence(t *testing.T) {
	scheme, _ := LookupScheme(SchemePhred33)
	raw := RawRecord{Header: "@r", Seq: []byte("acgtx"), Qual: []byte("IIIII")}
	r, err := Decode(raw, scheme)
	require.NoError(t, err)
	assert.Equal(t, "ACGTN", string(r.Seq))
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	scheme, _ := LookupScheme(SchemePhred33)
	raw := RawRecord{Header: "@r", Seq: []byte("ACGT"), Qual: []byte("III")}
	_, err := Decode(raw, scheme)
	assert.Error(t, err)
}

func TestDecodeRejectsMissingAt(t *testing.T) {
	scheme, _ := LookupScheme(SchemePhred33)
	raw := RawRecord{Header: "r", Seq: []byte("A"), Qual: []byte("I")}
	_, err := Decode(raw, scheme)
	assert.Error(t, err)
}

func TestDecodeRejectsOutOfRangeQuality(t *testing.T) {
	scheme, _ := LookupScheme(SchemePhred33)
	raw := RawRecord{Header: "@r", Seq: []byte("A"), Qual: []byte{0x01}}
	_, err := Decode(raw, scheme)
	assert.Error(t, err)
}

func TestSchemeRoundTrip(t *testing.T) {
	for _, name := range []string{SchemePhred33, SchemePhred64, SchemePhred64Extended} {
		t.Run(name, func(t *testing.T) {
			scheme, err := LookupScheme(name)
			require.NoError(t, err)
			for q := 0; q <= scheme.MaxScore(); q++ {
				b := scheme.FromPhred(q)
				got, err := scheme.ToPhred(b)
				require.NoError(t, err)
				assert.Equal(t, q, got)
			}
		})
	}
}
