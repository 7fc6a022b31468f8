package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAlignSEFindsAdapter covers a read fully covered by an adapter from
// position 4 onward.
func TestAlignSEFindsAdapter(t *testing.T) {
	set := Set{Pairs: []Pair{{Name: "a", Adapter1: []byte("ACGT")}}}
	a := AlignSE([]byte("ACGTACGT"), set)
	require.False(t, a.IsNull())
	assert.Equal(t, 4, a.Shift)
	assert.Equal(t, 4, a.Length)
	assert.Equal(t, 4, a.Score)
	assert.Equal(t, 0, a.NMismatches)
}

// TestAlignSENoMatch covers a read where the adapter never occurs, so the
// best-scoring shift will have a poor score.
func TestAlignSENoMatch(t *testing.T) {
	set := Set{Pairs: []Pair{{Name: "a", Adapter1: []byte("TTTT")}}}
	a := AlignSE([]byte("ACGTACGT"), set)
	c := Criteria{MinAdapterOverlap: 3, MismatchThreshold: 0.1, MinScore: 1}
	assert.False(t, c.Good(a, true))
}

func TestAlignSETieBreak(t *testing.T) {
	// Two identical adapters, and a read matching at every shift: expect
	// the shift retaining the most genuine sequence (largest shift, here
	// 4, where the adapter exactly covers the remaining read) to win,
	// and within that shift the smaller adapter index to win.
	set := Set{Pairs: []Pair{
		{Name: "a0", Adapter1: []byte("AAAA")},
		{Name: "a1", Adapter1: []byte("AAAA")},
	}}
	a := AlignSE([]byte("AAAAAAAA"), set)
	assert.Equal(t, 4, a.Shift)
	assert.Equal(t, 0, a.AdapterID)
}

// TestAlignPEPerfectOverlap covers two mates with a mismatch-free overlap.
// With a search window of 8, the 5-base ACGTA overlap at shift -3 (score 5)
// outscores the 4-base AAAA overlap at shift 4 (score 4).
func TestAlignPEPerfectOverlap(t *testing.T) {
	set := Set{Pairs: []Pair{{Name: "noop"}}}
	r1 := []byte("ACGTAAAA")
	r2rc := []byte("AAAACGTA")
	a := AlignPE(r1, r2rc, set, 8)
	require.False(t, a.IsNull())
	assert.Equal(t, -3, a.Shift)
	assert.Equal(t, 5, a.Length)
	assert.Equal(t, 0, a.NMismatches)
}

// TestAlignPEEmptyAdapterSetStillFindsOverlap covers a library run with no
// adapters configured: the mate/mate overlap zone must still be scored,
// since it doesn't depend on any adapter pair.
func TestAlignPEEmptyAdapterSetStillFindsOverlap(t *testing.T) {
	set := Set{}
	r1 := []byte("ACGTAAAA")
	r2rc := []byte("AAAACGTA")
	a := AlignPE(r1, r2rc, set, 8)
	require.False(t, a.IsNull())
	assert.Equal(t, -3, a.Shift)
	assert.Equal(t, 5, a.Length)
	assert.Equal(t, 0, a.NMismatches)
	assert.Equal(t, NullAdapterID, a.AdapterID)
}

func TestAlignPEAdapterReadThrough(t *testing.T) {
	// Insert shorter than both reads: R1 reads into adapter1, R2rc reads
	// into (reverse-complemented) adapter2 at its head.
	set := Set{Pairs: []Pair{{
		Name:     "std",
		Adapter1: []byte("AGATCGGAAGAGC"),
		Adapter2: []byte("AGATCGGAAGAGC"),
	}}}
	insert := []byte("ACGTACGTAC") // 10bp true insert
	adapter1 := set.Pairs[0].Adapter1
	adapter2 := set.Pairs[0].Adapter2

	r1 := append(append([]byte{}, insert...), adapter1[:5]...) // reads 5bp into adapter1
	// R2 (before rc) reads the reverse complement of insert, then adapter2.
	insertRC := reverseComplementBytes(insert)
	r2 := append(append([]byte{}, insertRC...), adapter2[:5]...)
	r2rc := reverseComplementBytes(r2)

	a := AlignPE(r1, r2rc, set, len(r1))
	require.False(t, a.IsNull())
	assert.Equal(t, len(insert), a.Length)
}

func TestTruncateSE(t *testing.T) {
	a := Alignment{Shift: 4, Length: 4}
	got := TruncateSE([]byte("ACGTACGT"), a)
	assert.Equal(t, "ACGT", string(got))
}

func TestTruncatePE(t *testing.T) {
	r1 := []byte("ACGTAAAA")
	r2rc := []byte("AAAACGTA")
	a := Alignment{Shift: 4, Length: 4}
	nr1, nr2rc, n := TruncatePE(r1, r2rc, a)
	assert.Equal(t, "ACGTAAAA", string(nr1))
	assert.Equal(t, "AAAACGTA", string(nr2rc))
	assert.Equal(t, 0, n)
}

func TestCriteriaGoodMismatchThreshold(t *testing.T) {
	c := Criteria{MinAdapterOverlap: 1, MismatchThreshold: 0.5, MinScore: -100}
	a := Alignment{Length: 4, NMismatches: 2, NAmbiguous: 0}
	assert.True(t, c.Good(a, true))
	a.NMismatches = 3
	assert.False(t, c.Good(a, true))
}
