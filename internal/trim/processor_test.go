package trim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimkit/internal/adapter"
	"trimkit/internal/fastq"
	"trimkit/internal/stats"
)

func baseConfig() Config {
	return Config{
		Criteria:           adapter.Criteria{MinAdapterOverlap: 2, MismatchThreshold: 1.0 / 3.0, MinScore: 0},
		MaxShift:           2,
		MinAlignmentLength: 4,
		MinGenomicLength:   1,
		MaxGenomicLength:   1000,
		MaxAmbiguousBases:  1000,
		MateSeparator:      '/',
	}
}

func TestProcessSEMatchingAdapterTruncatesRead(t *testing.T) {
	cfg := baseConfig()
	cfg.Adapters = adapter.Set{Pairs: []adapter.Pair{{Name: "a", Adapter1: []byte("ACGT")}}}
	p := New(cfg)

	r := &fastq.Read{ID: "r", Seq: []byte("ACGTACGT"), Quality: []byte{40, 40, 40, 40, 40, 40, 40, 40}}
	st := stats.New()
	res := p.ProcessSE(r, st)

	assert.Equal(t, RouteMate1, res.Route)
	assert.Equal(t, "ACGT", string(res.Read.Seq))
	assert.Equal(t, int64(1), st.Aligned)
}

func TestProcessSENoMatchingAdapterKeepsRead(t *testing.T) {
	cfg := baseConfig()
	cfg.Adapters = adapter.Set{Pairs: []adapter.Pair{{Name: "a", Adapter1: []byte("TTTT")}}}
	p := New(cfg)

	r := &fastq.Read{ID: "r", Seq: []byte("ACGTACGT"), Quality: []byte{40, 40, 40, 40, 40, 40, 40, 40}}
	st := stats.New()
	res := p.ProcessSE(r, st)

	assert.Equal(t, RouteMate1, res.Route)
	assert.Equal(t, "ACGTACGT", string(res.Read.Seq))
	assert.Equal(t, int64(1), st.Unaligned)
}

func TestProcessPECollapsesFullOverlap(t *testing.T) {
	cfg := baseConfig()
	cfg.Adapters = adapter.Set{Pairs: []adapter.Pair{{Name: "noop"}}}
	cfg.Collapse = true
	cfg.MinAlignmentLength = 4
	p := New(cfg)

	r1 := &fastq.Read{ID: "r/1", Seq: []byte("ACGTAAAA"), Quality: []byte{40, 40, 40, 40, 40, 40, 40, 40}}
	r2 := &fastq.Read{ID: "r/2", Seq: []byte("TACGTTTT"), Quality: []byte{40, 40, 40, 40, 40, 40, 40, 40}}
	// r2's reverse complement is AAAACGTA, a perfect mate overlap with r1.
	st := stats.New()
	rng := rand.New(rand.NewSource(1))

	results, err := p.ProcessPE(r1, r2, st, rng)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, RouteCollapsed, results[0].Route)
	assert.Equal(t, "M_r", results[0].Read.ID)
	assert.Equal(t, int64(1), st.FullLengthCollapsed)
}

func TestProcessPEMatePairMismatchFails(t *testing.T) {
	cfg := baseConfig()
	cfg.Adapters = adapter.Set{Pairs: []adapter.Pair{{Name: "noop"}}}
	p := New(cfg)

	r1 := &fastq.Read{ID: "readA/1", Seq: []byte("ACGT"), Quality: []byte{40, 40, 40, 40}}
	r2 := &fastq.Read{ID: "readB/2", Seq: []byte("ACGT"), Quality: []byte{40, 40, 40, 40}}
	st := stats.New()
	rng := rand.New(rand.NewSource(1))

	_, err := p.ProcessPE(r1, r2, st, rng)
	assert.Error(t, err)
}

func TestProcessSETrimsTrailingLowQualityAfterNoAlignment(t *testing.T) {
	cfg := baseConfig()
	cfg.Adapters = adapter.Set{Pairs: []adapter.Pair{{Name: "a", Adapter1: []byte("GGGGGGGG")}}}
	cfg.Trim = fastq.TrimConfig{TrimQuality: true, LowQualityScore: 2}
	cfg.MinGenomicLength = 6
	p := New(cfg)

	r := &fastq.Read{ID: "r", Seq: []byte("ACGTACGTAAAA"), Quality: []byte{40, 40, 40, 40, 40, 40, 40, 40, 2, 2, 2, 2}}
	st := stats.New()
	res := p.ProcessSE(r, st)

	assert.Equal(t, RouteMate1, res.Route)
	assert.Equal(t, "ACGTACGT", string(res.Read.Seq))
}
