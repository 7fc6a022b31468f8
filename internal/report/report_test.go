package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimkit/internal/stats"
)

func TestWriteSampleSettingsSingleEnded(t *testing.T) {
	s := stats.New()
	s.Records = 10
	s.Aligned = 6
	s.Unaligned = 4
	s.GoodReads = 9
	s.AddLength(stats.ClassMate1, 20)
	s.AddLength(stats.ClassMate1, 20)
	s.AddLength(stats.ClassDiscarded, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteSampleSettings(&buf, "sample1", false, s, 42, true))

	out := buf.String()
	assert.Contains(t, out, "[Trimming statistics]\n")
	assert.Contains(t, out, "Sample\tsample1\n")
	assert.Contains(t, out, "RNG seed\t42\n")
	assert.Contains(t, out, "Total reads\t10\n")
	assert.Contains(t, out, "\n[Length distribution]\n")
	assert.Contains(t, out, "Length\tMate1\tDiscarded\tAll\n")
	assert.Contains(t, out, "20\t2\t0\t2\n")
	assert.NotContains(t, out, "Mate2")
}

func TestWriteSampleSettingsPairedIncludesAllClasses(t *testing.T) {
	s := stats.New()
	var buf bytes.Buffer
	require.NoError(t, WriteSampleSettings(&buf, "sample1", true, s, 0, false))

	out := buf.String()
	assert.Contains(t, out, "RNG seed\tNA\n")
	assert.Contains(t, out, "Length\tMate1\tMate2\tSingleton\tCollapsed\tCollapsedTruncated\tDiscarded\tAll\n")
}

func TestWriteDemuxStats(t *testing.T) {
	totals := stats.NewDemuxTotals(2)
	totals.Unidentified = 2
	totals.Ambiguous = 1
	totals.PerSample[0] = 5
	totals.PerSample[1] = 2

	var buf bytes.Buffer
	err := WriteDemuxStats(&buf, []string{"s1", "s2"}, []string{"AAAA", "CCCC"}, []string{"*", "*"}, totals)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "[Demultiplexing statistics]", lines[0])
	assert.Equal(t, "Name\tBarcode_1\tBarcode_2\tHits\tFraction", lines[1])
	assert.Equal(t, "unidentified\t*\t*\t2\t0.200", lines[2])
	assert.Equal(t, "ambiguous\t*\t*\t1\t0.100", lines[3])
	assert.Equal(t, "s1\tAAAA\t*\t5\t0.500", lines[4])
	assert.Equal(t, "s2\tCCCC\t*\t2\t0.200", lines[5])
	assert.Equal(t, "*\t*\t*\t10\t1.000", lines[6])
}

func TestWriteDemuxStatsZeroTotalAvoidsDivideByZero(t *testing.T) {
	totals := stats.NewDemuxTotals(1)
	var buf bytes.Buffer
	require.NoError(t, WriteDemuxStats(&buf, []string{"s1"}, []string{"*"}, []string{"*"}, totals))
	assert.Contains(t, buf.String(), "*\t*\t*\t0\t1.000\n")
}
