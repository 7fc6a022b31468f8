// Package report renders the tab-separated settings/demux-stats tables a
// run writes alongside its output files. It only turns already-reduced
// stats.Stats/DemuxTotals into their fixed text shape.
package report

import (
	"fmt"
	"io"
	"sort"

	"trimkit/internal/stats"
)

// WriteSampleSettings renders one sample's "[Trimming statistics]" and
// "[Length distribution]" sections to w.
func WriteSampleSettings(w io.Writer, sampleName string, paired bool, s *stats.Stats, rngSeed int64, rngReproducible bool) error {
	seedLine := fmt.Sprintf("%d", rngSeed)
	if !rngReproducible {
		seedLine = "NA"
	}

	if _, err := fmt.Fprintf(w, "[Trimming statistics]\n"); err != nil {
		return err
	}
	rows := [][2]string{
		{"Sample", sampleName},
		{"RNG seed", seedLine},
		{"Total reads", fmt.Sprintf("%d", s.Records)},
		{"Reads with adapters", fmt.Sprintf("%d", s.Aligned)},
		{"Reads without adapters", fmt.Sprintf("%d", s.Unaligned)},
		{"Retained reads", fmt.Sprintf("%d", s.GoodReads)},
		{"Retained nucleotides", fmt.Sprintf("%d", s.GoodNucleotides)},
		{"Full-length collapsed pairs", fmt.Sprintf("%d", s.FullLengthCollapsed)},
		{"Truncated collapsed pairs", fmt.Sprintf("%d", s.TruncatedCollapsed)},
		{"Singletons", fmt.Sprintf("%d", s.Singletons)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n[Length distribution]\n"); err != nil {
		return err
	}
	header := "Length\tMate1"
	classes := []stats.ReadClass{stats.ClassMate1}
	if paired {
		header += "\tMate2\tSingleton\tCollapsed\tCollapsedTruncated"
		classes = append(classes, stats.ClassMate2, stats.ClassSingleton, stats.ClassCollapsed, stats.ClassCollapsedTruncated)
	}
	header += "\tDiscarded\tAll"
	classes = append(classes, stats.ClassDiscarded)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	lengths := map[int]bool{}
	for _, c := range classes {
		for l := range s.LengthHist[c] {
			lengths[l] = true
		}
	}
	sorted := make([]int, 0, len(lengths))
	for l := range lengths {
		sorted = append(sorted, l)
	}
	sort.Ints(sorted)

	for _, l := range sorted {
		row := fmt.Sprintf("%d", l)
		all := int64(0)
		for _, c := range classes {
			n := s.LengthHist[c][l]
			all += n
			row += fmt.Sprintf("\t%d", n)
		}
		row += fmt.Sprintf("\t%d", all)
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

// WriteDemuxStats renders the global "[Demultiplexing statistics]" table,
// including the mandatory unidentified/ambiguous rows, one row per
// sample, and the totals row `*\t*\t*\t<total>\t1.000`.
func WriteDemuxStats(w io.Writer, sampleNames []string, barcode1, barcode2 []string, totals *stats.DemuxTotals) error {
	if _, err := fmt.Fprintln(w, "[Demultiplexing statistics]"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Name\tBarcode_1\tBarcode_2\tHits\tFraction"); err != nil {
		return err
	}

	total := totals.Total()
	frac := func(n int64) float64 {
		if total == 0 {
			return 0
		}
		return float64(n) / float64(total)
	}

	rows := []struct {
		name, b1, b2 string
		hits         int64
	}{
		{"unidentified", "*", "*", totals.Unidentified},
		{"ambiguous", "*", "*", totals.Ambiguous},
	}
	for i, name := range sampleNames {
		b1, b2 := "*", "*"
		if i < len(barcode1) {
			b1 = barcode1[i]
		}
		if i < len(barcode2) {
			b2 = barcode2[i]
		}
		rows = append(rows, struct {
			name, b1, b2 string
			hits         int64
		}{name, b1, b2, totals.PerSample[i]})
	}

	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\n", r.name, r.b1, r.b2, r.hits, frac(r.hits)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "*\t*\t*\t%d\t1.000\n", total); err != nil {
		return err
	}
	return nil
}
