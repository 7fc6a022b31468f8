package fastq

// TrimConfig controls the quality/ambiguous-base trimming pass applied to
// both ends of a read.
type TrimConfig struct {
	TrimAmbiguousBases bool
	TrimQuality        bool
	LowQualityScore    int
}

// TrimAmbiguousAndQuality consumes bases from each end while the base is
// 'N' (if TrimAmbiguousBases) or its Phred score is <= LowQualityScore (if
// TrimQuality), and returns how many bases were removed from the left and
// right. It never leaves the read longer than it started.
func TrimAmbiguousAndQuality(r *Read, cfg TrimConfig) (left, right int) {
	n := len(r.Seq)
	shouldTrim := func(i int) bool {
		if cfg.TrimAmbiguousBases && r.Seq[i] == 'N' {
			return true
		}
		if cfg.TrimQuality && int(r.Quality[i]) <= cfg.LowQualityScore {
			return true
		}
		return false
	}

	l := 0
	for l < n && shouldTrim(l) {
		l++
	}
	rr := 0
	for rr < n-l && shouldTrim(n-1-rr) {
		rr++
	}
	r.TrimFromEnds(l, rr)
	return l, rr
}

// CountAmbiguous returns the number of 'N' bases in the read.
func CountAmbiguous(r *Read) int {
	n := 0
	for _, b := range r.Seq {
		if b == 'N' {
			n++
		}
	}
	return n
}
