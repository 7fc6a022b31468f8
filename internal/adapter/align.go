package adapter

// Alignment is the record returned by both the single-end and paired-end
// aligners.
type Alignment struct {
	// Shift is the signed offset of the adapter (SE) or of read 2 relative
	// to read 1 (PE); negative means read 2 starts before read 1.
	Shift int
	// Score is matches minus mismatches across every compared zone.
	Score int
	// Length is the overlap length: for SE, |R| - Shift; for PE, the
	// length of the region where both mates have bases (the portion a
	// collapse would actually merge). Zones scored against adapter
	// sequence at either mate's far end contribute to Score/mismatch
	// counts but not to Length — Length always means "how much of the
	// two reads actually overlap", which is what min_alignment_length and
	// min_adapter_overlap gate against.
	Length      int
	NMismatches int
	NAmbiguous  int
	AdapterID   int
}

// Null returns the sentinel "no alignment found" value.
func Null() Alignment {
	return Alignment{AdapterID: NullAdapterID}
}

// IsNull reports whether a is the null alignment.
func (a Alignment) IsNull() bool {
	return a.Length == 0 && a.Score == 0
}

// Criteria is the acceptance predicate configuration for a good alignment.
type Criteria struct {
	MinAdapterOverlap int     // SE only
	MismatchThreshold float64 // rate
	MinScore          int
}

// Good reports whether an alignment satisfies the acceptance predicate. se
// selects whether the SE-only MinAdapterOverlap gate applies.
func (c Criteria) Good(a Alignment, se bool) bool {
	if se && a.Length < c.MinAdapterOverlap {
		return false
	}
	if a.Length == 0 {
		return false
	}
	informative := a.Length - a.NAmbiguous
	maxMM := ceilRate(c.MismatchThreshold, informative)
	if a.NMismatches > maxMM {
		return false
	}
	return a.Score >= c.MinScore
}

func ceilRate(rate float64, n int) int {
	v := rate * float64(n)
	iv := int(v)
	if float64(iv) < v {
		iv++
	}
	return iv
}

func scoreBase(r, a byte) (score, mismatch, ambiguous int) {
	if r == 'N' || a == 'N' {
		return 0, 0, 1
	}
	if r == a {
		return 1, 0, 0
	}
	return -1, 1, 0
}

// AlignSE finds, over every (adapter, shift) pair, the alignment that
// maximizes score. Ties are broken by the shortest Length (the shift that
// retains the most genuine sequence), then by smaller adapter index

func AlignSE(read []byte, set Set) Alignment {
	best := Null()
	found := false
	n := len(read)
	for shift := 0; shift < n; shift++ {
		overlap := n - shift
		for ai, pair := range set.Pairs {
			length := overlap
			if length > len(pair.Adapter1) {
				length = len(pair.Adapter1)
			}
			if length == 0 {
				continue
			}
			score, mm, amb := 0, 0, 0
			for i := 0; i < length; i++ {
				s, m, a := scoreBase(read[shift+i], pair.Adapter1[i])
				score += s
				mm += m
				amb += a
			}
			if !found || score > best.Score || (score == best.Score && overlap < best.Length) {
				best = Alignment{Shift: shift, Score: score, Length: overlap, NMismatches: mm, NAmbiguous: amb, AdapterID: ai}
				found = true
			}
		}
	}
	return best
}

// reverseComplementBytes returns the reverse complement of b without
// mutating it.
func reverseComplementBytes(b []byte) []byte {
	out := make([]byte, len(b))
	comp := func(c byte) byte {
		switch c {
		case 'A':
			return 'T'
		case 'T':
			return 'A'
		case 'C':
			return 'G'
		case 'G':
			return 'C'
		default:
			return 'N'
		}
	}
	n := len(b)
	for i, c := range b {
		out[n-1-i] = comp(c)
	}
	return out
}

// AlignPE finds, over shift in [-maxShift, len(r1)), the alignment
// maximizing score across three zones: the mate/mate overlap (always
// scored, independent of the adapter set), the adapter-2 contamination at
// the head of r2rc (when shift < 0), and the adapter-1 contamination at
// the tail of r1 (when r1 extends past the end of r2rc). The latter two
// zones are scored once per configured adapter pair; an empty adapter set
// still aligns on the mate/mate overlap alone. r2rc must already be the
// reverse complement of read 2.
func AlignPE(r1, r2rc []byte, set Set, maxShift int) Alignment {
	best := Null()
	l1, l2 := len(r1), len(r2rc)

	overlapZone := func(shift int) (score, mm, amb, length int) {
		zoneStart := shift
		if zoneStart < 0 {
			zoneStart = 0
		}
		zoneEnd := shift + l2
		if zoneEnd > l1 {
			zoneEnd = l1
		}
		zoneLen := zoneEnd - zoneStart
		if zoneLen < 0 {
			zoneLen = 0
		}
		for p := zoneStart; p < zoneEnd; p++ {
			s, m, am := scoreBase(r1[p], r2rc[p-shift])
			score += s
			mm += m
			amb += am
		}
		length = zoneLen
		return
	}

	adapterZones := func(shift int, a1, a2 []byte) (score, mm, amb int) {
		if shift < 0 {
			lenII := -shift
			if lenII > len(a2) {
				lenII = len(a2)
			}
			if lenII > l2 {
				lenII = l2
			}
			want := reverseComplementBytes(a2[:lenII])
			for i := 0; i < lenII; i++ {
				s, m, am := scoreBase(r2rc[i], want[i])
				score += s
				mm += m
				amb += am
			}
		}

		if shift+l2 < l1 {
			start := shift + l2
			extra := l1 - start
			if extra > len(a1) {
				extra = len(a1)
			}
			for i := 0; i < extra; i++ {
				s, m, am := scoreBase(r1[start+i], a1[i])
				score += s
				mm += m
				amb += am
			}
		}
		return
	}

	found := false
	for shift := -maxShift; shift < l1; shift++ {
		baseScore, baseMM, baseAmb, length := overlapZone(shift)
		if length == 0 {
			continue
		}
		if len(set.Pairs) == 0 {
			if !found || baseScore > best.Score {
				best = Alignment{Shift: shift, Score: baseScore, Length: length, NMismatches: baseMM, NAmbiguous: baseAmb, AdapterID: NullAdapterID}
				found = true
			}
			continue
		}
		for ai, pair := range set.Pairs {
			aScore, aMM, aAmb := adapterZones(shift, pair.Adapter1, pair.Adapter2)
			score := baseScore + aScore
			mm := baseMM + aMM
			amb := baseAmb + aAmb
			if !found || score > best.Score {
				best = Alignment{Shift: shift, Score: score, Length: length, NMismatches: mm, NAmbiguous: amb, AdapterID: ai}
				found = true
			}
		}
	}
	return best
}

// TruncateSE shortens read to the shift boundary of a good SE alignment.
func TruncateSE(seq []byte, a Alignment) []byte {
	if a.Shift < 0 || a.Shift > len(seq) {
		return seq
	}
	return seq[:a.Shift]
}

// TruncatePE truncates r1 to its overlap end (max(a.Shift, 0)+a.Length) and
// r2rc on its left so its remaining bases start at the overlap start. It
// returns the possibly-shortened slices and the number of mates (0, 1, or
// 2) whose sequence was actually shortened.
func TruncatePE(r1, r2rc []byte, a Alignment) (nr1, nr2rc []byte, truncatedMates int) {
	nr1, nr2rc = r1, r2rc
	overlapStart := 0
	if a.Shift > 0 {
		overlapStart = a.Shift
	}
	end := overlapStart + a.Length
	if end < len(r1) {
		nr1 = r1[:end]
		truncatedMates++
	}
	left := 0
	if a.Shift < 0 {
		left = -a.Shift
	}
	if left > 0 && left <= len(r2rc) {
		nr2rc = r2rc[left:]
		truncatedMates++
	}
	return
}
