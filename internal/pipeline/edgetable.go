package pipeline

// OutputKind distinguishes the output files a demultiplexed sample can
// target, replacing the offset arithmetic over a single flat edge-id
// space.
type OutputKind int

const (
	KindMate1 OutputKind = iota
	KindMate2
	KindSingleton
	KindCollapsed
	KindCollapsedTruncated
	KindDiscarded
	KindUnidentified
)

// EdgeTable assigns a stable EdgeID to every (sample, kind) pair a demux
// stage can route to, plus the handful of fixed infrastructure edges
// (decode output, unidentified-reads output). Built once per run and
// read-only thereafter.
type EdgeTable struct {
	bySample []map[OutputKind]EdgeID
	toTrim   []EdgeID
	next     EdgeID

	decodeEdge        EdgeID
	unidentifiedEdge  EdgeID
	unidentified2Edge EdgeID
}

// NewEdgeTable allocates edges for nSamples demultiplexed samples plus the
// fixed decode and unidentified-reads edges.
func NewEdgeTable(nSamples int) *EdgeTable {
	t := &EdgeTable{
		bySample: make([]map[OutputKind]EdgeID, nSamples),
		toTrim:   make([]EdgeID, nSamples),
	}
	for i := range t.bySample {
		t.bySample[i] = map[OutputKind]EdgeID{}
	}
	t.decodeEdge = t.Alloc()
	t.unidentifiedEdge = t.Alloc()
	t.unidentified2Edge = t.Alloc()
	for i := range t.toTrim {
		t.toTrim[i] = t.Alloc()
	}
	return t
}

// Alloc reserves and returns a fresh edge id, for stages (e.g. an encode
// or writer stage) with no natural (sample, kind) identity.
func (t *EdgeTable) Alloc() EdgeID {
	id := t.next
	t.next++
	return id
}

// Decode returns the fixed edge decoded chunks are enqueued on.
func (t *EdgeTable) Decode() EdgeID { return t.decodeEdge }

// Unidentified returns the fixed edge for mate 1 of reads the demux stage
// rejected (no barcode matched, or the match was ambiguous).
func (t *EdgeTable) Unidentified() EdgeID { return t.unidentifiedEdge }

// Unidentified2 returns the fixed edge for mate 2 of rejected pairs,
// populated only in paired-ended runs.
func (t *EdgeTable) Unidentified2() EdgeID { return t.unidentified2Edge }

// ToTrim returns the fixed edge that carries sample's classified,
// barcode-stripped reads into its trimming stage.
func (t *EdgeTable) ToTrim(sample int) EdgeID { return t.toTrim[sample] }

// Sample returns (allocating lazily on first use) the edge a sample's
// trimming stage routes its kind output onto.
func (t *EdgeTable) Sample(sample int, kind OutputKind) EdgeID {
	m := t.bySample[sample]
	if id, ok := m[kind]; ok {
		return id
	}
	id := t.Alloc()
	m[kind] = id
	return id
}

// Len reports how many edges have been allocated so far.
func (t *EdgeTable) Len() int { return int(t.next) }
