package pipeline

import (
	"math/rand"

	"trimkit/internal/demux"
	"trimkit/internal/fastq"
	"trimkit/internal/stats"
	"trimkit/internal/trim"
)

// DemuxStage classifies every read (pair) in a ReadChunk by barcode and
// fans it out to the per-sample and reject (unidentified + ambiguous)
// edges. It is ordered: sample-level output chunks must preserve decode
// order so each sample's own downstream edges stay contiguous.
type DemuxStage struct {
	d       *demux.Demultiplexer
	edges   *EdgeTable
	totals  *stats.Pool[*stats.DemuxTotals]
	paired  bool
	seqNext []uint64 // per-target sequence counters, indexed by EdgeID
}

// NewDemuxStage builds a DemuxStage routing through edges using d, tallying
// per-worker demux totals in totals. paired selects whether r2 participates
// in classification.
func NewDemuxStage(d *demux.Demultiplexer, edges *EdgeTable, totals *stats.Pool[*stats.DemuxTotals], paired bool) *DemuxStage {
	return &DemuxStage{d: d, edges: edges, totals: totals, paired: paired, seqNext: make([]uint64, edges.Len())}
}

func (s *DemuxStage) Ordered() bool { return true }

func (s *DemuxStage) grow(id EdgeID) {
	for EdgeID(len(s.seqNext)) <= id {
		s.seqNext = append(s.seqNext, 0)
	}
}

func (s *DemuxStage) nextSeq(id EdgeID) uint64 {
	s.grow(id)
	n := s.seqNext[id]
	s.seqNext[id]++
	return n
}

// Process classifies every read pair in c and emits one ReadChunk per
// reachable target edge, so per-edge sequence numbers stay contiguous
// even when a given chunk contributes zero reads to a target.
func (s *DemuxStage) Process(c Chunk) ([]Route, error) {
	in := c.(*ReadChunk)

	nSamples := len(s.d.Samples())
	bySample := make([][]*fastq.Read, nSamples)
	bySample2 := make([][]*fastq.Read, nSamples)
	var unident, ambiguous []*fastq.Read
	var unident2, ambiguous2 []*fastq.Read

	totals := s.totals.Acquire()
	defer s.totals.Release(totals)

	for i, r1 := range in.Reads1 {
		var r2 *fastq.Read
		if s.paired {
			r2 = in.Reads2[i]
		}
		res := s.d.Classify(r1, r2)
		switch res.Kind {
		case demux.Identified:
			s.d.Strip(r1, r2)
			bySample[res.Sample] = append(bySample[res.Sample], r1)
			if s.paired {
				bySample2[res.Sample] = append(bySample2[res.Sample], r2)
			}
			totals.PerSample[res.Sample]++
		case demux.Ambiguous:
			ambiguous = append(ambiguous, r1)
			if s.paired {
				ambiguous2 = append(ambiguous2, r2)
			}
			totals.Ambiguous++
		default:
			unident = append(unident, r1)
			if s.paired {
				unident2 = append(unident2, r2)
			}
			totals.Unidentified++
		}
	}

	var routes []Route
	emit := func(id EdgeID, reads1, reads2 []*fastq.Read) {
		routes = append(routes, Route{Target: id, Chunk: &ReadChunk{
			Seq: s.nextSeq(id), Reads1: reads1, Reads2: reads2, Eof: in.Eof,
		}})
	}

	for sample := 0; sample < nSamples; sample++ {
		emit(s.edges.ToTrim(sample), bySample[sample], bySample2[sample])
	}
	// Unidentified and ambiguous reads are both demultiplex rejects and
	// share one pair of output edges; totals still count them
	// separately.
	rejects1 := append(unident, ambiguous...)
	emit(s.edges.Unidentified(), rejects1, nil)
	if s.paired {
		rejects2 := append(unident2, ambiguous2...)
		emit(s.edges.Unidentified2(), rejects2, nil)
	}

	return routes, nil
}

// SETrimStage runs the single-ended trimming processor for one sample and
// emits its two output classes: retained reads and discarded reads.
type SETrimStage struct {
	p              *trim.Processor
	target         EdgeID
	discardTarget  EdgeID
	stPool         *stats.Pool[*stats.Stats]
	seqNext        uint64
	discardSeqNext uint64
}

// NewSETrimStage builds a single-ended trim stage whose good reads route
// to target and discarded reads route to discardTarget.
func NewSETrimStage(p *trim.Processor, target, discardTarget EdgeID, stPool *stats.Pool[*stats.Stats]) *SETrimStage {
	return &SETrimStage{p: p, target: target, discardTarget: discardTarget, stPool: stPool}
}

func (s *SETrimStage) Ordered() bool { return true }

func (s *SETrimStage) Process(c Chunk) ([]Route, error) {
	in := c.(*ReadChunk)
	st := s.stPool.Acquire()
	defer s.stPool.Release(st)

	out := make([]*fastq.Read, 0, len(in.Reads1))
	var discarded []*fastq.Read
	for _, r := range in.Reads1 {
		res := s.p.ProcessSE(r, st)
		if res.Route == trim.RouteMate1 {
			out = append(out, res.Read)
		} else {
			discarded = append(discarded, res.Read)
		}
	}
	st.Records += int64(len(in.Reads1))

	seq := s.seqNext
	s.seqNext++
	dseq := s.discardSeqNext
	s.discardSeqNext++
	return []Route{
		{Target: s.target, Chunk: &ReadChunk{Seq: seq, Reads1: out, Eof: in.Eof}},
		{Target: s.discardTarget, Chunk: &ReadChunk{Seq: dseq, Reads1: discarded, Eof: in.Eof}},
	}, nil
}

// PETrimStage runs the paired-ended trimming processor for one sample and
// fans results out across that sample's output kinds (mate1/mate2,
// singleton+discarded, collapsed, collapsed-truncated).
type PETrimStage struct {
	p          *trim.Processor
	sample     int
	edges      *EdgeTable
	stPool     *stats.Pool[*stats.Stats]
	rngPool    *stats.Pool[*rand.Rand]
	seqNext    map[EdgeID]uint64
}

// NewPETrimStage builds a paired-ended trim stage for sample, routing
// through edges.
func NewPETrimStage(p *trim.Processor, sample int, edges *EdgeTable, stPool *stats.Pool[*stats.Stats], rngPool *stats.Pool[*rand.Rand]) *PETrimStage {
	return &PETrimStage{p: p, sample: sample, edges: edges, stPool: stPool, rngPool: rngPool, seqNext: map[EdgeID]uint64{}}
}

func (s *PETrimStage) Ordered() bool { return true }

func (s *PETrimStage) next(kind OutputKind) (EdgeID, uint64) {
	id := s.edges.Sample(s.sample, kind)
	n := s.seqNext[id]
	s.seqNext[id] = n + 1
	return id, n
}

func routeKind(r trim.Route) (OutputKind, bool) {
	switch r {
	case trim.RouteMate1:
		return KindMate1, true
	case trim.RouteMate2:
		return KindMate2, true
	case trim.RouteSingleton:
		return KindSingleton, true
	case trim.RouteCollapsed:
		return KindCollapsed, true
	case trim.RouteCollapsedTruncated:
		return KindCollapsedTruncated, true
	case trim.RouteDiscarded:
		return KindDiscarded, true
	default:
		return 0, false
	}
}

func (s *PETrimStage) Process(c Chunk) ([]Route, error) {
	in := c.(*ReadChunk)
	st := s.stPool.Acquire()
	defer s.stPool.Release(st)
	rng := s.rngPool.Acquire()
	defer s.rngPool.Release(rng)

	byKind := map[OutputKind][]*fastq.Read{}
	for i := range in.Reads1 {
		results, err := s.p.ProcessPE(in.Reads1[i], in.Reads2[i], st, rng)
		if err != nil {
			return nil, err
		}
		for _, res := range results {
			kind, ok := routeKind(res.Route)
			if !ok {
				continue
			}
			byKind[kind] = append(byKind[kind], res.Read)
		}
	}
	st.Records += int64(len(in.Reads1))

	var routes []Route
	for _, kind := range []OutputKind{KindMate1, KindMate2, KindSingleton, KindCollapsed, KindCollapsedTruncated, KindDiscarded} {
		id, seq := s.next(kind)
		routes = append(routes, Route{Target: id, Chunk: &ReadChunk{Seq: seq, Reads1: byKind[kind], Eof: in.Eof}})
	}
	return routes, nil
}

// UnidentifiedStage passes reads that matched no barcode straight through
// to their output edge untrimmed.
type UnidentifiedStage struct {
	target  EdgeID
	seqNext uint64
}

// NewUnidentifiedStage builds a pass-through stage targeting target.
func NewUnidentifiedStage(target EdgeID) *UnidentifiedStage {
	return &UnidentifiedStage{target: target}
}

func (s *UnidentifiedStage) Ordered() bool { return true }

func (s *UnidentifiedStage) Process(c Chunk) ([]Route, error) {
	in := c.(*ReadChunk)
	seq := s.seqNext
	s.seqNext++
	return []Route{{Target: s.target, Chunk: &ReadChunk{Seq: seq, Reads1: in.Reads1, Reads2: in.Reads2, Eof: in.Eof}}}, nil
}

// EncodeStage renders a ReadChunk's reads into FASTQ bytes against a
// fixed quality scheme, handing the result to a sink writer edge.
type EncodeStage struct {
	scheme fastq.Scheme
	target EdgeID
}

// NewEncodeStage builds an encode stage writing scheme-encoded bytes to
// target.
func NewEncodeStage(scheme fastq.Scheme, target EdgeID) *EncodeStage {
	return &EncodeStage{scheme: scheme, target: target}
}

func (s *EncodeStage) Ordered() bool { return true }

func (s *EncodeStage) Process(c Chunk) ([]Route, error) {
	in := c.(*ReadChunk)
	var buf []byte
	for _, r := range in.Reads1 {
		buf = append(buf, fastq.Encode(r, s.scheme)...)
	}
	return []Route{{Target: s.target, Chunk: &OutputChunk{
		Seq: in.Seq, Bytes: buf, NReads: len(in.Reads1), Eof: in.Eof,
	}}}, nil
}
