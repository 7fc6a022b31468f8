// Package trim implements the per-sample trimming processor (component
// C5): it orchestrates adapter alignment, collapsing, and quality/N
// trimming, and keeps a worker's statistics up to date.
package trim

import (
	"fmt"
	"math/rand"

	"trimkit/internal/adapter"
	"trimkit/internal/collapse"
	"trimkit/internal/fastq"
	"trimkit/internal/stats"
)

// Route is the output class a processed read (or mate) is sent to.
type Route int

const (
	RouteMate1 Route = iota
	RouteMate2
	RouteSingleton
	RouteDiscarded
	RouteCollapsed
	RouteCollapsedTruncated
)

// Result pairs a routed read with its destination.
type Result struct {
	Route Route
	Read  *fastq.Read
}

// Config is the subset of run configuration the processor needs.
type Config struct {
	Adapters           adapter.Set
	Criteria           adapter.Criteria
	MaxShift           int
	Collapse           bool
	MinAlignmentLength int
	MinGenomicLength   int
	MaxGenomicLength   int
	MaxAmbiguousBases  int
	Trim               fastq.TrimConfig
	MateSeparator      byte
}

// Processor runs one sample's trimming pipeline. It is safe for
// concurrent use only through distinct workers each supplying their own
// *stats.Stats and *rand.Rand (the scheduler hands out one of each per
// chunk via stats.Pool).
type Processor struct {
	cfg Config
}

// New builds a Processor from cfg.
func New(cfg Config) *Processor {
	return &Processor{cfg: cfg}
}

// ProcessSE runs the single-ended pipeline: adapter alignment, then
// quality/N trimming, then the length/ambiguity acceptance check.
func (p *Processor) ProcessSE(r *fastq.Read, st *stats.Stats) Result {
	a := adapter.AlignSE(r.Seq, p.cfg.Adapters)
	good := p.cfg.Criteria.Good(a, true)
	if good {
		st.Aligned++
		st.AddAdapterHit(a.AdapterID, 1)
		r.Seq = adapter.TruncateSE(r.Seq, a)
		r.Quality = r.Quality[:len(r.Seq)]
	} else {
		st.Unaligned++
	}

	fastq.TrimAmbiguousAndQuality(r, p.cfg.Trim)
	if p.accept(r) {
		st.GoodReads++
		st.GoodNucleotides += int64(r.Len())
		st.AddLength(stats.ClassMate1, r.Len())
		return Result{Route: RouteMate1, Read: r}
	}
	st.AddLength(stats.ClassDiscarded, r.Len())
	return Result{Route: RouteDiscarded, Read: r}
}

// ProcessPE runs the full paired-ended pipeline: mate-pair validation,
// alignment, optional collapsing, quality/N trimming, and routing. r1/r2
// are mutated in place; r2 must not yet be reverse-complemented. rng
// supplies the collapse tie-break.
func (p *Processor) ProcessPE(r1, r2 *fastq.Read, st *stats.Stats, rng *rand.Rand) ([]Result, error) {
	if err := fastq.ValidateMatePair(r1.ID, r2.ID, p.cfg.MateSeparator); err != nil {
		return nil, fmt.Errorf("processing pair: %w", err)
	}
	base, _, _ := fastq.SplitMateHeader(r1.ID, p.cfg.MateSeparator)

	r2.ReverseComplement()
	a := adapter.AlignPE(r1.Seq, r2.Seq, p.cfg.Adapters, p.cfg.MaxShift)
	good := p.cfg.Criteria.Good(a, false)

	if good && a.Length >= p.cfg.MinAlignmentLength && p.cfg.Collapse {
		st.Aligned += 2
		st.AddAdapterHit(a.AdapterID, 2)

		consensus := collapse.Collapse(r1, r2, a, rng)
		consensus.ID = base
		consensus.AddHeaderPrefix("M_")
		left, right := fastq.TrimAmbiguousAndQuality(consensus, p.cfg.Trim)
		truncated := left > 0 || right > 0
		if truncated {
			consensus.ID = "MT_" + consensus.ID[len("M_"):]
		}

		if !p.accept(consensus) {
			st.AddLength(stats.ClassDiscarded, consensus.Len())
			return []Result{{Route: RouteDiscarded, Read: consensus}}, nil
		}
		st.GoodReads++
		st.GoodNucleotides += int64(consensus.Len())
		if truncated {
			st.TruncatedCollapsed++
			st.AddLength(stats.ClassCollapsedTruncated, consensus.Len())
			return []Result{{Route: RouteCollapsedTruncated, Read: consensus}}, nil
		}
		st.FullLengthCollapsed++
		st.AddLength(stats.ClassCollapsed, consensus.Len())
		return []Result{{Route: RouteCollapsed, Read: consensus}}, nil
	}

	if good {
		st.Aligned += 2
		nr1, nr2, truncatedMates := adapter.TruncatePE(r1.Seq, r2.Seq, a)
		st.AddAdapterHit(a.AdapterID, int64(truncatedMates))
		r1.Seq = nr1
		r1.Quality = r1.Quality[:len(nr1)]
		r2.Seq = nr2
		r2.Quality = r2.Quality[len(r2.Quality)-len(nr2):]
	} else {
		st.Unaligned += 2
	}
	r2.ReverseComplement()

	fastq.TrimAmbiguousAndQuality(r1, p.cfg.Trim)
	fastq.TrimAmbiguousAndQuality(r2, p.cfg.Trim)

	ok1 := p.accept(r1)
	ok2 := p.accept(r2)

	switch {
	case ok1 && ok2:
		st.GoodReads += 2
		st.GoodNucleotides += int64(r1.Len() + r2.Len())
		st.AddLength(stats.ClassMate1, r1.Len())
		st.AddLength(stats.ClassMate2, r2.Len())
		return []Result{{Route: RouteMate1, Read: r1}, {Route: RouteMate2, Read: r2}}, nil
	case ok1:
		st.Singletons++
		st.DiscardedMate2++
		st.GoodReads++
		st.GoodNucleotides += int64(r1.Len())
		st.AddLength(stats.ClassSingleton, r1.Len())
		st.AddLength(stats.ClassDiscarded, r2.Len())
		return []Result{{Route: RouteSingleton, Read: r1}, {Route: RouteDiscarded, Read: r2}}, nil
	case ok2:
		st.Singletons++
		st.DiscardedMate1++
		st.GoodReads++
		st.GoodNucleotides += int64(r2.Len())
		st.AddLength(stats.ClassSingleton, r2.Len())
		st.AddLength(stats.ClassDiscarded, r1.Len())
		return []Result{{Route: RouteSingleton, Read: r2}, {Route: RouteDiscarded, Read: r1}}, nil
	default:
		st.DiscardedMate1++
		st.DiscardedMate2++
		st.AddLength(stats.ClassDiscarded, r1.Len())
		st.AddLength(stats.ClassDiscarded, r2.Len())
		return []Result{{Route: RouteDiscarded, Read: r1}, {Route: RouteDiscarded, Read: r2}}, nil
	}
}

func (p *Processor) accept(r *fastq.Read) bool {
	n := r.Len()
	if n < p.cfg.MinGenomicLength || n > p.cfg.MaxGenomicLength {
		return false
	}
	if fastq.CountAmbiguous(r) > p.cfg.MaxAmbiguousBases {
		return false
	}
	return true
}
