package pipeline

import (
	"fmt"
	"math/rand"

	"trimkit/internal/config"
	"trimkit/internal/demux"
	"trimkit/internal/fastq"
	"trimkit/internal/sink"
	"trimkit/internal/stats"
	"trimkit/internal/trim"
)

// Inputs bundles the raw-record sources a run decodes from. Exactly one
// of (R1 only), (R1, R2), or (Interleaved) is populated, per cfg's
// paired/interleaved flags.
type Inputs struct {
	R1          RawReader
	R2          RawReader
	Interleaved RawReader
}

// SampleOutputs names the file paths one demultiplexed sample writes to.
// An empty path means that output kind is not written; for
// CollapsedTruncated specifically, an empty path falls back to Collapsed
// (both collapse outcomes are grouped into one file when the caller
// does not ask for them split out).
type SampleOutputs struct {
	Name               string
	Mate1              string
	Mate2              string
	Singleton          string
	Discarded          string
	Collapsed          string
	CollapsedTruncated string
}

// Outputs names every file path a run writes to. Unidentified2 is only
// meaningful in paired-ended runs; it carries mate 2 of a demultiplex
// reject alongside Unidentified1's mate 1.
type Outputs struct {
	Samples       []SampleOutputs
	Unidentified1 string
	Unidentified2 string
}

// Result is the reduced, run-wide outcome of one pipeline execution.
type Result struct {
	PerSample   []*stats.Stats
	DemuxTotals *stats.DemuxTotals
}

func outputCodec(cfg config.Config) sink.Codec {
	switch {
	case cfg.Gzip:
		return sink.CodecGzip
	case cfg.Bzip2:
		return sink.CodecBzip2
	default:
		return sink.CodecNone
	}
}

const edgeCapacity = 8

// wireSink registers an encode stage on in, writing scheme-encoded bytes
// to path through a writer stage with the run's codec. A path of ""
// still drains and discards the chunks, so upstream ordering accounting
// stays correct.
func wireSink(sched *Scheduler, edges *EdgeTable, in EdgeID, path string, scheme fastq.Scheme, codec sink.Codec) {
	if path == "" {
		sched.RegisterEdge(in, discardStage{}, edgeCapacity)
		return
	}
	encoded := edges.Alloc()
	sched.RegisterEdge(in, NewEncodeStage(scheme, encoded), edgeCapacity)
	sched.RegisterEdge(encoded, NewWriterStage(path, codec), edgeCapacity)
}

// discardStage drops every chunk it receives; used for output kinds the
// caller did not request a path for.
type discardStage struct{}

func (discardStage) Ordered() bool                  { return false }
func (discardStage) Process(Chunk) ([]Route, error) { return nil, nil }

// Run wires and executes one complete trimming pipeline from cfg, in, and
// out, blocking until every input record has been decoded, trimmed, and
// written, then returns the reduced statistics.
func Run(cfg config.Config, in Inputs, out Outputs) (Result, error) {
	inScheme, err := fastq.LookupScheme(cfg.QualityInputFmt)
	if err != nil {
		return Result{}, err
	}
	outScheme, err := fastq.LookupScheme(cfg.QualityOutputFmt)
	if err != nil {
		return Result{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	nSamples := len(out.Samples)
	if nSamples == 0 {
		nSamples = 1
		out.Samples = []SampleOutputs{{Name: "sample"}}
	}
	edges := NewEdgeTable(nSamples)
	sched := NewScheduler(cfg.MaxThreads)
	codec := outputCodec(cfg)

	var demuxer *demux.Demultiplexer
	if len(cfg.Barcodes) > 0 {
		demuxer, err = demux.New(cfg.DemuxConfig())
		if err != nil {
			return Result{}, err
		}
	}

	statsPools := make([]*stats.Pool[*stats.Stats], nSamples)
	rngPools := make([]*stats.Pool[*rand.Rand], nSamples)
	for i := 0; i < nSamples; i++ {
		statsPools[i] = stats.NewPool(stats.New)
		seed := cfg.Seed + int64(i)
		rngPools[i] = stats.NewPool(func() *rand.Rand { return rand.New(rand.NewSource(seed)) })
	}
	demuxTotalsPool := stats.NewPool(func() *stats.DemuxTotals { return stats.NewDemuxTotals(nSamples) })

	trimCfg := fastq.TrimConfig{
		TrimQuality:        cfg.TrimByQuality,
		LowQualityScore:    cfg.LowQualityScore,
		TrimAmbiguousBases: cfg.TrimAmbiguousBases,
	}
	procCfg := trim.Config{
		Adapters:           cfg.AdapterSet(),
		Criteria:           cfg.Criteria(),
		MaxShift:           cfg.Shift,
		Collapse:           cfg.Collapse,
		MinAlignmentLength: cfg.MinAlignmentLength,
		MinGenomicLength:   cfg.MinGenomicLength,
		MaxGenomicLength:   cfg.MaxGenomicLength,
		MaxAmbiguousBases:  cfg.MaxAmbiguousBases,
		Trim:               trimCfg,
		MateSeparator:      cfg.MateSep(),
	}

	// Decode edge: either a demux stage fanning out to every sample's
	// to-trim edge and the unidentified edge, or (no barcodes configured)
	// an identity stage feeding the single implicit sample.
	if demuxer != nil {
		sched.RegisterEdge(edges.Decode(), NewDemuxStage(demuxer, edges, demuxTotalsPool, cfg.PairedEndedMode), edgeCapacity)
	} else {
		sched.RegisterEdge(edges.Decode(), NewUnidentifiedStage(edges.ToTrim(0)), edgeCapacity)
	}

	wireSink(sched, edges, edges.Unidentified(), out.Unidentified1, outScheme, codec)
	if cfg.PairedEndedMode {
		wireSink(sched, edges, edges.Unidentified2(), out.Unidentified2, outScheme, codec)
	}

	for s := 0; s < nSamples; s++ {
		so := out.Samples[s]
		proc := trim.New(procCfg)

		if cfg.PairedEndedMode {
			pe := NewPETrimStage(proc, s, edges, statsPools[s], rngPools[s])
			sched.RegisterEdge(edges.ToTrim(s), pe, edgeCapacity)

			truncatedPath := so.CollapsedTruncated
			if truncatedPath == "" {
				truncatedPath = so.Collapsed
			}
			wireSink(sched, edges, edges.Sample(s, KindMate1), so.Mate1, outScheme, codec)
			wireSink(sched, edges, edges.Sample(s, KindMate2), so.Mate2, outScheme, codec)
			wireSink(sched, edges, edges.Sample(s, KindSingleton), so.Singleton, outScheme, codec)
			wireSink(sched, edges, edges.Sample(s, KindDiscarded), so.Discarded, outScheme, codec)
			wireSink(sched, edges, edges.Sample(s, KindCollapsed), so.Collapsed, outScheme, codec)
			wireSink(sched, edges, edges.Sample(s, KindCollapsedTruncated), truncatedPath, outScheme, codec)
		} else {
			se := NewSETrimStage(proc, edges.Sample(s, KindMate1), edges.Sample(s, KindDiscarded), statsPools[s])
			sched.RegisterEdge(edges.ToTrim(s), se, edgeCapacity)
			wireSink(sched, edges, edges.Sample(s, KindMate1), so.Mate1, outScheme, codec)
			wireSink(sched, edges, edges.Sample(s, KindDiscarded), so.Discarded, outScheme, codec)
		}
	}

	sched.Start()

	decoder := NewDecoder(sched, edges, inScheme, 10000, cfg.MateSep())
	var decodeErr error
	switch {
	case cfg.InterleavedInput:
		decodeErr = decoder.RunInterleaved(in.Interleaved)
	case cfg.PairedEndedMode:
		decodeErr = decoder.RunPE(in.R1, in.R2)
	default:
		decodeErr = decoder.RunSE(in.R1)
	}

	waitErr := sched.Wait()
	if decodeErr != nil {
		return Result{}, fmt.Errorf("decoding input: %w", decodeErr)
	}
	if waitErr != nil {
		return Result{}, waitErr
	}

	result := Result{PerSample: make([]*stats.Stats, nSamples)}
	for i, pool := range statsPools {
		result.PerSample[i] = pool.Finalize(stats.Reduce)
	}
	result.DemuxTotals = demuxTotalsPool.Finalize(stats.ReduceDemuxTotals)
	if result.DemuxTotals == nil {
		result.DemuxTotals = stats.NewDemuxTotals(nSamples)
	}
	return result, nil
}
