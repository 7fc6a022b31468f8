package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"trimkit/internal/config"
	"trimkit/internal/pipeline"
	"trimkit/internal/report"
	"trimkit/internal/sink"
	"trimkit/internal/tokenizer"
)

var (
	input1 = flag.String("i1", "", "Input file, mate 1 (required)")
	input2 = flag.String("i2", "", "Input file, mate 2 (paired mode)")

	output = flag.String("o", "", "Output path prefix (required)")

	adapter1 = flag.String("adapter1", "", "Adapter1 sequence")
	adapter2 = flag.String("adapter2", "", "Adapter2 sequence (paired mode)")

	pairedEnded  = flag.Bool("pe", false, "Paired-ended mode")
	interleaved  = flag.Bool("interleaved", false, "Input is a single interleaved file (implies -pe)")
	collapse     = flag.Bool("collapse", false, "Collapse overlapping mate pairs into a consensus read")
	shift        = flag.Int("shift", 2, "Maximum adapter/mate alignment shift search window")
	minLen       = flag.Int("minLength", 15, "Minimum genomic length of a retained read")
	maxLen       = flag.Int("maxLength", 1<<30, "Maximum genomic length of a retained read")
	minOverlap   = flag.Int("minAdapterOverlap", 2, "Minimum adapter/read overlap accepted (single-ended)")
	minAlignLen  = flag.Int("minAlignmentLength", 11, "Minimum mate-overlap length required to collapse")
	mismatchRate = flag.Float64("mismatchRate", 1.0/3.0, "Maximum alignment mismatch rate")
	trimQuality  = flag.Bool("trimQualities", false, "Trim low-quality bases from both ends")
	minQuality   = flag.Int("minQuality", 2, "Quality threshold at or below which end bases are trimmed")
	trimNs       = flag.Bool("trimNs", false, "Trim ambiguous (N) bases from both ends")
	maxNs        = flag.Int("maxNs", 1<<30, "Maximum ambiguous bases tolerated in a retained read")
	qualityIn    = flag.String("qualityBase", "phred33", "Input quality encoding: phred33, phred64, phred64x, solexa64")
	qualityOut   = flag.String("qualityBaseOut", "phred33", "Output quality encoding")
	mateSep      = flag.String("mateSeparator", "/", "Mate-number separator in read headers ('' disables)")
	seed         = flag.Int64("seed", 0, "RNG master seed")
	maxThreads   = flag.Int("threads", 1, "Number of worker goroutines")
	gzipOut      = flag.Bool("gzip", false, "Gzip-compress output files")
	bzip2Out     = flag.Bool("bzip2", false, "Bzip2-compress output files")
)

func main() {
	flag.Parse()

	if *input1 == "" || *output == "" {
		fmt.Println("Missing required arguments")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	cfg.PairedEndedMode = *pairedEnded || *interleaved
	cfg.InterleavedInput = *interleaved
	cfg.MateSeparator = *mateSep
	cfg.MinGenomicLength = *minLen
	cfg.MaxGenomicLength = *maxLen
	cfg.MinAdapterOverlap = *minOverlap
	cfg.MinAlignmentLength = *minAlignLen
	cfg.MismatchThreshold = *mismatchRate
	cfg.QualityInputFmt = *qualityIn
	cfg.QualityOutputFmt = *qualityOut
	cfg.TrimByQuality = *trimQuality
	cfg.LowQualityScore = *minQuality
	cfg.TrimAmbiguousBases = *trimNs
	cfg.MaxAmbiguousBases = *maxNs
	cfg.Collapse = *collapse
	cfg.Shift = *shift
	cfg.Seed = *seed
	cfg.MaxThreads = *maxThreads
	cfg.Gzip = *gzipOut
	cfg.Bzip2 = *bzip2Out
	if *adapter1 != "" {
		cfg.Adapters = []config.AdapterEntry{{Name: "adapter", Adapter1: *adapter1, Adapter2: *adapter2}}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	suffix := outputSuffix(cfg)
	out := pipeline.Outputs{
		Samples: []pipeline.SampleOutputs{{
			Name:  "sample",
			Mate1: *output + ".mate1" + suffix,
		}},
	}
	if cfg.PairedEndedMode {
		out.Samples[0].Mate2 = *output + ".mate2" + suffix
		out.Samples[0].Singleton = *output + ".singleton" + suffix
		if cfg.Collapse {
			out.Samples[0].Collapsed = *output + ".collapsed" + suffix
			out.Samples[0].CollapsedTruncated = *output + ".collapsed.truncated" + suffix
		}
	}

	in, closeFn, err := openInputs(cfg)
	if err != nil {
		log.Fatalf("opening input: %v", err)
	}
	defer closeFn()

	startTime := time.Now()
	result, err := pipeline.Run(cfg, in, out)
	if err != nil {
		log.Fatalf("trimming failed: %v", err)
	}

	settingsPath := *output + ".settings"
	f, err := os.Create(settingsPath)
	if err != nil {
		log.Fatalf("writing settings report: %v", err)
	}
	rngReproducible := cfg.MaxThreads == 1
	if err := report.WriteSampleSettings(f, "sample", cfg.PairedEndedMode, result.PerSample[0], cfg.Seed, rngReproducible); err != nil {
		log.Fatalf("writing settings report: %v", err)
	}
	f.Close()

	if result.DemuxTotals != nil {
		df, err := os.Create(*output + ".demux_stats")
		if err != nil {
			log.Fatalf("writing demux stats: %v", err)
		}
		barcode1 := make([]string, len(cfg.Barcodes))
		barcode2 := make([]string, len(cfg.Barcodes))
		names := make([]string, len(cfg.Barcodes))
		for i, b := range cfg.Barcodes {
			names[i], barcode1[i], barcode2[i] = b.Name, b.Barcode1, b.Barcode2
		}
		if err := report.WriteDemuxStats(df, names, barcode1, barcode2, result.DemuxTotals); err != nil {
			log.Fatalf("writing demux stats: %v", err)
		}
		df.Close()
	}

	elapsed := time.Since(startTime)
	color.HiGreen("Trimming completed in %s\n", elapsed.Round(time.Millisecond))
	color.HiMagenta("Retained reads: %s\n", comma(result.PerSample[0].GoodReads))
	color.HiMagenta("Reads without adapters: %s\n", comma(result.PerSample[0].Unaligned))
}

func outputSuffix(cfg config.Config) string {
	switch {
	case cfg.Gzip:
		return ".fastq.gz"
	case cfg.Bzip2:
		return ".fastq.bz2"
	default:
		return ".fastq"
	}
}

func openInputs(cfg config.Config) (pipeline.Inputs, func(), error) {
	r1, err := sink.OpenInput(*input1)
	if err != nil {
		return pipeline.Inputs{}, nil, err
	}
	if cfg.InterleavedInput {
		return pipeline.Inputs{Interleaved: tokenizer.New(r1)}, func() { r1.Close() }, nil
	}
	if !cfg.PairedEndedMode {
		return pipeline.Inputs{R1: tokenizer.New(r1)}, func() { r1.Close() }, nil
	}
	if *input2 == "" {
		r1.Close()
		return pipeline.Inputs{}, nil, fmt.Errorf("paired-ended mode requires -i2")
	}
	r2, err := sink.OpenInput(*input2)
	if err != nil {
		r1.Close()
		return pipeline.Inputs{}, nil, err
	}
	return pipeline.Inputs{R1: tokenizer.New(r1), R2: tokenizer.New(r2)}, func() { r1.Close(); r2.Close() }, nil
}

// comma formats n with thousands separators for the terminal summary.
func comma(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
