// Package config holds the run-wide, read-only settings a trimming run is
// driven by. Values are loaded from a YAML file, using a plain tagged
// struct, or set directly by a caller; parsing command-line flags into
// this struct is the CLI's job, not this package's.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"trimkit/internal/adapter"
	"trimkit/internal/demux"
	"trimkit/internal/xerrors"
)

// Config is the full set of options a trimming run can be configured with.
type Config struct {
	PairedEndedMode   bool `yaml:"paired_ended_mode"`
	InterleavedInput  bool `yaml:"interleaved_input"`
	InterleavedOutput bool `yaml:"interleaved_output"`
	MateSeparator     string `yaml:"mate_separator"`

	MinGenomicLength  int     `yaml:"min_genomic_length"`
	MaxGenomicLength  int     `yaml:"max_genomic_length"`
	MinAdapterOverlap int     `yaml:"min_adapter_overlap"`
	MinAlignmentLength int   `yaml:"min_alignment_length"`
	MismatchThreshold float64 `yaml:"mismatch_threshold"`

	QualityInputFmt  string `yaml:"quality_input_fmt"`
	QualityOutputFmt string `yaml:"quality_output_fmt"`
	TrimByQuality    bool   `yaml:"trim_by_quality"`
	LowQualityScore  int    `yaml:"low_quality_score"`
	TrimAmbiguousBases bool `yaml:"trim_ambiguous_bases"`
	MaxAmbiguousBases  int  `yaml:"max_ambiguous_bases"`

	Collapse bool `yaml:"collapse"`
	Shift    int  `yaml:"shift"`

	Seed       int64 `yaml:"seed"`
	MaxThreads int   `yaml:"max_threads"`

	Gzip       bool `yaml:"gzip"`
	GzipLevel  int  `yaml:"gzip_level"`
	Bzip2      bool `yaml:"bzip2"`
	Bzip2Level int  `yaml:"bzip2_level"`

	BarcodeMM   int `yaml:"barcode_mm"`
	BarcodeMMR1 int `yaml:"barcode_mm_r1"`
	BarcodeMMR2 int `yaml:"barcode_mm_r2"`

	Adapters []AdapterEntry `yaml:"adapters"`
	Barcodes []BarcodeEntry `yaml:"barcodes"`
}

// AdapterEntry is one (adapter1, adapter2, name) entry read from YAML.
type AdapterEntry struct {
	Name     string `yaml:"name"`
	Adapter1 string `yaml:"adapter1"`
	Adapter2 string `yaml:"adapter2"`
}

// BarcodeEntry is one sample's (barcode1, barcode2, name) entry.
type BarcodeEntry struct {
	Name     string `yaml:"name"`
	Barcode1 string `yaml:"barcode1"`
	Barcode2 string `yaml:"barcode2"`
}

// Default returns the baseline configuration a run uses when a caller
// doesn't override a setting.
func Default() Config {
	return Config{
		MinGenomicLength:    15,
		MaxGenomicLength:    1 << 30,
		MinAdapterOverlap:   2,
		MinAlignmentLength:  11,
		MismatchThreshold:   1.0 / 3.0,
		QualityInputFmt:     "phred33",
		QualityOutputFmt:    "phred33",
		TrimByQuality:       false,
		LowQualityScore:     2,
		TrimAmbiguousBases:  false,
		MaxAmbiguousBases:   1 << 30,
		Shift:               2,
		MaxThreads:          1,
		MateSeparator:       "/",
		GzipLevel:           6,
		Bzip2Level:          9,
	}
}

// Parse loads a Config from YAML bytes, starting from Default() so unset
// fields keep their defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the cross-field invariants the rest of the pipeline
// assumes hold.
func (c Config) Validate() error {
	if c.MinGenomicLength > c.MaxGenomicLength {
		return fmt.Errorf("min_genomic_length %d exceeds max_genomic_length %d: %w",
			c.MinGenomicLength, c.MaxGenomicLength, xerrors.ErrConfigInvalid)
	}
	if c.MaxThreads < 1 {
		return fmt.Errorf("max_threads must be >= 1: %w", xerrors.ErrConfigInvalid)
	}
	if c.MismatchThreshold < 0 || c.MismatchThreshold > 1 {
		return fmt.Errorf("mismatch_threshold %v must be in [0,1]: %w", c.MismatchThreshold, xerrors.ErrConfigInvalid)
	}
	if c.Gzip && c.Bzip2 {
		return fmt.Errorf("gzip and bzip2 are mutually exclusive: %w", xerrors.ErrConfigInvalid)
	}
	return nil
}

// MateSep returns the configured mate separator as a single byte, or 0 if
// disabled.
func (c Config) MateSep() byte {
	if len(c.MateSeparator) == 0 {
		return 0
	}
	return c.MateSeparator[0]
}

// AdapterSet builds the immutable adapter.Set the alignment engine shares
// read-only across every worker.
func (c Config) AdapterSet() adapter.Set {
	pairs := make([]adapter.Pair, len(c.Adapters))
	for i, a := range c.Adapters {
		pairs[i] = adapter.Pair{Name: a.Name, Adapter1: []byte(a.Adapter1), Adapter2: []byte(a.Adapter2)}
	}
	return adapter.Set{Pairs: pairs}
}

// DemuxConfig builds the demux.Config from the barcode entries, if any are
// configured.
func (c Config) DemuxConfig() demux.Config {
	barcodes := make([]demux.Barcode, len(c.Barcodes))
	for i, b := range c.Barcodes {
		barcodes[i] = demux.Barcode{Name: b.Name, Barcode1: []byte(b.Barcode1), Barcode2: []byte(b.Barcode2)}
	}
	return demux.Config{Barcodes: barcodes, MM: c.BarcodeMM, MMR1: c.BarcodeMMR1, MMR2: c.BarcodeMMR2}
}

// Criteria builds the adapter-alignment acceptance predicate from the
// configured thresholds.
func (c Config) Criteria() adapter.Criteria {
	return adapter.Criteria{
		MinAdapterOverlap: c.MinAdapterOverlap,
		MismatchThreshold: c.MismatchThreshold,
		MinScore:          0,
	}
}
