// Package tokenizer implements the byte-level FASTQ record reader that
// feeds internal/pipeline's Decoder. It is the concrete, file-backed
// implementation of pipeline.RawReader used by cmd/trimkit; the
// pipeline package itself only depends on the RawReader interface.
package tokenizer

import (
	"bufio"
	"fmt"
	"io"

	"trimkit/internal/fastq"
	"trimkit/internal/xerrors"
)

// Reader tokenizes four-line FASTQ records off of an io.Reader, scanning
// a decompressed stream line by line.
type Reader struct {
	sc *bufio.Scanner
}

// New wraps r (already decompressed, if applicable) in a tokenizing
// Reader.
func New(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	return &Reader{sc: sc}
}

// Next returns the next raw record, or io.EOF once the stream is
// exhausted.
func (r *Reader) Next() (fastq.RawRecord, error) {
	lines := make([]string, 0, 4)
	for len(lines) < 4 {
		if !r.sc.Scan() {
			if err := r.sc.Err(); err != nil {
				return fastq.RawRecord{}, fmt.Errorf("reading fastq record: %w", err)
			}
			if len(lines) == 0 {
				return fastq.RawRecord{}, io.EOF
			}
			return fastq.RawRecord{}, fmt.Errorf("truncated record (%d of 4 lines): %w", len(lines), xerrors.ErrMalformedRecord)
		}
		lines = append(lines, r.sc.Text())
	}
	return fastq.RawRecord{
		Header: lines[0],
		Seq:    []byte(lines[1]),
		Plus:   lines[2],
		Qual:   []byte(lines[3]),
	}, nil
}
