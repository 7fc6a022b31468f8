// Package sink names the compression codecs, infers a codec from a file
// extension, and opens (transparently decompressing) input files. The
// compressing file writer is internal/pipeline's WriterStage.
package sink

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"

	"trimkit/internal/xerrors"
)

// Codec names the output compression format.
type Codec int

const (
	CodecNone Codec = iota
	CodecGzip
	CodecBzip2
)

// CodecFromExt infers the sink's codec from an output path's extension.
func CodecFromExt(path string) Codec {
	switch {
	case hasSuffix(path, ".gz"):
		return CodecGzip
	case hasSuffix(path, ".bz2"):
		return CodecBzip2
	default:
		return CodecNone
	}
}

func hasSuffix(s, suf string) bool {
	return len(s) >= len(suf) && s[len(s)-len(suf):] == suf
}

// decompressReader wraps a raw *os.File with the reader half of codec, for
// opening already-compressed input files. Unexported: only the run
// wiring needs it.
func decompressReader(f *os.File, codec Codec) (io.ReadCloser, error) {
	switch codec {
	case CodecGzip:
		return gzip.NewReader(f)
	case CodecBzip2:
		return bzip2.NewReader(f, nil)
	default:
		return f, nil
	}
}

// OpenInput opens path for reading, transparently decompressing per
// CodecFromExt.
func OpenInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, xerrors.ErrIoFailure)
	}
	rc, err := decompressReader(f, CodecFromExt(path))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return rc, nil
}
