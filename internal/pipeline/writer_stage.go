package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/pgzip"

	"trimkit/internal/sink"
	"trimkit/internal/xerrors"
)

// WriterStage appends OutputChunk bytes to path in arrival order,
// applying the configured codec. The underlying file and compressor are
// opened lazily on the first chunk and closed when the EOF chunk is
// processed, so a sample that receives zero reads still produces an
// empty (but validly closed) output file.
type WriterStage struct {
	path  string
	codec sink.Codec

	f    *os.File
	bw   *bufio.Writer
	comp io.WriteCloser // nil for CodecNone
}

// NewWriterStage builds a stage that writes path using codec.
func NewWriterStage(path string, codec sink.Codec) *WriterStage {
	return &WriterStage{path: path, codec: codec}
}

func (s *WriterStage) Ordered() bool { return true }

func (s *WriterStage) open() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", s.path, err)
	}
	s.f = f
	s.bw = bufio.NewWriterSize(f, 1<<20)

	switch s.codec {
	case sink.CodecGzip:
		s.comp = pgzip.NewWriter(s.bw)
	case sink.CodecBzip2:
		bw, err := bzip2.NewWriter(s.bw, nil)
		if err != nil {
			return fmt.Errorf("opening bzip2 writer for %s: %w", s.path, err)
		}
		s.comp = bw
	}
	return nil
}

func (s *WriterStage) writer() io.Writer {
	if s.comp != nil {
		return s.comp
	}
	return s.bw
}

func (s *WriterStage) Process(c Chunk) ([]Route, error) {
	out := c.(*OutputChunk)
	if s.f == nil {
		if err := s.open(); err != nil {
			return nil, fmt.Errorf("%w: %v", xerrors.ErrIoFailure, err)
		}
	}
	if len(out.Bytes) > 0 {
		if _, err := s.writer().Write(out.Bytes); err != nil {
			return nil, fmt.Errorf("writing %s: %w", s.path, xerrors.ErrIoFailure)
		}
	}
	if out.Eof {
		return nil, s.close()
	}
	return nil, nil
}

func (s *WriterStage) close() error {
	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s: %w", s.path, xerrors.ErrIoFailure)
		}
	}
	if s.comp != nil {
		note(s.comp.Close())
	}
	note(s.bw.Flush())
	note(s.f.Close())
	return firstErr
}
