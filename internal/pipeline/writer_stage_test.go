package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trimkit/internal/sink"
)

func TestWriterStageCreatesFileOnFirstChunk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.fastq")
	s := NewWriterStage(path, sink.CodecNone)

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	_, err = s.Process(&OutputChunk{Seq: 0, Bytes: []byte("@r\nACGT\n+\nIIII\n")})
	require.NoError(t, err)

	_, err = s.Process(&OutputChunk{Seq: 1, Eof: true})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "@r\nACGT\n+\nIIII\n", string(got))
}

func TestWriterStageEmptyStreamProducesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.fastq")
	s := NewWriterStage(path, sink.CodecNone)

	_, err := s.Process(&OutputChunk{Seq: 0, Eof: true})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriterStageGzipRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.fastq.gz")
	s := NewWriterStage(path, sink.CodecGzip)

	payload := "@r\nACGTACGT\n+\nIIIIIIII\n"
	_, err := s.Process(&OutputChunk{Seq: 0, Bytes: []byte(payload)})
	require.NoError(t, err)
	_, err = s.Process(&OutputChunk{Seq: 1, Eof: true})
	require.NoError(t, err)

	rc, err := sink.OpenInput(path)
	require.NoError(t, err)
	defer rc.Close()

	buf := make([]byte, len(payload)+16)
	n, _ := rc.Read(buf)
	assert.Equal(t, payload, string(buf[:n]))
}

func TestWriterStageBzip2RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.fastq.bz2")
	s := NewWriterStage(path, sink.CodecBzip2)

	payload := "@r\nACGTACGT\n+\nIIIIIIII\n"
	_, err := s.Process(&OutputChunk{Seq: 0, Bytes: []byte(payload)})
	require.NoError(t, err)
	_, err = s.Process(&OutputChunk{Seq: 1, Eof: true})
	require.NoError(t, err)

	rc, err := sink.OpenInput(path)
	require.NoError(t, err)
	defer rc.Close()

	buf := make([]byte, len(payload)+16)
	n, _ := rc.Read(buf)
	assert.Equal(t, payload, string(buf[:n]))
}
