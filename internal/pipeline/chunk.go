// Package pipeline implements the chunked pipeline scheduler (component
// C6): a static DAG of stages connected by numbered edges, driven by a
// bounded worker pool, preserving per-edge ordering and propagating
// end-of-stream.
package pipeline

import "trimkit/internal/fastq"

// EdgeID identifies one directed edge of the stage DAG.
type EdgeID int

// Chunk is a batch of work flowing along one edge. ReadChunk and
// OutputChunk are its two variants.
type Chunk interface {
	SeqNum() uint64
	IsEOF() bool
}

// ReadChunk batches reads (and, for paired-end, their mates) moving
// between decode/demux/trim stages.
type ReadChunk struct {
	Seq   uint64
	Reads1 []*fastq.Read
	Reads2 []*fastq.Read // empty for single-ended
	Eof   bool
}

func (c *ReadChunk) SeqNum() uint64 { return c.Seq }
func (c *ReadChunk) IsEOF() bool    { return c.Eof }

// NReads reports how many mate-1 reads the chunk carries.
func (c *ReadChunk) NReads() int { return len(c.Reads1) }

// OutputChunk batches encoded bytes destined for a sink writer.
type OutputChunk struct {
	Seq    uint64
	Bytes  []byte
	NReads int
	Eof    bool
}

func (c *OutputChunk) SeqNum() uint64 { return c.Seq }
func (c *OutputChunk) IsEOF() bool    { return c.Eof }
