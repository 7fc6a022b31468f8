package pipeline

import (
	"fmt"
	"io"

	"trimkit/internal/fastq"
)

// RawReader yields successive tokenized FASTQ records. It returns io.EOF
// once exhausted. The byte-level tokenizer that implements this interface
// is an external collaborator.
type RawReader interface {
	Next() (fastq.RawRecord, error)
}

// Decoder is the external producer that turns one or two RawReaders into
// ReadChunks and feeds them onto a scheduler's decode edge. It is not a
// Stage: it runs in its own goroutine ahead of the scheduler's worker
// pool.
type Decoder struct {
	sched     *Scheduler
	edge      EdgeID
	scheme    fastq.Scheme
	chunkSize int
	mateSep   byte
}

// NewDecoder builds a Decoder that enqueues chunkSize-record batches onto
// sched's decode edge, decoding quality bytes against scheme.
func NewDecoder(sched *Scheduler, edges *EdgeTable, scheme fastq.Scheme, chunkSize int, mateSep byte) *Decoder {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &Decoder{sched: sched, edge: edges.Decode(), scheme: scheme, chunkSize: chunkSize, mateSep: mateSep}
}

// RunSE decodes a single-ended stream from r, chunking and enqueuing until
// r is exhausted or a malformed record is hit.
func (d *Decoder) RunSE(r RawReader) error {
	seq := uint64(0)
	batch := make([]*fastq.Read, 0, d.chunkSize)
	flush := func(eof bool) {
		reads := batch
		batch = make([]*fastq.Read, 0, d.chunkSize)
		d.sched.Enqueue(d.edge, &ReadChunk{Seq: seq, Reads1: reads, Eof: eof})
		seq++
	}
	for {
		raw, err := r.Next()
		if err == io.EOF {
			flush(true)
			return nil
		}
		if err != nil {
			return fmt.Errorf("decoding record %d: %w", seq*uint64(d.chunkSize)+uint64(len(batch)), err)
		}
		read, derr := fastq.Decode(raw, d.scheme)
		if derr != nil {
			return derr
		}
		batch = append(batch, &read)
		if len(batch) == d.chunkSize {
			flush(false)
		}
	}
}

// RunPE decodes a two-file paired-ended stream from r1/r2 in lockstep.
func (d *Decoder) RunPE(r1, r2 RawReader) error {
	seq := uint64(0)
	b1 := make([]*fastq.Read, 0, d.chunkSize)
	b2 := make([]*fastq.Read, 0, d.chunkSize)
	flush := func(eof bool) {
		reads1, reads2 := b1, b2
		b1 = make([]*fastq.Read, 0, d.chunkSize)
		b2 = make([]*fastq.Read, 0, d.chunkSize)
		d.sched.Enqueue(d.edge, &ReadChunk{Seq: seq, Reads1: reads1, Reads2: reads2, Eof: eof})
		seq++
	}
	for {
		raw1, err1 := r1.Next()
		raw2, err2 := r2.Next()
		if err1 == io.EOF || err2 == io.EOF {
			if err1 != err2 {
				return fmt.Errorf("mate files have differing record counts: %w", err1)
			}
			flush(true)
			return nil
		}
		if err1 != nil {
			return err1
		}
		if err2 != nil {
			return err2
		}
		read1, derr := fastq.Decode(raw1, d.scheme)
		if derr != nil {
			return derr
		}
		read2, derr := fastq.Decode(raw2, d.scheme)
		if derr != nil {
			return derr
		}
		b1 = append(b1, &read1)
		b2 = append(b2, &read2)
		if len(b1) == d.chunkSize {
			flush(false)
		}
	}
}

// RunInterleaved decodes a single alternating-mate stream from r.
func (d *Decoder) RunInterleaved(r RawReader) error {
	splitter := fastq.NewInterleavedSplitter(d.mateSep)
	seq := uint64(0)
	b1 := make([]*fastq.Read, 0, d.chunkSize)
	b2 := make([]*fastq.Read, 0, d.chunkSize)
	flush := func(eof bool) {
		reads1, reads2 := b1, b2
		b1 = make([]*fastq.Read, 0, d.chunkSize)
		b2 = make([]*fastq.Read, 0, d.chunkSize)
		d.sched.Enqueue(d.edge, &ReadChunk{Seq: seq, Reads1: reads1, Reads2: reads2, Eof: eof})
		seq++
	}
	for {
		raw, err := r.Next()
		if err == io.EOF {
			if ferr := splitter.Flush(); ferr != nil {
				return ferr
			}
			flush(true)
			return nil
		}
		if err != nil {
			return err
		}
		read, derr := fastq.Decode(raw, d.scheme)
		if derr != nil {
			return derr
		}
		r1, r2, ok, serr := splitter.Push(&read)
		if serr != nil {
			return serr
		}
		if !ok {
			continue
		}
		b1 = append(b1, r1)
		b2 = append(b2, r2)
		if len(b1) == d.chunkSize {
			flush(false)
		}
	}
}
