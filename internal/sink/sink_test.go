package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodecFromExt(t *testing.T) {
	assert.Equal(t, CodecGzip, CodecFromExt("reads.fastq.gz"))
	assert.Equal(t, CodecBzip2, CodecFromExt("reads.fastq.bz2"))
	assert.Equal(t, CodecNone, CodecFromExt("reads.fastq"))
}
