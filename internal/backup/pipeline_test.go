package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLatestByteCount(t *testing.T) {
	assert.Equal(t, uint64(0), parseLatestByteCount(nil))
	assert.Equal(t, uint64(4096), parseLatestByteCount([]byte("4096\n")))
	// pv progress overwrites the same line with \r; only the last count
	// should win.
	assert.Equal(t, uint64(8192), parseLatestByteCount([]byte("4096\r8192\r")))
}

func TestEstimateETA(t *testing.T) {
	assert.Equal(t, time.Duration(0), estimateETA(0, 100, 0))
	assert.Equal(t, time.Duration(0), estimateETA(100, 100, 10))
	eta := estimateETA(0, 100, 10)
	assert.Equal(t, 10*time.Second, eta)
}

func TestStderrNoise(t *testing.T) {
	assert.True(t, stderrNoise.MatchString("write data offset=1234 len=4096"))
	assert.False(t, stderrNoise.MatchString("ERROR: cannot find parent subvolume"))
}
