package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorBytes(t *testing.T) {
	assert.Equal(t, uint64(sizeFloorBytes), floorBytes(0))
	assert.Equal(t, uint64(sizeFloorBytes), floorBytes(100))
	assert.Equal(t, uint64(20*1024*1024), floorBytes(20*1024*1024))
}

func TestParseDuOutput(t *testing.T) {
	n, err := parseDuOutput([]byte("1048576\t/mnt/data\n"), "/mnt/data")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1048576), n)

	_, err = parseDuOutput([]byte(""), "/mnt/data")
	assert.Error(t, err)

	_, err = parseDuOutput([]byte("not-a-number\t/mnt/data\n"), "/mnt/data")
	assert.Error(t, err)
}
