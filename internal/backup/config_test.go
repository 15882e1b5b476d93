package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_SafetyBufferBytes(t *testing.T) {
	c := Config{MinFreeGB: 2}
	assert.Equal(t, uint64(2*1024*1024*1024), c.SafetyBufferBytes())

	unset := Config{}
	assert.Equal(t, uint64(1*1024*1024*1024), unset.SafetyBufferBytes())
}
