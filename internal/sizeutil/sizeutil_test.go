package sizeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes(t *testing.T) {
	tcs := []struct {
		in  string
		exp uint64
	}{
		{"1024", 1024},
		{"1KiB", KiB},
		{"12.5GB", 12_500_000_000},
		{"1TiB", TiB},
		{"0", 0},
		{"  5 MiB  ", 5 * MiB},
	}
	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseBytes(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, got)
		})
	}
}

func TestParseBytes_errors(t *testing.T) {
	for _, in := range []string{"", "abc", "-5GB", "5XB"} {
		_, err := ParseBytes(in)
		assert.Error(t, err, in)
	}
}

func TestFormatBytes(t *testing.T) {
	tcs := []struct {
		in  uint64
		exp string
	}{
		{512, "512B"},
		{2 * KiB, "2.00KiB"},
		{3 * MiB, "3.00MiB"},
		{GiB + GiB/2, "1.50GiB"},
	}
	for _, tc := range tcs {
		assert.Equal(t, tc.exp, FormatBytes(tc.in))
	}
}
