package btrfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSendArgs(t *testing.T) {
	tcs := []struct {
		name    string
		flags   SendFlags
		include []string
		exclude []string
	}{
		{
			name:    "full send",
			flags:   SendFlags{},
			exclude: []string{"-p", "--no-data"},
		},
		{
			name:    "incremental",
			flags:   SendFlags{Parent: "/mnt/src/.snapshots/data.1"},
			include: []string{"-p", "/mnt/src/.snapshots/data.1"},
		},
		{
			name:    "dry run",
			flags:   SendFlags{Parent: "/mnt/src/.snapshots/data.1", NoData: true},
			include: []string{"--no-data"},
		},
		{
			name:    "chunk and estimate hints",
			flags:   SendFlags{ChunkSizeKiB: 1024, EstimateBytes: 5000},
			include: []string{"-e", "1024", "-s", "5000"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			args := BuildSendArgs("/mnt/src/.snapshots/data.2", tc.flags)
			assert.Equal(t, "send", args[0])
			assert.Equal(t, "/mnt/src/.snapshots/data.2", args[len(args)-1])
			for _, inc := range tc.include {
				assert.Contains(t, args, inc)
			}
			for _, exc := range tc.exclude {
				assert.NotContains(t, args, exc)
			}
		})
	}
}

func TestBuildReceiveArgs(t *testing.T) {
	args := BuildReceiveArgs(RecvFlags{DestDir: "/mnt/dest"})
	assert.Equal(t, []string{"receive", "/mnt/dest"}, args)
}
