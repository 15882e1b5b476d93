package backup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	NoopObserver
	warns []string
}

func (o *countingObserver) OnWarn(msg string) { o.warns = append(o.warns, msg) }

func TestCleanup_noopWhenNamedArtifactsAbsent(t *testing.T) {
	sourceDir := t.TempDir()
	destDir := t.TempDir()
	obs := &countingObserver{}
	rs := &RunState{SnapshotName: "data.20260729T000000Z"}

	err := Cleanup(context.Background(), obs, rs, sourceDir, destDir, "data")
	require.NoError(t, err)
	assert.Empty(t, obs.warns)
}

func TestCleanup_orphanScanIsQuietWhenNothingToReclaim(t *testing.T) {
	sourceDir := t.TempDir()
	destDir := t.TempDir()
	obs := &countingObserver{}
	rs := &RunState{}

	err := Cleanup(context.Background(), obs, rs, sourceDir, destDir, "data")
	require.NoError(t, err)
	assert.Empty(t, obs.warns)
}
