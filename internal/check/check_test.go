package check

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	monitoringplugin "github.com/dsh2dsh/go-monitoringplugin/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryonoco/btrbak/internal/snapshot"
)

func TestSnapshotCheck_Run_noSnapshotsIsCritical(t *testing.T) {
	dir := t.TempDir()
	resp := monitoringplugin.NewResponse("check")

	c := NewSnapshotCheck(time.Hour, 2*time.Hour, snapshot.Source)
	err := c.Run(context.Background(), resp, dir, "data")
	require.NoError(t, err)
	assert.Equal(t, monitoringplugin.CRITICAL, resp.GetStatusCode())
}

func TestSnapshotCheck_Run_realSubvolumeLookupFailurePropagates(t *testing.T) {
	// A plain directory with a conventionally-matching name isn't a real
	// btrfs subvolume, so the underlying show call must fail; Run must
	// surface that rather than reporting a false OK/CRITICAL.
	dir := t.TempDir()
	name := snapshot.Name("data", time.Now())
	require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o755))

	resp := monitoringplugin.NewResponse("check")
	c := NewSnapshotCheck(time.Hour, 2*time.Hour, snapshot.Source)
	err := c.Run(context.Background(), resp, dir, "data")
	require.Error(t, err)
}

func TestSnapshotCheck_Run_zeroThresholdsPathWithNoSnapshots(t *testing.T) {
	dir := t.TempDir()
	resp := monitoringplugin.NewResponse("check")
	c := NewSnapshotCheck(0, 0, snapshot.Destination)
	err := c.Run(context.Background(), resp, dir, "data")
	require.NoError(t, err)
	assert.Equal(t, monitoringplugin.CRITICAL, resp.GetStatusCode())
}
