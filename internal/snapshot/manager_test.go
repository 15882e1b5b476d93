package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aryonoco/btrbak/internal/cmdrunner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest_noMatchingSnapshotsIsNoSnapshots(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated-file"), nil, 0o644))

	_, err := Latest(context.Background(), dir, "data", Source)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSnapshots)
}

func TestEnumerate_skipsNamesNotMatchingConvention(t *testing.T) {
	// None of these match "data.<timestamp>", so Enumerate never needs to
	// shell out to `btrfs subvolume show`; it still lists dir with `find`,
	// which must be present.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.20260729T030405Z"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.garbage"), nil, 0o644))

	got, err := Enumerate(context.Background(), dir, "data", Source)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnumerate_matchingNameRequiresRealSubvolume(t *testing.T) {
	// A plain file with a conventionally-matching name isn't a real btrfs
	// subvolume, so `btrfs subvolume show` must fail. Either the tool is
	// missing from this environment or it exits non-zero; both are
	// acceptable, but the failure must not be silently swallowed.
	dir := t.TempDir()
	path := filepath.Join(dir, "data.20260729T030405Z")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := Enumerate(context.Background(), dir, "data", Source)
	require.Error(t, err)

	var exitErr *cmdrunner.ExitError
	if errors.As(err, &exitErr) {
		return
	}
	assert.ErrorIs(t, err, cmdrunner.ErrDependencyMissing)
}

func TestDelete_nonexistentPathFails(t *testing.T) {
	dir := t.TempDir()
	err := Delete(context.Background(), filepath.Join(dir, "does-not-exist"))
	require.Error(t, err)
}
