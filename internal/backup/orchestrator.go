// Package backup implements the backup coordination engine: locking,
// snapshot creation, parent selection, space estimation, the transfer
// pipeline, verification, cleanup and retention (spec.md §4).
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aryonoco/btrbak/internal/btrfs"
	"github.com/aryonoco/btrbak/internal/lockutil"
	"github.com/aryonoco/btrbak/internal/mountutil"
	"github.com/aryonoco/btrbak/internal/snapshot"
)

const sendChunkSizeKiB = 1024

// Run sequences one full backup invocation (spec.md §4.13):
// acquire_lock -> verify_mounts(source) -> verify_mounts(dest) ->
// create_snapshot -> find_parent -> estimate_size -> check_space ->
// run_pipeline -> verify_identifiers -> prune_retention -> release_lock.
// Failure at any step from create_snapshot on drives the state machine to
// cleanup; lock and mount failures return without cleanup, since nothing
// has been created yet.
func Run(ctx context.Context, cfg Config, obs Observer) error {
	if obs == nil {
		obs = NoopObserver{}
	}
	rs := &RunState{}

	guard, err := lockutil.Acquire(ctx, cfg.LockFile)
	if err != nil {
		return &Error{Kind: KindLockUnavailable, Message: "acquiring run lock", Cause: err, Context: map[string]any{"lock_file": cfg.LockFile}}
	}
	rs.transition(StateLocked)
	defer func() {
		if rerr := guard.Release(); rerr != nil {
			obs.OnWarn(fmt.Sprintf("releasing lock: %v", rerr))
		}
	}()

	if err := mountutil.Check(ctx, cfg.SourceVolume); err != nil {
		return &Error{Kind: KindMountMissing, Message: "source is not mounted", Cause: err, Context: map[string]any{"path": cfg.SourceVolume}}
	}
	if err := mountutil.Check(ctx, cfg.DestinationMount); err != nil {
		return &Error{Kind: KindMountMissing, Message: "destination is not mounted", Cause: err, Context: map[string]any{"path": cfg.DestinationMount}}
	}
	rs.transition(StateMounted)

	sourceBasename := filepath.Base(cfg.SourceVolume)
	destSnapDir := cfg.DestinationMount

	now := time.Now()
	rs.SnapshotName = snapshot.Name(sourceBasename, now)

	snap, err := snapshot.Create(ctx, cfg.SourceVolume, cfg.SnapshotDir, sourceBasename, now, snapshot.Source)
	if err != nil {
		return fail(ctx, obs, rs, cfg, destSnapDir, &Error{Kind: KindSnapshotOperationFailed, Message: "creating source snapshot", Cause: err, Context: map[string]any{"name": rs.SnapshotName}})
	}
	rs.SnapshotName = snap.Name
	rs.SnapshotCreated = true
	rs.transition(StateSnapshotCreated)
	obs.OnInfo(fmt.Sprintf("created source snapshot %s", snap.Name))

	currentPath := filepath.Join(cfg.SnapshotDir, rs.SnapshotName)

	kind, err := SelectParent(ctx, cfg.SnapshotDir, destSnapDir, sourceBasename, rs.SnapshotName)
	if err != nil {
		return fail(ctx, obs, rs, cfg, destSnapDir, err)
	}
	rs.Kind = kind
	rs.transition(StateReady)

	sendFlags := btrfs.SendFlags{ChunkSizeKiB: sendChunkSizeKiB}
	if kind.Full {
		obs.OnInfo("no common ancestor found; taking a full backup")
	} else {
		pair, perr := loadPair(ctx, cfg.SnapshotDir, destSnapDir, kind.Parent)
		if perr != nil {
			return fail(ctx, obs, rs, cfg, destSnapDir, perr)
		}
		if verr := VerifyAncestor(pair); verr != nil {
			return fail(ctx, obs, rs, cfg, destSnapDir, verr)
		}
		sendFlags.Parent = filepath.Join(cfg.SnapshotDir, kind.Parent)
		obs.OnInfo(fmt.Sprintf("incremental backup from parent %s", kind.Parent))
	}

	estimated, err := EstimateSize(ctx, kind, cfg.SnapshotDir, currentPath)
	if err != nil {
		return fail(ctx, obs, rs, cfg, destSnapDir, err)
	}
	sendFlags.EstimateBytes = estimated

	if err := CheckSpace(ctx, cfg.DestinationMount, estimated, cfg.SafetyBufferBytes()); err != nil {
		return fail(ctx, obs, rs, cfg, destSnapDir, err)
	}
	rs.transition(StateApproved)

	if err := RunPipeline(ctx, obs, currentPath, destSnapDir, sendFlags); err != nil {
		return fail(ctx, obs, rs, cfg, destSnapDir, err)
	}
	rs.transition(StateTransferred)

	destPath := filepath.Join(destSnapDir, rs.SnapshotName)
	if err := Verify(ctx, currentPath, destPath); err != nil {
		return fail(ctx, obs, rs, cfg, destSnapDir, err)
	}
	rs.BackupSuccessful = true
	rs.transition(StateVerified)
	obs.OnInfo(fmt.Sprintf("verified %s", rs.SnapshotName))

	if err := Prune(ctx, obs, cfg.SnapshotDir, destSnapDir, sourceBasename, cfg.RetentionDays, cfg.KeepMinimum); err != nil {
		// Retention failure never un-verifies a successful backup.
		obs.OnWarn(fmt.Sprintf("retention: %v", err))
	}
	rs.transition(StateRetained)
	return nil
}

// loadPair fetches the source and destination show-output for a common
// ancestor name, for the pre-send consistency check (spec.md §4.10).
func loadPair(ctx context.Context, sourceDir, destDir, name string) (snapshot.Pair, error) {
	srcInfo, err := btrfs.Show(ctx, filepath.Join(sourceDir, name))
	if err != nil {
		return snapshot.Pair{}, fmt.Errorf("backup: load ancestor pair: source side: %w", err)
	}
	dstInfo, err := btrfs.Show(ctx, filepath.Join(destDir, name))
	if err != nil {
		return snapshot.Pair{}, fmt.Errorf("backup: load ancestor pair: destination side: %w", err)
	}
	return snapshot.Pair{
		Source:      snapshot.Snapshot{Name: name, Location: snapshot.Source, Identifier: srcInfo.Identifier},
		Destination: snapshot.Snapshot{Name: name, Location: snapshot.Destination, Identifier: dstInfo.Identifier, ReceivedIdentifier: dstInfo.ReceivedIdentifier},
	}, nil
}

// fail drives the state machine into CleaningUp, runs failure cleanup,
// attaches any cleanup error as suppressed context, and returns the
// original error unchanged (spec.md §7: cleanup errors never replace the
// primary error).
func fail(ctx context.Context, obs Observer, rs *RunState, cfg Config, destSnapDir string, primary error) error {
	rs.transition(StateCleaningUp)
	sourceBasename := filepath.Base(cfg.SourceVolume)
	if cerr := Cleanup(ctx, obs, rs, cfg.SnapshotDir, destSnapDir, sourceBasename); cerr != nil {
		if be, ok := primary.(*Error); ok {
			be.Suppressed = append(be.Suppressed, cerr)
		} else {
			obs.OnWarn(fmt.Sprintf("cleanup error alongside %v: %v", primary, cerr))
		}
	}
	rs.transition(StateFailed)
	obs.OnError(primary)
	return primary
}
