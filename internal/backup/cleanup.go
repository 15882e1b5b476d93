package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aryonoco/btrbak/internal/snapshot"
)

// Cleanup runs the failure path (spec.md §4.12): probe for the current
// run's snapshot on each side and remove whatever is actually present.
// Probing rather than assuming handles both a fully-created snapshot
// left behind by a later failure and a half-written one left behind by
// create_snapshot itself returning an error. If the current run never
// named a snapshot at all, fall back to scanning sourceDir/destDir for
// the newest matching name and remove that instead — this is what
// reclaims an artifact abandoned by a prior run's abnormal exit, which
// this run's own RunState has no memory of. Cleanup failures are
// attached to the caller's primary error, never escalated above it.
func Cleanup(ctx context.Context, obs Observer, rs *RunState, sourceDir, destDir, sourceBasename string) error {
	if obs == nil {
		obs = NoopObserver{}
	}

	var errs []error
	tryRemove := func(path string) {
		if _, err := os.Stat(path); err != nil {
			return
		}
		if err := snapshot.Delete(ctx, path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			obs.OnWarn(fmt.Sprintf("cleanup: failed removing %s: %v", path, err))
		}
	}

	if rs.SnapshotName != "" {
		tryRemove(filepath.Join(sourceDir, rs.SnapshotName))
		tryRemove(filepath.Join(destDir, rs.SnapshotName))
	} else {
		scanForOrphan(ctx, obs, sourceDir, sourceBasename, snapshot.Source, tryRemove)
		scanForOrphan(ctx, obs, destDir, sourceBasename, snapshot.Destination, tryRemove)
	}

	if len(errs) == 0 {
		return nil
	}
	return &Error{Kind: KindCleanupFailed, Message: "failure cleanup encountered errors", Suppressed: errs}
}

// scanForOrphan looks for the newest snapshot matching sourceBasename in
// dir and hands its path to remove. An ErrNoSnapshots result means
// there's nothing to reclaim, not a cleanup failure; any other
// enumeration error is reported but doesn't block the other side's scan.
func scanForOrphan(ctx context.Context, obs Observer, dir, sourceBasename string, loc snapshot.Location, remove func(string)) {
	latest, err := snapshot.Latest(ctx, dir, sourceBasename, loc)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNoSnapshots) {
			obs.OnWarn(fmt.Sprintf("cleanup: scanning %s for orphans: %v", dir, err))
		}
		return
	}
	remove(latest.Path(dir))
}
