package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/aryonoco/btrbak/internal/snapshot"
)

// Prune removes snapshots older than retentionDays from both sides,
// always keeping at least keepMinimum per side (spec.md §4.12). A
// retentionDays of 0 disables pruning entirely.
//
// Age is judged by the embedded textual timestamp, not filesystem
// modification time: if the two disagree (clock skew across sides), the
// embedded timestamp wins (spec.md §9 open question 3).
func Prune(ctx context.Context, obs Observer, sourceDir, destDir, sourceBasename string, retentionDays, keepMinimum int) error {
	if obs == nil {
		obs = NoopObserver{}
	}
	if retentionDays <= 0 {
		return nil
	}
	if keepMinimum < 1 {
		keepMinimum = 1
	}
	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	if err := pruneSide(ctx, obs, sourceDir, sourceBasename, snapshot.Source, cutoff, keepMinimum); err != nil {
		return fmt.Errorf("backup: prune source: %w", err)
	}
	if err := pruneSide(ctx, obs, destDir, sourceBasename, snapshot.Destination, cutoff, keepMinimum); err != nil {
		return fmt.Errorf("backup: prune destination: %w", err)
	}
	return nil
}

func pruneSide(ctx context.Context, obs Observer, dir, sourceBasename string, loc snapshot.Location, cutoff time.Time, keepMinimum int) error {
	all, err := snapshot.Enumerate(ctx, dir, sourceBasename, loc)
	if err != nil {
		return err
	}
	if len(all) <= keepMinimum {
		return nil
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	candidates := all[:len(all)-keepMinimum]

	for _, s := range candidates {
		ts, err := snapshot.ParseTimestamp(s.Name, sourceBasename)
		if err != nil {
			ts = s.ModTime
		}
		if ts.After(cutoff) {
			continue
		}
		path := filepath.Join(dir, s.Name)
		if err := snapshot.Delete(ctx, path); err != nil {
			obs.OnWarn(fmt.Sprintf("retention: failed pruning %s: %v", path, err))
			continue
		}
		obs.OnInfo(fmt.Sprintf("retention: pruned %s", path))
	}
	return nil
}
