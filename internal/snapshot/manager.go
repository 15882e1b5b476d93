package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aryonoco/btrbak/internal/btrfs"
)

// deleteRetries is the number of delete attempts before giving up
// (spec.md §4.5): a plain delete, then up to two more attempts with the
// second switching to the committed variant for a partially-written
// subvolume left behind by an aborted receive.
const deleteRetries = 3

// deletePause is the pause between delete attempts.
const deletePause = 1 * time.Second

// Create snapshots source into dir under the conventional name and
// returns the resulting Snapshot, identified via a subsequent `btrfs
// subvolume show` (spec.md §4.5).
func Create(ctx context.Context, source, dir, sourceBasename string, at time.Time, loc Location) (Snapshot, error) {
	name := Name(sourceBasename, at)
	dest := dir + "/" + name

	if err := btrfs.CreateSnapshot(ctx, source, dest); err != nil {
		return Snapshot{}, err
	}

	info, err := btrfs.Show(ctx, dest)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: show freshly created %s: %w", dest, err)
	}

	st, err := os.Stat(dest)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: stat freshly created %s: %w", dest, err)
	}

	return Snapshot{
		Name:               name,
		Location:           loc,
		Identifier:         info.Identifier,
		ReceivedIdentifier: info.ReceivedIdentifier,
		ModTime:            st.ModTime(),
	}, nil
}

// Delete removes the subvolume at path, retrying up to deleteRetries
// times with deletePause between attempts. The second attempt onward
// uses the committed delete variant, since a failed first attempt often
// means btrfs has not yet flushed the subvolume's deletion metadata
// (spec.md §4.5).
func Delete(ctx context.Context, path string) error {
	var lastErr error
	for attempt := 1; attempt <= deleteRetries; attempt++ {
		var err error
		if attempt == 1 {
			err = btrfs.DeleteSnapshot(ctx, path)
		} else {
			err = btrfs.DeleteSnapshotCommitted(ctx, path)
		}
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == deleteRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("snapshot: delete %s: %w", path, ctx.Err())
		case <-time.After(deletePause):
		}
	}
	return fmt.Errorf("snapshot: delete %s failed after %d attempts: %w", path, deleteRetries, lastErr)
}

// Enumerate lists every snapshot under dir matching the conventional
// name for sourceBasename, identifying each with `btrfs subvolume show`
// (spec.md §4.5). Results are returned in the order `find` reports them;
// callers that need chronological order should sort by Name, which is
// string-sort-equals-time-order by construction.
func Enumerate(ctx context.Context, dir, sourceBasename string, loc Location) ([]Snapshot, error) {
	names, err := btrfs.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: enumerate %s: %w", dir, err)
	}

	var out []Snapshot
	for _, name := range names {
		if _, err := ParseTimestamp(name, sourceBasename); err != nil {
			continue
		}

		path := dir + "/" + name
		info, err := btrfs.Show(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("snapshot: show %s: %w", path, err)
		}
		st, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("snapshot: stat %s: %w", path, err)
		}

		s := Snapshot{
			Name:               name,
			Location:           loc,
			Identifier:         info.Identifier,
			ReceivedIdentifier: info.ReceivedIdentifier,
			ModTime:            st.ModTime(),
		}
		if err := s.Valid(); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ErrNoSnapshots is returned by Latest when dir contains none matching
// sourceBasename's naming convention.
var ErrNoSnapshots = errors.New("snapshot: no snapshots found")

// Latest returns the chronologically last snapshot in dir, relying on
// the embedded timestamp's string-sort ordering.
func Latest(ctx context.Context, dir, sourceBasename string, loc Location) (Snapshot, error) {
	all, err := Enumerate(ctx, dir, sourceBasename, loc)
	if err != nil {
		return Snapshot{}, err
	}
	if len(all) == 0 {
		return Snapshot{}, fmt.Errorf("%w: in %s", ErrNoSnapshots, dir)
	}

	best := all[0]
	for _, s := range all[1:] {
		if s.Name > best.Name {
			best = s
		}
	}
	return best, nil
}
