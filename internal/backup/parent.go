package backup

import (
	"context"
	"fmt"

	"github.com/aryonoco/btrbak/internal/snapshot"
)

// SelectParent returns the newest snapshot present on both the source and
// destination side, sharing sourceBasename's naming convention and
// excluding currentName, as the common ancestor for an incremental send
// (spec.md §4.6). No match yields a Full kind.
//
// Ordering is by the embedded textual timestamp (string-sort order), with
// modification time only as a tiebreak -- currentName is excluded
// explicitly because it would otherwise win that ordering trivially.
func SelectParent(ctx context.Context, sourceDir, destDir, sourceBasename, currentName string) (BackupKind, error) {
	sourceSnaps, err := snapshot.Enumerate(ctx, sourceDir, sourceBasename, snapshot.Source)
	if err != nil {
		return BackupKind{}, fmt.Errorf("backup: select parent: %w", err)
	}
	destSnaps, err := snapshot.Enumerate(ctx, destDir, sourceBasename, snapshot.Destination)
	if err != nil {
		return BackupKind{}, fmt.Errorf("backup: select parent: %w", err)
	}

	destByName := make(map[string]snapshot.Snapshot, len(destSnaps))
	for _, d := range destSnaps {
		destByName[d.Name] = d
	}

	var best snapshot.Snapshot
	var found bool
	for _, s := range sourceSnaps {
		if s.Name == currentName {
			continue
		}
		if _, ok := destByName[s.Name]; !ok {
			continue
		}
		if !found || newer(s, best) {
			best = s
			found = true
		}
	}

	if !found {
		return BackupKind{Full: true}, nil
	}
	return BackupKind{Parent: best.Name}, nil
}

// newer reports whether a should be preferred over b: the embedded
// timestamp orders first (string comparison, since the format is
// ordering-preserving), modification time breaks a tie.
func newer(a, b snapshot.Snapshot) bool {
	if a.Name != b.Name {
		return a.Name > b.Name
	}
	return a.ModTime.After(b.ModTime)
}
