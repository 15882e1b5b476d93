package btrfs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aryonoco/btrbak/internal/cmdrunner"
)

// CreateSnapshot creates a read-only snapshot of source at dest
// (spec.md §4.5). The caller is responsible for dest's naming convention.
func CreateSnapshot(ctx context.Context, source, dest string) error {
	_, err := cmdrunner.Run(ctx, cmdrunner.Spec{
		Tool: "btrfs",
		Args: []string{"subvolume", "snapshot", "-r", source, dest},
	})
	if err != nil {
		return fmt.Errorf("btrfs: create snapshot %s -> %s: %w", source, dest, err)
	}
	return nil
}

// DeleteSnapshot deletes the subvolume at path. Callers implement the
// retry policy (spec.md §4.5); this is the single underlying attempt.
func DeleteSnapshot(ctx context.Context, path string) error {
	_, err := cmdrunner.Run(ctx, cmdrunner.Spec{
		Tool: "btrfs",
		Args: []string{"subvolume", "delete", path},
	})
	if err != nil {
		return fmt.Errorf("btrfs: delete snapshot %s: %w", path, err)
	}
	return nil
}

// DeleteSnapshotCommitted is the "committed" delete variant tried from the
// second attempt onward, handling partially-written subvolumes left behind
// by an aborted receive (spec.md §4.5).
func DeleteSnapshotCommitted(ctx context.Context, path string) error {
	_, err := cmdrunner.Run(ctx, cmdrunner.Spec{
		Tool: "btrfs",
		Args: []string{"subvolume", "delete", "--commit-after", path},
	})
	if err != nil {
		return fmt.Errorf("btrfs: delete (committed) snapshot %s: %w", path, err)
	}
	return nil
}

// List enumerates direct children of dir (spec.md §4.5 enumeration).
// Results are basenames, not full paths.
func List(ctx context.Context, dir string) ([]string, error) {
	res, err := cmdrunner.Run(ctx, cmdrunner.Spec{
		Tool: "find",
		Args: []string{dir, "-mindepth", "1", "-maxdepth", "1"},
	})
	if err != nil {
		return nil, fmt.Errorf("btrfs: list %s: %w", dir, err)
	}
	return parseFindOutput(res.Stdout, dir), nil
}

func parseFindOutput(out []byte, dir string) []string {
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if line == "" || line == dir {
			continue
		}
		names = append(names, filepath.Base(line))
	}
	return names
}
