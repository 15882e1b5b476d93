package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aryonoco/btrbak/internal/btrfs"
	"github.com/aryonoco/btrbak/internal/cmdrunner"
)

const (
	sizeFloorBytes    = 10 * 1024 * 1024
	dryRunCapBytes    = 10 * 1024 * 1024
	incrementalMargin = 1.05
	fallbackMargin    = 1.05
	fallbackFraction  = 0.10
)

// EstimateSize returns a byte estimate for kind, used only to refuse
// doomed runs -- never a commitment (spec.md §4.7, §3 SizeEstimate).
//
// currentPath is the just-created current snapshot's path; for
// incremental kinds, kind.Parent is resolved against sourceSnapshotDir.
func EstimateSize(ctx context.Context, kind BackupKind, sourceSnapshotDir, currentPath string) (uint64, error) {
	if kind.Full {
		return estimateFull(ctx, currentPath)
	}
	return estimateIncremental(ctx, filepath.Join(sourceSnapshotDir, kind.Parent), currentPath)
}

func estimateFull(ctx context.Context, currentPath string) (uint64, error) {
	info, err := btrfs.Show(ctx, currentPath)
	if err == nil && info.TotalBytes > 0 {
		return floorBytes(info.TotalBytes), nil
	}

	used, derr := diskUsage(ctx, currentPath)
	if derr != nil {
		return 0, fmt.Errorf("backup: estimate full size of %s: show failed (%v) and du fallback failed: %w", currentPath, err, derr)
	}
	return floorBytes(used), nil
}

func estimateIncremental(ctx context.Context, parentPath, currentPath string) (uint64, error) {
	n, err := btrfs.DryRunDeltaBytes(ctx, parentPath, currentPath, dryRunCapBytes)
	if err == nil {
		return floorBytes(uint64(float64(n) * incrementalMargin)), nil
	}

	// The dry run itself failed outright (not merely capped); fall back to
	// a fraction of the source's total size (spec.md §4.7).
	info, showErr := btrfs.Show(ctx, currentPath)
	if showErr != nil || info.TotalBytes == 0 {
		used, derr := diskUsage(ctx, currentPath)
		if derr != nil {
			return 0, fmt.Errorf("backup: estimate incremental size %s -> %s: dry run failed (%v), fallback sizing also failed: %w", parentPath, currentPath, err, derr)
		}
		return floorBytes(uint64(float64(used) * fallbackFraction * fallbackMargin)), nil
	}
	return floorBytes(uint64(float64(info.TotalBytes) * fallbackFraction * fallbackMargin)), nil
}

func floorBytes(n uint64) uint64 {
	if n < sizeFloorBytes {
		return sizeFloorBytes
	}
	return n
}

// diskUsage shells out to `du -sb <path>` as the fallback when `btrfs
// subvolume show` can't be parsed for Total bytes.
func diskUsage(ctx context.Context, path string) (uint64, error) {
	res, err := cmdrunner.Run(ctx, cmdrunner.Spec{Tool: "du", Args: []string{"-sb", path}})
	if err != nil {
		return 0, err
	}
	return parseDuOutput(res.Stdout, path)
}

func parseDuOutput(out []byte, path string) (uint64, error) {
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return 0, fmt.Errorf("backup: empty du output for %s", path)
	}
	n, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("backup: parse du output %q for %s: %w", fields[0], path, err)
	}
	return n, nil
}
