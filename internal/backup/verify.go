package backup

import (
	"context"
	"fmt"

	"github.com/aryonoco/btrbak/internal/btrfs"
	"github.com/aryonoco/btrbak/internal/snapshot"
)

// Verify compares the source snapshot's identifier against the
// destination's recorded received-identifier; equality is the only
// success condition (spec.md §4.10).
func Verify(ctx context.Context, sourcePath, destPath string) error {
	src, err := btrfs.Show(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("backup: verify: show source %s: %w", sourcePath, err)
	}
	dst, err := btrfs.Show(ctx, destPath)
	if err != nil {
		return fmt.Errorf("backup: verify: show destination %s: %w", destPath, err)
	}

	if !dst.ReceivedIdentifier.Valid || dst.ReceivedIdentifier.UUID != src.Identifier {
		return &Error{
			Kind:    KindIdentifierMismatch,
			Message: "destination received_identifier does not match source identifier; run a filesystem scrub on the destination",
			Context: map[string]any{
				"source_identifier":    src.Identifier.String(),
				"destination_received": dst.ReceivedIdentifier,
				"destination_path":     destPath,
			},
		}
	}
	return nil
}

// VerifyAncestor confirms the common-ancestor pair is consistent before
// an incremental send begins -- a mismatch here is refuse-to-proceed, not
// a post-facto corruption report (spec.md §4.10).
func VerifyAncestor(pair snapshot.Pair) error {
	if !pair.Consistent() {
		return &Error{
			Kind:    KindIdentifierMismatch,
			Message: "common ancestor pair is inconsistent; refusing incremental send",
			Context: map[string]any{
				"snapshot":             pair.Source.Name,
				"source_identifier":    pair.Source.Identifier.String(),
				"destination_received": pair.Destination.ReceivedIdentifier,
			},
		}
	}
	return nil
}
