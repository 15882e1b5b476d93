package backup

import (
	"context"
	"time"

	"github.com/aryonoco/btrbak/internal/btrfs"
)

const (
	spaceCheckRetries     = 2
	spaceCheckPause       = 3 * time.Second
	defaultSafetyBufferGB = 1.0
)

// CheckSpace queries the destination's free space and fails if it falls
// short of required plus a safety buffer (spec.md §4.8). Transient
// failures of the `btrfs filesystem usage` query are retried up to
// spaceCheckRetries times.
func CheckSpace(ctx context.Context, destMount string, required uint64, safetyBufferBytes uint64) error {
	var lastErr error
	for attempt := 0; attempt <= spaceCheckRetries; attempt++ {
		free, err := btrfs.Usage(ctx, destMount)
		if err == nil {
			needed := required + safetyBufferBytes
			if free.FreeBytes < needed {
				return &Error{
					Kind:    KindInsufficientSpace,
					Message: "destination free space below required + safety buffer",
					Context: map[string]any{
						"required_bytes":  needed,
						"available_bytes": free.FreeBytes,
						"destination":     destMount,
					},
				}
			}
			return nil
		}
		lastErr = err

		if attempt == spaceCheckRetries {
			break
		}
		select {
		case <-ctx.Done():
			return &Error{Kind: KindTimeout, Message: "space check cancelled", Cause: ctx.Err(), Context: map[string]any{"destination": destMount}}
		case <-time.After(spaceCheckPause):
		}
	}
	return &Error{
		Kind:    KindCommandFailed,
		Message: "querying destination free space failed after retries",
		Cause:   lastErr,
		Context: map[string]any{"destination": destMount},
	}
}
