// Package mountutil confirms a path is a mount point (spec.md §4.4). It
// never mounts or unmounts anything; that is orchestrator policy.
package mountutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/aryonoco/btrbak/internal/cmdrunner"
)

// ErrNotMounted is returned when path is not a mount point.
var ErrNotMounted = errors.New("mountutil: path is not a mount point")

// Check runs `mountpoint -q <path>` and returns ErrNotMounted if it
// reports the path isn't a mount point.
func Check(ctx context.Context, path string) error {
	_, err := cmdrunner.Run(ctx, cmdrunner.Spec{
		Tool: "mountpoint",
		Args: []string{"-q", path},
	})
	var exitErr *cmdrunner.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return fmt.Errorf("%w: %s", ErrNotMounted, path)
	default:
		return fmt.Errorf("mountutil: checking %s: %w", path, err)
	}
}
