package cmdrunner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_rejectsUnlistedTool(t *testing.T) {
	_, err := Run(context.Background(), Spec{Tool: "rm", Args: nil})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestRun_rejectsInvalidArgs(t *testing.T) {
	_, err := Run(context.Background(), Spec{Tool: "btrfs", Args: []string{"x;rm -rf /"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArg)
}

func TestRun_dependencyMissingOrExit(t *testing.T) {
	// lsblk is allow-listed but may legitimately be absent in a minimal
	// test container; accept either outcome, reject anything else.
	_, err := Run(context.Background(), Spec{Tool: "lsblk", Deadline: time.Second})
	if err == nil {
		return
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	assert.ErrorIs(t, err, ErrDependencyMissing)
}
