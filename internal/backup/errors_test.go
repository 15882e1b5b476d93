package backup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("exit 1")
	e := &Error{Kind: KindCommandFailed, Message: "running btrfs send", Cause: cause, Context: map[string]any{"path": "/mnt/x"}}

	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "CommandFailed")
	assert.Contains(t, e.Error(), "running btrfs send")
	assert.Contains(t, e.Error(), "/mnt/x")
}

func TestError_SuppressedDoesNotReplacePrimary(t *testing.T) {
	primary := &Error{Kind: KindIdentifierMismatch, Message: "mismatch"}
	primary.Suppressed = append(primary.Suppressed, errors.New("cleanup also failed"))

	assert.Equal(t, KindIdentifierMismatch, primary.Kind)
	assert.Contains(t, primary.Error(), "mismatch")
	assert.Contains(t, primary.Error(), "cleanup also failed")
}
