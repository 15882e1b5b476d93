package backup

import (
	"fmt"
	"sort"
	"strings"
)

// Kind tags every error this package raises (spec.md §3 ErrorKind).
type Kind int

const (
	KindLockUnavailable Kind = iota
	KindMountMissing
	KindSnapshotOperationFailed
	KindInsufficientSpace
	KindDependencyMissing
	KindIdentifierMismatch
	KindCommandFailed
	KindInvalidInput
	KindStreamFailed
	KindTimeout
	KindCleanupFailed
)

func (k Kind) String() string {
	switch k {
	case KindLockUnavailable:
		return "LockUnavailable"
	case KindMountMissing:
		return "MountMissing"
	case KindSnapshotOperationFailed:
		return "SnapshotOperationFailed"
	case KindInsufficientSpace:
		return "InsufficientSpace"
	case KindDependencyMissing:
		return "DependencyMissing"
	case KindIdentifierMismatch:
		return "IdentifierMismatch"
	case KindCommandFailed:
		return "CommandFailed"
	case KindInvalidInput:
		return "InvalidInput"
	case KindStreamFailed:
		return "StreamFailed"
	case KindTimeout:
		return "Timeout"
	case KindCleanupFailed:
		return "CleanupFailed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the tagged error value every component in this package returns
// (spec.md §7). Context carries structured detail (paths, exit codes,
// byte counts); Suppressed carries cleanup failures that occurred while
// handling Cause, without ever replacing it as the primary error.
type Error struct {
	Kind       Kind
	Message    string
	Context    map[string]any
	Cause      error
	Suppressed []error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Context[k])
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	for _, s := range e.Suppressed {
		fmt.Fprintf(&b, " (suppressed during cleanup: %v)", s)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }
