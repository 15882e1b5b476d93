package backup

import "fmt"

// State is a node in the run state machine (spec.md §4.11).
type State int

const (
	StateInitial State = iota
	StateLocked
	StateMounted
	StateSnapshotCreated
	StateReady
	StateApproved
	StateTransferred
	StateVerified
	StateRetained
	StateCleaningUp
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "Initial"
	case StateLocked:
		return "Locked"
	case StateMounted:
		return "Mounted"
	case StateSnapshotCreated:
		return "SnapshotCreated"
	case StateReady:
		return "Ready"
	case StateApproved:
		return "Approved"
	case StateTransferred:
		return "Transferred"
	case StateVerified:
		return "Verified"
	case StateRetained:
		return "Retained"
	case StateCleaningUp:
		return "CleaningUp"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// BackupKind is the tagged variant deciding a full vs. incremental send
// (spec.md §3), decided by SelectParent.
type BackupKind struct {
	Full   bool
	Parent string // snapshot name; empty when Full
}

func (k BackupKind) String() string {
	if k.Full {
		return "Full"
	}
	return fmt.Sprintf("Incremental(%s)", k.Parent)
}

// RunState is the per-invocation state carried by the orchestrator
// (spec.md §3). SnapshotCreated is set only after C6.create succeeds and
// is never cleared by a later failure; it is what tells cleanup that a
// source artifact may exist. BackupSuccessful is set only in Verified.
type RunState struct {
	SnapshotName     string
	SnapshotCreated  bool
	BackupSuccessful bool
	Kind             BackupKind
	State            State
}

func (r *RunState) transition(to State) { r.State = to }
