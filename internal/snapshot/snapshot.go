// Package snapshot models read-only point-in-time subvolume copies
// (spec.md §3) and the C6 operations that create, delete and enumerate
// them.
package snapshot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Location distinguishes which side of a backup a Snapshot lives on.
type Location int

const (
	Source Location = iota
	Destination
)

func (l Location) String() string {
	switch l {
	case Source:
		return "source"
	case Destination:
		return "destination"
	default:
		return fmt.Sprintf("Location(%d)", int(l))
	}
}

// TimestampFormat is the ordering-preserving textual form embedded in
// every snapshot name (spec.md §3): string sort order equals time order.
const TimestampFormat = "20060102T150405Z"

// Snapshot is a read-only point-in-time copy of a subvolume (spec.md §3).
type Snapshot struct {
	Name               string
	Location           Location
	Identifier         uuid.UUID
	ReceivedIdentifier uuid.NullUUID
	// ModTime is the filesystem-reported modification time. Ordering uses
	// it only as a tiebreak behind the embedded timestamp (spec.md §9 open
	// question 3); the freshness check measures snapshot age from it.
	ModTime time.Time
}

// Valid reports the spec.md §3 invariant that a Source snapshot must
// never carry a received identifier.
func (s Snapshot) Valid() error {
	if s.Location == Source && s.ReceivedIdentifier.Valid {
		return fmt.Errorf("snapshot: source snapshot %q has a received identifier, indicating corruption or misuse", s.Name)
	}
	return nil
}

// Path joins dir and Name into the snapshot's on-disk path.
func (s Snapshot) Path(dir string) string {
	return dir + "/" + s.Name
}

// Pair is a (source, destination) pair sharing the same Name (spec.md §3).
type Pair struct {
	Source      Snapshot
	Destination Snapshot
}

// Consistent reports whether this pair satisfies the baseline-for-
// incremental contract: source.Identifier == destination.ReceivedIdentifier.
func (p Pair) Consistent() bool {
	return p.Destination.ReceivedIdentifier.Valid &&
		p.Source.Identifier == p.Destination.ReceivedIdentifier.UUID
}

// Name builds the conventional snapshot name
// "<source-basename>.<UTC-timestamp>" (spec.md §3).
func Name(sourceBasename string, at time.Time) string {
	return sourceBasename + "." + at.UTC().Format(TimestampFormat)
}

// ParseTimestamp extracts the embedded timestamp from a conventionally
// named snapshot, given the known source basename prefix.
func ParseTimestamp(name, sourceBasename string) (time.Time, error) {
	prefix := sourceBasename + "."
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return time.Time{}, fmt.Errorf("snapshot: name %q does not have prefix %q", name, prefix)
	}
	ts := name[len(prefix):]
	t, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot: parse embedded timestamp in %q: %w", name, err)
	}
	return t, nil
}
