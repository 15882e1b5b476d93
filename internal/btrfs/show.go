package btrfs

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/aryonoco/btrbak/internal/cmdrunner"
	"github.com/aryonoco/btrbak/internal/sizeutil"
)

// ShowInfo is the parsed result of `btrfs subvolume show`, recognizing
// the UUID, Received UUID and Total bytes fields (spec.md §4.2).
type ShowInfo struct {
	// Identifier is the subvolume's own UUID, from the first "UUID:" line.
	Identifier uuid.UUID
	// ReceivedIdentifier is set only if a "Received UUID:" line is
	// present and not the placeholder "-".
	ReceivedIdentifier uuid.NullUUID
	// TotalBytes is the "Total bytes" field, when present.
	TotalBytes uint64
}

// splitKeyLine splits "<key>: <value>" at the first colon and trims
// surrounding whitespace from both parts, mirroring spec.md §4.2's "key
// followed by colon, then value up to end-of-line" anchor.
func splitKeyLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}

// ParseShowOutput parses the textual output of `btrfs subvolume show
// <path>`. The UUID pattern must match the first "UUID:" occurrence and
// the Received UUID pattern must match only "Received UUID:" — conflating
// the two would make verification (spec.md §4.10) tautological.
func ParseShowOutput(out []byte) (ShowInfo, error) {
	var info ShowInfo
	var sawIdentifier bool

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := splitKeyLine(sc.Text())
		if !ok {
			continue
		}
		switch key {
		case "Received UUID":
			if value != "" && value != "-" {
				id, err := uuid.Parse(value)
				if err != nil {
					return ShowInfo{}, fmt.Errorf("btrfs: parse Received UUID %q: %w", value, err)
				}
				info.ReceivedIdentifier = uuid.NullUUID{UUID: id, Valid: true}
			}
		case "UUID":
			if sawIdentifier {
				continue // only the first UUID: line is the subvolume's own identifier
			}
			id, err := uuid.Parse(value)
			if err != nil {
				return ShowInfo{}, fmt.Errorf("btrfs: parse UUID %q: %w", value, err)
			}
			info.Identifier = id
			sawIdentifier = true
		case "Total bytes":
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return ShowInfo{}, fmt.Errorf("btrfs: parse Total bytes %q: %w", value, err)
			}
			info.TotalBytes = n
		}
	}
	if err := sc.Err(); err != nil {
		return ShowInfo{}, fmt.Errorf("btrfs: scan show output: %w", err)
	}
	if !sawIdentifier {
		return ShowInfo{}, fmt.Errorf("btrfs: no UUID field found in show output")
	}
	return info, nil
}

// Show runs `btrfs subvolume show <path>` and parses the result.
func Show(ctx context.Context, path string) (ShowInfo, error) {
	res, err := cmdrunner.Run(ctx, cmdrunner.Spec{
		Tool: "btrfs",
		Args: []string{"subvolume", "show", path},
	})
	if err != nil {
		return ShowInfo{}, fmt.Errorf("btrfs: subvolume show %s: %w", path, err)
	}
	return ParseShowOutput(res.Stdout)
}

// FreeEstimate is the result of parsing `btrfs filesystem usage`'s
// "Free (estimated):" line (spec.md §4.8).
type FreeEstimate struct {
	FreeBytes uint64
}

func ParseUsageOutput(out []byte) (FreeEstimate, error) {
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := splitKeyLine(sc.Text())
		if !ok || key != "Free (estimated)" {
			continue
		}
		// value may carry a trailing "(min: ...)" annotation; only the
		// first whitespace-delimited token is the size.
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return FreeEstimate{}, fmt.Errorf("btrfs: empty Free (estimated) value")
		}
		n, err := sizeutil.ParseBytes(fields[0])
		if err != nil {
			return FreeEstimate{}, fmt.Errorf("btrfs: parse Free (estimated) %q: %w", fields[0], err)
		}
		return FreeEstimate{FreeBytes: n}, nil
	}
	if err := sc.Err(); err != nil {
		return FreeEstimate{}, fmt.Errorf("btrfs: scan usage output: %w", err)
	}
	return FreeEstimate{}, fmt.Errorf("btrfs: no Free (estimated) field found in usage output")
}

// Usage runs `btrfs filesystem usage <path>` and parses the free space.
func Usage(ctx context.Context, path string) (FreeEstimate, error) {
	res, err := cmdrunner.Run(ctx, cmdrunner.Spec{
		Tool: "btrfs",
		Args: []string{"filesystem", "usage", path},
	})
	if err != nil {
		return FreeEstimate{}, fmt.Errorf("btrfs: filesystem usage %s: %w", path, err)
	}
	return ParseUsageOutput(res.Stdout)
}
