// Package check builds a monitoring-plugin-compatible health check
// reporting snapshot freshness for a job, adapted from the teacher's
// client/monitor.SnapCheck (client/monitor/snapshots.go). That check
// filters a ZFS dataset tree for matching filesystems; this one has a
// single source subvolume per job, so the filter/enumeration layer is
// gone and only the age-threshold logic survives.
package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	monitoringplugin "github.com/dsh2dsh/go-monitoringplugin/v2"

	"github.com/aryonoco/btrbak/internal/snapshot"
)

// SnapshotCheck reports whether the newest snapshot on one side is
// within the configured age thresholds.
type SnapshotCheck struct {
	Warn time.Duration
	Crit time.Duration
	Loc  snapshot.Location
}

func NewSnapshotCheck(warn, crit time.Duration, loc snapshot.Location) *SnapshotCheck {
	return &SnapshotCheck{Warn: warn, Crit: crit, Loc: loc}
}

// Run inspects dir for sourceBasename's snapshots and updates resp.
func (c *SnapshotCheck) Run(ctx context.Context, resp *monitoringplugin.Response, dir, sourceBasename string) error {
	latest, err := snapshot.Latest(ctx, dir, sourceBasename, c.Loc)
	if err != nil {
		if errors.Is(err, snapshot.ErrNoSnapshots) {
			resp.UpdateStatus(monitoringplugin.CRITICAL,
				fmt.Sprintf("no %s snapshots found for %q in %s", c.Loc, sourceBasename, dir))
			return nil
		}
		return fmt.Errorf("check: %w", err)
	}

	age := time.Since(latest.ModTime)
	msg := fmt.Sprintf("newest %s snapshot %q is %s old", c.Loc, latest.Name, age.Round(time.Second))
	switch {
	case c.Crit > 0 && age > c.Crit:
		resp.UpdateStatus(monitoringplugin.CRITICAL, msg)
	case c.Warn > 0 && age > c.Warn:
		resp.UpdateStatus(monitoringplugin.WARNING, msg)
	default:
		resp.UpdateStatus(monitoringplugin.OK, msg)
	}
	return nil
}

// RunBoth checks both the source and destination sides, the combined
// health of a single job.
func RunBoth(ctx context.Context, resp *monitoringplugin.Response, warn, crit time.Duration, sourceDir, destDir, sourceBasename string) error {
	src := NewSnapshotCheck(warn, crit, snapshot.Source)
	if err := src.Run(ctx, resp, sourceDir, sourceBasename); err != nil {
		return err
	}
	dst := NewSnapshotCheck(warn, crit, snapshot.Destination)
	return dst.Run(ctx, resp, destDir, sourceBasename)
}
