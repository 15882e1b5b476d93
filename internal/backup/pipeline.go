package backup

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/aryonoco/btrbak/internal/btrfs"
	"github.com/aryonoco/btrbak/internal/cmdrunner"
)

const (
	pipelineStageDeadline = 300 * time.Second
	meterIntervalSeconds  = 1
	throughputWindow      = 8 // samples kept for ETA smoothing
)

// stderrNoise matches the informational receive-side lines that spec.md
// §4.9 says to drop before they reach the observer.
var stderrNoise = regexp.MustCompile(`write .* offset=`)

// RunPipeline runs send | meter | receive with per-stage status
// reconciliation (spec.md §4.9). sourcePath is the just-created current
// snapshot; destDir is the destination's snapshot directory.
func RunPipeline(ctx context.Context, obs Observer, sourcePath, destDir string, flags btrfs.SendFlags) error {
	if obs == nil {
		obs = NoopObserver{}
	}

	sendProc, err := btrfs.StartSend(ctx, sourcePath, flags)
	if err != nil {
		return &Error{Kind: KindStreamFailed, Message: "starting send stage", Cause: err, Context: map[string]any{"stage": "send"}}
	}

	meterProc, err := cmdrunner.StartPiped(ctx, "pv",
		[]string{"-f", "-b", "-i", strconv.Itoa(meterIntervalSeconds)}, sendProc.Stdout())
	if err != nil {
		_ = sendProc.Terminate()
		return &Error{Kind: KindStreamFailed, Message: "starting meter stage", Cause: err, Context: map[string]any{"stage": "meter"}}
	}

	recvProc, err := btrfs.StartReceive(ctx, btrfs.RecvFlags{DestDir: destDir}, meterProc.Stdout())
	if err != nil {
		_ = sendProc.Terminate()
		_ = meterProc.Terminate()
		return &Error{Kind: KindStreamFailed, Message: "starting receive stage", Cause: err, Context: map[string]any{"stage": "receive"}}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		monitorMeter(gctx, meterProc, obs, flags.EstimateBytes)
		return nil
	})
	g.Go(func() error {
		monitorReceiveStderr(gctx, recvProc, obs)
		return nil
	})

	errA := waitStage(ctx, "send", sendProc)
	errB := waitStage(ctx, "meter", meterProc)
	errC := waitStage(ctx, "receive", recvProc)
	_ = g.Wait()

	// First failing stage in pipeline order wins: a downstream failure
	// can cause an upstream tool to see a broken pipe, which is a
	// misleading error to surface (spec.md §4.9).
	switch {
	case errA != nil:
		return streamFailure("send", errA, sendProc.Stderr())
	case errB != nil:
		return streamFailure("meter", errB, meterProc.Stderr())
	case errC != nil:
		return streamFailure("receive", errC, recvProc.Stderr())
	}
	return nil
}

func streamFailure(stage string, cause error, stderr []byte) *Error {
	return &Error{
		Kind:    KindStreamFailed,
		Message: fmt.Sprintf("pipeline stage %s failed", stage),
		Cause:   cause,
		Context: map[string]any{
			"stage":  stage,
			"stderr": truncate(stderr, 4096),
		},
	}
}

func truncate(b []byte, max int) string {
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}

// waitStage waits for proc with a per-stage deadline, terminating the
// process and returning a Timeout error if it is exceeded.
func waitStage(ctx context.Context, name string, proc *cmdrunner.Process) error {
	done := make(chan error, 1)
	go func() { done <- proc.Wait() }()

	timer := time.NewTimer(pipelineStageDeadline)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		_ = proc.Terminate()
		<-done
		return &Error{Kind: KindTimeout, Message: fmt.Sprintf("stage %s exceeded deadline", name),
			Context: map[string]any{"stage": name, "deadline": pipelineStageDeadline.String()}}
	case <-ctx.Done():
		_ = proc.Terminate()
		<-done
		return fmt.Errorf("pipeline: %s cancelled: %w", name, ctx.Err())
	}
}

// monitorMeter parses pv's stderr for cumulative byte counts and reports
// smoothed progress to the observer. Parsing is lossy by design (spec.md
// §9) -- the authoritative bytes-transferred is not tracked by the core.
func monitorMeter(ctx context.Context, proc *cmdrunner.Process, obs Observer, totalEstimated uint64) {
	start := time.Now()
	var samples []float64
	var lastBytes uint64
	var lastSampleAt time.Time

	ticker := time.NewTicker(meterIntervalSeconds * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			cur := parseLatestByteCount(proc.Stderr())
			if cur == 0 {
				continue
			}
			elapsed := now.Sub(start)
			var rate float64
			if !lastSampleAt.IsZero() {
				dt := now.Sub(lastSampleAt).Seconds()
				if dt > 0 {
					rate = float64(cur-lastBytes) / dt
					samples = append(samples, rate)
					if len(samples) > throughputWindow {
						samples = samples[len(samples)-throughputWindow:]
					}
				}
			}
			lastBytes = cur
			lastSampleAt = now

			smoothed, _ := stats.Mean(samples)
			eta := estimateETA(cur, totalEstimated, smoothed)
			obs.OnProgress(cur, totalEstimated, smoothed, elapsed, eta)
		}
	}
}

func estimateETA(transferred, total uint64, throughputBps float64) time.Duration {
	if throughputBps <= 0 || total <= transferred {
		return 0
	}
	remaining := float64(total - transferred)
	return time.Duration(remaining/throughputBps) * time.Second
}

// parseLatestByteCount reads pv's `-b` stderr stream (one cumulative byte
// count per interval, progress lines separated by carriage returns) and
// returns the most recent value seen.
func parseLatestByteCount(raw []byte) uint64 {
	text := strings.ReplaceAll(string(raw), "\r", "\n")
	lines := strings.Split(text, "\n")
	var last uint64
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if n, err := strconv.ParseUint(fields[0], 10, 64); err == nil {
			last = n
		}
	}
	return last
}

// monitorReceiveStderr filters receive's informational noise lines and
// forwards the rest to the observer as they arrive (spec.md §4.9).
func monitorReceiveStderr(ctx context.Context, proc *cmdrunner.Process, obs Observer) {
	var reported int
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			raw := proc.Stderr()
			if len(raw) <= reported {
				continue
			}
			chunk := raw[reported:]
			reported = len(raw)
			for _, line := range strings.Split(string(chunk), "\n") {
				if line == "" || stderrNoise.MatchString(line) {
					continue
				}
				obs.OnWarn(line)
			}
		}
	}
}
