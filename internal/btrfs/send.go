package btrfs

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aryonoco/btrbak/internal/cmdrunner"
)

// SendFlags configures a `btrfs send` invocation, built incrementally the
// way the teacher's ZFSSendFlags.buildSendFlagsUnchecked does.
type SendFlags struct {
	Parent        string // empty means full send
	NoData        bool   // --no-data, used for dry-run size estimation
	ChunkSizeKiB  int    // -e value for chunking hint (spec.md §4.9: 1024)
	EstimateBytes uint64 // -s estimated total, for progress hints
}

// BuildSendArgs returns the argv for sending source with these flags,
// starting with the "send" subcommand and ending with source.
func BuildSendArgs(source string, f SendFlags) []string {
	args := []string{"send"}
	if f.Parent != "" {
		args = append(args, "-p", f.Parent)
	}
	if f.NoData {
		args = append(args, "--no-data")
	}
	if f.ChunkSizeKiB > 0 {
		args = append(args, "-e", strconv.Itoa(f.ChunkSizeKiB))
	}
	if f.EstimateBytes > 0 {
		args = append(args, "-s", strconv.FormatUint(f.EstimateBytes, 10))
	}
	args = append(args, source)
	return args
}

// RecvFlags configures a `btrfs receive` invocation.
type RecvFlags struct {
	DestDir string
}

// BuildReceiveArgs returns the argv for receiving into DestDir.
func BuildReceiveArgs(f RecvFlags) []string {
	return []string{"receive", f.DestDir}
}

// StartSend launches `btrfs send` as a pipeline stage (spec.md §4.9 stage A).
func StartSend(ctx context.Context, source string, f SendFlags) (*cmdrunner.Process, error) {
	return cmdrunner.StartPiped(ctx, "btrfs", BuildSendArgs(source, f), nil)
}

// StartReceive launches `btrfs receive` as a pipeline stage (spec.md §4.9
// stage C), reading the stream from upstream.
func StartReceive(ctx context.Context, f RecvFlags, upstream interface {
	Read(p []byte) (n int, err error)
}) (*cmdrunner.Process, error) {
	return cmdrunner.StartPiped(ctx, "btrfs", BuildReceiveArgs(f), upstream)
}

// DryRunDeltaBytes runs `btrfs send --no-data -p parent current`, counting
// bytes of output up to a 10 MiB cap to bound the time spent estimating
// (spec.md §4.7). It returns the counted byte total, which may be less
// than the true delta size if the cap was hit.
func DryRunDeltaBytes(ctx context.Context, parent, current string, capBytes int64) (int64, error) {
	if capBytes <= 0 {
		capBytes = 10 * 1024 * 1024
	}
	proc, err := StartSend(ctx, current, SendFlags{Parent: parent, NoData: true})
	if err != nil {
		return 0, fmt.Errorf("btrfs: dry run delta %s -> %s: %w", parent, current, err)
	}
	defer proc.Terminate() //nolint:errcheck // best effort if we return early

	var n int64
	buf := make([]byte, 64*1024)
	out := proc.Stdout()
	for n < capBytes {
		read, rerr := out.Read(buf)
		n += int64(read)
		if rerr != nil {
			break
		}
	}
	_ = out.Close()

	if werr := proc.Wait(); werr != nil && n < capBytes {
		// A short read before the cap, paired with a failing exit, means
		// the dry run itself failed rather than completed early.
		return 0, fmt.Errorf("btrfs: dry run delta %s -> %s: %w", parent, current, werr)
	}
	return n, nil
}
