// Package diagnostics exports a support bundle: the resolved config,
// the most recent RunState, and a tail of recent log lines, archived
// with archive/tar and compressed with zstd. No teacher equivalent
// exists in the retrieved source; klauspost/compress is carried in the
// teacher's go.mod as a direct dependency with no exercising code in
// the pack, so this package gives it a concrete home.
package diagnostics

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/aryonoco/btrbak/internal/backup"
)

// Bundle is the set of files written into a support archive.
type Bundle struct {
	Config  any // the loaded *config.Config, kept untyped to avoid an import cycle
	State   *backup.RunState
	LogTail []byte
	Now     time.Time
}

// Write archives b into w as a zstd-compressed tar stream.
func Write(w io.Writer, b Bundle) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("diagnostics: new zstd writer: %w", err)
	}
	defer zw.Close()

	tw := tar.NewWriter(zw)
	defer tw.Close()

	if b.Config != nil {
		cfgJSON, err := json.MarshalIndent(b.Config, "", "  ")
		if err != nil {
			return fmt.Errorf("diagnostics: marshal config: %w", err)
		}
		if err := addFile(tw, "config.json", b.Now, cfgJSON); err != nil {
			return err
		}
	}

	if b.State != nil {
		stateJSON, err := json.MarshalIndent(b.State, "", "  ")
		if err != nil {
			return fmt.Errorf("diagnostics: marshal state: %w", err)
		}
		if err := addFile(tw, "state.json", b.Now, stateJSON); err != nil {
			return err
		}
	}

	if len(b.LogTail) > 0 {
		if err := addFile(tw, "log-tail.txt", b.Now, b.LogTail); err != nil {
			return err
		}
	}

	return nil
}

func addFile(tw *tar.Writer, name string, modTime time.Time, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Size:    int64(len(data)),
		Mode:    0o644,
		ModTime: modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("diagnostics: write header %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("diagnostics: write body %s: %w", name, err)
	}
	return nil
}
