package diagnostics

import (
	"archive/tar"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryonoco/btrbak/internal/backup"
)

func TestWrite_producesReadableArchive(t *testing.T) {
	var buf bytes.Buffer
	b := Bundle{
		Config:  map[string]string{"source_volume": "/data"},
		State:   &backup.RunState{SnapshotName: "data.20260729T000000Z"},
		LogTail: []byte("level=info msg=started\n"),
		Now:     time.Unix(0, 0).UTC(),
	}
	require.NoError(t, Write(&buf, b))

	zr, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer zr.Close()

	tr := tar.NewReader(zr)
	names := map[string][]byte{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		names[hdr.Name] = data
	}

	assert.Contains(t, names, "config.json")
	assert.Contains(t, names, "state.json")
	assert.Contains(t, string(names["state.json"]), "data.20260729T000000Z")
	assert.Contains(t, string(names["log-tail.txt"]), "started")
}

func TestWrite_omitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Bundle{Now: time.Unix(0, 0).UTC()}))

	zr, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer zr.Close()

	tr := tar.NewReader(zr)
	_, err = tr.Next()
	assert.ErrorIs(t, err, io.EOF)
}
