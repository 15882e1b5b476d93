package btrfs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShowOutput(t *testing.T) {
	id := "9f8c4b6e-1a2b-4c3d-8e5f-0123456789ab"
	recvID := "1a2b3c4d-5e6f-7a8b-9c0d-abcdef012345"

	tcs := []struct {
		name   string
		in     string
		exp    ShowInfo
		expErr bool
	}{
		{
			name: "no received uuid",
			in: "/mnt/src/.snapshots/data.20240101T000000Z\n" +
				"\tName: \t\t\tdata.20240101T000000Z\n" +
				"\tUUID: \t\t\t" + id + "\n" +
				"\tParent UUID: \t\t-\n" +
				"\tReceived UUID: \t\t-\n" +
				"\tTotal bytes: \t\t1073741824\n",
			exp: ShowInfo{Identifier: uuid.MustParse(id), TotalBytes: 1073741824},
		},
		{
			name: "with received uuid",
			in: "/mnt/dest/data.20240101T000000Z\n" +
				"\tUUID: \t\t\t" + id + "\n" +
				"\tReceived UUID: \t\t" + recvID + "\n" +
				"\tTotal bytes: \t\t2048\n",
			exp: ShowInfo{
				Identifier:         uuid.MustParse(id),
				ReceivedIdentifier: uuid.NullUUID{UUID: uuid.MustParse(recvID), Valid: true},
				TotalBytes:         2048,
			},
		},
		{
			name:   "missing uuid",
			in:     "\tTotal bytes: \t\t2048\n",
			expErr: true,
		},
		{
			name: "malformed uuid",
			in:   "\tUUID: \t\t\tnot-a-uuid\n",
			expErr: true,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseShowOutput([]byte(tc.in))
			if tc.expErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, got)
		})
	}
}

func TestParseShowOutput_firstUUIDWins(t *testing.T) {
	// Regression for spec.md §4.2: "the source-identifier pattern must
	// match the first UUID: occurrence" -- a naive "last match wins"
	// parser would pick up Parent UUID's value here if it didn't anchor
	// on "UUID" exactly (Parent UUID's key is "Parent UUID", not "UUID",
	// so this also guards against substring key matches).
	id := "9f8c4b6e-1a2b-4c3d-8e5f-0123456789ab"
	parentID := "00000000-0000-0000-0000-000000000000"
	in := "\tUUID: \t\t\t" + id + "\n" +
		"\tParent UUID: \t\t" + parentID + "\n"
	got, err := ParseShowOutput([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, uuid.MustParse(id), got.Identifier)
}

func TestParseUsageOutput(t *testing.T) {
	tcs := []struct {
		name   string
		in     string
		exp    uint64
		expErr bool
	}{
		{
			name: "with min annotation",
			in:   "    Free (estimated):\t\t    8.34GiB\t(min: 4.35GiB)\n",
			exp:  uint64(8.34 * float64(1<<30)),
		},
		{
			name:   "missing field",
			in:     "    Used:\t\t\t    1.16GiB\n",
			expErr: true,
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseUsageOutput([]byte(tc.in))
			if tc.expErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.exp, got.FreeBytes, float64(1<<20))
		})
	}
}
