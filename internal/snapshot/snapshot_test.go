package snapshot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	at := time.Date(2026, 7, 29, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "data.20260729T030405Z", Name("data", at))
}

func TestName_isOrderingPreserving(t *testing.T) {
	earlier := Name("data", time.Date(2026, 7, 29, 3, 0, 0, 0, time.UTC))
	later := Name("data", time.Date(2026, 7, 29, 4, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}

func TestParseTimestamp(t *testing.T) {
	at := time.Date(2026, 7, 29, 3, 4, 5, 0, time.UTC)
	got, err := ParseTimestamp("data.20260729T030405Z", "data")
	require.NoError(t, err)
	assert.True(t, at.Equal(got))

	_, err = ParseTimestamp("other.20260729T030405Z", "data")
	assert.Error(t, err)

	_, err = ParseTimestamp("data.not-a-timestamp", "data")
	assert.Error(t, err)
}

func TestSnapshot_Valid(t *testing.T) {
	id := uuid.New()
	recv := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	src := Snapshot{Name: "data.x", Location: Source, Identifier: id}
	assert.NoError(t, src.Valid())

	badSrc := Snapshot{Name: "data.x", Location: Source, Identifier: id, ReceivedIdentifier: recv}
	assert.Error(t, badSrc.Valid())

	dst := Snapshot{Name: "data.x", Location: Destination, Identifier: id, ReceivedIdentifier: recv}
	assert.NoError(t, dst.Valid())
}

func TestPair_Consistent(t *testing.T) {
	id := uuid.New()

	consistent := Pair{
		Source:      Snapshot{Identifier: id},
		Destination: Snapshot{ReceivedIdentifier: uuid.NullUUID{UUID: id, Valid: true}},
	}
	assert.True(t, consistent.Consistent())

	mismatched := Pair{
		Source:      Snapshot{Identifier: id},
		Destination: Snapshot{ReceivedIdentifier: uuid.NullUUID{UUID: uuid.New(), Valid: true}},
	}
	assert.False(t, mismatched.Consistent())

	noReceived := Pair{
		Source:      Snapshot{Identifier: id},
		Destination: Snapshot{},
	}
	assert.False(t, noReceived.Consistent())
}
