package progressui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	sent []tea.Msg
}

func (f *fakeSink) Send(msg tea.Msg) { f.sent = append(f.sent, msg) }

func TestTeaObserver_forwardsAllCallbacks(t *testing.T) {
	sink := &fakeSink{}
	o := &TeaObserver{prog: sink}

	o.OnInfo("hello")
	o.OnWarn("careful")
	o.OnError(errors.New("broke"))
	o.OnProgress(10, 100, 5.0, time.Second, 2*time.Second)
	o.Done(nil)

	require.Len(t, sink.sent, 5)
	assert.Equal(t, LineMsg{Level: "info", Text: "hello"}, sink.sent[0])
	assert.Equal(t, LineMsg{Level: "warn", Text: "careful"}, sink.sent[1])
	assert.Equal(t, LineMsg{Level: "error", Text: "broke"}, sink.sent[2])
	assert.Equal(t, ProgressMsg{BytesTransferred: 10, TotalEstimated: 100, ThroughputBps: 5.0, Elapsed: time.Second, ETA: 2 * time.Second}, sink.sent[3])
	assert.Equal(t, DoneMsg{Err: nil}, sink.sent[4])
}

func TestModel_updateTracksProgressAndClampsFraction(t *testing.T) {
	m := New("job1")
	next, _ := m.Update(ProgressMsg{BytesTransferred: 200, TotalEstimated: 100})
	nm := next.(Model)
	assert.Equal(t, 1.0, nm.fraction)
}

func TestModel_accumulatesRecentLinesCapped(t *testing.T) {
	m := New("job1")
	var next tea.Model = m
	for i := 0; i < 12; i++ {
		next, _ = next.Update(LineMsg{Level: "info", Text: "line"})
	}
	nm := next.(Model)
	assert.Len(t, nm.lines, 8)
}

func TestPlainObserver_onProgressWritesPercentage(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainObserver(&buf)
	p.OnProgress(50, 100, 1<<20, time.Second, time.Second)
	assert.Contains(t, buf.String(), "50%")
}

func TestFilterJobs_emptyQueryReturnsAll(t *testing.T) {
	names := []string{"database-backup", "media-backup"}
	assert.Equal(t, names, FilterJobs(names, ""))
}

func TestFilterJobs_fuzzyMatchesAbbreviation(t *testing.T) {
	names := []string{"database-backup", "media-backup"}
	got := FilterJobs(names, "db")
	require.NotEmpty(t, got)
	assert.Equal(t, "database-backup", got[0])
}
