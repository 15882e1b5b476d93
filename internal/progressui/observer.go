package progressui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/aryonoco/btrbak/internal/backup"
)

// programSink is the subset of *tea.Program this package needs, so tests
// can substitute a channel-backed fake instead of spinning up a real
// terminal program.
type programSink interface {
	Send(tea.Msg)
}

// TeaObserver forwards backup.Observer callbacks to a running bubbletea
// program as messages, keeping the orchestrator ignorant of how (or
// whether) progress is being displayed.
type TeaObserver struct {
	prog programSink
}

func NewTeaObserver(prog *tea.Program) *TeaObserver {
	return &TeaObserver{prog: prog}
}

func (o *TeaObserver) OnInfo(msg string) {
	o.prog.Send(LineMsg{Level: "info", Text: msg})
}

func (o *TeaObserver) OnWarn(msg string) {
	o.prog.Send(LineMsg{Level: "warn", Text: msg})
}

func (o *TeaObserver) OnError(err error) {
	o.prog.Send(LineMsg{Level: "error", Text: err.Error()})
}

func (o *TeaObserver) OnProgress(bytesTransferred, totalEstimated uint64, throughputBps float64, elapsed, eta time.Duration) {
	o.prog.Send(ProgressMsg{
		BytesTransferred: bytesTransferred,
		TotalEstimated:   totalEstimated,
		ThroughputBps:    throughputBps,
		Elapsed:          elapsed,
		ETA:              eta,
	})
}

// Done sends the terminal message; call it after backup.Run returns.
func (o *TeaObserver) Done(err error) {
	o.prog.Send(DoneMsg{Err: err})
}

var _ backup.Observer = (*TeaObserver)(nil)
