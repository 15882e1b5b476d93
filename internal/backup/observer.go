package backup

import "time"

// Observer is the narrow callback surface the core exposes to its CLI/UI
// collaborator (spec.md §6). The core never formats for terminals or
// structured logs itself.
type Observer interface {
	OnInfo(message string)
	OnWarn(message string)
	OnError(err error)
	OnProgress(bytesTransferred, totalEstimated uint64, throughputBps float64, elapsed, eta time.Duration)
}

// NoopObserver discards everything; useful for callers (and tests) that
// don't care about progress or logging.
type NoopObserver struct{}

func (NoopObserver) OnInfo(string)                                                     {}
func (NoopObserver) OnWarn(string)                                                      {}
func (NoopObserver) OnError(error)                                                      {}
func (NoopObserver) OnProgress(uint64, uint64, float64, time.Duration, time.Duration) {}
