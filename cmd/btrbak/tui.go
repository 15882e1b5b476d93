package main

import (
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/aryonoco/btrbak/internal/progressui"
)

// isTerminal reports whether f is an interactive terminal, the signal
// used to decide between the bubbletea progress UI and the plain
// colored line-printer fallback.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// newInteractiveObserver starts a bubbletea program for job in the
// background and returns an Observer that feeds it.
func newInteractiveObserver(job string) *progressui.TeaObserver {
	p := tea.NewProgram(progressui.New(job))
	go func() {
		_, _ = p.Run()
	}()
	return progressui.NewTeaObserver(p)
}
