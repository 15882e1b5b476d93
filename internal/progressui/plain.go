package progressui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/muesli/reflow/wordwrap"
)

const plainWrapWidth = 100

// PlainObserver prints colored, word-wrapped lines, the fallback used
// when stdout isn't a terminal bubbletea can take over (piped output,
// cron-invoked runs, log collectors).
type PlainObserver struct {
	out      io.Writer
	info     *color.Color
	warn     *color.Color
	errColor *color.Color
}

func NewPlainObserver(out io.Writer) *PlainObserver {
	return &PlainObserver{
		out:      out,
		info:     color.New(color.FgWhite),
		warn:     color.New(color.FgYellow),
		errColor: color.New(color.FgRed, color.Bold),
	}
}

func (p *PlainObserver) OnInfo(msg string) { p.println(p.info, msg) }
func (p *PlainObserver) OnWarn(msg string) { p.println(p.warn, msg) }
func (p *PlainObserver) OnError(err error) { p.println(p.errColor, err.Error()) }

func (p *PlainObserver) OnProgress(bytesTransferred, totalEstimated uint64, throughputBps float64, elapsed, eta time.Duration) {
	pct := 0.0
	if totalEstimated > 0 {
		pct = 100 * float64(bytesTransferred) / float64(totalEstimated)
	}
	p.println(p.info, fmt.Sprintf("%.0f%%  %.1f MiB/s  elapsed %s  eta %s",
		pct, throughputBps/(1<<20), elapsed.Round(time.Second), eta.Round(time.Second)))
}

func (p *PlainObserver) println(c *color.Color, text string) {
	wrapped := wordwrap.String(text, plainWrapWidth)
	c.Fprintln(p.out, wrapped)
}
