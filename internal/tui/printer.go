package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Iron-Ham/singleton/internal/event"
)

// Printer is the non-interactive activator. It writes one line per batch
// and per status update.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	count int
	now   func() time.Time
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, now: time.Now}
}

// SignalExternalCommandLineArgs writes the batch. It reports false when the
// write fails.
func (p *Printer) SignalExternalCommandLineArgs(args []string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	_, err := fmt.Fprintf(p.w, "%s #%d %s\n", p.now().Format("15:04:05"), p.count, FormatArgs(args))
	return err == nil
}

// WatchBus writes a line for each lifecycle event that has a status line.
// Debug-level events are skipped. The returned function unsubscribes.
func (p *Printer) WatchBus(bus *event.Bus) func() {
	id := bus.SubscribeAll(func(e event.Event) {
		level, text, ok := Describe(e)
		if !ok || level == "debug" {
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		_, _ = fmt.Fprintf(p.w, "%s [%s] %s\n", p.now().Format("15:04:05"), level, text)
	})
	return func() { bus.Unsubscribe(id) }
}
