package tui

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/singleton/internal/event"
)

// App wraps the Bubbletea program and acts as the leader's activator.
// Batches and status updates are queued on an inbox that the model drains,
// so they may arrive before Run starts.
type App struct {
	model Model
	inbox chan tea.Msg
	opts  []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
	final   Model

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a new TUI application for identity.
func New(identity string, maxBatches int, opts ...tea.ProgramOption) *App {
	model := NewModel(identity, maxBatches)
	inbox := make(chan tea.Msg, model.maxBatches)
	model.inbox = inbox
	return &App{
		model: model,
		inbox: inbox,
		opts:  opts,
		done:  make(chan struct{}),
	}
}

// Run starts the TUI application and blocks until the user quits.
func (a *App) Run() error {
	a.mu.Lock()
	a.program = tea.NewProgram(a.model, a.opts...)
	program := a.program
	a.mu.Unlock()

	final, err := program.Run()
	a.doneOnce.Do(func() { close(a.done) })

	a.mu.Lock()
	if m, ok := final.(Model); ok {
		a.final = m
	}
	a.mu.Unlock()
	return err
}

// Quit asks a running program to exit. It is a no-op before Run.
func (a *App) Quit() {
	a.mu.Lock()
	program := a.program
	a.mu.Unlock()
	if program != nil {
		program.Quit()
	}
}

// Final returns the model as it was when Run returned.
func (a *App) Final() Model {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.final
}

// SignalExternalCommandLineArgs queues a batch for display. It blocks while
// the inbox is full and reports false once the window has closed.
func (a *App) SignalExternalCommandLineArgs(args []string) bool {
	msg := BatchMsg{Args: args, Received: time.Now()}
	select {
	case <-a.done:
		return false
	default:
	}
	select {
	case a.inbox <- msg:
		return true
	case <-a.done:
		return false
	}
}

// WatchBus mirrors coordinator lifecycle events onto the status bar. Status
// updates are dropped rather than blocking the publisher. The returned
// function unsubscribes.
func (a *App) WatchBus(bus *event.Bus) func() {
	id := bus.SubscribeAll(func(e event.Event) {
		level, text, ok := Describe(e)
		if !ok {
			return
		}
		select {
		case a.inbox <- StatusMsg{Level: level, Text: text}:
		default:
		}
	})
	return func() { bus.Unsubscribe(id) }
}

// Describe converts a lifecycle event into a status line. ok is false for
// events that have no status line.
func Describe(e event.Event) (level, text string, ok bool) {
	switch e := e.(type) {
	case event.LeaderElectedEvent:
		return "info", fmt.Sprintf("Listening on %s", e.Channel), true
	case event.BatchReceivedEvent:
		if e.Panicked {
			return "error", fmt.Sprintf("Batch from pid %d crashed the handler", e.FromPID), true
		}
		return "info", fmt.Sprintf("Batch from pid %d", e.FromPID), true
	case event.BatchDroppedEvent:
		return "warn", fmt.Sprintf("Dropped batch from pid %d: %s", e.FromPID, e.Reason), true
	case event.FollowerSignaledEvent:
		if e.Error != "" {
			return "error", fmt.Sprintf("Forwarding %s: %s", e.Delivery, e.Error), true
		}
		return "info", fmt.Sprintf("Forwarded %s (%s)", FormatArgs(e.Args), e.Delivery), true
	case event.ChannelRetryEvent:
		return "debug", fmt.Sprintf("Channel retry %d/%d", e.Attempt, e.MaxAttempts), true
	case event.InstanceCleanupEvent:
		return "info", "Shutting down " + e.Role, true
	}
	return "", "", false
}
