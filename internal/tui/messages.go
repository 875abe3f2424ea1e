package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// BatchMsg carries one forwarded argument batch into the model.
type BatchMsg struct {
	Args     []string
	Received time.Time
}

// StatusMsg replaces the status bar text.
type StatusMsg struct {
	Level string // "debug", "info", "warn" or "error"
	Text  string
}

// waitForInbox returns a command that delivers the next message queued on
// inbox. The model re-issues it after every inbox message.
func waitForInbox(inbox <-chan tea.Msg) tea.Cmd {
	if inbox == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-inbox
		if !ok {
			return nil
		}
		return msg
	}
}
