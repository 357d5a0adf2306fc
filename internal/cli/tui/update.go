package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haskel/2b2q/internal/train"
)

type snapshotMsg train.Snapshot

// doneMsg means the session ended and the snapshot channel closed.
type doneMsg struct{}

type tickMsg time.Time

func waitSnapshot(ch <-chan train.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return doneMsg{}
		}
		return snapshotMsg(snap)
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitSnapshot(m.config.Snapshots),
		tick(m.config.RefreshInterval),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		snap := train.Snapshot(msg)
		m.snap = &snap
		m.history = append(m.history, snap.Err)
		if len(m.history) > errHistorySize {
			m.history = m.history[len(m.history)-errHistorySize:]
		}
		return m, waitSnapshot(m.config.Snapshots)

	case doneMsg:
		return m, tea.Quit

	case tickMsg:
		// Redraw so the elapsed clock moves between snapshots.
		return m, tick(m.config.RefreshInterval)
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.quitting {
			// Second press: leave without waiting for the final snapshot.
			return m, tea.Quit
		}
		m.quitting = true
		if m.config.Cancel != nil {
			m.config.Cancel()
		}
		// Keep consuming snapshots until the session closes the channel,
		// so the last checkpoint is visible before exit.
		return m, nil
	}

	return m, nil
}
