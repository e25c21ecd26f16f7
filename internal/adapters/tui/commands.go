// Package tui renders the steps of a run as a live terminal view.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
)

// TapeSource is a stream of progrock updates, such as the read end of a progrock.Pipe.
type TapeSource interface {
	progrock.Reader
}

// MsgTapeUpdate wraps the raw update from progrock.
type MsgTapeUpdate struct {
	Update *progrock.StatusUpdate
}

// MsgTapeEnded is sent when the tape stream has ended.
type MsgTapeEnded struct{}

// WaitForTape returns a Bubble Tea command that reads the next update from the tape.
func WaitForTape(tape TapeSource) tea.Cmd {
	return func() tea.Msg {
		update, ok := tape.ReadStatus()
		if !ok {
			return MsgTapeEnded{}
		}
		return MsgTapeUpdate{Update: update}
	}
}
