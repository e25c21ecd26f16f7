package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/filepack/internal/core/ports"
)

var _ ports.Progress = (*Display)(nil)

// Feed is a TapeSource that can be closed.
type Feed interface {
	TapeSource
	Close() error
}

// Display implements ports.Progress with a Bubble Tea program.
type Display struct {
	subscribe func() Feed
	out       io.Writer
}

// NewDisplay creates a display drawing on out the updates from the feeds returned by subscribe.
func NewDisplay(subscribe func() Feed, out io.Writer) *Display {
	return &Display{subscribe: subscribe, out: out}
}

// Start runs the program in the background until stop is called.
func (d *Display) Start() func() {
	feed := d.subscribe()
	program := tea.NewProgram(NewModel(feed),
		tea.WithOutput(d.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = program.Run()
	}()

	return func() {
		_ = feed.Close()
		<-done
	}
}
