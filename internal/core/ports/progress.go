package ports

// Progress renders the steps of a run while it executes.
type Progress interface {
	// Start begins rendering. The returned stop function ends the display
	// after the steps recorded so far are drawn and blocks until it is gone.
	Start() (stop func())
}
