package terminal

import "errors"

// ErrNotTerminal is returned when raw mode is requested on a non-tty
var ErrNotTerminal = errors.New("terminal: not a terminal")

// Backend abstracts platform-specific terminal operations.
// Stream builds the asynchronous read/write contract on top of it.
type Backend interface {
	// Mode
	MakeRaw() error
	Restore() error

	// Capabilities
	Size() (width, height int)

	// I/O
	// Write writes raw bytes to the terminal output.
	Write(p []byte) error

	// Read blocks until input is available, the stop channel is closed, or an error occurs.
	// A closed stop channel yields (nil, nil); end of input yields io.EOF.
	Read(stopCh <-chan struct{}) ([]byte, error)

	// Callbacks
	// SetResizeHandler registers a callback for terminal resize events.
	SetResizeHandler(handler func(width, height int))

	// Close restores the terminal and releases handlers
	Close() error
}
