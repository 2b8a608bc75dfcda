//go:build unix

package terminal

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery when the stream cannot be closed normally
func EmergencyReset(w io.Writer) {
	io.WriteString(w, csiCursorShow)
	io.WriteString(w, CSI(ResetStyle))
	io.WriteString(w, csiAutoWrapOn)
	io.WriteString(w, "\r\n")

	// Flush if it's a file
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}

// resetTerminalMode attempts to restore terminal to cooked mode
// Best-effort for crash recovery; errors ignored
func resetTerminalMode() {
	// Try to restore via /dev/tty (works even if stdin redirected)
	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		defer tty.Close()
		fd := int(tty.Fd())
		// Get current termios, enable ECHO and ICANON
		if termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios); err == nil {
			termios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
			termios.Iflag |= unix.ICRNL
			termios.Oflag |= unix.OPOST
			unix.IoctlSetTermios(fd, ioctlSetTermios, termios)
		}
	}
}
