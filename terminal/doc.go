// Package terminal provides the byte-level terminal layer: control-sequence
// construction, raw-mode backends, and an asynchronous stream with write
// completion callbacks.
//
// Features:
//   - CSI builder that validates final bytes (0x40-0x7E)
//   - Unix backend over golang.org/x/term and poll(2), SIGWINCH resize
//   - /dev/tty backend over tcell's Tty for redirected stdin
//   - Stream with FIFO writer goroutine and high-water readiness reporting
//   - Key name table for configuration and diagnostics
//   - Clean terminal restoration on panic
//
// The package bypasses terminfo entirely and emits xterm-compatible sequences.
package terminal
