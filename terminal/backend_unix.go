//go:build unix

package terminal

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

type unixBackend struct {
	in    *os.File
	out   *os.File
	inFd  int
	outFd int

	mu      sync.Mutex
	oldTerm *term.State

	resizeStopCh chan struct{}
	resizeDoneCh chan struct{}
}

// NewUnixBackend returns a backend reading from in and writing to out.
// Raw mode is applied to in; window size is queried on out.
func NewUnixBackend(in, out *os.File) Backend {
	return &unixBackend{
		in:    in,
		out:   out,
		inFd:  int(in.Fd()),
		outFd: int(out.Fd()),
	}
}

func (b *unixBackend) MakeRaw() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.oldTerm != nil {
		return nil
	}
	if !term.IsTerminal(b.inFd) {
		return ErrNotTerminal
	}

	old, err := term.MakeRaw(b.inFd)
	if err != nil {
		return fmt.Errorf("terminal: raw mode: %w", err)
	}
	b.oldTerm = old
	return nil
}

func (b *unixBackend) Restore() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.oldTerm == nil {
		return nil
	}
	err := term.Restore(b.inFd, b.oldTerm)
	b.oldTerm = nil
	if err != nil {
		return fmt.Errorf("terminal: restore: %w", err)
	}
	return nil
}

func (b *unixBackend) Size() (int, int) {
	return getTerminalSize(b.outFd)
}

func (b *unixBackend) Write(p []byte) error {
	_, err := b.out.Write(p)
	return err
}

// Read polls with a timeout so the stop channel is observed between reads
func (b *unixBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	buf := make([]byte, 256)

	for {
		select {
		case <-stopCh:
			return nil, nil
		default:
		}

		fds := []unix.PollFd{
			{Fd: int32(b.inFd), Events: unix.POLLIN},
		}

		// 100ms timeout
		n, err := unix.Poll(fds, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, err
		}
		if n == 0 {
			continue
		}

		rn, err := unix.Read(b.inFd, buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return nil, err
		}
		if rn == 0 {
			return nil, io.EOF
		}

		ret := make([]byte, rn)
		copy(ret, buf[:rn])
		return ret, nil
	}
}

func (b *unixBackend) SetResizeHandler(handler func(width, height int)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.resizeStopCh != nil {
		return
	}
	b.resizeStopCh = make(chan struct{})
	b.resizeDoneCh = make(chan struct{})

	go func(stopCh, doneCh chan struct{}) {
		defer close(doneCh)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGWINCH)
		defer signal.Stop(sigCh)

		for {
			select {
			case <-stopCh:
				return
			case <-sigCh:
				w, h := b.Size()
				handler(w, h)
			}
		}
	}(b.resizeStopCh, b.resizeDoneCh)
}

func (b *unixBackend) Close() error {
	b.mu.Lock()
	stopCh, doneCh := b.resizeStopCh, b.resizeDoneCh
	b.resizeStopCh = nil
	b.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}
	return b.Restore()
}

// getTerminalSize returns the terminal size for a given fd
func getTerminalSize(fd int) (int, int) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return DefaultColumns, 24 // Fallback
	}
	return int(ws.Col), int(ws.Row)
}
