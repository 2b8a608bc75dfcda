//go:build unix

package terminal

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

type readResult struct {
	data []byte
	err  error
}

// ttyBackend talks to the controlling terminal through tcell's Tty,
// independent of where stdin and stdout point
type ttyBackend struct {
	tty tcell.Tty

	mu     sync.Mutex
	raw    bool
	pumpCh chan struct{} // closed when the current pump exits
	reads  chan readResult
}

// NewTTYBackend opens /dev/tty
func NewTTYBackend() (Backend, error) {
	tty, err := tcell.NewDevTty()
	if err != nil {
		return nil, fmt.Errorf("terminal: open tty: %w", err)
	}
	return newTTYBackend(tty), nil
}

func newTTYBackend(tty tcell.Tty) *ttyBackend {
	return &ttyBackend{
		tty:   tty,
		reads: make(chan readResult, 64),
	}
}

func (b *ttyBackend) MakeRaw() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.raw {
		return nil
	}
	if err := b.tty.Start(); err != nil {
		return fmt.Errorf("terminal: raw mode: %w", err)
	}
	b.raw = true
	b.pumpCh = make(chan struct{})
	go b.pump(b.pumpCh)
	return nil
}

func (b *ttyBackend) Restore() error {
	b.mu.Lock()
	if !b.raw {
		b.mu.Unlock()
		return nil
	}
	b.raw = false
	pumpCh := b.pumpCh
	b.mu.Unlock()

	// Stop sets a read deadline which releases the pump
	err := b.tty.Stop()
	<-pumpCh
	if err != nil {
		return fmt.Errorf("terminal: restore: %w", err)
	}
	return nil
}

// pump moves tty reads into the channel so Read can observe its stop channel
func (b *ttyBackend) pump(doneCh chan struct{}) {
	defer close(doneCh)
	buf := make([]byte, 256)
	for {
		n, err := b.tty.Read(buf)

		b.mu.Lock()
		active := b.raw
		b.mu.Unlock()

		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			b.send(readResult{data: data})
		}
		if err != nil {
			if active {
				b.send(readResult{err: err})
			}
			return
		}
		if !active {
			return
		}
	}
}

// send is non-blocking so Restore never waits on an unread backlog
func (b *ttyBackend) send(r readResult) {
	select {
	case b.reads <- r:
	default:
		// Channel full, drop
	}
}

func (b *ttyBackend) Size() (int, int) {
	ws, err := b.tty.WindowSize()
	if err != nil || ws.Width <= 0 {
		return DefaultColumns, 24
	}
	return ws.Width, ws.Height
}

func (b *ttyBackend) Write(p []byte) error {
	_, err := b.tty.Write(p)
	return err
}

func (b *ttyBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	select {
	case <-stopCh:
		return nil, nil
	case r := <-b.reads:
		return r.data, r.err
	}
}

func (b *ttyBackend) SetResizeHandler(handler func(width, height int)) {
	b.tty.NotifyResize(func() {
		w, h := b.Size()
		handler(w, h)
	})
}

func (b *ttyBackend) Close() error {
	b.tty.NotifyResize(nil)
	if err := b.Restore(); err != nil {
		return err
	}
	return b.tty.Close()
}
