//go:build unix

package terminal

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
)

func openPTY(t *testing.T) (ptmx, tty *os.File) {
	t.Helper()
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	t.Cleanup(func() {
		tty.Close()
		ptmx.Close()
	})
	return ptmx, tty
}

func TestUnixBackend_RawReadRestore(t *testing.T) {
	ptmx, tty := openPTY(t)
	b := NewUnixBackend(tty, tty)

	if err := b.MakeRaw(); err != nil {
		t.Fatalf("MakeRaw: %v", err)
	}
	// Second call is a no-op
	if err := b.MakeRaw(); err != nil {
		t.Fatalf("MakeRaw twice: %v", err)
	}

	if _, err := ptmx.Write([]byte("\x1b[A")); err != nil {
		t.Fatalf("write master: %v", err)
	}

	stop := make(chan struct{})
	type result struct {
		data []byte
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		d, err := b.Read(stop)
		resCh <- result{d, err}
	}()

	select {
	case r := <-resCh:
		if r.err != nil {
			t.Fatalf("Read: %v", r.err)
		}
		if string(r.data) != "\x1b[A" {
			t.Errorf("Read = %q, want %q", r.data, "\x1b[A")
		}
	case <-time.After(2 * time.Second):
		close(stop)
		t.Fatal("timed out waiting for input")
	}

	if err := b.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestUnixBackend_ReadStops(t *testing.T) {
	_, tty := openPTY(t)
	b := NewUnixBackend(tty, tty)

	stop := make(chan struct{})
	close(stop)
	data, err := b.Read(stop)
	if data != nil || err != nil {
		t.Errorf("Read after stop = %q, %v", data, err)
	}
}

func TestUnixBackend_Size(t *testing.T) {
	ptmx, tty := openPTY(t)
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 30, Cols: 100}); err != nil {
		t.Fatalf("Setsize: %v", err)
	}

	b := NewUnixBackend(tty, tty)
	w, h := b.Size()
	if w != 100 || h != 30 {
		t.Errorf("Size = %dx%d, want 100x30", w, h)
	}
}

func TestUnixBackend_NotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	b := NewUnixBackend(f, f)
	if err := b.MakeRaw(); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("MakeRaw on regular file = %v, want ErrNotTerminal", err)
	}
	if w, _ := b.Size(); w != DefaultColumns {
		t.Errorf("Size width = %d, want fallback %d", w, DefaultColumns)
	}
}

func TestUnixBackend_Write(t *testing.T) {
	ptmx, tty := openPTY(t)
	b := NewUnixBackend(tty, tty)
	if err := b.MakeRaw(); err != nil {
		t.Fatalf("MakeRaw: %v", err)
	}
	defer b.Restore()

	if err := b.Write([]byte("ok")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, 16)
	ptmx.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := ptmx.Read(buf)
	if err != nil {
		t.Fatalf("read master: %v", err)
	}
	if string(buf[:n]) != "ok" {
		t.Errorf("master got %q, want %q", buf[:n], "ok")
	}
}

func TestStream_KeyDuringStopReading(t *testing.T) {
	ptmx, tty := openPTY(t)
	s := NewStream(NewUnixBackend(tty, tty), 0)
	defer s.Close()

	if err := s.SetRawMode(true); err != nil {
		t.Fatalf("SetRawMode: %v", err)
	}
	defer s.SetRawMode(false)

	got := make(chan string, 8)
	onRead := func(data []byte, err error) {
		if err == nil {
			got <- string(data)
		}
	}

	s.StartReading(onRead)
	// Let the reader park in poll before stopping it
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.StopReading()
		close(stopped)
	}()
	if _, err := ptmx.Write([]byte("x")); err != nil {
		t.Fatalf("write master: %v", err)
	}
	<-stopped

	// Whichever reader took the byte, it must arrive exactly once
	s.StartReading(onRead)
	select {
	case d := <-got:
		if d != "x" {
			t.Errorf("delivered %q, want %q", d, "x")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("keystroke typed during StopReading was lost")
	}
	s.StopReading()

	select {
	case d := <-got:
		t.Errorf("extra delivery %q", d)
	default:
	}
}
