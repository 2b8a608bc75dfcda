// Package screen composes a block of terminal rows: N fixed status rows, an
// output row for editor messages and the editor row beneath it. All state is
// owned by one event-loop goroutine; the exported methods may be called from
// anywhere and only post work to that loop.
//
// Every write that touches a fixed or output row is followed by the sequence
// returning the terminal cursor to the editor cursor, so asynchronous status
// updates never displace the line being typed.
package screen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lixenwraith/statline/editor"
	"github.com/lixenwraith/statline/line"
	"github.com/lixenwraith/statline/terminal"
)

var (
	// ErrBusy is delivered to a Read callback while another read cycle is active
	ErrBusy = errors.New("screen: read already in progress")

	// ErrClosed is returned after Close, and ends a read cycle interrupted by Close
	ErrClosed = errors.New("screen: closed")

	// ErrNotStarted is returned by ReadLine before Start
	ErrNotStarted = errors.New("screen: not started")
)

// Stream is the borrowed terminal the screen draws on and reads from
type Stream interface {
	terminal.Input
	terminal.Output
}

// Options configure a Screen
type Options struct {
	// Rows is the number of fixed rows
	Rows int
	// Top is the terminal row of the first fixed row; 1 when zero
	Top int
	// Bell rings the alert; writes the BEL byte when nil
	Bell   func()
	Editor editor.Options
}

// Screen is the compositor. Create with New, then Start.
type Screen struct {
	stream Stream
	rows   []*line.Row
	out    *line.Row
	ed     *editor.Editor
	bell   func()

	// Loop-owned write state
	queue strings.Builder
	ready bool

	// Loop-owned read cycle; nil when idle
	cycle *readCycle
	raw   bool

	mu      sync.Mutex
	events  []func()
	wakeCh  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	closed  bool
}

// New builds the row block. Nothing is written until Start.
func New(stream Stream, opts Options) (*Screen, error) {
	if opts.Rows < 0 {
		return nil, fmt.Errorf("screen: negative row count %d", opts.Rows)
	}
	top := opts.Top
	if top < 1 {
		top = 1
	}

	s := &Screen{
		stream: stream,
		rows:   make([]*line.Row, opts.Rows),
		out:    line.New(top+opts.Rows, 0),
		bell:   opts.Bell,
		ready:  true,
		wakeCh: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for i := range s.rows {
		s.rows[i] = line.New(top+i, 0)
	}

	ed, err := editor.New(top+opts.Rows+1, sink{s}, opts.Editor)
	if err != nil {
		return nil, err
	}
	s.ed = ed
	return s, nil
}

// Start launches the event loop and paints the block
func (s *Screen) Start() {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	if r, ok := s.stream.(terminal.Resizer); ok {
		r.OnResize(func(width, height int) {
			s.post(s.redraw)
		})
	}
	s.post(s.redraw)
	go s.loop()
}

// Close ends any active read cycle with ErrClosed, runs the work already
// posted and stops the loop. The stream is left open.
func (s *Screen) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	started := s.started
	s.events = append(s.events, func() {
		if s.cycle != nil {
			s.ed.Cancel()
			s.finish(editor.Result{Err: ErrClosed})
		}
	})
	s.closed = true
	s.mu.Unlock()

	close(s.stopCh)
	if started {
		<-s.doneCh
	} else {
		s.runPending()
	}
}

// SetRow replaces the text of fixed row i (1-based). An index outside the
// configured rows panics.
func (s *Screen) SetRow(i int, text string) error {
	r := s.row(i)
	return s.post(func() { s.writeRow(r.SetTo(text)) })
}

// AppendRow adds text to the end of fixed row i
func (s *Screen) AppendRow(i int, text string) error {
	r := s.row(i)
	return s.post(func() { s.writeRow(r.Append(text)) })
}

// Output replaces the output row
func (s *Screen) Output(text string) error {
	return s.post(func() { s.output(text, false) })
}

// AppendOutput adds text to the output row
func (s *Screen) AppendOutput(text string) error {
	return s.post(func() { s.output(text, true) })
}

// Redraw clears the terminal and repaints every row
func (s *Screen) Redraw() error {
	return s.post(s.redraw)
}

// Do runs fn on the event loop with the editor. fn must not block.
func (s *Screen) Do(fn func(ed *editor.Editor)) error {
	return s.post(func() { fn(s.ed) })
}

// Read starts a read cycle. cb runs on the event loop once the line is
// accepted or the cycle terminates; it may start the next cycle. A second
// Read while a cycle is active delivers ErrBusy to its callback.
func (s *Screen) Read(cb func(line string, err error)) error {
	rc := &readCycle{done: cb}
	return s.post(func() { s.beginRead(rc) })
}

// ReadLine runs one read cycle and waits for it. Cancelling ctx ends the
// cycle with ctx.Err(). ReadLine before Start returns ErrNotStarted; it must
// not be called from the event loop.
func (s *Screen) ReadLine(ctx context.Context) (string, error) {
	s.mu.Lock()
	started, closed := s.started, s.closed
	s.mu.Unlock()
	switch {
	case closed:
		return "", ErrClosed
	case !started:
		return "", ErrNotStarted
	}

	type result struct {
		line string
		err  error
	}
	resCh := make(chan result, 1)
	rc := &readCycle{done: func(line string, err error) { resCh <- result{line, err} }}

	if err := s.post(func() { s.beginRead(rc) }); err != nil {
		return "", err
	}

	select {
	case r := <-resCh:
		return r.line, r.err
	case <-ctx.Done():
	}

	// A failed post means Close is ending the cycle instead
	_ = s.post(func() {
		// The cycle may have finished on its own meanwhile
		if s.cycle == rc {
			s.ed.Cancel()
			s.finish(editor.Result{Err: ctx.Err()})
		}
	})
	r := <-resCh
	return r.line, r.err
}

func (s *Screen) row(i int) *line.Row {
	if i < 1 || i > len(s.rows) {
		panic(fmt.Sprintf("screen: row %d out of range [1, %d]", i, len(s.rows)))
	}
	return s.rows[i-1]
}

// post queues fn for the event loop
func (s *Screen) post(fn func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.events = append(s.events, fn)
	s.mu.Unlock()

	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
	return nil
}

func (s *Screen) loop() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.wakeCh:
			s.runPending()
		case <-s.stopCh:
			s.runPending()
			return
		}
	}
}

// runPending runs posted work in order, including work posted while running
func (s *Screen) runPending() {
	for {
		s.mu.Lock()
		batch := s.events
		s.events = nil
		s.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}
