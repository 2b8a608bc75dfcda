package screen

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/lixenwraith/statline/editor"
	"github.com/lixenwraith/statline/terminal"
)

// Everything in this file runs on the event loop.

type readCycle struct {
	done func(line string, err error)
}

// write issues p after anything queued, or queues it while the stream is not ready
func (s *Screen) write(p string) {
	if !s.ready {
		s.queue.WriteString(p)
		return
	}
	if s.queue.Len() > 0 {
		p = s.queue.String() + p
		s.queue.Reset()
	}
	s.ready = s.stream.Write(p, s.writeDone)
}

// writeDone is the stream's completion callback and may run on any goroutine
func (s *Screen) writeDone() {
	s.post(s.flush)
}

// flush marks the stream ready and issues the queue as one write
func (s *Screen) flush() {
	s.ready = true
	if s.queue.Len() == 0 {
		return
	}
	p := s.queue.String()
	s.queue.Reset()
	s.ready = s.stream.Write(p, s.writeDone)
}

// writeRow writes a fixed or output row change and returns the cursor to the editor
func (s *Screen) writeRow(seq string) {
	s.write(seq + s.ed.GoTo())
}

func (s *Screen) output(text string, add bool) {
	if add {
		s.writeRow(s.out.Append(text))
		return
	}
	s.writeRow(s.out.SetTo(text))
}

func (s *Screen) redraw() {
	seq := terminal.ClearScreen()
	for _, r := range s.rows {
		seq += r.Redraw()
	}
	seq += s.out.Redraw()
	seq += s.ed.Redraw()
	s.write(seq)
}

func (s *Screen) ringBell() {
	if s.bell != nil {
		s.bell()
		return
	}
	s.write(terminal.Bell)
}

func (s *Screen) columns() int {
	if sz, ok := s.stream.(terminal.Sizer); ok {
		return sz.Columns()
	}
	return terminal.DefaultColumns
}

// beginRead starts a cycle. Type-ahead left from the previous line may end
// it at once, before the stream is touched.
func (s *Screen) beginRead(rc *readCycle) {
	if s.cycle != nil {
		rc.done("", ErrBusy)
		return
	}
	s.cycle = rc

	if res := s.ed.Begin(); res.Done() {
		s.finish(res)
		return
	}

	if err := s.stream.SetRawMode(true); err != nil {
		s.ed.Cancel()
		s.finish(editor.Result{Err: fmt.Errorf("screen: raw mode: %w", err)})
		return
	}
	s.raw = true
	s.stream.StartReading(s.onInput)
}

// onInput is the stream's read callback and runs on the reader goroutine
func (s *Screen) onInput(chunk []byte, err error) {
	if chunk != nil {
		chunk = append([]byte(nil), chunk...)
	}
	s.post(func() { s.handleInput(chunk, err) })
}

func (s *Screen) handleInput(chunk []byte, err error) {
	if err != nil {
		if s.cycle == nil {
			return
		}
		if errors.Is(err, io.EOF) {
			err = editor.ErrEOF
		}
		s.ed.Cancel()
		s.finish(editor.Result{Err: err})
		return
	}

	// Keys that raced a finished cycle are kept by the editor for the next one
	res := s.ed.HandleKey(chunk)
	if s.cycle != nil && res.Done() {
		s.finish(res)
	}
}

// finish leaves raw mode and stops reading before the callback runs
func (s *Screen) finish(res editor.Result) {
	if s.raw {
		s.stream.StopReading()
		if err := s.stream.SetRawMode(false); err != nil {
			log.Printf("screen: restore cooked mode: %v", err)
		}
		s.raw = false
	}
	rc := s.cycle
	s.cycle = nil
	rc.done(res.Line, res.Err)
}

// sink adapts the screen to editor.Sink
type sink struct{ s *Screen }

func (k sink) Write(seq string)             { k.s.write(seq) }
func (k sink) Output(text string, add bool) { k.s.output(text, add) }
func (k sink) Bell()                        { k.s.ringBell() }
func (k sink) Redraw()                      { k.s.redraw() }
func (k sink) Columns() int                 { return k.s.columns() }
