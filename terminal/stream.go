package terminal

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Input is the read half of a terminal stream
type Input interface {
	SetRawMode(raw bool) error
	// StartReading delivers chunks (or a terminal read error) to fn until StopReading
	StartReading(fn func(chunk []byte, err error))
	StopReading()
}

// Output is the write half of a terminal stream
type Output interface {
	// Write hands p to the terminal and reports whether another write may be
	// issued immediately. done runs once p has been written.
	Write(p string, done func()) bool
}

// Sizer is implemented by streams that know the terminal width
type Sizer interface {
	Columns() int
}

// Resizer is implemented by streams that report window size changes
type Resizer interface {
	OnResize(fn func(width, height int))
}

const (
	DefaultColumns   = 80
	DefaultHighWater = 16 << 10
)

// ErrStreamClosed is reported to read callbacks after Close
var ErrStreamClosed = errors.New("terminal: stream closed")

type writeReq struct {
	data string
	done func()
}

// Stream implements Input, Output, Sizer and Resizer over a Backend.
// Writes are performed in order by a single writer goroutine.
type Stream struct {
	backend   Backend
	highWater int

	mu       sync.Mutex
	pending  []writeReq
	inflight int // bytes accepted but not yet written
	closed   bool
	wakeCh   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}

	readMu     sync.Mutex
	reading    bool
	readStopCh chan struct{}
	readDoneCh chan struct{}
}

// NewStream starts the writer goroutine. highWater <= 0 selects DefaultHighWater.
func NewStream(b Backend, highWater int) *Stream {
	if highWater <= 0 {
		highWater = DefaultHighWater
	}
	s := &Stream{
		backend:   b,
		highWater: highWater,
		wakeCh:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

// SetRawMode switches the backend in or out of raw mode
func (s *Stream) SetRawMode(raw bool) error {
	if raw {
		return s.backend.MakeRaw()
	}
	return s.backend.Restore()
}

// Columns returns the terminal width, DefaultColumns when unknown
func (s *Stream) Columns() int {
	w, _ := s.backend.Size()
	if w <= 0 {
		return DefaultColumns
	}
	return w
}

// OnResize registers fn for window size changes
func (s *Stream) OnResize(fn func(width, height int)) {
	s.backend.SetResizeHandler(fn)
}

// Write queues p for the writer goroutine
func (s *Stream) Write(p string, done func()) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.pending = append(s.pending, writeReq{data: p, done: done})
	s.inflight += len(p)
	ready := s.inflight < s.highWater
	s.mu.Unlock()

	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
	return ready
}

// writeLoop drains pending writes in FIFO order until Close
func (s *Stream) writeLoop() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.wakeCh:
		case <-s.stopCh:
			s.drain()
			return
		}
		s.drain()
	}
}

func (s *Stream) drain() {
	for {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		if len(batch) == 0 {
			return
		}

		for _, req := range batch {
			if err := s.backend.Write([]byte(req.data)); err != nil {
				log.Printf("terminal: write failed: %v", err)
			}
			s.mu.Lock()
			s.inflight -= len(req.data)
			s.mu.Unlock()
			if req.done != nil {
				req.done()
			}
		}
	}
}

// StartReading launches the reader goroutine; a second call while reading is a no-op
func (s *Stream) StartReading(fn func(chunk []byte, err error)) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	if s.reading {
		return
	}
	s.reading = true
	s.readStopCh = make(chan struct{})
	s.readDoneCh = make(chan struct{})
	go s.readLoop(fn, s.readStopCh, s.readDoneCh)
}

func (s *Stream) readLoop(fn func([]byte, error), stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	// A panicking backend ends the read cycle instead of the process
	defer func() {
		if r := recover(); r != nil {
			fn(nil, fmt.Errorf("terminal: input reader panic: %v", r))
		}
	}()

	for {
		data, err := s.backend.Read(stopCh)
		if err != nil {
			fn(nil, err)
			return
		}
		// Bytes already taken from the terminal are delivered even when a
		// stop raced the read
		if len(data) > 0 {
			fn(data, nil)
		}
		select {
		case <-stopCh:
			return
		default:
		}
	}
}

// stopTimeout bounds how long StopReading waits for a reader parked in the
// backend; it exceeds the unix backend's poll interval
const stopTimeout = 500 * time.Millisecond

// StopReading signals the reader to stop and waits for it to exit, so no
// chunk from this reader arrives after the next StartReading
func (s *Stream) StopReading() {
	s.readMu.Lock()
	if !s.reading {
		s.readMu.Unlock()
		return
	}
	s.reading = false
	stopCh, doneCh := s.readStopCh, s.readDoneCh
	s.readMu.Unlock()

	close(stopCh)
	// Don't block forever if read is stuck
	select {
	case <-doneCh:
	case <-time.After(stopTimeout):
	}
}

// Close stops reading, flushes pending writes and closes the backend
func (s *Stream) Close() error {
	s.StopReading()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh
	return s.backend.Close()
}
