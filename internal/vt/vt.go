// Package vt wraps a vt10x terminal emulator for tests: sequences written to
// a Screen are interpreted as an xterm would, and rows and the cursor are
// read back with 1-based coordinates.
package vt

import (
	"strings"

	"github.com/hinshun/vt10x"
)

// Screen is an emulated terminal of fixed size
type Screen struct {
	term  vt10x.Terminal
	bells int
}

// New returns a blank screen of the given size with the cursor at home
func New(width, height int) *Screen {
	return &Screen{term: vt10x.New(vt10x.WithSize(width, height))}
}

// Cursor returns the 1-based cursor position
func (s *Screen) Cursor() (row, col int) {
	s.term.Lock()
	defer s.term.Unlock()
	c := s.term.Cursor()
	return c.Y + 1, c.X + 1
}

// Bells returns how many alert bytes were written
func (s *Screen) Bells() int {
	return s.bells
}

// Line returns row r (1-based) with trailing blanks removed
func (s *Screen) Line(r int) string {
	s.term.Lock()
	defer s.term.Unlock()

	cols, rows := s.term.Size()
	if r < 1 || r > rows {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < cols; x++ {
		sb.WriteRune(s.term.Cell(x, r-1).Char)
	}
	return strings.TrimRight(sb.String(), " \x00")
}

// Lines returns every row, trailing blanks removed
func (s *Screen) Lines() []string {
	_, rows := s.term.Size()
	out := make([]string, rows)
	for i := range out {
		out[i] = s.Line(i + 1)
	}
	return out
}

// WriteString interprets p
func (s *Screen) WriteString(p string) {
	// The emulator swallows BEL; the repository never emits it inside a sequence
	s.bells += strings.Count(p, "\a")
	s.term.Write([]byte(p))
}

// Write implements io.Writer
func (s *Screen) Write(p []byte) (int, error) {
	s.WriteString(string(p))
	return len(p), nil
}
