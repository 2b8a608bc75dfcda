package editor

import "bytes"

// Matcher reports how many leading bytes of chunk form its key, 0 for no match.
// chunk is never empty.
type Matcher interface {
	Match(chunk []byte) int
}

// Byte matches a single exact byte
type Byte byte

func (b Byte) Match(chunk []byte) int {
	if chunk[0] == byte(b) {
		return 1
	}
	return 0
}

// Seq matches an exact byte sequence at the start of the chunk
type Seq string

func (s Seq) Match(chunk []byte) int {
	if len(s) > 0 && bytes.HasPrefix(chunk, []byte(s)) {
		return len(s)
	}
	return 0
}

// MatchFunc is a custom predicate over the raw chunk and its first byte
type MatchFunc func(chunk []byte, first byte) int

func (f MatchFunc) Match(chunk []byte) int {
	return f(chunk, chunk[0])
}

// Action runs with the consumed key bytes
type Action func(e *Editor, key []byte) Result

// Binding ties matchers to an action. Bindings are consulted in order and
// within a binding matchers are tried in order.
type Binding struct {
	Name     string
	Matchers []Matcher
	Action   Action
}

// printableRun consumes the longest run of bytes above 31, excluding DEL
func printableRun(chunk []byte, first byte) int {
	n := 0
	for n < len(chunk) && chunk[n] > 31 && chunk[n] != 127 {
		n++
	}
	return n
}

// DefaultBindings returns the canonical key table. Control bytes come first,
// then escape sequences, then the printable catch-all.
func DefaultBindings() []Binding {
	return []Binding{
		{"accept", []Matcher{Byte(13)}, accept},
		{"complete", []Matcher{Byte(9)}, complete},
		{"interrupt", []Matcher{Byte(3)}, interrupt},
		{"backspace", []Matcher{Byte(127), Byte(8)}, backspace},
		{"delete_or_eof", []Matcher{Byte(4)}, deleteOrEOF},
		{"transpose", []Matcher{Byte(20)}, transpose},
		{"history_prev", []Matcher{Seq("\x1b[A"), Seq("\x1bOA"), Byte(16)}, historyPrev},
		{"history_next", []Matcher{Seq("\x1b[B"), Seq("\x1bOB"), Byte(14)}, historyNext},
		{"forward_char", []Matcher{Seq("\x1b[C"), Seq("\x1bOC"), Byte(6)}, forwardChar},
		{"backward_char", []Matcher{Seq("\x1b[D"), Seq("\x1bOD"), Byte(2)}, backwardChar},
		{"line_start", []Matcher{Seq("\x1b[H"), Seq("\x1bOH"), Seq("\x1b[1~"), Seq("\x1b[7~"), Byte(1)}, lineStart},
		{"line_end", []Matcher{Seq("\x1b[F"), Seq("\x1bOF"), Seq("\x1b[4~"), Seq("\x1b[8~"), Byte(5)}, lineEnd},
		{"kill_line", []Matcher{Byte(21)}, killLine},
		{"kill_to_end", []Matcher{Byte(11)}, killToEnd},
		{"clear_screen", []Matcher{Byte(12)}, clearScreen},
		{"kill_word", []Matcher{Byte(23)}, killWord},
		{"delete_char", []Matcher{Seq("\x1b[3~")}, deleteChar},
		{"word_left", []Matcher{Seq("\x1b[1;5D"), Seq("\x1b[1;3D"), Seq("\x1bb"), Seq("\x1b\x1b[D")}, wordLeft},
		{"word_right", []Matcher{Seq("\x1b[1;5C"), Seq("\x1b[1;3C"), Seq("\x1bf"), Seq("\x1b\x1b[C")}, wordRight},
		{"history_prev_page", []Matcher{Seq("\x1b[1;3A"), Seq("\x1b\x1b[A"), Seq("\x1b[5~")}, historyPrevPage},
		{"history_next_page", []Matcher{Seq("\x1b[1;3B"), Seq("\x1b\x1b[B"), Seq("\x1b[6~")}, historyNextPage},
		{"insert", []Matcher{MatchFunc(printableRun)}, insert},
	}
}

// actionRegistry maps action names used in key configuration to actions
var actionRegistry = map[string]Action{
	"none": ignore,

	"accept":            accept,
	"complete":          complete,
	"interrupt":         interrupt,
	"backspace":         backspace,
	"delete_or_eof":     deleteOrEOF,
	"delete_char":       deleteChar,
	"transpose":         transpose,
	"history_prev":      historyPrev,
	"history_next":      historyNext,
	"history_prev_page": historyPrevPage,
	"history_next_page": historyNextPage,
	"forward_char":      forwardChar,
	"backward_char":     backwardChar,
	"line_start":        lineStart,
	"line_end":          lineEnd,
	"kill_line":         killLine,
	"kill_to_end":       killToEnd,
	"kill_word":         killWord,
	"clear_screen":      clearScreen,
	"word_left":         wordLeft,
	"word_right":        wordRight,
	"insert":            insert,
}

// ActionByName resolves an action name from key configuration
func ActionByName(name string) (Action, bool) {
	a, ok := actionRegistry[name]
	return a, ok
}

// ActionNames returns every registered action name
func ActionNames() []string {
	names := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		names = append(names, name)
	}
	return names
}
