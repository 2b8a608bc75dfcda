// Package editor implements an interactive line editor driven by raw key
// chunks. The editor owns one terminal row and never touches a stream itself:
// every change is described by a control sequence handed to a Sink.
//
// State is the cursor column, the row buffer and the history index. A read
// cycle starts with Begin and ends when HandleKey returns a Result that is
// Accepted or carries an error.
package editor

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"

	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/statline/history"
	"github.com/lixenwraith/statline/line"
	"github.com/lixenwraith/statline/terminal"
)

// DefaultWordPattern matches one word
const DefaultWordPattern = `\w+`

var (
	ErrInterrupted = errors.New("editor: interrupted")
	ErrEOF         = errors.New("editor: end of input")
	ErrKeyPanic    = errors.New("editor: key handler panic")
)

// Sink receives everything the editor draws
type Sink interface {
	// Write issues an editor-row fragment
	Write(seq string)
	// Output overwrites (add=false) or appends to the output row
	Output(text string, add bool)
	Bell()
	// Redraw clears the screen and repaints every row
	Redraw()
	Columns() int
}

// History is the ordered, 1-based sequence of lines. The last entry is the
// line being edited and is overwritten as editing proceeds.
type History interface {
	Len() int
	At(i int) string
	Append(line string)
	UpdateLast(line string)
	RemoveLast()
}

// Committer is implemented by histories that persist accepted lines
type Committer interface {
	Commit(line string)
}

// Result reports the outcome of a key chunk. The zero value means editing continues.
type Result struct {
	Line     string
	Accepted bool
	Err      error
}

// Done reports whether the read cycle ended
func (r Result) Done() bool {
	return r.Accepted || r.Err != nil
}

// Options configure an Editor
type Options struct {
	Prompt      string
	WordPattern string // DefaultWordPattern when empty
	History     History
	Completer   Completer
	// Bindings are consulted before the default table
	Bindings []Binding
	// Columns overrides the width reported by the sink when positive
	Columns int
}

// Editor is the line editor state machine
type Editor struct {
	row         *line.Row
	cursor      int
	histIdx     int
	prompt      string
	promptWidth int

	word    *regexp.Regexp
	wordEnd *regexp.Regexp

	history   History
	completer Completer
	bindings  []Binding
	sink      Sink
	columns   int

	active  bool
	pending []byte // type-ahead left over from an accepted line
}

// New creates an editor drawing on terminal row index
func New(index int, sink Sink, opts Options) (*Editor, error) {
	pattern := opts.WordPattern
	if pattern == "" {
		pattern = DefaultWordPattern
	}
	word, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("editor: word pattern %q: %w", pattern, err)
	}
	wordEnd := regexp.MustCompile("(?:" + pattern + ")$")

	hist := opts.History
	if hist == nil {
		hist = history.NewMemory(0)
	}

	e := &Editor{
		row:       line.New(index, 0),
		cursor:    1,
		word:      word,
		wordEnd:   wordEnd,
		history:   hist,
		completer: opts.Completer,
		sink:      sink,
		columns:   opts.Columns,
	}
	e.bindings = append(e.bindings, opts.Bindings...)
	e.bindings = append(e.bindings, DefaultBindings()...)
	e.SetPrompt(opts.Prompt)
	return e, nil
}

// SetPrompt changes the prompt; it takes effect on the next full redraw
func (e *Editor) SetPrompt(prompt string) {
	e.prompt = prompt
	e.promptWidth = runewidth.StringWidth(prompt)
	e.row.SetOffset(e.promptWidth)
}

func (e *Editor) Prompt() string      { return e.prompt }
func (e *Editor) Text() string        { return e.row.Text() }
func (e *Editor) Cursor() int         { return e.cursor }
func (e *Editor) HistoryIndex() int   { return e.histIdx }
func (e *Editor) History() History    { return e.history }
func (e *Editor) Index() int          { return e.row.Index() }
func (e *Editor) Active() bool        { return e.active }
func (e *Editor) Bindings() []Binding { return e.bindings }

// Columns returns the terminal width used for layout decisions
func (e *Editor) Columns() int {
	if e.columns > 0 {
		return e.columns
	}
	if c := e.sink.Columns(); c > 0 {
		return c
	}
	return terminal.DefaultColumns
}

// Begin starts a read cycle: a fresh history tail, an empty line and a full
// redraw. Type-ahead from the previous cycle is replayed, so the returned
// Result may already end the cycle.
func (e *Editor) Begin() Result {
	e.history.Append("")
	e.histIdx = e.history.Len()
	e.cursor = 1
	e.active = true
	e.emit(e.fullRedraw(""))

	if len(e.pending) == 0 {
		return Result{}
	}
	pending := e.pending
	e.pending = nil
	return e.HandleKey(pending)
}

// Cancel ends the current read cycle from outside (input error, context
// cancellation). The draft entry is dropped and type-ahead discarded.
func (e *Editor) Cancel() {
	if !e.active {
		return
	}
	e.active = false
	e.pending = nil
	e.dropTail()
}

// HandleKey dispatches one input chunk. A panic in a key action ends the
// cycle with an error wrapping ErrKeyPanic and drops the draft entry.
func (e *Editor) HandleKey(chunk []byte) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("editor: key %q: panic: %v", chunk, r)
			if e.active {
				e.dropTail()
			}
			e.active = false
			e.pending = nil
			res = Result{Err: fmt.Errorf("%w: %v", ErrKeyPanic, r)}
		}
	}()

	if !e.active {
		e.pending = append(e.pending, chunk...)
		return Result{}
	}

	for len(chunk) > 0 {
		b, n := e.lookup(chunk)
		var r Result
		if b == nil {
			n = terminal.KeyLength(chunk)
			e.unhandled(chunk[:n])
		} else {
			r = b.Action(e, chunk[:n])
		}
		chunk = chunk[n:]

		switch {
		case r.Accepted:
			e.active = false
			if len(chunk) > 0 {
				e.pending = append([]byte(nil), chunk...)
			}
			return r
		case r.Err != nil:
			e.active = false
			e.pending = nil
			return r
		}
	}
	return Result{}
}

// lookup finds the first binding whose matcher consumes a non-empty prefix
func (e *Editor) lookup(chunk []byte) (*Binding, int) {
	for i := range e.bindings {
		for _, m := range e.bindings[i].Matchers {
			if n := m.Match(chunk); n > 0 {
				return &e.bindings[i], min(n, len(chunk))
			}
		}
	}
	return nil, 0
}

// unhandled reports one framed key on the output row. A chunk holding
// several unknown keys is reported key by key while dispatch continues.
func (e *Editor) unhandled(key []byte) {
	msg := "unhandled key " + strconv.Quote(string(key))
	log.Printf("editor: %s", msg)
	e.sink.Output(msg, false)
}

// Redraw returns the sequence repainting the prompt and line with the cursor in place
func (e *Editor) Redraw() string {
	return e.fullRedraw(e.row.Text()) + e.row.GoTo(e.cursor)
}

// GoTo returns the sequence placing the terminal cursor at the editor cursor
func (e *Editor) GoTo() string {
	return e.row.GoTo(e.cursor)
}

func (e *Editor) fullRedraw(text string) string {
	return terminal.MoveTo(e.row.Index(), 1) + e.prompt + e.row.SetTo(text)
}

// emit writes seq followed by the cursor return
func (e *Editor) emit(seq string) {
	e.sink.Write(seq + e.row.GoTo(e.cursor))
}

// touch mirrors the buffer into the history tail
func (e *Editor) touch() {
	if e.history.Len() > 0 {
		e.history.UpdateLast(e.row.Text())
	}
}

func (e *Editor) dropTail() {
	if e.history.Len() > 0 {
		e.history.RemoveLast()
	}
}

func (e *Editor) setCursor(col int) {
	e.cursor = max(1, min(col, e.row.Len()+1))
}
