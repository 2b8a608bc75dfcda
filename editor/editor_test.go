package editor

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/lixenwraith/statline/history"
	"github.com/lixenwraith/statline/internal/vt"
)

// fakeSink replays editor writes on a virtual terminal and records the rest
type fakeSink struct {
	scr     *vt.Screen
	cols    int
	writes  []string
	output  string
	bells   int
	redraws int
}

func newFakeSink(cols int) *fakeSink {
	return &fakeSink{scr: vt.New(cols, 4), cols: cols}
}

func (s *fakeSink) Write(seq string) {
	s.writes = append(s.writes, seq)
	s.scr.WriteString(seq)
}

func (s *fakeSink) Output(text string, add bool) {
	if add {
		s.output += text
		return
	}
	s.output = text
}

func (s *fakeSink) Bell()        { s.bells++ }
func (s *fakeSink) Redraw()      { s.redraws++ }
func (s *fakeSink) Columns() int { return s.cols }

type committingMemory struct {
	*history.Memory
	committed []string
}

func (m *committingMemory) Commit(line string) { m.committed = append(m.committed, line) }

const testRow = 2

func newTestEditor(t *testing.T, opts Options) (*Editor, *fakeSink) {
	t.Helper()
	sink := newFakeSink(40)
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	e, err := New(testRow, sink, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if res := e.Begin(); res.Done() {
		t.Fatalf("Begin ended the cycle: %+v", res)
	}
	return e, sink
}

// press feeds keys one chunk at a time and checks the cursor invariants after each
func press(t *testing.T, e *Editor, sink *fakeSink, keys ...string) Result {
	t.Helper()
	var res Result
	for _, k := range keys {
		res = e.HandleKey([]byte(k))
		if res.Done() {
			return res
		}
		if c := e.Cursor(); c < 1 || c > len(e.Text())+1 {
			t.Fatalf("after %q: cursor %d outside [1, %d]", k, c, len(e.Text())+1)
		}
		row, col := sink.scr.Cursor()
		if row != testRow || col != e.Cursor()+e.promptWidth {
			t.Fatalf("after %q: terminal cursor (%d,%d), want (%d,%d)",
				k, row, col, testRow, e.Cursor()+e.promptWidth)
		}
	}
	return res
}

// screenText returns the editor row without the "> " prompt
func screenText(sink *fakeSink) string {
	l := sink.scr.Line(testRow)
	if len(l) <= 2 {
		return ""
	}
	return l[2:]
}

func TestEditor_New(t *testing.T) {
	if _, err := New(1, newFakeSink(80), Options{WordPattern: "("}); err == nil {
		t.Error("invalid word pattern accepted")
	}

	e, _ := newTestEditor(t, Options{Prompt: "héllo> "})
	if e.promptWidth != 7 {
		t.Errorf("promptWidth = %d, want 7", e.promptWidth)
	}
	if e.History().Len() != 1 || e.HistoryIndex() != 1 {
		t.Errorf("Begin: history len %d idx %d, want 1 1", e.History().Len(), e.HistoryIndex())
	}
}

func TestEditor_Editing(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantText   string
		wantCursor int
	}{
		{"type", []string{"hello"}, "hello", 6},
		{"backspace", []string{"abc", "\x7f"}, "ab", 3},
		{"ctrl-h", []string{"abc", "\x08"}, "ab", 3},
		{"backspace at start", []string{"ab", "\x01", "\x7f"}, "ab", 1},
		{"insert middle", []string{"ac", "\x1b[D", "b"}, "abc", 3},
		{"delete", []string{"abc", "\x01", "\x1b[3~"}, "bc", 1},
		{"delete at end", []string{"abc", "\x1b[3~"}, "abc", 4},
		{"ctrl-d non-empty", []string{"abc", "\x02", "\x04"}, "ab", 3},
		{"home end", []string{"abc", "\x1b[H", "\x1b[F"}, "abc", 4},
		{"ctrl-a ctrl-e", []string{"abc", "\x01", "\x05"}, "abc", 4},
		{"left clamps", []string{"a", "\x1b[D", "\x1b[D", "\x1b[D"}, "a", 1},
		{"right clamps", []string{"a", "\x1b[C", "\x06"}, "a", 2},
		{"ss3 arrows", []string{"ab", "\x1bOD", "\x1bOD", "\x1bOC"}, "ab", 2},
		{"kill line", []string{"abc", "\x15"}, "", 1},
		{"ctrl-c clears", []string{"abc", "\x03"}, "", 1},
		{"kill to end", []string{"abcdef", "\x1b[D", "\x1b[D", "\x0b"}, "abcd", 5},
		{"kill word", []string{"foo bar", "\x17"}, "foo ", 5},
		{"kill word twice", []string{"foo bar", "\x17", "\x17"}, "", 1},
		{"transpose", []string{"abc", "\x14"}, "acb", 4},
		{"transpose middle", []string{"abc", "\x02", "\x14"}, "bac", 3},
		{"transpose too short", []string{"a", "\x14"}, "a", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, sink := newTestEditor(t, Options{})
			press(t, e, sink, tt.keys...)

			if e.Text() != tt.wantText {
				t.Errorf("Text() = %q, want %q", e.Text(), tt.wantText)
			}
			if e.Cursor() != tt.wantCursor {
				t.Errorf("Cursor() = %d, want %d", e.Cursor(), tt.wantCursor)
			}
			if got := screenText(sink); got != tt.wantText {
				t.Errorf("screen = %q, want %q", got, tt.wantText)
			}
			// Mutations are mirrored in the history tail
			h := e.History()
			if got := h.At(h.Len()); got != tt.wantText {
				t.Errorf("history tail = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestEditor_WordMotion(t *testing.T) {
	e, sink := newTestEditor(t, Options{})
	press(t, e, sink, "foo bar baz")

	steps := []struct {
		key  string
		want int
	}{
		{"\x1b[1;5D", 9},
		{"\x1bb", 5},
		{"\x1b[1;3D", 1},
		{"\x1b[1;3D", 1},
		{"\x1b[1;5C", 4},
		{"\x1bf", 8},
		{"\x1b\x1b[C", 12},
		{"\x1b[1;5C", 12},
	}
	for _, s := range steps {
		press(t, e, sink, s.key)
		if e.Cursor() != s.want {
			t.Fatalf("after %q: cursor %d, want %d", s.key, e.Cursor(), s.want)
		}
	}

	press(t, e, sink, "\x1b[1;5D", "\x1b[1;5D", "\x1b[1;5C")
	if e.Cursor() != 8 {
		t.Errorf("word right from 5: cursor %d, want 8", e.Cursor())
	}
}

func TestEditor_WordPattern(t *testing.T) {
	e, sink := newTestEditor(t, Options{WordPattern: `[^ ]+`})
	press(t, e, sink, "a.b c-d", "\x17")
	if e.Text() != "a.b " {
		t.Errorf("Text() = %q, want %q", e.Text(), "a.b ")
	}
}

func TestEditor_Accept(t *testing.T) {
	t.Run("line kept", func(t *testing.T) {
		e, sink := newTestEditor(t, Options{})
		res := press(t, e, sink, "hello", "\r")
		if !res.Accepted || res.Line != "hello" || res.Err != nil {
			t.Fatalf("result = %+v", res)
		}
		if e.Active() {
			t.Error("editor still active after accept")
		}
		h := e.History()
		if h.Len() != 1 || h.At(1) != "hello" {
			t.Errorf("history = %d entries, tail %q", h.Len(), h.At(h.Len()))
		}
	})

	t.Run("empty dropped", func(t *testing.T) {
		e, sink := newTestEditor(t, Options{})
		res := press(t, e, sink, "\r")
		if !res.Accepted || res.Line != "" {
			t.Fatalf("result = %+v", res)
		}
		if e.History().Len() != 0 {
			t.Errorf("history len = %d, want 0", e.History().Len())
		}
	})

	t.Run("duplicate dropped", func(t *testing.T) {
		mem := &committingMemory{Memory: history.NewMemory(0, "ls")}
		e, sink := newTestEditor(t, Options{History: mem})
		press(t, e, sink, "ls", "\r")
		if mem.Len() != 1 {
			t.Errorf("history len = %d, want 1", mem.Len())
		}
		if len(mem.committed) != 0 {
			t.Errorf("duplicate committed: %q", mem.committed)
		}
	})

	t.Run("committed", func(t *testing.T) {
		mem := &committingMemory{Memory: history.NewMemory(0)}
		e, sink := newTestEditor(t, Options{History: mem})
		press(t, e, sink, "make", "\r")
		if !slices.Equal(mem.committed, []string{"make"}) {
			t.Errorf("committed = %q", mem.committed)
		}
	})
}

func TestEditor_Terminate(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want error
	}{
		{"ctrl-d empty", []string{"\x04"}, ErrEOF},
		{"ctrl-c empty", []string{"\x03"}, ErrInterrupted},
		{"ctrl-c twice", []string{"abc", "\x03", "\x03"}, ErrInterrupted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := history.NewMemory(0, "old")
			e, sink := newTestEditor(t, Options{History: mem})
			res := press(t, e, sink, tt.keys...)
			if !errors.Is(res.Err, tt.want) {
				t.Fatalf("err = %v, want %v", res.Err, tt.want)
			}
			if res.Accepted {
				t.Error("terminated result marked accepted")
			}
			if !slices.Equal(mem.Lines(), []string{"old"}) {
				t.Errorf("history = %q, want draft dropped", mem.Lines())
			}
		})
	}
}

func TestEditor_HistoryNavigation(t *testing.T) {
	mem := history.NewMemory(0, "one", "two", "three")
	e, sink := newTestEditor(t, Options{History: mem})
	press(t, e, sink, "dr")

	steps := []struct {
		key      string
		wantIdx  int
		wantText string
	}{
		{"\x1b[A", 3, "three"},
		{"\x10", 2, "two"},
		{"\x1bOA", 1, "one"},
		{"\x1b[A", 1, "one"},
		{"\x1b[B", 2, "two"},
		{"\x0e", 3, "three"},
		{"\x1bOB", 4, "dr"},
		{"\x1b[B", 4, "dr"},
		{"\x1b[5~", 1, "one"},
		{"\x1b[1;3B", 4, "dr"},
	}
	for _, s := range steps {
		press(t, e, sink, s.key)
		if e.HistoryIndex() != s.wantIdx || e.Text() != s.wantText {
			t.Fatalf("after %q: idx %d text %q, want %d %q",
				s.key, e.HistoryIndex(), e.Text(), s.wantIdx, s.wantText)
		}
		if e.Cursor() != len(s.wantText)+1 {
			t.Errorf("after %q: cursor %d, want end", s.key, e.Cursor())
		}
		if got := screenText(sink); got != s.wantText {
			t.Errorf("after %q: screen %q", s.key, got)
		}
	}

	// Navigation never rewrites the tail
	if got := mem.At(mem.Len()); got != "dr" {
		t.Errorf("tail = %q, want dr", got)
	}
}

func TestEditor_HistoryClampSilent(t *testing.T) {
	mem := history.NewMemory(0, "one")
	e, sink := newTestEditor(t, Options{History: mem})
	press(t, e, sink, "\x1b[A")

	n := len(sink.writes)
	press(t, e, sink, "\x1b[A", "\x1b[5~")
	if len(sink.writes) != n {
		t.Errorf("clamped history move wrote %q", sink.writes[n:])
	}
}

func TestEditor_EditRecalledLine(t *testing.T) {
	mem := history.NewMemory(0, "one")
	e, sink := newTestEditor(t, Options{History: mem})
	press(t, e, sink, "\x1b[A", "!")

	if got := mem.Lines(); !slices.Equal(got, []string{"one", "one!"}) {
		t.Errorf("history = %q", got)
	}
}

func TestEditor_Unhandled(t *testing.T) {
	e, sink := newTestEditor(t, Options{})
	press(t, e, sink, "ab", "\x1b[Z", "c")

	if sink.output != `unhandled key "\x1b[Z"` {
		t.Errorf("output = %q", sink.output)
	}
	if e.Text() != "abc" {
		t.Errorf("Text() = %q, want abc", e.Text())
	}
}

func TestEditor_MultiKeyChunk(t *testing.T) {
	e, sink := newTestEditor(t, Options{})
	press(t, e, sink, "abc\x1b[D\x1b[DX\x05!")
	if e.Text() != "aXbc!" {
		t.Errorf("Text() = %q, want aXbc!", e.Text())
	}
	if e.Cursor() != 6 {
		t.Errorf("Cursor() = %d, want 6", e.Cursor())
	}
}

func TestEditor_TypeAhead(t *testing.T) {
	e, sink := newTestEditor(t, Options{})

	res := e.HandleKey([]byte("first\rsecond\rthi"))
	if !res.Accepted || res.Line != "first" {
		t.Fatalf("first result = %+v", res)
	}

	// Keys arriving between cycles are queued too
	if res := e.HandleKey([]byte("rd")); res.Done() {
		t.Fatalf("inactive HandleKey returned %+v", res)
	}

	res = e.Begin()
	if !res.Accepted || res.Line != "second" {
		t.Fatalf("second result = %+v", res)
	}

	if res := e.Begin(); res.Done() {
		t.Fatalf("third Begin ended early: %+v", res)
	}
	if e.Text() != "third" {
		t.Errorf("replayed text = %q, want third", e.Text())
	}
	if got := screenText(sink); got != "third" {
		t.Errorf("screen = %q", got)
	}
}

func TestEditor_TypeAheadDiscardedOnTermination(t *testing.T) {
	e, _ := newTestEditor(t, Options{})
	res := e.HandleKey([]byte("\x04more"))
	if !errors.Is(res.Err, ErrEOF) {
		t.Fatalf("err = %v", res.Err)
	}
	e.Begin()
	if e.Text() != "" {
		t.Errorf("Text() = %q after discarded type-ahead", e.Text())
	}
}

func TestEditor_Cancel(t *testing.T) {
	mem := history.NewMemory(0, "keep")
	e, sink := newTestEditor(t, Options{History: mem})
	press(t, e, sink, "x")
	e.Cancel()
	e.Cancel()

	if e.Active() {
		t.Error("active after Cancel")
	}
	if !slices.Equal(mem.Lines(), []string{"keep"}) {
		t.Errorf("history = %q", mem.Lines())
	}
}

func TestEditor_KeyPanic(t *testing.T) {
	boom := Binding{
		Name:     "boom",
		Matchers: []Matcher{Byte(0x18)},
		Action:   func(*Editor, []byte) Result { panic("kaboom") },
	}
	hist := history.NewMemory(0, "ls")
	e, sink := newTestEditor(t, Options{Bindings: []Binding{boom}, History: hist})

	res := e.HandleKey([]byte("a\x18b"))
	if !errors.Is(res.Err, ErrKeyPanic) {
		t.Fatalf("err = %v, want ErrKeyPanic", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "kaboom") {
		t.Errorf("err = %q, want panic value", res.Err)
	}
	if e.Active() {
		t.Error("editor active after panic")
	}
	if got := hist.Lines(); !slices.Equal(got, []string{"ls"}) {
		t.Errorf("history after panic = %q, want [ls]", got)
	}

	// The next cycle recalls the previous command, not a blank draft
	if res := e.Begin(); res.Done() {
		t.Fatalf("Begin ended the cycle: %+v", res)
	}
	press(t, e, sink, "\x1b[A")
	if e.Text() != "ls" {
		t.Errorf("Up after panic = %q, want %q", e.Text(), "ls")
	}
}

func TestEditor_ClearScreen(t *testing.T) {
	e, sink := newTestEditor(t, Options{})
	press(t, e, sink, "\x0c")
	if sink.redraws != 1 {
		t.Errorf("redraws = %d, want 1", sink.redraws)
	}
}

func TestEditor_InsertFastPath(t *testing.T) {
	e, sink := newTestEditor(t, Options{Columns: 10})

	// prompt 2 + 0 + 3 < 10: append only
	n := len(sink.writes)
	press(t, e, sink, "abc")
	if w := sink.writes[n]; strings.Contains(w, "> ") {
		t.Errorf("fast path redrew prompt: %q", w)
	}

	// 2 + 3 + 5 = 10, not below the width: full redraw
	n = len(sink.writes)
	press(t, e, sink, "defgh")
	if w := sink.writes[n]; !strings.Contains(w, "> ") {
		t.Errorf("expected full redraw, got %q", w)
	}

	// Insert in the middle always redraws
	n = len(sink.writes)
	press(t, e, sink, "\x01", "X")
	if w := sink.writes[n+1]; !strings.Contains(w, "> ") {
		t.Errorf("expected full redraw for middle insert, got %q", w)
	}
	if e.Text() != "Xabcdefgh" {
		t.Errorf("Text() = %q", e.Text())
	}
}

func TestEditor_Redraw(t *testing.T) {
	e, sink := newTestEditor(t, Options{})
	press(t, e, sink, "abc", "\x02")

	scr := vt.New(40, 4)
	scr.WriteString(e.Redraw())
	if got := scr.Line(testRow); got != "> abc" {
		t.Errorf("Redraw line = %q", got)
	}
	if row, col := scr.Cursor(); row != testRow || col != 5 {
		t.Errorf("Redraw cursor = (%d,%d), want (%d,5)", row, col, testRow)
	}
	if got := e.GoTo(); got != "\x1b[2;5H" {
		t.Errorf("GoTo() = %q", got)
	}
}

func TestEditor_NoneAction(t *testing.T) {
	keys, err := KeyBindings(map[string]string{"ctrl_t": "none"})
	if err != nil {
		t.Fatal(err)
	}
	e, sink := newTestEditor(t, Options{Bindings: keys})
	press(t, e, sink, "ab", "\x14")
	if e.Text() != "ab" {
		t.Errorf("Text() = %q, want ab unchanged", e.Text())
	}
}
