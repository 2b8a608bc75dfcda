package editor

import (
	"reflect"
	"strings"
	"testing"
)

func TestPrefixCompleter(t *testing.T) {
	complete := PrefixCompleter([]string{"help", "history", "exit", "echo", "cat", "catalog", "help"})

	tests := []struct {
		head string
		want Completion
	}{
		{"he", Replace("help ")},
		{"hi", Replace("history ")},
		{"h", Candidates("help", "history")},
		{"", Candidates("cat", "catalog", "echo", "exit", "help", "history")},
		{"ca", Replace("cat")},
		{"echo he", Replace("echo help ")},
		{"git x", Completion{}},
		{"zzz", Completion{}},
	}

	for _, tt := range tests {
		t.Run(tt.head, func(t *testing.T) {
			got := complete(tt.head)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("complete(%q) = %+v, want %+v", tt.head, got, tt.want)
			}
		})
	}
}

func TestLayoutCandidates(t *testing.T) {
	tests := []struct {
		name  string
		cands []string
		width int
		want  string
	}{
		{"fits", []string{"alpha", "beta", "gamma"}, 40, "alpha  beta   gamma"},
		{"overflow", []string{"alpha", "beta", "gamma"}, 20, "alpha  beta   +1"},
		{"single", []string{"only"}, 40, "only"},
		{"first always shown", []string{"averyveryverylongword", "b"}, 10, "averyveryv"},
		{"wide runes", []string{"日本", "ab"}, 40, "日本  ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := layoutCandidates(tt.cands, tt.width); got != tt.want {
				t.Errorf("layoutCandidates() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEditor_Complete(t *testing.T) {
	words := PrefixCompleter([]string{"help", "history", "exit"})

	t.Run("no completer", func(t *testing.T) {
		e, sink := newTestEditor(t, Options{})
		press(t, e, sink, "he", "\t")
		if sink.bells != 1 {
			t.Errorf("bells = %d, want 1", sink.bells)
		}
	})

	t.Run("replace", func(t *testing.T) {
		e, sink := newTestEditor(t, Options{Completer: words})
		press(t, e, sink, "he", "\t")
		if e.Text() != "help " || e.Cursor() != 6 {
			t.Errorf("text %q cursor %d, want %q 6", e.Text(), e.Cursor(), "help ")
		}
		if got := screenText(sink); got != "help" {
			t.Errorf("screen = %q", got)
		}
		h := e.History()
		if h.At(h.Len()) != "help " {
			t.Errorf("history tail = %q", h.At(h.Len()))
		}
	})

	t.Run("head is left of cursor", func(t *testing.T) {
		var got string
		spy := func(head string) Completion { got = head; return Completion{} }
		e, sink := newTestEditor(t, Options{Completer: spy})
		press(t, e, sink, "abc def", "\x1b[D", "\x1b[D", "\t")
		if got != "abc d" {
			t.Errorf("completer head = %q, want %q", got, "abc d")
		}
		if sink.bells != 1 {
			t.Errorf("bells = %d, want 1", sink.bells)
		}
	})

	t.Run("candidates", func(t *testing.T) {
		e, sink := newTestEditor(t, Options{Completer: words})
		press(t, e, sink, "h", "\t")
		if !strings.HasPrefix(sink.output, "help") || !strings.Contains(sink.output, "history") {
			t.Errorf("output = %q", sink.output)
		}
		if e.Text() != "h" {
			t.Errorf("candidates changed the line: %q", e.Text())
		}
		if sink.bells != 0 {
			t.Errorf("bells = %d, want 0", sink.bells)
		}
	})
}

func TestKeyBindings(t *testing.T) {
	bindings, err := KeyBindings(map[string]string{
		"ctrl_o":   "Accept",
		"alt_left": "line_start",
		"f5":       " kill_line ",
	})
	if err != nil {
		t.Fatalf("KeyBindings: %v", err)
	}

	var names []string
	for _, b := range bindings {
		names = append(names, b.Name)
	}
	want := []string{"line_start", "kill_line", "accept"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %q, want %q", names, want)
	}

	errTests := []struct {
		name string
		keys map[string]string
		want string
	}{
		{"unknown key", map[string]string{"hyper_q": "accept"}, "unknown key name"},
		{"unknown action", map[string]string{"ctrl_o": "fly"}, "unknown action"},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KeyBindings(tt.keys)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestKeyBindings_Override(t *testing.T) {
	keys, err := KeyBindings(map[string]string{"alt_left": "line_start"})
	if err != nil {
		t.Fatal(err)
	}
	e, sink := newTestEditor(t, Options{Bindings: keys})
	press(t, e, sink, "foo bar", "\x1b[1;3D")
	if e.Cursor() != 1 {
		t.Errorf("Cursor() = %d, want 1", e.Cursor())
	}
}

func TestBindingFor(t *testing.T) {
	e, _ := newTestEditor(t, Options{})

	tests := []struct {
		chunk string
		name  string
		n     int
	}{
		{"\x1b[A", "history_prev", 3},
		{"abc\r", "insert", 3},
		{"\r", "accept", 1},
		{"\x1b[1;5D", "word_left", 6},
		{"\x1b[Z", "", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		name, n := e.BindingFor([]byte(tt.chunk))
		if name != tt.name || n != tt.n {
			t.Errorf("BindingFor(%q) = %q %d, want %q %d", tt.chunk, name, n, tt.name, tt.n)
		}
	}
}

func TestDefaultBindings_Registered(t *testing.T) {
	for _, b := range DefaultBindings() {
		if _, ok := ActionByName(b.Name); !ok {
			t.Errorf("binding %q has no registered action", b.Name)
		}
	}
	if len(ActionNames()) != len(actionRegistry) {
		t.Errorf("ActionNames() returned %d names", len(ActionNames()))
	}
}
