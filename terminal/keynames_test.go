package terminal

import "testing"

func TestSequenceByName(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"enter", "\r", true},
		{"ENTER", "\r", true},
		{"ctrl_w", "\x17", true},
		{"ctrl_a", "\x01", true},
		{"alt_b", "\x1bb", true},
		{"alt_left", "\x1b[1;3D", true},
		{"page_up", "\x1b[5~", true},
		{"pgup", "\x1b[5~", true},
		{"f12", "\x1b[24~", true},
		{"hyper_q", "", false},
	}

	for _, tt := range tests {
		got, ok := SequenceByName(tt.name)
		if ok != tt.ok || got != tt.want {
			t.Errorf("SequenceByName(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNameOf(t *testing.T) {
	tests := []struct {
		seq  string
		want string
	}{
		{"\r", "enter"},
		{"\t", "tab"},
		{"\x08", "ctrl_h"},
		{"\x17", "ctrl_w"},
		{"\x1b[A", "up"},
		{"\x1b[1;5C", "ctrl_right"},
		{"\x1bf", "alt_f"},
		{"\x1b[99~", `"\x1b[99~"`},
	}

	for _, tt := range tests {
		if got := NameOf(tt.seq); got != tt.want {
			t.Errorf("NameOf(%q) = %q, want %q", tt.seq, got, tt.want)
		}
	}
}
