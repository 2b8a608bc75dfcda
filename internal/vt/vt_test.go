package vt

import "testing"

func TestScreen(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
		row   int
		col   int
	}{
		{"plain", "abc", []string{"abc", "", ""}, 1, 4},
		{"position", "\x1b[2;3Hxy", []string{"", "  xy", ""}, 2, 5},
		{"home default", "ab\x1b[Hz", []string{"zb", "", ""}, 1, 2},
		{"erase to end", "abcdef\x1b[1;3H\x1b[K", []string{"ab", "", ""}, 1, 3},
		{"erase to start", "abcdef\x1b[1;3H\x1b[1K", []string{"   def", "", ""}, 1, 3},
		{"erase whole line", "abcdef\x1b[2K", []string{"", "", ""}, 1, 7},
		{"erase display", "a\r\nb\r\nc\x1b[2J", []string{"", "", ""}, 3, 2},
		{"relative moves", "abcd\x1b[3Dz\x1b[1Cq", []string{"azcq", "", ""}, 1, 5},
		{"column", "abcd\x1b[2Gx", []string{"axcd", "", ""}, 1, 3},
		{"private ignored", "\x1b[?25lok\x1b[?25h", []string{"ok", "", ""}, 1, 3},
		{"wrap at width", "0123456789AB", []string{"0123456789", "AB", ""}, 2, 3},
		{"backspace", "abc\bx", []string{"abx", "", ""}, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(10, 3)
			s.WriteString(tt.input)
			for i, want := range tt.want {
				if got := s.Line(i + 1); got != want {
					t.Errorf("line %d = %q, want %q", i+1, got, want)
				}
			}
			r, c := s.Cursor()
			if r != tt.row || c != tt.col {
				t.Errorf("cursor = %d,%d, want %d,%d", r, c, tt.row, tt.col)
			}
		})
	}
}

func TestScreen_Bell(t *testing.T) {
	s := New(5, 1)
	s.WriteString("\a\a")
	if s.Bells() != 2 {
		t.Errorf("Bells = %d, want 2", s.Bells())
	}
	if s.Line(1) != "" {
		t.Errorf("bell should not print, got %q", s.Line(1))
	}
}
