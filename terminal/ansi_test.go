package terminal

import (
	"fmt"
	"strings"
	"testing"
)

func TestCSI_AllFinalBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		final := byte(b)
		valid := b >= 0x40 && b <= 0x7e

		got, panicked := buildCSI(Command{Final: final}, 3, 14)
		if valid {
			if panicked {
				t.Fatalf("final 0x%02x: unexpected panic", b)
			}
			want := "\x1b[3;14" + string(final)
			if got != want {
				t.Errorf("final 0x%02x: got %q, want %q", b, got, want)
			}
		} else if !panicked {
			t.Errorf("final 0x%02x: expected panic, got %q", b, got)
		}
	}
}

func buildCSI(cmd Command, args ...int) (s string, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
		}
	}()
	return CSI(cmd, args...), false
}

func TestCSI_Arguments(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		args []int
		want string
	}{
		{"no args", EraseLine, nil, "\x1b[K"},
		{"leading only", EraseScreen, nil, "\x1b[2J"},
		{"leading and args", Command{Final: 'm', Leading: []int{38, 5}}, []int{196}, "\x1b[38;5;196m"},
		{"position", CursorPosition, []int{12, 1}, "\x1b[12;1H"},
		{"large values", CursorPosition, []int{1000, 12345}, "\x1b[1000;12345H"},
		{"negative clamps", CursorForward, []int{-4}, "\x1b[0C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CSI(tt.cmd, tt.args...); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCSI_PanicMessage(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if !strings.Contains(fmt.Sprint(r), "0x1f") {
			t.Errorf("panic message should name the byte, got %v", r)
		}
	}()
	CSI(Command{Final: 0x1f})
}

func TestMoveToAndClear(t *testing.T) {
	if got := MoveTo(3, 7); got != "\x1b[3;7H" {
		t.Errorf("MoveTo: got %q", got)
	}
	if got := ClearScreen(); got != "\x1b[2J\x1b[H" {
		t.Errorf("ClearScreen: got %q", got)
	}
}
