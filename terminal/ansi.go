package terminal

import (
	"fmt"
	"strconv"
)

// Command identifies a CSI control function by its final byte.
// Leading holds parameters that always precede the caller's arguments.
type Command struct {
	Final   byte
	Leading []int
}

// CSI commands used by rows, the editor and the compositor
var (
	CursorPosition = Command{Final: 'H'} // row;col
	CursorColumn   = Command{Final: 'G'} // col
	CursorForward  = Command{Final: 'C'} // n
	CursorBack     = Command{Final: 'D'} // n
	EraseLine      = Command{Final: 'K'} // cursor to end of line
	EraseLineAll   = Command{Final: 'K', Leading: []int{2}}
	EraseDisplay   = Command{Final: 'J'} // cursor to end of screen
	EraseAbove     = Command{Final: 'J', Leading: []int{1}}
	EraseScreen    = Command{Final: 'J', Leading: []int{2}}
	ResetStyle     = Command{Final: 'm', Leading: []int{0}}
)

// Bell is the audible alert byte
const Bell = "\a"

// Pre-built private-mode fragments, not expressible as numeric CSI arguments
const (
	csi           = "\x1b["
	csiCursorShow = "\x1b[?25h"
	csiAutoWrapOn = "\x1b[?7h"
)

// ValidFinal reports whether b may terminate a CSI sequence
func ValidFinal(b byte) bool {
	return b >= 0x40 && b <= 0x7e
}

// CSI returns ESC [ followed by the leading and given arguments joined by ';'
// and the command's final byte. It panics if the final byte is outside 0x40-0x7E.
func CSI(cmd Command, args ...int) string {
	if !ValidFinal(cmd.Final) {
		panic(fmt.Sprintf("terminal: invalid CSI final byte 0x%02x", cmd.Final))
	}

	buf := make([]byte, 0, len(csi)+1+4*(len(cmd.Leading)+len(args)))
	buf = append(buf, csi...)
	n := 0
	for _, v := range cmd.Leading {
		buf = appendParam(buf, v, n)
		n++
	}
	for _, v := range args {
		buf = appendParam(buf, v, n)
		n++
	}
	buf = append(buf, cmd.Final)
	return string(buf)
}

// MoveTo positions the cursor at a 1-based row and column
func MoveTo(row, col int) string {
	return CSI(CursorPosition, row, col)
}

// ClearScreen erases the whole display and homes the cursor
func ClearScreen() string {
	return CSI(EraseScreen) + CSI(CursorPosition)
}

func appendParam(b []byte, v, i int) []byte {
	if i > 0 {
		b = append(b, ';')
	}
	return appendInt(b, v)
}

// appendInt writes a parameter, clamping negatives to 0
// Single digits are the common case for erase parameters
func appendInt(b []byte, n int) []byte {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		return append(b, byte(n)+'0')
	}
	return strconv.AppendInt(b, int64(n), 10)
}
