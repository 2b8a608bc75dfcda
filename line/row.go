// Package line models one terminal row whose displayed text is tracked in a
// buffer. Mutations return the control sequence that brings a row that showed
// the old buffer in sync with the new one; nothing here writes to a terminal.
package line

import "github.com/lixenwraith/statline/terminal"

// Row is a terminal row with content starting after offset reserved columns.
// Content column k (1-based) is displayed at terminal column offset+k.
// Positions are byte offsets into the buffer.
type Row struct {
	index  int
	buf    string
	offset int
}

// New returns an empty row at 1-based terminal row index
func New(index, offset int) *Row {
	if offset < 0 {
		offset = 0
	}
	return &Row{index: index, offset: offset}
}

func (r *Row) Index() int      { return r.index }
func (r *Row) Text() string    { return r.buf }
func (r *Row) Len() int        { return len(r.buf) }
func (r *Row) Offset() int     { return r.offset }
func (r *Row) SetOffset(n int) { r.offset = max(n, 0) }

// clampCol bounds a content column to [1, len+1]
func (r *Row) clampCol(col int) int {
	if col < 1 {
		return 1
	}
	if col > len(r.buf)+1 {
		return len(r.buf) + 1
	}
	return col
}

func (r *Row) moveTo(col int) string {
	return terminal.MoveTo(r.index, r.offset+col)
}

// SetTo replaces the whole buffer
func (r *Row) SetTo(text string) string {
	r.buf = text
	return r.moveTo(1) + terminal.CSI(terminal.EraseLine) + text
}

// Append adds text past the current end; nothing visible is overwritten
func (r *Row) Append(text string) string {
	seq := r.moveTo(len(r.buf)+1) + text
	r.buf += text
	return seq
}

// InsertAt splices text in at col and reissues everything from col onward.
// The reissued tail is never shorter than what it covers, so no erase is needed.
func (r *Row) InsertAt(text string, col int) string {
	col = r.clampCol(col)
	r.buf = r.buf[:col-1] + text + r.buf[col-1:]
	return r.moveTo(col) + r.buf[col-1:]
}

// Prepend inserts text at column 1
func (r *Row) Prepend(text string) string {
	return r.InsertAt(text, 1)
}

// DeleteAt removes count bytes starting at col
func (r *Row) DeleteAt(col, count int) string {
	col = r.clampCol(col)
	count = min(max(count, 0), len(r.buf)-col+1)
	r.buf = r.buf[:col-1] + r.buf[col-1+count:]
	return r.moveTo(col) + terminal.CSI(terminal.EraseLine) + r.buf[col-1:]
}

// BackspaceAt removes the count bytes left of col, stopping at column 1
func (r *Row) BackspaceAt(col, count int) string {
	col = r.clampCol(col)
	start := max(col-max(count, 0), 1)
	return r.DeleteAt(start, col-start)
}

// DeleteFromToEnd truncates the buffer at col
func (r *Row) DeleteFromToEnd(col int) string {
	col = r.clampCol(col)
	r.buf = r.buf[:col-1]
	return r.moveTo(col) + terminal.CSI(terminal.EraseLine)
}

// Clear empties the row
func (r *Row) Clear() string {
	return r.SetTo("")
}

// GoTo places the terminal cursor at content column col
func (r *Row) GoTo(col int) string {
	return r.moveTo(r.clampCol(col))
}

// Redraw reissues the whole row, used after the screen was cleared
func (r *Row) Redraw() string {
	return r.moveTo(1) + terminal.CSI(terminal.EraseLine) + r.buf
}
