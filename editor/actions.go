package editor

// historyPage is the distance moved by page-wise history navigation
const historyPage = 10

func ignore(e *Editor, _ []byte) Result {
	return Result{}
}

// accept keeps the line as the history tail when it is non-empty and differs
// from the entry before it; otherwise the draft tail is dropped
func accept(e *Editor, _ []byte) Result {
	text := e.row.Text()
	n := e.history.Len()
	if text != "" && (n < 2 || e.history.At(n-1) != text) {
		e.history.UpdateLast(text)
		if c, ok := e.history.(Committer); ok {
			c.Commit(text)
		}
	} else {
		e.dropTail()
	}
	return Result{Line: text, Accepted: true}
}

func complete(e *Editor, _ []byte) Result {
	if e.completer == nil {
		e.sink.Bell()
		return Result{}
	}

	c := e.completer(e.row.Text()[:e.cursor-1])
	switch {
	case c.Replace:
		e.row.SetTo(c.Line)
		e.cursor = e.row.Len() + 1
		e.emit(e.fullRedraw(c.Line))
		e.touch()
	case len(c.Candidates) > 0:
		e.sink.Output(layoutCandidates(c.Candidates, e.Columns()), false)
	default:
		e.sink.Bell()
	}
	return Result{}
}

func interrupt(e *Editor, _ []byte) Result {
	if e.row.Len() == 0 {
		e.dropTail()
		return Result{Err: ErrInterrupted}
	}
	return killLine(e, nil)
}

func backspace(e *Editor, _ []byte) Result {
	if e.cursor == 1 {
		e.emit("")
		return Result{}
	}
	seq := e.row.BackspaceAt(e.cursor, 1)
	e.cursor--
	e.emit(seq)
	e.touch()
	return Result{}
}

func deleteOrEOF(e *Editor, key []byte) Result {
	if e.row.Len() == 0 {
		e.dropTail()
		return Result{Err: ErrEOF}
	}
	return deleteChar(e, key)
}

func deleteChar(e *Editor, _ []byte) Result {
	if e.cursor > e.row.Len() {
		e.emit("")
		return Result{}
	}
	e.emit(e.row.DeleteAt(e.cursor, 1))
	e.touch()
	return Result{}
}

// transpose swaps the two bytes left of the cursor
func transpose(e *Editor, _ []byte) Result {
	if e.cursor < 3 {
		e.emit("")
		return Result{}
	}
	text := e.row.Text()
	at := e.cursor - 2
	swapped := string([]byte{text[at], text[at-1]})
	seq := e.row.DeleteAt(at, 2)
	seq += e.row.InsertAt(swapped, at)
	e.emit(seq)
	e.touch()
	return Result{}
}

func historyPrev(e *Editor, _ []byte) Result     { e.historyMove(-1); return Result{} }
func historyNext(e *Editor, _ []byte) Result     { e.historyMove(1); return Result{} }
func historyPrevPage(e *Editor, _ []byte) Result { e.historyMove(-historyPage); return Result{} }
func historyNextPage(e *Editor, _ []byte) Result { e.historyMove(historyPage); return Result{} }

// historyMove loads the entry delta steps away, clamped to the history bounds.
// The tail entry is left as it is.
func (e *Editor) historyMove(delta int) {
	n := e.history.Len()
	if n == 0 {
		return
	}
	idx := max(1, min(e.histIdx+delta, n))
	if idx == e.histIdx {
		return
	}
	e.histIdx = idx
	text := e.history.At(idx)
	e.cursor = len(text) + 1
	e.emit(e.fullRedraw(text))
}

func forwardChar(e *Editor, _ []byte) Result {
	e.setCursor(e.cursor + 1)
	e.emit("")
	return Result{}
}

func backwardChar(e *Editor, _ []byte) Result {
	e.setCursor(e.cursor - 1)
	e.emit("")
	return Result{}
}

func lineStart(e *Editor, _ []byte) Result {
	e.cursor = 1
	e.emit("")
	return Result{}
}

func lineEnd(e *Editor, _ []byte) Result {
	e.cursor = e.row.Len() + 1
	e.emit("")
	return Result{}
}

func killLine(e *Editor, _ []byte) Result {
	seq := e.row.Clear()
	e.cursor = 1
	e.emit(seq)
	e.touch()
	return Result{}
}

func killToEnd(e *Editor, _ []byte) Result {
	e.emit(e.row.DeleteFromToEnd(e.cursor))
	e.touch()
	return Result{}
}

func clearScreen(e *Editor, _ []byte) Result {
	e.sink.Redraw()
	return Result{}
}

func killWord(e *Editor, _ []byte) Result {
	start := e.wordLeft()
	seq := e.row.DeleteAt(start, e.cursor-start)
	e.cursor = start
	e.emit(seq)
	e.touch()
	return Result{}
}

func wordLeft(e *Editor, _ []byte) Result {
	e.cursor = e.wordLeft()
	e.emit("")
	return Result{}
}

func wordRight(e *Editor, _ []byte) Result {
	e.cursor = e.wordRight()
	e.emit("")
	return Result{}
}

// insert places the key bytes at the cursor. Typing at the end of a line
// that still fits the terminal only appends; anything else redraws the row.
func insert(e *Editor, key []byte) Result {
	text := string(key)
	if e.cursor-1 == e.row.Len() && e.promptWidth+e.row.Len()+len(text) < e.Columns() {
		seq := e.row.Append(text)
		e.cursor += len(text)
		e.emit(seq)
	} else {
		e.row.InsertAt(text, e.cursor)
		e.cursor += len(text)
		e.emit(e.fullRedraw(e.row.Text()))
	}
	e.touch()
	return Result{}
}
