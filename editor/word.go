package editor

// wordLeft returns the column where the word before the cursor starts. The
// prefix ending just before the cursor is shrunk one byte at a time until it
// ends with a word match; column 1 when nothing matches.
func (e *Editor) wordLeft() int {
	text := e.row.Text()
	for end := e.cursor - 1; end >= 1; end-- {
		if loc := e.wordEnd.FindStringIndex(text[:end]); loc != nil {
			return loc[0] + 1
		}
	}
	return 1
}

// wordRight returns the column just past the next word at or after the
// cursor, or the end of the line
func (e *Editor) wordRight() int {
	text := e.row.Text()
	if e.cursor > len(text) {
		return len(text) + 1
	}
	for _, loc := range e.word.FindAllStringIndex(text[e.cursor-1:], -1) {
		if loc[1] > loc[0] {
			return e.cursor + loc[1]
		}
	}
	return len(text) + 1
}
