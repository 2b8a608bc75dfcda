package terminal

import "unicode/utf8"

// KeyLength returns the length of the first key in chunk: one escape
// sequence (CSI, SS3 or Alt-prefixed byte), one control byte, or one UTF-8
// character. Incomplete sequences consume the rest of the chunk.
func KeyLength(chunk []byte) int {
	n := len(chunk)
	if n == 0 {
		return 0
	}

	b := chunk[0]
	switch {
	case b == 0x1b:
		return escapeLength(chunk)
	case b < 0x20 || b == 0x7f:
		return 1
	case b < 0x80:
		return 1
	}

	_, size := utf8.DecodeRune(chunk)
	return size
}

// escapeLength frames an escape sequence starting at chunk[0]
func escapeLength(chunk []byte) int {
	n := len(chunk)
	if n < 2 {
		return n
	}

	switch chunk[1] {
	case '[':
		return csiLength(chunk)
	case 'O':
		// SS3: ESC O <final>
		if n < 3 {
			return n
		}
		return 3
	case 0x1b:
		// ESC ESC: Alt+Escape, or Alt+<sequence> on terminals that prefix ESC
		if n > 2 && (chunk[2] == '[' || chunk[2] == 'O') {
			return 1 + escapeLength(chunk[1:])
		}
		return 2
	}

	// Alt+byte
	return 2
}

// csiLength scans parameter and intermediate bytes up to the final byte
func csiLength(chunk []byte) int {
	n := len(chunk)
	// SGR mouse and similar private prefixes are ordinary parameter bytes here
	for i := 2; i < n; i++ {
		b := chunk[i]
		if ValidFinal(b) {
			return i + 1
		}
		if b < 0x20 || b > 0x7e {
			// Malformed: stop before the offending byte
			return i
		}
	}
	return n
}
