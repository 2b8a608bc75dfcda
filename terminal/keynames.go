package terminal

import (
	"strconv"
	"strings"
)

// nameToSequence maps canonical config key names to the bytes a
// xterm-compatible terminal sends for them
var nameToSequence = map[string]string{
	"enter":     "\r",
	"tab":       "\t",
	"backtab":   "\x1b[Z",
	"backspace": "\x7f",
	"escape":    "\x1b",
	"space":     " ",

	"up":        "\x1b[A",
	"down":      "\x1b[B",
	"right":     "\x1b[C",
	"left":      "\x1b[D",
	"home":      "\x1b[H",
	"end":       "\x1b[F",
	"page_up":   "\x1b[5~",
	"page_down": "\x1b[6~",
	"insert":    "\x1b[2~",
	"delete":    "\x1b[3~",

	"shift_up":    "\x1b[1;2A",
	"shift_down":  "\x1b[1;2B",
	"shift_right": "\x1b[1;2C",
	"shift_left":  "\x1b[1;2D",
	"alt_up":      "\x1b[1;3A",
	"alt_down":    "\x1b[1;3B",
	"alt_right":   "\x1b[1;3C",
	"alt_left":    "\x1b[1;3D",
	"ctrl_up":     "\x1b[1;5A",
	"ctrl_down":   "\x1b[1;5B",
	"ctrl_right":  "\x1b[1;5C",
	"ctrl_left":   "\x1b[1;5D",

	"f1":  "\x1bOP",
	"f2":  "\x1bOQ",
	"f3":  "\x1bOR",
	"f4":  "\x1bOS",
	"f5":  "\x1b[15~",
	"f6":  "\x1b[17~",
	"f7":  "\x1b[18~",
	"f8":  "\x1b[19~",
	"f9":  "\x1b[20~",
	"f10": "\x1b[21~",
	"f11": "\x1b[23~",
	"f12": "\x1b[24~",

	"ctrl_space":         "\x00",
	"ctrl_backslash":     "\x1c",
	"ctrl_bracket_right": "\x1d",
	"ctrl_caret":         "\x1e",
	"ctrl_underscore":    "\x1f",
}

// sequenceToName is the reverse lookup; canonical names win over aliases
var sequenceToName map[string]string

func init() {
	sequenceToName = make(map[string]string, len(nameToSequence)+64)
	for name, seq := range nameToSequence {
		sequenceToName[seq] = name
	}

	// Ctrl+letter and Alt+letter are generated, skipping bytes that already have a name
	for c := byte('a'); c <= 'z'; c++ {
		ctrl := string([]byte{c - 'a' + 1})
		nameToSequence["ctrl_"+string(c)] = ctrl
		if _, ok := sequenceToName[ctrl]; !ok {
			sequenceToName[ctrl] = "ctrl_" + string(c)
		}
		alt := "\x1b" + string(c)
		nameToSequence["alt_"+string(c)] = alt
		sequenceToName[alt] = "alt_" + string(c)
	}

	// Aliases
	nameToSequence["shift_tab"] = nameToSequence["backtab"]
	nameToSequence["return"] = nameToSequence["enter"]
	nameToSequence["esc"] = nameToSequence["escape"]
	nameToSequence["pgup"] = nameToSequence["page_up"]
	nameToSequence["pgdn"] = nameToSequence["page_down"]
}

// SequenceByName resolves a key name such as "ctrl_w" or "alt_left"
func SequenceByName(name string) (string, bool) {
	seq, ok := nameToSequence[strings.ToLower(name)]
	return seq, ok
}

// NameOf returns the canonical name of a key sequence, or its quoted form
func NameOf(seq string) string {
	if name, ok := sequenceToName[seq]; ok {
		return name
	}
	return strconv.Quote(seq)
}
