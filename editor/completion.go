package editor

import (
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Completion is the result of a completion hook. The zero value means no
// completion and rings the bell.
type Completion struct {
	Line       string // replaces the whole buffer when Replace is set
	Replace    bool
	Candidates []string
}

// Replace returns a completion replacing the buffer with line
func Replace(line string) Completion {
	return Completion{Line: line, Replace: true}
}

// Candidates returns a completion listing choices on the output row
func Candidates(c ...string) Completion {
	return Completion{Candidates: c}
}

// Completer is called with the text left of the cursor
type Completer func(head string) Completion

// PrefixCompleter completes the last space-separated word of the head from
// words. A unique match is completed with a trailing space; several matches
// complete to their longest common prefix, or are listed when that adds nothing.
func PrefixCompleter(words []string) Completer {
	sorted := slices.Clone(words)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	return func(head string) Completion {
		start := strings.LastIndexByte(head, ' ') + 1
		prefix := head[start:]

		var matches []string
		for _, w := range sorted {
			if strings.HasPrefix(w, prefix) {
				matches = append(matches, w)
			}
		}

		switch len(matches) {
		case 0:
			return Completion{}
		case 1:
			return Replace(head[:start] + matches[0] + " ")
		}

		if common := commonPrefix(matches); len(common) > len(prefix) {
			return Replace(head[:start] + common)
		}
		return Candidates(matches...)
	}
}

func commonPrefix(words []string) string {
	p := words[0]
	for _, w := range words[1:] {
		n := 0
		for n < len(p) && n < len(w) && p[n] == w[n] {
			n++
		}
		p = p[:n]
	}
	return p
}

// layoutCandidates arranges candidates in equal-width cells on one row of
// the given width. Candidates that do not fit are summarised as "+N".
func layoutCandidates(cands []string, width int) string {
	cell := 0
	for _, c := range cands {
		cell = max(cell, runewidth.StringWidth(c))
	}
	cell += 2

	var sb strings.Builder
	used := 0
	for i, c := range cands {
		rest := len(cands) - i - 1
		need := cell
		if rest > 0 {
			// Leave room for the overflow marker
			need += len(" +") + len(strconv.Itoa(rest))
		}
		if used+need > width && i > 0 {
			sb.WriteString("+")
			sb.WriteString(strconv.Itoa(len(cands) - i))
			break
		}
		if i == len(cands)-1 {
			sb.WriteString(c)
		} else {
			sb.WriteString(runewidth.FillRight(c, cell))
		}
		used += cell
	}
	return runewidth.Truncate(sb.String(), width, "")
}
