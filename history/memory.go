// Package history keeps the ordered list of entered lines. Index 1 is the
// oldest entry; the last entry is the line currently being edited.
package history

import "slices"

// Memory is a slice-backed history. A positive limit caps the number of
// entries; appending past it drops the oldest.
type Memory struct {
	lines []string
	limit int
}

// NewMemory returns an empty history; limit <= 0 means unbounded
func NewMemory(limit int, lines ...string) *Memory {
	m := &Memory{limit: max(limit, 0)}
	for _, l := range lines {
		m.Append(l)
	}
	return m
}

func (m *Memory) Len() int { return len(m.lines) }

// At returns entry i (1-based). Out of range indexes panic.
func (m *Memory) At(i int) string {
	return m.lines[i-1]
}

func (m *Memory) Append(line string) {
	m.lines = append(m.lines, line)
	if m.limit > 0 && len(m.lines) > m.limit {
		m.lines = slices.Delete(m.lines, 0, len(m.lines)-m.limit)
	}
}

// UpdateLast overwrites the newest entry, appending when empty
func (m *Memory) UpdateLast(line string) {
	if len(m.lines) == 0 {
		m.Append(line)
		return
	}
	m.lines[len(m.lines)-1] = line
}

func (m *Memory) RemoveLast() {
	if len(m.lines) > 0 {
		m.lines = m.lines[:len(m.lines)-1]
	}
}

// Lines returns a copy of every entry, oldest first
func (m *Memory) Lines() []string {
	return slices.Clone(m.lines)
}
