// Package toml reads and writes the TOML subset used for configuration and
// history files: tables, arrays of tables, dotted keys, basic and literal
// strings, integers, floats, booleans, arrays and inline tables. Dates are
// not supported; durations are carried as strings and decoded into
// time.Duration fields.
package toml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type itemKind uint8

const (
	itemEOF itemKind = iota
	itemNewline
	itemBare   // bare key or keyword
	itemString // quoted, already unescaped
	itemNumber
	itemPunct // one of = . , [ ] { }
)

type item struct {
	kind itemKind
	text string
	line int
}

func (it item) String() string {
	switch it.kind {
	case itemEOF:
		return "end of input"
	case itemNewline:
		return "newline"
	}
	return strconv.Quote(it.text)
}

// Error is a syntax error with the line it occurred on
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("toml: line %d: %s", e.Line, e.Msg)
}

// scanner splits input into items. Comments and blank space are dropped.
type scanner struct {
	src  string
	pos  int
	line int
}

func newScanner(src []byte) *scanner {
	return &scanner{src: string(src), line: 1}
}

func (s *scanner) errorf(format string, args ...any) error {
	return &Error{Line: s.line, Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) next() (item, error) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == ' ' || c == '\t' || c == '\r' {
			s.pos++
			continue
		}
		if c == '#' {
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
			continue
		}
		break
	}
	if s.pos >= len(s.src) {
		return item{kind: itemEOF, line: s.line}, nil
	}

	c := s.src[s.pos]
	switch {
	case c == '\n':
		s.pos++
		s.line++
		return item{kind: itemNewline, text: "\n", line: s.line - 1}, nil
	case strings.IndexByte("=.,[]{}", c) >= 0:
		s.pos++
		return item{kind: itemPunct, text: string(c), line: s.line}, nil
	case c == '"':
		return s.basicString()
	case c == '\'':
		return s.literalString()
	case isBareByte(c) || c == '+':
		return s.word()
	}

	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return item{}, s.errorf("unexpected character %q", r)
}

func isBareByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// word reads a bare key, keyword or number. Dots and signs belong to a word
// only when it starts like a number, so a.b stays a dotted key.
func (s *scanner) word() (item, error) {
	start := s.pos
	c := s.src[start]
	numeric := c >= '0' && c <= '9' || c == '+' || c == '-' && start+1 < len(s.src) && s.src[start+1] >= '0' && s.src[start+1] <= '9'

	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isBareByte(c) || numeric && (c == '.' || c == '+') {
			s.pos++
			continue
		}
		break
	}
	text := s.src[start:s.pos]
	if numeric && looksNumeric(text) {
		return item{kind: itemNumber, text: text, line: s.line}, nil
	}
	if text[0] == '+' {
		return item{}, s.errorf("invalid number %q", text)
	}
	return item{kind: itemBare, text: text, line: s.line}, nil
}

// looksNumeric accepts decimal, prefixed and float forms; parse errors are
// reported later with the value
func looksNumeric(s string) bool {
	body := strings.TrimLeft(s, "+-")
	if body == "inf" || body == "nan" {
		return true
	}
	if len(body) > 2 && body[0] == '0' && strings.ContainsRune("xob", rune(body[1])) {
		return true
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		if !(c >= '0' && c <= '9' || c == '_' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-') {
			return false
		}
	}
	return body != ""
}

func (s *scanner) basicString() (item, error) {
	s.pos++ // opening quote
	var sb strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '"':
			s.pos++
			return item{kind: itemString, text: sb.String(), line: s.line}, nil
		case '\n':
			return item{}, s.errorf("newline in string")
		case '\\':
			if err := s.escape(&sb); err != nil {
				return item{}, err
			}
		default:
			sb.WriteByte(c)
			s.pos++
		}
	}
	return item{}, s.errorf("unterminated string")
}

func (s *scanner) escape(sb *strings.Builder) error {
	if s.pos+1 >= len(s.src) {
		return s.errorf("unterminated escape")
	}
	c := s.src[s.pos+1]
	s.pos += 2
	switch c {
	case '"', '\\':
		sb.WriteByte(c)
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'e':
		sb.WriteByte(0x1b)
	case 'u', 'U':
		n := 4
		if c == 'U' {
			n = 8
		}
		if s.pos+n > len(s.src) {
			return s.errorf("short unicode escape")
		}
		v, err := strconv.ParseUint(s.src[s.pos:s.pos+n], 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return s.errorf("invalid unicode escape %q", s.src[s.pos:s.pos+n])
		}
		sb.WriteRune(rune(v))
		s.pos += n
	default:
		return s.errorf("invalid escape \\%c", c)
	}
	return nil
}

func (s *scanner) literalString() (item, error) {
	s.pos++
	end := strings.IndexAny(s.src[s.pos:], "'\n")
	if end < 0 || s.src[s.pos+end] == '\n' {
		return item{}, s.errorf("unterminated literal string")
	}
	text := s.src[s.pos : s.pos+end]
	s.pos += end + 1
	return item{kind: itemString, text: text, line: s.line}, nil
}
