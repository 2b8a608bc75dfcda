package toml

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parser builds a document tree of map[string]any, []any, string, int64,
// float64 and bool values. Arrays of tables are []map[string]any.
type Parser struct {
	s    *scanner
	tok  item
	root map[string]any
	cur  map[string]any

	// explicit tracks tables opened by a [header] so redefinition is caught
	explicit map[string]bool
}

func NewParser(data []byte) *Parser {
	root := make(map[string]any)
	return &Parser{
		s:        newScanner(data),
		root:     root,
		cur:      root,
		explicit: make(map[string]bool),
	}
}

// Parse consumes the whole input
func (p *Parser) Parse() (map[string]any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	for p.tok.kind != itemEOF {
		if p.tok.kind == itemNewline {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}

		var err error
		if p.isPunct("[") {
			err = p.header()
		} else {
			err = p.keyValue(p.cur)
		}
		if err != nil {
			return nil, err
		}
		if err := p.endOfStatement(); err != nil {
			return nil, err
		}
	}
	return p.root, nil
}

func (p *Parser) advance() error {
	it, err := p.s.next()
	if err != nil {
		return err
	}
	p.tok = it
	return nil
}

func (p *Parser) isPunct(c string) bool {
	return p.tok.kind == itemPunct && p.tok.text == c
}

func (p *Parser) errorf(format string, args ...any) error {
	return &Error{Line: p.tok.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(c string) error {
	if !p.isPunct(c) {
		return p.errorf("expected %q, found %s", c, p.tok)
	}
	return p.advance()
}

func (p *Parser) endOfStatement() error {
	switch p.tok.kind {
	case itemNewline:
		return p.advance()
	case itemEOF:
		return nil
	}
	return p.errorf("unexpected %s after value", p.tok)
}

// header handles [a.b] and [[a.b]]
func (p *Parser) header() error {
	if err := p.advance(); err != nil {
		return err
	}
	array := p.isPunct("[")
	if array {
		if err := p.advance(); err != nil {
			return err
		}
	}

	path, err := p.key()
	if err != nil {
		return err
	}
	if err := p.expect("]"); err != nil {
		return err
	}
	if array {
		if err := p.expect("]"); err != nil {
			return err
		}
	}

	parent := p.root
	for _, k := range path[:len(path)-1] {
		if parent, err = p.descend(parent, k); err != nil {
			return err
		}
	}
	last := path[len(path)-1]
	full := strings.Join(path, "\x00")

	if array {
		var list []map[string]any
		switch v := parent[last].(type) {
		case nil:
		case []map[string]any:
			list = v
		default:
			return p.errorf("key %q is not an array of tables", last)
		}
		t := make(map[string]any)
		parent[last] = append(list, t)
		p.cur = t
		// Subtables of a new array element may be declared again
		for k := range p.explicit {
			if strings.HasPrefix(k, full+"\x00") {
				delete(p.explicit, k)
			}
		}
		return nil
	}

	if p.explicit[full] {
		return p.errorf("table [%s] defined twice", strings.Join(path, "."))
	}
	p.explicit[full] = true
	t, err := p.descend(parent, last)
	if err != nil {
		return err
	}
	p.cur = t
	return nil
}

// descend returns the table under key k, creating it when absent. For an
// array of tables the last element is used.
func (p *Parser) descend(m map[string]any, k string) (map[string]any, error) {
	switch v := m[k].(type) {
	case nil:
		t := make(map[string]any)
		m[k] = t
		return t, nil
	case map[string]any:
		return v, nil
	case []map[string]any:
		if len(v) == 0 {
			return nil, p.errorf("key %q is an empty array of tables", k)
		}
		return v[len(v)-1], nil
	}
	return nil, p.errorf("key %q is not a table", k)
}

// key reads a dotted key
func (p *Parser) key() ([]string, error) {
	var parts []string
	for {
		switch p.tok.kind {
		case itemBare, itemString, itemNumber:
		default:
			return nil, p.errorf("expected key, found %s", p.tok)
		}
		parts = append(parts, p.tok.text)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.isPunct(".") {
			return parts, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) keyValue(table map[string]any) error {
	path, err := p.key()
	if err != nil {
		return err
	}
	if err := p.expect("="); err != nil {
		return err
	}
	val, err := p.value()
	if err != nil {
		return err
	}

	for _, k := range path[:len(path)-1] {
		if table, err = p.descend(table, k); err != nil {
			return err
		}
	}
	last := path[len(path)-1]
	if _, dup := table[last]; dup {
		return p.errorf("duplicate key %q", last)
	}
	table[last] = val
	return nil
}

func (p *Parser) value() (any, error) {
	tok := p.tok
	switch {
	case tok.kind == itemString:
		return tok.text, p.advance()
	case tok.kind == itemNumber:
		v, err := parseNumber(tok.text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		return v, p.advance()
	case tok.kind == itemBare:
		var v any
		switch tok.text {
		case "true":
			v = true
		case "false":
			v = false
		case "inf":
			v = math.Inf(1)
		case "nan":
			v = math.NaN()
		default:
			return nil, p.errorf("invalid value %q", tok.text)
		}
		return v, p.advance()
	case p.isPunct("["):
		return p.array()
	case p.isPunct("{"):
		return p.inlineTable()
	}
	return nil, p.errorf("expected value, found %s", tok)
}

func (p *Parser) skipNewlines() error {
	for p.tok.kind == itemNewline {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

// array reads [v, v, ...]; newlines and a trailing comma are allowed
func (p *Parser) array() ([]any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	list := []any{}
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.isPunct("]") {
			return list, p.advance()
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		list = append(list, v)

		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.isPunct("]") {
			return nil, p.errorf("expected ',' or ']' in array, found %s", p.tok)
		}
	}
}

func (p *Parser) inlineTable() (map[string]any, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	t := make(map[string]any)
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.isPunct("}") {
			return t, p.advance()
		}
		if err := p.keyValue(t); err != nil {
			return nil, err
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if !p.isPunct("}") {
			return nil, p.errorf("expected ',' or '}' in inline table, found %s", p.tok)
		}
	}
}

// parseNumber returns int64 for integers and float64 for floats
func parseNumber(s string) (any, error) {
	clean := strings.ReplaceAll(s, "_", "")
	body := strings.TrimLeft(clean, "+-")
	neg := strings.HasPrefix(clean, "-")

	switch body {
	case "inf":
		if neg {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	case "nan":
		return math.NaN(), nil
	}

	if len(body) > 2 && body[0] == '0' {
		base := 0
		switch body[1] {
		case 'x':
			base = 16
		case 'o':
			base = 8
		case 'b':
			base = 2
		}
		if base != 0 {
			if clean != body {
				return nil, &numError{s, "sign not allowed on prefixed integer"}
			}
			v, err := strconv.ParseInt(body[2:], base, 64)
			if err != nil {
				return nil, &numError{s, "invalid integer"}
			}
			return v, nil
		}
	}

	if strings.ContainsAny(body, ".eE") {
		if strings.HasPrefix(body, ".") || strings.HasSuffix(body, ".") || strings.Contains(body, "._") {
			return nil, &numError{s, "invalid float"}
		}
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return nil, &numError{s, "invalid float"}
		}
		return v, nil
	}

	if len(body) > 1 && body[0] == '0' {
		return nil, &numError{s, "leading zero"}
	}
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return nil, &numError{s, "invalid integer"}
	}
	return v, nil
}

type numError struct {
	text, reason string
}

func (e *numError) Error() string {
	return e.reason + ": " + strconv.Quote(e.text)
}
