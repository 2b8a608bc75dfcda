package toml

import (
	"bytes"
	"encoding"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// Marshal encodes a struct or string-keyed map as a TOML document.
// Struct fields keep declaration order, map keys are sorted. Plain values
// of a table are written before its subtables. Nil pointers and fields
// tagged omitempty with a zero value are left out; durations are written
// as strings.
func Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("toml: cannot marshal nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("toml: document must be a struct or map, got %s", rv.Type())
	}

	var buf bytes.Buffer
	if err := writeTable(&buf, nil, rv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type field struct {
	key string
	val reflect.Value
}

// fields lists the entries of a struct or map, dropping what is not encoded
func fields(rv reflect.Value) ([]field, error) {
	var out []field
	switch rv.Kind() {
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, omitEmpty := fieldName(f)
			if name == "-" {
				continue
			}
			fv := rv.Field(i)
			if omitEmpty && fv.IsZero() {
				continue
			}
			out = append(out, field{name, fv})
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("toml: map key type must be string, got %s", rv.Type().Key())
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		for _, k := range keys {
			out = append(out, field{k.String(), rv.MapIndex(k)})
		}
	}

	// Unwrap and drop nils
	kept := out[:0]
	for _, f := range out {
		for f.val.Kind() == reflect.Pointer || f.val.Kind() == reflect.Interface {
			if f.val.IsNil() {
				break
			}
			f.val = f.val.Elem()
		}
		if (f.val.Kind() == reflect.Pointer || f.val.Kind() == reflect.Interface) && f.val.IsNil() {
			continue
		}
		kept = append(kept, f)
	}
	return kept, nil
}

func writeTable(buf *bytes.Buffer, path []string, rv reflect.Value) error {
	fs, err := fields(rv)
	if err != nil {
		return err
	}

	var tables []field
	for _, f := range fs {
		if isTable(f.val) || isTableArray(f.val) {
			tables = append(tables, f)
			continue
		}
		buf.WriteString(formatKey(f.key))
		buf.WriteString(" = ")
		if err := writeValue(buf, f.val); err != nil {
			return fmt.Errorf("toml: %s: %w", strings.Join(append(path, f.key), "."), err)
		}
		buf.WriteByte('\n')
	}

	for _, f := range tables {
		sub := append(slices.Clip(path), f.key)
		header := joinPath(sub)
		if isTable(f.val) {
			buf.WriteString("\n[" + header + "]\n")
			if err := writeTable(buf, sub, f.val); err != nil {
				return err
			}
			continue
		}
		for i := 0; i < f.val.Len(); i++ {
			elem := f.val.Index(i)
			for elem.Kind() == reflect.Pointer || elem.Kind() == reflect.Interface {
				elem = elem.Elem()
			}
			buf.WriteString("\n[[" + header + "]]\n")
			if err := writeTable(buf, sub, elem); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = formatKey(p)
	}
	return strings.Join(parts, ".")
}

func isTable(v reflect.Value) bool {
	if v.Type() == durationType || v.Type().Implements(textMarshalerType) {
		return false
	}
	return v.Kind() == reflect.Struct || v.Kind() == reflect.Map
}

// isTableArray reports a non-empty slice whose elements are all tables
func isTableArray(v reflect.Value) bool {
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array || v.Len() == 0 {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		e := v.Index(i)
		for e.Kind() == reflect.Pointer || e.Kind() == reflect.Interface {
			if e.IsNil() {
				return false
			}
			e = e.Elem()
		}
		if !isTable(e) {
			return false
		}
	}
	return true
}

func writeValue(buf *bytes.Buffer, v reflect.Value) error {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fmt.Errorf("nil value")
		}
		v = v.Elem()
	}

	if v.Type() == durationType {
		buf.WriteString(strconv.Quote(time.Duration(v.Int()).String()))
		return nil
	}
	if v.Type().Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return err
		}
		writeString(buf, string(text))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		writeString(buf, v.String())
	case reflect.Bool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Uint() > math.MaxInt64 {
			return fmt.Errorf("%d does not fit a TOML integer", v.Uint())
		}
		buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		buf.WriteString(formatFloat(v.Float()))
	case reflect.Slice, reflect.Array:
		buf.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := writeValue(buf, v.Index(i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case reflect.Struct, reflect.Map:
		// Tables nested inside arrays are written inline
		fs, err := fields(v)
		if err != nil {
			return err
		}
		buf.WriteByte('{')
		for i, f := range fs {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(formatKey(f.key))
			buf.WriteString(" = ")
			if err := writeValue(buf, f.val); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type %s", v.Type())
	}
	return nil
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// formatKey quotes keys the scanner would not read back as a bare key
func formatKey(k string) string {
	bare := k != "" && k != "true" && k != "false" && k != "inf" && k != "nan"
	for i := 0; bare && i < len(k); i++ {
		bare = isBareByte(k[i])
	}
	if bare && (k[0] >= '0' && k[0] <= '9' || k[0] == '-') {
		bare = false
	}
	if bare {
		return k
	}
	var buf bytes.Buffer
	writeString(&buf, k)
	return buf.String()
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(buf, `\u%04X`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
