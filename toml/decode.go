package toml

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

var (
	durationType        = reflect.TypeOf(time.Duration(0))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Unmarshal parses data and decodes the document into v
func Unmarshal(data []byte, v any) error {
	doc, err := NewParser(data).Parse()
	if err != nil {
		return err
	}
	return Decode(doc, v)
}

// Decode stores a parsed document (or any subtree of one) in the value v
// points to. Struct fields are matched by their `toml` tag, else by name.
// Keys without a matching field are ignored; absent keys leave fields as they are.
func Decode(data any, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("toml: decode target must be a non-nil pointer, got %T", v)
	}
	return decodeInto("", data, rv.Elem())
}

// DecodeError names the key whose value could not be stored
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Key == "" {
		return "toml: " + e.Err.Error()
	}
	return fmt.Sprintf("toml: %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func mismatch(key string, data any, want reflect.Type) error {
	return &DecodeError{Key: key, Err: fmt.Errorf("cannot store %T in %s", data, want)}
}

func joinKey(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + "." + k
}

func decodeInto(key string, data any, rv reflect.Value) error {
	if data == nil {
		return nil
	}

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return decodeInto(key, data, rv.Elem())
	}

	if rv.Type() == durationType {
		s, ok := data.(string)
		if !ok {
			return mismatch(key, data, rv.Type())
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return &DecodeError{Key: key, Err: err}
		}
		rv.SetInt(int64(d))
		return nil
	}

	if rv.CanAddr() && rv.Addr().Type().Implements(textUnmarshalerType) {
		s, ok := data.(string)
		if !ok {
			return mismatch(key, data, rv.Type())
		}
		if err := rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return &DecodeError{Key: key, Err: err}
		}
		return nil
	}

	switch rv.Kind() {
	case reflect.Struct:
		m, ok := data.(map[string]any)
		if !ok {
			return mismatch(key, data, rv.Type())
		}
		return decodeStruct(key, m, rv)

	case reflect.Map:
		m, ok := data.(map[string]any)
		if !ok {
			return mismatch(key, data, rv.Type())
		}
		if rv.Type().Key().Kind() != reflect.String {
			return &DecodeError{Key: key, Err: fmt.Errorf("map key type must be string, got %s", rv.Type().Key())}
		}
		if rv.IsNil() {
			rv.Set(reflect.MakeMapWithSize(rv.Type(), len(m)))
		}
		for k, elem := range m {
			ev := reflect.New(rv.Type().Elem()).Elem()
			if err := decodeInto(joinKey(key, k), elem, ev); err != nil {
				return err
			}
			rv.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), ev)
		}
		return nil

	case reflect.Slice:
		items, ok := asList(data)
		if !ok {
			return mismatch(key, data, rv.Type())
		}
		out := reflect.MakeSlice(rv.Type(), len(items), len(items))
		for i, elem := range items {
			if err := decodeInto(fmt.Sprintf("%s[%d]", key, i), elem, out.Index(i)); err != nil {
				return err
			}
		}
		rv.Set(out)
		return nil

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return mismatch(key, data, rv.Type())
		}
		rv.Set(reflect.ValueOf(data))
		return nil

	case reflect.String:
		s, ok := data.(string)
		if !ok {
			return mismatch(key, data, rv.Type())
		}
		rv.SetString(s)
		return nil

	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return mismatch(key, data, rv.Type())
		}
		rv.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asInt(data)
		if !ok {
			return mismatch(key, data, rv.Type())
		}
		if rv.OverflowInt(n) {
			return &DecodeError{Key: key, Err: fmt.Errorf("%d overflows %s", n, rv.Type())}
		}
		rv.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := asInt(data)
		if !ok || n < 0 {
			return mismatch(key, data, rv.Type())
		}
		if rv.OverflowUint(uint64(n)) {
			return &DecodeError{Key: key, Err: fmt.Errorf("%d overflows %s", n, rv.Type())}
		}
		rv.SetUint(uint64(n))
		return nil

	case reflect.Float32, reflect.Float64:
		switch f := data.(type) {
		case float64:
			rv.SetFloat(f)
		case int64:
			rv.SetFloat(float64(f))
		case int:
			rv.SetFloat(float64(f))
		default:
			return mismatch(key, data, rv.Type())
		}
		return nil
	}

	return &DecodeError{Key: key, Err: fmt.Errorf("unsupported field type %s", rv.Type())}
}

func decodeStruct(key string, m map[string]any, rv reflect.Value) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _ := fieldName(f)
		if name == "-" {
			continue
		}
		data, ok := m[name]
		if !ok {
			continue
		}
		if err := decodeInto(joinKey(key, name), data, rv.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

// fieldName returns the TOML key for a struct field and whether it carries omitempty
func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("toml")
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, opts == "omitempty"
}

func asList(data any) ([]any, bool) {
	switch v := data.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}

// asInt accepts integers and floats without a fractional part
func asInt(data any) (int64, bool) {
	switch v := data.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
			return int64(v), true
		}
	}
	return 0, false
}
