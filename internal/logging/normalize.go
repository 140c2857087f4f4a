package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// ErrorObject is the structured form sinks receive in place of an error.
type ErrorObject struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// NewErrorObject converts err. The stack lists the wrapped error chain since
// Go errors carry no call stack.
func NewErrorObject(err error) ErrorObject {
	if err == nil {
		return ErrorObject{Name: "error", Message: "<nil>"}
	}
	obj := ErrorObject{Name: errorName(err), Message: err.Error()}
	lines := []string{obj.Name + ": " + obj.Message}
	appendCauses(&lines, err, 1)
	obj.Stack = strings.Join(lines, "\n")
	return obj
}

func appendCauses(lines *[]string, err error, depth int) {
	if depth > 32 {
		return
	}
	var causes []error
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		causes = u.Unwrap()
	case interface{ Unwrap() error }:
		if next := u.Unwrap(); next != nil {
			causes = []error{next}
		}
	}
	for _, cause := range causes {
		if cause == nil {
			continue
		}
		*lines = append(*lines, strings.Repeat("    ", depth)+"caused by "+errorName(cause)+": "+cause.Error())
		appendCauses(lines, cause, depth+1)
	}
}

func errorName(err error) string {
	t := reflect.TypeOf(err)
	if t == nil {
		return "error"
	}
	return strings.TrimPrefix(t.String(), "*")
}

// normalizeItems returns a copy of items with every error replaced by its
// ErrorObject.
func normalizeItems(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		if err, ok := item.(error); ok && err != nil {
			out[i] = NewErrorObject(err)
			continue
		}
		out[i] = item
	}
	return out
}

// IsObject reports whether v should be pretty-printed rather than printed
// inline: maps, structs, slices, arrays and pointers to them.
func IsObject(v any) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case ErrorObject, *ErrorObject:
		return true
	case fmt.Stringer, error, []byte:
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// PlainValue converts v into JSON-shaped data (maps, slices, numbers, strings)
// so renderers do not depend on concrete types.
func PlainValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return string(raw)
	}
	return out
}

// Stringify renders one item on a single line. Objects become compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "<nil>"
	}
	if IsObject(v) {
		raw, err := json.Marshal(v)
		if err == nil {
			return string(raw)
		}
		return fmt.Sprintf("%+v", v)
	}
	return fmt.Sprint(v)
}

// JoinItems stringifies items and joins them with single spaces.
func JoinItems(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Stringify(item)
	}
	return strings.Join(parts, " ")
}
