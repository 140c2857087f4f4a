package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Console is the StandardOut sink. Objects are rendered as trees, raw output
// is written without a line break so progress lines can be redrawn in place.
type Console struct {
	mu     sync.Mutex
	writer io.Writer
	width  func() int
}

// NewConsole returns a console sink writing to w (stdout when nil).
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{writer: w, width: func() int { return TerminalWidth(w) }}
}

func newConsoleFactory(owner Owner) (Sink, error) {
	c := NewConsole(owner.Output)
	if owner.Width != nil {
		c.width = owner.Width
	}
	return c, nil
}

// Log writes the heading followed by the rendered items and a newline.
func (c *Console) Log(items ...any) error {
	if len(items) == 0 {
		return nil
	}
	line := RenderLine(items)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.writer, line+"\n")
	return err
}

// LogRaw writes items joined by single spaces, without a trailing newline.
// Single-line output is trimmed to the terminal width so it never wraps.
func (c *Console) LogRaw(items ...any) error {
	out := JoinItems(items)
	if c.width != nil && !strings.Contains(out, "\n") {
		if w := c.width(); w > 1 && text.RuneWidthWithoutEscSequences(out) >= w {
			out = text.Trim(out, w-1)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.writer, out)
	return err
}

// ClearCurrentLine erases the current line and returns to column 0.
func (c *Console) ClearCurrentLine() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.writer, "\r"+text.EraseLine.Sprint())
	return err
}

// RenderLine renders items the way the console prints them: the first item is
// the heading, objects become trees, and a lone one-element slice is
// unwrapped to its element.
func RenderLine(items []any) string {
	if len(items) == 0 {
		return ""
	}
	rest := items[1:]
	if len(rest) == 1 {
		if elem, ok := singleElement(rest[0]); ok {
			rest = []any{elem}
		}
	}
	parts := make([]string, 0, len(items))
	parts = append(parts, renderItem(items[0], true))
	for _, item := range rest {
		parts = append(parts, renderItem(item, false))
	}
	return strings.Join(parts, " ")
}

func singleElement(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if _, isBytes := v.([]byte); isBytes || rv.Len() != 1 {
		return nil, false
	}
	return rv.Index(0).Interface(), true
}

func renderItem(v any, first bool) string {
	if !IsObject(v) {
		return Stringify(v)
	}
	out := PrettyObject(v)
	if !first && strings.Contains(out, "\n") {
		return "\n" + out
	}
	return out
}

// PrettyObject renders v as an indented tree.
func PrettyObject(v any) string {
	plain := PlainValue(v)
	switch t := plain.(type) {
	case map[string]any:
		if len(t) == 0 {
			return "{}"
		}
	case []any:
		if len(t) == 0 {
			return "[]"
		}
	default:
		return scalarString(plain)
	}
	lw := list.NewWriter()
	lw.SetStyle(list.StyleConnectedRounded)
	appendTree(lw, plain)
	return lw.Render()
}

func appendTree(lw list.Writer, v any) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			appendNode(lw, k, t[k])
		}
	case []any:
		for i, elem := range t {
			appendNode(lw, fmt.Sprintf("[%d]", i), elem)
		}
	}
}

func appendNode(lw list.Writer, label string, v any) {
	if isBranch(v) {
		lw.AppendItem(label + ":")
		lw.Indent()
		appendTree(lw, v)
		lw.UnIndent()
		return
	}
	lw.AppendItem(label + ": " + scalarString(v))
}

func isBranch(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return false
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case map[string]any:
		return "{}"
	case []any:
		return "[]"
	default:
		return fmt.Sprint(t)
	}
}
