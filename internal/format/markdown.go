// Package format renders vendor JSON responses as Markdown tables for the
// host's readable output.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// NoEntries is rendered in place of a table when there is nothing to show.
const NoEntries = "**No entries.**"

// TableToMarkdown renders raw JSON as a titled Markdown table. An object
// becomes one row, an array of objects one row per element. Columns follow
// the order in which keys first appear. Nested objects and arrays are
// rendered as compact JSON in their cell. Scalars render in a column named
// after the table; in an array mixing objects and scalars that column is
// appended after the object keys and each element keeps its position.
func TableToMarkdown(name string, raw []byte) (string, error) {
	value, err := decodeOrdered(raw)
	if err != nil {
		return "", fmt.Errorf("failed to render %s table: %w", name, err)
	}

	var items []interface{}
	switch v := value.(type) {
	case *orderedObject:
		if len(v.keys) > 0 {
			items = append(items, v)
		}
	case []interface{}:
		items = v
	case nil:
	default:
		items = append(items, v)
	}

	var rows []*orderedObject
	hasScalars := false
	for _, item := range items {
		if obj, ok := item.(*orderedObject); ok {
			rows = append(rows, obj)
		} else {
			hasScalars = true
		}
	}

	var b strings.Builder
	b.WriteString("### " + name + "\n")

	if len(items) == 0 {
		b.WriteString(NoEntries + "\n")
		return b.String(), nil
	}

	headers := collectHeaders(rows)
	columns := make([]string, 0, len(headers)+1)
	for _, h := range headers {
		columns = append(columns, escapeCell(h))
	}
	if hasScalars {
		columns = append(columns, escapeCell(name))
	}
	if len(columns) == 0 {
		b.WriteString(NoEntries + "\n")
		return b.String(), nil
	}

	b.WriteString("|" + strings.Join(columns, "|") + "|\n|")
	for range columns {
		b.WriteString("---|")
	}
	b.WriteString("\n")

	for _, item := range items {
		cells := make([]string, 0, len(columns))
		obj, isObj := item.(*orderedObject)
		for _, h := range headers {
			if isObj {
				cells = append(cells, cellValue(obj.values[h]))
			} else {
				cells = append(cells, "")
			}
		}
		if hasScalars {
			if isObj {
				cells = append(cells, "")
			} else {
				cells = append(cells, cellValue(item))
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return b.String(), nil
}

func collectHeaders(rows []*orderedObject) []string {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for _, k := range row.keys {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	return headers
}

func cellValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return escapeCell(val)
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return escapeCell(fmt.Sprint(val))
		}
		return escapeCell(string(b))
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return s
}

// orderedObject is a JSON object that remembers key order.
type orderedObject struct {
	keys   []string
	values map[string]interface{}
}

// MarshalJSON writes the object back with its original key order.
func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeOrdered(raw []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &orderedObject{values: make(map[string]interface{})}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				if _, dup := obj.values[key]; !dup {
					obj.keys = append(obj.keys, key)
				}
				obj.values[key] = val
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []interface{}{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		// string, json.Number, bool or nil
		return t, nil
	}
}
