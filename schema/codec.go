package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// tableJSON is the wire form of a Table.
type tableJSON struct {
	Kind     TableKind      `json:"kind,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Rows     []*Row         `json:"rows"`
}

// rowJSON is the wire form of a Row.
type rowJSON struct {
	Columns     orderedColumns `json:"columns"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Subtable    *Table         `json:"subtable,omitempty"`
	Comparisons *Table         `json:"comparisons,omitempty"`
}

// orderedColumns encodes row columns as a JSON object in column order.
type orderedColumns struct {
	keys   []string
	values map[string]any
}

// MarshalJSON implements json.Marshaler.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := t.rows
	if rows == nil {
		rows = []*Row{}
	}
	return json.Marshal(tableJSON{Kind: t.Kind, Metadata: t.Metadata, Rows: rows})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw tableJSON
	if err := decodeWithNumbers(data, &raw); err != nil {
		return err
	}
	t.Kind = raw.Kind
	if t.Kind == "" {
		t.Kind = GeneralTable
	}
	if t.Kind != GeneralTable && t.Kind != SimpleTable {
		return fmt.Errorf("unknown table kind %q", raw.Kind)
	}
	if t.Kind == SimpleTable && len(raw.Rows) > 1 {
		return fmt.Errorf("simple table must hold at most one row (received %d)", len(raw.Rows))
	}
	t.Metadata = normalizeMap(raw.Metadata)
	if t.Metadata == nil {
		t.Metadata = make(map[string]any)
	}
	t.rows = raw.Rows
	t.labelIndex = nil
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r *Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		Columns:     orderedColumns{keys: r.keys, values: r.values},
		Metadata:    r.Metadata,
		Subtable:    r.Subtable,
		Comparisons: r.Comparisons,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw rowJSON
	if err := decodeWithNumbers(data, &raw); err != nil {
		return err
	}
	r.keys = raw.Columns.keys
	r.values = raw.Columns.values
	if r.values == nil {
		r.values = make(map[string]any)
	}
	r.Metadata = normalizeMap(raw.Metadata)
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Subtable = raw.Subtable
	r.Comparisons = raw.Comparisons
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c orderedColumns) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *orderedColumns) UnmarshalJSON(data []byte) error {
	c.keys = nil
	c.values = make(map[string]any)
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("columns must be a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected column key token %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		if _, seen := c.values[key]; !seen {
			c.keys = append(c.keys, key)
		}
		c.values[key] = normalizeValue(value)
	}
	_, err = dec.Token()
	return err
}

// DecodeTable reads a JSON encoded table.
func DecodeTable(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	t := NewTable()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to decode table: %w", err)
	}
	return t, nil
}

// decodeWithNumbers decodes JSON keeping numbers as json.Number.
func decodeWithNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// normalizeValue converts json.Number values, recursively, into int64 or float64.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		return normalizeNumber(x)
	case map[string]any:
		return normalizeMap(x)
	case []any:
		for i := range x {
			x[i] = normalizeValue(x[i])
		}
		return x
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}
