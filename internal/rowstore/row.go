// Package rowstore reads and writes CSV tables as ordered string rows.
//
// A table file is the source of truth: every read loads the whole file and
// every write replaces it. Column order is preserved across read-modify-write
// cycles; columns introduced by an update are appended after the existing
// ones.
package rowstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

var errNotObject = errors.New("row must be a JSON object")

// Row is a single record. Keys keep the order in which they were first set.
// The zero value is an empty row ready to use.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow builds a row from alternating key, value arguments.
// Panics if given an odd number of arguments.
func NewRow(pairs ...string) Row {
	if len(pairs)%2 != 0 {
		panic("rowstore.NewRow: odd number of arguments")
	}

	var row Row

	for i := 0; i < len(pairs); i += 2 {
		row.Set(pairs[i], pairs[i+1])
	}

	return row
}

// Get returns the value for key, or "" if the key is absent.
func (r Row) Get(key string) string {
	return r.values[key]
}

// Lookup returns the value for key and whether the key is present.
func (r Row) Lookup(key string) (string, bool) {
	v, ok := r.values[key]

	return v, ok
}

// Set assigns value to key. New keys are appended to the key order.
func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}

	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}

	r.values[key] = value
}

// Merge sets every field of other on r, in other's key order.
func (r *Row) Merge(other Row) {
	for _, k := range other.keys {
		r.Set(k, other.values[k])
	}
}

// Keys returns the keys in order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)

	return out
}

// Clone returns a deep copy.
func (r Row) Clone() Row {
	var out Row

	for _, k := range r.keys {
		out.Set(k, r.values[k])
	}

	return out
}

// Map returns the fields as a plain map.
func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.keys))
	for _, k := range r.keys {
		out[k] = r.values[k]
	}

	return out
}

// MarshalJSON encodes the row as an object with keys in row order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := marshalString(k)
		if err != nil {
			return nil, err
		}

		val, err := marshalString(r.values[k])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object into the row, keeping the document's key
// order. Non-string scalars are kept as their literal text; null becomes "".
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}

	*r = Row{}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, _ := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return err
		}

		switch v := valTok.(type) {
		case string:
			r.Set(key, v)
		case json.Number:
			r.Set(key, v.String())
		case bool:
			r.Set(key, strconv.FormatBool(v))
		case nil:
			r.Set(key, "")
		default:
			return fmt.Errorf("field %q: value must be a scalar", key)
		}
	}

	_, err = dec.Token()

	return err
}

// MarshalYAML encodes the row as a mapping with keys in row order.
func (r Row) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, k := range r.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.values[k]},
		)
	}

	return node, nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(s)
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
