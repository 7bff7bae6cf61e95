package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type (
	// Record is an ordered mapping of attribute names to decoded values
	Record struct {
		Names  []string
		Values []any
	}

	// Tuple holds one value per requested attribute, in request order
	Tuple []any
)

func (r Record) Len() int {
	return len(r.Names)
}

func (r Record) Get(name string) (any, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Project keeps the named attributes in the given order, skipping unknown names
func (r Record) Project(names ...string) Record {
	out := Record{
		Names:  make([]string, 0, len(names)),
		Values: make([]any, 0, len(names)),
	}
	for _, n := range names {
		if v, ok := r.Get(n); ok {
			out.Names = append(out.Names, n)
			out.Values = append(out.Values, v)
		}
	}
	return out
}

// Map is an unordered copy of the record
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Names))
	for i, n := range r.Names {
		m[n] = r.Values[i]
	}
	return m
}

// MarshalJSON writes a JSON object whose keys keep the record order
func (r Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, n := range r.Names {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(n)
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal of key %s: %w", n, err)
		}
		v, err := json.Marshal(jsonSafe(r.Values[i]))
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal of value for %s: %w", n, err)
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// jsonSafe turns the [16]byte hashes some drivers return into strings
func jsonSafe(v any) any {
	if h, ok := v.([16]byte); ok {
		return fmt.Sprintf("%x-%x-%x-%x-%x", h[0:4], h[4:6], h[6:8], h[8:10], h[10:])
	}
	return v
}
