package student

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNestedValue is returned when a record field holds an object or array.
var ErrNestedValue = errors.New("student: nested values are not supported")

// Record is one student's field/value mapping as returned by the backend.
//
// A key can be absent, present with a null value, or present with a string.
// Key order is preserved from the decoded payload.
type Record struct {
	keys   []string
	values map[string]*string
}

// NewRecord builds a record from alternating key/value pairs. Intended for
// tests and fixtures; use Set for null values.
func NewRecord(pairs ...string) Record {
	var r Record
	for i := 0; i+1 < len(pairs); i += 2 {
		v := pairs[i+1]
		r.Set(pairs[i], &v)
	}
	return r
}

// Set adds or replaces a field. A nil value marks the field present but null.
func (r *Record) Set(key string, value *string) {
	if r.values == nil {
		r.values = make(map[string]*string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Has reports whether key is present, even if its value is null.
func (r Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Lookup returns the value for key and whether the key is present.
// A present null field returns ("", true).
func (r Record) Lookup(key string) (string, bool) {
	v, ok := r.values[key]
	if !ok || v == nil {
		return "", ok
	}
	return *v, true
}

// Get returns the field value, or the empty string when absent or null.
func (r Record) Get(key string) string {
	v, _ := r.Lookup(key)
	return v
}

// IsNull reports whether key is present with a null value.
func (r Record) IsNull(key string) bool {
	v, ok := r.values[key]
	return ok && v == nil
}

// Keys returns field names in payload order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Record) Len() int {
	return len(r.keys)
}

// ID returns the record identifier, if any.
func (r Record) ID() (string, bool) {
	id := r.Get(FieldID)
	return id, id != ""
}

// UnmarshalJSON decodes a flat JSON object keeping key order. Numbers and
// booleans are kept as their literal text.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("student: expected object, got %v", tok)
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("student: expected field name, got %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case nil:
			r.Set(key, nil)
		case string:
			r.Set(key, &v)
		case json.Number:
			s := v.String()
			r.Set(key, &s)
		case bool:
			s := fmt.Sprintf("%t", v)
			r.Set(key, &s)
		case json.Delim:
			return fmt.Errorf("%w: field %q", ErrNestedValue, key)
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the record as an object in payload order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
