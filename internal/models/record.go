package models

import (
	"bytes"
	"encoding/json"
)

// Field is a single key/value cell of a Record.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Record is one flat output row. Keys keep the order in which they were
// first set; setting an existing key replaces its value in place.
// The zero value is ready to use.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// Set stores value under key.
func (r *Record) Set(key, value string) {
	if r.index == nil {
		r.index = make(map[string]int)
	}

	if i, ok := r.index[key]; ok {
		r.fields[i].Value = value
		return
	}

	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (string, bool) {
	i, ok := r.index[key]
	if !ok {
		return "", false
	}

	return r.fields[i].Value, true
}

// Keys returns the record's keys in order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}

	return keys
}

// Len returns the number of cells.
func (r *Record) Len() int {
	return len(r.fields)
}

// MarshalJSON encodes the record as a JSON object with keys in order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}

		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnionKeys merges the keys of records in first-seen order.
func UnionKeys(records []*Record) []string {
	seen := make(map[string]bool)

	var keys []string

	for _, r := range records {
		for _, key := range r.Keys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	return keys
}
