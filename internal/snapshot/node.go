// Package snapshot models raw yard-state snapshots: arbitrarily nested
// JSON trees with no fixed schema. Objects keep their wire key order so
// traversal and extraction are deterministic, which the downstream
// flattening contract depends on.
package snapshot

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// Node is one value in a snapshot tree: *Object, Array, string, float64,
// bool, or nil.
type Node = any

// Array is an ordered sequence of nodes.
type Array = []Node

// Object is a JSON object that preserves key order.
type Object struct {
	keys   []string
	fields map[string]Node
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Node)}
}

// Obj builds an object from alternating key/value pairs, in order.
// Intended for tests and fixtures; panics on a non-string key.
func Obj(pairs ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1])
	}
	return o
}

// Set stores a field, appending the key on first write.
func (o *Object) Set(key string, value Node) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = value
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Node, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Keys returns the object's keys in wire order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// String returns the string value for key, or "" if absent or not a string.
func (o *Object) String(key string) string {
	v, _ := o.Get(key)
	s, _ := v.(string)
	return s
}

// Bool returns the bool value for key, or false if absent or not a bool.
func (o *Object) Bool(key string) bool {
	v, _ := o.Get(key)
	b, _ := v.(bool)
	return b
}

// ObjectAt returns the object value for key, or nil.
func (o *Object) ObjectAt(key string) *Object {
	v, _ := o.Get(key)
	obj, _ := v.(*Object)
	return obj
}

// ArrayAt returns the array value for key, or nil.
func (o *Object) ArrayAt(key string) Array {
	v, _ := o.Get(key)
	arr, _ := v.(Array)
	return arr
}

// MarshalJSON writes the object with its keys in wire order.
func (o *Object) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, key := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(o.fields[key])
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}

// Decode reads one JSON value from r into a Node tree.
func Decode(r io.Reader) (Node, error) {
	dec := json.NewDecoder(r)
	node, err := decodeValue(dec)
	if err != nil {
		return nil, eris.Wrap(err, "snapshot: decode")
	}
	return node, nil
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFrom(dec, tok)
}

func decodeFrom(dec *json.Decoder, tok json.Token) (Node, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, eris.Errorf("snapshot: object key %v is not a string", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			// Closing brace.
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array{}
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
			return nil, eris.Errorf("snapshot: unexpected delimiter %v", t)
		}
	case string:
		return t, nil
	case float64:
		return t, nil
	case bool:
		return t, nil
	case nil:
		return nil, nil
	default:
		return nil, eris.Errorf("snapshot: unexpected token %v", tok)
	}
}
