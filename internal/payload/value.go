// Package payload is the JSON value model of persisted calculator state.
//
// Persisted payloads from older schema versions have different shapes, so
// migrations operate on a generic tree rather than on Go structs. The tree
// is a sealed set of types; floats are not representable and are rejected
// on decode, because every quantity travels as integer or fraction text.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrFloat is returned when a JSON number is not an integer.
var ErrFloat = errors.New("non-integer numbers are not allowed")

// Value is a sealed interface. Only Null, String, Int, Bool, Array and
// Object implement it.
type Value interface {
	payloadValue()
}

// Null is JSON null. Empty module slots are stored as null.
type Null struct{}

// String is a JSON string.
type String string

// Int is an integral JSON number.
type Int int64

// Bool is a JSON boolean.
type Bool bool

// Array is an ordered list of values.
type Array []Value

// Object maps keys to values. Marshal emits keys in sorted order.
type Object map[string]Value

func (Null) payloadValue()   {}
func (String) payloadValue() {}
func (Int) payloadValue()    {}
func (Bool) payloadValue()   {}
func (Array) payloadValue()  {}
func (Object) payloadValue() {}

// IsNull reports whether v is absent or JSON null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// Parse decodes JSON text into a Value tree.
// Numbers must be integers that fit in int64.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return fromAny(raw)
}

func fromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("%w: %s", ErrFloat, s)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return Int(n), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			pv, err := fromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = pv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			pv, err := fromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = pv
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}
