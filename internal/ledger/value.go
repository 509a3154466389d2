package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface representing constrained payload value types.
// Only VString, VInt, VBool, VArray, and VObject implement it.
// NO float variant - floats break deterministic hashing and are forbidden.
type Value interface {
	ledgerValue() // Sealed - only these types implement it
}

// VString represents a string value.
type VString string

func (VString) ledgerValue() {}

// VInt represents an integer value. Always int64, never float64.
type VInt int64

func (VInt) ledgerValue() {}

// VBool represents a boolean value.
type VBool bool

func (VBool) ledgerValue() {}

// VArray represents an array of Value elements.
type VArray []Value

func (VArray) ledgerValue() {}

// VObject represents a map of string keys to Value elements.
// Use SortedKeys() for deterministic iteration.
type VObject map[string]Value

func (VObject) ledgerValue() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 which produces a DIFFERENT order for
// non-ASCII keys.
func (obj VObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering as
// required by RFC 8785. Must use unicode/utf16.Encode for correct
// surrogate handling.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}

	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// StringList converts a slice of strings to a VArray.
func StringList(items []string) VArray {
	arr := make(VArray, len(items))
	for i, s := range items {
		arr[i] = VString(s)
	}
	return arr
}

// ToValue converts a plain Go value to a Value.
// Rejects null and floats - only string, int, bool, []any/[]string,
// map[string]any are accepted.
func ToValue(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in ledger values")
	case Value:
		return val, nil
	case string:
		return VString(val), nil
	case int64:
		return VInt(val), nil
	case int:
		return VInt(val), nil
	case bool:
		return VBool(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			return nil, fmt.Errorf("floats are forbidden in ledger values: %s", s)
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return VInt(n), nil
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in ledger values: %v", val)
	case []string:
		return StringList(val), nil
	case []any:
		arr := make(VArray, len(val))
		for i, elem := range val {
			ev, err := ToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = ev
		}
		return arr, nil
	case map[string]any:
		obj := make(VObject, len(val))
		for k, elem := range val {
			ev, err := ToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = ev
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type for ledger value: %T", v)
	}
}

// UnmarshalValue decodes JSON into a Value with strict validation.
// Rejects floats and null.
func UnmarshalValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return ToValue(raw)
}

// str reads a string field from an object, returning "" when absent.
func (obj VObject) str(key string) string {
	if s, ok := obj[key].(VString); ok {
		return string(s)
	}
	return ""
}

// num reads an integer field from an object, returning 0 when absent.
func (obj VObject) num(key string) int64 {
	if n, ok := obj[key].(VInt); ok {
		return int64(n)
	}
	return 0
}

// strs reads a string-array field from an object.
func (obj VObject) strs(key string) []string {
	arr, ok := obj[key].(VArray)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(VString); ok {
			out = append(out, string(s))
		}
	}
	return out
}
