package builder

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// KeyValuePair is a single form entry, encoded as a two element array.
type KeyValuePair struct {
	Key   string
	Value string
}

// KeyValuePairs is an ordered list of key/value entries. Order is what the
// user sees and edits; it is not significant on the wire.
type KeyValuePairs []KeyValuePair

// Pairs builds KeyValuePairs from alternating key, value arguments. A trailing
// key without a value is paired with an empty string.
func Pairs(kv ...string) KeyValuePairs {
	out := make(KeyValuePairs, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		pair := KeyValuePair{Key: kv[i]}
		if i+1 < len(kv) {
			pair.Value = kv[i+1]
		}
		out = append(out, pair)
	}
	return out
}

func (p KeyValuePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Key, p.Value})
}

func (p *KeyValuePair) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("key/value pair must be an array of strings: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("key/value pair must have 2 entries, got %d", len(raw))
	}
	p.Key, p.Value = raw[0], raw[1]
	return nil
}

func (p KeyValuePairs) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]KeyValuePair(p))
}

// ToValueMap converts the pairs into a manifest mapping. Duplicate keys
// collapse: the value of the last occurrence wins while the key keeps the
// position of its first occurrence. This is the lossy direction of the
// conversion.
func (p KeyValuePairs) ToValueMap() *manifest.ValueMap {
	out := manifest.NewValueMap()
	for _, pair := range p {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// ErrNonStringValue is returned when a manifest mapping holds a value the
// form cannot keep as a string.
var ErrNonStringValue = errors.New("value is not a string")

// PairsFromValueMap converts a manifest mapping into pairs in the mapping's
// iteration order. Every value must be a string. A nil mapping yields an
// empty list.
func PairsFromValueMap(m *manifest.ValueMap) (KeyValuePairs, error) {
	return pairsFromValueMap(m, func(value any) (string, bool) {
		s, ok := value.(string)
		return s, ok
	})
}

// ScalarPairsFromValueMap is PairsFromValueMap for mappings sent as text
// (query parameters, headers and form bodies): numbers and booleans are
// rendered as strings. Nulls, objects and arrays are rejected.
func ScalarPairsFromValueMap(m *manifest.ValueMap) (KeyValuePairs, error) {
	return pairsFromValueMap(m, scalarString)
}

func pairsFromValueMap(m *manifest.ValueMap, convert func(any) (string, bool)) (KeyValuePairs, error) {
	if m == nil {
		return KeyValuePairs{}, nil
	}
	out := make(KeyValuePairs, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		value, ok := convert(pair.Value)
		if !ok {
			return nil, fmt.Errorf("%q: %w", pair.Key, ErrNonStringValue)
		}
		out = append(out, KeyValuePair{Key: pair.Key, Value: value})
	}
	return out, nil
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case int, int32, int64, uint, uint32, uint64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}
