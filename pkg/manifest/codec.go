package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// withType places the "type" discriminant first in an encoded JSON object.
func withType(kind string, body []byte) ([]byte, error) {
	tag, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) < 2 || body[0] != '{' || body[len(body)-1] != '}' {
		return nil, fmt.Errorf("manifest: %s does not encode to an object", kind)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalTyped(kind string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return withType(kind, body)
}

// marshalTypedExtra encodes v and merges extra fields that v does not already
// define. Extra keys are emitted in sorted order.
func marshalTypedExtra(kind string, v any, extra map[string]any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return withType(kind, body)
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(body, &known); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(extra))
	for key := range extra {
		if key == "type" {
			continue
		}
		if _, exists := known[key]; exists {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(bytes.TrimSuffix(bytes.TrimSpace(body), []byte("}")))
	needComma := len(known) > 0
	for _, key := range keys {
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		encodedValue, err := json.Marshal(extra[key])
		if err != nil {
			return nil, fmt.Errorf("manifest: %s field %q: %w", kind, key, err)
		}
		if needComma {
			buf.WriteByte(',')
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
		needComma = true
	}
	buf.WriteByte('}')
	return withType(kind, buf.Bytes())
}

func peekType(data []byte) (string, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", err
	}
	return probe.Type, nil
}

// extraFields returns every top-level field of data that is not listed in
// known. The "type" discriminant is always excluded.
func extraFields(data []byte, known ...string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	delete(fields, "type")
	for _, key := range known {
		delete(fields, key)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// jsonKeys lists the JSON object keys of the exported fields of struct v.
// Fields tagged "-" are skipped.
func jsonKeys(v any) []string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}
		keys = append(keys, name)
	}
	return keys
}

// decodeExtra decodes data into out and returns the fields out does not
// model. out must point to a struct without its own UnmarshalJSON.
func decodeExtra(data []byte, out any) (map[string]any, error) {
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return extraFields(data, jsonKeys(out)...)
}

func rawFields(data []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	delete(fields, "type")
	return fields, nil
}

func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func marshalUnknown(kind string, fields map[string]any) ([]byte, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	return marshalTypedExtra(kind, struct{}{}, fields)
}

// MarshalWithType encodes v as a JSON object whose first field is the "type"
// discriminant kind. Packages layering their own variants over manifest
// unions use it to produce the same wire shape.
func MarshalWithType(kind string, v any) ([]byte, error) {
	return marshalTyped(kind, v)
}

// MarshalWithTypeExtra is MarshalWithType for variants that keep unmodelled
// fields in extra. Keys v already encodes take precedence.
func MarshalWithTypeExtra(kind string, v any, extra map[string]any) ([]byte, error) {
	return marshalTypedExtra(kind, v, extra)
}

// DecodeWithExtra decodes data into the struct out points to and returns the
// top-level fields out does not model, other than "type".
func DecodeWithExtra(data []byte, out any) (map[string]any, error) {
	return decodeExtra(data, out)
}
