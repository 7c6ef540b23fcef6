package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of a manifest document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user supplied name (or file extension) to a Format.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("manifest: unsupported format %q", raw)
	}
}

// DetectFormat guesses the serialization of raw. JSON documents start with an
// object; everything else is read as YAML.
func DetectFormat(raw []byte) Format {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a JSON or YAML manifest document.
func Decode(raw []byte) (Manifest, error) {
	return DecodeFormat(raw, DetectFormat(raw))
}

// DecodeFormat parses raw as format. The YAML decoder is used when either
// format or the content says YAML; it also reads JSON and flow mappings.
func DecodeFormat(raw []byte, format Format) (Manifest, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Manifest{}, errors.New("manifest: document is empty")
	}

	payload := raw
	if format == FormatYAML || DetectFormat(raw) == FormatYAML {
		converted, err := YAMLToJSON(raw)
		if err != nil {
			return Manifest{}, err
		}
		payload = converted
	}

	var out Manifest
	if err := json.Unmarshal(payload, &out); err != nil {
		return Manifest{}, fmt.Errorf("manifest: decode: %w", err)
	}
	return out, nil
}

// DecodeDocument parses the payload held by doc in the document's format.
func DecodeDocument(doc Document) (Manifest, error) {
	m, err := DecodeFormat(doc.Raw(), doc.Format())
	if err != nil {
		if loc := doc.Location(); loc != "" {
			return Manifest{}, fmt.Errorf("%w (%s)", err, loc)
		}
		return Manifest{}, err
	}
	return m, nil
}

// Encode serializes m in the requested format. JSON output is indented.
func Encode(m Manifest, format Format) ([]byte, error) {
	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	switch format {
	case FormatJSON, "":
		return payload, nil
	case FormatYAML:
		return JSONToYAML(payload)
	default:
		return nil, fmt.Errorf("manifest: unsupported format %q", format)
	}
}

// YAMLToJSON converts a YAML document to JSON keeping mapping key order.
func YAMLToJSON(raw []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("manifest: parse yaml: %w", err)
	}
	var buf bytes.Buffer
	if err := writeNodeJSON(&buf, &root); err != nil {
		return nil, fmt.Errorf("manifest: convert yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// JSONToYAML converts a JSON document to block-style YAML keeping key order.
func JSONToYAML(raw []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("manifest: parse json: %w", err)
	}
	clearStyle(&root)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, fmt.Errorf("manifest: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("manifest: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func clearStyle(node *yaml.Node) {
	if node == nil {
		return
	}
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}

func writeNodeJSON(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNodeJSON(buf, node.Content[0])
	case yaml.AliasNode:
		return writeNodeJSON(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNodeJSON(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, child := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNodeJSON(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		return writeScalarJSON(buf, node)
	default:
		return fmt.Errorf("unsupported yaml node kind %d at line %d", node.Kind, node.Line)
	}
}

func writeScalarJSON(buf *bytes.Buffer, node *yaml.Node) error {
	var value any
	switch node.ShortTag() {
	case "!!null":
		buf.WriteString("null")
		return nil
	case "!!bool", "!!int", "!!float":
		if err := node.Decode(&value); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
	default:
		value = node.Value
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	buf.Write(encoded)
	return nil
}
