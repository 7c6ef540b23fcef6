package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Retriever and schema loader discriminants.
const (
	TypeSimpleRetriever      = "SimpleRetriever"
	TypeInlineSchemaLoader   = "InlineSchemaLoader"
	TypeJSONFileSchemaLoader = "JsonFileSchemaLoader"
	TypeDefaultSchemaLoader  = "DefaultSchemaLoader"
)

// Retriever fetches the records of a stream.
type Retriever interface {
	RetrieverType() string
	isRetriever()
}

// SimpleRetriever issues HTTP requests and extracts records from responses.
type SimpleRetriever struct {
	Name           string         `json:"name,omitempty"`
	PrimaryKey     *PrimaryKey    `json:"primary_key,omitempty"`
	Requester      HTTPRequester  `json:"requester"`
	RecordSelector RecordSelector `json:"record_selector"`
	Paginator      Paginator      `json:"paginator,omitempty"`
	StreamSlicer   StreamSlicer   `json:"stream_slicer,omitempty"`
}

// UnknownRetriever holds a retriever of a kind this package does not model.
type UnknownRetriever struct {
	Kind   string
	Fields map[string]any
}

func (SimpleRetriever) RetrieverType() string    { return TypeSimpleRetriever }
func (r UnknownRetriever) RetrieverType() string { return r.Kind }

func (SimpleRetriever) isRetriever()  {}
func (UnknownRetriever) isRetriever() {}

func (r SimpleRetriever) MarshalJSON() ([]byte, error) {
	type alias SimpleRetriever
	return marshalTyped(TypeSimpleRetriever, alias(r))
}

func (r *SimpleRetriever) UnmarshalJSON(data []byte) error {
	type alias SimpleRetriever
	aux := struct {
		*alias
		Paginator    json.RawMessage `json:"paginator"`
		StreamSlicer json.RawMessage `json:"stream_slicer"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	paginator, err := DecodePaginator(aux.Paginator)
	if err != nil {
		return fmt.Errorf("paginator: %w", err)
	}
	slicer, err := DecodeStreamSlicer(aux.StreamSlicer)
	if err != nil {
		return fmt.Errorf("stream_slicer: %w", err)
	}
	r.Paginator = paginator
	r.StreamSlicer = slicer
	return nil
}

func (r UnknownRetriever) MarshalJSON() ([]byte, error) {
	return marshalUnknown(r.Kind, r.Fields)
}

// DecodeRetriever decodes a retriever by its discriminant.
func DecodeRetriever(data []byte) (Retriever, error) {
	if isNull(data) {
		return nil, nil
	}
	kind, err := peekType(data)
	if err != nil {
		return nil, err
	}
	if kind != TypeSimpleRetriever {
		fields, err := rawFields(data)
		if err != nil {
			return nil, err
		}
		return UnknownRetriever{Kind: kind, Fields: fields}, nil
	}
	var out SimpleRetriever
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return out, nil
}

// SchemaLoader provides the JSON Schema of a stream's records.
type SchemaLoader interface {
	SchemaLoaderType() string
	isSchemaLoader()
}

// InlineSchemaLoader embeds the schema in the manifest. Schema holds the raw
// JSON value.
type InlineSchemaLoader struct {
	Schema json.RawMessage `json:"schema,omitempty"`
}

// JSONFileSchemaLoader reads the schema from a packaged file.
type JSONFileSchemaLoader struct {
	FilePath string `json:"file_path,omitempty"`
}

// DefaultSchemaLoader reads the schema from the connector's default location.
type DefaultSchemaLoader struct{}

// UnknownSchemaLoader holds a schema loader this package does not model.
type UnknownSchemaLoader struct {
	Kind   string
	Fields map[string]any
}

func (InlineSchemaLoader) SchemaLoaderType() string    { return TypeInlineSchemaLoader }
func (JSONFileSchemaLoader) SchemaLoaderType() string  { return TypeJSONFileSchemaLoader }
func (DefaultSchemaLoader) SchemaLoaderType() string   { return TypeDefaultSchemaLoader }
func (l UnknownSchemaLoader) SchemaLoaderType() string { return l.Kind }

func (InlineSchemaLoader) isSchemaLoader()   {}
func (JSONFileSchemaLoader) isSchemaLoader() {}
func (DefaultSchemaLoader) isSchemaLoader()  {}
func (UnknownSchemaLoader) isSchemaLoader()  {}

// HasSchema reports whether the loader carries a non-null schema value.
func (l InlineSchemaLoader) HasSchema() bool {
	return !isNull(l.Schema)
}

func (l InlineSchemaLoader) MarshalJSON() ([]byte, error) {
	type alias InlineSchemaLoader
	out := alias(l)
	if len(bytes.TrimSpace(out.Schema)) == 0 {
		out.Schema = nil
	}
	return marshalTyped(TypeInlineSchemaLoader, out)
}

func (l JSONFileSchemaLoader) MarshalJSON() ([]byte, error) {
	type alias JSONFileSchemaLoader
	return marshalTyped(TypeJSONFileSchemaLoader, alias(l))
}

func (l DefaultSchemaLoader) MarshalJSON() ([]byte, error) {
	return marshalTyped(TypeDefaultSchemaLoader, struct{}{})
}

func (l UnknownSchemaLoader) MarshalJSON() ([]byte, error) {
	return marshalUnknown(l.Kind, l.Fields)
}

// DecodeSchemaLoader decodes a schema loader by its discriminant. A loader
// without a discriminant that carries a schema is treated as inline.
func DecodeSchemaLoader(data []byte) (SchemaLoader, error) {
	if isNull(data) {
		return nil, nil
	}
	kind, err := peekType(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case TypeInlineSchemaLoader, "":
		var out InlineSchemaLoader
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", TypeInlineSchemaLoader, err)
		}
		return out, nil
	case TypeJSONFileSchemaLoader:
		var out JSONFileSchemaLoader
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return out, nil
	case TypeDefaultSchemaLoader:
		return DefaultSchemaLoader{}, nil
	default:
		fields, err := rawFields(data)
		if err != nil {
			return nil, err
		}
		return UnknownSchemaLoader{Kind: kind, Fields: fields}, nil
	}
}
