package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Manifest discriminants that are not part of a union.
const (
	TypeDeclarativeSource  = "DeclarativeSource"
	TypeDeclarativeStream  = "DeclarativeStream"
	TypeCheckStream        = "CheckStream"
	TypeSpec               = "Spec"
	TypeHTTPRequester      = "HttpRequester"
	TypeRecordSelector     = "RecordSelector"
	TypeDpathExtractor     = "DpathExtractor"
	TypeRequestOption      = "RequestOption"
	TypeParentStreamConfig = "ParentStreamConfig"
	TypeMinMaxDatetime     = "MinMaxDatetime"
)

// DefaultVersion is the manifest version emitted when none is configured.
const DefaultVersion = "0.1.0"

// JSONSchemaDraft7 is the $schema identifier of the connection specification.
const JSONSchemaDraft7 = "http://json-schema.org/draft-07/schema#"

// ValueMap is an insertion-ordered mapping of JSON values. The manifest treats
// these mappings as unordered; order is kept only so documents re-encode
// stably.
type ValueMap = orderedmap.OrderedMap[string, any]

// SchemaProperties maps a connection specification property key to its JSON
// Schema definition, in declaration order.
type SchemaProperties = orderedmap.OrderedMap[string, any]

// NewValueMap returns an empty ValueMap.
func NewValueMap() *ValueMap {
	return orderedmap.New[string, any]()
}

// NewSchemaProperties returns an empty SchemaProperties mapping.
func NewSchemaProperties() *SchemaProperties {
	return orderedmap.New[string, any]()
}

// Manifest is the top-level DeclarativeSource document.
type Manifest struct {
	Version string              `json:"version"`
	Check   CheckStream         `json:"check"`
	Streams []DeclarativeStream `json:"streams"`
	Spec    *Spec               `json:"spec,omitempty"`
}

func (m Manifest) MarshalJSON() ([]byte, error) {
	type alias Manifest
	out := alias(m)
	if out.Streams == nil {
		out.Streams = []DeclarativeStream{}
	}
	return marshalTyped(TypeDeclarativeSource, out)
}

// CheckStream lists the streams used to check a connection.
type CheckStream struct {
	StreamNames []string `json:"stream_names"`
}

func (c CheckStream) MarshalJSON() ([]byte, error) {
	type alias CheckStream
	out := alias(c)
	if out.StreamNames == nil {
		out.StreamNames = []string{}
	}
	return marshalTyped(TypeCheckStream, out)
}

// Spec describes the connector configuration surface.
type Spec struct {
	ConnectionSpecification ConnectionSpecification `json:"connection_specification"`
	DocumentationURL        string                  `json:"documentation_url"`
}

func (s Spec) MarshalJSON() ([]byte, error) {
	type alias Spec
	return marshalTyped(TypeSpec, alias(s))
}

// ConnectionSpecification is the JSON Schema of the connector configuration.
// Property definitions are opaque JSON Schema values.
type ConnectionSpecification struct {
	Schema               string            `json:"$schema,omitempty"`
	Type                 string            `json:"type,omitempty"`
	Required             []string          `json:"required"`
	Properties           *SchemaProperties `json:"properties"`
	AdditionalProperties any               `json:"additionalProperties,omitempty"`
}

// DeclarativeStream is a single stream definition.
type DeclarativeStream struct {
	Name         string       `json:"name"`
	PrimaryKey   *PrimaryKey  `json:"primary_key,omitempty"`
	SchemaLoader SchemaLoader `json:"schema_loader,omitempty"`
	Retriever    Retriever    `json:"retriever"`
}

func (s DeclarativeStream) MarshalJSON() ([]byte, error) {
	type alias DeclarativeStream
	return marshalTyped(TypeDeclarativeStream, alias(s))
}

func (s *DeclarativeStream) UnmarshalJSON(data []byte) error {
	type alias DeclarativeStream
	aux := struct {
		*alias
		SchemaLoader json.RawMessage `json:"schema_loader"`
		Retriever    json.RawMessage `json:"retriever"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	loader, err := DecodeSchemaLoader(aux.SchemaLoader)
	if err != nil {
		return fmt.Errorf("stream %q schema_loader: %w", s.Name, err)
	}
	retriever, err := DecodeRetriever(aux.Retriever)
	if err != nil {
		return fmt.Errorf("stream %q retriever: %w", s.Name, err)
	}
	s.SchemaLoader = loader
	s.Retriever = retriever
	return nil
}

// HTTPRequester builds the outbound request of a SimpleRetriever.
type HTTPRequester struct {
	Name                   string                  `json:"name,omitempty"`
	URLBase                string                  `json:"url_base"`
	Path                   string                  `json:"path"`
	HTTPMethod             string                  `json:"http_method,omitempty"`
	RequestOptionsProvider *RequestOptionsProvider `json:"request_options_provider,omitempty"`
	Authenticator          Authenticator           `json:"authenticator,omitempty"`
}

func (r HTTPRequester) MarshalJSON() ([]byte, error) {
	type alias HTTPRequester
	return marshalTyped(TypeHTTPRequester, alias(r))
}

func (r *HTTPRequester) UnmarshalJSON(data []byte) error {
	type alias HTTPRequester
	aux := struct {
		*alias
		Authenticator json.RawMessage `json:"authenticator"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	auth, err := DecodeAuthenticator(aux.Authenticator)
	if err != nil {
		return fmt.Errorf("authenticator: %w", err)
	}
	r.Authenticator = auth
	return nil
}

// RequestOptionsProvider carries interpolated request parameters, headers and
// body. The discriminant is deliberately left out when empty: the builder
// server rejects it even though the schema declares it.
type RequestOptionsProvider struct {
	Type              string    `json:"type,omitempty"`
	RequestParameters *ValueMap `json:"request_parameters,omitempty"`
	RequestHeaders    *ValueMap `json:"request_headers,omitempty"`
	RequestBodyData   *ValueMap `json:"request_body_data,omitempty"`
	RequestBodyJSON   *ValueMap `json:"request_body_json,omitempty"`
}

// RecordSelector extracts records from a response body.
type RecordSelector struct {
	Extractor RecordExtractor `json:"extractor"`
}

func (s RecordSelector) MarshalJSON() ([]byte, error) {
	type alias RecordSelector
	return marshalTyped(TypeRecordSelector, alias(s))
}

// RecordExtractor locates records inside the response body. Only
// DpathExtractor is produced by this module; the discriminant is kept as
// decoded so other kinds can be detected.
type RecordExtractor struct {
	Type         string   `json:"type"`
	FieldPointer []string `json:"field_pointer"`
}

func (e RecordExtractor) MarshalJSON() ([]byte, error) {
	type alias RecordExtractor
	out := alias(e)
	if out.FieldPointer == nil {
		out.FieldPointer = []string{}
	}
	return json.Marshal(out)
}

// RequestOption describes where a value is injected into the request.
type RequestOption struct {
	InjectInto string `json:"inject_into"`
	FieldName  string `json:"field_name,omitempty"`
}

func (o RequestOption) MarshalJSON() ([]byte, error) {
	type alias RequestOption
	return marshalTyped(TypeRequestOption, alias(o))
}

// Request option injection points.
const (
	InjectIntoRequestParameter = "request_parameter"
	InjectIntoHeader           = "header"
	InjectIntoPath             = "path"
	InjectIntoBodyData         = "body_data"
	InjectIntoBodyJSON         = "body_json"
)

// InjectIntoValues lists every valid RequestOption.InjectInto value.
var InjectIntoValues = []string{
	InjectIntoRequestParameter,
	InjectIntoHeader,
	InjectIntoPath,
	InjectIntoBodyData,
	InjectIntoBodyJSON,
}

// PrimaryKey is the manifest primary_key, which is either a single field
// name, a list of field names, or a list of field paths (a composite key).
type PrimaryKey struct {
	Field     string
	Fields    []string
	Composite [][]string
}

// ListPrimaryKey returns a PrimaryKey encoded as a list of field names.
func ListPrimaryKey(fields []string) *PrimaryKey {
	out := make([]string, len(fields))
	copy(out, fields)
	return &PrimaryKey{Fields: out}
}

// SinglePrimaryKey returns a PrimaryKey encoded as a single field name.
func SinglePrimaryKey(field string) *PrimaryKey {
	return &PrimaryKey{Field: field}
}

// IsComposite reports whether the key is a list of field paths.
func (k PrimaryKey) IsComposite() bool {
	return k.Composite != nil
}

// IsList reports whether the key is a list of field names.
func (k PrimaryKey) IsList() bool {
	return k.Composite == nil && k.Fields != nil
}

func (k PrimaryKey) MarshalJSON() ([]byte, error) {
	switch {
	case k.Composite != nil:
		return json.Marshal(k.Composite)
	case k.Fields != nil:
		return json.Marshal(k.Fields)
	default:
		return json.Marshal(k.Field)
	}
}

func (k *PrimaryKey) UnmarshalJSON(data []byte) error {
	*k = PrimaryKey{}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		k.Field = single
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("primary_key must be a string or an array: %w", err)
	}
	composite := false
	for _, item := range items {
		if trimmed := bytes.TrimSpace(item); len(trimmed) > 0 && trimmed[0] == '[' {
			composite = true
			break
		}
	}
	if !composite {
		k.Fields = make([]string, 0, len(items))
		return json.Unmarshal(data, &k.Fields)
	}

	// A single field name next to field paths is a path of length one.
	k.Composite = make([][]string, 0, len(items))
	for idx, item := range items {
		var path []string
		if err := json.Unmarshal(item, &path); err != nil {
			var field string
			if err := json.Unmarshal(item, &field); err != nil {
				return fmt.Errorf("primary_key[%d] must be a string or an array of strings: %w", idx, err)
			}
			path = []string{field}
		}
		k.Composite = append(k.Composite, path)
	}
	return nil
}
