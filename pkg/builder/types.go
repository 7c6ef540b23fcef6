package builder

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// HTTPMethod is the request method of a stream. Only GET and POST are
// expressible in the form.
type HTTPMethod string

const (
	HTTPMethodGet  HTTPMethod = "GET"
	HTTPMethodPost HTTPMethod = "POST"
)

// BuilderFormValues is the complete form state.
type BuilderFormValues struct {
	Global                 GlobalSettings            `json:"global"`
	Inputs                 []BuilderFormInput        `json:"inputs"`
	InferredInputOverrides map[string]map[string]any `json:"inferredInputOverrides"`
	Streams                []BuilderStream           `json:"streams"`
}

// GlobalSettings holds the values shared by every stream.
type GlobalSettings struct {
	ConnectorName string        `json:"connectorName"`
	URLBase       string        `json:"urlBase"`
	Authenticator Authenticator `json:"authenticator"`
}

func (g *GlobalSettings) UnmarshalJSON(data []byte) error {
	type alias GlobalSettings
	aux := struct {
		*alias
		Authenticator json.RawMessage `json:"authenticator"`
	}{alias: (*alias)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	auth, err := DecodeAuthenticator(aux.Authenticator)
	if err != nil {
		return fmt.Errorf("authenticator: %w", err)
	}
	g.Authenticator = auth
	return nil
}

// BuilderFormInput is a connector configuration field. Definition is an opaque
// JSON Schema object.
type BuilderFormInput struct {
	Key        string         `json:"key"`
	Required   bool           `json:"required"`
	Definition map[string]any `json:"definition"`
}

// BuilderStream is a single stream of the form. ID is stable across edits and
// is the key substream slicers use to reference a parent stream.
type BuilderStream struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	URLPath        string            `json:"urlPath"`
	FieldPointer   []string          `json:"fieldPointer"`
	PrimaryKey     []string          `json:"primaryKey"`
	HTTPMethod     HTTPMethod        `json:"httpMethod"`
	RequestOptions RequestOptions    `json:"requestOptions"`
	Paginator      *BuilderPaginator `json:"paginator,omitempty"`
	StreamSlicer   StreamSlicer      `json:"streamSlicer,omitempty"`
	Schema         string            `json:"schema,omitempty"`
}

func (s *BuilderStream) UnmarshalJSON(data []byte) error {
	type alias BuilderStream
	aux := struct {
		*alias
		StreamSlicer json.RawMessage `json:"streamSlicer"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	slicer, err := DecodeStreamSlicer(aux.StreamSlicer)
	if err != nil {
		return fmt.Errorf("stream %q streamSlicer: %w", s.Name, err)
	}
	s.StreamSlicer = slicer
	return nil
}

// RequestOptions holds the ordered request parameters, headers and body.
type RequestOptions struct {
	RequestParameters KeyValuePairs `json:"requestParameters"`
	RequestHeaders    KeyValuePairs `json:"requestHeaders"`
	RequestBody       KeyValuePairs `json:"requestBody"`
}

// BuilderPaginator configures pagination of a stream.
type BuilderPaginator struct {
	Strategy        manifest.PaginationStrategy `json:"strategy"`
	PageTokenOption manifest.RequestOption      `json:"pageTokenOption"`
	PageSizeOption  *manifest.RequestOption     `json:"pageSizeOption,omitempty"`
}

func (p *BuilderPaginator) UnmarshalJSON(data []byte) error {
	type alias BuilderPaginator
	aux := struct {
		*alias
		Strategy json.RawMessage `json:"strategy"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	strategy, err := manifest.DecodePaginationStrategy(aux.Strategy)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	p.Strategy = strategy
	return nil
}

// AllInputs returns the explicit inputs followed by the inferred inputs of
// the current authenticator.
func (v BuilderFormValues) AllInputs() []BuilderFormInput {
	inferred := InferredInputs(v.Global, v.InferredInputOverrides)
	out := make([]BuilderFormInput, 0, len(v.Inputs)+len(inferred))
	out = append(out, v.Inputs...)
	out = append(out, inferred...)
	return out
}

// Decode parses form values from JSON.
func Decode(raw []byte) (BuilderFormValues, error) {
	var out BuilderFormValues
	if err := json.Unmarshal(raw, &out); err != nil {
		return BuilderFormValues{}, fmt.Errorf("builder: decode form values: %w", err)
	}
	return out, nil
}
