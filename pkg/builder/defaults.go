package builder

import "github.com/goliatone/go-connector-builder/pkg/manifest"

// DefaultFormValues returns an empty form. Every call returns a fresh value
// that shares nothing with previous results.
func DefaultFormValues() BuilderFormValues {
	return BuilderFormValues{
		Global: GlobalSettings{
			Authenticator: manifest.NoAuth{},
		},
		Inputs:                 []BuilderFormInput{},
		InferredInputOverrides: map[string]map[string]any{},
		Streams:                []BuilderStream{},
	}
}

// NewStream returns a stream with default values and the given id.
func NewStream(id string) BuilderStream {
	return BuilderStream{
		ID:           id,
		FieldPointer: []string{},
		PrimaryKey:   []string{},
		HTTPMethod:   HTTPMethodGet,
		RequestOptions: RequestOptions{
			RequestParameters: KeyValuePairs{},
			RequestHeaders:    KeyValuePairs{},
			RequestBody:       KeyValuePairs{},
		},
	}
}

// StreamsByID indexes the streams by id. When ids repeat, the first stream
// with the id wins.
func (v BuilderFormValues) StreamsByID() map[string]BuilderStream {
	out := make(map[string]BuilderStream, len(v.Streams))
	for _, stream := range v.Streams {
		if _, exists := out[stream.ID]; exists {
			continue
		}
		out[stream.ID] = stream
	}
	return out
}
