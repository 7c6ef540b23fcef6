package convert

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/mohae/deepcopy"

	logpkg "github.com/goliatone/go-connector-builder/internal/log"
	"github.com/goliatone/go-connector-builder/pkg/builder"
	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// ToManifest converts form values into a manifest. The conversion never
// fails and does not modify values.
func (c *Converter) ToManifest(values builder.BuilderFormValues) manifest.Manifest {
	f := newForward(c.logger, values)

	streams := make([]manifest.DeclarativeStream, 0, len(values.Streams))
	for _, stream := range values.Streams {
		streams = append(streams, f.stream(stream, nil))
	}

	spec := connectorSpec(values.AllInputs())
	return manifest.Manifest{
		Version: c.version,
		Check:   manifest.CheckStream{StreamNames: []string{}},
		Streams: streams,
		Spec:    &spec,
	}
}

type forward struct {
	logger *slog.Logger
	global builder.GlobalSettings
	arena  map[string]builder.BuilderStream
}

func newForward(logger *slog.Logger, values builder.BuilderFormValues) *forward {
	return &forward{logger: logger, global: values.Global, arena: values.StreamsByID()}
}

// stream builds the declarative stream. visited holds the ids of the streams
// being expanded above this one.
func (f *forward) stream(stream builder.BuilderStream, visited []string) manifest.DeclarativeStream {
	return manifest.DeclarativeStream{
		Name:         stream.Name,
		PrimaryKey:   manifest.ListPrimaryKey(stream.PrimaryKey),
		SchemaLoader: f.schemaLoader(stream),
		Retriever: manifest.SimpleRetriever{
			Name:       stream.Name,
			PrimaryKey: manifest.ListPrimaryKey(stream.PrimaryKey),
			Requester: manifest.HTTPRequester{
				Name:       stream.Name,
				URLBase:    f.global.URLBase,
				Path:       stream.URLPath,
				HTTPMethod: string(stream.HTTPMethod),
				RequestOptionsProvider: &manifest.RequestOptionsProvider{
					RequestParameters: stream.RequestOptions.RequestParameters.ToValueMap(),
					RequestHeaders:    stream.RequestOptions.RequestHeaders.ToValueMap(),
					RequestBodyJSON:   stream.RequestOptions.RequestBody.ToValueMap(),
				},
				Authenticator: f.authenticator(),
			},
			RecordSelector: manifest.RecordSelector{
				Extractor: manifest.RecordExtractor{
					Type:         manifest.TypeDpathExtractor,
					FieldPointer: slices.Clone(stream.FieldPointer),
				},
			},
			Paginator:    f.paginator(stream.Paginator),
			StreamSlicer: f.slicer(stream.StreamSlicer, stream.Name, appendVisited(visited, stream.ID)),
		},
	}
}

func appendVisited(visited []string, id string) []string {
	out := make([]string, len(visited), len(visited)+1)
	copy(out, visited)
	return append(out, id)
}

func (f *forward) schemaLoader(stream builder.BuilderStream) manifest.SchemaLoader {
	if stream.Schema == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(stream.Schema)); err != nil {
		f.logger.Debug("inline schema dropped",
			slog.String(logpkg.StreamKey, stream.Name),
			slog.String(logpkg.ReasonKey, err.Error()),
		)
		return nil
	}
	return manifest.InlineSchemaLoader{Schema: json.RawMessage(buf.Bytes())}
}

func (f *forward) authenticator() manifest.Authenticator {
	switch auth := f.global.Authenticator.(type) {
	case nil:
		return nil
	case builder.OAuthAuthenticator:
		return auth.ToManifest()
	case manifest.APIKeyAuthenticator:
		auth.Extra = cloneExtra(auth.Extra)
		return auth
	case manifest.BearerAuthenticator:
		auth.Extra = cloneExtra(auth.Extra)
		return auth
	case manifest.BasicHTTPAuthenticator:
		auth.Extra = cloneExtra(auth.Extra)
		return auth
	case manifest.SessionTokenAuthenticator:
		auth.APIURL = f.global.URLBase
		auth.Extra = cloneExtra(auth.Extra)
		return auth
	case manifest.OAuthAuthenticator:
		out := auth
		out.RefreshRequestBody = cloneValueMap(auth.RefreshRequestBody)
		out.Extra = cloneExtra(auth.Extra)
		return out
	case manifest.Authenticator:
		return auth
	default:
		return foreignAuthenticator(auth)
	}
}

// foreignAuthenticator carries an authenticator implemented outside this
// module through its JSON encoding.
func foreignAuthenticator(auth builder.Authenticator) manifest.Authenticator {
	out := manifest.UnknownAuthenticator{Kind: auth.AuthenticatorType()}
	raw, err := json.Marshal(auth)
	if err != nil {
		return out
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err == nil {
		delete(fields, "type")
		out.Fields = fields
	}
	return out
}

func cloneValueMap(in *manifest.ValueMap) *manifest.ValueMap {
	if in == nil {
		return nil
	}
	out := manifest.NewValueMap()
	for pair := in.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, deepcopy.Copy(pair.Value))
	}
	return out
}

func cloneExtra(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	return deepcopy.Copy(in).(map[string]any)
}

func (f *forward) paginator(paginator *builder.BuilderPaginator) manifest.Paginator {
	if paginator == nil {
		return manifest.NoPagination{}
	}
	token := paginator.PageTokenOption
	return manifest.DefaultPaginator{
		PageTokenOption:    &token,
		PageSizeOption:     cloneRequestOption(paginator.PageSizeOption),
		PaginationStrategy: paginator.Strategy,
		URLBase:            f.global.URLBase,
	}
}

func cloneRequestOption(option *manifest.RequestOption) *manifest.RequestOption {
	if option == nil {
		return nil
	}
	out := *option
	return &out
}

func (f *forward) slicer(slicer builder.StreamSlicer, streamName string, visited []string) manifest.StreamSlicer {
	switch s := slicer.(type) {
	case nil:
		return nil
	case builder.SubstreamSlicer:
		return f.substream(s, streamName, visited)
	case builder.CartesianProductSlicer:
		// Siblings share the ancestry of the owning stream, not each other's.
		out := manifest.CartesianProductStreamSlicer{
			StreamSlicers: make([]manifest.StreamSlicer, 0, len(s.StreamSlicers)),
		}
		for _, sub := range s.StreamSlicers {
			if mapped := f.slicer(sub, streamName, visited); mapped != nil {
				out.StreamSlicers = append(out.StreamSlicers, mapped)
			}
		}
		return out
	case manifest.DatetimeStreamSlicer:
		s.Extra = cloneExtra(s.Extra)
		return s
	case manifest.ListStreamSlicer:
		s.Extra = cloneExtra(s.Extra)
		return s
	case manifest.StreamSlicer:
		return s
	default:
		return manifest.UnknownStreamSlicer{Kind: s.SlicerType()}
	}
}

func (f *forward) substream(slicer builder.SubstreamSlicer, streamName string, visited []string) manifest.StreamSlicer {
	empty := manifest.SubstreamSlicer{ParentStreamConfigs: []manifest.ParentStreamConfig{}}

	parent, ok := f.arena[slicer.ParentStreamReference]
	if !ok {
		f.logger.Debug("substream parent not found",
			slog.String(logpkg.StreamKey, streamName),
			slog.String(logpkg.ParentKey, slicer.ParentStreamReference),
		)
		return empty
	}
	if slices.Contains(visited, parent.ID) {
		f.logger.Debug("substream parent forms a cycle",
			slog.String(logpkg.StreamKey, streamName),
			slog.String(logpkg.ParentKey, parent.ID),
		)
		return empty
	}

	return manifest.SubstreamSlicer{
		ParentStreamConfigs: []manifest.ParentStreamConfig{{
			ParentKey:        slicer.ParentKey,
			StreamSliceField: slicer.StreamSliceField,
			RequestOption:    cloneRequestOption(slicer.RequestOption),
			Stream:           f.stream(parent, visited),
		}},
	}
}

// connectorSpec derives the connection specification from explicit and
// inferred inputs. A repeated key keeps its first position and takes the
// last definition.
func connectorSpec(inputs []builder.BuilderFormInput) manifest.Spec {
	required := make([]string, 0, len(inputs))
	properties := manifest.NewSchemaProperties()
	for _, input := range inputs {
		if input.Required {
			required = append(required, input.Key)
		}
		definition := map[string]any{}
		if input.Definition != nil {
			definition = deepcopy.Copy(input.Definition).(map[string]any)
		}
		properties.Set(input.Key, definition)
	}

	return manifest.Spec{
		ConnectionSpecification: manifest.ConnectionSpecification{
			Schema:               manifest.JSONSchemaDraft7,
			Type:                 "object",
			Required:             required,
			Properties:           properties,
			AdditionalProperties: true,
		},
		DocumentationURL: "",
	}
}
