package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mohae/deepcopy"

	logpkg "github.com/goliatone/go-connector-builder/internal/log"
	"github.com/goliatone/go-connector-builder/pkg/builder"
	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// ToBuilderFormValues reconstructs form values from a manifest. The result is
// built from fresh defaults; only the connector name is taken from current.
// The first construct the form cannot express aborts the conversion with a
// *ManifestCompatibilityError.
func (c *Converter) ToBuilderFormValues(m manifest.Manifest, current builder.BuilderFormValues) (builder.BuilderFormValues, error) {
	r := &reverse{logger: c.logger, newID: c.newID}

	values := builder.DefaultFormValues()
	values.Global.ConnectorName = current.Global.ConnectorName

	if err := r.rejectCustomAuthenticators(m.Streams); err != nil {
		return builder.BuilderFormValues{}, err
	}

	if len(m.Streams) > 0 {
		first := m.Streams[0]
		retriever, ok := first.Retriever.(manifest.SimpleRetriever)
		if !ok {
			return builder.BuilderFormValues{}, r.reject(first.Name, "doesn't use a SimpleRetriever")
		}
		r.urlBase = retriever.Requester.URLBase
		r.authenticator = retriever.Requester.Authenticator
		values.Global.URLBase = r.urlBase
		if r.authenticator != nil {
			auth, err := r.formAuthenticator(r.authenticator, first.Name)
			if err != nil {
				return builder.BuilderFormValues{}, err
			}
			values.Global.Authenticator = auth
		}

		streams := make([]builder.BuilderStream, 0, len(m.Streams))
		for _, stream := range m.Streams {
			converted, err := r.stream(stream)
			if err != nil {
				return builder.BuilderFormValues{}, err
			}
			streams = append(streams, converted)
		}
		values.Streams = streams
	}

	if m.Spec != nil {
		inputs, err := r.inputs(m.Spec.ConnectionSpecification)
		if err != nil {
			return builder.BuilderFormValues{}, err
		}
		values.Inputs = inputs
	}

	return values, nil
}

type reverse struct {
	logger        *slog.Logger
	newID         func() string
	urlBase       string
	authenticator manifest.Authenticator
}

func (r *reverse) reject(streamName, message string) error {
	r.logger.Debug("manifest rejected",
		slog.String(logpkg.StreamKey, streamName),
		slog.String(logpkg.ReasonKey, message),
	)
	return NewManifestCompatibilityError(streamName, message)
}

func (r *reverse) rejectCustomAuthenticators(streams []manifest.DeclarativeStream) error {
	for _, stream := range streams {
		retriever, ok := stream.Retriever.(manifest.SimpleRetriever)
		if !ok {
			continue
		}
		if _, custom := retriever.Requester.Authenticator.(manifest.CustomAuthenticator); custom {
			return r.reject(stream.Name, "uses a CustomAuthenticator")
		}
	}
	return nil
}

func (r *reverse) formAuthenticator(auth manifest.Authenticator, streamName string) (builder.Authenticator, error) {
	switch a := auth.(type) {
	case manifest.OAuthAuthenticator:
		out, err := builder.OAuthFromManifest(a)
		if err != nil {
			return nil, r.reject(streamName, "refresh_request_body contains non-string values")
		}
		return out, nil
	case manifest.CustomAuthenticator:
		return nil, r.reject(streamName, "uses a CustomAuthenticator")
	case manifest.NoAuth, manifest.APIKeyAuthenticator, manifest.BearerAuthenticator,
		manifest.BasicHTTPAuthenticator, manifest.SessionTokenAuthenticator:
		return a, nil
	default:
		return nil, r.reject(streamName, fmt.Sprintf("authenticator type %s is unsupported", auth.AuthenticatorType()))
	}
}

var authenticatorComparison = []cmp.Option{
	cmp.Comparer(func(x, y *manifest.ValueMap) bool {
		if valueMapLen(x) != valueMapLen(y) {
			return false
		}
		if valueMapLen(x) == 0 {
			return true
		}
		for pair := x.Oldest(); pair != nil; pair = pair.Next() {
			value, ok := y.Get(pair.Key)
			if !ok || !cmp.Equal(pair.Value, value) {
				return false
			}
		}
		return true
	}),
	cmpopts.EquateEmpty(),
}

func valueMapLen(m *manifest.ValueMap) int {
	if m == nil {
		return 0
	}
	return m.Len()
}

// sameAuthenticator compares manifest authenticators structurally, including
// the fields they do not model. A missing authenticator equals NoAuth and
// mapping order is ignored.
func sameAuthenticator(a, b manifest.Authenticator) bool {
	if a == nil {
		a = manifest.NoAuth{}
	}
	if b == nil {
		b = manifest.NoAuth{}
	}
	return cmp.Equal(a, b, authenticatorComparison...)
}

func (r *reverse) stream(stream manifest.DeclarativeStream) (builder.BuilderStream, error) {
	name := stream.Name
	retriever, ok := stream.Retriever.(manifest.SimpleRetriever)
	if !ok {
		return builder.BuilderStream{}, r.reject(name, "doesn't use a SimpleRetriever")
	}
	requester := retriever.Requester

	if !sameAuthenticator(requester.Authenticator, r.authenticator) {
		return builder.BuilderStream{}, r.reject(name, "authenticator does not match the first stream's")
	}
	if requester.URLBase != r.urlBase {
		return builder.BuilderStream{}, r.reject(name, "url_base does not match the first stream's")
	}

	out := builder.NewStream(r.newID())
	out.Name = name
	out.URLPath = requester.Path

	extractor := retriever.RecordSelector.Extractor
	if extractor.Type != "" && extractor.Type != manifest.TypeDpathExtractor {
		return builder.BuilderStream{}, r.reject(name, fmt.Sprintf("record_selector uses a %s", extractor.Type))
	}
	if extractor.FieldPointer != nil {
		out.FieldPointer = slices.Clone(extractor.FieldPointer)
	}

	if provider := requester.RequestOptionsProvider; provider != nil {
		options, err := r.requestOptions(provider, name)
		if err != nil {
			return builder.BuilderStream{}, err
		}
		out.RequestOptions = options
	}

	switch requester.HTTPMethod {
	case "", string(builder.HTTPMethodGet):
		out.HTTPMethod = builder.HTTPMethodGet
	case string(builder.HTTPMethodPost):
		out.HTTPMethod = builder.HTTPMethodPost
	default:
		return builder.BuilderStream{}, r.reject(name, "http_method is not GET or POST")
	}

	primaryKey := retriever.PrimaryKey
	if primaryKey == nil {
		primaryKey = stream.PrimaryKey
	}
	keys, err := r.primaryKey(primaryKey, name)
	if err != nil {
		return builder.BuilderStream{}, err
	}
	out.PrimaryKey = keys

	paginator, err := r.paginator(retriever.Paginator, name)
	if err != nil {
		return builder.BuilderStream{}, err
	}
	out.Paginator = paginator

	if retriever.StreamSlicer != nil {
		slicer, err := r.slicer(retriever.StreamSlicer, name, false)
		if err != nil {
			return builder.BuilderStream{}, err
		}
		out.StreamSlicer = slicer
	}

	schema, err := r.schema(stream.SchemaLoader, name)
	if err != nil {
		return builder.BuilderStream{}, err
	}
	out.Schema = schema

	return out, nil
}

// requestOptions reads the provider mappings into form pairs. Parameters,
// headers and body data travel as text, so scalar values are rendered as
// strings. The JSON body keeps value types on the wire and must hold strings
// only. body data wins over the JSON body when both are set.
func (r *reverse) requestOptions(provider *manifest.RequestOptionsProvider, streamName string) (builder.RequestOptions, error) {
	var out builder.RequestOptions
	var err error
	if out.RequestParameters, err = builder.ScalarPairsFromValueMap(provider.RequestParameters); err != nil {
		return out, r.reject(streamName, "request_parameters contains non-string values")
	}
	if out.RequestHeaders, err = builder.ScalarPairsFromValueMap(provider.RequestHeaders); err != nil {
		return out, r.reject(streamName, "request_headers contains non-string values")
	}
	if provider.RequestBodyData != nil {
		if out.RequestBody, err = builder.ScalarPairsFromValueMap(provider.RequestBodyData); err != nil {
			return out, r.reject(streamName, "request_body_data contains non-string values")
		}
		return out, nil
	}
	if out.RequestBody, err = builder.PairsFromValueMap(provider.RequestBodyJSON); err != nil {
		return out, r.reject(streamName, "request_body_json contains non-string values")
	}
	return out, nil
}

func (r *reverse) primaryKey(key *manifest.PrimaryKey, streamName string) ([]string, error) {
	switch {
	case key == nil:
		return []string{}, nil
	case key.IsComposite():
		return nil, r.reject(streamName, "primary_key contains nested arrays")
	case key.IsList():
		return slices.Clone(key.Fields), nil
	default:
		return []string{key.Field}, nil
	}
}

func (r *reverse) paginator(paginator manifest.Paginator, streamName string) (*builder.BuilderPaginator, error) {
	switch p := paginator.(type) {
	case nil, manifest.NoPagination:
		return nil, nil
	case manifest.DefaultPaginator:
		if p.PageTokenOption == nil {
			return nil, r.reject(streamName, "paginator does not define a page_token_option")
		}
		if p.URLBase != r.urlBase {
			return nil, r.reject(streamName, "paginator.url_base does not match the first stream's url_base")
		}
		switch p.PaginationStrategy.(type) {
		case manifest.CursorPagination, manifest.OffsetIncrement, manifest.PageIncrement:
		case nil:
			return nil, r.reject(streamName, "paginator does not define a pagination_strategy")
		default:
			return nil, r.reject(streamName, fmt.Sprintf("paginator uses a %s", p.PaginationStrategy.StrategyType()))
		}
		return &builder.BuilderPaginator{
			Strategy:        p.PaginationStrategy,
			PageTokenOption: *p.PageTokenOption,
			PageSizeOption:  cloneRequestOption(p.PageSizeOption),
		}, nil
	default:
		return nil, r.reject(streamName, fmt.Sprintf("paginator type %s is unsupported", paginator.PaginatorType()))
	}
}

// slicer converts a manifest slicer. nested is set for entries of a
// CartesianProductStreamSlicer, which may not contain another one.
func (r *reverse) slicer(slicer manifest.StreamSlicer, streamName string, nested bool) (builder.StreamSlicer, error) {
	switch s := slicer.(type) {
	case nil:
		return nil, r.reject(streamName, "stream_slicer has no type")
	case manifest.DatetimeStreamSlicer:
		return s, nil
	case manifest.ListStreamSlicer:
		return s, nil
	case manifest.CartesianProductStreamSlicer:
		if nested {
			return nil, r.reject(streamName, "stream_slicer contains a nested CartesianProductStreamSlicer")
		}
		out := builder.CartesianProductSlicer{
			StreamSlicers: make([]builder.StreamSlicer, 0, len(s.StreamSlicers)),
		}
		for _, sub := range s.StreamSlicers {
			converted, err := r.slicer(sub, streamName, true)
			if err != nil {
				return nil, err
			}
			out.StreamSlicers = append(out.StreamSlicers, converted)
		}
		return out, nil
	case manifest.SubstreamSlicer:
		return nil, r.reject(streamName, "stream_slicer contains a SubstreamSlicer")
	case manifest.CustomStreamSlicer:
		return nil, r.reject(streamName, "stream_slicer contains a CustomStreamSlicer")
	case manifest.SingleSlice:
		return nil, r.reject(streamName, "stream_slicer contains a SingleSlice")
	default:
		if slicer.SlicerType() == "" {
			return nil, r.reject(streamName, "stream_slicer has no type")
		}
		return nil, r.reject(streamName, "stream_slicer type is unsupported")
	}
}

func (r *reverse) schema(loader manifest.SchemaLoader, streamName string) (string, error) {
	switch l := loader.(type) {
	case nil:
		return "", nil
	case manifest.DefaultSchemaLoader:
		return "", r.reject(streamName, "schema_loader is DefaultSchemaLoader")
	case manifest.JSONFileSchemaLoader:
		return "", r.reject(streamName, "schema_loader is JsonFileSchemaLoader")
	case manifest.InlineSchemaLoader:
		if !l.HasSchema() {
			return "", nil
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, l.Schema); err != nil {
			return "", fmt.Errorf("convert: stream %s: inline schema: %w", streamName, err)
		}
		return buf.String(), nil
	default:
		return "", r.reject(streamName, fmt.Sprintf("schema_loader type %s is unsupported", loader.SchemaLoaderType()))
	}
}

// inputs reads every spec property back as an explicit input. Inputs that
// were inferred from the authenticator come back as explicit ones.
func (r *reverse) inputs(spec manifest.ConnectionSpecification) ([]builder.BuilderFormInput, error) {
	out := []builder.BuilderFormInput{}
	if spec.Properties == nil {
		return out, nil
	}
	for pair := spec.Properties.Oldest(); pair != nil; pair = pair.Next() {
		definition, ok := pair.Value.(map[string]any)
		if !ok {
			return nil, r.reject("", fmt.Sprintf("spec property %s is not an object", pair.Key))
		}
		out = append(out, builder.BuilderFormInput{
			Key:        pair.Key,
			Required:   slices.Contains(spec.Required, pair.Key),
			Definition: deepcopy.Copy(definition).(map[string]any),
		})
	}
	return out, nil
}
