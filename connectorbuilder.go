// Package connectorbuilder converts between the connector builder's form
// values and declarative connector manifests.
//
// The root package re-exports the common entry points; the pkg/ packages hold
// the form model, the manifest types, validation and the converters.
package connectorbuilder

import (
	"context"
	"fmt"

	internalLoader "github.com/goliatone/go-connector-builder/internal/manifest/loader"
	"github.com/goliatone/go-connector-builder/pkg/builder"
	"github.com/goliatone/go-connector-builder/pkg/convert"
	"github.com/goliatone/go-connector-builder/pkg/manifest"
	"github.com/goliatone/go-connector-builder/pkg/testingvalues"
	"github.com/goliatone/go-connector-builder/pkg/validation"
)

// FormValues aliases builder.BuilderFormValues for callers that only import
// the root package.
type FormValues = builder.BuilderFormValues

// Manifest aliases manifest.Manifest.
type Manifest = manifest.Manifest

// ManifestCompatibilityError aliases convert.ManifestCompatibilityError.
type ManifestCompatibilityError = convert.ManifestCompatibilityError

// NewConverter exposes the converter constructor from the top-level module.
func NewConverter(options ...convert.Option) *convert.Converter {
	return convert.New(options...)
}

// NewLoader constructs a manifest loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...manifest.LoaderOption) manifest.Loader {
	cfg := manifest.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// DefaultFormValues returns an empty form.
func DefaultFormValues() FormValues {
	return builder.DefaultFormValues()
}

// ToManifest converts form values into a manifest.
func ToManifest(values FormValues, options ...convert.Option) Manifest {
	return convert.New(options...).ToManifest(values)
}

// ToBuilderFormValues converts a manifest into form values. Manifests the form
// cannot express yield a *ManifestCompatibilityError.
func ToBuilderFormValues(m Manifest, current FormValues, options ...convert.Option) (FormValues, error) {
	return convert.New(options...).ToBuilderFormValues(m, current)
}

// ValidateForm checks form values against the builder's field rules.
func ValidateForm(values FormValues) validation.Result {
	return validation.ValidateForm(values)
}

// InferredInputs lists the inputs implied by the form's authenticator.
func InferredInputs(values FormValues) []builder.BuilderFormInput {
	return builder.InferredInputs(values.Global, values.InferredInputOverrides)
}

// CheckTestingValues validates a connector configuration against the
// connection specification of m.
func CheckTestingValues(ctx context.Context, m Manifest, values map[string]any) validation.Result {
	return testingvalues.CheckManifest(ctx, m, values)
}

// LoadManifest loads and decodes a JSON or YAML manifest from src.
func LoadManifest(ctx context.Context, src manifest.Source, options ...manifest.LoaderOption) (Manifest, error) {
	doc, err := NewLoader(options...).Load(ctx, src)
	if err != nil {
		return Manifest{}, fmt.Errorf("connectorbuilder: load manifest: %w", err)
	}
	return manifest.DecodeDocument(doc)
}

// ImportManifest loads a manifest from src and converts it into form values.
func ImportManifest(ctx context.Context, src manifest.Source, current FormValues, options ...manifest.LoaderOption) (FormValues, error) {
	m, err := LoadManifest(ctx, src, options...)
	if err != nil {
		return FormValues{}, err
	}
	return convert.ToBuilderFormValues(m, current)
}

// IsManifestCompatibilityError reports whether err wraps a
// *ManifestCompatibilityError.
func IsManifestCompatibilityError(err error) bool {
	return convert.IsManifestCompatibilityError(err)
}
