package convert

import (
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/goliatone/go-connector-builder/pkg/builder"
	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// Converter maps between builder form values and manifests. The zero value is
// not usable; construct one with New.
type Converter struct {
	logger  *slog.Logger
	newID   func() string
	version string
}

// Option customises a Converter.
type Option func(*Converter)

// WithLogger sets the logger used for degradations and rejections. Events are
// logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator sets the function assigning ids to streams created by
// ToBuilderFormValues.
func WithIDGenerator(fn func() string) Option {
	return func(c *Converter) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithManifestVersion sets the version written by ToManifest.
func WithManifestVersion(version string) Option {
	return func(c *Converter) {
		if version != "" {
			c.version = version
		}
	}
}

// New constructs a Converter.
func New(options ...Option) *Converter {
	c := &Converter{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:   uuid.NewString,
		version: manifest.DefaultVersion,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

var defaultConverter = New()

// ToManifest converts form values with a default Converter.
func ToManifest(values builder.BuilderFormValues) manifest.Manifest {
	return defaultConverter.ToManifest(values)
}

// ToBuilderFormValues converts a manifest with a default Converter.
func ToBuilderFormValues(m manifest.Manifest, current builder.BuilderFormValues) (builder.BuilderFormValues, error) {
	return defaultConverter.ToBuilderFormValues(m, current)
}
