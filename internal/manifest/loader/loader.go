package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// Loader implements manifest.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

var _ manifest.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options manifest.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a document from the provided source and wraps it in a
// Document. The document's format comes from the response content type for
// URLs and from the name's extension otherwise; without either it is
// detected from the payload when decoded.
func (l *Loader) Load(ctx context.Context, src manifest.Source) (manifest.Document, error) {
	if src == nil {
		return manifest.Document{}, errors.New("manifest loader: source is nil")
	}

	var (
		data   []byte
		format manifest.Format
		err    error
	)

	switch src.Kind() {
	case manifest.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
		format = extensionFormat(src.Location())
	case manifest.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
		format = extensionFormat(src.Location())
	case manifest.SourceKindURL:
		if !l.allowHTTP {
			return manifest.Document{}, errors.New("manifest loader: http support disabled")
		}
		data, format, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("manifest loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return manifest.Document{}, fmt.Errorf("manifest loader: load %q: %w", src.Location(), err)
	}

	doc, err := manifest.NewDocument(src, data)
	if err != nil {
		return manifest.Document{}, err
	}
	return doc.WithFormat(format), nil
}
