package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// maxDocumentBytes caps remote manifest payloads.
const maxDocumentBytes = 8 << 20

// loadHTTP fetches url and returns the payload with the format declared by
// the response, or by the URL's extension when the response declares none.
func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, manifest.Format, error) {
	if client == nil {
		return nil, "", errors.New("manifest loader: http client is not configured")
	}
	if url == "" {
		return nil, "", errors.New("manifest loader: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", acceptFor(url))

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", errors.New("manifest loader: unexpected status " + resp.Status)
	}
	format, html := contentTypeFormat(resp.Header.Get("Content-Type"))
	if html {
		return nil, "", fmt.Errorf("manifest loader: %s returned an HTML page", url)
	}
	if format == "" {
		format = extensionFormat(url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, "", err
	}
	return data, format, nil
}
