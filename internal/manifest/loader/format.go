package loader

import (
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// Accept headers sent for URL sources, preferring the format the URL names.
const (
	acceptJSONFirst = "application/json, application/yaml;q=0.9, */*;q=0.5"
	acceptYAMLFirst = "application/yaml, application/x-yaml;q=0.9, application/json;q=0.8, */*;q=0.5"
)

// extensionFormat returns the format named by the extension of location, or
// "" when it names none. URL locations are judged by their path.
func extensionFormat(location string) manifest.Format {
	if u, err := url.Parse(location); err == nil && u.Scheme != "" {
		location = u.Path
	}
	format, err := manifest.ParseFormat(path.Ext(location))
	if err != nil {
		return ""
	}
	return format
}

func acceptFor(location string) string {
	if extensionFormat(location) == manifest.FormatYAML {
		return acceptYAMLFirst
	}
	return acceptJSONFirst
}

// contentTypeFormat maps a response Content-Type to a format. html reports
// pages that cannot be a manifest, such as login or error pages.
func contentTypeFormat(contentType string) (format manifest.Format, html bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch {
	case mediaType == "text/html":
		return "", true
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return manifest.FormatJSON, false
	case strings.Contains(mediaType, "yaml"):
		return manifest.FormatYAML, false
	default:
		return "", false
	}
}
