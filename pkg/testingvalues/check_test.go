package testingvalues

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

func connectionSpec() manifest.ConnectionSpecification {
	properties := manifest.NewSchemaProperties()
	properties.Set("api_key", map[string]any{"type": "string", "title": "API Key", "airbyte_secret": true})
	properties.Set("page_size", map[string]any{"type": "integer"})
	properties.Set("regions", map[string]any{"type": "array", "items": map[string]any{"type": "string"}})
	return manifest.ConnectionSpecification{
		Schema:               manifest.JSONSchemaDraft7,
		Type:                 "object",
		Required:             []string{"api_key"},
		Properties:           properties,
		AdditionalProperties: true,
	}
}

func TestCheckAcceptsValidValues(t *testing.T) {
	t.Parallel()

	result := Check(context.Background(), connectionSpec(), map[string]any{
		"api_key":   "secret",
		"page_size": 50,
		"regions":   []string{"eu"},
		"extra":     "allowed",
	})
	if !result.Valid {
		t.Fatalf("expected values to be valid, got %+v", result.Issues)
	}
}

func TestCheckReportsEveryViolation(t *testing.T) {
	t.Parallel()

	result := Check(context.Background(), connectionSpec(), map[string]any{
		"page_size": "fifty",
		"regions":   []any{"eu", 3},
	})
	if result.Valid {
		t.Fatalf("expected values to be invalid")
	}

	var paths []string
	for _, issue := range result.Issues {
		if issue.Code != CodeInvalidValue {
			t.Fatalf("unexpected code %q", issue.Code)
		}
		if issue.Message == "" {
			t.Fatalf("expected message for %q", issue.Path)
		}
		paths = append(paths, issue.Path)
	}
	for _, want := range []string{"api_key", "page_size", "regions[1]"} {
		if _, ok := result.IssueAt(want); !ok {
			t.Fatalf("expected issue at %q, got %v", want, paths)
		}
	}
}

func TestCheckManifestWithoutSpec(t *testing.T) {
	t.Parallel()

	result := CheckManifest(context.Background(), manifest.Manifest{}, map[string]any{"anything": 1})
	if !result.Valid {
		t.Fatalf("expected manifest without spec to accept values, got %+v", result.Issues)
	}
}

func TestCheckManifestUsesSpec(t *testing.T) {
	t.Parallel()

	m := manifest.Manifest{Spec: &manifest.Spec{ConnectionSpecification: connectionSpec()}}
	result := CheckManifest(context.Background(), m, nil)
	if result.Valid {
		t.Fatalf("expected missing api_key to be reported")
	}
	if _, ok := result.IssueAt("api_key"); !ok {
		t.Fatalf("expected issue at api_key, got %+v", result.Issues)
	}
}

func TestCheckCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := Check(ctx, connectionSpec(), map[string]any{"api_key": "x"})
	if result.Valid {
		t.Fatalf("expected cancelled context to fail the check")
	}
}

func TestFieldPath(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"":               nil,
		"api_key":        {"api_key"},
		"tokens[0].name": {"tokens", "0", "name"},
		"matrix[1][2]":   {"matrix", "1", "2"},
	}
	for want, segments := range cases {
		if diff := cmp.Diff(want, fieldPath(segments)); diff != "" {
			t.Fatalf("fieldPath(%v) mismatch (-want +got):\n%s", segments, diff)
		}
	}
}
