package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-connector-builder/pkg/builder"
	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

// LoadManifest reads a JSON or YAML manifest fixture using a file source.
func LoadManifest(t *testing.T, path string) manifest.Manifest {
	t.Helper()

	m, err := LoadManifestFromPath(path)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	return m
}

// LoadManifestFromPath returns a Manifest without requiring testing.T so
// fixtures can be wired in setup functions.
func LoadManifestFromPath(path string) (manifest.Manifest, error) {
	if path == "" {
		return manifest.Manifest{}, errors.New("testsupport: manifest path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("testsupport: read manifest: %w", err)
	}
	doc, err := manifest.NewDocument(manifest.SourceFromFile(path), data)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("testsupport: new document: %w", err)
	}
	return manifest.DecodeDocument(doc)
}

// MustLoadFormValues loads a JSON fixture into BuilderFormValues.
func MustLoadFormValues(t *testing.T, path string) builder.BuilderFormValues {
	t.Helper()

	values, err := LoadFormValues(path)
	if err != nil {
		t.Fatalf("load form values: %v", err)
	}
	return values
}

// LoadFormValues reads a JSON fixture into BuilderFormValues, returning an
// error for callers managing setup outside of *testing.T.
func LoadFormValues(path string) (builder.BuilderFormValues, error) {
	if path == "" {
		return builder.BuilderFormValues{}, errors.New("testsupport: form values path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return builder.BuilderFormValues{}, fmt.Errorf("testsupport: read form values: %w", err)
	}
	values, err := builder.Decode(data)
	if err != nil {
		return builder.BuilderFormValues{}, fmt.Errorf("testsupport: %w", err)
	}
	return values, nil
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareJSON decodes both payloads into generic values and returns their
// diff, so formatting and key order do not matter.
func CompareJSON(want, got []byte) (string, error) {
	var wantValue, gotValue any
	if err := json.Unmarshal(want, &wantValue); err != nil {
		return "", fmt.Errorf("testsupport: decode expected JSON: %w", err)
	}
	if err := json.Unmarshal(got, &gotValue); err != nil {
		return "", fmt.Errorf("testsupport: decode actual JSON: %w", err)
	}
	return cmp.Diff(wantValue, gotValue), nil
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// SequentialIDs returns an id generator yielding ids in order. It fails the
// test when more ids are requested than provided.
func SequentialIDs(t *testing.T, ids ...string) func() string {
	t.Helper()
	next := 0
	return func() string {
		if next >= len(ids) {
			t.Fatalf("id generator exhausted after %d ids", len(ids))
			return ""
		}
		id := ids[next]
		next++
		return id
	}
}
