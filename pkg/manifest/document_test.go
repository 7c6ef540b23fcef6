package manifest

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const orderedYAML = `version: 0.1.0
type: DeclarativeSource
check:
  type: CheckStream
  stream_names: []
streams:
  - type: DeclarativeStream
    name: users
    retriever:
      type: SimpleRetriever
      requester:
        type: HttpRequester
        url_base: https://api.example.com
        path: /users
        request_options_provider:
          request_parameters:
            zeta: "1"
            alpha: "2"
      record_selector:
        type: RecordSelector
        extractor:
          type: DpathExtractor
          field_pointer: []
`

func TestYAMLToJSONKeepsKeyOrder(t *testing.T) {
	t.Parallel()

	raw, err := YAMLToJSON([]byte("b: 1\na: \"2\"\nc: [true, null]\n"))
	if err != nil {
		t.Fatalf("YAMLToJSON returned error: %v", err)
	}
	if want := `{"b":1,"a":"2","c":[true,null]}`; string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}

func TestDecodeYAMLKeepsMappingOrder(t *testing.T) {
	t.Parallel()

	m, err := Decode([]byte(orderedYAML))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	retriever, ok := m.Streams[0].Retriever.(SimpleRetriever)
	if !ok {
		t.Fatalf("expected SimpleRetriever, got %T", m.Streams[0].Retriever)
	}
	params := retriever.Requester.RequestOptionsProvider.RequestParameters
	var keys []string
	for pair := params.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, keys); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := Decode([]byte(orderedYAML))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	encoded, err := Encode(m, FormatYAML)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.HasPrefix(string(encoded), "type: DeclarativeSource\n") {
		t.Fatalf("expected type first, got:\n%s", encoded)
	}
	if !strings.Contains(string(encoded), `zeta: "1"`) {
		t.Fatalf("expected numeric string to stay quoted, got:\n%s", encoded)
	}

	again, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode of encoded YAML returned error: %v", err)
	}
	first, err := Encode(m, FormatJSON)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	second, err := Encode(again, FormatJSON)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsEmptyDocument(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte("  \n")); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]Format{"json": FormatJSON, ".yml": FormatYAML, "YAML": FormatYAML} {
		got, err := ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Fatalf("expected error for toml")
	}
}
