package manifest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeAuthenticatorVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want Authenticator
	}{
		{name: "null", raw: `null`, want: nil},
		{name: "no auth", raw: `{"type":"NoAuth"}`, want: NoAuth{}},
		{
			name: "api key",
			raw:  `{"type":"ApiKeyAuthenticator","header":"X-Key","api_token":"t"}`,
			want: APIKeyAuthenticator{Header: "X-Key", APIToken: "t"},
		},
		{
			name: "api key keeps unmodelled fields",
			raw:  `{"type":"ApiKeyAuthenticator","header":"X-Key","api_token":"t","$parameters":{"env":"prod"}}`,
			want: APIKeyAuthenticator{Header: "X-Key", APIToken: "t", Extra: map[string]any{"$parameters": map[string]any{"env": "prod"}}},
		},
		{
			name: "oauth keeps unmodelled fields",
			raw:  `{"type":"OAuthAuthenticator","client_id":"c","client_secret":"s","refresh_token":"r","token_refresh_endpoint":"https://x","refresh_token_updater":{}}`,
			want: OAuthAuthenticator{
				ClientID:             "c",
				ClientSecret:         "s",
				RefreshToken:         "r",
				TokenRefreshEndpoint: "https://x",
				Extra:                map[string]any{"refresh_token_updater": map[string]any{}},
			},
		},
		{
			name: "custom keeps extra fields",
			raw:  `{"type":"CustomAuthenticator","class_name":"source.Auth","region":"eu"}`,
			want: CustomAuthenticator{ClassName: "source.Auth", Extra: map[string]any{"region": "eu"}},
		},
		{
			name: "unknown kind",
			raw:  `{"type":"LegacyTokenAuthenticator","token":"x"}`,
			want: UnknownAuthenticator{Kind: "LegacyTokenAuthenticator", Fields: map[string]any{"token": "x"}},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeAuthenticator([]byte(tc.raw))
			if err != nil {
				t.Fatalf("DecodeAuthenticator returned error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("authenticator mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnknownVariantsReencode(t *testing.T) {
	t.Parallel()

	raw := `{"type":"AsyncRetriever","status_field":"state","polling":{"interval":5}}`
	retriever, err := DecodeRetriever([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeRetriever returned error: %v", err)
	}
	unknown, ok := retriever.(UnknownRetriever)
	if !ok {
		t.Fatalf("expected UnknownRetriever, got %T", retriever)
	}
	if unknown.RetrieverType() != "AsyncRetriever" {
		t.Fatalf("unexpected kind %q", unknown.RetrieverType())
	}

	encoded, err := json.Marshal(unknown)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"AsyncRetriever","polling":{"interval":5},"status_field":"state"}`
	if string(encoded) != want {
		t.Fatalf("expected %s, got %s", want, encoded)
	}
}

func TestCustomSlicerExtraFieldsDoNotOverrideKnownOnes(t *testing.T) {
	t.Parallel()

	slicer := CustomStreamSlicer{
		ClassName: "source.Slicer",
		Extra:     map[string]any{"class_name": "ignored", "type": "ignored", "window": "1d"},
	}
	encoded, err := json.Marshal(slicer)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"CustomStreamSlicer","class_name":"source.Slicer","window":"1d"}`
	if string(encoded) != want {
		t.Fatalf("expected %s, got %s", want, encoded)
	}
}

func TestDecodeStreamSlicerWithoutType(t *testing.T) {
	t.Parallel()

	slicer, err := DecodeStreamSlicer([]byte(`{"cursor_field":"x"}`))
	if err != nil {
		t.Fatalf("DecodeStreamSlicer returned error: %v", err)
	}
	if slicer.SlicerType() != "" {
		t.Fatalf("expected empty slicer type, got %q", slicer.SlicerType())
	}
}

func TestCartesianSlicerDecodesNestedVariants(t *testing.T) {
	t.Parallel()

	raw := `{"type":"CartesianProductStreamSlicer","stream_slicers":[
		{"type":"ListStreamSlicer","cursor_field":"a","slice_values":["1","2"]},
		{"type":"ListStreamSlicer","cursor_field":"b","slice_values":"{{ config['values'] }}"}
	]}`
	slicer, err := DecodeStreamSlicer([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeStreamSlicer returned error: %v", err)
	}
	want := CartesianProductStreamSlicer{StreamSlicers: []StreamSlicer{
		ListStreamSlicer{CursorField: "a", SliceValues: SliceValues{Values: []string{"1", "2"}}},
		ListStreamSlicer{CursorField: "b", SliceValues: SliceValues{Expression: "{{ config['values'] }}"}},
	}}
	if diff := cmp.Diff(want, slicer); diff != "" {
		t.Fatalf("slicer mismatch (-want +got):\n%s", diff)
	}
}

func TestDatetimeBoundForms(t *testing.T) {
	t.Parallel()

	var plain, bounded DatetimeBound
	if err := json.Unmarshal([]byte(`"{{ now_utc() }}"`), &plain); err != nil {
		t.Fatalf("unmarshal string bound: %v", err)
	}
	if plain.Value != "{{ now_utc() }}" || plain.MinMax != nil {
		t.Fatalf("unexpected string bound %+v", plain)
	}

	raw := `{"type":"MinMaxDatetime","datetime":"{{ config['start'] }}","min_datetime":"2020-01-01"}`
	if err := json.Unmarshal([]byte(raw), &bounded); err != nil {
		t.Fatalf("unmarshal object bound: %v", err)
	}
	if bounded.MinMax == nil || bounded.MinMax.MinDatetime != "2020-01-01" {
		t.Fatalf("unexpected object bound %+v", bounded)
	}
	encoded, err := json.Marshal(bounded)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != raw {
		t.Fatalf("expected %s, got %s", raw, encoded)
	}

	if err := json.Unmarshal([]byte(`42`), &bounded); err == nil {
		t.Fatalf("expected error for numeric bound")
	}
}

func TestPrimaryKeyForms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw       string
		composite bool
		list      bool
		want      PrimaryKey
	}{
		{raw: `"id"`, want: PrimaryKey{Field: "id"}},
		{raw: `["id","org"]`, list: true, want: PrimaryKey{Fields: []string{"id", "org"}}},
		{raw: `[]`, list: true, want: PrimaryKey{Fields: []string{}}},
		{raw: `[["id"],["org","id"]]`, composite: true, want: PrimaryKey{Composite: [][]string{{"id"}, {"org", "id"}}}},
	}
	for _, tc := range cases {
		var got PrimaryKey
		if err := json.Unmarshal([]byte(tc.raw), &got); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.raw, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s: primary key mismatch (-want +got):\n%s", tc.raw, diff)
		}
		if got.IsComposite() != tc.composite || got.IsList() != tc.list {
			t.Fatalf("%s: composite=%v list=%v", tc.raw, got.IsComposite(), got.IsList())
		}
		encoded, err := json.Marshal(got)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.raw, err)
		}
		if string(encoded) != tc.raw {
			t.Fatalf("expected %s, got %s", tc.raw, encoded)
		}
	}

	var mixed PrimaryKey
	if err := json.Unmarshal([]byte(`[["org","id"],"region"]`), &mixed); err != nil {
		t.Fatalf("mixed key: unmarshal: %v", err)
	}
	if !mixed.IsComposite() {
		t.Fatalf("expected a key with any nested array to be composite, got %+v", mixed)
	}
	if diff := cmp.Diff([][]string{{"org", "id"}, {"region"}}, mixed.Composite); diff != "" {
		t.Fatalf("mixed key mismatch (-want +got):\n%s", diff)
	}

	for _, raw := range []string{`{"id":true}`, `[["id"],1]`, `[["id",2]]`} {
		var invalid PrimaryKey
		if err := json.Unmarshal([]byte(raw), &invalid); err == nil {
			t.Fatalf("expected error for primary key %s", raw)
		}
	}
}

func TestSupportedVariantsReencodeUnmodelledFields(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		raw    string
		decode func([]byte) (any, error)
	}{
		{
			name:   "bearer",
			raw:    `{"type":"BearerAuthenticator","api_token":"t","$parameters":{"env":"prod"}}`,
			decode: func(b []byte) (any, error) { return DecodeAuthenticator(b) },
		},
		{
			name:   "session token",
			raw:    `{"type":"SessionTokenAuthenticator","header":"X","login_url":"/login","session_token_response_key":"token","validate_session_url":"/me","api_url":"https://api","request_authentication":{"type":"Bearer"}}`,
			decode: func(b []byte) (any, error) { return DecodeAuthenticator(b) },
		},
		{
			name:   "datetime slicer",
			raw:    `{"type":"DatetimeStreamSlicer","cursor_field":"updated","datetime_format":"%Y","start_datetime":"2020","end_datetime":"2021","step":"1y","cursor_granularity":"P1D"}`,
			decode: func(b []byte) (any, error) { return DecodeStreamSlicer(b) },
		},
		{
			name:   "list slicer",
			raw:    `{"type":"ListStreamSlicer","cursor_field":"region","slice_values":["eu"],"$parameters":{"p":1}}`,
			decode: func(b []byte) (any, error) { return DecodeStreamSlicer(b) },
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			decoded, err := tc.decode([]byte(tc.raw))
			if err != nil {
				t.Fatalf("decode returned error: %v", err)
			}
			encoded, err := json.Marshal(decoded)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			diff, err := jsonDiff(tc.raw, string(encoded))
			if err != nil {
				t.Fatalf("compare: %v", err)
			}
			if diff != "" {
				t.Fatalf("re-encoded variant mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func jsonDiff(want, got string) (string, error) {
	var wantValue, gotValue any
	if err := json.Unmarshal([]byte(want), &wantValue); err != nil {
		return "", err
	}
	if err := json.Unmarshal([]byte(got), &gotValue); err != nil {
		return "", err
	}
	return cmp.Diff(wantValue, gotValue), nil
}

func TestMarshalWithTypeRequiresObject(t *testing.T) {
	t.Parallel()

	if _, err := MarshalWithType("Thing", []string{"a"}); err == nil || !strings.Contains(err.Error(), "Thing") {
		t.Fatalf("expected object error, got %v", err)
	}
	encoded, err := MarshalWithType("Empty", struct{}{})
	if err != nil {
		t.Fatalf("MarshalWithType returned error: %v", err)
	}
	if string(encoded) != `{"type":"Empty"}` {
		t.Fatalf("unexpected encoding %s", encoded)
	}
}
