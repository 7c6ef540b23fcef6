package manifest

import (
	"encoding/json"
	"fmt"
)

// Authenticator discriminants.
const (
	TypeNoAuth                    = "NoAuth"
	TypeAPIKeyAuthenticator       = "ApiKeyAuthenticator"
	TypeBearerAuthenticator       = "BearerAuthenticator"
	TypeBasicHTTPAuthenticator    = "BasicHttpAuthenticator"
	TypeSessionTokenAuthenticator = "SessionTokenAuthenticator"
	TypeOAuthAuthenticator        = "OAuthAuthenticator"
	TypeCustomAuthenticator       = "CustomAuthenticator"
)

// Authenticator is the requester authentication strategy. Variants with an
// Extra field keep the fields they do not model, so they compare and
// re-encode faithfully.
type Authenticator interface {
	AuthenticatorType() string
	isAuthenticator()
}

// NoAuth sends requests without credentials.
type NoAuth struct{}

// APIKeyAuthenticator injects a token into a named header.
type APIKeyAuthenticator struct {
	Header   string         `json:"header"`
	APIToken string         `json:"api_token"`
	Extra    map[string]any `json:"-"`
}

// BearerAuthenticator sends an Authorization: Bearer token.
type BearerAuthenticator struct {
	APIToken string         `json:"api_token"`
	Extra    map[string]any `json:"-"`
}

// BasicHTTPAuthenticator uses HTTP basic authentication.
type BasicHTTPAuthenticator struct {
	Username string         `json:"username"`
	Password string         `json:"password,omitempty"`
	Extra    map[string]any `json:"-"`
}

// SessionTokenAuthenticator logs in once and reuses the session token.
type SessionTokenAuthenticator struct {
	Username                string         `json:"username,omitempty"`
	Password                string         `json:"password,omitempty"`
	SessionToken            string         `json:"session_token,omitempty"`
	Header                  string         `json:"header"`
	LoginURL                string         `json:"login_url"`
	SessionTokenResponseKey string         `json:"session_token_response_key"`
	ValidateSessionURL      string         `json:"validate_session_url"`
	APIURL                  string         `json:"api_url"`
	Extra                   map[string]any `json:"-"`
}

// OAuthAuthenticator refreshes an access token with a refresh token.
type OAuthAuthenticator struct {
	ClientID             string         `json:"client_id"`
	ClientSecret         string         `json:"client_secret"`
	RefreshToken         string         `json:"refresh_token"`
	TokenRefreshEndpoint string         `json:"token_refresh_endpoint"`
	AccessTokenName      string         `json:"access_token_name,omitempty"`
	ExpiresInName        string         `json:"expires_in_name,omitempty"`
	GrantType            string         `json:"grant_type,omitempty"`
	RefreshRequestBody   *ValueMap      `json:"refresh_request_body,omitempty"`
	Scopes               []string       `json:"scopes,omitempty"`
	TokenExpiryDate      string         `json:"token_expiry_date,omitempty"`
	Extra                map[string]any `json:"-"`
}

// CustomAuthenticator references an authenticator implemented in code.
type CustomAuthenticator struct {
	ClassName string         `json:"class_name"`
	Extra     map[string]any `json:"-"`
}

// UnknownAuthenticator holds an authenticator of a kind this package does not
// model.
type UnknownAuthenticator struct {
	Kind   string
	Fields map[string]any
}

func (NoAuth) AuthenticatorType() string                    { return TypeNoAuth }
func (APIKeyAuthenticator) AuthenticatorType() string       { return TypeAPIKeyAuthenticator }
func (BearerAuthenticator) AuthenticatorType() string       { return TypeBearerAuthenticator }
func (BasicHTTPAuthenticator) AuthenticatorType() string    { return TypeBasicHTTPAuthenticator }
func (SessionTokenAuthenticator) AuthenticatorType() string { return TypeSessionTokenAuthenticator }
func (OAuthAuthenticator) AuthenticatorType() string        { return TypeOAuthAuthenticator }
func (CustomAuthenticator) AuthenticatorType() string       { return TypeCustomAuthenticator }
func (a UnknownAuthenticator) AuthenticatorType() string    { return a.Kind }

func (NoAuth) isAuthenticator()                    {}
func (APIKeyAuthenticator) isAuthenticator()       {}
func (BearerAuthenticator) isAuthenticator()       {}
func (BasicHTTPAuthenticator) isAuthenticator()    {}
func (SessionTokenAuthenticator) isAuthenticator() {}
func (OAuthAuthenticator) isAuthenticator()        {}
func (CustomAuthenticator) isAuthenticator()       {}
func (UnknownAuthenticator) isAuthenticator()      {}

func (a NoAuth) MarshalJSON() ([]byte, error) {
	return marshalTyped(TypeNoAuth, struct{}{})
}

func (a APIKeyAuthenticator) MarshalJSON() ([]byte, error) {
	type alias APIKeyAuthenticator
	return marshalTypedExtra(TypeAPIKeyAuthenticator, alias(a), a.Extra)
}

func (a *APIKeyAuthenticator) UnmarshalJSON(data []byte) error {
	type alias APIKeyAuthenticator
	extra, err := decodeExtra(data, (*alias)(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}

func (a BearerAuthenticator) MarshalJSON() ([]byte, error) {
	type alias BearerAuthenticator
	return marshalTypedExtra(TypeBearerAuthenticator, alias(a), a.Extra)
}

func (a *BearerAuthenticator) UnmarshalJSON(data []byte) error {
	type alias BearerAuthenticator
	extra, err := decodeExtra(data, (*alias)(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}

func (a BasicHTTPAuthenticator) MarshalJSON() ([]byte, error) {
	type alias BasicHTTPAuthenticator
	return marshalTypedExtra(TypeBasicHTTPAuthenticator, alias(a), a.Extra)
}

func (a *BasicHTTPAuthenticator) UnmarshalJSON(data []byte) error {
	type alias BasicHTTPAuthenticator
	extra, err := decodeExtra(data, (*alias)(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}

func (a SessionTokenAuthenticator) MarshalJSON() ([]byte, error) {
	type alias SessionTokenAuthenticator
	return marshalTypedExtra(TypeSessionTokenAuthenticator, alias(a), a.Extra)
}

func (a *SessionTokenAuthenticator) UnmarshalJSON(data []byte) error {
	type alias SessionTokenAuthenticator
	extra, err := decodeExtra(data, (*alias)(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}

func (a OAuthAuthenticator) MarshalJSON() ([]byte, error) {
	type alias OAuthAuthenticator
	return marshalTypedExtra(TypeOAuthAuthenticator, alias(a), a.Extra)
}

func (a *OAuthAuthenticator) UnmarshalJSON(data []byte) error {
	type alias OAuthAuthenticator
	extra, err := decodeExtra(data, (*alias)(a))
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}

func (a CustomAuthenticator) MarshalJSON() ([]byte, error) {
	type alias CustomAuthenticator
	return marshalTypedExtra(TypeCustomAuthenticator, alias(a), a.Extra)
}

func (a *CustomAuthenticator) UnmarshalJSON(data []byte) error {
	type alias CustomAuthenticator
	if err := json.Unmarshal(data, (*alias)(a)); err != nil {
		return err
	}
	extra, err := extraFields(data, "class_name")
	if err != nil {
		return err
	}
	a.Extra = extra
	return nil
}

func (a UnknownAuthenticator) MarshalJSON() ([]byte, error) {
	return marshalUnknown(a.Kind, a.Fields)
}

// DecodeAuthenticator decodes an authenticator by its discriminant. A null or
// empty payload yields a nil Authenticator.
func DecodeAuthenticator(data []byte) (Authenticator, error) {
	if isNull(data) {
		return nil, nil
	}
	kind, err := peekType(data)
	if err != nil {
		return nil, err
	}

	var auth Authenticator
	switch kind {
	case TypeNoAuth:
		return NoAuth{}, nil
	case TypeAPIKeyAuthenticator:
		var out APIKeyAuthenticator
		err = json.Unmarshal(data, &out)
		auth = out
	case TypeBearerAuthenticator:
		var out BearerAuthenticator
		err = json.Unmarshal(data, &out)
		auth = out
	case TypeBasicHTTPAuthenticator:
		var out BasicHTTPAuthenticator
		err = json.Unmarshal(data, &out)
		auth = out
	case TypeSessionTokenAuthenticator:
		var out SessionTokenAuthenticator
		err = json.Unmarshal(data, &out)
		auth = out
	case TypeOAuthAuthenticator:
		var out OAuthAuthenticator
		err = json.Unmarshal(data, &out)
		auth = out
	case TypeCustomAuthenticator:
		var out CustomAuthenticator
		err = json.Unmarshal(data, &out)
		auth = out
	default:
		fields, rawErr := rawFields(data)
		if rawErr != nil {
			return nil, rawErr
		}
		return UnknownAuthenticator{Kind: kind, Fields: fields}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return auth, nil
}
