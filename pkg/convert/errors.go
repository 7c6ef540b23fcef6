package convert

import (
	"errors"
	"fmt"
)

// ManifestCompatibilityErrorType identifies compatibility errors once they are
// serialised for a UI.
const ManifestCompatibilityErrorType = "connectorBuilder.manifestCompatibility"

// ManifestCompatibilityError reports why a manifest cannot be represented as
// builder form values. StreamName is empty when the problem is not tied to a
// stream.
type ManifestCompatibilityError struct {
	StreamName string `json:"streamName,omitempty"`
	Message    string `json:"message"`
}

// NewManifestCompatibilityError constructs a compatibility error.
func NewManifestCompatibilityError(streamName, message string) *ManifestCompatibilityError {
	return &ManifestCompatibilityError{StreamName: streamName, Message: message}
}

func (e *ManifestCompatibilityError) Error() string {
	if e.StreamName == "" {
		return e.Message
	}
	return fmt.Sprintf("Stream %s: %s", e.StreamName, e.Message)
}

// Type returns ManifestCompatibilityErrorType.
func (e *ManifestCompatibilityError) Type() string {
	return ManifestCompatibilityErrorType
}

// IsManifestCompatibilityError reports whether err wraps a
// *ManifestCompatibilityError.
func IsManifestCompatibilityError(err error) bool {
	var target *ManifestCompatibilityError
	return errors.As(err, &target)
}

// AsManifestCompatibilityError unwraps err into a *ManifestCompatibilityError.
func AsManifestCompatibilityError(err error) (*ManifestCompatibilityError, bool) {
	var target *ManifestCompatibilityError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
