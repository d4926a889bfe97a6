package labclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrStale is returned by Latest when a newer request superseded the one
// whose result arrived.
var ErrStale = errors.New("labclient: response superseded by a newer request")

// APIError is an error reported by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// DecodeDetails unmarshals the error details into dest.
func (e *APIError) DecodeDetails(dest any) error {
	if len(e.Details) == 0 {
		return errors.New("no details")
	}
	return json.Unmarshal(e.Details, dest)
}

// TransportError means the request never got an HTTP answer.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError is a request rejected before it was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
