package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is the uniform error every gateway operation returns. Callers
// branch on Message and FieldErrors, never on transport details.
type APIError struct {
	Status      int                 `json:"-"`
	Message     string              `json:"message"`
	FieldErrors map[string][]string `json:"errors,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether the server rejected the credential
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// HasFieldErrors reports whether the server returned validation messages
func (e *APIError) HasFieldErrors() bool {
	return len(e.FieldErrors) > 0
}

// networkError builds the error for transport failures where no response
// was received. Never retried automatically; that's the caller's call.
func networkError(err error) *APIError {
	return &APIError{
		Message: fmt.Sprintf("Unable to reach the server: %v", err),
	}
}

// decodeError normalizes a non-2xx response body into an APIError. If the
// backend supplied a structured message it is used verbatim; otherwise one
// is synthesized from the HTTP status.
func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Request failed: %s", http.StatusText(resp.StatusCode))
	}

	return apiErr
}
