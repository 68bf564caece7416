package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork wraps transport-level failures (unreachable host, timeout).
// These are retryable by the caller; the client never retries them itself.
var ErrNetwork = errors.New("network error")

// APIError is a server-rejected request, normalized from any non-2xx
// response. Fields carries per-field validation messages when the server
// provides them.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsAuth reports whether err is a 401-class rejection requiring
// re-authentication.
func IsAuth(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsValidation reports whether err is a server-side validation rejection
// carrying field-level messages.
func IsValidation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnprocessableEntity ||
		(apiErr.StatusCode == http.StatusBadRequest && len(apiErr.Fields) > 0)
}

// IsNetwork reports whether err is a transport failure rather than a
// server rejection.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
