package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer decoded from the server's error envelope.
type APIError struct {
	Status    int    `json:"-"`
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// ErrUnknownFunction is returned by RunFunction for an unsupported name.
var ErrUnknownFunction = errors.New("unknown function")

// IsAuth reports whether err is a 401 or 403 answer.
func IsAuth(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.Status == http.StatusUnauthorized || ae.Status == http.StatusForbidden
}

// retryable reports whether a failed read may be attempted again. Transport
// errors, timeouts, throttling and server errors are; other answers are not.
func retryable(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return true
	}
	switch {
	case ae.Status == http.StatusRequestTimeout, ae.Status == http.StatusTooManyRequests:
		return true
	case ae.Status >= 500:
		return true
	}
	return false
}
