package client

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the single error type returned by Client.
// Status is 0 for transport failures and undecodable responses.
type APIError struct {
	Source  OperationSource
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Source, e.Message, e.Status)
}

// Unauthorized reports whether the server rejected the bearer token.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// ToAPIError returns err as an *APIError, wrapping foreign errors as
// transport failures attributed to source.
func ToAPIError(err error, source OperationSource, fallback string) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &APIError{Source: source, Message: msg}
}
