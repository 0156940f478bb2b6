package browser

import (
	"errors"
	"fmt"

	"github.com/nao1215/navscout/internal/model"
)

var (
	// ErrSessionLost is returned when the browser stops responding.
	ErrSessionLost = errors.New("browser session lost")

	// ErrAuthState is returned when the persisted auth state cannot be read.
	ErrAuthState = errors.New("invalid auth state")

	// ErrHTTPStatus is wrapped by navigation errors for 4xx and 5xx documents.
	ErrHTTPStatus = errors.New("HTTP error status")
)

// NavigationError is a failed page load. It is recoverable: the explorer
// retries the URL under its retry policy.
type NavigationError struct {
	// URL is the address that failed to load.
	URL string

	// Kind classifies the failure for the report.
	Kind model.ErrorType

	// Status is the HTTP status for Kind == model.ErrorTypeHTTP.
	Status int

	// Err is the underlying cause.
	Err error
}

// Error returns the error message.
func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *NavigationError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a navigation error for a document served with an
// error status.
func NewHTTPError(url string, status int) *NavigationError {
	return &NavigationError{
		URL:    url,
		Kind:   model.ErrorTypeHTTP,
		Status: status,
		Err:    fmt.Errorf("%w %d", ErrHTTPStatus, status),
	}
}

// KindOf returns the failure kind of err, or model.ErrorTypeNavigation when
// err is not a *NavigationError.
func KindOf(err error) model.ErrorType {
	var navErr *NavigationError
	if errors.As(err, &navErr) && navErr.Kind != "" {
		return navErr.Kind
	}
	return model.ErrorTypeNavigation
}
