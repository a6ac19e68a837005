package errors

import "fmt"

// ErrorType represents different types of errors that can occur while
// talking to the catalogue.
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a scrape error with type information.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsTransient reports whether the error is one the crawl loop recovers from
// locally by treating the page as empty and moving on.
func IsTransient(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRateLimited reports whether err is an HTTP 429 from the origin.
func IsRateLimited(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrorTypeRateLimit
	}
	return false
}
