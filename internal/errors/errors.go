package errors

import "net/http"

// ErrorWithStatusCode is the single error type that crosses the service ->
// handler boundary. The default for any other error at handler level is a 500
// with the message suppressed.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Constructors for the common taxonomy. Validation failures are 400, missing
// or bad tokens 401, denied access 403, missing resources 404, duplicate
// resources 409.

func Validation(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest}
}

func Unauthorized(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusUnauthorized}
}

func Forbidden(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusForbidden}
}

func NotFound(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

func Conflict(message string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusConflict}
}

// HasStatus reports whether err is an ErrorWithStatusCode carrying the given
// HTTP status.
func HasStatus(err error, statusCode int) bool {
	e, ok := err.(*ErrorWithStatusCode)
	return ok && e.StatusCode == statusCode
}

// IsNotFound is the most common status check; storage layers use it to tell
// "row missing" apart from real failures.
func IsNotFound(err error) bool {
	return HasStatus(err, http.StatusNotFound)
}
