package fletch

import "fmt"

// HttpError represents an HTTP error with a status code and message. A
// handler can panic with one to choose its own status code instead of the
// core's default 500, which applies when the panic value does not unwrap
// to an *HttpError.
type HttpError struct {
	Code    Status
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error, if any.
func (e *HttpError) Unwrap() error {
	return e.Err
}

// NewHttpError creates a new HttpError with the given status code and message.
func NewHttpError(code Status, message string) *HttpError {
	return &HttpError{Code: code, Message: message}
}

// NewHttpErrorWithError creates a new HttpError wrapping err.
func NewHttpErrorWithError(code Status, message string, err error) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err}
}
