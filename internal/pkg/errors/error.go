package errors

import (
	"errors"
)

// AppError attaches a response code to an error. Its text is the
// underlying error's text, or the code's message when there is none.
type AppError struct {
	Code int
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return GetMessage(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error
func (e *AppError) HTTPStatus() int {
	return GetHTTPStatus(e.Code)
}

// New returns a bare AppError for code.
func New(code int) *AppError {
	return &AppError{Code: code}
}

// Wrap attaches code to err. An error that already carries a code keeps it.
func Wrap(err error, code int) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return &AppError{Code: code, Err: err}
}

// Is reports whether err carries code.
func Is(err error, code int) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ExtractCode returns the code carried by err, ErrInternalServer otherwise.
func ExtractCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternalServer
}
