package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// unauthorizeder is implemented by rejections caused by a rejected credential.
type unauthorizeder interface {
	Unauthorized() bool
}

// IsUnauthorized reports whether err is a rejection caused by the server
// refusing the current credential (a 401-class status).
func IsUnauthorized(err error) bool {
	if e, ok := errors.Cause(err).(unauthorizeder); ok {
		return e.Unauthorized()
	}
	return false
}

// timeouter is implemented by rejections caused by an expired call deadline.
type timeouter interface {
	Timeout() bool
}

// IsTimeout reports whether err is a rejection caused by the per-call
// deadline expiring before the server settled the request.
func IsTimeout(err error) bool {
	if e, ok := errors.Cause(err).(timeouter); ok {
		return e.Timeout()
	}
	return false
}
