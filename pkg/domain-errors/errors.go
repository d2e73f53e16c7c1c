// Package domainerrors carries coded errors from services to transport.
// Stores return sentinel errors; services translate them into an *Error with a
// Code, and the HTTP layer maps the Code to a status.
package domainerrors

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation_error"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal_error"
)

// Error is a domain error with a stable code. Field is set for validation
// failures that can be attributed to a single input field.
type Error struct {
	Code    Code
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// NewField builds a validation error attributed to field.
func NewField(field, msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Field: field}
}

func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// IsClientError reports whether the code is caused by caller input rather
// than by the service or its dependencies.
func (c Code) IsClientError() bool {
	switch c {
	case CodeBadRequest, CodeValidation, CodeNotFound, CodeConflict:
		return true
	default:
		return false
	}
}
