package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

// NewMalformedBody reports an unparseable request body. The parse error text
// is returned to the caller as the message.
func NewMalformedBody(err error) error {
	return &DomainError{
		Code:       "MALFORMED_BODY",
		Message:    err.Error(),
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewNotFound(message string) error {
	return NewDomainError("NOT_FOUND", message, http.StatusNotFound)
}

func NewMethodNotAllowed(message string) error {
	return NewDomainError("METHOD_NOT_ALLOWED", message, http.StatusMethodNotAllowed)
}

// NewStoreWriteError is returned when persisting an incident fails.
func NewStoreWriteError(err error) error {
	return &DomainError{
		Code:       "STORE_WRITE_FAILED",
		Message:    "failed to store incident",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewStoreReadError is returned when listing incidents fails.
func NewStoreReadError(err error) error {
	return &DomainError{
		Code:       "STORE_READ_FAILED",
		Message:    "failed to load incidents",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
