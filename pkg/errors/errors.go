package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeStateConflict     Code = "STATE_CONFLICT"
	CodeIdempotency       Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInventoryConflict Code = "INVENTORY_CONFLICT"
	CodePaymentDeclined   Code = "PAYMENT_DECLINED"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependency        Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code is presented over HTTP. ExposeMessage lets the
// error's own message replace PublicMessage; it is false wherever the message
// may carry internals.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
	ExposeMessage  bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:        {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true, ExposeMessage: true},
	CodeUnauthorized:      {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required", DetailsAllowed: true, ExposeMessage: true},
	CodeForbidden:         {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied", ExposeMessage: true},
	CodeNotFound:          {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found", ExposeMessage: true},
	CodeConflict:          {HTTPStatus: http.StatusConflict, Retryable: true, PublicMessage: "conflict detected", ExposeMessage: true},
	CodeStateConflict:     {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "action not allowed at this checkout step", DetailsAllowed: true, ExposeMessage: true},
	CodeIdempotency:       {HTTPStatus: http.StatusConflict, PublicMessage: "idempotency key reused", DetailsAllowed: true, ExposeMessage: true},
	CodeInventoryConflict: {HTTPStatus: http.StatusConflict, PublicMessage: "some items are no longer available", DetailsAllowed: true, ExposeMessage: true},
	CodePaymentDeclined:   {HTTPStatus: http.StatusPaymentRequired, Retryable: true, PublicMessage: "payment was declined", DetailsAllowed: true, ExposeMessage: true},
	CodeInternal:          {HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "internal server error"},
	CodeDependency:        {HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "dependency unavailable", DetailsAllowed: true, ExposeMessage: true},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// PublicMessage is the message a client may see for err.
func PublicMessage(err *Error) string {
	meta := MetadataFor(err.Code())
	if meta.ExposeMessage && err.Message() != "" {
		return err.Message()
	}
	return meta.PublicMessage
}

type Error struct {
	code    Code
	message string
	details map[string]any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Details returns the structured details attached to the error, or nil.
func (e *Error) Details() map[string]any {
	if e == nil || len(e.details) == 0 {
		return nil
	}
	return e.details
}

// WithDetails merges the provided details into the error.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e == nil {
		return nil
	}
	if e.details == nil {
		e.details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.details[k] = v
	}
	return e
}

// WithDetail attaches a single key/value to the error details.
func (e *Error) WithDetail(key string, value any) *Error {
	return e.WithDetails(map[string]any{key: value})
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Retryable reports whether the caller may safely retry the same step.
func (e *Error) Retryable() bool {
	return MetadataFor(e.Code()).Retryable
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the provided code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// CodeOf returns the code carried by err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}
