package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for business logic errors.
const (
	CodeNotFound      = 1
	CodeAlreadyExists = 2
	CodeValidation    = 3
	CodeInternal      = 4

	// Query errors raised while compiling caller-supplied filters, order-by
	// clauses and page requests. All of them are caller errors.
	CodeUnsupportedEntityType = 5
	CodeDisallowedField       = 6
	CodeInvalidFilterValue    = 7
	CodeInvalidPageRequest    = 8
	CodeInvalidFilterSyntax   = 9
)

// AppError represents a business logic error with a code, message, and optional wrapped error.
// Field and Value identify the offending filter field and raw value when relevant.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined business errors.
//
// To check whether an error matches one of these categories, use the
// corresponding helper function (IsNotFound, IsAlreadyExists, etc.)
// instead of errors.Is. The helpers use errors.As with error-code
// comparison, so they correctly match any *AppError that carries the
// same code, including freshly constructed instances and wrapped errors.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedEntityTypeError reports an entity type with no registered whitelist.
func NewUnsupportedEntityTypeError(entityType string) *AppError {
	return &AppError{
		Code:    CodeUnsupportedEntityType,
		Message: fmt.Sprintf("unsupported entity type %q", entityType),
		Value:   entityType,
	}
}

// NewDisallowedFieldError reports a field that is not in the whitelist.
func NewDisallowedFieldError(field string) *AppError {
	return &AppError{
		Code:    CodeDisallowedField,
		Message: fmt.Sprintf("field %q is not allowed", field),
		Field:   field,
	}
}

// NewInvalidFilterValueError reports a filter value that cannot be coerced to
// the field's declared type.
func NewInvalidFilterValueError(field, raw string) *AppError {
	return &AppError{
		Code:    CodeInvalidFilterValue,
		Message: fmt.Sprintf("invalid value %q for field %q", raw, field),
		Field:   field,
		Value:   raw,
	}
}

// NewInvalidPageRequestError reports an out-of-range page number or size.
func NewInvalidPageRequestError(reason string) *AppError {
	return &AppError{
		Code:    CodeInvalidPageRequest,
		Message: "invalid page request: " + reason,
	}
}

// NewInvalidFilterSyntaxError reports a filter or order-by expression that
// does not parse.
func NewInvalidFilterSyntaxError(reason string, err error) *AppError {
	return &AppError{
		Code:    CodeInvalidFilterSyntax,
		Message: "invalid filter expression: " + reason,
		Err:     err,
	}
}

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsAlreadyExists reports whether err is or wraps an AppError with CodeAlreadyExists.
func IsAlreadyExists(err error) bool {
	return hasCode(err, CodeAlreadyExists)
}

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

// IsUnsupportedEntityType reports whether err is or wraps an AppError with CodeUnsupportedEntityType.
func IsUnsupportedEntityType(err error) bool {
	return hasCode(err, CodeUnsupportedEntityType)
}

// IsDisallowedField reports whether err is or wraps an AppError with CodeDisallowedField.
func IsDisallowedField(err error) bool {
	return hasCode(err, CodeDisallowedField)
}

// IsInvalidFilterValue reports whether err is or wraps an AppError with CodeInvalidFilterValue.
func IsInvalidFilterValue(err error) bool {
	return hasCode(err, CodeInvalidFilterValue)
}

// IsInvalidPageRequest reports whether err is or wraps an AppError with CodeInvalidPageRequest.
func IsInvalidPageRequest(err error) bool {
	return hasCode(err, CodeInvalidPageRequest)
}

// IsInvalidFilterSyntax reports whether err is or wraps an AppError with CodeInvalidFilterSyntax.
func IsInvalidFilterSyntax(err error) bool {
	return hasCode(err, CodeInvalidFilterSyntax)
}

// hasCode checks whether err is or wraps an *AppError with the given code.
func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// If the error is an *AppError, the code is mapped; otherwise http.StatusInternalServerError is returned.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists:
			return http.StatusConflict
		case CodeValidation,
			CodeUnsupportedEntityType,
			CodeDisallowedField,
			CodeInvalidFilterValue,
			CodeInvalidPageRequest,
			CodeInvalidFilterSyntax:
			return http.StatusBadRequest
		case CodeInternal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
