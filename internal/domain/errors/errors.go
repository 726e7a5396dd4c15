package errors

import (
	"errors"
	"fmt"
	"net/http"

	"observer-console.backend/pkg/signature"
)

// Domain errors
var (
	ErrNotFound               = errors.New("resource not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrConfiguration          = errors.New("verification service is not configured")
	ErrMethodNotEnabled       = errors.New("verification method is not enabled")
	ErrDocumentTypeNotEnabled = errors.New("document type is not enabled")
	ErrIncompleteProfile      = errors.New("profile is incomplete")
	ErrVendor                 = errors.New("verification vendor error")
	ErrMissingSignature       = signature.ErrMissingSignature
	ErrInvalidSignature       = signature.ErrInvalidSignature
	ErrUnknownSession         = errors.New("unknown verification session")
	ErrInvalidState           = errors.New("only pending verifications can be cancelled")
	ErrInvalidTransition      = errors.New("verification status transition not allowed")
)

// Error codes returned to API clients
const (
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeInternalError          = "INTERNAL_ERROR"
	CodeConfigurationError     = "CONFIGURATION_ERROR"
	CodeMethodNotEnabled       = "METHOD_NOT_ENABLED"
	CodeDocumentTypeNotEnabled = "DOCUMENT_TYPE_NOT_ENABLED"
	CodeIncompleteProfile      = "INCOMPLETE_PROFILE"
	CodeVendorError            = "VENDOR_ERROR"
	CodeMissingSignature       = "MISSING_SIGNATURE"
	CodeInvalidSignature       = "INVALID_SIGNATURE"
	CodeUnknownSession         = "UNKNOWN_SESSION"
	CodeInvalidState           = "INVALID_STATE"
	CodeInvalidTransition      = "INVALID_TRANSITION"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// VendorError carries the verification vendor's HTTP status and body.
// StatusCode is 0 when the request never got a response.
type VendorError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *VendorError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("verification vendor request failed: %v", e.Err)
	}
	return fmt.Sprintf("verification vendor returned %d: %s", e.StatusCode, e.Body)
}

func (e *VendorError) Unwrap() error {
	return e.Err
}

func (e *VendorError) Is(target error) bool {
	return target == ErrVendor
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// Invalid wraps ErrInvalidInput with a field-specific message
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// FromError maps any error onto an AppError using the domain taxonomy.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var vendorErr *VendorError
	if errors.As(err, &vendorErr) {
		return NewAppError(http.StatusBadGateway, CodeVendorError, vendorErr.Error(), vendorErr)
	}

	for _, m := range taxonomy {
		if errors.Is(err, m.target) {
			return NewAppError(m.status, m.code, err.Error(), err)
		}
	}
	return InternalError(err)
}

var taxonomy = []struct {
	target error
	status int
	code   string
}{
	{ErrConfiguration, http.StatusInternalServerError, CodeConfigurationError},
	{ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
	{ErrMethodNotEnabled, http.StatusBadRequest, CodeMethodNotEnabled},
	{ErrDocumentTypeNotEnabled, http.StatusBadRequest, CodeDocumentTypeNotEnabled},
	{ErrIncompleteProfile, http.StatusBadRequest, CodeIncompleteProfile},
	{ErrMissingSignature, http.StatusUnauthorized, CodeMissingSignature},
	{ErrInvalidSignature, http.StatusUnauthorized, CodeInvalidSignature},
	{ErrUnknownSession, http.StatusNotFound, CodeUnknownSession},
	{ErrNotFound, http.StatusNotFound, CodeNotFound},
	{ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{ErrForbidden, http.StatusForbidden, CodeForbidden},
	{ErrInvalidState, http.StatusConflict, CodeInvalidState},
	{ErrInvalidTransition, http.StatusConflict, CodeInvalidTransition},
}
