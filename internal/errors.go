package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeConflict    ErrorType = "CONFLICT"
	ErrorTypeBeingUsed   ErrorType = "IS_BEING_USED"
	ErrorTypeInternal    ErrorType = "INTERNAL_ERROR"
	ErrorTypeReplication ErrorType = "REPLICATION_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"

	ErrCodeCompanyNotFound      ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodePermissionNotFound   ErrorCode = "PERMISSION_NOT_FOUND"
	ErrCodeRoleNotFound         ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeProductUnitNotFound  ErrorCode = "PRODUCT_UNIT_NOT_FOUND"
	ErrCodeDocumentTypeNotFound ErrorCode = "DOCUMENT_TYPE_NOT_FOUND"
	ErrCodeEntityNotFound       ErrorCode = "ENTITY_NOT_FOUND"

	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCodeIsBeingUsed   ErrorCode = "IS_BEING_USED"

	ErrCodeReplicationSend ErrorCode = "REPLICATION_SEND_FAILED"
)

// AppError is the error kind carried across service boundaries. Handlers map
// StatusCode to the HTTP response; services only choose the kind.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewAlreadyExistsError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       ErrCodeAlreadyExists,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewIsBeingUsedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeBeingUsed,
		Code:       ErrCodeIsBeingUsed,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewReplicationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeReplication,
		Code:       ErrCodeReplicationSend,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a not-found kind.
func IsNotFound(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeNotFound
}

func IsAlreadyExists(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeConflict
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
