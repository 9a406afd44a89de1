package internal

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeForbidden  ErrorType = "FORBIDDEN"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeTimeout    ErrorType = "TIMEOUT"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

// ErrorCode is the stable machine code of a domain failure. Codes never
// change; localized text is resolved downstream from MessageKey.
type ErrorCode string

const (
	ErrCodeUnauthorizedActor       ErrorCode = "UNAUTHORIZED_ACTOR"
	ErrCodeOverlappingEntry        ErrorCode = "OVERLAPPING_ENTRY"
	ErrCodeInsufficientBalance     ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeLeadTimeViolated        ErrorCode = "LEAD_TIME_VIOLATED"
	ErrCodeDateOutOfRange          ErrorCode = "DATE_OUT_OF_RANGE"
	ErrCodeIllegalStatusTransition ErrorCode = "ILLEGAL_STATUS_TRANSITION"
	ErrCodeNegativeBudget          ErrorCode = "NEGATIVE_BUDGET"
	ErrCodeLeadTimeOutOfRange      ErrorCode = "LEAD_TIME_OUT_OF_RANGE"
	ErrCodeIdentityIncomplete      ErrorCode = "IDENTITY_PROFILE_INCOMPLETE"
	ErrCodeConcurrentModification  ErrorCode = "CONCURRENT_MODIFICATION"
	ErrCodeTimeout                 ErrorCode = "TIMEOUT"
	ErrCodeNotFound                ErrorCode = "NOT_FOUND"
	ErrCodeValidationFailed        ErrorCode = "VALIDATION_FAILED"
	ErrCodeImportMalformed         ErrorCode = "IMPORT_MALFORMED"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	MessageKey string    `json:"-"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
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
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode, messageKey string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		MessageKey: messageKey,
		StatusCode: http.StatusBadRequest,
	}
}

func NewForbiddenError(message string, code ErrorCode, messageKey string) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		MessageKey: messageKey,
		StatusCode: http.StatusForbidden,
	}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       ErrCodeNotFound,
		Message:    message,
		MessageKey: "error.not_found",
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode, messageKey string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		MessageKey: messageKey,
		StatusCode: http.StatusConflict,
	}
}

func NewTimeoutError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Code:       ErrCodeTimeout,
		Message:    message,
		MessageKey: "error.timeout",
		StatusCode: http.StatusGatewayTimeout,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		MessageKey: "error.internal",
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Shared sentinel errors. Domain packages declare their own via the
// constructors when the failure is specific to them.
var (
	ErrUnauthorizedActor = NewForbiddenError("actor may not perform this action on the target user",
		ErrCodeUnauthorizedActor, "error.unauthorized_actor")
	ErrOverlappingEntry = NewValidationError("an accepted or pending entry already occupies this date",
		ErrCodeOverlappingEntry, "error.overlapping_entry")
	ErrInsufficientBalance = NewValidationError("the entry would drive the balance negative",
		ErrCodeInsufficientBalance, "error.insufficient_balance")
	ErrLeadTimeViolated = NewValidationError("vacation date is closer than the notification lead time",
		ErrCodeLeadTimeViolated, "error.lead_time_violated")
	ErrDateOutOfRange = NewValidationError("date is outside the accepted window for this entry kind",
		ErrCodeDateOutOfRange, "error.date_out_of_range")
	ErrIllegalStatusTransition = NewValidationError("the requested status transition is not allowed",
		ErrCodeIllegalStatusTransition, "error.illegal_status_transition")
	ErrNegativeBudget = NewValidationError("budgets must not be negative",
		ErrCodeNegativeBudget, "error.negative_budget")
	ErrLeadTimeOutOfRange = NewValidationError("notification lead time must be between 0 and 365 days",
		ErrCodeLeadTimeOutOfRange, "error.lead_time_out_of_range")
	ErrIdentityIncomplete = NewValidationError("identity provider profile is missing email or display name",
		ErrCodeIdentityIncomplete, "error.identity_incomplete")
	ErrConcurrentModification = NewConflictError("transaction retries exhausted due to concurrent writes",
		ErrCodeConcurrentModification, "error.concurrent_modification")
	ErrNotFound = NewNotFoundError("entity not found")
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
