package errors

import (
	"errors"
	"fmt"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    "DATABASE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
		Code:    "UNAUTHORIZED",
		Context: make(map[string]interface{}),
	}
}

// NewRuleViolationError creates a new business-rule veto error
func NewRuleViolationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeRuleViolation,
		Message: message,
		Code:    "RULE_VIOLATION",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewConfigurationError creates a new missing-configuration error
func NewConfigurationError(setting string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: fmt.Sprintf("missing or invalid configuration: %s", setting),
		Code:    "CONFIGURATION_ERROR",
		Context: map[string]interface{}{
			"setting": setting,
		},
	}
}

// NewAggregationError creates a new reporting aggregation error
func NewAggregationError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeAggregation,
		Message: fmt.Sprintf("aggregation failed: %s", operation),
		Code:    "AGGREGATION_FAILED",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewTimerAlreadyRunningError creates a new timer conflict error for a second start
func NewTimerAlreadyRunningError() *AppError {
	return &AppError{
		Type:    ErrorTypeTimerConflict,
		Message: "there is already another running timer",
		Code:    "TIMER_ALREADY_RUNNING",
		Context: make(map[string]interface{}),
	}
}

// NewNoRunningTimerError creates a new timer conflict error for a missing timer
func NewNoRunningTimerError() *AppError {
	return &AppError{
		Type:    ErrorTypeTimerConflict,
		Message: "no running timer found",
		Code:    "NO_RUNNING_TIMER",
		Context: make(map[string]interface{}),
	}
}

// NewInvalidRangeError creates a new error for a malformed custom period
func NewInvalidRangeError(reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidRange,
		Message: fmt.Sprintf("invalid date range: %s", reason),
		Code:    "INVALID_RANGE",
		Context: make(map[string]interface{}),
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]interface{}{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// NewExternalError creates a new error for a failed upstream call
func NewExternalError(service string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeExternal,
		Message: fmt.Sprintf("external service call failed: %s", service),
		Code:    "EXTERNAL_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"service": service,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
			ErrorTypeUnauthorized, ErrorTypeRuleViolation, ErrorTypeTimerConflict,
			ErrorTypeInvalidRange:
			return false // caller errors
		default:
			return true // system errors
		}
	}
	return true
}
