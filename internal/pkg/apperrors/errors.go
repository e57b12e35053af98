package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrAlreadyExists = errors.New("resource already exists")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")

	ErrConflict = errors.New("resource conflict")

	// ErrExternalService marks hard failures from hosted providers that are
	// not quota related and must not be retried.
	ErrExternalService = errors.New("external service error")

	// ErrRateLimited marks completion-provider quota or 429 failures. The
	// agent retry policy advances to the next key/model pair on this class.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrMalformedModelOutput marks model text from which no JSON object
	// could be extracted.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrRecipientNotOptedIn maps the messaging provider's 63015 error code:
	// the recipient has not opted in to the WhatsApp channel.
	ErrRecipientNotOptedIn = errors.New("recipient not opted in")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {

	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}

// WrapProviderError attaches a hosted-provider failure so handlers can surface
// the provider's message without leaking transport details.
func WrapProviderError(cause error, provider string) error {
	return &AppError{
		Code:    "PROVIDER_ERROR",
		Message: fmt.Sprintf("%s request failed: %v", provider, cause),
		Cause:   fmt.Errorf("%w: %w", ErrExternalService, cause),
	}
}
