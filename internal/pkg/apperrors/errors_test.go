package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Run("formats message with field", func(t *testing.T) {
		err := &ValidationError{Field: "monthlyIncome", Message: "must be non-negative"}
		assert.Equal(t, "validation failed for field 'monthlyIncome': must be non-negative", err.Error())
	})

	t.Run("formats message without field", func(t *testing.T) {
		err := &ValidationError{Message: "bad payload"}
		assert.Equal(t, "validation failed: bad payload", err.Error())
	})

	t.Run("NewValidationError wraps ErrValidation", func(t *testing.T) {
		err := NewValidationError("phone", "must be E.164")
		assert.ErrorIs(t, err, ErrValidation)

		var ve *ValidationError
		assert.True(t, errors.As(err, &ve))
		assert.Equal(t, "phone", ve.Field)
	})
}

func TestAppError(t *testing.T) {
	t.Run("formats message with code", func(t *testing.T) {
		err := &AppError{Code: "DB_ERROR", Message: "insert failed"}
		assert.Equal(t, "[DB_ERROR] insert failed", err.Error())
	})

	t.Run("WrapDatabaseError preserves sentinel", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := WrapDatabaseError(cause, "saving alert")
		assert.ErrorIs(t, err, ErrDatabase)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("WrapProviderError preserves cause and message", func(t *testing.T) {
		cause := fmt.Errorf("%w: model list exhausted", ErrRateLimited)
		err := WrapProviderError(cause, "gemini")
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Contains(t, err.Error(), "gemini request failed")
	})
}
