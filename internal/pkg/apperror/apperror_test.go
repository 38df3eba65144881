package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesKind(t *testing.T) {
	tests := []struct {
		code int
		want Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusForbidden, KindForbidden},
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusTeapot, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.code, "x").Kind, "code %d", tt.code)
	}
}

func TestDerivedErrorsMatchSentinel(t *testing.T) {
	sentinel := NewKind(http.StatusConflict, KindConflict, "dates unavailable")

	withDetails := sentinel.WithDetails([]string{"2025-01-01"})
	require.True(t, errors.Is(withDetails, sentinel))
	assert.Equal(t, []string{"2025-01-01"}, withDetails.Details)
	assert.Equal(t, "dates unavailable", withDetails.Error())

	withMessage := sentinel.WithMessage("booking overlaps a blocked interval")
	require.True(t, errors.Is(withMessage, sentinel))
	assert.Equal(t, KindConflict, withMessage.Kind)

	wrapped := fmt.Errorf("approve: %w", withDetails)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, http.StatusConflict, appErr.Code)
	assert.True(t, errors.Is(wrapped, sentinel))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, http.StatusBadRequest, "bad input")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindValidation, err.Kind)
}
