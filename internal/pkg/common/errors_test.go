package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCustomError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidationError("bad quantity"), ErrCodeInvalidRequest, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("meal x: %w", NewValidationError("no ingredients")), ErrCodeInvalidRequest, http.StatusBadRequest},
		{"collaborator", NewCollaboratorError("catalog", errors.New("dial tcp")), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"no candidates", ErrNoCandidates, ErrCodeNotFound, http.StatusNotFound},
		{"deadline", fmt.Errorf("rank: %w", context.DeadlineExceeded), ErrCodeGatewayTimeout, http.StatusGatewayTimeout},
		{"custom", ErrMealNotFound, "MEAL_NOT_FOUND", http.StatusNotFound},
		{"unknown", errors.New("boom"), ErrCodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := ToCustomError(tt.err)
			require.NotNil(t, ce)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, tt.status, ce.Status)
		})
	}

	assert.Nil(t, ToCustomError(nil))
}

func TestCollaboratorError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewCollaboratorError("pantry", cause)

	assert.True(t, IsCollaboratorError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "pantry lookup failed: connection refused", err.Error())
	assert.True(t, IsCollaboratorError(fmt.Errorf("suggest: %w", err)))

	assert.NoError(t, NewCollaboratorError("pantry", nil))
	assert.False(t, IsCollaboratorError(cause))
}
