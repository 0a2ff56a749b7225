// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osg-htc/institutions/internal/platform/apperr"
)

/*
TestWithCause keeps the sentinel identity while attaching a cause.
*/
func TestWithCause(t *testing.T) {
	sentinel := apperr.Conflict("Name taken")
	cause := errors.New("duplicate key value violates unique constraint")

	wrapped := sentinel.WithCause(cause)

	assert.Nil(t, sentinel.Cause)
	assert.True(t, errors.Is(wrapped, sentinel))
	assert.True(t, errors.Is(wrapped, cause))
	assert.False(t, errors.Is(wrapped, apperr.Conflict("Other")))
	assert.True(t, errors.Is(fmt.Errorf("tx: %w", wrapped), sentinel))
}

/*
TestConstructors checks status codes and flags.
*/
func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *apperr.AppError
		status    int
		code      string
		retryable bool
	}{
		{"not_found", apperr.NotFound("Institution"), http.StatusNotFound, apperr.CodeNotFound, false},
		{"unauthorized", apperr.Unauthorized("x"), http.StatusUnauthorized, apperr.CodeUnauthorized, false},
		{"conflict", apperr.Conflict("x"), http.StatusConflict, apperr.CodeConflict, false},
		{"retryable_conflict", apperr.RetryableConflict("x"), http.StatusConflict, apperr.CodeConflict, true},
		{"validation", apperr.ValidationError("x"), http.StatusBadRequest, apperr.CodeValidation, false},
		{"exhausted", apperr.Exhausted("x"), http.StatusInternalServerError, apperr.CodeIDExhausted, false},
		{"internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError, apperr.CodeInternal, false},
		{"unavailable", apperr.ServiceUnavailable("x"), http.StatusServiceUnavailable, apperr.CodeUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.True(t, apperr.HasCode(fmt.Errorf("wrapped: %w", tt.err), tt.code))
		})
	}

	assert.Equal(t, "Institution not found", apperr.NotFound("Institution").Error())
	assert.Nil(t, apperr.As(errors.New("plain")))
}
