// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osg-htc/institutions/internal/platform/apperr"
	"github.com/osg-htc/institutions/internal/platform/respond"
)

/*
TestError verifies the status, envelope and headers produced for each error class.
*/
func TestError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantCode      string
		wantRetryable bool
	}{
		{"not found", apperr.NotFound("Institution"), http.StatusNotFound, apperr.CodeNotFound, false},
		{"conflict", apperr.Conflict("name taken"), http.StatusConflict, apperr.CodeConflict, false},
		{"retryable conflict", apperr.RetryableConflict("try again"), http.StatusConflict, apperr.CodeConflict, true},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperr.CodeInternal, false},
		{"exhausted", apperr.Exhausted("no ids left"), http.StatusInternalServerError, apperr.CodeIDExhausted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			respond.Error(recorder, request, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var body respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantRetryable, body.Retryable)

			if tt.wantRetryable {
				assert.Equal(t, "1", recorder.Header().Get("Retry-After"))
			} else {
				assert.Empty(t, recorder.Header().Get("Retry-After"))
			}
		})
	}
}

/*
TestError_HidesInternalCause ensures wrapped driver messages never reach the client.
*/
func TestError_HidesInternalCause(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, apperr.Internal(errors.New("pq: relation does not exist")))

	assert.NotContains(t, recorder.Body.String(), "relation")
	assert.Contains(t, recorder.Body.String(), "An unexpected error occurred")
}
