// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// Every error leaves the API through the same JSON envelope, so clients can
// branch on the machine-readable code and the retryable flag alone.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/osg-htc/institutions/internal/platform/apperr"
	"github.com/osg-htc/institutions/internal/platform/constants"
	"github.com/osg-htc/institutions/internal/platform/ctxutil"
)

// SuccessEnvelope is the JSON envelope for wrapped single-resource responses.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error     string              `json:"error"`
	Code      string              `json:"code"`
	Retryable bool                `json:"retryable,omitempty"`
	Details   []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with the payload as the body.
func OK(writer http.ResponseWriter, payload any) {
	JSON(writer, http.StatusOK, payload)
}

// Created writes a 201 Created response with the payload as the body.
func Created(writer http.ResponseWriter, payload any) {
	JSON(writer, http.StatusCreated, payload)
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())
	requestID := ctxutil.GetRequestID(request.Context())

	appError := apperr.As(err)
	if appError == nil {
		// Unexpected internal error: log full details but hide them from the client.
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", requestID),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", requestID),
			slog.Any("cause", appError.Cause),
		)
	}

	if appError.Retryable {
		writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(constants.RetryAfterSeconds))
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:     appError.Message,
		Code:      appError.Code,
		Retryable: appError.Retryable,
		Details:   appError.Details,
	})
}
