// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osg-htc/institutions/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Constraints maps a unique constraint name to the client-facing error it represents.
type Constraints map[string]*apperr.AppError

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	return WrapConstraint(err, action, nil)
}

// WrapConstraint behaves like [Wrap] but resolves unique violations through known.
// Violations of constraints missing from known become a generic conflict.
func WrapConstraint(err error, action string, known Constraints) error {
	if err == nil {
		return nil
	}

	// Already classified further down the stack.
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique violations become conflicts
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if mapped, ok := known[pgErr.ConstraintName]; ok {
			return mapped.WithCause(err)
		}
		return apperr.Conflict("Resource already exists").WithCause(err)
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}
