// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution

import (
	"context"

	"github.com/osg-htc/institutions/internal/platform/apperr"
)

// # Storage Contracts

// Repository is the persistence boundary of the institution aggregate.
//
// Reads run outside any write transaction. Every write runs inside WithinTx,
// which commits only if fn returns nil.
type Repository interface {
	// ListValid returns valid institutions ordered by name, identifiers and metadata included.
	ListValid(context context.Context) ([]Institution, error)

	// GetByPublicID returns the institution regardless of validity, or ErrNotFound.
	GetByPublicID(context context.Context, publicID string) (Institution, error)

	// WithinTx runs fn in a single atomic unit of work.
	WithinTx(context context.Context, fn func(tx Tx) error) error
}

// Tx is the write side of a [Repository], bound to one transaction.
type Tx interface {
	// FindInvalidByName returns the soft-deleted institution with exactly this name.
	FindInvalidByName(context context.Context, name string) (Institution, bool, error)

	// FindByPublicIDForUpdate loads and locks an institution, or returns ErrNotFound.
	FindByPublicIDForUpdate(context context.Context, publicID string) (Institution, error)

	// PublicIDs returns every assigned public id, valid or not.
	PublicIDs(context context.Context) (map[string]struct{}, error)

	// Insert stores a new institution row. Identifiers are written by ApplyIdentifiers.
	Insert(context context.Context, inst Institution) error

	// Update overwrites the institution row's attributes, validity and audit fields.
	Update(context context.Context, inst Institution) error

	// ApplyIdentifiers executes the plan's identifier and metadata mutations.
	ApplyIdentifiers(context context.Context, institutionID string, plan Plan) error
}

// # Errors

var (
	// ErrNotFound is returned when no institution has the requested public id.
	ErrNotFound = apperr.NotFound("Institution")

	// ErrNameTaken is returned when a valid institution already uses the name.
	ErrNameTaken = apperr.Conflict("An institution with this name already exists")

	// ErrPublicIDTaken is returned when a concurrent create drew the same public id.
	ErrPublicIDTaken = apperr.RetryableConflict("Institution id collided with a concurrent create, please retry")

	// ErrIdentifierTaken is returned when another institution already holds the (type, value) pair.
	ErrIdentifierTaken = apperr.Conflict("Identifier is already assigned to another institution")
)
