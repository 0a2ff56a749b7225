// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/osg-htc/institutions/internal/institution/metrics"
	"github.com/osg-htc/institutions/internal/platform/apperr"
	"github.com/osg-htc/institutions/internal/platform/ctxutil"
	"github.com/osg-htc/institutions/pkg/uuid"
)

// Write operation names used in logs and metrics.
const (
	opCreate     = "create"
	opUpdate     = "update"
	opInvalidate = "invalidate"
)

// # Service Layer

// Service orchestrates institution workflows over a [Repository].
//
// Every write validates input first, then runs lookups, reconciliation and
// persistence inside one transaction. A failure at any step rolls back the
// whole write, so partial identifier or metadata states are never visible.
type Service struct {
	repo       Repository
	reconciler *Reconciler
	ids        *PublicIDGenerator
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option customizes a [Service].
type Option func(*Service)

// WithClock overrides the audit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(service *Service) { service.metrics = m }
}

// NewService constructs a new [Service].
func NewService(repo Repository, reconciler *Reconciler, ids *PublicIDGenerator, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	service := &Service{
		repo:       repo,
		reconciler: reconciler,
		ids:        ids,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// # Lookups

// ListValid returns every valid institution ordered by name.
func (service *Service) ListValid(context context.Context) ([]Institution, error) {
	return service.repo.ListValid(context)
}

// Get returns an institution by short or full public id, including soft-deleted ones.
func (service *Service) Get(context context.Context, id string) (Institution, error) {
	publicID, ok := FullPublicID(id)
	if !ok {
		return Institution{}, ErrNotFound
	}
	return service.repo.GetByPublicID(context, publicID)
}

// # Management

/*
Create adds an institution, or reactivates the soft-deleted institution with the same name.

Description: Reactivation reroutes the request to the update path against
the existing record so names are never duplicated. Otherwise a fresh public
id is drawn against the ids visible in the same transaction.

Parameters:
  - context: context.Context
  - fields: Fields (Client-supplied attributes and desired identifiers)
  - author: string (Opaque audit subject)

Returns:
  - Institution: The stored institution
  - bool: true when an existing soft-deleted record was reactivated
  - error: Validation, conflict, exhaustion or storage errors
*/
func (service *Service) Create(context context.Context, fields Fields, author string) (Institution, bool, error) {
	start := service.now()
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		service.observe(context, opCreate, start, err)
		return Institution{}, false, err
	}

	var (
		result      Institution
		reactivated bool
	)
	err := service.repo.WithinTx(context, func(tx Tx) error {
		dormant, found, err := tx.FindInvalidByName(context, fields.Name)
		if err != nil {
			return err
		}
		if found {
			reactivated = true
			result, err = service.revise(context, tx, dormant, fields, author)
			return err
		}

		existing, err := tx.PublicIDs(context)
		if err != nil {
			return err
		}
		publicID, attempts, err := service.ids.Generate(existing)
		service.metrics.ObservePublicIDAttempts(attempts)
		if err != nil {
			return err
		}

		plan, err := service.reconciler.Plan(context, nil, fields)
		if err != nil {
			return err
		}

		inst := plan.Apply(newInstitution(uuid.New(), publicID, fields, author, service.now()))
		if err := tx.Insert(context, inst); err != nil {
			return err
		}
		if err := tx.ApplyIdentifiers(context, inst.ID, plan); err != nil {
			return err
		}
		service.countOps(plan)

		result = inst
		return nil
	})

	service.observe(context, opCreate, start, err)
	if err != nil {
		return Institution{}, false, err
	}

	event := "institution_created"
	if reactivated {
		event = "institution_reactivated"
		service.metrics.IncrementReactivations()
	}
	service.log(context).InfoContext(context, event,
		slog.String("public_id", result.PublicID),
		slog.String("name", result.Name),
		slog.String("author", author),
	)
	return result, reactivated, nil
}

/*
Update replaces an institution's attributes and reconciles its identifiers.

Description: Updating a soft-deleted institution makes it valid again.

Parameters:
  - context: context.Context
  - id: string (Short or full public id)
  - fields: Fields
  - author: string

Returns:
  - Institution: The stored institution
  - error: ErrNotFound, validation, conflict or storage errors
*/
func (service *Service) Update(context context.Context, id string, fields Fields, author string) (Institution, error) {
	start := service.now()
	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		service.observe(context, opUpdate, start, err)
		return Institution{}, err
	}

	publicID, ok := FullPublicID(id)
	if !ok {
		service.observe(context, opUpdate, start, ErrNotFound)
		return Institution{}, ErrNotFound
	}

	var result Institution
	err := service.repo.WithinTx(context, func(tx Tx) error {
		current, err := tx.FindByPublicIDForUpdate(context, publicID)
		if err != nil {
			return err
		}
		result, err = service.revise(context, tx, current, fields, author)
		return err
	})

	service.observe(context, opUpdate, start, err)
	if err != nil {
		return Institution{}, err
	}

	service.log(context).InfoContext(context, "institution_updated",
		slog.String("public_id", result.PublicID),
		slog.String("author", author),
	)
	return result, nil
}

// Invalidate soft-deletes an institution. Identifiers and metadata are left in place.
func (service *Service) Invalidate(context context.Context, id string, author string) error {
	start := service.now()

	publicID, ok := FullPublicID(id)
	if !ok {
		service.observe(context, opInvalidate, start, ErrNotFound)
		return ErrNotFound
	}

	err := service.repo.WithinTx(context, func(tx Tx) error {
		current, err := tx.FindByPublicIDForUpdate(context, publicID)
		if err != nil {
			return err
		}
		return tx.Update(context, current.invalidate(author, service.now()))
	})

	service.observe(context, opInvalidate, start, err)
	if err != nil {
		return err
	}

	service.log(context).InfoContext(context, "institution_invalidated",
		slog.String("public_id", publicID),
		slog.String("author", author),
	)
	return nil
}

// revise runs the shared update path: replace fields, reconcile, persist.
func (service *Service) revise(context context.Context, tx Tx, current Institution, fields Fields, author string) (Institution, error) {
	plan, err := service.reconciler.Plan(context, current.Identifiers, fields)
	if err != nil {
		return Institution{}, err
	}

	inst := plan.Apply(current.revise(fields, author, service.now()))
	if err := tx.Update(context, inst); err != nil {
		return Institution{}, err
	}
	if err := tx.ApplyIdentifiers(context, inst.ID, plan); err != nil {
		return Institution{}, err
	}
	service.countOps(plan)

	return inst, nil
}

// # Helpers

func (service *Service) countOps(plan Plan) {
	for _, op := range plan.Ops {
		service.metrics.IncrementIdentifierOp(op.Identifier.Kind.TypeName(), op.Op.String())
	}
}

func (service *Service) observe(context context.Context, operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if appError := apperr.As(err); appError != nil {
			result = strings.ToLower(appError.Code)
		}
		service.log(context).DebugContext(context, "institution_write_rejected",
			slog.String("operation", operation),
			slog.String("result", result),
			slog.String("error", err.Error()),
		)
	}
	service.metrics.ObserveWrite(operation, result, service.now().Sub(start))
}

// log prefers the request-scoped logger so entries carry the request id.
func (service *Service) log(context context.Context) *slog.Logger {
	if logger := ctxutil.GetLogger(context); logger != slog.Default() {
		return logger
	}
	return service.logger
}
