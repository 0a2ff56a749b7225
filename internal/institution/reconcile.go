// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution

import (
	"context"
	"fmt"

	"github.com/osg-htc/institutions/internal/platform/apperr"
	"github.com/osg-htc/institutions/internal/reference"
	"github.com/osg-htc/institutions/pkg/pointer"
	"github.com/osg-htc/institutions/pkg/uuid"
)

// ReferenceData is the read-only lookup surface of the reference datasets.
// A miss is ok=false; err is reserved for datasets that cannot be loaded.
type ReferenceData interface {
	IPEDS(ctx context.Context, unitID string) (reference.IPEDSRecord, bool, error)
	Carnegie2021(ctx context.Context, unitID string) (reference.Classification, bool, error)
	Carnegie2025(ctx context.Context, unitID string) (reference.Classification, bool, error)
}

// ErrUnitIDNotFound is returned when a new or changed unit id is absent from IPEDS.
var ErrUnitIDNotFound = apperr.ValidationError("unit id not found in reference data",
	apperr.FieldError{Field: FieldUnitID, Message: "No IPEDS record exists for this unit id"})

// # Plan

// OpKind is the row-level mutation applied to an identifier.
type OpKind int

const (
	OpInsert OpKind = iota + 1
	OpUpdate
	OpDelete
)

func (op OpKind) String() string {
	switch op {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// IdentifierOp is one planned identifier mutation.
// For inserts and updates, Identifier is the complete target row including metadata.
// For deletes, only Identifier.ID and Identifier.Kind are meaningful.
type IdentifierOp struct {
	Op         OpKind
	Identifier Identifier
}

// Backfill holds attributes copied from reference data because the caller left them unset.
type Backfill struct {
	Latitude  *float64
	Longitude *float64
	State     *string
}

// Plan is the complete set of changes that converges an institution to the desired identifiers.
type Plan struct {
	Ops      []IdentifierOp
	Backfill Backfill
}

// Empty reports whether applying the plan would write no identifier or metadata rows.
func (plan Plan) Empty() bool {
	return len(plan.Ops) == 0
}

// Apply returns inst with the plan's identifier changes and backfill applied.
func (plan Plan) Apply(inst Institution) Institution {
	out := inst.clone()

	if plan.Backfill.Latitude != nil && plan.Backfill.Longitude != nil {
		out.Latitude, out.Longitude = plan.Backfill.Latitude, plan.Backfill.Longitude
	}
	if plan.Backfill.State != nil {
		out.State = plan.Backfill.State
	}

	byKind := make(map[IdentifierKind]Identifier, len(out.Identifiers))
	for _, identifier := range out.Identifiers {
		byKind[identifier.Kind] = identifier
	}
	for _, op := range plan.Ops {
		switch op.Op {
		case OpInsert, OpUpdate:
			byKind[op.Identifier.Kind] = op.Identifier
		case OpDelete:
			delete(byKind, op.Identifier.Kind)
		}
	}

	identifiers := make([]Identifier, 0, len(byKind))
	for _, identifier := range byKind {
		identifiers = append(identifiers, identifier)
	}
	return out.withIdentifiers(identifiers)
}

// # Reconciler

// Reconciler computes identifier plans, consulting reference data for unit ids.
type Reconciler struct {
	reference ReferenceData
}

// NewReconciler creates a Reconciler over the given reference datasets.
func NewReconciler(reference ReferenceData) *Reconciler {
	return &Reconciler{reference: reference}
}

/*
Plan diffs the stored identifiers against fields.Identifiers.

Per kind: absent and absent is a no-op; stored but not desired is a delete;
desired but not stored is an insert; a changed value is an in-place update
that keeps the row and metadata ids; an unchanged value is a no-op.

Whenever a unit id is desired, its IPEDS record fills coordinates and state
that fields leaves unset. A new or changed unit id without an IPEDS record
fails with [ErrUnitIDNotFound]; Carnegie misses only leave labels empty.

Parameters:
  - context: context.Context
  - current: []Identifier (Stored identifiers, nil for a new institution)
  - fields: Fields (Normalized and validated target state)

Returns:
  - Plan: The mutations and backfill to apply
  - error: ErrUnitIDNotFound, or an internal error if a dataset cannot be loaded
*/
func (reconciler *Reconciler) Plan(context context.Context, current []Identifier, fields Fields) (Plan, error) {
	stored := make(map[IdentifierKind]Identifier, len(current))
	for _, identifier := range current {
		stored[identifier.Kind] = identifier
	}

	var plan Plan
	for _, kind := range Kinds {
		existing, has := stored[kind]
		desired := fields.Identifiers.Value(kind)

		switch {
		case desired == "" && !has:
			continue

		case desired == "" && has:
			plan.Ops = append(plan.Ops, IdentifierOp{Op: OpDelete, Identifier: Identifier{ID: existing.ID, Kind: kind}})

		case !has:
			identifier := Identifier{ID: uuid.New(), Kind: kind, Value: desired}
			if err := reconciler.resolve(context, &identifier, nil); err != nil {
				return Plan{}, err
			}
			plan.Ops = append(plan.Ops, IdentifierOp{Op: OpInsert, Identifier: identifier})

		case existing.Value != desired:
			identifier := Identifier{ID: existing.ID, Kind: kind, Value: desired}
			if err := reconciler.resolve(context, &identifier, &existing); err != nil {
				return Plan{}, err
			}
			plan.Ops = append(plan.Ops, IdentifierOp{Op: OpUpdate, Identifier: identifier})

		default:
			// Unchanged: no identifier or metadata writes.
		}

		if kind == KindUnitID && desired != "" {
			if err := reconciler.backfill(context, &plan.Backfill, desired, fields); err != nil {
				return Plan{}, err
			}
		}
	}

	return plan, nil
}

// resolve fills identifier's metadata from reference data, reusing the metadata ids of previous.
func (reconciler *Reconciler) resolve(context context.Context, identifier *Identifier, previous *Identifier) error {
	if !identifier.Kind.HasMetadata() {
		return nil
	}

	record, found, err := reconciler.reference.IPEDS(context, identifier.Value)
	if err != nil {
		return apperr.Internal(fmt.Errorf("load IPEDS reference data: %w", err))
	}
	if !found {
		return ErrUnitIDNotFound
	}

	ipedsID, carnegieID := uuid.New(), uuid.New()
	if previous != nil && previous.IPEDS != nil {
		ipedsID = previous.IPEDS.ID
	}
	if previous != nil && previous.Carnegie != nil {
		carnegieID = previous.Carnegie.ID
	}

	identifier.IPEDS = &IPEDSMetadata{
		ID:              ipedsID,
		Website:         record.Website,
		HBCU:            record.HBCU,
		Tribal:          record.Tribal,
		ProgramLength:   record.ProgramLength,
		Control:         record.Control,
		State:           record.State,
		InstitutionSize: record.InstitutionSize,
	}

	carnegie := &CarnegieMetadata{ID: carnegieID}
	if classification, ok, err := reconciler.reference.Carnegie2021(context, identifier.Value); err != nil {
		return apperr.Internal(fmt.Errorf("load Carnegie 2021 reference data: %w", err))
	} else if ok {
		carnegie.Classification2021 = pointer.NonEmpty(classification.Label)
	}
	if classification, ok, err := reconciler.reference.Carnegie2025(context, identifier.Value); err != nil {
		return apperr.Internal(fmt.Errorf("load Carnegie 2025 reference data: %w", err))
	} else if ok {
		carnegie.Classification2025 = pointer.NonEmpty(classification.Label)
	}
	identifier.Carnegie = carnegie

	return nil
}

// backfill copies coordinates and state from IPEDS where fields leaves them unset.
// An unchanged unit id that has since left the dataset simply contributes nothing.
func (reconciler *Reconciler) backfill(context context.Context, backfill *Backfill, unitID string, fields Fields) error {
	record, found, err := reconciler.reference.IPEDS(context, unitID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("load IPEDS reference data: %w", err))
	}
	if !found {
		return nil
	}

	// A caller-supplied coordinate is never replaced, even when its partner is missing.
	if fields.Latitude == nil && fields.Longitude == nil && record.HasCoordinates() {
		backfill.Latitude, backfill.Longitude = record.Latitude, record.Longitude
	}
	if fields.State == nil && record.State != "" {
		backfill.State = pointer.To(record.State)
	}
	return nil
}
