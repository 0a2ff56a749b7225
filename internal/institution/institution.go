// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
Package institution manages the catalog's single aggregate: an institution with
its typed alternate identifiers and the classification metadata they own.

Components:

  - PublicIDGenerator: assigns the durable, namespace-prefixed public id.
  - Reconciler: diffs desired identifiers against stored ones and plans row changes.
  - Service: the transactional create/update/invalidate workflows.
  - Repository: PostgreSQL and in-memory stores, plus a Redis list cache.
  - Handler: the /institutions HTTP surface.

Values in this package are treated as immutable. Operations that change an
institution return a new value.
*/
package institution

import (
	"slices"
	"strings"
	"time"

	"github.com/osg-htc/institutions/internal/platform/constants"
	"github.com/osg-htc/institutions/internal/platform/validate"
	"github.com/osg-htc/institutions/internal/reference"
	"github.com/osg-htc/institutions/pkg/textnorm"
)

// JSON field names shared by validation details and the wire format.
const (
	FieldName      = "name"
	FieldRORID     = "ror_id"
	FieldUnitID    = "unitid"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldState     = "state"
)

// MaxNameLength bounds institution display names.
const MaxNameLength = 255

// # Domain Entities

// Institution is the aggregate root.
type Institution struct {
	ID          string
	PublicID    string
	Name        string
	Valid       bool
	Latitude    *float64
	Longitude   *float64
	State       *string
	Identifiers []Identifier
	CreatedAt   time.Time
	CreatedBy   string
	UpdatedAt   *time.Time
	UpdatedBy   *string
}

// Identifier is a typed alternate identifier owned by one institution.
// IPEDS and Carnegie are only ever set on [KindUnitID] identifiers.
type Identifier struct {
	ID       string
	Kind     IdentifierKind
	Value    string
	IPEDS    *IPEDSMetadata
	Carnegie *CarnegieMetadata
}

// IPEDSMetadata is the IPEDS-derived satellite record of a unit id.
type IPEDSMetadata struct {
	ID              string
	Website         string
	HBCU            bool
	Tribal          bool
	ProgramLength   reference.ProgramLength
	Control         reference.Control
	State           string
	InstitutionSize reference.InstitutionSize
}

// CarnegieMetadata holds the Carnegie classification labels of a unit id.
type CarnegieMetadata struct {
	ID                 string
	Classification2021 *string
	Classification2025 *string
}

// Identifier returns the institution's identifier of the given kind.
func (inst Institution) Identifier(kind IdentifierKind) (Identifier, bool) {
	for _, identifier := range inst.Identifiers {
		if identifier.Kind == kind {
			return identifier, true
		}
	}
	return Identifier{}, false
}

// IdentifierValue returns the value of the identifier of the given kind, or "".
func (inst Institution) IdentifierValue(kind IdentifierKind) string {
	identifier, _ := inst.Identifier(kind)
	return identifier.Value
}

// ShortID returns the public id without its namespace, as used in URLs.
func (inst Institution) ShortID() string {
	return ShortPublicID(inst.PublicID)
}

// clone returns a deep copy so stores never share mutable state with callers.
func (inst Institution) clone() Institution {
	out := inst
	out.Identifiers = make([]Identifier, len(inst.Identifiers))
	for i, identifier := range inst.Identifiers {
		if identifier.IPEDS != nil {
			ipeds := *identifier.IPEDS
			identifier.IPEDS = &ipeds
		}
		if identifier.Carnegie != nil {
			carnegie := *identifier.Carnegie
			identifier.Carnegie = &carnegie
		}
		out.Identifiers[i] = identifier
	}
	return out
}

// withIdentifiers returns a copy with identifiers replaced and sorted by kind.
func (inst Institution) withIdentifiers(identifiers []Identifier) Institution {
	out := inst
	out.Identifiers = slices.SortedFunc(slices.Values(identifiers), func(a, b Identifier) int {
		return int(a.Kind) - int(b.Kind)
	})
	return out
}

// # Write Model

// DesiredIdentifiers is the caller's target identifier state. Empty means "none".
type DesiredIdentifiers struct {
	RORID  string
	UnitID string
}

// Value returns the desired value for kind.
func (desired DesiredIdentifiers) Value(kind IdentifierKind) string {
	switch kind {
	case KindRORID:
		return desired.RORID
	case KindUnitID:
		return desired.UnitID
	default:
		panic("institution: unknown identifier kind")
	}
}

// Fields is the client-writable part of an institution.
type Fields struct {
	Name        string
	Latitude    *float64
	Longitude   *float64
	State       *string
	Identifiers DesiredIdentifiers
}

// Normalize returns a canonical copy: names are NFC with collapsed spaces,
// identifiers lose stray whitespace and states are upper-cased.
func (fields Fields) Normalize() Fields {
	out := fields
	out.Name = textnorm.Name(fields.Name)
	out.Identifiers.RORID = textnorm.Token(fields.Identifiers.RORID)
	out.Identifiers.UnitID = textnorm.Token(fields.Identifiers.UnitID)

	if fields.State != nil {
		state := strings.ToUpper(strings.TrimSpace(*fields.State))
		out.State = nil
		if state != "" {
			out.State = &state
		}
	}
	return out
}

// Validate checks field formats. It performs no lookups, so it can run before any transaction.
func (fields Fields) Validate() error {
	validator := &validate.Validator{}

	validator.Required(FieldName, fields.Name).MaxLen(FieldName, fields.Name, MaxNameLength)
	validator.Between(FieldLatitude, fields.Latitude, -90, 90)
	validator.Between(FieldLongitude, fields.Longitude, -180, 180)

	if fields.State != nil {
		validator.MaxLen(FieldState, *fields.State, 2)
	}

	for _, kind := range Kinds {
		if value := fields.Identifiers.Value(kind); value != "" {
			kind.validate(validator, value)
		}
	}

	return validator.Err()
}

// # Lifecycle

// newInstitution builds a valid, never-persisted institution.
func newInstitution(id, publicID string, fields Fields, author string, at time.Time) Institution {
	return Institution{
		ID:        id,
		PublicID:  publicID,
		Name:      fields.Name,
		Valid:     true,
		Latitude:  fields.Latitude,
		Longitude: fields.Longitude,
		State:     fields.State,
		CreatedAt: at,
		CreatedBy: author,
	}
}

// revise applies fields as a full replacement of the writable attributes.
// A revision always marks the institution valid again.
func (inst Institution) revise(fields Fields, author string, at time.Time) Institution {
	out := inst.clone()
	out.Name = fields.Name
	out.Latitude = fields.Latitude
	out.Longitude = fields.Longitude
	out.State = fields.State
	out.Valid = true
	return out.stamp(author, at)
}

// invalidate soft-deletes the institution. Identifiers and metadata are kept.
func (inst Institution) invalidate(author string, at time.Time) Institution {
	out := inst.clone()
	out.Valid = false
	return out.stamp(author, at)
}

func (inst Institution) stamp(author string, at time.Time) Institution {
	inst.UpdatedAt = &at
	inst.UpdatedBy = &author
	return inst
}

// # Public Identifiers

// ShortPublicID strips the namespace from a public id.
func ShortPublicID(publicID string) string {
	return strings.TrimPrefix(publicID, constants.PublicIDPrefix)
}

// FullPublicID accepts a short or full public id and returns the full form.
// It reports false when the suffix cannot have been produced by the generator.
func FullPublicID(id string) (string, bool) {
	short := strings.TrimPrefix(strings.TrimSpace(id), constants.PublicIDPrefix)
	if short == "" || len(short) > 64 {
		return "", false
	}
	for _, r := range short {
		if !strings.ContainsRune(publicIDAlphabet, r) {
			return "", false
		}
	}
	return constants.PublicIDPrefix + short, true
}
