// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution

import (
	"fmt"

	"github.com/osg-htc/institutions/internal/platform/constants"
	"github.com/osg-htc/institutions/internal/platform/validate"
)

// IdentifierKind is the closed set of alternate identifier classes an institution may hold.
type IdentifierKind int

const (
	// KindRORID is a Research Organization Registry id (https://ror.org/...).
	KindRORID IdentifierKind = iota + 1
	// KindUnitID is an IPEDS unit id, the key into the reference datasets.
	KindUnitID
)

// Kinds lists every identifier kind in reconciliation order.
var Kinds = []IdentifierKind{KindRORID, KindUnitID}

// UnitIDDigits is the fixed width of an IPEDS unit id.
const UnitIDDigits = 6

// TypeName is the seeded identifier_type.name for the kind.
func (kind IdentifierKind) TypeName() string {
	switch kind {
	case KindRORID:
		return "ror_id"
	case KindUnitID:
		return "unitid"
	default:
		panic(fmt.Sprintf("institution: unknown identifier kind %d", int(kind)))
	}
}

// Field is the JSON field carrying the kind on the wire.
func (kind IdentifierKind) Field() string {
	switch kind {
	case KindRORID:
		return FieldRORID
	case KindUnitID:
		return FieldUnitID
	default:
		panic(fmt.Sprintf("institution: unknown identifier kind %d", int(kind)))
	}
}

func (kind IdentifierKind) String() string {
	return kind.TypeName()
}

// HasMetadata reports whether identifiers of this kind own classification metadata.
func (kind IdentifierKind) HasMetadata() bool {
	switch kind {
	case KindRORID:
		return false
	case KindUnitID:
		return true
	default:
		panic(fmt.Sprintf("institution: unknown identifier kind %d", int(kind)))
	}
}

// validate records format errors for a non-empty value of this kind.
func (kind IdentifierKind) validate(validator *validate.Validator, value string) {
	switch kind {
	case KindRORID:
		validator.Prefix(kind.Field(), value, constants.RORIDPrefix).
			Custom(kind.Field(), value == constants.RORIDPrefix, "Must include an identifier after the prefix").
			MaxLen(kind.Field(), value, 255)
	case KindUnitID:
		validator.Digits(kind.Field(), value, UnitIDDigits)
	default:
		panic(fmt.Sprintf("institution: unknown identifier kind %d", int(kind)))
	}
}

// KindByTypeName resolves a seeded identifier_type.name.
func KindByTypeName(name string) (IdentifierKind, bool) {
	for _, kind := range Kinds {
		if kind.TypeName() == name {
			return kind, true
		}
	}
	return 0, false
}
