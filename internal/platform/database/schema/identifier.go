// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package schema

// IdentifierTypeTable represents the 'identifier_type' table
type IdentifierTypeTable struct {
	Table       string
	ID          string
	Name        string
	Description string
}

// IdentifierType is the schema definition for identifier_type
var IdentifierType = IdentifierTypeTable{
	Table:       "identifier_type",
	ID:          "id",
	Name:        "name",
	Description: "description",
}

// InstitutionIdentifierTable represents the 'institution_identifier' table
type InstitutionIdentifierTable struct {
	Table         string
	ID            string
	InstitutionID string
	TypeID        string
	Value         string

	// Unique constraints
	ValueUnique string
	OnePerType  string
}

// InstitutionIdentifier is the schema definition for institution_identifier
var InstitutionIdentifier = InstitutionIdentifierTable{
	Table:         "institution_identifier",
	ID:            "id",
	InstitutionID: "institution_id",
	TypeID:        "identifier_type_id",
	Value:         "identifier",

	ValueUnique: "institution_identifier_value_unique",
	OnePerType:  "institution_identifier_one_per_type",
}
