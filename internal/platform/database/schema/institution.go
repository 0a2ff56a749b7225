// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

// Package schema names the tables, columns and constraints created by data/migrations.
//
// Queries build their SQL from these definitions so a column rename is a
// compile-time change rather than a string hunt.
package schema

// InstitutionTable represents the 'institution' table
type InstitutionTable struct {
	Table     string
	ID        string
	PublicID  string
	Name      string
	Valid     string
	Latitude  string
	Longitude string
	State     string
	CreatedAt string
	CreatedBy string
	UpdatedAt string
	UpdatedBy string

	// Unique constraints
	NameUnique     string
	PublicIDUnique string
}

// Institution is the schema definition for institution
var Institution = InstitutionTable{
	Table:     "institution",
	ID:        "id",
	PublicID:  "topology_identifier",
	Name:      "name",
	Valid:     "valid",
	Latitude:  "latitude",
	Longitude: "longitude",
	State:     "state",
	CreatedAt: "created",
	CreatedBy: "created_by",
	UpdatedAt: "updated",
	UpdatedBy: "updated_by",

	NameUnique:     "institution_name_unique",
	PublicIDUnique: "institution_public_id_unique",
}

func (t InstitutionTable) Columns() []string {
	return []string{t.ID, t.PublicID, t.Name, t.Valid, t.Latitude, t.Longitude, t.State, t.CreatedAt, t.CreatedBy, t.UpdatedAt, t.UpdatedBy}
}
