// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package schema

// IPEDSMetadataTable represents the 'institution_ipeds_metadata' table
type IPEDSMetadataTable struct {
	Table           string
	ID              string
	InstitutionID   string
	IdentifierID    string
	Website         string
	HBCU            string
	Tribal          string
	ProgramLength   string
	Control         string
	State           string
	InstitutionSize string
}

// IPEDSMetadata is the schema definition for institution_ipeds_metadata
var IPEDSMetadata = IPEDSMetadataTable{
	Table:           "institution_ipeds_metadata",
	ID:              "id",
	InstitutionID:   "institution_id",
	IdentifierID:    "institution_identifier_id",
	Website:         "website_address",
	HBCU:            "historically_black_college_or_university",
	Tribal:          "tribal_college_or_university",
	ProgramLength:   "program_length",
	Control:         "control",
	State:           "state",
	InstitutionSize: "institution_size",
}

// CarnegieMetadataTable represents the 'institution_carnegie_metadata' table
type CarnegieMetadataTable struct {
	Table              string
	ID                 string
	InstitutionID      string
	IdentifierID       string
	Classification2021 string
	Classification2025 string
}

// CarnegieMetadata is the schema definition for institution_carnegie_metadata
var CarnegieMetadata = CarnegieMetadataTable{
	Table:              "institution_carnegie_metadata",
	ID:                 "id",
	InstitutionID:      "institution_id",
	IdentifierID:       "institution_identifier_id",
	Classification2021: "classification2021",
	Classification2025: "classification2025",
}
