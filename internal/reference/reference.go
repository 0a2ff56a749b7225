// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
Package reference loads the external lookup tables used to enrich institutions.

Three datasets are supported, each keyed by IPEDS unit id:

  - IPEDS institutional characteristics (hd2023.csv, Latin-1 encoded).
  - Carnegie Classification 2021, basic classification (xlsx, sheet "Data").
  - Carnegie 2025 Research Activity Designation (xlsx, sheet "Data").

Every dataset is read at most once per process and is read-only afterwards.
*/
package reference

// # IPEDS Categorical Values

// ProgramLength is the IPEDS ICLEVEL bucket.
type ProgramLength string

const (
	ProgramFourOrMoreYears    ProgramLength = "FOUR_OR_MORE_YEARS"
	ProgramTwoToFourYears     ProgramLength = "AT_LEAST_TWO_BUT_LESS_THAN_FOUR_YEARS"
	ProgramLessThanTwoYears   ProgramLength = "LESS_THAN_TWO_YEARS"
	ProgramLengthNotAvailable ProgramLength = "NOT_AVAILABLE"
)

// Control is the IPEDS CONTROL bucket.
type Control string

const (
	ControlPublic           Control = "PUBLIC"
	ControlPrivateNonprofit Control = "PRIVATE_NONPROFIT"
	ControlPrivateForProfit Control = "PRIVATE_FORPROFIT"
	ControlNotAvailable     Control = "NOT_AVAILABLE"
)

// InstitutionSize is the IPEDS INSTSIZE enrollment bucket.
type InstitutionSize string

const (
	SizeUnder1000     InstitutionSize = "UNDER_1000"
	Size1000To4999    InstitutionSize = "BETWEEN_1000_AND_4999"
	Size5000To9999    InstitutionSize = "BETWEEN_5000_AND_9999"
	Size10000To19999  InstitutionSize = "BETWEEN_10000_AND_19999"
	SizeOver20000     InstitutionSize = "OVER_20000"
	SizeNotReported   InstitutionSize = "NOT_REPORTED"
	SizeNotApplicable InstitutionSize = "NOT_APPLICABLE"
)

var (
	programLengthCodes = map[int]ProgramLength{
		1:  ProgramFourOrMoreYears,
		2:  ProgramTwoToFourYears,
		3:  ProgramLessThanTwoYears,
		-3: ProgramLengthNotAvailable,
	}

	controlCodes = map[int]Control{
		1:  ControlPublic,
		2:  ControlPrivateNonprofit,
		3:  ControlPrivateForProfit,
		-3: ControlNotAvailable,
	}

	sizeCodes = map[int]InstitutionSize{
		1:  SizeUnder1000,
		2:  Size1000To4999,
		3:  Size5000To9999,
		4:  Size10000To19999,
		5:  SizeOver20000,
		-1: SizeNotReported,
		-2: SizeNotApplicable,
	}
)

// # Records

// IPEDSRecord is one row of the IPEDS institutional characteristics file.
// Categorical fields are empty when the source code is unknown.
type IPEDSRecord struct {
	UnitID          string
	Name            string
	Website         string
	HBCU            bool
	Tribal          bool
	ProgramLength   ProgramLength
	Control         Control
	State           string
	InstitutionSize InstitutionSize
	Latitude        *float64
	Longitude       *float64
}

// HasCoordinates reports whether the record carries a full coordinate pair.
func (r IPEDSRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Classification is a Carnegie label, or empty when the unit id is not classified.
type Classification struct {
	Code  string
	Label string
}
