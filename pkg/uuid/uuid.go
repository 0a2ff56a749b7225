// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
Package uuid provides time-ordered row identifiers for the platform.

It wraps google/uuid to generate Version 7 values, which sort by creation
time and keep PostgreSQL B-tree indexes compact. These are internal storage
keys only; institutions are addressed externally by their public identifier.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
