// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/osg-htc/institutions/internal/institution"
	"github.com/osg-htc/institutions/internal/reference"
	"github.com/osg-htc/institutions/pkg/pointer"
)

const (
	// Resolvable unit ids in the test catalog.
	unitMadison = "240444"
	unitNoCoord = "100654"

	// Present in no dataset.
	unitUnknown = "999999"

	rorMadison = "https://ror.org/01y2jtd41"
	testAuthor = "http://cilogon.org/serverA/users/1"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testCatalog holds two IPEDS records; only Madison is Carnegie classified.
func testCatalog() *reference.Catalog {
	return reference.NewStaticCatalog(
		map[string]reference.IPEDSRecord{
			unitMadison: {
				UnitID:          unitMadison,
				Name:            "University of Wisconsin-Madison",
				Website:         "www.wisc.edu/",
				ProgramLength:   reference.ProgramFourOrMoreYears,
				Control:         reference.ControlPublic,
				State:           "WI",
				InstitutionSize: reference.SizeOver20000,
				Latitude:        pointer.To(43.075),
				Longitude:       pointer.To(-89.4),
			},
			unitNoCoord: {
				UnitID:  unitNoCoord,
				Name:    "Alabama A & M University",
				HBCU:    true,
				State:   "AL",
				Control: reference.ControlPublic,
			},
		},
		map[string]reference.Classification{
			unitMadison: {Code: "15", Label: "Doctoral Universities: Very High Research Activity"},
		},
		map[string]reference.Classification{
			unitMadison: {Code: "1", Label: "Research 1: Very High Spending and Doctorate Production"},
		},
	)
}

// discardLogger keeps test output quiet.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService wires a service over a fresh memory store.
func newTestService(t *testing.T) (*institution.Service, *institution.MemoryStore) {
	t.Helper()

	store := institution.NewMemoryStore()
	service := institution.NewService(
		store,
		institution.NewReconciler(testCatalog()),
		institution.NewPublicIDGenerator(12, 1000),
		discardLogger(),
		institution.WithClock(func() time.Time { return fixedNow }),
	)
	return service, store
}

// constantReader yields the same byte forever, so every drawn id is identical.
type constantReader byte

func (r constantReader) Read(p []byte) (int, error) {
	copy(p, bytes.Repeat([]byte{byte(r)}, len(p)))
	return len(p), nil
}
