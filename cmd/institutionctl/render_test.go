// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osg-htc/institutions/internal/institution"
	"github.com/osg-htc/institutions/internal/reference"
	"github.com/osg-htc/institutions/pkg/pointer"
)

func init() {
	color.NoColor = true
}

var sample = institution.Institution{
	PublicID:  "https://osg-htc.org/iid/3yiehdw3bef5",
	Name:      "Academia Sinica",
	Valid:     false,
	Latitude:  pointer.To(25.04),
	Longitude: pointer.To(121.61),
	CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	CreatedBy: "osg-admin",
	Identifiers: []institution.Identifier{
		{Kind: institution.KindRORID, Value: "https://ror.org/05bxb3784"},
	},
}

/*
TestRenderList prints one row per institution and a total.
*/
func TestRenderList(t *testing.T) {
	var out bytes.Buffer
	renderList(&out, []institution.Institution{sample})

	assert.Contains(t, out.String(), "3yiehdw3bef5")
	assert.Contains(t, out.String(), "Academia Sinica")
	assert.Contains(t, out.String(), "121.61")
	assert.Contains(t, out.String(), "1 valid institutions")
}

/*
TestRenderInstitution flags invalidated records.
*/
func TestRenderInstitution(t *testing.T) {
	var out bytes.Buffer
	renderInstitution(&out, sample)

	assert.Contains(t, out.String(), "invalidated")
	assert.Contains(t, out.String(), "https://ror.org/05bxb3784")
	assert.Contains(t, out.String(), "osg-admin")
}

/*
TestRenderLookup shows IPEDS fields and Carnegie labels, and reports misses.
*/
func TestRenderLookup(t *testing.T) {
	catalog := reference.NewStaticCatalog(
		map[string]reference.IPEDSRecord{"240444": {UnitID: "240444", Name: "University of Wisconsin-Madison", State: "WI"}},
		map[string]reference.Classification{"240444": {Code: "15", Label: "Doctoral Universities: Very High Research Activity"}},
		nil,
	)

	var out bytes.Buffer
	require.NoError(t, renderLookup(context.Background(), &out, catalog, "240444"))
	assert.Contains(t, out.String(), "University of Wisconsin-Madison")
	assert.Contains(t, out.String(), "Very High Research Activity")

	out.Reset()
	require.NoError(t, renderLookup(context.Background(), &out, catalog, "999999"))
	assert.Contains(t, out.String(), "not in the IPEDS dataset")
}
