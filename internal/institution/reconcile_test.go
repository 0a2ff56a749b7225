// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osg-htc/institutions/internal/institution"
	"github.com/osg-htc/institutions/internal/platform/apperr"
	"github.com/osg-htc/institutions/internal/reference"
	"github.com/osg-htc/institutions/pkg/pointer"
)

// stored runs a plan against no identifiers and returns the resulting identifiers.
func stored(t *testing.T, reconciler *institution.Reconciler, desired institution.DesiredIdentifiers) []institution.Identifier {
	t.Helper()

	plan, err := reconciler.Plan(context.Background(), nil, institution.Fields{Name: "X", Identifiers: desired})
	require.NoError(t, err)
	return plan.Apply(institution.Institution{}).Identifiers
}

/*
TestReconciler_Transitions covers every per-kind transition.
*/
func TestReconciler_Transitions(t *testing.T) {
	reconciler := institution.NewReconciler(testCatalog())
	current := stored(t, reconciler, institution.DesiredIdentifiers{RORID: rorMadison, UnitID: unitMadison})

	tests := []struct {
		name    string
		current []institution.Identifier
		desired institution.DesiredIdentifiers
		want    map[institution.IdentifierKind]institution.OpKind
	}{
		{
			name:    "absent_to_absent",
			current: nil,
			desired: institution.DesiredIdentifiers{},
			want:    map[institution.IdentifierKind]institution.OpKind{},
		},
		{
			name:    "absent_to_present",
			current: nil,
			desired: institution.DesiredIdentifiers{RORID: rorMadison, UnitID: unitMadison},
			want: map[institution.IdentifierKind]institution.OpKind{
				institution.KindRORID:  institution.OpInsert,
				institution.KindUnitID: institution.OpInsert,
			},
		},
		{
			name:    "present_to_absent",
			current: current,
			desired: institution.DesiredIdentifiers{},
			want: map[institution.IdentifierKind]institution.OpKind{
				institution.KindRORID:  institution.OpDelete,
				institution.KindUnitID: institution.OpDelete,
			},
		},
		{
			name:    "changed",
			current: current,
			desired: institution.DesiredIdentifiers{RORID: "https://ror.org/00000000", UnitID: unitNoCoord},
			want: map[institution.IdentifierKind]institution.OpKind{
				institution.KindRORID:  institution.OpUpdate,
				institution.KindUnitID: institution.OpUpdate,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := reconciler.Plan(context.Background(), tt.current, institution.Fields{Name: "X", Identifiers: tt.desired})
			require.NoError(t, err)

			got := make(map[institution.IdentifierKind]institution.OpKind, len(plan.Ops))
			for _, op := range plan.Ops {
				got[op.Identifier.Kind] = op.Op
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestReconciler_Idempotent ensures an unchanged desired state plans no mutations.
*/
func TestReconciler_Idempotent(t *testing.T) {
	reconciler := institution.NewReconciler(testCatalog())
	desired := institution.DesiredIdentifiers{RORID: rorMadison, UnitID: unitMadison}
	current := stored(t, reconciler, desired)

	plan, err := reconciler.Plan(context.Background(), current, institution.Fields{Name: "X", Identifiers: desired})
	require.NoError(t, err)
	assert.True(t, plan.Empty())
}

/*
TestReconciler_UnitIDMetadata checks IPEDS and Carnegie resolution of a new unit id.
*/
func TestReconciler_UnitIDMetadata(t *testing.T) {
	reconciler := institution.NewReconciler(testCatalog())

	identifiers := stored(t, reconciler, institution.DesiredIdentifiers{UnitID: unitMadison})
	require.Len(t, identifiers, 1)

	unitID := identifiers[0]
	require.NotNil(t, unitID.IPEDS)
	assert.Equal(t, "www.wisc.edu/", unitID.IPEDS.Website)
	assert.Equal(t, reference.ControlPublic, unitID.IPEDS.Control)
	assert.Equal(t, reference.SizeOver20000, unitID.IPEDS.InstitutionSize)

	require.NotNil(t, unitID.Carnegie)
	assert.Equal(t, "Doctoral Universities: Very High Research Activity", pointer.Val(unitID.Carnegie.Classification2021))
	assert.Equal(t, "Research 1: Very High Spending and Doctorate Production", pointer.Val(unitID.Carnegie.Classification2025))

	t.Run("carnegie_miss_leaves_labels_empty", func(t *testing.T) {
		identifiers := stored(t, reconciler, institution.DesiredIdentifiers{UnitID: unitNoCoord})
		require.Len(t, identifiers, 1)
		require.NotNil(t, identifiers[0].Carnegie)
		assert.Nil(t, identifiers[0].Carnegie.Classification2021)
		assert.Nil(t, identifiers[0].Carnegie.Classification2025)
		assert.True(t, identifiers[0].IPEDS.HBCU)
	})

	t.Run("ror_id_has_no_metadata", func(t *testing.T) {
		identifiers := stored(t, reconciler, institution.DesiredIdentifiers{RORID: rorMadison})
		require.Len(t, identifiers, 1)
		assert.Nil(t, identifiers[0].IPEDS)
		assert.Nil(t, identifiers[0].Carnegie)
	})
}

/*
TestReconciler_ChangedUnitIDKeepsRowIDs verifies an in-place change reuses row and metadata ids.
*/
func TestReconciler_ChangedUnitIDKeepsRowIDs(t *testing.T) {
	reconciler := institution.NewReconciler(testCatalog())
	current := stored(t, reconciler, institution.DesiredIdentifiers{UnitID: unitMadison})[0]

	plan, err := reconciler.Plan(context.Background(), []institution.Identifier{current},
		institution.Fields{Name: "X", Identifiers: institution.DesiredIdentifiers{UnitID: unitNoCoord}})
	require.NoError(t, err)
	require.Len(t, plan.Ops, 1)

	updated := plan.Ops[0].Identifier
	assert.Equal(t, current.ID, updated.ID)
	assert.Equal(t, current.IPEDS.ID, updated.IPEDS.ID)
	assert.Equal(t, current.Carnegie.ID, updated.Carnegie.ID)
	assert.Equal(t, "AL", updated.IPEDS.State)
}

/*
TestReconciler_UnitIDNotFound rejects unknown unit ids.
*/
func TestReconciler_UnitIDNotFound(t *testing.T) {
	reconciler := institution.NewReconciler(testCatalog())

	_, err := reconciler.Plan(context.Background(), nil,
		institution.Fields{Name: "X", Identifiers: institution.DesiredIdentifiers{UnitID: unitUnknown}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, institution.ErrUnitIDNotFound))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestReconciler_Backfill checks that reference coordinates and state only fill unset fields.
*/
func TestReconciler_Backfill(t *testing.T) {
	reconciler := institution.NewReconciler(testCatalog())
	desired := institution.DesiredIdentifiers{UnitID: unitMadison}

	tests := []struct {
		name      string
		fields    institution.Fields
		wantLat   *float64
		wantState *string
	}{
		{
			name:      "all_unset",
			fields:    institution.Fields{Name: "X", Identifiers: desired},
			wantLat:   pointer.To(43.075),
			wantState: pointer.To("WI"),
		},
		{
			name: "explicit_values_win",
			fields: institution.Fields{
				Name: "X", Identifiers: desired,
				Latitude: pointer.To(1.0), Longitude: pointer.To(2.0), State: pointer.To("MN"),
			},
			wantLat:   pointer.To(1.0),
			wantState: pointer.To("MN"),
		},
		{
			name:      "explicit_latitude_alone_is_kept",
			fields:    institution.Fields{Name: "X", Identifiers: desired, Latitude: pointer.To(10.0)},
			wantLat:   pointer.To(10.0),
			wantState: pointer.To("WI"),
		},
		{
			name:      "explicit_longitude_alone_blocks_backfill",
			fields:    institution.Fields{Name: "X", Identifiers: desired, Longitude: pointer.To(-89.0)},
			wantLat:   nil,
			wantState: pointer.To("WI"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := reconciler.Plan(context.Background(), nil, tt.fields)
			require.NoError(t, err)

			inst := plan.Apply(institution.Institution{
				Latitude: tt.fields.Latitude, Longitude: tt.fields.Longitude, State: tt.fields.State,
			})
			assert.Equal(t, tt.wantLat, inst.Latitude)
			assert.Equal(t, tt.wantState, inst.State)
		})
	}

	t.Run("record_without_coordinates", func(t *testing.T) {
		plan, err := reconciler.Plan(context.Background(), nil,
			institution.Fields{Name: "X", Identifiers: institution.DesiredIdentifiers{UnitID: unitNoCoord}})
		require.NoError(t, err)
		assert.Nil(t, plan.Backfill.Latitude)
		assert.Equal(t, "AL", pointer.Val(plan.Backfill.State))
	})
}
