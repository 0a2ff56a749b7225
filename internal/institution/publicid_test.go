// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osg-htc/institutions/internal/institution"
	"github.com/osg-htc/institutions/internal/platform/apperr"
	"github.com/osg-htc/institutions/internal/platform/constants"
)

/*
TestPublicIDGenerator_Format checks prefix, length and alphabet of generated ids.
*/
func TestPublicIDGenerator_Format(t *testing.T) {
	generator := institution.NewPublicIDGenerator(12, 1000)

	for range 50 {
		id, attempts, err := generator.Generate(nil)
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)

		require.True(t, strings.HasPrefix(id, constants.PublicIDPrefix))
		suffix := strings.TrimPrefix(id, constants.PublicIDPrefix)
		assert.Len(t, suffix, 12)
		for _, r := range suffix {
			assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'), "unexpected rune %q", r)
		}
	}
}

/*
TestPublicIDGenerator_Deterministic drives the generator with a fixed byte stream.
*/
func TestPublicIDGenerator_Deterministic(t *testing.T) {
	// 0 -> 'a', 25 -> 'z', 26 -> '0'; 255 is above the rejection bound and skipped.
	stream := bytes.NewReader([]byte{0, 255, 25, 26, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	generator := institution.NewPublicIDGeneratorWithSource(9, 10, stream)

	id, _, err := generator.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, constants.PublicIDPrefix+"az0bcdefg", id)
}

/*
TestPublicIDGenerator_MinimumLength clamps short lengths.
*/
func TestPublicIDGenerator_MinimumLength(t *testing.T) {
	generator := institution.NewPublicIDGeneratorWithSource(3, 1, constantReader(0))

	id, _, err := generator.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, constants.PublicIDPrefix+strings.Repeat("a", constants.MinPublicIDLength), id)
}

/*
TestPublicIDGenerator_Exhausted fails after the configured number of collisions.
*/
func TestPublicIDGenerator_Exhausted(t *testing.T) {
	generator := institution.NewPublicIDGeneratorWithSource(9, 5, constantReader(0))
	taken := map[string]struct{}{constants.PublicIDPrefix + "aaaaaaaaa": {}}

	_, attempts, err := generator.Generate(taken)
	require.Error(t, err)
	assert.Equal(t, 5, attempts)
	assert.True(t, apperr.HasCode(err, apperr.CodeIDExhausted))
}

/*
TestFullPublicID covers short, full and malformed forms.
*/
func TestFullPublicID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"short", "3yiehdw3bef5", constants.PublicIDPrefix + "3yiehdw3bef5", true},
		{"full", constants.PublicIDPrefix + "3yiehdw3bef5", constants.PublicIDPrefix + "3yiehdw3bef5", true},
		{"upper_case", "3YIEHDW3BEF5", "", false},
		{"empty", "", "", false},
		{"prefix_only", constants.PublicIDPrefix, "", false},
		{"path_traversal", "../etc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := institution.FullPublicID(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
