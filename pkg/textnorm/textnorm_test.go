// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osg-htc/institutions/pkg/textnorm"
)

/*
TestName verifies that visually identical names normalise to one stored value.
*/
func TestName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "University of Chicago", "University of Chicago"},
		{"outer_space", "  University of Chicago \n", "University of Chicago"},
		{"inner_runs", "University\tof   Chicago", "University of Chicago"},
		{"combining_accent", "Universite\u0301 Laval", "Universit\u00e9 Laval"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textnorm.Name(tt.in))
		})
	}
}

func TestToken(t *testing.T) {
	assert.Equal(t, "https://ror.org/01y2jtd41", textnorm.Token(" https://ror.org/ 01y2jtd41\n"))
	assert.Equal(t, "240444", textnorm.Token("240 444"))
}
