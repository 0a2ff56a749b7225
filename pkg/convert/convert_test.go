// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osg-htc/institutions/pkg/convert"
)

func TestInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{" -3 ", -3, true},
		{"2.0", 2, true},
		{"2.5", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := convert.Int(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloat(t *testing.T) {
	v, ok := convert.Float("43.075970")
	assert.True(t, ok)
	assert.InDelta(t, 43.07597, v, 1e-9)

	_, ok = convert.Float(" ")
	assert.False(t, ok)

	_, ok = convert.Float("NaN")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "100654", convert.Key("100654.0"))
	assert.Equal(t, "100654", convert.Key(" 100654 "))
	assert.Equal(t, "12345", convert.Key("012345"))
	assert.Equal(t, "n/a", convert.Key(" n/a "))
}
