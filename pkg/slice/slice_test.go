// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package slice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osg-htc/institutions/pkg/slice"
)

func TestMap(t *testing.T) {
	assert.Nil(t, slice.Map[string, int](nil, func(s string) int { return len(s) }))
	assert.Equal(t, []int{2, 3}, slice.Map([]string{"ab", "cde"}, func(s string) int { return len(s) }))
}
