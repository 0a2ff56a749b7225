// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osg-htc/institutions/pkg/pointer"
)

func TestNonEmpty(t *testing.T) {
	assert.Nil(t, pointer.NonEmpty(""))
	assert.Equal(t, "WI", *pointer.NonEmpty("WI"))
}

func TestVal(t *testing.T) {
	assert.Zero(t, pointer.Val[float64](nil))
	assert.Equal(t, 43.075, pointer.Val(pointer.To(43.075)))
}
