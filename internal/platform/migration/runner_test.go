// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osg-htc/institutions/internal/platform/migration"
)

func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/inst", "pgx5://u:p@db:5432/inst"},
		{"postgresql://u:p@db:5432/inst?sslmode=disable", "pgx5://u:p@db:5432/inst?sslmode=disable"},
		{"pgx5://u:p@db/inst", "pgx5://u:p@db/inst"},
		{"host=db user=u", "host=db user=u"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, migration.ConvertToPgx5DSN(tt.in))
	}
}
