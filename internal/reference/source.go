// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package reference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/osg-htc/institutions/internal/platform/objectstore"
)

// Opener opens a dataset by location.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Source routes s3:// locations to the object store and everything else to the local filesystem.
type Source struct {
	objects Opener
}

// NewSource creates a Source. objects may be nil when no dataset lives in object storage.
func NewSource(objects Opener) *Source {
	return &Source{objects: objects}
}

// Open implements [Opener].
func (s *Source) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if objectstore.IsLocation(location) {
		if s == nil || s.objects == nil {
			return nil, fmt.Errorf("reference: %s requires object storage, which is not configured", location)
		}
		return s.objects.Open(ctx, location)
	}

	file, err := os.Open(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reference: dataset %s not found: %w", location, err)
		}
		return nil, fmt.Errorf("reference: open %s: %w", location, err)
	}
	return file, nil
}
