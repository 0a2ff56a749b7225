// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
Package objectstore reads immutable files from an S3-compatible bucket.

Reference datasets (IPEDS, Carnegie) are deployment artifacts. Production
images pull them from object storage so a dataset refresh does not require
an image rebuild; local development keeps reading plain files.

Locations use the s3://bucket/key form.
*/
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Scheme prefixes every object location handled by this package.
const Scheme = "s3://"

// ErrObjectNotFound is returned when the bucket has no object at the requested key.
var ErrObjectNotFound = errors.New("objectstore: object not found")

// Config holds explicit construction parameters.
type Config struct {
	Region    string
	Endpoint  string // optional; enables a custom endpoint such as MinIO
	PathStyle bool
}

// Store opens objects from any bucket reachable with one set of credentials.
type Store struct {
	client *s3.Client
}

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, cfg Config, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := append([]func(*config.LoadOptions) error{config.WithRegion(region)}, optFns...)
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client}, nil
}

// NewFromClient wraps a preconfigured S3 client.
func NewFromClient(client *s3.Client) *Store {
	return &Store{client: client}
}

// IsLocation reports whether location names an object rather than a local file.
func IsLocation(location string) bool {
	return strings.HasPrefix(location, Scheme)
}

// ParseLocation splits s3://bucket/key into its bucket and key.
func ParseLocation(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, Scheme)
	if !ok {
		return "", "", fmt.Errorf("objectstore: %q is not an %s location", location, Scheme)
	}

	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("objectstore: %q must name both bucket and key", location)
	}
	return bucket, key, nil
}

// Open streams the object at location. The caller must close the reader.
func (s *Store) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, location)
		}
		return nil, fmt.Errorf("objectstore: get %s: %w", location, err)
	}
	return out.Body, nil
}
