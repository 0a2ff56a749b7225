// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package reference

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/osg-htc/institutions/pkg/convert"
)

// Locations names where each dataset lives. A file path or s3://bucket/key.
// An empty Carnegie location disables that classification year.
type Locations struct {
	IPEDS        string
	Carnegie2021 string
	Carnegie2025 string
}

// dataset is a lazily loaded, read-only lookup table.
// A failed load is not cached, so a transient object-store error heals on the next lookup.
type dataset[T any] struct {
	mu     sync.Mutex
	rows   map[string]T
	loaded bool
}

func (d *dataset[T]) get(ctx context.Context, load func(context.Context) (map[string]T, error)) (map[string]T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		return d.rows, nil
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}

	d.rows, d.loaded = rows, true
	return rows, nil
}

func preloaded[T any](rows map[string]T) *dataset[T] {
	keyed := make(map[string]T, len(rows))
	for unitID, row := range rows {
		keyed[convert.Key(unitID)] = row
	}
	return &dataset[T]{rows: keyed, loaded: true}
}

// Catalog serves unit-id lookups across the reference datasets.
//
// # Concurrency
//
// Safe for concurrent use. Each dataset is parsed once, on first access,
// and never mutated afterwards.
type Catalog struct {
	source    Opener
	locations Locations
	logger    *slog.Logger

	ipeds        *dataset[IPEDSRecord]
	carnegie2021 *dataset[Classification]
	carnegie2025 *dataset[Classification]
}

// NewCatalog creates a Catalog that loads datasets from source on demand.
func NewCatalog(source Opener, locations Locations, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		source:       source,
		locations:    locations,
		logger:       logger,
		ipeds:        &dataset[IPEDSRecord]{},
		carnegie2021: &dataset[Classification]{},
		carnegie2025: &dataset[Classification]{},
	}
}

// NewStaticCatalog creates a Catalog over already parsed tables.
func NewStaticCatalog(ipeds map[string]IPEDSRecord, carnegie2021, carnegie2025 map[string]Classification) *Catalog {
	return &Catalog{
		logger:       slog.Default(),
		ipeds:        preloaded(ipeds),
		carnegie2021: preloaded(carnegie2021),
		carnegie2025: preloaded(carnegie2025),
	}
}

// IPEDS returns the IPEDS record for unitID. A miss is reported as ok=false, not an error.
// Lookups use the same key normalisation as the parsers, so "012345" finds "12345".
func (c *Catalog) IPEDS(ctx context.Context, unitID string) (IPEDSRecord, bool, error) {
	rows, err := c.ipeds.get(ctx, c.loadIPEDS)
	if err != nil {
		return IPEDSRecord{}, false, err
	}
	record, ok := rows[convert.Key(unitID)]
	return record, ok, nil
}

// Carnegie2021 returns the 2021 basic classification for unitID.
func (c *Catalog) Carnegie2021(ctx context.Context, unitID string) (Classification, bool, error) {
	return c.classification(ctx, c.carnegie2021, c.locations.Carnegie2021, Carnegie2021, unitID)
}

// Carnegie2025 returns the 2025 Research Activity Designation for unitID.
func (c *Catalog) Carnegie2025(ctx context.Context, unitID string) (Classification, bool, error) {
	return c.classification(ctx, c.carnegie2025, c.locations.Carnegie2025, Carnegie2025, unitID)
}

// Preload parses every configured dataset now instead of on first lookup.
func (c *Catalog) Preload(ctx context.Context) error {
	if _, _, err := c.IPEDS(ctx, ""); err != nil {
		return err
	}
	if _, _, err := c.Carnegie2021(ctx, ""); err != nil {
		return err
	}
	_, _, err := c.Carnegie2025(ctx, "")
	return err
}

func (c *Catalog) classification(
	ctx context.Context,
	table *dataset[Classification],
	location string,
	layout CarnegieLayout,
	unitID string,
) (Classification, bool, error) {
	rows, err := table.get(ctx, func(ctx context.Context) (map[string]Classification, error) {
		if location == "" {
			return map[string]Classification{}, nil
		}
		return c.loadCarnegie(ctx, location, layout)
	})
	if err != nil {
		return Classification{}, false, err
	}
	classification, ok := rows[convert.Key(unitID)]
	return classification, ok, nil
}

func (c *Catalog) loadIPEDS(ctx context.Context) (map[string]IPEDSRecord, error) {
	if c.source == nil || c.locations.IPEDS == "" {
		return nil, fmt.Errorf("reference: no IPEDS dataset configured")
	}

	start := time.Now()
	reader, err := c.source.Open(ctx, c.locations.IPEDS)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	records, err := ParseIPEDS(reader)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "reference_dataset_loaded",
		slog.String("dataset", "ipeds"),
		slog.String("location", c.locations.IPEDS),
		slog.Int("rows", len(records)),
		slog.Duration("took", time.Since(start)),
	)
	return records, nil
}

func (c *Catalog) loadCarnegie(ctx context.Context, location string, layout CarnegieLayout) (map[string]Classification, error) {
	if c.source == nil {
		return nil, fmt.Errorf("reference: no source for %s", location)
	}

	start := time.Now()
	reader, err := c.source.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	classifications, err := ParseCarnegie(reader, location, layout)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "reference_dataset_loaded",
		slog.String("dataset", layout.ValueColumn),
		slog.String("location", location),
		slog.Int("rows", len(classifications)),
		slog.Duration("took", time.Since(start)),
	)
	return classifications, nil
}
