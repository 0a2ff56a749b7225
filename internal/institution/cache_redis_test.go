// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osg-htc/institutions/internal/institution"
	"github.com/osg-htc/institutions/internal/institution/metrics"
	"github.com/osg-htc/institutions/internal/platform/redis"
)

// fakeCache is a map-backed JSON cache that can be switched into a failing mode.
type fakeCache struct {
	mu         sync.Mutex
	entries    map[string][]byte
	counters   map[string]int64
	broken     bool
	increments int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte), counters: make(map[string]int64)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return errors.New("connection refused")
	}
	raw, ok := c.entries[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return errors.New("connection refused")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return errors.New("connection refused")
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *fakeCache) Counter(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return 0, errors.New("connection refused")
	}
	return c.counters[key], nil
}

func (c *fakeCache) Increment(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.increments++
	if c.broken {
		return 0, errors.New("connection refused")
	}
	c.counters[key]++
	return c.counters[key], nil
}

// stallingRepository parks the next ListValid after the store has answered,
// until the test releases it.
type stallingRepository struct {
	institution.Repository
	stall   bool
	read    chan struct{}
	release chan struct{}
}

func (repo *stallingRepository) ListValid(ctx context.Context) ([]institution.Institution, error) {
	institutions, err := repo.Repository.ListValid(ctx)
	if repo.stall {
		repo.stall = false
		repo.read <- struct{}{}
		<-repo.release
	}
	return institutions, err
}

/*
TestCachedRepository covers hits, invalidation on commit and degraded operation.
*/
func TestCachedRepository(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	cache := newFakeCache()

	repo := institution.NewCachedRepository(institution.NewMemoryStore(), cache, time.Minute, discardLogger(), m)
	service := institution.NewService(repo,
		institution.NewReconciler(testCatalog()),
		institution.NewPublicIDGenerator(12, 1000),
		discardLogger(),
	)

	_, _, err := service.Create(ctx, institution.Fields{
		Name:        "Cached",
		Identifiers: institution.DesiredIdentifiers{UnitID: unitMadison},
	}, testAuthor)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.increments)

	first, err := service.ListValid(ctx)
	require.NoError(t, err)
	second, err := service.ListValid(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListCache.WithLabelValues("hit")))
	require.Len(t, second, 1)
	assert.Equal(t, first[0].PublicID, second[0].PublicID)
	assert.Equal(t, unitMadison, second[0].IdentifierValue(institution.KindUnitID))

	t.Run("write_invalidates", func(t *testing.T) {
		require.NoError(t, service.Invalidate(ctx, first[0].ShortID(), testAuthor))

		valid, err := service.ListValid(ctx)
		require.NoError(t, err)
		assert.Empty(t, valid)
	})

	t.Run("failed_write_keeps_entry", func(t *testing.T) {
		increments := cache.increments
		_, _, err := service.Create(ctx, institution.Fields{Name: ""}, testAuthor)
		require.Error(t, err)
		assert.Equal(t, increments, cache.increments)
	})

	t.Run("broken_cache_falls_through", func(t *testing.T) {
		cache.broken = true
		t.Cleanup(func() { cache.broken = false })

		_, _, err := service.Create(ctx, institution.Fields{Name: "Degraded"}, testAuthor)
		require.NoError(t, err)

		valid, err := service.ListValid(ctx)
		require.NoError(t, err)
		assert.Len(t, valid, 1)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ListCache.WithLabelValues("error")))
	})
}

/*
TestCachedRepository_ReadRacingWrite checks that a list read started before a
committed write cannot leave the pre-write list behind for later readers.
*/
func TestCachedRepository_ReadRacingWrite(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	stalling := &stallingRepository{
		Repository: institution.NewMemoryStore(),
		read:       make(chan struct{}),
		release:    make(chan struct{}),
	}

	m := metrics.New(prometheus.NewRegistry())
	repo := institution.NewCachedRepository(stalling, cache, time.Minute, discardLogger(), m)
	service := institution.NewService(repo,
		institution.NewReconciler(testCatalog()),
		institution.NewPublicIDGenerator(12, 1000),
		discardLogger(),
	)

	created, _, err := service.Create(ctx, institution.Fields{
		Name:        "Test U",
		Identifiers: institution.DesiredIdentifiers{RORID: rorMadison},
	}, testAuthor)
	require.NoError(t, err)

	stalling.stall = true
	type outcome struct {
		institutions []institution.Institution
		err          error
	}
	done := make(chan outcome, 1)
	go func() {
		institutions, err := service.ListValid(ctx)
		done <- outcome{institutions, err}
	}()

	<-stalling.read
	require.NoError(t, service.Invalidate(ctx, created.ShortID(), testAuthor))
	close(stalling.release)

	slow := <-done
	require.NoError(t, slow.err)
	assert.Len(t, slow.institutions, 1, "the slow read observed the store before the write")

	valid, err := service.ListValid(ctx)
	require.NoError(t, err)
	assert.Empty(t, valid)

	again, err := service.ListValid(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ListCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListCache.WithLabelValues("hit")))
}
