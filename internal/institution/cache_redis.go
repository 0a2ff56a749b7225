// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package institution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/osg-htc/institutions/internal/institution/metrics"
	"github.com/osg-htc/institutions/internal/platform/constants"
	"github.com/osg-htc/institutions/internal/platform/redis"
)

// JSONCache is the subset of [redis.Cache] the list cache needs.
type JSONCache interface {
	GetJSON(context context.Context, key string, dest any) error
	SetJSON(context context.Context, key string, value any, ttl time.Duration) error
	Delete(context context.Context, keys ...string) error
	Counter(context context.Context, key string) (int64, error)
	Increment(context context.Context, key string) (int64, error)
}

// cachedRepository serves ListValid from a shared cache.
//
// Entries are keyed by a generation counter that every committed write bumps. A
// read that started before a commit can only fill the superseded generation, so
// it never hides that write from later reads. Cache failures degrade to the
// underlying repository; they never fail a request.
type cachedRepository struct {
	Repository
	cache   JSONCache
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewCachedRepository decorates repo with a read-through list cache.
func NewCachedRepository(repo Repository, cache JSONCache, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) Repository {
	return &cachedRepository{Repository: repo, cache: cache, ttl: ttl, logger: logger, metrics: m}
}

func listKey(generation int64) string {
	return fmt.Sprintf("%s:%d", constants.RedisKeyValidInstitutions, generation)
}

func (repository *cachedRepository) ListValid(context context.Context) ([]Institution, error) {

	// The generation must be read before the store.
	generation, err := repository.cache.Counter(context, constants.RedisKeyValidInstitutionsGeneration)
	if err != nil {
		repository.metrics.IncrementListCache("error")
		repository.logger.WarnContext(context, "list_cache_read_failed", slog.Any("error", err))
		return repository.Repository.ListValid(context)
	}

	key := listKey(generation)
	var cached []Institution
	err = repository.cache.GetJSON(context, key, &cached)
	switch {
	case err == nil:
		repository.metrics.IncrementListCache("hit")
		return cached, nil
	case errors.Is(err, redis.ErrCacheMiss):
		repository.metrics.IncrementListCache("miss")
	default:
		repository.metrics.IncrementListCache("error")
		repository.logger.WarnContext(context, "list_cache_read_failed", slog.Any("error", err))
	}

	institutions, err := repository.Repository.ListValid(context)
	if err != nil {
		return nil, err
	}

	if err := repository.cache.SetJSON(context, key, institutions, repository.ttl); err != nil {
		repository.logger.WarnContext(context, "list_cache_write_failed", slog.Any("error", err))
	}
	return institutions, nil
}

func (repository *cachedRepository) WithinTx(context context.Context, fn func(tx Tx) error) error {
	if err := repository.Repository.WithinTx(context, fn); err != nil {
		return err
	}

	generation, err := repository.cache.Increment(context, constants.RedisKeyValidInstitutionsGeneration)
	if err != nil {
		repository.logger.WarnContext(context, "list_cache_invalidate_failed", slog.Any("error", err))
		return nil
	}

	// Later reads use the new generation, so the previous entry is dead.
	if err := repository.cache.Delete(context, listKey(generation-1)); err != nil {
		repository.logger.WarnContext(context, "list_cache_invalidate_failed", slog.Any("error", err))
	}
	return nil
}
