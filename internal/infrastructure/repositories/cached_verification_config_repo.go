package repositories

import (
	"context"
	"time"

	"go.uber.org/zap"
	"observer-console.backend/internal/domain/entities"
	domainRepos "observer-console.backend/internal/domain/repositories"
	"observer-console.backend/pkg/logger"
	"observer-console.backend/pkg/redis"
)

const activeConfigCacheKey = "active"

// CachedVerificationConfigRepository serves the active config from Redis for a short TTL.
// Cache failures are logged and the read falls through to the wrapped repository.
type CachedVerificationConfigRepository struct {
	next  domainRepos.VerificationConfigRepository
	cache *redis.JSONCache
	ttl   time.Duration
}

// NewCachedVerificationConfigRepository wraps next with cache
func NewCachedVerificationConfigRepository(next domainRepos.VerificationConfigRepository, cache *redis.JSONCache, ttl time.Duration) *CachedVerificationConfigRepository {
	return &CachedVerificationConfigRepository{next: next, cache: cache, ttl: ttl}
}

// GetActive returns the cached config or loads and caches it
func (r *CachedVerificationConfigRepository) GetActive(ctx context.Context) (*entities.VerificationConfig, error) {
	if r.ttl <= 0 || !r.cache.Enabled() {
		return r.next.GetActive(ctx)
	}

	var cached entities.VerificationConfig
	found, err := r.cache.Get(ctx, activeConfigCacheKey, &cached)
	if err != nil {
		logger.Warn(ctx, "Verification config cache read failed", zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	cfg, err := r.next.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, activeConfigCacheKey, cfg, r.ttl); err != nil {
		logger.Warn(ctx, "Verification config cache write failed", zap.Error(err))
	}
	return cfg, nil
}

// Invalidate drops the cached active config so the next read goes to the database
func (r *CachedVerificationConfigRepository) Invalidate(ctx context.Context) error {
	return r.cache.Delete(ctx, activeConfigCacheKey)
}
