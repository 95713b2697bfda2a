package handler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/straye-as/crm-core/internal/cache"
	"github.com/straye-as/crm-core/internal/domain"
	"go.uber.org/zap"
)

const pipelineCachePrefix = "pipelines:"

// PipelineCache is the read-through cache for the pipelines-with-stages
// listing. Cache failures are logged and fall through to the loader.
type PipelineCache struct {
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewPipelineCache(c cache.Cache, ttl time.Duration, logger *zap.Logger) *PipelineCache {
	if c == nil {
		c = cache.Nop{}
	}
	return &PipelineCache{cache: c, ttl: ttl, logger: logger}
}

func listKey(activeOnly bool) string {
	return pipelineCachePrefix + "list:active=" + strconv.FormatBool(activeOnly)
}

func (c *PipelineCache) list(ctx context.Context, activeOnly bool, load func() ([]domain.PipelineDTO, error)) ([]domain.PipelineDTO, error) {
	key := listKey(activeOnly)

	raw, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("pipeline cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		var cached []domain.PipelineDTO
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("discarding undecodable pipeline cache entry", zap.String("key", key))
	}

	pipelines, err := load()
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(pipelines); err == nil {
		if err := c.cache.Set(ctx, key, encoded, c.ttl); err != nil {
			c.logger.Warn("pipeline cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return pipelines, nil
}

// invalidate drops every cached pipeline listing
func (c *PipelineCache) invalidate(ctx context.Context) {
	if err := c.cache.DeletePrefix(ctx, pipelineCachePrefix); err != nil {
		c.logger.Warn("pipeline cache invalidation failed", zap.Error(err))
	}
}
