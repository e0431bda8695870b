package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/frostline-games/support-agent/internal/domain"
)

const cacheTTL = 10 * time.Minute

// CachedKB wraps a KnowledgeBase with a per-category Redis cache. Cache
// failures are logged and fall through to the underlying source.
type CachedKB struct {
	inner  KnowledgeBase
	client *redis.Client
	logger *zap.Logger
}

// NewCachedKB builds the caching layer around inner.
func NewCachedKB(inner KnowledgeBase, client *redis.Client, logger *zap.Logger) *CachedKB {
	return &CachedKB{inner: inner, client: client, logger: logger}
}

func cacheKey(category domain.Category) string {
	return fmt.Sprintf("kb:evidence:%s", category)
}

// Search serves from Redis when possible, otherwise queries the inner source
// and stores the result.
func (c *CachedKB) Search(ctx context.Context, category domain.Category, query string) (domain.EvidencePack, error) {
	key := cacheKey(category)
	if raw, err := c.client.Get(ctx, key).Result(); err == nil {
		var pack domain.EvidencePack
		if err := json.Unmarshal([]byte(raw), &pack); err == nil {
			return pack, nil
		}
		c.logger.Warn("discarding corrupt knowledge cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("knowledge cache read failed", zap.Error(err))
	}

	pack, err := c.inner.Search(ctx, category, query)
	if err != nil {
		return domain.EvidencePack{}, err
	}

	if encoded, err := json.Marshal(pack); err == nil {
		if err := c.client.Set(ctx, key, encoded, cacheTTL).Err(); err != nil {
			c.logger.Warn("knowledge cache write failed", zap.Error(err))
		}
	}
	return pack, nil
}
