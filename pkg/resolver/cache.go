package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/disparu-project/disparu-engine/pkg/astro"
)

// cacheTTL is how long resolved positions are kept. Catalog objects do not
// move, but entries still expire so a bad upstream answer cannot stick
// forever.
const cacheTTL = 7 * 24 * time.Hour

// Cached wraps a Resolver with a Redis cache. Cache failures fall through to
// the inner resolver; only resolution results are cached, never errors.
type Cached struct {
	inner  Resolver
	client *redis.Client
	logger *zap.Logger
}

// NewCached creates a caching resolver. A nil client disables caching and
// returns the inner resolver unchanged.
func NewCached(inner Resolver, client *redis.Client, logger *zap.Logger) Resolver {
	if client == nil {
		return inner
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{inner: inner, client: client, logger: logger}
}

var _ Resolver = (*Cached)(nil)

// Resolve returns the cached position for name, or resolves and caches it.
func (c *Cached) Resolve(ctx context.Context, name string) (astro.Position, error) {
	key := "disparu:resolver:" + name

	var pos astro.Position
	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if _, scanErr := fmt.Sscanf(val, "%f,%f", &pos.RA, &pos.Dec); scanErr == nil {
			return pos, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("Resolver cache read failed", zap.Error(err))
	}

	pos, err = c.inner.Resolve(ctx, name)
	if err != nil {
		return astro.Position{}, err
	}

	if err := c.client.Set(ctx, key, fmt.Sprintf("%.8f,%.8f", pos.RA, pos.Dec), cacheTTL).Err(); err != nil {
		c.logger.Warn("Resolver cache write failed", zap.Error(err))
	}
	return pos, nil
}
