package store

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/multilogin/internal/cache"
	"github.com/dropDatabas3/multilogin/internal/domain/repository"
	"github.com/dropDatabas3/multilogin/internal/domain/types"
	"github.com/dropDatabas3/multilogin/internal/metrics"
	"github.com/dropDatabas3/multilogin/internal/observability/logger"
)

// CachedBlocks es un read-through cache sobre un BlockRepository.
// Solo Get pasa por el cache; las escrituras invalidan la entrada.
type CachedBlocks struct {
	next  repository.BlockRepository
	cache cache.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedBlocks envuelve next. Con c nil retorna next sin cache.
func NewCachedBlocks(next repository.BlockRepository, c cache.Client, ttl time.Duration) repository.BlockRepository {
	if c == nil {
		return next
	}
	return &CachedBlocks{next: next, cache: c, ttl: ttl}
}

func blockKey(id string) string { return "block:" + id }

// cachedBlock es la forma serializada en el cache.
type cachedBlock struct {
	ID        string              `json:"id"`
	Plugin    string              `json:"plugin"`
	Region    string              `json:"region"`
	Weight    int                 `json:"weight"`
	Settings  types.BlockSettings `json:"settings"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func (c *CachedBlocks) Create(ctx context.Context, b *repository.Block) error {
	return c.next.Create(ctx, b)
}

func (c *CachedBlocks) Get(ctx context.Context, id string) (*repository.Block, error) {
	key := blockKey(id)
	if raw, err := c.cache.Get(ctx, key); err == nil {
		var cb cachedBlock
		if json.Unmarshal(raw, &cb) == nil {
			metrics.SettingsCacheLookups.WithLabelValues("hit").Inc()
			b := repository.Block(cb)
			return &b, nil
		}
	}
	metrics.SettingsCacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		b, err := c.next.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(cachedBlock(*b)); err == nil {
			if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
				logger.From(ctx).Warn("block cache set failed", logger.BlockID(id), logger.Err(err))
			}
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	// copia: los llamadores concurrentes no deben compartir el mapa de settings
	b := *v.(*repository.Block)
	b.Settings = b.Settings.Clone()
	return &b, nil
}

func (c *CachedBlocks) List(ctx context.Context) ([]repository.Block, error) {
	return c.next.List(ctx)
}

func (c *CachedBlocks) UpdateSettings(ctx context.Context, id string, s types.BlockSettings) error {
	if err := c.next.UpdateSettings(ctx, id, s); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedBlocks) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachedBlocks) invalidate(ctx context.Context, id string) {
	if err := c.cache.Delete(ctx, blockKey(id)); err != nil {
		logger.From(ctx).Warn("block cache invalidate failed", logger.BlockID(id), logger.Err(err))
	}
}
