package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xavierca1/ligue-leads/internal/entity"
)

// LeadCache é um cache-aside na frente do repositório para leituras por id.
// Update e Delete invalidam a chave; os demais métodos passam direto.
type LeadCache struct {
	entity.LeadRepositoryInterface

	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewLeadCache(repo entity.LeadRepositoryInterface, rdb redis.Cmdable, ttl time.Duration) *LeadCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LeadCache{
		LeadRepositoryInterface: repo,
		rdb:                     rdb,
		ttl:                     ttl,
		prefix:                  "leads:id:",
	}
}

func (c *LeadCache) key(id string) string {
	return c.prefix + id
}

func (c *LeadCache) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	raw, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	switch {
	case err == nil:
		var lead entity.Lead
		if jerr := json.Unmarshal(raw, &lead); jerr == nil {
			return &lead, nil
		}
		log.Printf("⚠️ [CACHE] Entrada corrompida para %s, descartando", id)
	case !errors.Is(err, redis.Nil):
		log.Printf("⚠️ [CACHE] Falha ao ler %s: %v", id, err)
	}

	lead, err := c.LeadRepositoryInterface.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if body, jerr := json.Marshal(lead); jerr == nil {
		if serr := c.rdb.Set(ctx, c.key(id), body, c.ttl).Err(); serr != nil {
			log.Printf("⚠️ [CACHE] Falha ao gravar %s: %v", id, serr)
		}
	}
	return lead, nil
}

func (c *LeadCache) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	lead, err := c.LeadRepositoryInterface.Update(ctx, id, patch)
	c.invalidate(ctx, id)
	return lead, err
}

func (c *LeadCache) Delete(ctx context.Context, id string) error {
	err := c.LeadRepositoryInterface.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *LeadCache) invalidate(ctx context.Context, id string) {
	if err := c.rdb.Del(ctx, c.key(id)).Err(); err != nil {
		log.Printf("⚠️ [CACHE] Falha ao invalidar %s: %v", id, err)
	}
}
