package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/database/memory"
)

// Redis fora do ar não pode derrubar a leitura.
func TestFindByIDFallsBackWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	repo := memory.NewLeadRepository()
	ctx := context.Background()
	lead := &entity.Lead{Name: "A", Email: "a@example.com"}
	require.NoError(t, repo.Insert(ctx, lead))

	c := NewLeadCache(repo, rdb, time.Minute)

	got, err := c.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = c.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)

	name := "B"
	updated, err := c.Update(ctx, lead.ID, entity.LeadPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
}

// Roda só com um Redis de verdade (REDIS_URL).
func TestLeadCacheInvalidatesOnUpdate(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL não definida")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	repo := memory.NewLeadRepository()
	ctx := context.Background()
	lead := &entity.Lead{Name: "A", Email: "a@example.com"}
	require.NoError(t, repo.Insert(ctx, lead))

	c := NewLeadCache(repo, rdb, time.Minute)
	defer rdb.Del(ctx, c.key(lead.ID))

	_, err = c.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	exists, err := rdb.Exists(ctx, c.key(lead.ID)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	name := "B"
	_, err = c.Update(ctx, lead.ID, entity.LeadPatch{Name: &name})
	require.NoError(t, err)

	got, err := c.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	require.NoError(t, c.Delete(ctx, lead.ID))
	_, err = c.FindByID(ctx, lead.ID)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}
