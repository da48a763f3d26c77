package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// INCR e PEXPIRE na mesma chamada para a janela não ficar sem TTL.
var incrementScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if count == 1 or ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisCounter compartilha as janelas entre instâncias da API.
type RedisCounter struct {
	rdb    redis.Scripter
	prefix string
	now    func() time.Time
}

func NewRedisCounter(rdb redis.Scripter, prefix string) *RedisCounter {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisCounter{rdb: rdb, prefix: prefix, now: time.Now}
}

func (c *RedisCounter) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	res, err := incrementScript.Run(ctx, c.rdb, []string{c.prefix + ":" + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis incr: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("redis incr: resposta inesperada %v", res)
	}

	return int(res[0]), c.now().Add(time.Duration(res[1]) * time.Millisecond), nil
}
