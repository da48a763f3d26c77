package ratelimit

import (
	"context"
	"log"
	"math"
	"time"
)

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter em segundos, arredondado para cima. Só faz sentido quando Allowed=false.
	RetryAfter int
}

type Limiter struct {
	Counter Counter
	now     func() time.Time
}

func NewLimiter(counter Counter) *Limiter {
	return &Limiter{Counter: counter, now: time.Now}
}

// Allow conta a requisição na janela da política para o IP.
// Se o contador falhar a requisição passa (fail open) e o erro é logado.
func (l *Limiter) Allow(ctx context.Context, p Policy, ip string) Decision {
	count, resetAt, err := l.Counter.Increment(ctx, p.Name+":"+ip, p.Window)
	if err != nil {
		log.Printf("⚠️ [RATELIMIT] Falha no contador (%s, ip=%s): %v", p.Name, ip, err)
		return Decision{Allowed: true, Limit: p.Max, Remaining: p.Max}
	}

	d := Decision{
		Allowed:   count <= p.Max,
		Limit:     p.Max,
		Remaining: max(p.Max-count, 0),
		ResetAt:   resetAt,
	}
	if !d.Allowed {
		d.RetryAfter = secondsUntil(l.now(), resetAt)
	}
	return d
}

func secondsUntil(now, t time.Time) int {
	s := int(math.Ceil(t.Sub(now).Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
