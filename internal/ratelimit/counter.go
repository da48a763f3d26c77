package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Counter incrementa o contador de uma janela fixa e devolve o total e quando a janela fecha.
// A janela começa no primeiro incremento da chave.
type Counter interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryCounter guarda as janelas em memória, por processo.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// NewMemoryCounterWithClock é usado nos testes para controlar o relógio.
func NewMemoryCounterWithClock(now func() time.Time) *MemoryCounter {
	c := NewMemoryCounter()
	c.now = now
	return c
}

func (c *MemoryCounter) Increment(_ context.Context, key string, d time.Duration) (int, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w, ok := c.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		c.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt, nil
}

// Sweep remove janelas já fechadas e devolve quantas saíram.
func (c *MemoryCounter) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, w := range c.windows {
		if !now.Before(w.resetAt) {
			delete(c.windows, k)
			removed++
		}
	}
	return removed
}

func (c *MemoryCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.windows)
}
