package worker

import (
	"context"
	"log"
	"time"
)

// Sweeper é quem guarda janelas de rate limit em memória.
type Sweeper interface {
	Sweep() int
}

// RateLimitSweepWorker remove periodicamente as janelas já fechadas do contador em memória.
type RateLimitSweepWorker struct {
	counter      Sweeper
	tickInterval time.Duration
	onSweep      func(removed int)
}

func NewRateLimitSweepWorker(counter Sweeper, interval time.Duration, onSweep func(int)) *RateLimitSweepWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RateLimitSweepWorker{
		counter:      counter,
		tickInterval: interval,
		onSweep:      onSweep,
	}
}

func (w *RateLimitSweepWorker) Start(ctx context.Context) {
	log.Printf("🕒 Rate limit sweeper iniciado (intervalo %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Rate limit sweeper encerrado")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *RateLimitSweepWorker) sweep() {
	removed := w.counter.Sweep()
	if removed == 0 {
		return
	}
	if w.onSweep != nil {
		w.onSweep(removed)
	}
	log.Printf("🧹 %d janela(s) de rate limit expiradas removidas", removed)
}
