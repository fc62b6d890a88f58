package aicache

import (
	"context"
	"log"
	"time"
)

// Sweeper deletes expired durable rows on a fixed interval.
type Sweeper struct {
	Cache    *Cache
	Interval time.Duration
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.Cache.Sweep(ctx)
	if err != nil {
		log.Printf("aicache: sweep failed: %v\n", err)
		return
	}
	if n > 0 {
		log.Printf("aicache: sweep removed %d expired rows\n", n)
	}
}
