package sweeper

import (
	"context"
	"log"
	"time"

	"amora-service/internal/observability"
)

// ExpiredDeleter is the slice of the message store the sweeper needs.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically purges messages whose self-destruct deadline has
// elapsed. Deletion lag is bounded by the interval, not instantaneous.
type Sweeper struct {
	messages ExpiredDeleter
	interval time.Duration
}

// New constructs a Sweeper with the given tick interval.
func New(messages ExpiredDeleter, interval time.Duration) *Sweeper {
	return &Sweeper{messages: messages, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval. A failed
// sweep is logged and never stops subsequent ticks.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("expiry sweeper started interval=%s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("expiry sweeper stopped")
			return
		case <-ticker.C:
			count, err := s.messages.DeleteExpired(ctx)
			if err != nil {
				observability.IncSweepFailure()
				log.Printf("expiry sweep failed: %v", err)
				continue
			}
			if count > 0 {
				observability.AddExpiredMessagesDeleted(count)
				log.Printf("expiry sweep removed %d messages", count)
			}
		}
	}
}
