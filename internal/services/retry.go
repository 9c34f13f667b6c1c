package services

import (
	"context"
	"errors"
	"log"
	"time"
)

// retryOnConflict reruns fn a bounded number of times when it loses an
// optimistic-lock race, backing off linearly between attempts. Any other
// error returns immediately.
func retryOnConflict(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff * time.Duration(attempt)):
			}
			log.Printf("[LEDGER] Retrying after conflict (attempt %d)", attempt+1)
		}
		err = fn()
		if !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}
