package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/deikas123/thefoodbasket-sub001/internal/services"
	"github.com/robfig/cron/v3"
)

// ExpiryScheduler runs the expiration sweep on a recurring interval. The
// sweep itself is per-account atomic, so an overlapping manual run via
// the admin endpoint is safe.
type ExpiryScheduler struct {
	cron     *cron.Cron
	rewards  *services.RewardsService
	cronSpec string
}

func NewExpiryScheduler(rewards *services.RewardsService, cronSpec string) *ExpiryScheduler {
	return &ExpiryScheduler{
		cron:     cron.New(),
		rewards:  rewards,
		cronSpec: cronSpec,
	}
}

func (s *ExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cronSpec, s.runSweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("[SWEEP] Expiration scheduler started (%s)", s.cronSpec)
	return nil
}

func (s *ExpiryScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[SWEEP] Expiration scheduler stopped")
}

func (s *ExpiryScheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	expired, err := s.rewards.ExpireSweep(ctx, time.Now())
	if err != nil {
		log.Printf("[SWEEP] Scheduled sweep failed: %v", err)
		return
	}
	log.Printf("[SWEEP] Scheduled sweep completed, expired %d accounts", expired)
}
