package buster

import (
	"context"

	"github.com/robfig/cron/v3"

	"pixgate/logging"
)

// Scheduler runs a buster.Config's eviction pass once a day at 01:00,
// the hour picturium's own deployments settled on to stay clear of
// traffic peaks.
type Scheduler struct {
	cron *cron.Cron
	id   cron.EntryID
}

// NewDailyScheduler builds a scheduler that hasn't started yet; call
// Start to begin running.
func NewDailyScheduler(cfg Config, log *logging.Logger) (*Scheduler, error) {
	c := cron.New()
	id, err := c.AddFunc("0 1 * * *", func() {
		if err := cfg.Run(context.Background(), log); err != nil && log != nil {
			log.ErrorWithFields("cache eviction failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, id: id}, nil
}

// Start begins the cron goroutine; it does not block.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron goroutine and waits for any in-flight run to
// finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
