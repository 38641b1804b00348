// Package scheduler provides the periodic trigger that re-runs tracking for
// every client at a fixed interval. It only invokes the coordinator's entry
// point; all overlap protection lives in the coordinator itself.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/shoprank/backend/internal/domain"
)

// Trigger is the coordinator entry point the scheduler drives.
type Trigger interface {
	RunAll(ctx context.Context) ([]domain.RunReport, error)
}

// Scheduler fires RunAll immediately and then once per interval.
type Scheduler struct {
	trigger  Trigger
	interval time.Duration
}

// New creates a scheduler with the given interval.
func New(trigger Trigger, interval time.Duration) *Scheduler {
	return &Scheduler{trigger: trigger, interval: interval}
}

// Start blocks, running the trigger loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("[SCHED] started, interval %s", s.interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[SCHED] stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	started := time.Now()
	reports, err := s.trigger.RunAll(ctx)
	if err != nil {
		log.Printf("[SCHED] run-all failed: %v", err)
		return
	}

	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			failed++
			log.Printf("[SCHED] client %d run failed: %v", report.ClientID, report.Err)
		}
	}
	log.Printf("[SCHED] run-all done: %d clients, %d failed, %s",
		len(reports), failed, time.Since(started).Round(time.Second))
}
