package scheduler

import (
	"context"
	"log"
	"time"

	"pairvest/internal/service"
)

// Scheduler drives the background sweeps on a fixed interval. A cycle always
// runs maturity first, then pairing, then overdue flagging, never in
// parallel, so newly matured investments enter the same cycle's pairing pool.
type Scheduler struct {
	maturity *service.MaturityService
	pairing  *service.PairingService
	interval time.Duration
}

func New(maturity *service.MaturityService, pairing *service.PairingService, interval time.Duration) *Scheduler {
	return &Scheduler{maturity: maturity, pairing: pairing, interval: interval}
}

// Start runs sweep cycles until ctx is cancelled. The first cycle fires
// immediately so a restart does not delay overdue work by a full interval.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		s.RunCycle()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("[scheduler] stopped")
				return
			case <-ticker.C:
				s.RunCycle()
			}
		}
	}()
}

// RunCycle executes one full sweep cycle. Failures in one sweep do not stop
// the following ones.
func (s *Scheduler) RunCycle() {
	matured, err := s.maturity.RunMaturitySweep()
	if err != nil {
		log.Printf("[scheduler] maturity sweep: %v", err)
	}
	paired, err := s.pairing.RunPairingSweep()
	if err != nil {
		log.Printf("[scheduler] pairing sweep: %v", err)
	}
	flagged, err := s.pairing.RunOverdueSweep()
	if err != nil {
		log.Printf("[scheduler] overdue sweep: %v", err)
	}
	if matured > 0 || paired > 0 || flagged > 0 {
		log.Printf("[scheduler] cycle done: matured=%d paired=%d overdue=%d", matured, paired, flagged)
	}
}
