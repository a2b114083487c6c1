// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/librarium/internal/clock"
	"github.com/mrlokans/librarium/internal/config"
	"github.com/mrlokans/librarium/internal/entities"
)

// OverdueLister returns loans still out past their due date.
type OverdueLister interface {
	ListOverdueLoans(before time.Time) ([]entities.Loan, error)
}

// OverdueSweep periodically scans for BORROWED loans past their due date
// and logs them. The sweep never mutates loan state; overdue is a derived
// condition, not a status transition.
type OverdueSweep struct {
	loans OverdueLister
	clock clock.Clock
	cfg   config.Scheduler

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewOverdueSweep creates a sweep instance.
func NewOverdueSweep(loans OverdueLister, clk clock.Clock, cfg config.Scheduler) *OverdueSweep {
	return &OverdueSweep{
		loans: loans,
		clock: clk,
		cfg:   cfg,
		cron:  cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the sweep if enabled.
func (s *OverdueSweep) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.OverdueSweepEnabled {
		log.Printf("Overdue sweep: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.OverdueSweepSchedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.OverdueSweepSchedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Overdue sweep: started with schedule '%s'", s.cfg.OverdueSweepSchedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the sweep, waiting for a running sweep to finish.
func (s *OverdueSweep) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false
	log.Printf("Overdue sweep: stopped")
}

// RunNow executes one sweep immediately, outside the schedule.
func (s *OverdueSweep) RunNow() {
	s.runSweep()
}

func (s *OverdueSweep) runSweep() {
	today := clock.Today(s.clock)
	overdue, err := s.loans.ListOverdueLoans(today)
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return
	}

	if len(overdue) == 0 {
		log.Printf("Overdue sweep: no overdue loans")
		return
	}

	log.Printf("Overdue sweep: %d loan(s) overdue", len(overdue))
	for _, loan := range overdue {
		log.Printf("  loan %s: book %q due %s (user %d)",
			loan.Reference, loan.Book.Title, loan.DueDate.Format("2006-01-02"), loan.UserID)
	}
}
