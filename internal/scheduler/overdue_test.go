package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarium/internal/clock"
	"github.com/mrlokans/librarium/internal/config"
	"github.com/mrlokans/librarium/internal/entities"
)

type stubLister struct {
	loans     []entities.Loan
	gotBefore time.Time
	calls     int
}

func (s *stubLister) ListOverdueLoans(before time.Time) ([]entities.Loan, error) {
	s.gotBefore = before
	s.calls++
	return s.loans, nil
}

func TestRunNow(t *testing.T) {
	t.Run("queries with the current date", func(t *testing.T) {
		lister := &stubLister{loans: []entities.Loan{{Reference: "abc", UserID: 1}}}
		clk := clock.Fixed{Time: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)}
		sweep := NewOverdueSweep(lister, clk, config.Scheduler{})

		sweep.RunNow()

		assert.Equal(t, 1, lister.calls)
		assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), lister.gotBefore)
	})
}

func TestStart(t *testing.T) {
	t.Run("does nothing when disabled", func(t *testing.T) {
		lister := &stubLister{}
		sweep := NewOverdueSweep(lister, clock.System{}, config.Scheduler{OverdueSweepEnabled: false})

		require.NoError(t, sweep.Start(context.Background()))
		sweep.Stop()

		assert.Equal(t, 0, lister.calls)
	})

	t.Run("rejects an invalid schedule", func(t *testing.T) {
		sweep := NewOverdueSweep(&stubLister{}, clock.System{}, config.Scheduler{
			OverdueSweepEnabled:  true,
			OverdueSweepSchedule: "not a schedule",
		})

		err := sweep.Start(context.Background())
		assert.Error(t, err)
	})

	t.Run("start and stop are idempotent", func(t *testing.T) {
		sweep := NewOverdueSweep(&stubLister{}, clock.System{}, config.Scheduler{
			OverdueSweepEnabled:  true,
			OverdueSweepSchedule: "0 * * * *",
		})

		require.NoError(t, sweep.Start(context.Background()))
		require.NoError(t, sweep.Start(context.Background()))
		sweep.Stop()
		sweep.Stop()
	})
}
