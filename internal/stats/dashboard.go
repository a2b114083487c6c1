// Package stats computes the per-user dashboard by folding over shelf,
// session and goal state. Everything is recomputed on each call; the read
// volume is per-user and small, so there is no cache to invalidate.
package stats

import (
	"fmt"
	"time"

	"github.com/mrlokans/librarium/internal/clock"
	"github.com/mrlokans/librarium/internal/entities"
)

// MonthlyHistogramBuckets is the number of calendar months covered by the
// finished-books histogram: the current month and the five before it.
const MonthlyHistogramBuckets = 6

// RecentSessionLimit caps the recent-session list on the dashboard.
const RecentSessionLimit = 5

// ShelfReader provides the shelf counts and finished entries the dashboard
// needs.
type ShelfReader interface {
	CountForUser(userID uint) (int64, error)
	CountByStatus(userID uint, status entities.ReadingStatus) (int64, error)
	ListFinished(userID uint) ([]entities.ShelfEntry, error)
}

// SessionReader provides ordered session access.
type SessionReader interface {
	List(userID uint, from, to *time.Time) ([]entities.ReadingSession, error)
	Recent(userID uint, limit int) ([]entities.ReadingSession, error)
}

// GoalProvider materializes the user's goal row.
type GoalProvider interface {
	GetOrCreate(userID uint) (*entities.ReadingGoal, error)
}

// RecentSession is a session row denormalized with its book title.
type RecentSession struct {
	ID          uint   `json:"id"`
	BookID      uint   `json:"book_id"`
	BookTitle   string `json:"book_title"`
	SessionDate string `json:"session_date"`
	MinutesRead int    `json:"minutes_read"`
	PagesRead   int    `json:"pages_read"`
}

// MonthlyCount is one histogram bucket, keyed by calendar month.
type MonthlyCount struct {
	Month string `json:"month"` // "2006-01"
	Count int64  `json:"count"`
}

// Dashboard is the aggregate view for one user at one instant.
type Dashboard struct {
	TotalBooks    int64 `json:"total_books"`
	ToReadBooks   int64 `json:"to_read_books"`
	ReadingBooks  int64 `json:"reading_books"`
	FinishedBooks int64 `json:"finished_books"`

	BooksPerMonthGoal int `json:"books_per_month_goal"`
	MinutesPerDayGoal int `json:"minutes_per_day_goal"`

	MinutesReadToday     int `json:"minutes_read_today"`
	MinutesReadThisMonth int `json:"minutes_read_this_month"`

	RecentSessions  []RecentSession `json:"recent_sessions"`
	MonthlyFinished []MonthlyCount  `json:"monthly_finished"`
}

// Aggregator computes dashboards.
type Aggregator struct {
	shelf    ShelfReader
	sessions SessionReader
	goals    GoalProvider
	clock    clock.Clock
}

// NewAggregator creates a dashboard aggregator.
func NewAggregator(shelf ShelfReader, sessions SessionReader, goals GoalProvider, clk clock.Clock) *Aggregator {
	return &Aggregator{shelf: shelf, sessions: sessions, goals: goals, clock: clk}
}

// Dashboard builds the full aggregate for a user.
func (a *Aggregator) Dashboard(userID uint) (*Dashboard, error) {
	out := &Dashboard{}

	var err error
	if out.TotalBooks, err = a.shelf.CountForUser(userID); err != nil {
		return nil, fmt.Errorf("count shelf entries: %w", err)
	}
	if out.ToReadBooks, err = a.shelf.CountByStatus(userID, entities.ReadingStatusToRead); err != nil {
		return nil, fmt.Errorf("count to-read entries: %w", err)
	}
	if out.ReadingBooks, err = a.shelf.CountByStatus(userID, entities.ReadingStatusReading); err != nil {
		return nil, fmt.Errorf("count reading entries: %w", err)
	}
	if out.FinishedBooks, err = a.shelf.CountByStatus(userID, entities.ReadingStatusFinished); err != nil {
		return nil, fmt.Errorf("count finished entries: %w", err)
	}

	goal, err := a.goals.GetOrCreate(userID)
	if err != nil {
		return nil, fmt.Errorf("materialize goal: %w", err)
	}
	out.BooksPerMonthGoal = goal.BooksPerMonth
	out.MinutesPerDayGoal = goal.MinutesPerDay

	today := clock.Today(a.clock)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	sessions, err := a.sessions.List(userID, &monthStart, &today)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	for _, s := range sessions {
		if clock.DateOf(s.SessionDate).Equal(today) {
			out.MinutesReadToday += s.MinutesRead
		}
		out.MinutesReadThisMonth += s.MinutesRead
	}

	recent, err := a.sessions.Recent(userID, RecentSessionLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	out.RecentSessions = make([]RecentSession, 0, len(recent))
	for _, s := range recent {
		out.RecentSessions = append(out.RecentSessions, RecentSession{
			ID:          s.ID,
			BookID:      s.BookID,
			BookTitle:   s.Book.Title,
			SessionDate: clock.DateOf(s.SessionDate).Format("2006-01-02"),
			MinutesRead: s.MinutesRead,
			PagesRead:   s.PagesRead,
		})
	}

	finished, err := a.shelf.ListFinished(userID)
	if err != nil {
		return nil, fmt.Errorf("list finished entries: %w", err)
	}
	out.MonthlyFinished = monthlyFinished(finished, today)

	return out, nil
}

// monthlyFinished builds a dense histogram over the last
// MonthlyHistogramBuckets calendar months, oldest first. Months without
// finished books still get a zero bucket.
func monthlyFinished(finished []entities.ShelfEntry, today time.Time) []MonthlyCount {
	// Anchor on the first of the month so subtracting months never
	// normalizes past a short month.
	y, m, _ := today.UTC().Date()
	anchor := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)

	counts := make(map[string]int64, MonthlyHistogramBuckets)
	order := make([]string, 0, MonthlyHistogramBuckets)
	for i := MonthlyHistogramBuckets - 1; i >= 0; i-- {
		key := monthOf(anchor.AddDate(0, -i, 0))
		counts[key] = 0
		order = append(order, key)
	}

	for _, entry := range finished {
		if entry.FinishedAt == nil {
			continue
		}
		key := monthOf(*entry.FinishedAt)
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}

	out := make([]MonthlyCount, 0, MonthlyHistogramBuckets)
	for _, key := range order {
		out = append(out, MonthlyCount{Month: key, Count: counts[key]})
	}
	return out
}

func monthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}
