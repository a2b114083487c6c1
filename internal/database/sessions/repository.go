// Package sessions provides the append-only reading session ledger.
//
// Sessions are immutable once recorded. Recording a session also nudges the
// user's shelf entry for the book: a missing entry is created as READING and
// a TO_READ entry is promoted, since a logged session is evidence the user
// has started the book.
package sessions

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/clock"
	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/database/shelf"
	"github.com/mrlokans/librarium/internal/entities"
)

// Repository handles all reading session database operations.
type Repository struct {
	db    *gorm.DB
	shelf *shelf.Repository
	clock clock.Clock
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB, shelfRepo *shelf.Repository, clk clock.Clock) *Repository {
	return &Repository{db: db, shelf: shelfRepo, clock: clk}
}

// Record validates and appends a session, applying the shelf side effect
// in the same transaction so a failed append never leaves a stray
// promotion behind. Returns the created session with its book preloaded.
func (r *Repository) Record(userID, bookID uint, date time.Time, minutes, pages int, note string) (*entities.ReadingSession, error) {
	if minutes < 1 {
		return nil, fmt.Errorf("%w: minutes read must be at least 1", database.ErrInvalid)
	}
	if pages < 0 {
		return nil, fmt.Errorf("%w: pages read must not be negative", database.ErrInvalid)
	}

	var book entities.Book
	var session *entities.ReadingSession

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("book %d: %w", bookID, database.ErrNotFound)
			}
			return err
		}

		today := clock.Today(r.clock)
		shelfTx := r.shelf.WithTx(tx)

		entry, err := shelfTx.FindOrCreate(userID, bookID, entities.ShelfEntry{
			Status:          entities.ReadingStatusReading,
			StartedAt:       &today,
			ProgressPercent: 0,
		})
		if err != nil {
			return err
		}
		if entry.Status == entities.ReadingStatusToRead {
			entry.Status = entities.ReadingStatusReading
			if entry.StartedAt == nil {
				entry.StartedAt = &today
			}
			if err := tx.Save(entry).Error; err != nil {
				return err
			}
		}

		session = &entities.ReadingSession{
			UserID:      userID,
			BookID:      bookID,
			SessionDate: clock.DateOf(date),
			MinutesRead: minutes,
			PagesRead:   pages,
			Note:        note,
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}
	session.Book = book
	return session, nil
}

// List returns a user's sessions ordered by (session date desc, created at
// desc). When both bounds are given the result is filtered to the inclusive
// date range.
func (r *Repository) List(userID uint, from, to *time.Time) ([]entities.ReadingSession, error) {
	query := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("session_date DESC, created_at DESC, id DESC")
	if from != nil && to != nil {
		query = query.Where("session_date BETWEEN ? AND ?", clock.DateOf(*from), clock.DateOf(*to))
	}
	var sessions []entities.ReadingSession
	err := query.Find(&sessions).Error
	return sessions, err
}

// Recent returns a user's most recent sessions, capped at limit.
func (r *Repository) Recent(userID uint, limit int) ([]entities.ReadingSession, error) {
	var sessions []entities.ReadingSession
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("session_date DESC, created_at DESC, id DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
