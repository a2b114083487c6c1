// Package shelf provides database operations for per-user reading state.
//
// Each user has at most one ShelfEntry per book; the composite unique index
// on (user_id, book_id) is the final arbiter under concurrent creation, and
// the loser of that race retries as a read.
//
// The status transition rules live in the exported pure functions
// ApplyStatusDates and ApplyProgress so they can be tested directly.
//
// # Usage
//
//	repo := shelf.NewRepository(db, clock.System{})
//	entry, err := repo.AddOrUpdate(userID, bookID, entities.ReadingStatusReading)
package shelf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/clock"
	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/entities"
)

// Repository handles all shelf entry database operations.
type Repository struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewRepository creates a new shelf repository.
func NewRepository(db *gorm.DB, clk clock.Clock) *Repository {
	return &Repository{db: db, clock: clk}
}

// WithTx returns a copy of the repository bound to the given transaction
// handle, so callers can compose shelf writes with their own within one
// transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx, clock: r.clock}
}

// PatchRequest carries a partial update; nil fields are left untouched.
type PatchRequest struct {
	Status          *entities.ReadingStatus
	Rating          *int
	ProgressPercent *int
}

// ApplyStatusDates stamps the dates implied by a status transition.
// Idempotent: already-set dates are never overwritten, so reapplying the
// same status is a no-op.
func ApplyStatusDates(entry *entities.ShelfEntry, status entities.ReadingStatus, today time.Time) {
	if status == entities.ReadingStatusReading && entry.StartedAt == nil {
		t := today
		entry.StartedAt = &t
	}
	if status == entities.ReadingStatusFinished {
		if entry.FinishedAt == nil {
			t := today
			entry.FinishedAt = &t
		}
		if entry.ProgressPercent < 100 {
			entry.ProgressPercent = 100
		}
	}
}

// ApplyProgress sets the progress percentage and performs the cross-field
// promotion: reaching 100 on a non-finished entry finishes it and stamps
// FinishedAt if unset.
func ApplyProgress(entry *entities.ShelfEntry, percent int, today time.Time) {
	entry.ProgressPercent = percent
	if percent >= 100 && entry.Status != entities.ReadingStatusFinished {
		entry.Status = entities.ReadingStatusFinished
		if entry.FinishedAt == nil {
			t := today
			entry.FinishedAt = &t
		}
	}
}

// FindOrCreate returns the entry for (user, book), creating it with the
// given initial state when absent. The unique index decides races: a
// concurrent insert surfaces as a duplicate error and the row is re-read.
func (r *Repository) FindOrCreate(userID, bookID uint, initial entities.ShelfEntry) (*entities.ShelfEntry, error) {
	var entry entities.ShelfEntry
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&entry).Error
	if err == nil {
		return &entry, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	initial.UserID = userID
	initial.BookID = bookID
	if createErr := r.db.Create(&initial).Error; createErr != nil {
		if isDuplicate(createErr) {
			// Lost the creation race; the winner's row is authoritative.
			if err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&entry).Error; err != nil {
				return nil, err
			}
			return &entry, nil
		}
		return nil, createErr
	}
	return &initial, nil
}

// AddOrUpdate fetches or lazily creates the entry for (user, book) and
// moves it to the desired status.
func (r *Repository) AddOrUpdate(userID, bookID uint, status entities.ReadingStatus) (*entities.ShelfEntry, error) {
	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book %d: %w", bookID, database.ErrNotFound)
		}
		return nil, err
	}

	entry, err := r.FindOrCreate(userID, bookID, entities.ShelfEntry{
		Status:          entities.ReadingStatusToRead,
		ProgressPercent: 0,
	})
	if err != nil {
		return nil, err
	}

	ApplyStatusDates(entry, status, clock.Today(r.clock))
	entry.Status = status
	if err := r.db.Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Patch applies a partial update to an entry owned by the user. Provided
// fields are applied independently; setting progress to 100 or more
// promotes the entry to FINISHED via ApplyProgress.
func (r *Repository) Patch(userID, entryID uint, req PatchRequest) (*entities.ShelfEntry, error) {
	entry, err := r.getOwned(userID, entryID)
	if err != nil {
		return nil, err
	}

	today := clock.Today(r.clock)
	if req.Status != nil {
		ApplyStatusDates(entry, *req.Status, today)
		entry.Status = *req.Status
	}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, fmt.Errorf("%w: rating must be between 1 and 5", database.ErrInvalid)
		}
		entry.Rating = req.Rating
	}
	if req.ProgressPercent != nil {
		if *req.ProgressPercent < 0 || *req.ProgressPercent > 100 {
			return nil, fmt.Errorf("%w: progress must be between 0 and 100", database.ErrInvalid)
		}
		ApplyProgress(entry, *req.ProgressPercent, today)
	}

	if err := r.db.Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Remove deletes an entry owned by the user. Loans and sessions for the
// same book are untouched.
func (r *Repository) Remove(userID, entryID uint) error {
	entry, err := r.getOwned(userID, entryID)
	if err != nil {
		return err
	}
	return r.db.Delete(entry).Error
}

// GetEntry returns an entry owned by the user with its book preloaded.
func (r *Repository) GetEntry(userID, entryID uint) (*entities.ShelfEntry, error) {
	var entry entities.ShelfEntry
	err := r.db.Preload("Book").Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListForUser returns a user's entries, optionally filtered by status,
// most recently updated first.
func (r *Repository) ListForUser(userID uint, status *entities.ReadingStatus) ([]entities.ShelfEntry, error) {
	query := r.db.Preload("Book").Where("user_id = ?", userID).Order("updated_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var entries []entities.ShelfEntry
	err := query.Find(&entries).Error
	return entries, err
}

// CountByStatus returns the number of entries a user has in a status.
func (r *Repository) CountByStatus(userID uint, status entities.ReadingStatus) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ShelfEntry{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

// CountForUser returns a user's total entry count.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ShelfEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ListFinished returns a user's finished entries. Used by the dashboard's
// monthly histogram.
func (r *Repository) ListFinished(userID uint) ([]entities.ShelfEntry, error) {
	var entries []entities.ShelfEntry
	err := r.db.Where("user_id = ? AND status = ?", userID, entities.ReadingStatusFinished).
		Find(&entries).Error
	return entries, err
}

func (r *Repository) getOwned(userID, entryID uint) (*entities.ShelfEntry, error) {
	var entry entities.ShelfEntry
	err := r.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("shelf entry %d: %w", entryID, database.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// isDuplicate reports whether err is a uniqueness violation. The sqlite
// driver does not always translate to gorm.ErrDuplicatedKey, so the raw
// constraint message is checked too.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
