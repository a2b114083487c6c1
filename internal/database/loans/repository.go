// Package loans implements the borrow/return lifecycle for physical copies.
//
// Borrow and Return each run as a single transaction so the loan row and the
// book's available-copy counter commit together or not at all. The counter
// itself is adjusted with conditional UPDATE statements, which makes two
// concurrent borrows of the last copy resolve to exactly one success.
//
// # Usage
//
//	repo := loans.NewRepository(db, clock.System{})
//	loan, err := repo.Borrow(userID, bookID, dueDate)
package loans

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/clock"
	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/entities"
)

// Repository handles all loan database operations.
type Repository struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB, clk clock.Clock) *Repository {
	return &Repository{db: db, clock: clk}
}

// Borrow checks out one copy of a book for a user. The available-copy
// decrement and the loan insert are committed atomically; the conditional
// decrement is the arbiter under concurrent borrows of the last copy.
func (r *Repository) Borrow(userID, bookID uint, dueDate time.Time) (*entities.Loan, error) {
	var loan *entities.Loan
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %d: %w", userID, database.ErrNotFound)
			}
			return err
		}

		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("book %d: %w", bookID, database.ErrNotFound)
			}
			return err
		}

		// Decrement only while a copy remains; zero rows affected means
		// another borrower won the race (or none were available).
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND available_copies > 0", book.ID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNoCopies
		}

		l := &entities.Loan{
			Reference:  uuid.NewString(),
			UserID:     user.ID,
			BookID:     book.ID,
			BorrowDate: clock.Today(r.clock),
			DueDate:    clock.DateOf(dueDate),
			Status:     entities.LoanStatusBorrowed,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Return marks a loan RETURNED and releases the copy back to the catalog.
// Returning an already-returned loan is a no-op and yields the loan
// unchanged; the counter is never incremented twice.
func (r *Repository) Return(loanID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("loan %d: %w", loanID, database.ErrNotFound)
			}
			return err
		}

		if loan.Status == entities.LoanStatusReturned {
			return nil
		}

		today := clock.Today(r.clock)
		loan.Status = entities.LoanStatusReturned
		loan.ReturnDate = &today
		if err := tx.Save(&loan).Error; err != nil {
			return err
		}

		// Clamped increment: stored data may already be inconsistent, so
		// the result never exceeds total_copies.
		return tx.Model(&entities.Book{}).
			Where("id = ?", loan.BookID).
			UpdateColumn("available_copies", gorm.Expr("MIN(available_copies + 1, total_copies)")).Error
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListLoans returns every loan, most recent first.
func (r *Repository) ListLoans() ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").Order("borrow_date DESC, id DESC").Find(&loans).Error
	return loans, err
}

// ListLoansForUser returns a user's loans, most recent first.
func (r *Repository) ListLoansForUser(userID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("borrow_date DESC, id DESC").
		Find(&loans).Error
	return loans, err
}

// ListOverdueLoans returns loans still BORROWED whose due date is strictly
// before the given date. Used by the overdue sweep.
func (r *Repository) ListOverdueLoans(before time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.Preload("Book").
		Where("status = ? AND due_date < ?", entities.LoanStatusBorrowed, clock.DateOf(before)).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}
