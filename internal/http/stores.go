package http

import (
	"time"

	"github.com/mrlokans/librarium/internal/database/shelf"
	"github.com/mrlokans/librarium/internal/entities"
	"github.com/mrlokans/librarium/internal/stats"
)

// This file consolidates the store interface definitions used by the HTTP
// controllers. Each controller depends on the narrowest interface it needs;
// the repository sub-packages under internal/database satisfy them.

// CatalogStore provides catalog access for the books controller.
type CatalogStore interface {
	GetBookByID(id uint) (*entities.Book, error)
	GetAllBooks() ([]entities.Book, error)
	CreateBook(book *entities.Book) error
	UpdateBook(book *entities.Book) error
	DeleteBook(id uint) error
}

// LoanStore provides the loan lifecycle for the loans controller.
type LoanStore interface {
	Borrow(userID, bookID uint, dueDate time.Time) (*entities.Loan, error)
	Return(loanID uint) (*entities.Loan, error)
	ListLoans() ([]entities.Loan, error)
	ListLoansForUser(userID uint) ([]entities.Loan, error)
}

// ShelfStore provides shelf entry operations for the shelf controller.
type ShelfStore interface {
	AddOrUpdate(userID, bookID uint, status entities.ReadingStatus) (*entities.ShelfEntry, error)
	Patch(userID, entryID uint, req shelf.PatchRequest) (*entities.ShelfEntry, error)
	Remove(userID, entryID uint) error
	GetEntry(userID, entryID uint) (*entities.ShelfEntry, error)
	ListForUser(userID uint, status *entities.ReadingStatus) ([]entities.ShelfEntry, error)
}

// SessionStore provides the session ledger for the sessions controller.
type SessionStore interface {
	Record(userID, bookID uint, date time.Time, minutes, pages int, note string) (*entities.ReadingSession, error)
	List(userID uint, from, to *time.Time) ([]entities.ReadingSession, error)
}

// GoalStore provides goal access for the goals controller.
type GoalStore interface {
	GetOrCreate(userID uint) (*entities.ReadingGoal, error)
	Update(userID uint, booksPerMonth, minutesPerDay int) (*entities.ReadingGoal, error)
}

// DashboardProvider computes the per-user dashboard.
type DashboardProvider interface {
	Dashboard(userID uint) (*stats.Dashboard, error)
}

// TaskEnqueuer schedules background work after catalog writes. Optional;
// controllers tolerate a nil enqueuer.
type TaskEnqueuer interface {
	EnqueueIndexBook(bookID uint)
}
