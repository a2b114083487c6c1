package entities

import "time"

type ReadingStatus string

const (
	ReadingStatusToRead   ReadingStatus = "TO_READ"
	ReadingStatusReading  ReadingStatus = "READING"
	ReadingStatusFinished ReadingStatus = "FINISHED"
)

// ShelfEntry is a user's personal tracking row for a book. At most one row
// exists per (user, book) pair; the composite unique index is the arbiter
// under concurrent creation.
//
// A shelf entry is independent of loans: users track books they never
// borrowed and borrow books they never shelve.
type ShelfEntry struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	UserID          uint          `gorm:"uniqueIndex:idx_shelf_user_book" json:"user_id"`
	BookID          uint          `gorm:"uniqueIndex:idx_shelf_user_book" json:"book_id"`
	Status          ReadingStatus `gorm:"size:20;index" json:"status"`
	Rating          *int          `json:"rating,omitempty"` // 1-5
	ProgressPercent int           `gorm:"default:0" json:"progress_percent"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	FinishedAt      *time.Time    `json:"finished_at,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShelfEntry) TableName() string {
	return "shelf_entries"
}

// ReadingSession is an append-only log row. Sessions are immutable once
// created; there are no update or delete operations.
type ReadingSession struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	BookID      uint      `gorm:"index" json:"book_id"`
	SessionDate time.Time `gorm:"index" json:"session_date"`
	MinutesRead int       `json:"minutes_read"`
	PagesRead   int       `json:"pages_read"`
	Note        string    `gorm:"size:1024" json:"note,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}

// Default goal values, materialized lazily on first read.
const (
	DefaultBooksPerMonth = 2
	DefaultMinutesPerDay = 20
)

// ReadingGoal holds a user's targets; one row per user.
type ReadingGoal struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"uniqueIndex" json:"user_id"`
	BooksPerMonth int       `gorm:"default:2" json:"books_per_month"`
	MinutesPerDay int       `gorm:"default:20" json:"minutes_per_day"`
	User          User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (ReadingGoal) TableName() string {
	return "reading_goals"
}
