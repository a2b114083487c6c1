package entities

import "time"

type LoanStatus string

const (
	LoanStatusBorrowed LoanStatus = "BORROWED"
	LoanStatusReturned LoanStatus = "RETURNED"
)

// Loan tracks physical custody of a single copy of a book.
// The only transition is BORROWED -> RETURNED; RETURNED is terminal.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Reference  string     `gorm:"uniqueIndex;size:36" json:"reference"` // external UUID, shown on receipts
	UserID     uint       `gorm:"index" json:"user_id"`
	BookID     uint       `gorm:"index" json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     LoanStatus `gorm:"size:20;index" json:"status"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}
