package entities

import (
	"time"

	"gorm.io/gorm"
)

// Book is a catalog record with physical copy inventory.
// AvailableCopies is only ever mutated inside the loans repository's
// transactions, which keep 0 <= AvailableCopies <= TotalCopies.
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"index;size:512" json:"title"`
	Author          string         `gorm:"index;size:256" json:"author"`
	ISBN            string         `gorm:"index;size:20" json:"isbn,omitempty"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	ImageURL        string         `gorm:"size:2048" json:"image_url,omitempty"`
	TotalCopies     int            `gorm:"default:1" json:"total_copies"`
	AvailableCopies int            `gorm:"default:1" json:"available_copies"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Book) TableName() string {
	return "books"
}
