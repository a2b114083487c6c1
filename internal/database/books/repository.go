// Package books provides database operations for the book catalog.
//
// This package implements the catalog store interfaces defined in
// internal/http/stores.go.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(123)
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/entities"
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByISBN retrieves a book by its ISBN.
func (r *Repository) GetBookByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("isbn = ?", isbn).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks retrieves the full catalog ordered by title.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("title ASC").Find(&books).Error
	return books, err
}

// CreateBook validates the copy counts and inserts a new catalog record.
// An unset AvailableCopies defaults to TotalCopies.
func (r *Repository) CreateBook(book *entities.Book) error {
	if book.TotalCopies < 0 || book.AvailableCopies < 0 {
		return fmt.Errorf("%w: copy counts must not be negative", database.ErrInvalid)
	}
	if book.AvailableCopies == 0 && book.TotalCopies > 0 {
		book.AvailableCopies = book.TotalCopies
	}
	if book.AvailableCopies > book.TotalCopies {
		return fmt.Errorf("%w: available copies exceed total copies", database.ErrInvalid)
	}
	return r.db.Create(book).Error
}

// UpdateBook applies catalog field changes. Copy counts keep the
// 0 <= available <= total invariant; violations are rejected up front.
func (r *Repository) UpdateBook(book *entities.Book) error {
	if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
		return fmt.Errorf("%w: available copies exceed total copies", database.ErrInvalid)
	}
	result := r.db.Model(&entities.Book{}).Where("id = ?", book.ID).Updates(map[string]any{
		"title":            book.Title,
		"author":           book.Author,
		"isbn":             book.ISBN,
		"description":      book.Description,
		"image_url":        book.ImageURL,
		"total_copies":     book.TotalCopies,
		"available_copies": book.AvailableCopies,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// DeleteBook soft-deletes a catalog record. Loans and shelf entries for the
// book are left untouched.
func (r *Repository) DeleteBook(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}
