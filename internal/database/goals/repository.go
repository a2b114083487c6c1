// Package goals stores per-user reading targets. A missing row is
// materialized with the defaults on first read.
package goals

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/entities"
)

// Repository handles all reading goal database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new goals repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrCreate returns the user's goal row, inserting the defaults when
// absent. The unique index on user_id decides concurrent creation; the
// loser re-reads the winner's row.
func (r *Repository) GetOrCreate(userID uint) (*entities.ReadingGoal, error) {
	var goal entities.ReadingGoal
	err := r.db.Where("user_id = ?", userID).First(&goal).Error
	if err == nil {
		return &goal, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	goal = entities.ReadingGoal{
		UserID:        userID,
		BooksPerMonth: entities.DefaultBooksPerMonth,
		MinutesPerDay: entities.DefaultMinutesPerDay,
	}
	if createErr := r.db.Create(&goal).Error; createErr != nil {
		var existing entities.ReadingGoal
		if err := r.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
			return &existing, nil
		}
		return nil, createErr
	}
	return &goal, nil
}

// Update sets the user's targets, creating the row first if needed.
func (r *Repository) Update(userID uint, booksPerMonth, minutesPerDay int) (*entities.ReadingGoal, error) {
	if booksPerMonth < 1 || minutesPerDay < 1 {
		return nil, fmt.Errorf("%w: goals must be at least 1", database.ErrInvalid)
	}

	goal, err := r.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	goal.BooksPerMonth = booksPerMonth
	goal.MinutesPerDay = minutesPerDay
	if err := r.db.Save(goal).Error; err != nil {
		return nil, err
	}
	return goal, nil
}
