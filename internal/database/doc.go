// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, user lookups
//	├── errors.go        # Sentinel errors shared by all repositories
//	├── books/           # Catalog CRUD and copy inventory
//	├── loans/           # Borrow/return lifecycle (transactional)
//	├── shelf/           # Per-user reading state (unique per user+book)
//	├── sessions/        # Append-only reading session ledger
//	└── goals/           # Per-user reading targets
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	repo := loans.NewRepository(db.DB, clock.System{})
//	loan, err := repo.Borrow(userID, bookID, dueDate)
//
// Repositories that stamp dates take a clock.Clock so tests can pin "today".
package database
