package database

import "errors"

// Sentinel errors shared by the repository sub-packages. Controllers map
// these to HTTP status codes in internal/http/helpers.go; nothing below the
// HTTP layer knows about status codes.
var (
	// ErrNotFound means a referenced user, book, loan or shelf entry does
	// not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoCopies means a borrow was attempted with no available copies.
	ErrNoCopies = errors.New("no available copies")

	// ErrDuplicate means a storage-level uniqueness constraint rejected a
	// write (e.g. a second shelf entry for the same user and book).
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalid means a domain argument was out of range (bad rating,
	// non-positive minutes, negative pages).
	ErrInvalid = errors.New("invalid value")
)
