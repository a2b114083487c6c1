package books

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/entities"
)

func setupRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := "./test_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), cleanup
}

func TestCreateBook(t *testing.T) {
	t.Run("defaults availability to the total copy count", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		book := &entities.Book{Title: "Dune", Author: "Frank Herbert", TotalCopies: 4}
		require.NoError(t, repo.CreateBook(book))

		assert.Equal(t, 4, book.AvailableCopies)

		stored, err := repo.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.AvailableCopies)
	})

	t.Run("keeps an explicit availability below total", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		book := &entities.Book{Title: "Dune", Author: "Frank Herbert", TotalCopies: 4, AvailableCopies: 2}
		require.NoError(t, repo.CreateBook(book))

		assert.Equal(t, 2, book.AvailableCopies)
	})

	t.Run("rejects negative copy counts", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		err := repo.CreateBook(&entities.Book{Title: "Dune", TotalCopies: -1})
		assert.ErrorIs(t, err, database.ErrInvalid)
	})

	t.Run("rejects availability above total", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		err := repo.CreateBook(&entities.Book{Title: "Dune", TotalCopies: 1, AvailableCopies: 3})
		assert.ErrorIs(t, err, database.ErrInvalid)
	})
}

func TestGetBook(t *testing.T) {
	t.Run("finds a book by ISBN", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		book := &entities.Book{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", TotalCopies: 1}
		require.NoError(t, repo.CreateBook(book))

		found, err := repo.GetBookByISBN("9780441013593")
		require.NoError(t, err)
		assert.Equal(t, book.ID, found.ID)
	})

	t.Run("returns not found for a missing id", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		_, err := repo.GetBookByID(9999)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestGetAllBooks(t *testing.T) {
	t.Run("orders the catalog by title", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		for _, title := range []string{"Solaris", "Dune", "Hyperion"} {
			require.NoError(t, repo.CreateBook(&entities.Book{Title: title, TotalCopies: 1}))
		}

		books, err := repo.GetAllBooks()
		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, "Dune", books[0].Title)
		assert.Equal(t, "Hyperion", books[1].Title)
		assert.Equal(t, "Solaris", books[2].Title)
	})
}

func TestUpdateBook(t *testing.T) {
	t.Run("applies field changes", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		book := &entities.Book{Title: "Dune", Author: "Frank Herbert", TotalCopies: 2}
		require.NoError(t, repo.CreateBook(book))

		book.Title = "Dune Messiah"
		book.TotalCopies = 3
		book.AvailableCopies = 3
		require.NoError(t, repo.UpdateBook(book))

		stored, err := repo.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", stored.Title)
		assert.Equal(t, 3, stored.TotalCopies)
	})

	t.Run("rejects availability above total", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		book := &entities.Book{Title: "Dune", TotalCopies: 2}
		require.NoError(t, repo.CreateBook(book))

		book.AvailableCopies = 5
		err := repo.UpdateBook(book)
		assert.ErrorIs(t, err, database.ErrInvalid)
	})

	t.Run("returns not found for a missing book", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		err := repo.UpdateBook(&entities.Book{ID: 9999, Title: "Ghost", TotalCopies: 1, AvailableCopies: 1})
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestDeleteBook(t *testing.T) {
	t.Run("removes the book from the catalog", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		book := &entities.Book{Title: "Dune", TotalCopies: 1}
		require.NoError(t, repo.CreateBook(book))

		require.NoError(t, repo.DeleteBook(book.ID))

		_, err := repo.GetBookByID(book.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("returns not found for a missing book", func(t *testing.T) {
		repo, cleanup := setupRepo(t)
		defer cleanup()

		err := repo.DeleteBook(9999)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}
