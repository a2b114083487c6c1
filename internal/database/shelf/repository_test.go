package shelf

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarium/internal/clock"
	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/entities"
)

var testNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
var testToday = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	dbPath := "./test_shelf_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func setupRepo(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()
	db, cleanup := setupTestDB(t)
	repo := NewRepository(db.DB, clock.Fixed{Time: testNow})
	return repo, db, cleanup
}

func createBook(t *testing.T, db *database.Database, title string) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, Author: "Author", TotalCopies: 1, AvailableCopies: 1}
	require.NoError(t, db.DB.Create(book).Error)
	return book
}

func TestApplyStatusDates(t *testing.T) {
	t.Run("stamps started date on moving to reading", func(t *testing.T) {
		entry := &entities.ShelfEntry{Status: entities.ReadingStatusToRead}

		ApplyStatusDates(entry, entities.ReadingStatusReading, testToday)

		require.NotNil(t, entry.StartedAt)
		assert.Equal(t, testToday, *entry.StartedAt)
		assert.Nil(t, entry.FinishedAt)
	})

	t.Run("does not overwrite an existing started date", func(t *testing.T) {
		earlier := testToday.AddDate(0, 0, -10)
		entry := &entities.ShelfEntry{Status: entities.ReadingStatusReading, StartedAt: &earlier}

		ApplyStatusDates(entry, entities.ReadingStatusReading, testToday)

		assert.Equal(t, earlier, *entry.StartedAt)
	})

	t.Run("finishing stamps the date and forces full progress", func(t *testing.T) {
		entry := &entities.ShelfEntry{Status: entities.ReadingStatusReading, ProgressPercent: 60}

		ApplyStatusDates(entry, entities.ReadingStatusFinished, testToday)

		require.NotNil(t, entry.FinishedAt)
		assert.Equal(t, testToday, *entry.FinishedAt)
		assert.Equal(t, 100, entry.ProgressPercent)
	})

	t.Run("refinishing keeps the original finish date", func(t *testing.T) {
		earlier := testToday.AddDate(0, -1, 0)
		entry := &entities.ShelfEntry{
			Status:          entities.ReadingStatusFinished,
			FinishedAt:      &earlier,
			ProgressPercent: 100,
		}

		ApplyStatusDates(entry, entities.ReadingStatusFinished, testToday)

		assert.Equal(t, earlier, *entry.FinishedAt)
	})
}

func TestApplyProgress(t *testing.T) {
	t.Run("sets the percentage without touching status", func(t *testing.T) {
		entry := &entities.ShelfEntry{Status: entities.ReadingStatusReading}

		ApplyProgress(entry, 45, testToday)

		assert.Equal(t, 45, entry.ProgressPercent)
		assert.Equal(t, entities.ReadingStatusReading, entry.Status)
		assert.Nil(t, entry.FinishedAt)
	})

	t.Run("full progress promotes the entry to finished", func(t *testing.T) {
		entry := &entities.ShelfEntry{Status: entities.ReadingStatusReading}

		ApplyProgress(entry, 100, testToday)

		assert.Equal(t, entities.ReadingStatusFinished, entry.Status)
		require.NotNil(t, entry.FinishedAt)
		assert.Equal(t, testToday, *entry.FinishedAt)
	})

	t.Run("promotion keeps an existing finish date", func(t *testing.T) {
		earlier := testToday.AddDate(0, 0, -5)
		entry := &entities.ShelfEntry{Status: entities.ReadingStatusReading, FinishedAt: &earlier}

		ApplyProgress(entry, 100, testToday)

		assert.Equal(t, earlier, *entry.FinishedAt)
	})
}

func TestAddOrUpdate(t *testing.T) {
	t.Run("creates a new entry in the requested status", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")

		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusToRead)
		require.NoError(t, err)

		assert.Equal(t, entities.ReadingStatusToRead, entry.Status)
		assert.Equal(t, 0, entry.ProgressPercent)
		assert.Nil(t, entry.StartedAt)
	})

	t.Run("moving to reading stamps the start date", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")

		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		assert.Equal(t, entities.ReadingStatusReading, entry.Status)
		require.NotNil(t, entry.StartedAt)
		assert.True(t, entry.StartedAt.Equal(testToday))
	})

	t.Run("shelving the same book twice updates the single row", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")

		first, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusToRead)
		require.NoError(t, err)
		second, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)

		count, err := repo.CountForUser(1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("different users shelve the same book independently", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")

		mine, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)
		theirs, err := repo.AddOrUpdate(2, book.ID, entities.ReadingStatusToRead)
		require.NoError(t, err)

		assert.NotEqual(t, mine.ID, theirs.ID)
	})

	t.Run("fails for an unknown book", func(t *testing.T) {
		repo, _, cleanup := setupRepo(t)
		defer cleanup()

		_, err := repo.AddOrUpdate(1, 9999, entities.ReadingStatusToRead)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestPatch(t *testing.T) {
	t.Run("applies provided fields independently", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")
		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		rating := 4
		progress := 55
		patched, err := repo.Patch(1, entry.ID, PatchRequest{Rating: &rating, ProgressPercent: &progress})
		require.NoError(t, err)

		require.NotNil(t, patched.Rating)
		assert.Equal(t, 4, *patched.Rating)
		assert.Equal(t, 55, patched.ProgressPercent)
		assert.Equal(t, entities.ReadingStatusReading, patched.Status)
	})

	t.Run("full progress promotes the entry to finished", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")
		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		progress := 100
		patched, err := repo.Patch(1, entry.ID, PatchRequest{ProgressPercent: &progress})
		require.NoError(t, err)

		assert.Equal(t, entities.ReadingStatusFinished, patched.Status)
		require.NotNil(t, patched.FinishedAt)
	})

	t.Run("status change stamps transition dates", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")
		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusToRead)
		require.NoError(t, err)

		status := entities.ReadingStatusFinished
		patched, err := repo.Patch(1, entry.ID, PatchRequest{Status: &status})
		require.NoError(t, err)

		assert.Equal(t, entities.ReadingStatusFinished, patched.Status)
		require.NotNil(t, patched.FinishedAt)
		assert.Equal(t, 100, patched.ProgressPercent)
	})

	t.Run("rejects a rating outside 1 to 5", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")
		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		for _, rating := range []int{0, 6, -1} {
			r := rating
			_, err := repo.Patch(1, entry.ID, PatchRequest{Rating: &r})
			assert.ErrorIs(t, err, database.ErrInvalid)
		}
	})

	t.Run("rejects progress outside 0 to 100", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")
		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		for _, progress := range []int{-1, 101} {
			p := progress
			_, err := repo.Patch(1, entry.ID, PatchRequest{ProgressPercent: &p})
			assert.ErrorIs(t, err, database.ErrInvalid)
		}
	})

	t.Run("cannot patch another user's entry", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")
		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		progress := 50
		_, err = repo.Patch(2, entry.ID, PatchRequest{ProgressPercent: &progress})
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestRemove(t *testing.T) {
	t.Run("deletes the entry", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")
		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		require.NoError(t, repo.Remove(1, entry.ID))

		_, err = repo.GetEntry(1, entry.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("cannot remove another user's entry", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")
		entry, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		err = repo.Remove(2, entry.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)

		_, err = repo.GetEntry(1, entry.ID)
		assert.NoError(t, err)
	})
}

func TestListForUser(t *testing.T) {
	t.Run("filters by status", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		first := createBook(t, db, "Dune")
		second := createBook(t, db, "Solaris")
		third := createBook(t, db, "Hyperion")

		_, err := repo.AddOrUpdate(1, first.ID, entities.ReadingStatusReading)
		require.NoError(t, err)
		_, err = repo.AddOrUpdate(1, second.ID, entities.ReadingStatusToRead)
		require.NoError(t, err)
		_, err = repo.AddOrUpdate(1, third.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		status := entities.ReadingStatusReading
		entries, err := repo.ListForUser(1, &status)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		all, err := repo.ListForUser(1, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("preloads the book", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")
		_, err := repo.AddOrUpdate(1, book.ID, entities.ReadingStatusReading)
		require.NoError(t, err)

		entries, err := repo.ListForUser(1, nil)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Dune", entries[0].Book.Title)
	})
}

func TestFindOrCreate(t *testing.T) {
	t.Run("returns the existing row on a second call", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		book := createBook(t, db, "Dune")

		created, err := repo.FindOrCreate(1, book.ID, entities.ShelfEntry{Status: entities.ReadingStatusReading})
		require.NoError(t, err)

		found, err := repo.FindOrCreate(1, book.ID, entities.ShelfEntry{Status: entities.ReadingStatusToRead})
		require.NoError(t, err)

		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, entities.ReadingStatusReading, found.Status)
	})
}
