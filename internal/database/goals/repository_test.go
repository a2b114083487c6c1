package goals

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/entities"
)

func setupRepo(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()
	dbPath := "./test_goals_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db, cleanup
}

func goalRowCount(t *testing.T, db *database.Database) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.DB.Model(&entities.ReadingGoal{}).Count(&count).Error)
	return count
}

func TestGetOrCreate(t *testing.T) {
	t.Run("materializes the defaults on first read", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		goal, err := repo.GetOrCreate(1)
		require.NoError(t, err)

		assert.Equal(t, entities.DefaultBooksPerMonth, goal.BooksPerMonth)
		assert.Equal(t, entities.DefaultMinutesPerDay, goal.MinutesPerDay)
		assert.Equal(t, int64(1), goalRowCount(t, db))
	})

	t.Run("returns the same row on repeated reads", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		first, err := repo.GetOrCreate(1)
		require.NoError(t, err)
		second, err := repo.GetOrCreate(1)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, int64(1), goalRowCount(t, db))
	})

	t.Run("keeps per-user rows separate", func(t *testing.T) {
		repo, db, cleanup := setupRepo(t)
		defer cleanup()

		mine, err := repo.GetOrCreate(1)
		require.NoError(t, err)
		theirs, err := repo.GetOrCreate(2)
		require.NoError(t, err)

		assert.NotEqual(t, mine.ID, theirs.ID)
		assert.Equal(t, int64(2), goalRowCount(t, db))
	})
}

func TestUpdate(t *testing.T) {
	t.Run("persists new targets", func(t *testing.T) {
		repo, _, cleanup := setupRepo(t)
		defer cleanup()

		updated, err := repo.Update(1, 4, 45)
		require.NoError(t, err)
		assert.Equal(t, 4, updated.BooksPerMonth)
		assert.Equal(t, 45, updated.MinutesPerDay)

		reread, err := repo.GetOrCreate(1)
		require.NoError(t, err)
		assert.Equal(t, 4, reread.BooksPerMonth)
		assert.Equal(t, 45, reread.MinutesPerDay)
	})

	t.Run("rejects targets below one", func(t *testing.T) {
		repo, _, cleanup := setupRepo(t)
		defer cleanup()

		_, err := repo.Update(1, 0, 30)
		assert.ErrorIs(t, err, database.ErrInvalid)

		_, err = repo.Update(1, 2, 0)
		assert.ErrorIs(t, err, database.ErrInvalid)

		_, err = repo.Update(1, -1, -1)
		assert.ErrorIs(t, err, database.ErrInvalid)
	})
}
