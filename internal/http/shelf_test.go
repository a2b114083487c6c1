package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/database/shelf"
	"github.com/mrlokans/librarium/internal/entities"
)

type stubShelfStore struct {
	entry     *entities.ShelfEntry
	entries   []entities.ShelfEntry
	err       error
	gotUser   uint
	gotBook   uint
	gotEntry  uint
	gotStatus entities.ReadingStatus
	gotFilter *entities.ReadingStatus
	gotPatch  shelf.PatchRequest
}

func (s *stubShelfStore) AddOrUpdate(userID, bookID uint, status entities.ReadingStatus) (*entities.ShelfEntry, error) {
	s.gotUser, s.gotBook, s.gotStatus = userID, bookID, status
	return s.entry, s.err
}

func (s *stubShelfStore) Patch(userID, entryID uint, req shelf.PatchRequest) (*entities.ShelfEntry, error) {
	s.gotUser, s.gotEntry, s.gotPatch = userID, entryID, req
	return s.entry, s.err
}

func (s *stubShelfStore) Remove(userID, entryID uint) error {
	s.gotUser, s.gotEntry = userID, entryID
	return s.err
}

func (s *stubShelfStore) GetEntry(userID, entryID uint) (*entities.ShelfEntry, error) {
	s.gotUser, s.gotEntry = userID, entryID
	return s.entry, s.err
}

func (s *stubShelfStore) ListForUser(userID uint, status *entities.ReadingStatus) ([]entities.ShelfEntry, error) {
	s.gotUser, s.gotFilter = userID, status
	return s.entries, s.err
}

func newShelfRouter(store ShelfStore, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(asUser(userID, entities.UserRoleMember))

	ctrl := NewShelfController(store)
	router.GET("/api/my/books", ctrl.List)
	router.GET("/api/my/books/:id", ctrl.Get)
	router.POST("/api/my/books", ctrl.Add)
	router.PATCH("/api/my/books/:id", ctrl.Patch)
	router.DELETE("/api/my/books/:id", ctrl.Remove)
	return router
}

func TestShelfAdd(t *testing.T) {
	t.Run("shelves a book as to-read by default", func(t *testing.T) {
		store := &stubShelfStore{entry: &entities.ShelfEntry{ID: 5, Status: entities.ReadingStatusToRead}}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodPost, "/api/my/books", gin.H{"book_id": 3})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, uint(42), store.gotUser)
		assert.Equal(t, uint(3), store.gotBook)
		assert.Equal(t, entities.ReadingStatusToRead, store.gotStatus)
	})

	t.Run("accepts an explicit status", func(t *testing.T) {
		store := &stubShelfStore{entry: &entities.ShelfEntry{ID: 5}}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodPost, "/api/my/books", gin.H{"book_id": 3, "status": "READING"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, entities.ReadingStatusReading, store.gotStatus)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		router := newShelfRouter(&stubShelfStore{}, 42)

		w := doJSON(t, router, http.MethodPost, "/api/my/books", gin.H{"book_id": 3, "status": "PAUSED"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps an unknown book to not found", func(t *testing.T) {
		store := &stubShelfStore{err: database.ErrNotFound}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodPost, "/api/my/books", gin.H{"book_id": 999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestShelfPatch(t *testing.T) {
	t.Run("forwards only the provided fields", func(t *testing.T) {
		store := &stubShelfStore{entry: &entities.ShelfEntry{ID: 5}}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodPatch, "/api/my/books/5", gin.H{"progress_percent": 80})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(5), store.gotEntry)
		require.NotNil(t, store.gotPatch.ProgressPercent)
		assert.Equal(t, 80, *store.gotPatch.ProgressPercent)
		assert.Nil(t, store.gotPatch.Status)
		assert.Nil(t, store.gotPatch.Rating)
	})

	t.Run("parses a status change", func(t *testing.T) {
		store := &stubShelfStore{entry: &entities.ShelfEntry{ID: 5}}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodPatch, "/api/my/books/5", gin.H{"status": "FINISHED"})

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, store.gotPatch.Status)
		assert.Equal(t, entities.ReadingStatusFinished, *store.gotPatch.Status)
	})

	t.Run("maps an invalid rating to a bad request", func(t *testing.T) {
		store := &stubShelfStore{err: database.ErrInvalid}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodPatch, "/api/my/books/5", gin.H{"rating": 9})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps another user's entry to not found", func(t *testing.T) {
		store := &stubShelfStore{err: database.ErrNotFound}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodPatch, "/api/my/books/5", gin.H{"rating": 4})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestShelfList(t *testing.T) {
	t.Run("passes the status filter through", func(t *testing.T) {
		store := &stubShelfStore{entries: []entities.ShelfEntry{{ID: 1}}}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodGet, "/api/my/books?status=READING", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, store.gotFilter)
		assert.Equal(t, entities.ReadingStatusReading, *store.gotFilter)

		var resp struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("rejects an unknown status filter", func(t *testing.T) {
		router := newShelfRouter(&stubShelfStore{}, 42)

		w := doJSON(t, router, http.MethodGet, "/api/my/books?status=DNF", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestShelfGet(t *testing.T) {
	t.Run("returns the user's entry", func(t *testing.T) {
		store := &stubShelfStore{entry: &entities.ShelfEntry{ID: 5, Status: entities.ReadingStatusReading}}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodGet, "/api/my/books/5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(42), store.gotUser)
		assert.Equal(t, uint(5), store.gotEntry)

		var resp entities.ShelfEntry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, entities.ReadingStatusReading, resp.Status)
	})

	t.Run("maps another user's entry to not found", func(t *testing.T) {
		store := &stubShelfStore{err: database.ErrNotFound}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodGet, "/api/my/books/5", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestShelfRemove(t *testing.T) {
	t.Run("removes the entry", func(t *testing.T) {
		store := &stubShelfStore{}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodDelete, "/api/my/books/5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(42), store.gotUser)
		assert.Equal(t, uint(5), store.gotEntry)
	})

	t.Run("maps a missing entry to not found", func(t *testing.T) {
		store := &stubShelfStore{err: database.ErrNotFound}
		router := newShelfRouter(store, 42)

		w := doJSON(t, router, http.MethodDelete, "/api/my/books/5", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
