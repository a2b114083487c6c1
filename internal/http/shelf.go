package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/database/shelf"
	"github.com/mrlokans/librarium/internal/entities"
)

// ShelfController serves a user's personal book shelf.
type ShelfController struct {
	store ShelfStore
}

// NewShelfController creates a shelf controller.
func NewShelfController(store ShelfStore) *ShelfController {
	return &ShelfController{store: store}
}

// List returns the user's shelf, optionally filtered by ?status=.
func (ctrl *ShelfController) List(c *gin.Context) {
	var status *entities.ReadingStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := parseReadingStatus(raw)
		if !ok {
			respondBadRequest(c, "status must be one of TO_READ, READING, FINISHED")
			return
		}
		status = &parsed
	}

	entries, err := ctrl.store.ListForUser(GetUserID(c), status)
	if err != nil {
		respondInternalError(c, err, "list shelf")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

// Get returns a single shelf entry with its book preloaded.
func (ctrl *ShelfController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := ctrl.store.GetEntry(GetUserID(c), id)
	if err != nil {
		respondDomainError(c, err, "get shelf entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

type addShelfRequest struct {
	BookID uint   `json:"book_id" binding:"required"`
	Status string `json:"status"`
}

// Add places a book on the shelf, or moves an existing entry to the
// requested status. Defaults to TO_READ.
func (ctrl *ShelfController) Add(c *gin.Context) {
	var req addShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	status := entities.ReadingStatusToRead
	if req.Status != "" {
		parsed, ok := parseReadingStatus(req.Status)
		if !ok {
			respondBadRequest(c, "status must be one of TO_READ, READING, FINISHED")
			return
		}
		status = parsed
	}

	entry, err := ctrl.store.AddOrUpdate(GetUserID(c), req.BookID, status)
	if err != nil {
		respondDomainError(c, err, "add shelf entry")
		return
	}
	respondCreated(c, entry)
}

type patchShelfRequest struct {
	Status          *string `json:"status"`
	Rating          *int    `json:"rating"`
	ProgressPercent *int    `json:"progress_percent"`
}

// Patch applies a partial update. Setting progress to 100 promotes the
// entry to FINISHED.
func (ctrl *ShelfController) Patch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req patchShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	patch := shelf.PatchRequest{
		Rating:          req.Rating,
		ProgressPercent: req.ProgressPercent,
	}
	if req.Status != nil {
		parsed, ok := parseReadingStatus(*req.Status)
		if !ok {
			respondBadRequest(c, "status must be one of TO_READ, READING, FINISHED")
			return
		}
		patch.Status = &parsed
	}

	entry, err := ctrl.store.Patch(GetUserID(c), id, patch)
	if err != nil {
		respondDomainError(c, err, "patch shelf entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Remove deletes a shelf entry. Loans and sessions are untouched.
func (ctrl *ShelfController) Remove(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.store.Remove(GetUserID(c), id); err != nil {
		respondDomainError(c, err, "remove shelf entry")
		return
	}
	respondSuccess(c, "shelf entry removed")
}

func parseReadingStatus(raw string) (entities.ReadingStatus, bool) {
	switch entities.ReadingStatus(raw) {
	case entities.ReadingStatusToRead, entities.ReadingStatusReading, entities.ReadingStatusFinished:
		return entities.ReadingStatus(raw), true
	}
	return "", false
}
