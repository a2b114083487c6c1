package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionsController serves the reading session ledger.
type SessionsController struct {
	store SessionStore
}

// NewSessionsController creates a sessions controller.
func NewSessionsController(store SessionStore) *SessionsController {
	return &SessionsController{store: store}
}

type recordSessionRequest struct {
	BookID      uint   `json:"book_id" binding:"required"`
	SessionDate string `json:"session_date" binding:"required"` // YYYY-MM-DD
	MinutesRead int    `json:"minutes_read" binding:"required,min=1"`
	PagesRead   int    `json:"pages_read" binding:"min=0"`
	Note        string `json:"note"`
}

// Record appends a session for the authenticated user.
func (ctrl *SessionsController) Record(c *gin.Context) {
	var req recordSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id, session_date and minutes_read (>= 1) are required")
		return
	}

	date, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		respondBadRequest(c, "session_date must be a date in YYYY-MM-DD format")
		return
	}

	session, err := ctrl.store.Record(GetUserID(c), req.BookID, date, req.MinutesRead, req.PagesRead, req.Note)
	if err != nil {
		respondDomainError(c, err, "record session")
		return
	}
	respondCreated(c, session)
}

// List returns the user's sessions, optionally bounded by ?from= and ?to=
// (inclusive, both required for the filter to apply).
func (ctrl *SessionsController) List(c *gin.Context) {
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	sessions, err := ctrl.store.List(GetUserID(c), from, to)
	if err != nil {
		respondInternalError(c, err, "list sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}
