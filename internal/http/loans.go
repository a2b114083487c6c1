package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/auth"
)

// LoansController serves the borrow/return lifecycle.
type LoansController struct {
	store LoanStore
}

// NewLoansController creates a loans controller.
func NewLoansController(store LoanStore) *LoansController {
	return &LoansController{store: store}
}

type borrowRequest struct {
	BookID  uint   `json:"book_id" binding:"required"`
	DueDate string `json:"due_date" binding:"required"` // YYYY-MM-DD
}

// Borrow checks out a copy for the authenticated user.
func (ctrl *LoansController) Borrow(c *gin.Context) {
	var req borrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id and due_date are required")
		return
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		respondBadRequest(c, "due_date must be a date in YYYY-MM-DD format")
		return
	}

	loan, err := ctrl.store.Borrow(GetUserID(c), req.BookID, dueDate)
	if err != nil {
		respondDomainError(c, err, "borrow book")
		return
	}
	respondCreated(c, loan)
}

// Return marks a loan returned. Repeated calls are no-ops and return the
// loan unchanged.
func (ctrl *LoansController) Return(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := ctrl.store.Return(id)
	if err != nil {
		respondDomainError(c, err, "return loan")
		return
	}
	c.JSON(http.StatusOK, loan)
}

// ListAll returns every loan. Admin only.
func (ctrl *LoansController) ListAll(c *gin.Context) {
	if !auth.IsAdmin(c) {
		respondForbidden(c, "admin role required")
		return
	}

	loans, err := ctrl.store.ListLoans()
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}

// ListMine returns the authenticated user's loans.
func (ctrl *LoansController) ListMine(c *gin.Context) {
	loans, err := ctrl.store.ListLoansForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list user loans")
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans, "count": len(loans)})
}
