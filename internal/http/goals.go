package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GoalsController serves the user's reading targets.
type GoalsController struct {
	store GoalStore
}

// NewGoalsController creates a goals controller.
func NewGoalsController(store GoalStore) *GoalsController {
	return &GoalsController{store: store}
}

// Get returns the user's goals, materializing the defaults on first read.
func (ctrl *GoalsController) Get(c *gin.Context) {
	goal, err := ctrl.store.GetOrCreate(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "get goals")
		return
	}
	c.JSON(http.StatusOK, goal)
}

type updateGoalsRequest struct {
	BooksPerMonth int `json:"books_per_month" binding:"required,min=1"`
	MinutesPerDay int `json:"minutes_per_day" binding:"required,min=1"`
}

// Update sets the user's goals.
func (ctrl *GoalsController) Update(c *gin.Context) {
	var req updateGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "books_per_month and minutes_per_day must be at least 1")
		return
	}

	goal, err := ctrl.store.Update(GetUserID(c), req.BooksPerMonth, req.MinutesPerDay)
	if err != nil {
		respondDomainError(c, err, "update goals")
		return
	}
	c.JSON(http.StatusOK, goal)
}
