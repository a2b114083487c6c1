package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DashboardController serves the aggregated per-user statistics.
type DashboardController struct {
	provider DashboardProvider
}

// NewDashboardController creates a dashboard controller.
func NewDashboardController(provider DashboardProvider) *DashboardController {
	return &DashboardController{provider: provider}
}

// Get recomputes and returns the user's dashboard.
func (ctrl *DashboardController) Get(c *gin.Context) {
	dashboard, err := ctrl.provider.Dashboard(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "compute dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
