package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/search"
)

// SearchController proxies catalog queries to the external search service.
type SearchController struct {
	client *search.Client
	topK   int
}

// NewSearchController creates a search controller.
func NewSearchController(client *search.Client, topK int) *SearchController {
	return &SearchController{client: client, topK: topK}
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

// Search forwards the query and returns scored matches.
func (ctrl *SearchController) Search(c *gin.Context) {
	if ctrl.client == nil || !ctrl.client.Enabled() {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "search service not configured"})
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "query is required")
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = ctrl.topK
	}

	results, err := ctrl.client.Search(c.Request.Context(), search.Request{Query: req.Query, TopK: topK})
	if err != nil {
		respondInternalError(c, err, "search catalog")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}
