package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarium/internal/auth"
)

// RouterConfig carries every dependency the router wires up. A single
// config struct keeps NewRouter testable and its parameter count flat.
type RouterConfig struct {
	Health    *HealthController
	Auth      *auth.Controller
	Books     *BooksController
	Loans     *LoansController
	Shelf     *ShelfController
	Sessions  *SessionsController
	Goals     *GoalsController
	Dashboard *DashboardController
	Search    *SearchController

	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthService    *auth.Service
	CSRFSecret     []byte
	SecureCookies  bool
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	router.GET("/health", cfg.Health.Status)

	if cfg.Auth != nil {
		cfg.Auth.RegisterRoutes(router)
	}

	api := router.Group("/api")
	{
		api.GET("/books", cfg.Books.GetAllBooks)
		api.GET("/books/:id", cfg.Books.GetBook)
		api.POST("/books", cfg.Books.CreateBook)
		api.PUT("/books/:id", cfg.Books.UpdateBook)
		api.DELETE("/books/:id", cfg.Books.DeleteBook)

		api.POST("/loans", cfg.Loans.Borrow)
		api.POST("/loans/:id/return", cfg.Loans.Return)
		api.GET("/loans", cfg.Loans.ListAll)

		my := api.Group("/my")
		{
			my.GET("/loans", cfg.Loans.ListMine)

			my.GET("/books", cfg.Shelf.List)
			my.GET("/books/:id", cfg.Shelf.Get)
			my.POST("/books", cfg.Shelf.Add)
			my.PATCH("/books/:id", cfg.Shelf.Patch)
			my.DELETE("/books/:id", cfg.Shelf.Remove)

			my.GET("/sessions", cfg.Sessions.List)
			my.POST("/sessions", cfg.Sessions.Record)

			my.GET("/goals", cfg.Goals.Get)
			my.PUT("/goals", cfg.Goals.Update)

			my.GET("/dashboard", cfg.Dashboard.Get)
		}

		if cfg.Search != nil {
			api.POST("/search", cfg.Search.Search)
		}
	}

	return router
}
