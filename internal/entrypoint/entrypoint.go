package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/librarium/internal/auth"
	"github.com/mrlokans/librarium/internal/clock"
	"github.com/mrlokans/librarium/internal/config"
	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/database/goals"
	"github.com/mrlokans/librarium/internal/database/loans"
	"github.com/mrlokans/librarium/internal/database/sessions"
	"github.com/mrlokans/librarium/internal/database/shelf"
	http_controllers "github.com/mrlokans/librarium/internal/http"
	"github.com/mrlokans/librarium/internal/scheduler"
	"github.com/mrlokans/librarium/internal/search"
	"github.com/mrlokans/librarium/internal/stats"
	"github.com/mrlokans/librarium/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 1 second.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscanll.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall. SIGKILL but can"t be catch, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarium v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	clk := clock.System{}

	// Repositories share the single gorm handle
	booksRepo := books.NewRepository(db.DB)
	loansRepo := loans.NewRepository(db.DB, clk)
	shelfRepo := shelf.NewRepository(db.DB, clk)
	sessionsRepo := sessions.NewRepository(db.DB, shelfRepo, clk)
	goalsRepo := goals.NewRepository(db.DB)

	aggregator := stats.NewAggregator(shelfRepo, sessionsRepo, goalsRepo, clk)

	// External semantic search; nil client disables the endpoints
	var searchClient *search.Client
	if cfg.Search.BaseURL != "" {
		searchClient = search.NewClient(cfg.Search.BaseURL, cfg.Search.Timeout)
		log.Printf("Search service configured at %s", cfg.Search.BaseURL)
	} else {
		log.Printf("Search service not configured, catalog search disabled")
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues. Indexing only makes sense with a
		// search backend to index into.
		if searchClient != nil {
			taskClient.Register(
				tasks.NewIndexBookQueue(booksRepo, searchClient),
			)
		}

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic overdue loan sweep
	var sweep *scheduler.OverdueSweep
	if cfg.Scheduler.OverdueSweepEnabled {
		sweep = scheduler.NewOverdueSweep(loansRepo, clk, cfg.Scheduler)
		if err := sweep.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start overdue sweep: %v", err)
		}
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var authController *auth.Controller
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		authController = auth.NewController(authService, sessionManager)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. POST /api/auth/register to create the first account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
		if _, err := db.EnsureDefaultUser(auth.DefaultUserID); err != nil {
			log.Fatalf("Failed to create default user: %v", err)
		}
	}

	var enqueuer http_controllers.TaskEnqueuer
	if taskClient != nil && searchClient != nil {
		enqueuer = taskClient
	}

	routerCfg := http_controllers.RouterConfig{
		Health:    http_controllers.NewHealthController(db, version),
		Auth:      authController,
		Books:     http_controllers.NewBooksController(booksRepo, enqueuer),
		Loans:     http_controllers.NewLoansController(loansRepo),
		Shelf:     http_controllers.NewShelfController(shelfRepo),
		Sessions:  http_controllers.NewSessionsController(sessionsRepo),
		Goals:     http_controllers.NewGoalsController(goalsRepo),
		Dashboard: http_controllers.NewDashboardController(aggregator),
		Search:    http_controllers.NewSearchController(searchClient, cfg.Search.TopK),

		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		AuthService:    authService,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if sweep != nil {
			sweep.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
