// Package limeblog is the backend for a small personal blog: a JSON HTTP API
// over a file-backed post store, with image uploads and a restricted-markdown
// rendering pipeline.
//
// The static frontend lives outside this module and talks to the API over
// CORS; this package owns ingestion, storage, listing, and safe rendering.
package limeblog

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// App is the central limeblog application. It wires together the repository,
// upload area, ingestion pipeline, middleware, and routes.
type App struct {
	Config Config
	Echo   *echo.Echo

	repo         PostRepository
	images       *ImageStore
	ingestor     *Ingestor
	keyLimiter   *KeyLimiter
	customRoutes []func(*App)
}

// New creates a limeblog App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start initializes the repository, upload area, middleware, and routes, then
// starts the server. It blocks until the server stops.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) init() error {
	if a.repo == nil {
		repo, err := openRepository(a.Config)
		if err != nil {
			return fmt.Errorf("limeblog: init store: %w", err)
		}
		a.repo = repo
	}
	a.images = NewImageStore(a.Config.UploadDir, a.Config.MaxUploadBytes)
	a.ingestor = NewIngestor(a.repo, a.images)
	a.keyLimiter = NewKeyLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func openRepository(cfg Config) (PostRepository, error) {
	switch cfg.StoreDriver {
	case "file":
		return NewFileStore(cfg.DataFile)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Uploaded images, organized per category.
	e.Static("/uploads", a.Config.UploadDir)

	e.GET("/api/health", handleHealth)
	e.GET("/api/posts", a.handleListPosts)
	e.GET("/api/posts/:id", a.handleGetPost)
	e.GET("/api/posts/:id/html", a.handleGetPostHTML)
	e.POST("/api/posts", a.handleCreatePost, a.requireAdminKey)

	e.GET("/feed.xml", a.handleFeed)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.repo != nil {
		return a.repo.Close()
	}
	return nil
}
