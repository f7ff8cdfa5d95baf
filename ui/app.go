package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cardstock/internal/config"
	"cardstock/internal/session"
	"cardstock/internal/store"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// maxUploadSize caps uploaded spreadsheet files at 50MB.
const maxUploadSize = 50 * 1024 * 1024

// App represents the UI application
type App struct {
	router     *chi.Mux
	controller *session.Controller
	hub        *Hub
	archive    *store.Archive
	templates  *template.Template
	cfg        *config.Config
}

// NewApp creates a new UI application
func NewApp(cfg *config.Config, controller *session.Controller, hub *Hub, archive *store.Archive, templates *template.Template) *App {
	app := &App{
		router:     chi.NewRouter(),
		controller: controller,
		hub:        hub,
		archive:    archive,
		templates:  templates,
		cfg:        cfg,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app
}

// ParseTemplates parses the embedded page and fragment templates.
func ParseTemplates() (*template.Template, error) {
	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Main pages
	a.router.Get("/", a.handleIndex)
	a.router.Get("/help", a.handleHelp)

	// Live view events
	a.router.Get("/events", a.hub.HandleSSE)

	// API endpoints
	a.router.Post("/api/upload", a.handleUpload)
	a.router.Post("/api/columns/confirm", a.handleConfirmColumns)
	a.router.Get("/api/state", a.handleState)
	a.router.Post("/api/search", a.handleSearch)
	a.router.Post("/api/scope", a.handleScope)
	a.router.Post("/api/cards/more", a.handleLoadMore)
	a.router.Post("/api/view/refresh", a.handleRefresh)
	a.router.Post("/api/clear", a.handleClear)

	// Static assets under a version tag; bumping the tag evicts prior
	// browser cache entries.
	staticRoot, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		log.Fatalf("[App] Embedded static assets missing: %v", err)
	}
	prefix := "/static/" + a.cfg.Server.AssetVersion + "/"
	a.router.Handle(prefix+"*", a.cacheForever(http.StripPrefix(prefix, http.FileServer(http.FS(staticRoot)))))
}

// cacheForever marks versioned static assets as immutable.
func (a *App) cacheForever(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server.
func (a *App) Start() error {
	addr := ":" + a.cfg.Server.Port
	log.Printf("[App] Listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the router for tests.
func (a *App) Router() http.Handler {
	return a.router
}
