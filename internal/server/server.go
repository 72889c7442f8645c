// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects stores, services, handlers
// and middleware, and decides:
//   - Which URL patterns map to which handler functions
//   - Which routes sit behind the authentication gate
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → OpenStore → repository.Store
//	Store.Users() → AuthService → AuthHandler
//	Store.Notes() → NoteService → NotesHandler
//	llm.Client    → StudyService → StudyHandler
//	pdf.Renderer  → ExportHandler
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (NewWithStore) rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/study-buddy/internal/auth"
	"github.com/sakif/study-buddy/internal/config"
	"github.com/sakif/study-buddy/internal/handler"
	"github.com/sakif/study-buddy/internal/llm"
	"github.com/sakif/study-buddy/internal/middleware"
	"github.com/sakif/study-buddy/internal/pdf"
	"github.com/sakif/study-buddy/internal/repository"
	"github.com/sakif/study-buddy/internal/repository/postgres"
	sqliteRepo "github.com/sakif/study-buddy/internal/repository/sqlite"
	"github.com/sakif/study-buddy/internal/service"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second // LLM calls and PDF rendering can be slow
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store. When Start returns, the store is closed after
// in-flight requests have drained.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// OpenStore connects to the backend named by the database URL and runs its
// migrations. postgres:// URLs open PostgreSQL; anything else is SQLite.
func OpenStore(ctx context.Context, db config.Database) (repository.Store, error) {
	if db.IsPostgres() {
		store, err := postgres.New(ctx, db.URL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return store, nil
	}

	if dir := sqliteDir(db.URL); dir != "" {
		// os.MkdirAll is `mkdir -p`; 0755 = owner rwx, others r-x.
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	store, err := sqliteRepo.New(ctx, db.URL)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	return store, nil
}

// sqliteDir returns the directory holding a file-backed SQLite DSN, or ""
// for in-memory databases and bare file names.
func sqliteDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	path, _, _ = strings.Cut(path, "?")
	if path == "" || strings.Contains(path, ":memory:") || strings.HasPrefix(dsn, "file::") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

// New opens the configured store and builds a Server around it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	s, err := NewWithStore(cfg, store, logger)
	if err != nil {
		store.Close() // Clean up the store if wiring fails
		return nil, err
	}
	return s, nil
}

// NewWithStore wires services and routes around an already-open store. The
// Server takes ownership of store and closes it when Start returns.
func NewWithStore(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler returns the root handler. Tests drive it without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST /signup        → create account              (public)
//	POST /login         → obtain a bearer token       (public)
//	POST /ask-ai        → one-shot tutor question     (public)
//	GET  /healthz       → store liveness              (public)
//	GET  /me            → current user profile        (auth)
//	GET  /notes         → read the caller's note      (auth)
//	POST /notes         → replace the caller's note   (auth)
//	POST /chat          → multi-turn assistant        (auth)
//	POST /generate-quiz → five-question quiz          (auth)
//	POST /download-pdf  → topic and content as PDF    (auth)
//	GET  /*             → static frontend, if STATIC_DIR is set
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns a unique ID to each request (for tracing)
//  2. RealIP: extracts the real client IP from proxy headers
//  3. Logger: logs each request with timing info and the request ID
//  4. Recoverer: catches panics and returns 500 instead of crashing
//  5. CORS: answers preflight requests from the browser frontend
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWT.Secret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// A nil Completer makes the AI routes answer 503. The interface must stay
	// untyped nil, so the client is only assigned when configured.
	var completer service.Completer
	if s.config.LLM.Enabled() {
		completer = llm.New(s.config.LLM.APIKey, s.config.LLM.BaseURL, s.config.LLM.Model, s.config.LLM.Timeout)
	} else {
		s.logger.Warn("LLM_API_KEY not set, AI routes will answer 503")
	}

	authService := service.NewAuthService(s.store.Users(), tokens, passwords, s.logger)
	noteService := service.NewNoteService(s.store.Notes(), s.logger)
	studyService := service.NewStudyService(completer, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	notesHandler := handler.NewNotesHandler(noteService, s.logger)
	studyHandler := handler.NewStudyHandler(studyService, s.logger)
	exportHandler := handler.NewExportHandler(pdf.NewRenderer("study-buddy"), s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// === Public Routes ===
	s.router.Post("/signup", authHandler.HandleSignup)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Post("/ask-ai", studyHandler.HandleAsk)
	s.router.Get("/healthz", healthHandler.HandleHealth)

	// === Protected Routes ===
	// Group shares the router's path space but applies its middleware only
	// to the routes registered inside it.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens, s.logger))

		r.Get("/me", authHandler.HandleMe)
		r.Get("/notes", notesHandler.HandleGet)
		r.Post("/notes", notesHandler.HandleSave)
		r.Post("/chat", studyHandler.HandleChat)
		r.Post("/generate-quiz", studyHandler.HandleQuiz)
		r.Post("/download-pdf", exportHandler.HandleDownloadPDF)
	})

	// === Static Files ===
	// Registered last so API routes always win over same-named files.
	if s.config.StaticDir != "" {
		info, err := os.Stat(s.config.StaticDir)
		if err != nil {
			return fmt.Errorf("static dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("static dir %s is not a directory", s.config.StaticDir)
		}
		s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}

	return nil
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the store (flushes the SQLite WAL, releases pool connections)
func (s *Server) Start(ctx context.Context) error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("postgres", s.config.Database.IsPostgres()),
			slog.Bool("llm", s.config.LLM.Enabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
