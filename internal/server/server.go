package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/nextset/internal/engine"
	"github.com/claude/nextset/internal/ingest"
	"github.com/claude/nextset/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        *storage.DB
	eng       *engine.Engine
	sessions  *ingest.Provider
	jwtSecret string
	log       *slog.Logger
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, eng *engine.Engine, sessions *ingest.Provider, jwtSecret string, log *slog.Logger) *Server {
	s := &Server{
		db:        db,
		eng:       eng,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		log:       log,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(s.jwtSecret))
		r.Post("/sessions", s.handleLogSession)
		r.Get("/recommendation", s.handleRecommendation)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/profile", s.handleProfile)
		r.Put("/profile", s.handleUpdateProfile)
	})
}

// SetMCP mounts the MCP handler under /mcp. The handler shares the API's
// bearer auth so tool calls carry the same user identity.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Group(func(r chi.Router) {
		r.Use(BearerAuth(s.jwtSecret))
		r.Mount("/mcp", h)
	})
}
