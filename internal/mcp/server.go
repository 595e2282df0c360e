package mcp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/nextset/internal/engine"
	"github.com/claude/nextset/internal/ingest"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user id injected by the transport layer.
// Returns uuid.Nil when no user is set; handlers treat that as unauthorized.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithUserID returns a context carrying the given user id.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, eng *engine.Engine, sessions *ingest.Provider, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("nextset", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("nextset training server. Log workout sessions, get next-load recommendations, and query progression history. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, eng: eng, sessions: sessions, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetRecommendation, Handler: h.getRecommendation},
		server.ServerTool{Tool: toolLogSession, Handler: h.logSession},
		server.ServerTool{Tool: toolGetProgression, Handler: h.getProgression},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resSubstitutions, Handler: h.substitutions},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds       DataSource
	eng      *engine.Engine
	sessions *ingest.Provider
	log      *slog.Logger
}

// --- Resource definitions ---

var resSubstitutions = mcp.NewResource(
	"nextset://substitutions",
	"Exercise Substitutions",
	mcp.WithResourceDescription("Alternative exercises suggested alongside each recommendation"),
	mcp.WithMIMEType("application/json"),
)
