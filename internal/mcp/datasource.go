package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/claude/nextset/internal/engine"
	"github.com/claude/nextset/internal/models"
	"github.com/claude/nextset/internal/storage"
)

// DataSource abstracts the data layer for MCP tools.
type DataSource interface {
	engine.Source
	BestSet(ctx context.Context, userID uuid.UUID, exercise string) (*models.PersonalRecord, error)
	PersonalRecords(ctx context.Context, userID uuid.UUID) (map[string]models.PersonalRecord, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
