package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/nextset/internal/engine"
	"github.com/claude/nextset/internal/models"
)

// Session returns date and calorie intake for one session, or nil when the
// id is unknown.
func (db *DB) Session(ctx context.Context, id uuid.UUID) (*engine.SessionInfo, error) {
	var info engine.SessionInfo
	err := db.Pool.QueryRow(ctx,
		`SELECT date, calories FROM sessions WHERE id = $1`,
		id).Scan(&info.Date, &info.Calories)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &info, nil
}

// SessionDayCount counts distinct UTC days with at least one session in the
// half-open range [since, until).
func (db *DB) SessionDayCount(ctx context.Context, userID uuid.UUID, since, until time.Time) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT date_trunc('day', date AT TIME ZONE 'UTC'))
		 FROM sessions
		 WHERE user_id = $1 AND date >= $2 AND date < $3`,
		userID, since, until).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting session days: %w", err)
	}
	return count, nil
}

// UpdateSessionMetrics stores the computed per-session metrics blob.
func (db *DB) UpdateSessionMetrics(ctx context.Context, id uuid.UUID, metrics models.SessionMetrics) error {
	payload, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	if _, err := db.Pool.Exec(ctx,
		`UPDATE sessions SET metrics = $1 WHERE id = $2`,
		payload, id); err != nil {
		return fmt.Errorf("updating session metrics: %w", err)
	}
	return nil
}
