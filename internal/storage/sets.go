package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/nextset/internal/engine"
	"github.com/claude/nextset/internal/models"
)

// InsertSession inserts a session row and its sets in one transaction.
// Returns the inserted set rows with database-assigned ids and timestamps.
func (db *DB) InsertSession(ctx context.Context, session models.Session, sets []models.Set) ([]models.Set, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO sessions (id, user_id, date, calories, day_type, finished)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		session.ID, session.UserID, session.Date, session.Calories,
		session.DayType, session.Finished); err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}

	inserted := make([]models.Set, 0, len(sets))
	if len(sets) > 0 {
		query := `INSERT INTO sets (session_id, user_id, exercise, set_number, weight, reps, intensity) VALUES `
		args := make([]any, 0, len(sets)*7)
		valueStrings := make([]string, 0, len(sets))

		for i, s := range sets {
			base := i * 7
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			))
			args = append(args, s.SessionID, s.UserID, s.Exercise, s.SetNumber,
				s.Weight, s.Reps, s.Intensity)
		}

		query += strings.Join(valueStrings, ",") +
			" RETURNING id, session_id, user_id, exercise, set_number, weight, reps, intensity, created_at"

		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("inserting sets: %w", err)
		}
		for rows.Next() {
			var s models.Set
			if err := rows.Scan(&s.ID, &s.SessionID, &s.UserID, &s.Exercise,
				&s.SetNumber, &s.Weight, &s.Reps, &s.Intensity, &s.CreatedAt); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning inserted set: %w", err)
			}
			inserted = append(inserted, s)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("reading inserted sets: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing session: %w", err)
	}
	return inserted, nil
}

// RecentSets returns the newest sets for one exercise, most recent first.
func (db *DB) RecentSets(ctx context.Context, userID uuid.UUID, exercise string, limit int) ([]engine.SetObservation, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise, set_number, weight, reps, intensity, session_id
		 FROM sets
		 WHERE user_id = $1 AND exercise = $2
		 ORDER BY id DESC
		 LIMIT $3`,
		userID, exercise, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent sets: %w", err)
	}
	defer rows.Close()

	var result []engine.SetObservation
	for rows.Next() {
		var s engine.SetObservation
		if err := rows.Scan(&s.Exercise, &s.SetNumber, &s.Weight, &s.Reps,
			&s.Intensity, &s.SessionID); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// BestSet returns the heaviest set ever logged for an exercise, or nil when
// the exercise has no history. Ties break toward higher reps, then the
// earlier set.
func (db *DB) BestSet(ctx context.Context, userID uuid.UUID, exercise string) (*models.PersonalRecord, error) {
	var pr models.PersonalRecord
	err := db.Pool.QueryRow(ctx,
		`SELECT weight, reps
		 FROM sets
		 WHERE user_id = $1 AND exercise = $2
		 ORDER BY weight DESC, reps DESC, id ASC
		 LIMIT 1`,
		userID, exercise).Scan(&pr.Weight, &pr.Reps)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying best set: %w", err)
	}
	return &pr, nil
}

// PersonalRecords returns the heaviest set per exercise for a user.
func (db *DB) PersonalRecords(ctx context.Context, userID uuid.UUID) (map[string]models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (exercise) exercise, weight, reps
		 FROM sets
		 WHERE user_id = $1
		 ORDER BY exercise, weight DESC, reps DESC, id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	result := make(map[string]models.PersonalRecord)
	for rows.Next() {
		var (
			exercise string
			pr       models.PersonalRecord
		)
		if err := rows.Scan(&exercise, &pr.Weight, &pr.Reps); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		result[exercise] = pr
	}
	return result, rows.Err()
}

// WeeklyVolume returns the summed weight*reps over an exercise's sets whose
// session date falls on or after since. Sets without a session are excluded.
func (db *DB) WeeklyVolume(ctx context.Context, userID uuid.UUID, exercise string, since time.Time) (float64, error) {
	var volume float64
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(s.weight * s.reps), 0)
		 FROM sets s
		 JOIN sessions ses ON ses.id = s.session_id
		 WHERE s.user_id = $1 AND s.exercise = $2 AND ses.date >= $3`,
		userID, exercise, since).Scan(&volume)
	if err != nil {
		return 0, fmt.Errorf("querying weekly volume: %w", err)
	}
	return volume, nil
}
