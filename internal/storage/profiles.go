package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/nextset/internal/models"
)

// Profile returns the stored profile for a user, or nil when none exists.
func (db *DB) Profile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var p models.UserProfile
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, current_weight_kg, height_cm, ideal_weight_kg, age, sex, theme_color, updated_at
		 FROM user_profiles
		 WHERE user_id = $1`,
		userID).Scan(&p.UserID, &p.CurrentWeightKg, &p.HeightCm, &p.IdealWeightKg,
		&p.Age, &p.Sex, &p.ThemeColor, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

// UpsertProfile inserts or replaces a user's profile.
func (db *DB) UpsertProfile(ctx context.Context, p models.UserProfile) error {
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO user_profiles (user_id, current_weight_kg, height_cm, ideal_weight_kg, age, sex, theme_color, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (user_id) DO UPDATE SET
		   current_weight_kg = EXCLUDED.current_weight_kg,
		   height_cm = EXCLUDED.height_cm,
		   ideal_weight_kg = EXCLUDED.ideal_weight_kg,
		   age = EXCLUDED.age,
		   sex = EXCLUDED.sex,
		   theme_color = EXCLUDED.theme_color,
		   updated_at = now()`,
		p.UserID, p.CurrentWeightKg, p.HeightCm, p.IdealWeightKg,
		p.Age, p.Sex, p.ThemeColor); err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}
