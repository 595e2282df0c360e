package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a row ready for insertion into the sessions table.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Date      time.Time
	Calories  *int
	DayType   *string
	Finished  bool
	CreatedAt time.Time
}

// Set is a single recorded working set. Rows come back from inserts with
// their assigned id, which doubles as the recency order for an exercise.
type Set struct {
	ID        int64      `json:"id"`
	SessionID *uuid.UUID `json:"session_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Exercise  string     `json:"exercise"`
	SetNumber int        `json:"set_number"`
	Weight    float64    `json:"weight"`
	Reps      int        `json:"reps"`
	Intensity int        `json:"intensity"`
	CreatedAt time.Time  `json:"created_at"`
}

// SetInput is one set row in a session-logging request.
type SetInput struct {
	Exercise  string  `json:"exercise"`
	SetNumber int     `json:"set_number"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Intensity int     `json:"intensity"`
}

// LogSessionRequest is the body of POST /api/v1/sessions. Calories stays nil
// when the client did not record intake; the engine treats that as absent
// data rather than a zero-calorie day.
type LogSessionRequest struct {
	Date     *Date      `json:"date,omitempty"`
	Calories *int       `json:"calories,omitempty"`
	DayType  *string    `json:"day_type,omitempty"`
	Finished bool       `json:"finished,omitempty"`
	Sets     []SetInput `json:"sets"`
}

// PersonalRecord is the heaviest recorded set for an exercise.
type PersonalRecord struct {
	Weight float64 `json:"pr_weight"`
	Reps   int     `json:"pr_reps"`
}

// SessionMetrics is the summary patched onto a session row after logging.
type SessionMetrics struct {
	PRByExercise    map[string]PersonalRecord `json:"pr_by_exercise"`
	AvgIntensity    float64                   `json:"avg_intensity"`
	MissedDaysLast7 int                       `json:"missed_days_last_7"`
}

// UserProfile holds a lifter's body stats and UI preferences.
type UserProfile struct {
	UserID          uuid.UUID `json:"user_id"`
	CurrentWeightKg float64   `json:"current_weight_kg"`
	HeightCm        float64   `json:"height_cm"`
	IdealWeightKg   float64   `json:"ideal_weight_kg"`
	Age             int       `json:"age"`
	Sex             string    `json:"sex"`
	ThemeColor      string    `json:"theme_color"`
	UpdatedAt       time.Time `json:"-"`
}

// DefaultProfile returns the profile served before a user stores their own.
// Updates that omit fields also fall back to these values.
func DefaultProfile(userID uuid.UUID) UserProfile {
	return UserProfile{
		UserID:          userID,
		CurrentWeightKg: 70,
		HeightCm:        175,
		IdealWeightKg:   85,
		Age:             25,
		Sex:             "male",
		ThemeColor:      "#ff2f54",
	}
}
