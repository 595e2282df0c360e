package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/claude/nextset/internal/engine"
	"github.com/claude/nextset/internal/models"
	"github.com/claude/nextset/internal/storage"
)

// ErrEmptySession is returned when a logged session carries no sets.
var ErrEmptySession = errors.New("session has no sets")

// recommendWindow is how many recent sets feed the post-session
// recommendation for each exercise.
const recommendWindow = 5

// Store is the persistence surface session logging needs.
type Store interface {
	engine.Source
	InsertSession(ctx context.Context, session models.Session, sets []models.Set) ([]models.Set, error)
	SessionDayCount(ctx context.Context, userID uuid.UUID, since, until time.Time) (int, error)
	UpdateSessionMetrics(ctx context.Context, id uuid.UUID, metrics models.SessionMetrics) error
	BestSet(ctx context.Context, userID uuid.UUID, exercise string) (*models.PersonalRecord, error)
}

var _ Store = (*storage.DB)(nil)

// Result holds the outcome of one logged session: the stored rows plus the
// derived metrics and per-exercise recommendations returned to the client.
type Result struct {
	SessionID       uuid.UUID                         `json:"session_id"`
	Date            models.Date                       `json:"date"`
	Calories        *int                              `json:"calories"`
	InsertedSets    []models.Set                      `json:"inserted_sets"`
	PRByExercise    map[string]models.PersonalRecord  `json:"pr_by_exercise"`
	AvgIntensity    float64                           `json:"avg_intensity"`
	MissedDaysLast7 int                               `json:"missed_days_last_7"`
	Recommendations map[string]*engine.Recommendation `json:"recommendations"`
}

// Provider processes logged workout sessions.
type Provider struct {
	db  Store
	eng *engine.Engine
	log *slog.Logger
}

// NewProvider creates a new session ingest provider.
func NewProvider(db Store, eng *engine.Engine, log *slog.Logger) *Provider {
	return &Provider{db: db, eng: eng, log: log}
}

// Ingest stores one workout session and computes its response payload.
// Personal records and recommendations are looked up after the insert, so
// the just-logged sets count toward both.
func (p *Provider) Ingest(ctx context.Context, userID uuid.UUID, req *models.LogSessionRequest) (*Result, error) {
	if len(req.Sets) == 0 {
		return nil, ErrEmptySession
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	session := models.Session{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     date,
		Calories: req.Calories,
		DayType:  req.DayType,
		Finished: req.Finished,
	}

	rows := make([]models.Set, 0, len(req.Sets))
	for _, s := range req.Sets {
		rows = append(rows, models.Set{
			SessionID: &session.ID,
			UserID:    userID,
			Exercise:  s.Exercise,
			SetNumber: s.SetNumber,
			Weight:    s.Weight,
			Reps:      s.Reps,
			Intensity: s.Intensity,
		})
	}

	inserted, err := p.db.InsertSession(ctx, session, rows)
	if err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	result := &Result{
		SessionID:    session.ID,
		Date:         models.Date{Time: date},
		Calories:     req.Calories,
		InsertedSets: inserted,
		AvgIntensity: avgIntensity(req.Sets),
	}

	result.PRByExercise = p.personalRecords(ctx, userID, req.Sets)

	missed, err := p.missedDays(ctx, userID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("counting training days: %w", err)
	}
	result.MissedDaysLast7 = missed

	metrics := models.SessionMetrics{
		PRByExercise:    result.PRByExercise,
		AvgIntensity:    result.AvgIntensity,
		MissedDaysLast7: missed,
	}
	if err := p.db.UpdateSessionMetrics(ctx, session.ID, metrics); err != nil {
		p.log.Warn("storing session metrics failed", "session_id", session.ID, "error", err)
	}

	result.Recommendations = p.recommendations(ctx, userID, req.Sets)
	return result, nil
}

// personalRecords resolves the stored all-time best per exercise in the
// payload. A failed lookup is logged and that exercise omitted.
func (p *Provider) personalRecords(ctx context.Context, userID uuid.UUID, sets []models.SetInput) map[string]models.PersonalRecord {
	prs := make(map[string]models.PersonalRecord)
	seen := map[string]bool{}
	for _, s := range sets {
		if seen[s.Exercise] {
			continue
		}
		seen[s.Exercise] = true

		best, err := p.db.BestSet(ctx, userID, s.Exercise)
		if err != nil {
			p.log.Warn("pr lookup failed", "exercise", s.Exercise, "error", err)
			continue
		}
		if best == nil {
			continue
		}
		prs[s.Exercise] = *best
	}
	return prs
}

// recommendations computes both recommendation paths for each exercise in
// the payload. A failed computation is logged and that exercise omitted.
func (p *Provider) recommendations(ctx context.Context, userID uuid.UUID, sets []models.SetInput) map[string]*engine.Recommendation {
	recs := make(map[string]*engine.Recommendation)
	seen := map[string]bool{}
	for _, s := range sets {
		if seen[s.Exercise] {
			continue
		}
		seen[s.Exercise] = true

		h, err := p.eng.Load(ctx, p.db, userID, s.Exercise, recommendWindow)
		if err != nil {
			p.log.Warn("loading history failed", "exercise", s.Exercise, "error", err)
			continue
		}
		rec, err := p.eng.Recommend(h, engine.DefaultTargetReps)
		if err != nil {
			p.log.Warn("recommendation failed", "exercise", s.Exercise, "error", err)
			continue
		}
		recs[s.Exercise] = rec
	}
	return recs
}

// missedDays counts days without a session over the trailing week ending at
// asOf, inclusive of asOf's day.
func (p *Provider) missedDays(ctx context.Context, userID uuid.UUID, asOf time.Time) (int, error) {
	day := asOf.Truncate(24 * time.Hour)
	trained, err := p.db.SessionDayCount(ctx, userID, day.AddDate(0, 0, -6), day.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}
	missed := 7 - trained
	if missed < 0 {
		missed = 0
	}
	return missed, nil
}

func avgIntensity(sets []models.SetInput) float64 {
	if len(sets) == 0 {
		return 0
	}
	total := 0
	for _, s := range sets {
		total += s.Intensity
	}
	return float64(total) / float64(len(sets))
}
