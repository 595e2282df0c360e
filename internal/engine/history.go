package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SetObservation is one performed set as the engine sees it. Observations
// arrive most-recent-first; slice position is the only recency key.
type SetObservation struct {
	Exercise  string
	SetNumber int
	Weight    float64
	Reps      int
	Intensity int
	SessionID *uuid.UUID
}

// SessionInfo is the slice of a workout session the engine reads: when it
// happened and, if recorded, that day's calorie intake.
type SessionInfo struct {
	Date     time.Time
	Calories *int
}

// History is the immutable snapshot one Recommend call consumes. Sessions
// may be missing entries and PRWeights may be nil; the affected signals are
// omitted rather than failing the computation.
type History struct {
	Exercise  string
	Sets      []SetObservation
	Sessions  map[uuid.UUID]SessionInfo
	PRWeights []float64
	AsOf      time.Time
}

// Source is the read-only data access used to assemble a History.
// Implementations must return sets most-recent-first.
type Source interface {
	RecentSets(ctx context.Context, userID uuid.UUID, exercise string, limit int) ([]SetObservation, error)
	Session(ctx context.Context, id uuid.UUID) (*SessionInfo, error)
}

// prWindow is how many recent weights feed the personalization slope.
const prWindow = 12

// Load assembles the snapshot for one (user, exercise) pair. Only the primary
// set fetch can fail the load. Session and PR lookups fold in as explicitly
// absent values instead: partial snapshots are expected, and the engine
// degrades signal by signal.
func (e *Engine) Load(ctx context.Context, src Source, userID uuid.UUID, exercise string, limit int) (History, error) {
	sets, err := src.RecentSets(ctx, userID, exercise, limit)
	if err != nil {
		return History{}, fmt.Errorf("fetching recent sets: %w", err)
	}

	h := History{
		Exercise: exercise,
		Sets:     sets,
		Sessions: make(map[uuid.UUID]SessionInfo),
		AsOf:     time.Now().UTC(),
	}

	for _, s := range sets {
		if s.SessionID == nil {
			continue
		}
		id := *s.SessionID
		if _, seen := h.Sessions[id]; seen {
			continue
		}
		info, err := src.Session(ctx, id)
		if err != nil {
			e.log.Debug("session lookup failed", "session_id", id, "error", err)
			continue
		}
		if info == nil {
			continue
		}
		h.Sessions[id] = *info
	}

	if pr, err := src.RecentSets(ctx, userID, exercise, prWindow); err == nil {
		h.PRWeights = make([]float64, len(pr))
		for i, s := range pr {
			h.PRWeights[i] = s.Weight
		}
	} else {
		e.log.Debug("pr history lookup failed", "exercise", exercise, "error", err)
	}

	return h, nil
}

// chronological returns a copy of sets in oldest-first order.
func chronological(sets []SetObservation) []SetObservation {
	out := make([]SetObservation, len(sets))
	for i, s := range sets {
		out[len(sets)-1-i] = s
	}
	return out
}
