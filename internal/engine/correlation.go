package engine

import (
	"math"

	"github.com/google/uuid"
)

// groupSessionVolumes buckets per-set volume (weight times reps) by session,
// preserving the order in which each session first appears in the
// chronological series. Sets without a session are skipped.
func groupSessionVolumes(chron []SetObservation) ([]uuid.UUID, map[uuid.UUID][]float64) {
	var ids []uuid.UUID
	volumes := make(map[uuid.UUID][]float64)
	for _, s := range chron {
		if s.SessionID == nil {
			continue
		}
		id := *s.SessionID
		if _, seen := volumes[id]; !seen {
			ids = append(ids, id)
		}
		volumes[id] = append(volumes[id], s.Weight*float64(s.Reps))
	}
	return ids, volumes
}

// sessionCorrelation relates per-session calorie intake to per-session mean
// volume. A session whose calories are unrecorded (or whose lookup failed)
// counts as 0 intake. Returns nil with fewer than two sessions.
func sessionCorrelation(chron []SetObservation, sessions map[uuid.UUID]SessionInfo) *float64 {
	ids, volumes := groupSessionVolumes(chron)
	if len(ids) < 2 {
		return nil
	}

	vols := make([]float64, len(ids))
	cals := make([]float64, len(ids))
	for i, id := range ids {
		vols[i] = mean(volumes[id])
		if info, ok := sessions[id]; ok && info.Calories != nil {
			cals[i] = float64(*info.Calories)
		}
	}
	return pearson(cals, vols)
}

// pearson computes the correlation coefficient between x and y. Returns nil
// with fewer than two points or mismatched lengths. A zero-variance series
// yields exactly 0 under the symmetric denominator, never an error.
func pearson(x, y []float64) *float64 {
	if len(x) < 2 || len(x) != len(y) {
		return nil
	}
	meanX := mean(x)
	meanY := mean(y)
	var num, denX, denY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}
	den := math.Sqrt(denX * denY)
	r := 0.0
	if den != 0 {
		r = num / den
	}
	return &r
}
