package engine

import (
	"time"
)

// ProgressionPoint is one recorded set enriched with its session context, a
// running personal record, and an Epley one-rep-max estimate. Points are
// emitted oldest first for charting.
type ProgressionPoint struct {
	Date      *time.Time `json:"date"`
	Weight    float64    `json:"weight"`
	Reps      int        `json:"reps"`
	Intensity int        `json:"intensity"`
	PR        float64    `json:"pr"`
	Calories  *int       `json:"calories"`
	EstOneRM  float64    `json:"est_one_rm"`
}

// Progression converts a history snapshot into chronological chart points.
// Date and calories stay null for sets whose session could not be resolved.
func (e *Engine) Progression(h History) []ProgressionPoint {
	chron := chronological(h.Sets)
	points := make([]ProgressionPoint, 0, len(chron))
	var pr float64
	for _, s := range chron {
		if s.Weight > pr {
			pr = s.Weight
		}
		p := ProgressionPoint{
			Weight:    s.Weight,
			Reps:      s.Reps,
			Intensity: s.Intensity,
			PR:        pr,
			EstOneRM:  round2(epley(s.Weight, s.Reps)),
		}
		if s.SessionID != nil {
			if info, ok := h.Sessions[*s.SessionID]; ok {
				date := info.Date
				p.Date = &date
				p.Calories = info.Calories
			}
		}
		points = append(points, p)
	}
	return points
}

// VolumeTrend forecasts the next session's mean set volume with double
// exponential smoothing over the per-session means. Nil with fewer than two
// sessions on record.
func (e *Engine) VolumeTrend(h History) *float64 {
	ids, volumes := groupSessionVolumes(chronological(h.Sets))
	if len(ids) < 2 {
		return nil
	}
	series := make([]float64, len(ids))
	for i, id := range ids {
		series[i] = mean(volumes[id])
	}
	next, ok := Holt(series, DefaultHoltAlpha, DefaultHoltBeta, 1)
	if !ok {
		return nil
	}
	next = round2(next)
	return &next
}

// epley estimates a one-rep max from a submaximal set. A single rep is its
// own maximum.
func epley(weight float64, reps int) float64 {
	if reps <= 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}
