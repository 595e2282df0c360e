package engine

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Signal weights for the composite fatigue score. They sum to 1.0 so the
// score stays in [0,1] even when every signal saturates.
const (
	missedDaysWeight = 0.30
	intensityWeight  = 0.30
	recoveryWeight   = 0.20
	calorieWeight    = 0.10
	volumeDropWeight = 0.10

	recentIntensityWindow = 6
	baselineCalories      = 2500
)

// fatigue is the estimator's output plus the two intermediate signals the
// blender reuses (set-count guard and calorie-correlation gate).
type fatigue struct {
	Score              float64
	RecentIntensityAvg float64
	AvgCalories        *float64
}

// assessFatigue scores accumulated training stress over the trailing 7-day
// window ending at asOf. Each signal that cannot be resolved from the
// snapshot is omitted; the score is what the remaining signals support.
func assessFatigue(chron []SetObservation, sessions map[uuid.UUID]SessionInfo, asOf time.Time) fatigue {
	var f fatigue

	windowStart := len(chron) - recentIntensityWindow
	if windowStart < 0 {
		windowStart = 0
	}
	var intensitySum float64
	window := chron[windowStart:]
	for _, s := range window {
		intensitySum += float64(s.Intensity)
	}
	if len(window) > 0 {
		f.RecentIntensityAvg = intensitySum / float64(len(window))
	}

	// Session dates and calories resolve per set, so a session weighs in
	// once for every set it contributed, same as the volume signals.
	var dates []time.Time
	var calories []float64
	for _, s := range chron {
		if s.SessionID == nil {
			continue
		}
		info, ok := sessions[*s.SessionID]
		if !ok {
			continue
		}
		dates = append(dates, info.Date)
		if info.Calories != nil {
			calories = append(calories, float64(*info.Calories))
		}
	}

	var score float64

	if len(dates) > 0 {
		today := dayOf(asOf)
		trained := make(map[time.Time]bool, len(dates))
		last := dayOf(dates[0])
		for _, d := range dates {
			day := dayOf(d)
			trained[day] = true
			if day.After(last) {
				last = day
			}
		}

		missed := 0
		for i := 0; i < 7; i++ {
			if !trained[today.AddDate(0, 0, -i)] {
				missed++
			}
		}
		score += math.Min(1, float64(missed)/7) * missedDaysWeight

		daysSince := int(today.Sub(last).Hours() / 24)
		recFactor := math.Min(7, float64(daysSince)) / 7
		score += (1 - recFactor) * recoveryWeight
	}

	score += clamp01((f.RecentIntensityAvg-6)/4) * intensityWeight

	if len(calories) > 0 {
		avg := mean(calories)
		f.AvgCalories = &avg
		deficit := math.Max(0, (baselineCalories-avg)/1000)
		score += math.Min(1, deficit) * calorieWeight
	}

	score += math.Min(1, volumeDrop(chron)) * volumeDropWeight

	f.Score = clamp01(score)
	return f
}

// volumeDrop compares mean per-session volume across the latest three
// sessions against the three before them. Fewer than six sessions in the
// snapshot is not enough evidence, so the signal reads 0.
func volumeDrop(chron []SetObservation) float64 {
	ids, volumes := groupSessionVolumes(chron)
	if len(ids) < 6 {
		return 0
	}
	means := make([]float64, len(ids))
	for i, id := range ids {
		means[i] = mean(volumes[id])
	}
	recent := mean(means[len(means)-3:])
	prev := mean(means[len(means)-6 : len(means)-3])
	if prev <= 0 {
		return 0
	}
	return math.Max(0, (prev-recent)/prev)
}

// dayOf truncates t to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
