package engine

import (
	"errors"
	"math"
	"strings"
)

// ErrNoSets is returned when a recommendation is requested for an exercise
// with no recorded history. It is the engine's only hard failure.
var ErrNoSets = errors.New("no sets recorded")

const (
	easySetFactor  = 1.025
	failureFactor  = 0.95
	repTrendFactor = 1.01
)

// ruleRecommend derives the deterministic suggestion from the most recent
// set: perceived effort moves the weight, rep count moves toward the target,
// and an improving rep trend over the window earns a small extra bump.
func ruleRecommend(sets []SetObservation, targetReps int) (RuleRecommendation, error) {
	if len(sets) == 0 {
		return RuleRecommendation{}, ErrNoSets
	}

	recent := sets[0]
	baseWeight := recent.Weight
	lastReps := recent.Reps
	lastIntensity := recent.Intensity

	weight := baseWeight
	reps := targetReps

	heldSteady := lastIntensity >= 9 && lastReps < targetReps
	if lastIntensity < 8 {
		weight *= easySetFactor
	} else if heldSteady {
		weight = baseWeight
	}

	failed := float64(lastReps) < 0.5*float64(targetReps)
	if failed {
		weight *= failureFactor
		reps = int(math.Round(float64(lastReps) * 0.8))
		if reps < 1 {
			reps = 1
		}
	} else if lastReps < targetReps {
		reps = lastReps + 1
	}

	// Reward an improving rep trend across the window.
	if len(sets) >= 2 {
		series := make([]float64, len(sets))
		for i, s := range chronological(sets) {
			series[i] = float64(s.Reps)
		}
		mid := len(series) / 2
		if mean(series[mid:]) > mean(series[:mid]) {
			weight *= repTrendFactor
		}
	}

	if !validWeight(weight) {
		weight = baseWeight
	}

	var parts []string
	if lastIntensity < 8 {
		parts = append(parts, "Last set felt easy: small increase suggested.")
	}
	if heldSteady {
		parts = append(parts, "Last set was very hard but target not met: hold weight.")
	}
	if failed {
		parts = append(parts, "Recent failure detected: reduce weight and focus on form.")
	}

	return RuleRecommendation{
		Weight: RoundToPlate(weight),
		Reps:   reps,
		Note:   strings.Join(parts, " "),
	}, nil
}
