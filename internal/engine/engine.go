// Package engine computes next-training-load recommendations from a lifter's
// recent set history. It is a pure computation over an immutable snapshot:
// all data access happens up front in Load, and Recommend never blocks.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Recommendation is the full output for one exercise: the deterministic rule
// path and the blended statistical path, side by side. Neither depends on the
// other's result.
type Recommendation struct {
	Rule RuleRecommendation `json:"rule"`
	AI   AIRecommendation   `json:"ai"`
}

// RuleRecommendation is the heuristic suggestion derived from the most recent
// set (plus a rep-trend check over the window).
type RuleRecommendation struct {
	Weight float64 `json:"recommended_weight"`
	Reps   int     `json:"recommended_reps"`
	Note   string  `json:"note"`
}

// AIRecommendation is the blended suggestion: forecast, then fatigue and
// calorie-correlation penalties, then the personal-record trend factor.
type AIRecommendation struct {
	Weight              float64  `json:"ai_weight"`
	Reps                int      `json:"ai_reps"`
	Note                string   `json:"ai_note"`
	FatigueAdjusted     bool     `json:"fatigue_adjusted"`
	FatigueScore        float64  `json:"fatigue_score"`
	CaloriesCorrelation *float64 `json:"calories_correlation,omitempty"`
	RecommendedSets     int      `json:"recommended_sets"`
	Substitutions       []string `json:"substitutions"`
}

const (
	// DefaultTargetReps is used when a caller does not name a rep target.
	DefaultTargetReps = 10

	fatigueReduceThreshold = 0.45
	corrPenaltyThreshold   = 0.3
	lowCalorieLine         = 2200

	defaultAINote = "Trend-based AI suggestion"
)

// Engine produces recommendations. Construct with New; the substitution
// catalog must not be mutated afterwards.
type Engine struct {
	subs Substitutions
	log  *slog.Logger
}

// New creates an Engine with the given substitution catalog.
func New(subs Substitutions, log *slog.Logger) *Engine {
	return &Engine{subs: subs, log: log}
}

// Substitutions returns the active substitution catalog.
func (e *Engine) Substitutions() Substitutions {
	return e.subs
}

// Recommend computes both recommendation paths for the snapshot. The only
// failure is ErrNoSets on an empty history; every other missing signal
// degrades to a neutral contribution.
func (e *Engine) Recommend(h History, targetReps int) (*Recommendation, error) {
	if targetReps <= 0 {
		targetReps = DefaultTargetReps
	}

	rule, err := ruleRecommend(h.Sets, targetReps)
	if err != nil {
		return nil, err
	}

	chron := chronological(h.Sets)
	weights := make([]float64, len(chron))
	reps := make([]float64, len(chron))
	for i, s := range chron {
		weights[i] = s.Weight
		reps[i] = float64(s.Reps)
	}
	lastWeight := weights[len(weights)-1]

	aiWeight := round2(forecastWeight(weights))
	aiReps := forecastReps(reps, targetReps)

	var noteParts []string
	fatigued := false

	fat := assessFatigue(chron, h.Sessions, h.AsOf)
	if fat.Score > fatigueReduceThreshold {
		aiWeight *= math.Max(0.85, 1-fat.Score*0.12)
		fatigued = true
		noteParts = append(noteParts, fmt.Sprintf("Fatigue predicted (score %.2f); reducing load.", fat.Score))
	}

	corr := sessionCorrelation(chron, h.Sessions)
	if corr != nil && *corr > corrPenaltyThreshold && fat.AvgCalories != nil && *fat.AvgCalories < lowCalorieLine {
		aiWeight *= 0.97
		noteParts = append(noteParts, "Low calories correlated with lower performance; modest reduction applied.")
	}

	if !validWeight(aiWeight) {
		aiWeight = lastWeight
	}

	aiWeight = RoundToPlate(aiWeight * personalAggression(h.PRWeights))

	note := defaultAINote
	if len(noteParts) > 0 {
		note = strings.Join(noteParts, " ")
	}

	var corrOut *float64
	if corr != nil {
		v := round3(*corr)
		corrOut = &v
	}

	return &Recommendation{
		Rule: rule,
		AI: AIRecommendation{
			Weight:              aiWeight,
			Reps:                aiReps,
			Note:                note,
			FatigueAdjusted:     fatigued,
			FatigueScore:        round3(fat.Score),
			CaloriesCorrelation: corrOut,
			RecommendedSets:     recommendSets(len(chron), fat.RecentIntensityAvg, fat.Score),
			Substitutions:       e.subs.Lookup(h.Exercise),
		},
	}, nil
}

// recommendSets starts from the observed set count and moves by at most one:
// up when recent work felt light and fatigue is low, down when fatigue is
// high. The two guards cannot both hold.
func recommendSets(observed int, recentIntensityAvg, fatigueScore float64) int {
	n := observed
	if n < 1 {
		n = 1
	}
	if n > 8 {
		n = 8
	}
	switch {
	case recentIntensityAvg < 6 && fatigueScore < 0.25:
		if n < 8 {
			n++
		}
	case fatigueScore > 0.6:
		if n > 1 {
			n--
		}
	}
	return n
}

// personalAggression sizes the final nudge by the lifter's recent trajectory.
// prWeights is most-recent-first, so a positive slope means recent loads
// exceed older ones. Fewer than three observations is too noisy to act on.
func personalAggression(prWeights []float64) float64 {
	if len(prWeights) < 3 {
		return 1.0
	}
	slope := (prWeights[0] - prWeights[len(prWeights)-1]) / float64(len(prWeights))
	switch {
	case slope > 0.01:
		return 1.02
	case slope < -0.02:
		return 0.98
	}
	return 1.0
}
