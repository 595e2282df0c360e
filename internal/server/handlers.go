package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/nextset/internal/engine"
	"github.com/claude/nextset/internal/ingest"
	"github.com/claude/nextset/internal/models"
)

// recommendationFetch is the minimum history window for the recommendation
// endpoint. Small last_n values still fetch this many sets so the trend
// signals have something to work with.
const recommendationFetch = 20

type aiPayload struct {
	Weight              float64  `json:"ai_weight"`
	Reps                int      `json:"ai_reps"`
	Note                string   `json:"ai_note"`
	CaloriesCorrelation *float64 `json:"calories_correlation"`
	FatigueScore        float64  `json:"fatigue_score"`
}

type recommendationResponse struct {
	Exercise          string    `json:"exercise"`
	RecommendedWeight float64   `json:"recommended_weight"`
	RecommendedReps   int       `json:"recommended_reps"`
	Note              string    `json:"note"`
	PRWeight          *float64  `json:"pr_weight"`
	PRPercent         *float64  `json:"pr_percent_of_recommendation"`
	AI                aiPayload `json:"ai_recommendation"`
	FatigueAdjusted   bool      `json:"fatigue_adjusted"`
	RecommendedSets   int       `json:"recommended_sets"`
	Substitutions     []string  `json:"substitutions"`
}

type analyticsSummary struct {
	Exercise     string   `json:"exercise"`
	WeeklyVolume float64  `json:"weekly_volume"`
	BestEstOneRM float64  `json:"best_est_one_rm"`
	VolumeTrend  *float64 `json:"volume_trend"`
}

type analyticsResponse struct {
	Data    []engine.ProgressionPoint `json:"data"`
	Summary analyticsSummary          `json:"summary"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		return
	}

	var req models.LogSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.sessions.Ingest(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptySession) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.log.Error("session ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		return
	}

	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}

	lastN, err := queryInt(r, "last_n", 5, 1, 50)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	feedback, err := queryInt(r, "intensity_feedback", 0, 0, 10)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	targetReps, err := queryInt(r, "target_reps", 10, 1, 50)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	fetch := lastN
	if fetch < recommendationFetch {
		fetch = recommendationFetch
	}
	h, err := s.eng.Load(r.Context(), s.db, userID, exercise, fetch)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	rec, err := s.eng.Recommend(h, targetReps)
	if errors.Is(err, engine.ErrNoSets) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no sets found for exercise"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	weight, note := applyFeedback(rec.Rule, feedback)
	notes := []string{note}
	last := h.Sets[0]
	if last.Intensity < 8 {
		notes = append(notes, "Last set intensity was below 8; consider increasing weight slightly.")
	}
	if float64(last.Reps) < 0.5*float64(targetReps) {
		notes = append(notes, "Last set looked like a failure; reduce weight and focus on form.")
	}

	best, err := s.db.BestSet(r.Context(), userID, exercise)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	var prWeight, prPercent *float64
	if best != nil {
		prWeight = &best.Weight
		if best.Weight > 0 {
			pct := math.Round(weight/best.Weight*1000) / 10
			prPercent = &pct
		}
	}

	writeJSON(w, http.StatusOK, recommendationResponse{
		Exercise:          exercise,
		RecommendedWeight: weight,
		RecommendedReps:   rec.Rule.Reps,
		Note:              strings.Join(notes, " "),
		PRWeight:          prWeight,
		PRPercent:         prPercent,
		AI: aiPayload{
			Weight:              rec.AI.Weight,
			Reps:                rec.AI.Reps,
			Note:                rec.AI.Note,
			CaloriesCorrelation: rec.AI.CaloriesCorrelation,
			FatigueScore:        rec.AI.FatigueScore,
		},
		FatigueAdjusted: rec.AI.FatigueAdjusted,
		RecommendedSets: rec.AI.RecommendedSets,
		Substitutions:   rec.AI.Substitutions,
	})
}

// applyFeedback biases the rule-path weight by the lifter's perceived
// intensity of the previous session and extends the note accordingly.
// The returned weight is plate-rounded.
func applyFeedback(rule engine.RuleRecommendation, feedback int) (float64, string) {
	weight := rule.Weight
	note := rule.Note
	switch {
	case feedback >= 9:
		note += " High perceived intensity; holding weight steady."
	case feedback >= 7:
		weight *= 1.01
		note += " Moderate perceived intensity; small (+1%) increase applied."
	case feedback >= 1 && feedback <= 4:
		weight *= 1.02
		note += " Felt easy; small (+2%) increase applied."
	default:
		note += " No strong perceived-intensity adjustment applied."
	}
	return engine.RoundToPlate(weight), note
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		return
	}

	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}
	lastN, err := queryInt(r, "last_n", 30, 1, 200)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h, err := s.eng.Load(r.Context(), s.db, userID, exercise, lastN)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	points := s.eng.Progression(h)

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	volume, err := s.db.WeeklyVolume(r.Context(), userID, exercise, weekAgo)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	summary := analyticsSummary{
		Exercise:     exercise,
		WeeklyVolume: volume,
		VolumeTrend:  s.eng.VolumeTrend(h),
	}
	for _, p := range points {
		if p.EstOneRM > summary.BestEstOneRM {
			summary.BestEstOneRM = p.EstOneRM
		}
	}

	writeJSON(w, http.StatusOK, analyticsResponse{Data: points, Summary: summary})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		return
	}

	profile, err := s.db.Profile(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if profile == nil {
		p := models.DefaultProfile(userID)
		profile = &p
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
		return
	}

	// Absent fields keep their defaults; the profile is always complete.
	profile := models.DefaultProfile(userID)
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	profile.UserID = userID

	if err := s.db.UpsertProfile(r.Context(), profile); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// queryInt reads an integer query parameter, applying a default when absent
// and rejecting values outside [min, max].
func queryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	return v, nil
}
