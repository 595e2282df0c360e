package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/nextset/internal/engine"
	"github.com/claude/nextset/internal/ingest"
	"github.com/claude/nextset/internal/models"
)

// recommendationFetch is the minimum history window for get_recommendation,
// matching the HTTP endpoint.
const recommendationFetch = 20

// --- Tool definitions ---

var toolGetRecommendation = mcp.NewTool("get_recommendation",
	mcp.WithDescription("Compute the next-load recommendation for an exercise. Returns the rule-based and trend-based suggestions side by side, plus personal-record context."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (e.g. 'Bench Press')")),
	mcp.WithNumber("target_reps", mcp.Description("Rep target for the next session (1-50). Defaults to 10.")),
	mcp.WithNumber("last_n", mcp.Description("How many recent sets to consider (1-50). Defaults to 5.")),
)

var toolLogSession = mcp.NewTool("log_session",
	mcp.WithDescription("Log a workout session. Stores the sets and returns personal records, average intensity, missed training days over the last week, and a per-exercise recommendation."),
	mcp.WithString("sets_json", mcp.Required(), mcp.Description(`JSON array of sets: [{"exercise","set_number","weight","reps","intensity"}]`)),
	mcp.WithString("date", mcp.Description("Session date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithNumber("calories", mcp.Description("Calorie intake for the day")),
	mcp.WithString("day_type", mcp.Description("Training day label (e.g. 'push', 'pull', 'legs')")),
)

var toolGetProgression = mcp.NewTool("get_progression",
	mcp.WithDescription("Chronological set history for an exercise, each point carrying the running personal record and an estimated one-rep max."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithNumber("last_n", mcp.Description("How many recent sets to include (1-200). Defaults to 30.")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Best weight per exercise, with the reps it was lifted for."),
)

// --- Tool handlers ---

func (h *handlers) getRecommendation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	userID := UserIDFromContext(ctx)
	if userID == uuid.Nil {
		return mcp.NewToolResultError("no authenticated user"), nil
	}

	targetReps := req.GetInt("target_reps", engine.DefaultTargetReps)
	if targetReps < 1 || targetReps > 50 {
		return mcp.NewToolResultError("target_reps must be between 1 and 50"), nil
	}
	lastN := req.GetInt("last_n", 5)
	if lastN < 1 || lastN > 50 {
		return mcp.NewToolResultError("last_n must be between 1 and 50"), nil
	}
	fetch := lastN
	if fetch < recommendationFetch {
		fetch = recommendationFetch
	}

	hist, err := h.eng.Load(ctx, h.ds, userID, exercise, fetch)
	if err != nil {
		h.log.Error("mcp get_recommendation", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	rec, err := h.eng.Recommend(hist, targetReps)
	if errors.Is(err, engine.ErrNoSets) {
		return mcp.NewToolResultError("no sets found for exercise"), nil
	}
	if err != nil {
		return mcp.NewToolResultError("recommendation failed: " + err.Error()), nil
	}

	payload := map[string]any{
		"exercise": exercise,
		"rule":     rec.Rule,
		"ai":       rec.AI,
	}
	if best, err := h.ds.BestSet(ctx, userID, exercise); err != nil {
		h.log.Warn("mcp get_recommendation: pr lookup failed", "exercise", exercise, "error", err)
	} else if best != nil {
		payload["pr_weight"] = best.Weight
		if best.Weight > 0 {
			payload["pr_percent_of_recommendation"] = math.Round(rec.Rule.Weight/best.Weight*1000) / 10
		}
	}

	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	setsJSON, err := req.RequireString("sets_json")
	if err != nil {
		return mcp.NewToolResultError("sets_json parameter is required"), nil
	}
	userID := UserIDFromContext(ctx)
	if userID == uuid.Nil {
		return mcp.NewToolResultError("no authenticated user"), nil
	}

	var sets []models.SetInput
	if err := json.Unmarshal([]byte(setsJSON), &sets); err != nil {
		return mcp.NewToolResultError("invalid sets_json: " + err.Error()), nil
	}

	logReq := &models.LogSessionRequest{Sets: sets}
	if raw := req.GetString("date", ""); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			return mcp.NewToolResultError("invalid date: " + err.Error()), nil
		}
		logReq.Date = &models.Date{Time: parsed}
	}
	if cal := req.GetInt("calories", 0); cal > 0 {
		logReq.Calories = &cal
	}
	if dt := req.GetString("day_type", ""); dt != "" {
		logReq.DayType = &dt
	}

	result, err := h.sessions.Ingest(ctx, userID, logReq)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptySession) {
			return mcp.NewToolResultError("session has no sets"), nil
		}
		h.log.Error("mcp log_session", "error", err)
		return mcp.NewToolResultError("logging session failed: " + err.Error()), nil
	}

	out, err := mcp.NewToolResultJSON(result)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return out, nil
}

func (h *handlers) getProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	userID := UserIDFromContext(ctx)
	if userID == uuid.Nil {
		return mcp.NewToolResultError("no authenticated user"), nil
	}
	lastN := req.GetInt("last_n", 30)
	if lastN < 1 || lastN > 200 {
		return mcp.NewToolResultError("last_n must be between 1 and 200"), nil
	}

	hist, err := h.eng.Load(ctx, h.ds, userID, exercise, lastN)
	if err != nil {
		h.log.Error("mcp get_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(h.eng.Progression(hist))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := UserIDFromContext(ctx)
	if userID == uuid.Nil {
		return mcp.NewToolResultError("no authenticated user"), nil
	}

	records, err := h.ds.PersonalRecords(ctx, userID)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
