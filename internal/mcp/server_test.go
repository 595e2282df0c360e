package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/nextset/internal/engine"
	"github.com/claude/nextset/internal/ingest"
	"github.com/claude/nextset/internal/models"
)

// fakeData implements DataSource and ingest.Store in memory.
type fakeData struct {
	recent   map[string][]engine.SetObservation
	sessions map[uuid.UUID]engine.SessionInfo
	best     map[string]models.PersonalRecord
	records  map[string]models.PersonalRecord
	inserted []models.Set
	dayCount int
}

func (f *fakeData) RecentSets(_ context.Context, _ uuid.UUID, exercise string, limit int) ([]engine.SetObservation, error) {
	sets := f.recent[exercise]
	if len(sets) > limit {
		sets = sets[:limit]
	}
	return sets, nil
}

func (f *fakeData) Session(_ context.Context, id uuid.UUID) (*engine.SessionInfo, error) {
	info, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (f *fakeData) BestSet(_ context.Context, _ uuid.UUID, exercise string) (*models.PersonalRecord, error) {
	pr, ok := f.best[exercise]
	if !ok {
		return nil, nil
	}
	return &pr, nil
}

func (f *fakeData) PersonalRecords(_ context.Context, _ uuid.UUID) (map[string]models.PersonalRecord, error) {
	return f.records, nil
}

func (f *fakeData) InsertSession(_ context.Context, _ models.Session, sets []models.Set) ([]models.Set, error) {
	out := make([]models.Set, len(sets))
	for i, s := range sets {
		s.ID = int64(i + 1)
		out[i] = s
	}
	f.inserted = out
	return out, nil
}

func (f *fakeData) SessionDayCount(_ context.Context, _ uuid.UUID, _, _ time.Time) (int, error) {
	return f.dayCount, nil
}

func (f *fakeData) UpdateSessionMetrics(_ context.Context, _ uuid.UUID, _ models.SessionMetrics) error {
	return nil
}

var (
	_ DataSource   = (*fakeData)(nil)
	_ ingest.Store = (*fakeData)(nil)
)

func testHandlers(f *fakeData) *handlers {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(engine.DefaultSubstitutions(), log)
	return &handlers{ds: f, eng: eng, sessions: ingest.NewProvider(f, eng, log), log: log}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", result.Content[0])
	}
	return tc.Text
}

// TestUserIDContextRoundTrip verifies the context helpers: Nil without a
// value, the stored id with one.
func TestUserIDContextRoundTrip(t *testing.T) {
	if id := UserIDFromContext(context.Background()); id != uuid.Nil {
		t.Errorf("UserIDFromContext(empty) = %v, want Nil", id)
	}
	userID := uuid.New()
	if id := UserIDFromContext(WithUserID(context.Background(), userID)); id != userID {
		t.Errorf("UserIDFromContext = %v, want %v", id, userID)
	}
}

// TestGetRecommendationNoUser verifies tool calls without an authenticated
// user are rejected.
func TestGetRecommendationNoUser(t *testing.T) {
	h := testHandlers(&fakeData{})
	result, err := h.getRecommendation(context.Background(), callRequest(map[string]any{"exercise": "Bench Press"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result without a user")
	}
}

// TestGetRecommendationNoSets verifies the empty-history message.
func TestGetRecommendationNoSets(t *testing.T) {
	h := testHandlers(&fakeData{})
	ctx := WithUserID(context.Background(), uuid.New())

	result, err := h.getRecommendation(ctx, callRequest(map[string]any{"exercise": "Bench Press"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for empty history")
	}
	if got := textContent(t, result); got != "no sets found for exercise" {
		t.Errorf("message = %q, want %q", got, "no sets found for exercise")
	}
}

// TestGetRecommendation verifies the full payload: both paths plus PR
// context.
func TestGetRecommendation(t *testing.T) {
	f := &fakeData{
		recent: map[string][]engine.SetObservation{
			"Bench Press": {
				{Exercise: "Bench Press", Weight: 100, Reps: 8, Intensity: 7},
				{Exercise: "Bench Press", Weight: 97.5, Reps: 8, Intensity: 7},
			},
		},
		best: map[string]models.PersonalRecord{
			"Bench Press": {Weight: 110, Reps: 5},
		},
	}
	h := testHandlers(f)
	ctx := WithUserID(context.Background(), uuid.New())

	result, err := h.getRecommendation(ctx, callRequest(map[string]any{"exercise": "Bench Press"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, result))
	}

	var payload struct {
		Exercise string                    `json:"exercise"`
		Rule     engine.RuleRecommendation `json:"rule"`
		AI       engine.AIRecommendation   `json:"ai"`
		PRWeight float64                   `json:"pr_weight"`
	}
	if err := json.Unmarshal([]byte(textContent(t, result)), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Exercise != "Bench Press" {
		t.Errorf("exercise = %q, want Bench Press", payload.Exercise)
	}
	if payload.Rule.Weight != 102.5 {
		t.Errorf("rule weight = %v, want 102.5", payload.Rule.Weight)
	}
	if payload.AI.Weight <= 0 {
		t.Errorf("ai weight = %v, want > 0", payload.AI.Weight)
	}
	if payload.PRWeight != 110 {
		t.Errorf("pr weight = %v, want 110", payload.PRWeight)
	}
}

// TestLogSessionTool verifies the stored rows and derived metrics round-trip
// through the tool result.
func TestLogSessionTool(t *testing.T) {
	f := &fakeData{dayCount: 2}
	h := testHandlers(f)
	ctx := WithUserID(context.Background(), uuid.New())

	result, err := h.logSession(ctx, callRequest(map[string]any{
		"sets_json": `[{"exercise":"Squat","set_number":1,"weight":120,"reps":5,"intensity":8}]`,
		"date":      "2025-08-20",
		"calories":  2600,
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, result))
	}

	var res ingest.Result
	if err := json.Unmarshal([]byte(textContent(t, result)), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(res.InsertedSets) != 1 {
		t.Errorf("inserted %d sets, want 1", len(res.InsertedSets))
	}
	if res.MissedDaysLast7 != 5 {
		t.Errorf("missed days = %d, want 5", res.MissedDaysLast7)
	}
	if res.Calories == nil || *res.Calories != 2600 {
		t.Errorf("calories = %v, want 2600", res.Calories)
	}
	if len(f.inserted) != 1 {
		t.Errorf("store recorded %d sets, want 1", len(f.inserted))
	}
}

// TestLogSessionToolBadJSON verifies malformed sets_json is rejected.
func TestLogSessionToolBadJSON(t *testing.T) {
	h := testHandlers(&fakeData{})
	ctx := WithUserID(context.Background(), uuid.New())

	result, err := h.logSession(ctx, callRequest(map[string]any{"sets_json": "{"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for malformed sets_json")
	}
}

// TestGetProgressionTool verifies chronological ordering and the running PR.
func TestGetProgressionTool(t *testing.T) {
	f := &fakeData{
		recent: map[string][]engine.SetObservation{
			"Squat": {
				{Exercise: "Squat", Weight: 125, Reps: 5, Intensity: 8},
				{Exercise: "Squat", Weight: 120, Reps: 5, Intensity: 8},
			},
		},
	}
	h := testHandlers(f)
	ctx := WithUserID(context.Background(), uuid.New())

	result, err := h.getProgression(ctx, callRequest(map[string]any{"exercise": "Squat"}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, result))
	}

	var points []engine.ProgressionPoint
	if err := json.Unmarshal([]byte(textContent(t, result)), &points); err != nil {
		t.Fatalf("decode points: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Weight != 120 {
		t.Errorf("first point weight = %v, want 120", points[0].Weight)
	}
	if points[1].PR != 125 {
		t.Errorf("running pr = %v, want 125", points[1].PR)
	}
}

// TestGetPersonalRecordsTool verifies the per-exercise PR map.
func TestGetPersonalRecordsTool(t *testing.T) {
	f := &fakeData{
		records: map[string]models.PersonalRecord{
			"Deadlift": {Weight: 180, Reps: 3},
		},
	}
	h := testHandlers(f)
	ctx := WithUserID(context.Background(), uuid.New())

	result, err := h.getPersonalRecords(ctx, callRequest(nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", textContent(t, result))
	}

	var records map[string]models.PersonalRecord
	if err := json.Unmarshal([]byte(textContent(t, result)), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if records["Deadlift"].Weight != 180 {
		t.Errorf("deadlift pr = %v, want 180", records["Deadlift"].Weight)
	}
}

// TestSubstitutionsResource verifies the catalog resource payload.
func TestSubstitutionsResource(t *testing.T) {
	h := testHandlers(&fakeData{})
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "nextset://substitutions"

	contents, err := h.substitutions(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents type = %T, want TextResourceContents", contents[0])
	}

	var subs map[string][]string
	if err := json.Unmarshal([]byte(tc.Text), &subs); err != nil {
		t.Fatalf("decode substitutions: %v", err)
	}
	if len(subs["Overhead Press"]) == 0 {
		t.Error("no substitutions for Overhead Press")
	}
}
