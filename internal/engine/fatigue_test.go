package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// buildDays creates one single-set session per calendar day offset from asOf,
// returning the chronological sets and the resolved session map.
func buildDays(asOf time.Time, weight float64, reps, intensity int, calories *int, dayOffsets ...int) ([]SetObservation, map[uuid.UUID]SessionInfo) {
	sets := make([]SetObservation, 0, len(dayOffsets))
	sessions := make(map[uuid.UUID]SessionInfo, len(dayOffsets))
	for _, off := range dayOffsets {
		id := uuid.New()
		sid := id
		sets = append(sets, SetObservation{Weight: weight, Reps: reps, Intensity: intensity, SessionID: &sid})
		sessions[id] = SessionInfo{Date: asOf.AddDate(0, 0, off), Calories: calories}
	}
	return sets, sessions
}

func intPtr(v int) *int { return &v }

// TestFatigueMissedDays verifies the missed-days and recovery signals: a
// session on each of the last seven days leaves only the same-day recovery
// deficit, while a stale history maxes out missed days with full recovery.
func TestFatigueMissedDays(t *testing.T) {
	asOf := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// intensity 6 zeroes the pressure term, no calories recorded
	daily, dailySessions := buildDays(asOf, 100, 10, 6, nil, -6, -5, -4, -3, -2, -1, 0)
	f := assessFatigue(daily, dailySessions, asOf)
	// missed 0, recovery deficit 1.0 (trained today), volume needs no drop
	almostEqual(t, f.Score, 0.20, 1e-9, "daily training score")

	stale, staleSessions := buildDays(asOf, 100, 10, 6, nil, -10)
	f = assessFatigue(stale, staleSessions, asOf)
	// all 7 days missed, fully recovered after 10 days off
	almostEqual(t, f.Score, 0.30, 1e-9, "stale history score")
}

// TestFatigueIntensityPressure verifies the mapping of recent mean intensity
// onto the pressure term, including its clamp at both ends.
func TestFatigueIntensityPressure(t *testing.T) {
	tests := []struct {
		name      string
		intensity int
		want      float64
	}{
		{name: "easy work adds nothing", intensity: 5, want: 0},
		{name: "boundary at six", intensity: 6, want: 0},
		{name: "eight maps to half pressure", intensity: 8, want: 0.15},
		{name: "ten saturates", intensity: 10, want: 0.30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no sessions resolve, so only the intensity term contributes
			sets := []SetObservation{{Weight: 100, Reps: 10, Intensity: tt.intensity}}
			f := assessFatigue(sets, nil, time.Now().UTC())
			almostEqual(t, f.Score, tt.want, 1e-9, "score")
			almostEqual(t, f.RecentIntensityAvg, float64(tt.intensity), 1e-9, "recent intensity")
		})
	}
}

// TestFatigueCalorieDeficit verifies the calorie term and that unrecorded
// intake omits the term instead of counting as zero.
func TestFatigueCalorieDeficit(t *testing.T) {
	asOf := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	offsets := []int{-6, -5, -4, -3, -2, -1, 0}

	deficit, deficitSessions := buildDays(asOf, 100, 10, 6, intPtr(1500), offsets...)
	f := assessFatigue(deficit, deficitSessions, asOf)
	// recovery 0.20 plus a saturated calorie deficit 0.10
	almostEqual(t, f.Score, 0.30, 1e-9, "deficit score")
	if f.AvgCalories == nil {
		t.Fatal("expected an average calorie value")
	}
	almostEqual(t, *f.AvgCalories, 1500, 1e-9, "avg calories")

	fed, fedSessions := buildDays(asOf, 100, 10, 6, intPtr(2600), offsets...)
	f = assessFatigue(fed, fedSessions, asOf)
	almostEqual(t, f.Score, 0.20, 1e-9, "surplus score")

	unrecorded, unrecordedSessions := buildDays(asOf, 100, 10, 6, nil, offsets...)
	f = assessFatigue(unrecorded, unrecordedSessions, asOf)
	almostEqual(t, f.Score, 0.20, 1e-9, "unrecorded calories score")
	if f.AvgCalories != nil {
		t.Errorf("expected no average calories, got %v", *f.AvgCalories)
	}
}

// TestVolumeDrop verifies the recent-versus-prior session volume comparison.
func TestVolumeDrop(t *testing.T) {
	session := func(weight float64) SetObservation {
		id := uuid.New()
		return SetObservation{Weight: weight, Reps: 10, SessionID: &id}
	}

	tests := []struct {
		name  string
		chron []SetObservation
		want  float64
	}{
		{
			name:  "fewer than six sessions reads zero",
			chron: []SetObservation{session(100), session(100), session(100), session(50), session(50)},
			want:  0,
		},
		{
			name:  "steady volume reads zero",
			chron: []SetObservation{session(100), session(100), session(100), session(100), session(100), session(100)},
			want:  0,
		},
		{
			name:  "halved volume reads one half",
			chron: []SetObservation{session(100), session(100), session(100), session(50), session(50), session(50)},
			want:  0.5,
		},
		{
			name:  "rising volume clamps at zero",
			chron: []SetObservation{session(50), session(50), session(50), session(100), session(100), session(100)},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			almostEqual(t, volumeDrop(tt.chron), tt.want, 1e-9, "volumeDrop")
		})
	}
}

// TestFatigueScoreBounds verifies the composite stays in [0,1] when every
// signal saturates at once.
func TestFatigueScoreBounds(t *testing.T) {
	asOf := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// six sessions crammed into today: brutal intensity, starvation
	// calories, collapsing volume, no rest and six empty days behind
	var chron []SetObservation
	sessions := make(map[uuid.UUID]SessionInfo)
	weights := []float64{200, 200, 200, 20, 20, 20}
	for _, w := range weights {
		id := uuid.New()
		sid := id
		chron = append(chron, SetObservation{Weight: w, Reps: 10, Intensity: 10, SessionID: &sid})
		sessions[id] = SessionInfo{Date: asOf, Calories: intPtr(500)}
	}

	f := assessFatigue(chron, sessions, asOf)
	if f.Score < 0 || f.Score > 1 {
		t.Fatalf("score %v out of [0,1]", f.Score)
	}
	if f.Score < 0.9 {
		t.Errorf("expected a saturated score, got %v", f.Score)
	}
}
