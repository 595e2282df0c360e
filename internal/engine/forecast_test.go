package engine

import (
	"math"
	"testing"
)

func almostEqual(t *testing.T, got, want, tol float64, label string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

// TestLinearRegression verifies the least-squares fit and its degenerate
// no-prediction cases.
func TestLinearRegression(t *testing.T) {
	tests := []struct {
		name          string
		xs, ys        []float64
		wantOK        bool
		wantSlope     float64
		wantIntercept float64
	}{
		{name: "single point", xs: []float64{0}, ys: []float64{5}, wantOK: false},
		{name: "length mismatch", xs: []float64{0, 1}, ys: []float64{5}, wantOK: false},
		{name: "no x variance", xs: []float64{2, 2, 2}, ys: []float64{1, 2, 3}, wantOK: false},
		{name: "exact line", xs: []float64{0, 1, 2, 3}, ys: []float64{10, 12, 14, 16}, wantOK: true, wantSlope: 2, wantIntercept: 10},
		{name: "flat line", xs: []float64{0, 1, 2}, ys: []float64{7, 7, 7}, wantOK: true, wantSlope: 0, wantIntercept: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slope, intercept, ok := linearRegression(tt.xs, tt.ys)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			almostEqual(t, slope, tt.wantSlope, 1e-9, "slope")
			almostEqual(t, intercept, tt.wantIntercept, 1e-9, "intercept")
		})
	}
}

// TestHolt verifies the double-exponential smoother: insufficient data,
// constant series, and a perfectly linear ramp that projects one step on.
func TestHolt(t *testing.T) {
	if _, ok := Holt([]float64{100}, DefaultHoltAlpha, DefaultHoltBeta, 1); ok {
		t.Error("expected no prediction from a single observation")
	}

	got, ok := Holt([]float64{100, 100, 100, 100}, DefaultHoltAlpha, DefaultHoltBeta, 1)
	if !ok {
		t.Fatal("expected a prediction")
	}
	almostEqual(t, got, 100, 1e-9, "constant series forecast")

	// Level tracks the ramp exactly when the trend seed matches the step.
	got, ok = Holt([]float64{100, 110, 120, 130}, 0.25, 0.05, 1)
	if !ok {
		t.Fatal("expected a prediction")
	}
	almostEqual(t, got, 140, 1e-6, "linear ramp forecast")

	got, _ = Holt([]float64{100, 110, 120, 130}, 0.25, 0.05, 3)
	almostEqual(t, got, 160, 1e-6, "three-step forecast")
}

// TestForecastWeightClamp verifies the asymmetric safety band around the
// last observed weight.
func TestForecastWeightClamp(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64 // chronological
		want    float64
	}{
		{
			name:    "single point falls back to last observed",
			weights: []float64{100},
			want:    100,
		},
		{
			name: "steep ramp capped at plus five percent",
			// model projects 140, band tops out at 130 * 1.05
			weights: []float64{100, 110, 120, 130},
			want:    136.5,
		},
		{
			name: "collapse floored at minus ten percent",
			// model projects far below, band bottoms out at 40 * 0.90
			weights: []float64{130, 100, 70, 40},
			want:    36,
		},
		{
			name:    "flat history stays put",
			weights: []float64{100, 100, 100},
			want:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			almostEqual(t, forecastWeight(tt.weights), tt.want, 1e-9, "forecastWeight")
		})
	}
}

// TestForecastReps verifies the regression-only rep estimate and its clamp.
func TestForecastReps(t *testing.T) {
	tests := []struct {
		name       string
		reps       []float64
		targetReps int
		want       int
	}{
		{name: "single point falls back to last", reps: []float64{8}, targetReps: 10, want: 8},
		{name: "rising trend projects forward", reps: []float64{6, 7, 8}, targetReps: 10, want: 9},
		{name: "clamped above at target plus two", reps: []float64{8, 10, 12, 14}, targetReps: 10, want: 12},
		{name: "clamped below at one", reps: []float64{9, 6, 3}, targetReps: 10, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := forecastReps(tt.reps, tt.targetReps); got != tt.want {
				t.Errorf("forecastReps(%v, %d) = %d, want %d", tt.reps, tt.targetReps, got, tt.want)
			}
		})
	}
}
