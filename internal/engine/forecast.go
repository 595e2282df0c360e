package engine

import "math"

// Default smoothing parameters for standalone trend forecasts, such as the
// per-session volume trend in analytics.
const (
	DefaultHoltAlpha = 0.3
	DefaultHoltBeta  = 0.1
)

// The blender's weight path smooths harder than the standalone defaults: a
// low alpha rides out single-session plateaus.
const (
	weightHoltAlpha = 0.25
	weightHoltBeta  = 0.05

	maxWeightIncrease = 1.05
	maxWeightDecrease = 0.90
)

// linearRegression fits a least-squares line through (xs, ys). ok is false
// with fewer than two points, mismatched lengths, or no variance in xs.
func linearRegression(xs, ys []float64) (slope, intercept float64, ok bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, 0, false
	}
	meanX := mean(xs)
	meanY := mean(ys)
	var num, den float64
	for i := range xs {
		dx := xs[i] - meanX
		num += dx * (ys[i] - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0, 0, false
	}
	slope = num / den
	return slope, meanY - slope*meanX, true
}

// regressionPredict evaluates the fitted line at x.
func regressionPredict(xs, ys []float64, x float64) (float64, bool) {
	slope, intercept, ok := linearRegression(xs, ys)
	if !ok {
		return 0, false
	}
	return intercept + slope*x, true
}

// Holt forecasts steps ahead of series using Holt's linear method (double
// exponential smoothing, no seasonal component). The level starts at the
// first observation and the trend at the first difference, so at least two
// observations are required.
func Holt(series []float64, alpha, beta float64, steps int) (float64, bool) {
	if len(series) < 2 {
		return 0, false
	}
	s := series[0]
	b := series[1] - series[0]
	for t := 1; t < len(series); t++ {
		x := series[t]
		sPrev := s
		s = alpha*x + (1-alpha)*(s+b)
		b = beta*(s-sPrev) + (1-beta)*b
	}
	return s + b*float64(steps), true
}

// forecastWeight estimates the next weight: Holt when it can run, else
// regression, else the last observed weight. Whatever the model says, the
// estimate is held inside a tight band around the last actual lift.
func forecastWeight(weights []float64) float64 {
	last := weights[len(weights)-1]

	pred, ok := Holt(weights, weightHoltAlpha, weightHoltBeta, 1)
	if !ok {
		pred, ok = regressionPredict(indexSeries(len(weights)), weights, float64(len(weights)))
	}
	if !ok {
		pred = last
	}

	return math.Max(last*maxWeightDecrease, math.Min(last*maxWeightIncrease, pred))
}

// forecastReps estimates the next rep count by regression alone, falling
// back to the last observed count, clamped to [1, targetReps+2].
func forecastReps(reps []float64, targetReps int) int {
	pred, ok := regressionPredict(indexSeries(len(reps)), reps, float64(len(reps)))
	if !ok {
		pred = reps[len(reps)-1]
	}
	n := int(math.Round(pred))
	if n < 1 {
		n = 1
	}
	if n > targetReps+2 {
		n = targetReps + 2
	}
	return n
}

// indexSeries returns 0..n-1 as float64 x values.
func indexSeries(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
