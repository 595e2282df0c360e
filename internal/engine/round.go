package engine

import "math"

// validWeight reports whether w is a finite, positive training load. Every
// multiplicative adjustment chain checks this before its result is allowed
// to replace the last known-good weight.
func validWeight(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w > 0
}

// RoundToPlate rounds w to the nearest 0.5 plate increment. Non-finite input
// rounds to 0 so a numeric fault upstream can never escape into a response.
func RoundToPlate(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	r := math.Round(w*2) / 2
	if r == 0 {
		return 0 // never -0
	}
	return r
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
