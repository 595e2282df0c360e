package engine

// Substitutions maps an exercise to conservative stand-ins for days the
// primary movement is unavailable. The catalog is built once at startup and
// injected into the engine; it is never consulted as a global.
type Substitutions map[string][]string

// DefaultSubstitutions returns the built-in catalog.
func DefaultSubstitutions() Substitutions {
	return Substitutions{
		"Incline Dumbbell Press": {"Smith Machine Press", "Push-ups (weighted)"},
		"Smith Machine Squat":    {"Goblet Squat", "Leg Press"},
		"Romanian Deadlift":      {"Dumbbell Romanian Deadlift", "Kettlebell Swing"},
		"Overhead Press":         {"Seated Dumbbell Press", "Landmine Press"},
		"Lat Pulldown":           {"Pull-ups (assisted)", "Seated Cable Row"},
	}
}

// Merge overlays per-exercise overrides onto the catalog and returns a new
// catalog. An override replaces the whole list for its exercise; an empty
// override list removes the entry.
func (s Substitutions) Merge(overrides map[string][]string) Substitutions {
	out := make(Substitutions, len(s)+len(overrides))
	for ex, subs := range s {
		out[ex] = subs
	}
	for ex, subs := range overrides {
		if len(subs) == 0 {
			delete(out, ex)
			continue
		}
		out[ex] = subs
	}
	return out
}

// Lookup returns the substitutes for exercise as a fresh slice, empty (not
// nil) for unknown exercises so callers always serialize a list.
func (s Substitutions) Lookup(exercise string) []string {
	subs := s[exercise]
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}
