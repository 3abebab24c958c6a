package intelligence

import "math"

// modifierFunc is one layer of the personalization stack.
type modifierFunc func(Context) ([]Modifier, []Note)

// stack is the fixed evaluation order. Folding is multiplicative, so
// order does not change the product, but a fixed order keeps the
// modifier and note lists deterministic for explanations.
var stack = []modifierFunc{
	seasonalVitaminD,
	melatoninTolerance,
	recoveryAdaptive,
	ageModifiers,
	dietModifiers,
	activityModifiers,
	workModifiers,
	chronotypeNotes,
}

// Result is the full output of the modifier stack.
type Result struct {
	Modifiers []Modifier `json:"modifiers"`
	Notes     []Note     `json:"notes,omitempty"`
}

// Compute runs the whole stack against a context.
func Compute(ctx Context) Result {
	var res Result
	for _, fn := range stack {
		mods, notes := fn(ctx)
		res.Modifiers = append(res.Modifiers, mods...)
		res.Notes = append(res.Notes, notes...)
	}
	return res
}

// Fold collapses modifiers to one multiplier per supplement by
// multiplying them in stack order. A zero modifier (tolerance reset)
// therefore zeroes the supplement no matter what else applies.
func Fold(mods []Modifier) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range mods {
		if _, ok := out[m.SupplementID]; !ok {
			out[m.SupplementID] = 1.0
		}
		out[m.SupplementID] *= m.Multiplier
	}
	return out
}

// MagnesiumTiming suggests the hour to take magnesium: two hours before
// bed, one more if sleep onset is slow, clamped to the evening window.
func MagnesiumTiming(bedtimeHour int, sleepLatencyMin float64) int {
	if bedtimeHour <= 0 {
		bedtimeHour = 22
	}
	hour := bedtimeHour - 2
	if sleepLatencyMin > 30 {
		hour--
	}
	if hour < 17 {
		hour = 17
	}
	if hour > 22 {
		hour = 22
	}
	return hour
}

// stimulantStrengths weights each stimulant's contribution to the
// stacking ceiling.
var stimulantStrengths = map[string]float64{
	"caffeine":    1.0,
	"vitamin_b12": 0.2,
}

// stimulantCeiling is the maximum combined stimulant load per serving.
const stimulantCeiling = 1.5

// StimulantLoad sums the stimulant load of the given supplements and
// reports advisory notes when the stack runs hot.
func StimulantLoad(supplementIDs []string) (float64, []Note) {
	var load float64
	hasCaffeine := false
	hasTheanine := false
	for _, id := range supplementIDs {
		load += stimulantStrengths[id]
		if id == "caffeine" {
			hasCaffeine = true
		}
		if id == "l_theanine" {
			hasTheanine = true
		}
	}
	load = math.Round(load*100) / 100

	var notes []Note
	if load > stimulantCeiling {
		notes = append(notes, Note{
			Level:   NoteWarning,
			Message: "Combined stimulant load exceeds the recommended ceiling, consider dropping one",
		})
	}
	if hasCaffeine && !hasTheanine {
		notes = append(notes, Note{
			Level: NoteInfo, SupplementID: "l_theanine",
			Message: "Pairing L-theanine with caffeine smooths the stimulant curve",
		})
	}
	return load, notes
}
