// Package safety implements the interaction, cycling, and dose
// adjustment checks that run after the rule engine has decided what it
// wants to dispense.
package safety

import "strings"

// InteractionType classifies how two compounds affect each other.
type InteractionType string

// InteractionType values.
const (
	Synergy          InteractionType = "synergy"
	Absorption       InteractionType = "absorption"
	Competition      InteractionType = "competition"
	Contraindication InteractionType = "contraindication"
)

// Severity grades an interaction.
type Severity string

// Severity values.
const (
	Minor    Severity = "minor"
	Moderate Severity = "moderate"
	Major    Severity = "major"
)

// Interaction is one pairwise relationship between two supplements, or
// between a supplement and a medication class. SpacingHours, when set,
// is the minimum separation between the two doses.
type Interaction struct {
	A              string          `json:"a"`
	B              string          `json:"b"`
	Type           InteractionType `json:"type"`
	Severity       Severity        `json:"severity"`
	SpacingHours   float64         `json:"spacing_hours,omitempty"`
	Description    string          `json:"description"`
	Recommendation string          `json:"recommendation"`
}

var interactions = []Interaction{
	{A: "zinc", B: "copper", Type: Competition, Severity: Moderate, SpacingHours: 2,
		Description:    "Zinc depletes copper with chronic use",
		Recommendation: "Separate the doses by at least 2 hours"},
	{A: "calcium", B: "iron", Type: Absorption, Severity: Moderate, SpacingHours: 2,
		Description:    "Calcium inhibits non-heme iron absorption",
		Recommendation: "Take iron at least 2 hours away from calcium"},
	{A: "zinc", B: "iron", Type: Absorption, Severity: Moderate, SpacingHours: 2,
		Description:    "Zinc and iron compete for absorption at high doses",
		Recommendation: "Separate the doses by at least 2 hours"},
	{A: "vitamin_d3", B: "vitamin_k2", Type: Synergy, Severity: Minor,
		Description:    "K2 directs calcium mobilized by D3 into bone",
		Recommendation: "Take together"},
	{A: "magnesium_glycinate", B: "vitamin_d3", Type: Synergy, Severity: Minor,
		Description:    "Magnesium is a cofactor for vitamin D activation",
		Recommendation: "Take together"},
	{A: "magnesium_l_threonate", B: "vitamin_d3", Type: Synergy, Severity: Minor,
		Description:    "Magnesium is a cofactor for vitamin D activation",
		Recommendation: "Take together"},
	{A: "caffeine", B: "l_theanine", Type: Synergy, Severity: Minor,
		Description:    "Theanine smooths caffeine's edge without blunting alertness",
		Recommendation: "Take together"},
	{A: "melatonin", B: "caffeine", Type: Contraindication, Severity: Moderate, SpacingHours: 8,
		Description:    "Caffeine antagonizes melatonin and delays sleep onset",
		Recommendation: "Keep caffeine at least 8 hours before melatonin"},
	{A: "omega_3", B: "vitamin_e", Type: Synergy, Severity: Minor,
		Description:    "Vitamin E protects fish oil from oxidation",
		Recommendation: "Take together"},
	{A: "nac", B: "nitroglycerin_med", Type: Contraindication, Severity: Major,
		Description:    "NAC potentiates nitrates and can cause severe hypotension",
		Recommendation: "Do not combine, consult the prescribing physician"},
	{A: "ashwagandha", B: "thyroid_med", Type: Contraindication, Severity: Major,
		Description:    "Ashwagandha can raise thyroid hormone levels on top of medication",
		Recommendation: "Avoid while on thyroid medication"},
	{A: "glycine", B: "clozapine_med", Type: Contraindication, Severity: Major,
		Description:    "Glycine may reduce clozapine efficacy",
		Recommendation: "Avoid while on clozapine"},
	{A: "l_citrulline", B: "bp_medication", Type: Contraindication, Severity: Moderate,
		Description:    "Citrulline lowers blood pressure additively with antihypertensives",
		Recommendation: "Monitor blood pressure, reduce or skip citrulline"},
	{A: "coq10", B: "warfarin_med", Type: Contraindication, Severity: Major,
		Description:    "CoQ10 is structurally similar to vitamin K and can reduce warfarin effect",
		Recommendation: "Avoid without INR monitoring"},
	{A: "vitamin_k2", B: "warfarin_med", Type: Contraindication, Severity: Major,
		Description:    "Vitamin K directly antagonizes warfarin",
		Recommendation: "Do not combine"},
	{A: "magnesium_glycinate", B: "magnesium_l_threonate", Type: Competition, Severity: Minor,
		Description:    "Stacking magnesium forms risks exceeding tolerable intake",
		Recommendation: "Pick one magnesium form per day"},
	{A: "nac", B: "protein_supplement", Type: Absorption, Severity: Minor, SpacingHours: 0.5,
		Description:    "Dietary protein competes with NAC for absorption",
		Recommendation: "Take NAC 30 minutes away from protein"},
	{A: "creatine", B: "caffeine", Type: Competition, Severity: Minor,
		Description:    "High caffeine intake may blunt creatine loading",
		Recommendation: "Keep caffeine moderate on loading days"},
}

// medicationKeywords maps free-text medication names to the medication
// class ids used in the interaction table.
var medicationKeywords = map[string]string{
	"thyroid":        "thyroid_med",
	"levothyroxine":  "thyroid_med",
	"synthroid":      "thyroid_med",
	"warfarin":       "warfarin_med",
	"coumadin":       "warfarin_med",
	"blood_thinner":  "warfarin_med",
	"anticoagulant":  "warfarin_med",
	"nitroglycerin":  "nitroglycerin_med",
	"blood_pressure": "bp_medication",
	"lisinopril":     "bp_medication",
	"amlodipine":     "bp_medication",
	"clozapine":      "clozapine_med",
}

// ExpandMedications maps free-text medication entries to the medication
// class ids known to the interaction table. Unrecognized entries are
// dropped; de-duplication preserves first-seen order.
func ExpandMedications(meds []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, med := range meds {
		m := strings.ToLower(med)
		m = strings.ReplaceAll(m, " ", "_")
		for kw, class := range medicationKeywords {
			if strings.Contains(m, kw) && !seen[class] {
				seen[class] = true
				out = append(out, class)
			}
		}
	}
	return out
}

// CheckInteractions returns every interaction triggered by the given
// supplement ids plus the user's medications. Pairs are matched in
// either direction.
func CheckInteractions(supplementIDs, medications []string) []Interaction {
	present := map[string]bool{}
	for _, id := range supplementIDs {
		present[id] = true
	}
	for _, class := range ExpandMedications(medications) {
		present[class] = true
	}

	var out []Interaction
	for _, in := range interactions {
		if present[in.A] && present[in.B] {
			out = append(out, in)
		}
	}
	return out
}

// MinimumSpacing returns the required spacing in hours between two
// supplements and whether a constraint exists. Spacing guidance lives
// on the interaction records, matched in either direction.
func MinimumSpacing(a, b string) (float64, bool) {
	for _, in := range interactions {
		if in.SpacingHours <= 0 {
			continue
		}
		if (in.A == a && in.B == b) || (in.A == b && in.B == a) {
			return in.SpacingHours, true
		}
	}
	return 0, false
}

// TimingConflict is a minimum-spacing requirement between two compounds
// that are both about to be dispensed in the same run.
type TimingConflict struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Hours float64 `json:"hours"`
}

// CheckTimingConflicts scans the given ids pairwise against the
// spacing requirements carried on the interaction table.
func CheckTimingConflicts(ids []string) []TimingConflict {
	var out []TimingConflict
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if h, ok := MinimumSpacing(ids[i], ids[j]); ok {
				out = append(out, TimingConflict{A: ids[i], B: ids[j], Hours: h})
			}
		}
	}
	return out
}
