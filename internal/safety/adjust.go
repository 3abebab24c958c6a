package safety

import (
	"fmt"
	"math"

	"github.com/dosepilot/dosepilot/internal/models"
)

// AdjustmentKind is how an adjustment rule transforms a dose.
type AdjustmentKind string

// AdjustmentKind values.
const (
	// AdjustPerKg replaces the dose with value * body weight.
	AdjustPerKg AdjustmentKind = "per_kg"
	// AdjustMultiplier scales the dose.
	AdjustMultiplier AdjustmentKind = "multiplier"
	// AdjustMaxCap clamps the dose down to a ceiling.
	AdjustMaxCap AdjustmentKind = "max_cap"
)

// AdjustmentRule is one personalization step for a supplement's dose.
// AgeOver and Sex gate the rule; zero values mean unconditional.
type AdjustmentRule struct {
	Kind    AdjustmentKind
	Value   float64
	AgeOver int
	Sex     models.Sex
	Reason  string
}

func (r AdjustmentRule) applies(p *models.Profile) bool {
	if r.AgeOver > 0 && (p == nil || p.AgeYears <= r.AgeOver) {
		return false
	}
	if r.Sex != models.SexUnspecified && (p == nil || p.Sex != r.Sex) {
		return false
	}
	return true
}

// doseAdjustments lists adjustment rules per supplement, applied in
// declared order.
var doseAdjustments = map[string][]AdjustmentRule{
	"caffeine": {
		{Kind: AdjustPerKg, Value: 3.0, Reason: "caffeine dosed at 3mg per kg body weight"},
		{Kind: AdjustMultiplier, Value: 0.75, AgeOver: 65, Reason: "slower caffeine clearance over 65"},
	},
	"melatonin": {
		{Kind: AdjustMaxCap, Value: 1.0, AgeOver: 65, Reason: "melatonin capped at 1mg over 65"},
	},
	"magnesium_glycinate": {
		{Kind: AdjustMultiplier, Value: 0.85, Sex: models.SexFemale, Reason: "magnesium RDA scaled for females"},
	},
	"zinc": {
		{Kind: AdjustMultiplier, Value: 0.73, Sex: models.SexFemale, Reason: "zinc RDA scaled for females"},
	},
	"vitamin_d3": {
		{Kind: AdjustPerKg, Value: 40, Reason: "vitamin D dosed at 40IU per kg body weight"},
	},
	"omega_3": {
		{Kind: AdjustPerKg, Value: 20, Reason: "omega-3 dosed at 20mg per kg body weight"},
	},
}

// Adjustment is the result of applying the adjustment rules to a dose.
type Adjustment struct {
	Dose    float64  `json:"dose"`
	Applied []string `json:"applied,omitempty"`
}

// GetAdjustedDose applies the adjustment rules for a supplement to a
// proposed dose. It is a pure function of its arguments: rules run in
// declared order, per_kg replaces the dose, multiplier scales it, and
// max_cap only ever lowers it. The result is rounded to one decimal.
func GetAdjustedDose(supplementID string, dose float64, profile *models.Profile) Adjustment {
	adj := Adjustment{Dose: dose}

	for _, rule := range doseAdjustments[supplementID] {
		if !rule.applies(profile) {
			continue
		}
		switch rule.Kind {
		case AdjustPerKg:
			if profile == nil || profile.WeightKg <= 0 {
				continue
			}
			adj.Dose = rule.Value * profile.WeightKg
		case AdjustMultiplier:
			adj.Dose *= rule.Value
		case AdjustMaxCap:
			if adj.Dose > rule.Value {
				adj.Dose = rule.Value
			} else {
				continue
			}
		}
		adj.Applied = append(adj.Applied, fmt.Sprintf("%s: %s", rule.Kind, rule.Reason))
	}

	adj.Dose = math.Round(adj.Dose*10) / 10
	return adj
}
