// Package pipeline assembles final doses: it takes the candidates, the
// resolved rule actions, and the personalization multipliers, runs each
// candidate through safety adjustment and the daily ledger cap, and
// produces the included/skipped/held breakdown a dispense is built from.
package pipeline

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dosepilot/dosepilot/internal/catalog"
	"github.com/dosepilot/dosepilot/internal/models"
	"github.com/dosepilot/dosepilot/internal/rules"
	"github.com/dosepilot/dosepilot/internal/safety"
)

// Curfew hours for caffeine. After Hard no caffeine is dispensed at
// all; after Soft it is dispensed with a warning when sleep is already
// poor.
const (
	caffeineHardCurfewHour = 17
	caffeineSoftCurfewHour = 14
	softCurfewSleepScore   = 70
)

// Candidate is one supplement proposed for dispensing, before safety
// and capping.
type Candidate struct {
	SupplementID   string
	BaseMultiplier float64 // scales the standard dose, 0 means 1.0
	Required       bool
	Reasons        []string
}

// Request carries everything one assembly pass needs.
type Request struct {
	Now             time.Time
	Candidates      []Candidate
	Actions         map[string]rules.SupplementAction // resolved winners per supplement
	Modifiers       map[string]float64                // folded personalization multipliers
	Profile         *models.Profile
	SleepScore      *float64
	DispensedToday  map[string]float64 // unit-sum already dispensed per supplement
	ConsecutiveDays map[string]int
}

// Dose is one supplement cleared for dispensing.
type Dose struct {
	SupplementID string   `json:"supplement_id"`
	Name         string   `json:"name"`
	Dose         float64  `json:"dose"`
	Unit         string   `json:"unit"`
	Reasons      []string `json:"reasons,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// Skip is a supplement dropped from the run with the reason why.
type Skip struct {
	SupplementID string `json:"supplement_id"`
	Reason       string `json:"reason"`
}

// Hold is a supplement blocked by a rule for today.
type Hold struct {
	SupplementID string `json:"supplement_id"`
	Rule         string `json:"rule"`
	Explanation  string `json:"explanation"`
}

// CycleWarning is the cycling position of one requested supplement that
// is at or near its protocol limit.
type CycleWarning struct {
	SupplementID string             `json:"supplement_id"`
	Status       safety.CycleStatus `json:"status"`
	Message      string             `json:"message"`
}

// Result is the assembled output. Interactions carries the structured
// non-synergy interaction records across the included set; CycleWarnings
// covers every requested supplement, including ones held or skipped.
type Result struct {
	Included      []Dose               `json:"included"`
	Skipped       []Skip               `json:"skipped,omitempty"`
	Held          []Hold               `json:"held,omitempty"`
	Warnings      []string             `json:"warnings,omitempty"`
	Interactions  []safety.Interaction `json:"interaction_warnings,omitempty"`
	CycleWarnings []CycleWarning       `json:"cycle_warnings,omitempty"`
}

// Assembler runs the dose assembly pipeline against a catalog.
type Assembler struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewAssembler creates an assembler.
func NewAssembler(cat *catalog.Catalog, logger *zap.Logger) *Assembler {
	return &Assembler{catalog: cat, logger: logger}
}

// Assemble processes every candidate independently. A bad candidate is
// skipped, never aborts the run.
func (a *Assembler) Assemble(req Request) Result {
	var res Result
	hour := req.Now.Hour()

	for _, cand := range req.Candidates {
		supp, ok := a.catalog.Get(cand.SupplementID)
		if !ok {
			res.Skipped = append(res.Skipped, Skip{
				SupplementID: cand.SupplementID,
				Reason:       "Supplement not found in catalog",
			})
			continue
		}

		reasons := append([]string(nil), cand.Reasons...)
		var warnings []string

		// Stage 1: rule hold and timing gates.
		action, hasAction := req.Actions[supp.ID]
		if hasAction {
			if action.Kind == rules.ActionHold {
				res.Held = append(res.Held, Hold{
					SupplementID: supp.ID,
					Rule:         action.Rule,
					Explanation:  action.Explanation,
				})
				continue
			}
			if action.BeforeHour > 0 && hour >= action.BeforeHour {
				res.Skipped = append(res.Skipped, Skip{
					SupplementID: supp.ID,
					Reason:       fmt.Sprintf("Only allowed before %02d:00 today (%s)", action.BeforeHour, action.Rule),
				})
				continue
			}
		}

		// Stage 2: dose math. The weight/age/sex adjustment runs on the
		// base dose first; the personalization fold and the winning rule
		// multiplier scale the adjusted dose. An increase never pushes
		// past the daily maximum.
		mult := cand.BaseMultiplier
		if mult == 0 {
			mult = 1.0
		}
		adj := safety.GetAdjustedDose(supp.ID, supp.StandardDose*mult, req.Profile)
		dose := adj.Dose
		reasons = append(reasons, adj.Applied...)

		if m, ok := req.Modifiers[supp.ID]; ok {
			dose *= m
		}
		if hasAction {
			switch action.Kind {
			case rules.ActionAdd, rules.ActionIncrease, rules.ActionReduce:
				if action.Multiplier > 0 {
					dose *= action.Multiplier
				}
			}
			if action.Kind == rules.ActionIncrease && dose > supp.MaxDailyDose {
				dose = supp.MaxDailyDose
			}
			if action.Explanation != "" {
				reasons = append(reasons, action.Explanation)
			}
		}
		if dose <= 0 {
			res.Skipped = append(res.Skipped, Skip{
				SupplementID: supp.ID,
				Reason:       "Paused by personalization (tolerance reset)",
			})
			continue
		}
		adjusted := dose

		// Stage 3: caffeine curfew.
		if supp.ID == "caffeine" {
			if hour >= caffeineHardCurfewHour {
				res.Skipped = append(res.Skipped, Skip{
					SupplementID: supp.ID,
					Reason:       "Caffeine curfew, too late in the day",
				})
				continue
			}
			if hour >= caffeineSoftCurfewHour && req.SleepScore != nil && *req.SleepScore < softCurfewSleepScore {
				warnings = append(warnings, "Afternoon caffeine on poor sleep will push tonight's sleep later")
			}
		}

		// Stage 4: cycling.
		switch safety.CheckCycleStatus(supp.ID, req.ConsecutiveDays[supp.ID]) {
		case safety.CycleNow:
			res.Skipped = append(res.Skipped, Skip{
				SupplementID: supp.ID,
				Reason:       "Cycling break due after continuous use",
			})
			continue
		case safety.CycleApproaching:
			warnings = append(warnings, fmt.Sprintf("%s cycling break coming up soon", supp.Name))
		}

		// Stage 5: daily ledger cap.
		remaining := supp.MaxDailyDose - req.DispensedToday[supp.ID]
		if remaining <= 0 {
			res.Skipped = append(res.Skipped, Skip{
				SupplementID: supp.ID,
				Reason:       "Daily limit reached",
			})
			continue
		}
		final := math.Min(adjusted, remaining)
		final = math.Round(final*10) / 10
		if final < adjusted*0.5 {
			warnings = append(warnings, fmt.Sprintf("Reduced to %s %s (daily limit)", trimFloat(final), supp.Unit))
		}

		res.Included = append(res.Included, Dose{
			SupplementID: supp.ID,
			Name:         supp.Name,
			Dose:         final,
			Unit:         supp.Unit,
			Reasons:      reasons,
			Warnings:     warnings,
		})
	}

	a.checkInteractions(&res, req)
	a.cycleWarnings(&res, req)

	if a.logger != nil {
		a.logger.Debug("Assembled doses",
			zap.Int("included", len(res.Included)),
			zap.Int("skipped", len(res.Skipped)),
			zap.Int("held", len(res.Held)),
		)
	}
	return res
}

// checkInteractions surfaces non-synergy interactions across everything
// that made it into the run, including medication classes. Spacing
// requirements between today's doses additionally become warnings.
func (a *Assembler) checkInteractions(res *Result, req Request) {
	ids := make([]string, 0, len(res.Included))
	for _, d := range res.Included {
		ids = append(ids, d.SupplementID)
	}
	var meds []string
	if req.Profile != nil {
		meds = req.Profile.Medications
	}

	for _, in := range safety.CheckInteractions(ids, meds) {
		if in.Type == safety.Synergy {
			continue
		}
		res.Interactions = append(res.Interactions, in)
	}

	for _, tc := range safety.CheckTimingConflicts(ids) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Take %s and %s at least %s h apart", tc.A, tc.B, trimFloat(tc.Hours)))
	}
}

// cycleWarnings reports the cycling position of every requested
// supplement, not just the ones that made it through. A hold or a skip
// today does not hide an overdue break.
func (a *Assembler) cycleWarnings(res *Result, req Request) {
	seen := make(map[string]bool)
	for _, cand := range req.Candidates {
		supp, ok := a.catalog.Get(cand.SupplementID)
		if !ok || seen[supp.ID] {
			continue
		}
		seen[supp.ID] = true

		days := req.ConsecutiveDays[supp.ID]
		switch safety.CheckCycleStatus(supp.ID, days) {
		case safety.CycleNow:
			res.CycleWarnings = append(res.CycleWarnings, CycleWarning{
				SupplementID: supp.ID,
				Status:       safety.CycleNow,
				Message:      fmt.Sprintf("%s has run %d consecutive days, take a cycling break", supp.Name, days),
			})
		case safety.CycleApproaching:
			res.CycleWarnings = append(res.CycleWarnings, CycleWarning{
				SupplementID: supp.ID,
				Status:       safety.CycleApproaching,
				Message:      fmt.Sprintf("%s is at %d consecutive days, a cycling break is coming up", supp.Name, days),
			})
		}
	}
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(fmt.Sprintf("%.1f", v), ".0")
}
