package rules

import (
	"fmt"
	"strings"

	"github.com/dosepilot/dosepilot/internal/models"
)

// Status summarizes the overall health picture from the fired rules.
type Status string

// Status values, worst first.
const (
	StatusImmuneAlert    Status = "immune_alert"
	StatusStressed       Status = "stressed"
	StatusSleepDeficit   Status = "sleep_deficit"
	StatusRecoveryNeeded Status = "recovery_needed"
	StatusSuboptimal     Status = "suboptimal"
	StatusOptimal        Status = "optimal"
)

// Evaluation is the full output of a rule pass.
type Evaluation struct {
	Actions    []SupplementAction `json:"actions"`
	FiredRules []string           `json:"fired_rules"`
	Alerts     []string           `json:"alerts,omitempty"`
	Status     Status             `json:"status"`
}

// Evaluate runs every rule table against the snapshot and baseline.
// Rules whose inputs are absent simply do not fire.
func Evaluate(snap *models.Snapshot, base *models.Baseline) Evaluation {
	eval := Evaluation{Status: StatusOptimal}
	var worst PriorityLevel

	for _, rule := range AllRules() {
		outcome, fired := rule.Condition.Eval(snap, base)
		if !fired {
			continue
		}

		eval.FiredRules = append(eval.FiredRules, rule.Name)
		if rule.Level > worst {
			worst = rule.Level
		}

		explanation := formatExplanation(rule.Explanation, outcome)
		if rule.UserAlert {
			eval.Alerts = append(eval.Alerts, explanation)
		}

		for _, a := range rule.Actions {
			mult := a.Multiplier
			if mult == 0 {
				mult = 1.0
			}
			eval.Actions = append(eval.Actions, SupplementAction{
				SupplementID: a.SupplementID,
				Kind:         a.Kind,
				Multiplier:   mult,
				BeforeHour:   a.BeforeHour,
				Level:        rule.Level,
				LevelName:    rule.Level.String(),
				Rule:         rule.Name,
				Explanation:  explanation,
			})
		}
	}

	eval.Status = statusForLevel(worst, len(eval.FiredRules) > 0)
	return eval
}

func statusForLevel(worst PriorityLevel, anyFired bool) Status {
	switch {
	case worst >= LevelImmuneResponse:
		return StatusImmuneAlert
	case worst >= LevelAcuteStress:
		return StatusStressed
	case worst >= LevelSleepCrisis:
		return StatusSleepDeficit
	case worst >= LevelRecoveryDeficit:
		return StatusRecoveryNeeded
	case anyFired:
		return StatusSuboptimal
	default:
		return StatusOptimal
	}
}

// formatExplanation fills {value}, {percent_below}, and {percent_above}
// placeholders from the condition outcome.
func formatExplanation(template string, o Outcome) string {
	r := strings.NewReplacer(
		"{value}", trimFloat(o.Value),
		"{percent_below}", trimFloat(o.PercentBelow),
		"{percent_above}", trimFloat(o.PercentAbove),
	)
	return r.Replace(template)
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

// CitationsFor returns the citations attached to a rule name.
func CitationsFor(ruleName string) []Citation {
	for _, rule := range AllRules() {
		if rule.Name == ruleName {
			return rule.Citations
		}
	}
	return nil
}
