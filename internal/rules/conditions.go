package rules

import "github.com/dosepilot/dosepilot/internal/models"

// Op is the comparison direction of a condition.
type Op string

// Op values.
const (
	OpBelow Op = "below"
	OpAbove Op = "above"
)

// Outcome carries the observed values a fired condition exposes to
// explanation templates.
type Outcome struct {
	Value        float64
	PercentBelow float64 // percent below the baseline mean, baseline-relative only
	PercentAbove float64 // percent above the baseline mean, baseline-relative only
}

// Condition is one of FixedThreshold, BaselineRelative, or Compound.
// Eval returns fired=false whenever a required input is absent: a
// missing metric or missing baseline can never fire a rule.
type Condition interface {
	Eval(snap *models.Snapshot, base *models.Baseline) (Outcome, bool)
}

// FixedThreshold fires when a metric crosses an absolute value.
type FixedThreshold struct {
	Metric string
	Op     Op
	Value  float64
}

// Eval implements Condition.
func (c FixedThreshold) Eval(snap *models.Snapshot, _ *models.Baseline) (Outcome, bool) {
	v, ok := snap.Metric(c.Metric)
	if !ok {
		return Outcome{}, false
	}
	fired := (c.Op == OpBelow && v < c.Value) || (c.Op == OpAbove && v > c.Value)
	return Outcome{Value: v}, fired
}

// BaselineRelative fires when a metric crosses a ratio of the user's
// baseline mean for that metric.
type BaselineRelative struct {
	Metric string
	Op     Op
	Ratio  float64
}

// Eval implements Condition.
func (c BaselineRelative) Eval(snap *models.Snapshot, base *models.Baseline) (Outcome, bool) {
	v, ok := snap.Metric(c.Metric)
	if !ok {
		return Outcome{}, false
	}
	st, ok := base.Get(c.Metric)
	if !ok || st.Mean == 0 {
		return Outcome{}, false
	}

	threshold := st.Mean * c.Ratio
	fired := (c.Op == OpBelow && v < threshold) || (c.Op == OpAbove && v > threshold)

	out := Outcome{Value: v}
	if v < st.Mean {
		out.PercentBelow = (st.Mean - v) / st.Mean * 100
	} else {
		out.PercentAbove = (v - st.Mean) / st.Mean * 100
	}
	return out, fired
}

// Compound fires when at least MinMatches of its sub-conditions fire.
// A sub-condition with a missing metric never counts as a match.
type Compound struct {
	Conditions []Condition
	MinMatches int
}

// Eval implements Condition.
func (c Compound) Eval(snap *models.Snapshot, base *models.Baseline) (Outcome, bool) {
	matches := 0
	var out Outcome
	for _, sub := range c.Conditions {
		o, fired := sub.Eval(snap, base)
		if !fired {
			continue
		}
		matches++
		if matches == 1 {
			out = o
		}
	}
	return out, matches >= c.MinMatches
}
