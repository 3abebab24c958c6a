// Package trigger derives named boolean health triggers from a daily
// snapshot, an optional baseline, and an optional subjective check-in.
package trigger

import (
	"sort"

	"github.com/dosepilot/dosepilot/internal/models"
)

// Trigger names.
const (
	PoorSleep        = "poor_sleep"
	PoorSleepQuality = "poor_sleep_quality"
	PoorSleepOnset   = "poor_sleep_onset"
	SleepOptimize    = "sleep_optimization"
	Fatigue          = "fatigue"
	LowHRV           = "low_hrv"
	HighStress       = "high_stress"
	PoorRecovery     = "poor_recovery"
	RecoveryNeeded   = "recovery_needed"
	MuscleRecovery   = "muscle_recovery"
	HighStrain       = "high_strain"
	Dehydration      = "dehydration"
	LowEnergy        = "low_energy"
	HighInflammation = "high_inflammation"
	LowMood          = "low_mood"
	LowSunlight      = "low_sunlight"
)

// Set is the result of an evaluation: trigger name to fired.
type Set map[string]bool

// Names returns the fired trigger names sorted.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for name, fired := range s {
		if fired {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// fixedRule fires a trigger when a metric crosses a fixed threshold.
type fixedRule struct {
	trigger string
	metric  string
	below   bool
	value   float64
}

var fixedRules = []fixedRule{
	{PoorSleep, models.MetricSleepScore, true, 60},
	{PoorSleepQuality, models.MetricSleepScore, true, 65},
	{PoorSleepOnset, models.MetricSleepScore, true, 55},
	{SleepOptimize, models.MetricSleepScore, true, 80},
	{Fatigue, models.MetricSleepDuration, true, 6},
	{LowHRV, models.MetricHRV, true, 50},
	{HighStress, models.MetricHRV, true, 45},
	{PoorRecovery, models.MetricRecoveryScore, true, 55},
	{RecoveryNeeded, models.MetricRecoveryScore, true, 60},
	{MuscleRecovery, models.MetricRecoveryScore, true, 70},
	{HighStrain, models.MetricStrain, false, 70},
	{Dehydration, models.MetricStrain, false, 75},
	{HighInflammation, models.MetricStrain, false, 60},
}

// baselineRules refine fixed thresholds when a personal baseline exists:
// a metric below mean-std or below mean*0.85 fires the trigger even if
// the population threshold did not.
var baselineRules = map[string]string{
	models.MetricHRV:           LowHRV,
	models.MetricSleepScore:    PoorSleep,
	models.MetricRecoveryScore: RecoveryNeeded,
}

// Evaluate computes the trigger set. A missing metric never fires its
// triggers, and a check-in can only force triggers on, never clear them.
// Sunlight exposure is not measured, so low_sunlight is on by default.
func Evaluate(snap *models.Snapshot, base *models.Baseline, checkin *models.CheckIn) Set {
	set := Set{LowSunlight: true}

	for _, r := range fixedRules {
		v, ok := snap.Metric(r.metric)
		if !ok {
			continue
		}
		if r.below && v < r.value {
			set[r.trigger] = true
		}
		if !r.below && v > r.value {
			set[r.trigger] = true
		}
	}

	// Composite: average of sleep and recovery signals low energy.
	if sleep, ok := snap.Metric(models.MetricSleepScore); ok {
		if rec, ok := snap.Metric(models.MetricRecoveryScore); ok {
			if (sleep+rec)/2 < 60 {
				set[LowEnergy] = true
			}
		}
	}

	for metric, name := range baselineRules {
		v, ok := snap.Metric(metric)
		if !ok {
			continue
		}
		st, ok := base.Get(metric)
		if !ok {
			continue
		}
		if v < st.Mean-st.Std || v < st.Mean*0.85 {
			set[name] = true
		}
	}

	applyCheckIn(set, checkin)
	return set
}

// applyCheckIn forces triggers on from subjective scores. 1-2 on a 1-5
// scale is a bad report; 4-5 stress is a high report. Zero means
// unanswered and is ignored.
func applyCheckIn(set Set, c *models.CheckIn) {
	if c == nil {
		return
	}
	if c.EnergyLevel > 0 && c.EnergyLevel <= 2 {
		set[LowEnergy] = true
		set[Fatigue] = true
	}
	if c.SleepQuality > 0 && c.SleepQuality <= 2 {
		set[PoorSleepQuality] = true
	}
	if c.StressLevel >= 4 {
		set[HighStress] = true
	}
	if c.Mood > 0 && c.Mood <= 2 {
		set[LowMood] = true
	}
}
