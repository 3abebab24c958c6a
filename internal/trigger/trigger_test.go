package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dosepilot/dosepilot/internal/models"
)

func f(v float64) *float64 { return &v }

func TestEvaluate_FixedThresholds(t *testing.T) {
	tests := []struct {
		name     string
		snap     models.Snapshot
		expected []string
	}{
		{
			name:     "low sleep score fires the whole sleep ladder",
			snap:     models.Snapshot{SleepScore: f(50)},
			expected: []string{PoorSleep, PoorSleepQuality, PoorSleepOnset, SleepOptimize, LowSunlight},
		},
		{
			name:     "sleep score 75 only fires optimization",
			snap:     models.Snapshot{SleepScore: f(75)},
			expected: []string{SleepOptimize, LowSunlight},
		},
		{
			name:     "low hrv",
			snap:     models.Snapshot{HRV: f(48)},
			expected: []string{LowHRV, LowSunlight},
		},
		{
			name:     "very low hrv adds high stress",
			snap:     models.Snapshot{HRV: f(42)},
			expected: []string{LowHRV, HighStress, LowSunlight},
		},
		{
			name:     "high strain",
			snap:     models.Snapshot{Strain: f(72)},
			expected: []string{HighStrain, HighInflammation, LowSunlight},
		},
		{
			name:     "very high strain adds dehydration",
			snap:     models.Snapshot{Strain: f(78)},
			expected: []string{HighStrain, Dehydration, HighInflammation, LowSunlight},
		},
		{
			name:     "short sleep duration",
			snap:     models.Snapshot{SleepDuration: f(5.5)},
			expected: []string{Fatigue, LowSunlight},
		},
		{
			name:     "composite low energy",
			snap:     models.Snapshot{SleepScore: f(62), RecoveryScore: f(56)},
			expected: []string{PoorSleepQuality, RecoveryNeeded, MuscleRecovery, LowEnergy, LowSunlight},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := Evaluate(&tt.snap, nil, nil)
			assert.ElementsMatch(t, tt.expected, set.Names())
		})
	}
}

func TestEvaluate_AbsentMetricsFireNothing(t *testing.T) {
	// Only the low_sunlight default survives an empty snapshot.
	set := Evaluate(&models.Snapshot{}, nil, nil)
	assert.Equal(t, []string{LowSunlight}, set.Names())

	// Nil snapshot behaves like an empty one.
	set = Evaluate(nil, nil, nil)
	assert.Equal(t, []string{LowSunlight}, set.Names())
}

func TestEvaluate_BaselineRelative(t *testing.T) {
	base := &models.Baseline{
		SampleCount: 14,
		Stats: map[string]models.Stat{
			models.MetricHRV: {Mean: 80, Std: 8},
		},
	}

	// 65 is above the fixed threshold of 50 but below mean-std (72).
	set := Evaluate(&models.Snapshot{HRV: f(65)}, base, nil)
	assert.True(t, set[LowHRV], "personal baseline should fire low_hrv")

	// 75 is within one std and above mean*0.85 (68): no trigger.
	set = Evaluate(&models.Snapshot{HRV: f(75)}, base, nil)
	assert.False(t, set[LowHRV])

	// Missing baseline stat falls back to fixed thresholds only.
	set = Evaluate(&models.Snapshot{HRV: f(65)}, &models.Baseline{}, nil)
	assert.False(t, set[LowHRV])
}

func TestEvaluate_CheckInOnlyForcesTrue(t *testing.T) {
	// Good metrics, bad subjective report: check-in wins by forcing on.
	snap := &models.Snapshot{SleepScore: f(90), HRV: f(85), RecoveryScore: f(90)}
	checkin := &models.CheckIn{EnergyLevel: 1, SleepQuality: 2, StressLevel: 5, Mood: 1}

	set := Evaluate(snap, nil, checkin)
	assert.True(t, set[LowEnergy])
	assert.True(t, set[Fatigue])
	assert.True(t, set[PoorSleepQuality])
	assert.True(t, set[HighStress])
	assert.True(t, set[LowMood])

	// Bad metrics, good subjective report: check-in never clears a trigger.
	snap = &models.Snapshot{SleepScore: f(40)}
	checkin = &models.CheckIn{SleepQuality: 5, EnergyLevel: 5}
	set = Evaluate(snap, nil, checkin)
	assert.True(t, set[PoorSleep], "a good check-in must not clear metric triggers")

	// Unanswered questions (zero) are ignored.
	set = Evaluate(&models.Snapshot{}, nil, &models.CheckIn{})
	assert.Equal(t, []string{LowSunlight}, set.Names())
}
