package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosepilot/dosepilot/internal/models"
)

func f(v float64) *float64 { return &v }

func hrvBaseline(mean float64) *models.Baseline {
	return &models.Baseline{
		SampleCount: 7,
		Stats: map[string]models.Stat{
			models.MetricHRV: {Mean: mean, Std: 5},
		},
	}
}

func actionFor(eval Evaluation, rule, supplement string) (SupplementAction, bool) {
	for _, a := range eval.Actions {
		if a.Rule == rule && a.SupplementID == supplement {
			return a, true
		}
	}
	return SupplementAction{}, false
}

func TestEvaluate_ImmuneAlert(t *testing.T) {
	eval := Evaluate(&models.Snapshot{TempDeviation: f(0.7)}, nil)

	assert.Contains(t, eval.FiredRules, "immune_alert")
	assert.NotContains(t, eval.FiredRules, "immune_crisis")
	assert.Equal(t, StatusImmuneAlert, eval.Status)

	hold, ok := actionFor(eval, "immune_alert", "caffeine")
	require.True(t, ok)
	assert.Equal(t, ActionHold, hold.Kind)

	vc, ok := actionFor(eval, "immune_alert", "vitamin_c")
	require.True(t, ok)
	assert.Equal(t, ActionIncrease, vc.Kind)
	assert.Equal(t, 1.5, vc.Multiplier)
	assert.Contains(t, vc.Explanation, "0.7")
}

func TestEvaluate_ImmuneCrisisAlertsUser(t *testing.T) {
	eval := Evaluate(&models.Snapshot{TempDeviation: f(1.2)}, nil)

	assert.Contains(t, eval.FiredRules, "immune_crisis")
	// 1.2 also crosses the 0.5 alert threshold.
	assert.Contains(t, eval.FiredRules, "immune_alert")
	assert.NotEmpty(t, eval.Alerts)

	creatine, ok := actionFor(eval, "immune_crisis", "creatine")
	require.True(t, ok)
	assert.Equal(t, ActionHold, creatine.Kind)
}

func TestEvaluate_HRVBaselineRelative(t *testing.T) {
	base := hrvBaseline(80)

	t.Run("severe stress below 70 percent of baseline", func(t *testing.T) {
		eval := Evaluate(&models.Snapshot{HRV: f(50)}, base)
		assert.Contains(t, eval.FiredRules, "severe_stress")
		assert.Equal(t, StatusStressed, eval.Status)

		caffeine, ok := actionFor(eval, "severe_stress", "caffeine")
		require.True(t, ok)
		assert.Equal(t, ActionReduce, caffeine.Kind)
		assert.Equal(t, 0.25, caffeine.Multiplier)
		assert.Equal(t, 12, caffeine.BeforeHour)
		assert.Contains(t, caffeine.Explanation, "37.5%")
	})

	t.Run("moderate stress below 85 percent", func(t *testing.T) {
		eval := Evaluate(&models.Snapshot{HRV: f(65)}, base)
		assert.Contains(t, eval.FiredRules, "moderate_stress")
		assert.NotContains(t, eval.FiredRules, "severe_stress")
	})

	t.Run("recovery mode above 110 percent", func(t *testing.T) {
		eval := Evaluate(&models.Snapshot{HRV: f(90)}, base)
		assert.Contains(t, eval.FiredRules, "recovery_mode")

		allow, ok := actionFor(eval, "recovery_mode", "creatine")
		require.True(t, ok)
		assert.Equal(t, ActionAllow, allow.Kind)
	})

	t.Run("no baseline means relative rules stay silent", func(t *testing.T) {
		eval := Evaluate(&models.Snapshot{HRV: f(50)}, nil)
		assert.NotContains(t, eval.FiredRules, "severe_stress")
		assert.NotContains(t, eval.FiredRules, "moderate_stress")
	})

	t.Run("fixed floor fires without baseline", func(t *testing.T) {
		eval := Evaluate(&models.Snapshot{HRV: f(35)}, nil)
		assert.Contains(t, eval.FiredRules, "fixed_low_hrv")
	})
}

func TestEvaluate_SleepLadder(t *testing.T) {
	eval := Evaluate(&models.Snapshot{SleepScore: f(45)}, nil)

	assert.Contains(t, eval.FiredRules, "sleep_crisis")
	assert.Contains(t, eval.FiredRules, "poor_sleep")
	assert.Contains(t, eval.FiredRules, "suboptimal_sleep")
	assert.Equal(t, StatusSleepDeficit, eval.Status)
}

func TestEvaluate_LowDeepSleepHoldsMelatonin(t *testing.T) {
	eval := Evaluate(&models.Snapshot{DeepSleepPct: f(12)}, nil)

	mel, ok := actionFor(eval, "low_deep_sleep", "melatonin")
	require.True(t, ok)
	assert.Equal(t, ActionHold, mel.Kind)
}

func TestEvaluate_CompoundMinMatches(t *testing.T) {
	base := hrvBaseline(80)

	t.Run("two of three markers fire overtraining", func(t *testing.T) {
		snap := &models.Snapshot{HRV: f(60), SleepScore: f(55)}
		eval := Evaluate(snap, base)
		assert.Contains(t, eval.FiredRules, "overtraining_syndrome")
		assert.NotEmpty(t, eval.Alerts)
	})

	t.Run("one marker is not enough", func(t *testing.T) {
		snap := &models.Snapshot{SleepScore: f(55)}
		eval := Evaluate(snap, base)
		assert.NotContains(t, eval.FiredRules, "overtraining_syndrome")
	})

	t.Run("missing metric never counts as a match", func(t *testing.T) {
		// HRV low but sleep and recovery absent: only one match.
		snap := &models.Snapshot{HRV: f(60)}
		eval := Evaluate(snap, base)
		assert.NotContains(t, eval.FiredRules, "overtraining_syndrome")
	})

	t.Run("immune plus stress", func(t *testing.T) {
		snap := &models.Snapshot{TempDeviation: f(0.4), HRV: f(65)}
		eval := Evaluate(snap, base)
		assert.Contains(t, eval.FiredRules, "immune_plus_stress")
		assert.Equal(t, StatusImmuneAlert, eval.Status)
	})
}

func TestEvaluate_EmptySnapshotIsOptimal(t *testing.T) {
	eval := Evaluate(&models.Snapshot{}, nil)
	assert.Empty(t, eval.FiredRules)
	assert.Empty(t, eval.Actions)
	assert.Equal(t, StatusOptimal, eval.Status)
}

func TestResolve_HoldBeatsHigherLevels(t *testing.T) {
	actions := []SupplementAction{
		{SupplementID: "caffeine", Kind: ActionIncrease, Multiplier: 1.5, Level: LevelImmuneResponse, Rule: "a"},
		{SupplementID: "caffeine", Kind: ActionHold, Level: LevelOptimization, Rule: "b"},
		{SupplementID: "caffeine", Kind: ActionReduce, Multiplier: 0.5, Level: LevelAcuteStress, Rule: "c"},
	}

	winners := Resolve(actions)
	require.Contains(t, winners, "caffeine")
	assert.Equal(t, ActionHold, winners["caffeine"].Kind, "hold wins even from a lower level")
}

func TestResolve_HighestLevelWinsWithoutHold(t *testing.T) {
	actions := []SupplementAction{
		{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.25, Level: LevelOptimization, Rule: "low"},
		{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.5, Level: LevelAcuteStress, Rule: "high"},
	}

	winners := Resolve(actions)
	assert.Equal(t, 1.5, winners["magnesium_glycinate"].Multiplier)
	assert.Equal(t, "high", winners["magnesium_glycinate"].Rule)
}

func TestResolve_DeterministicTieBreak(t *testing.T) {
	actions := []SupplementAction{
		{SupplementID: "omega_3", Kind: ActionIncrease, Multiplier: 1.25, Level: LevelRecoveryDeficit, Rule: "first"},
		{SupplementID: "omega_3", Kind: ActionIncrease, Multiplier: 1.5, Level: LevelRecoveryDeficit, Rule: "second"},
	}

	winners := Resolve(actions)
	assert.Equal(t, "first", winners["omega_3"].Rule, "equal levels keep evaluation order")
}

func TestPriorityLevelNames(t *testing.T) {
	assert.Equal(t, "safety_block", LevelSafetyBlock.String())
	assert.Equal(t, "immune_response", LevelImmuneResponse.String())
	assert.Equal(t, "maintenance", LevelMaintenance.String())
	assert.Greater(t, int(LevelSafetyBlock), int(LevelImmuneResponse))
}

func TestCitationsFor(t *testing.T) {
	cites := CitationsFor("severe_stress")
	require.NotEmpty(t, cites)
	assert.NotEmpty(t, cites[0].PubMedID)

	assert.Nil(t, CitationsFor("no_such_rule"))
}
