package mixes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosepilot/dosepilot/internal/catalog"
	"github.com/dosepilot/dosepilot/internal/models"
	"github.com/dosepilot/dosepilot/internal/rules"
)

func TestList(t *testing.T) {
	all := List()
	assert.Len(t, all, 13)

	seen := map[string]bool{}
	for _, m := range all {
		assert.False(t, seen[m.ID], "duplicate mix id %s", m.ID)
		seen[m.ID] = true
		assert.NotEmpty(t, m.Components, m.ID)
		assert.NotEmpty(t, m.Windows, m.ID)
	}
}

func TestComponentsExistInCatalog(t *testing.T) {
	cat := catalog.Default()
	for _, m := range List() {
		for _, c := range m.Components {
			_, ok := cat.Get(c.SupplementID)
			assert.True(t, ok, "mix %s references unknown supplement %s", m.ID, c.SupplementID)
			assert.Positive(t, c.DoseMultiplier, "mix %s component %s", m.ID, c.SupplementID)
		}
	}
}

func TestGet(t *testing.T) {
	m, ok := Get("pre_workout")
	require.True(t, ok)
	assert.Equal(t, "Pre-Workout", m.Name)

	// Pre-workout runs caffeine hot.
	for _, c := range m.Components {
		if c.SupplementID == "caffeine" {
			assert.Equal(t, 1.5, c.DoseMultiplier)
			assert.True(t, c.Required)
		}
	}

	_, ok = Get("nope")
	assert.False(t, ok)
}

func TestAvailableAt(t *testing.T) {
	evening := AvailableAt(models.Evening)
	ids := map[string]bool{}
	for _, m := range evening {
		ids[m.ID] = true
	}
	assert.True(t, ids["night_drink"])
	assert.True(t, ids["jet_lag"])
	assert.False(t, ids["wake_me_up"])
	assert.False(t, ids["pre_workout"])
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name   string
		status rules.Status
		hour   int
		want   string
	}{
		{"immune alert any time", rules.StatusImmuneAlert, 9, "immune_boost"},
		{"stressed in the afternoon", rules.StatusStressed, 15, "stressed"},
		{"stressed in the morning falls back", rules.StatusStressed, 8, "daily_foundation"},
		{"sleep deficit in the evening", rules.StatusSleepDeficit, 21, "night_drink"},
		{"sleep deficit in the morning", rules.StatusSleepDeficit, 9, "low_energy"},
		{"recovery needed", rules.StatusRecoveryNeeded, 10, "recovery_day"},
		{"optimal morning", rules.StatusOptimal, 8, "daily_foundation"},
		{"optimal evening", rules.StatusOptimal, 21, "night_drink"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Recommend(tt.status, tt.hour)
			assert.Equal(t, tt.want, m.ID)
			assert.True(t, m.AvailableAt(models.TimeOfDayAt(tt.hour)),
				"recommended mix must be available at hour %d", tt.hour)
		})
	}
}
