package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosepilot/dosepilot/internal/catalog"
	"github.com/dosepilot/dosepilot/internal/config"
	"github.com/dosepilot/dosepilot/internal/models"
	"github.com/dosepilot/dosepilot/internal/pipeline"
	"github.com/dosepilot/dosepilot/internal/rules"
	"github.com/dosepilot/dosepilot/internal/safety"
	"github.com/dosepilot/dosepilot/internal/store"
	"github.com/dosepilot/dosepilot/internal/wearable"
)

func f(v float64) *float64 { return &v }

func april(day, hour int) time.Time {
	return time.Date(2026, 4, day, hour, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)

	st, err := store.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return New(st, catalog.Default(), wearable.NewMock(0), nil), st
}

func doseFor(rec *Recommendation, id string) (pipeline.Dose, bool) {
	for _, d := range rec.Doses {
		if d.SupplementID == id {
			return d, true
		}
	}
	return pipeline.Dose{}, false
}

func heldFor(held []pipeline.Hold, id string) bool {
	for _, h := range held {
		if h.SupplementID == id {
			return true
		}
	}
	return false
}

func TestRecommend_NewUserMorning(t *testing.T) {
	e, _ := newTestEngine(t)

	rec, err := e.Recommend(context.Background(), "u1", april(15, 9))
	require.NoError(t, err)

	assert.Equal(t, rules.StatusOptimal, rec.Status)
	assert.Equal(t, []string{"low_sunlight"}, rec.Triggers, "sunlight is assumed low without data")
	assert.Empty(t, rec.Held)
	assert.Equal(t, "daily_foundation", rec.SuggestedMix)

	d, ok := doseFor(rec, "vitamin_d3")
	require.True(t, ok, "the foundation stack covers a data-free morning")
	assert.Equal(t, 2000.0, d.Dose)
	assert.Contains(t, d.Reasons[0], "low_sunlight")

	_, ok = doseFor(rec, "magnesium_glycinate")
	assert.False(t, ok, "magnesium is not a morning supplement")
}

func TestRecommend_EveningWithoutData(t *testing.T) {
	e, _ := newTestEngine(t)

	rec, err := e.Recommend(context.Background(), "u1", april(15, 21))
	require.NoError(t, err)

	assert.Equal(t, rules.StatusOptimal, rec.Status)
	assert.Empty(t, rec.Doses, "the foundation stack is not served in the evening")
	assert.Equal(t, "night_drink", rec.SuggestedMix)
}

func TestRecommend_SickMorning(t *testing.T) {
	e, st := newTestEngine(t)
	now := april(15, 9)

	require.NoError(t, st.UpsertSample("u1", "mock", &models.Snapshot{
		Date: now, TempDeviation: f(1.2), SleepScore: f(72),
	}))

	rec, err := e.Recommend(context.Background(), "u1", now)
	require.NoError(t, err)

	assert.Equal(t, rules.StatusImmuneAlert, rec.Status)
	assert.NotEmpty(t, rec.Alerts)
	assert.True(t, heldFor(rec.Held, "caffeine"), "stimulants are held during an immune crisis")

	d, ok := doseFor(rec, "elderberry")
	require.True(t, ok)
	assert.Equal(t, 1000.0, d.Dose, "elderberry is doubled in a crisis")

	d, ok = doseFor(rec, "vitamin_c")
	require.True(t, ok)
	assert.Equal(t, 1000.0, d.Dose, "vitamin C runs at double in a crisis")

	assert.NotEmpty(t, rec.Citations, "immune rules carry published evidence")
	assert.Equal(t, "immune_boost", rec.SuggestedMix)
}

func TestRecommend_CheckInChangesDoses(t *testing.T) {
	e, st := newTestEngine(t)
	now := april(15, 9)

	before, err := e.Recommend(context.Background(), "u1", now)
	require.NoError(t, err)
	_, ok := doseFor(before, "caffeine")
	require.False(t, ok, "no stimulant without a reason")

	// A rough subjective morning, no wearable data at all.
	_, err = st.CreateCheckIn("u1", now, &models.CheckIn{
		EnergyLevel: 1, SleepQuality: 2, StressLevel: 4,
	})
	require.NoError(t, err)

	rec, err := e.Recommend(context.Background(), "u1", now)
	require.NoError(t, err)

	assert.Contains(t, rec.Triggers, "low_energy")
	assert.Contains(t, rec.Triggers, "high_stress")

	d, ok := doseFor(rec, "caffeine")
	require.True(t, ok, "a low-energy report pulls in caffeine")
	assert.Equal(t, 100.0, d.Dose)
	require.NotEmpty(t, d.Reasons)
	assert.Contains(t, d.Reasons[0], "low_energy")

	_, ok = doseFor(rec, "ashwagandha")
	assert.True(t, ok, "a high-stress report pulls in ashwagandha")

	assert.Greater(t, len(rec.Doses), len(before.Doses))
}

func TestRecommend_OvertrainedAthlete(t *testing.T) {
	e, st := newTestEngine(t)
	now := april(15, 9)

	// A good week, then a crashed morning.
	for d := 10; d <= 14; d++ {
		require.NoError(t, st.UpsertSample("u1", "mock", &models.Snapshot{
			Date: april(d, 0), HRV: f(80), SleepScore: f(85), RecoveryScore: f(80),
		}))
	}
	require.NoError(t, st.UpsertSample("u1", "mock", &models.Snapshot{
		Date: now, HRV: f(50), SleepScore: f(55), RecoveryScore: f(45),
	}))
	require.NoError(t, st.SaveProfile(&models.Profile{
		UserID: "u1", Activity: models.ActivityAthlete,
	}))

	rec, err := e.Recommend(context.Background(), "u1", now)
	require.NoError(t, err)

	assert.Equal(t, rules.StatusStressed, rec.Status)
	assert.NotEmpty(t, rec.Triggers)
	assert.NotEmpty(t, rec.Alerts, "overtraining raises a user alert")
	assert.Contains(t, rec.FiredRules, "overtraining_syndrome")

	assert.True(t, heldFor(rec.Held, "caffeine"))
	assert.True(t, heldFor(rec.Held, "creatine"))

	d, ok := doseFor(rec, "ashwagandha")
	require.True(t, ok)
	assert.Equal(t, 300.0, d.Dose)

	d, ok = doseFor(rec, "omega_3")
	require.True(t, ok)
	assert.Equal(t, 1500.0, d.Dose, "omega-3 boosted 1.5x for recovery")
}

func TestRecommend_ContextCancelled(t *testing.T) {
	e, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Recommend(ctx, "u1", april(15, 9))
	assert.Error(t, err)
}

func TestCalculateMix(t *testing.T) {
	e, st := newTestEngine(t)

	t.Run("jet lag in the evening", func(t *testing.T) {
		res, err := e.CalculateMix(context.Background(), "u1", "jet_lag", april(15, 21))
		require.NoError(t, err)
		assert.True(t, res.Available)

		var melatonin bool
		for _, d := range res.Doses {
			if d.SupplementID == "melatonin" {
				melatonin = true
				assert.Equal(t, 0.5, d.Dose)
			}
		}
		assert.True(t, melatonin)
	})

	t.Run("morning mix refused in the evening", func(t *testing.T) {
		res, err := e.CalculateMix(context.Background(), "u1", "wake_me_up", april(15, 18))
		require.NoError(t, err)
		assert.False(t, res.Available)
		assert.Contains(t, res.Reason, "evening")
	})

	t.Run("required component held fails the mix", func(t *testing.T) {
		require.NoError(t, st.UpsertSample("u2", "mock", &models.Snapshot{
			Date: april(15, 0), TempDeviation: f(1.2),
		}))

		res, err := e.CalculateMix(context.Background(), "u2", "pre_workout", april(15, 9))
		require.NoError(t, err)
		assert.False(t, res.Available)
		assert.Contains(t, res.Reason, "held")
	})

	t.Run("unknown mix errors", func(t *testing.T) {
		_, err := e.CalculateMix(context.Background(), "u1", "unicorn_blood", april(15, 9))
		assert.ErrorIs(t, err, ErrUnknownMix)
	})
}

func TestAvailableMixes_AllergyFiltersRequiredComponents(t *testing.T) {
	e, st := newTestEngine(t)
	now := april(15, 9)

	require.NoError(t, st.SaveProfile(&models.Profile{
		UserID: "u1", Allergies: []string{"fish"},
	}))

	list, err := e.AvailableMixes("u1", now)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, m := range list {
		ids[m.ID] = true
	}
	assert.True(t, ids["wake_me_up"])
	assert.False(t, ids["recovery_day"], "recovery day requires omega-3, blocked by the fish allergy")
}

func TestRecordDispense_Idempotent(t *testing.T) {
	e, st := newTestEngine(t)
	now := time.Now().UTC()

	doses := []pipeline.Dose{{SupplementID: "caffeine", Dose: 100, Unit: "mg"}}

	fresh, err := e.RecordDispense(context.Background(), "u1", "req-1", "recommendation", doses, now)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = e.RecordDispense(context.Background(), "u1", "req-1", "recommendation", doses, now)
	require.NoError(t, err)
	assert.False(t, fresh, "a retried dispense is not poured twice")

	rows, err := st.DispensesToday("u1", now)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCycleReport(t *testing.T) {
	e, _ := newTestEngine(t)
	now := time.Now().UTC()

	doses := []pipeline.Dose{{SupplementID: "melatonin", Dose: 0.5, Unit: "mg"}}
	_, err := e.RecordDispense(context.Background(), "u1", "", "jet_lag", doses, now)
	require.NoError(t, err)

	entries, err := e.CycleReport("u1", now)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var found bool
	for _, en := range entries {
		if en.SupplementID == "melatonin" {
			found = true
			assert.Equal(t, 1, en.ConsecutiveDays)
			assert.Equal(t, 30, en.MaxDays)
			assert.Equal(t, safety.CycleOK, en.Status)
		}
	}
	assert.True(t, found)
}
