package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosepilot/dosepilot/internal/config"
	"github.com/dosepilot/dosepilot/internal/models"
)

func f(v float64) *float64 { return &v }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load("", dir)
	require.NoError(t, err)

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestStore(t)

	lat := 52.5
	in := &models.Profile{
		UserID:      "u1",
		AgeYears:    34,
		Sex:         models.SexFemale,
		WeightKg:    61.5,
		Allergies:   []string{"fish"},
		Medications: []string{"levothyroxine"},
		Diet:        models.DietVegetarian,
		Activity:    models.ActivityActive,
		Work:        models.WorkRemote,
		Chronotype:  models.ChronotypeNightOwl,
		LatitudeDeg: &lat,
		BedtimeHour: 23,
	}
	require.NoError(t, s.SaveProfile(in))

	out, err := s.GetProfile("u1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.WeightKg, out.WeightKg)
	assert.Equal(t, []string{"fish"}, out.Allergies)
	assert.Equal(t, []string{"levothyroxine"}, out.Medications)
	assert.Equal(t, models.ChronotypeNightOwl, out.Chronotype)
	require.NotNil(t, out.LatitudeDeg)
	assert.Equal(t, 52.5, *out.LatitudeDeg)

	// Saving again updates in place.
	in.WeightKg = 63.0
	require.NoError(t, s.SaveProfile(in))
	out, err = s.GetProfile("u1")
	require.NoError(t, err)
	assert.Equal(t, 63.0, out.WeightKg)
}

func TestGetProfile_MissingIsNil(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetProfile("nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestUpsertSample_ReplacesSameDay(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertSample("u1", "mock", &models.Snapshot{Date: day(10), HRV: f(55)}))
	require.NoError(t, s.UpsertSample("u1", "mock", &models.Snapshot{Date: day(10), HRV: f(58)}))

	snaps, err := s.RecentSamples("u1", 10)
	require.NoError(t, err)
	require.Len(t, snaps, 1, "same-day sync replaces, not duplicates")
	assert.Equal(t, 58.0, *snaps[0].HRV)
}

func TestRecentSamples_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	for d := 10; d <= 13; d++ {
		require.NoError(t, s.UpsertSample("u1", "mock", &models.Snapshot{
			Date: day(d), HRV: f(float64(d)),
		}))
	}

	snaps, err := s.RecentSamples("u1", 3)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, 13.0, *snaps[0].HRV)
	assert.Equal(t, 11.0, *snaps[2].HRV)

	latest, err := s.LatestSample("u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 13.0, *latest.HRV)
}

func TestComputeBaseline(t *testing.T) {
	s := newTestStore(t)
	now := day(14).Add(8 * time.Hour)

	t.Run("too few samples yields no baseline", func(t *testing.T) {
		require.NoError(t, s.UpsertSample("u1", "mock", &models.Snapshot{Date: day(12), HRV: f(50)}))
		require.NoError(t, s.UpsertSample("u1", "mock", &models.Snapshot{Date: day(13), HRV: f(60)}))

		base, err := s.ComputeBaseline("u1", now)
		require.NoError(t, err)
		assert.Nil(t, base)
	})

	t.Run("three samples produce stats", func(t *testing.T) {
		require.NoError(t, s.UpsertSample("u1", "mock", &models.Snapshot{
			Date: day(14), HRV: f(70), SleepScore: f(80),
		}))

		base, err := s.ComputeBaseline("u1", now)
		require.NoError(t, err)
		require.NotNil(t, base)
		assert.Equal(t, 3, base.SampleCount)

		hrv, ok := base.Get(models.MetricHRV)
		require.True(t, ok)
		assert.InDelta(t, 60.0, hrv.Mean, 0.001)
		assert.InDelta(t, 8.165, hrv.Std, 0.01)

		// Sleep score only appeared once, so it has no baseline yet.
		_, ok = base.Get(models.MetricSleepScore)
		assert.False(t, ok)
	})

	t.Run("old samples fall out of the window", func(t *testing.T) {
		base, err := s.ComputeBaseline("u1", day(14).AddDate(0, 2, 0))
		require.NoError(t, err)
		assert.Nil(t, base)
	})
}

func TestCheckInToday(t *testing.T) {
	s := newTestStore(t)
	now := day(10).Add(9 * time.Hour)

	ci, err := s.TodayCheckIn("u1", now)
	require.NoError(t, err)
	assert.Nil(t, ci)

	_, err = s.CreateCheckIn("u1", now, &models.CheckIn{EnergyLevel: 2, StressLevel: 4})
	require.NoError(t, err)

	ci, err = s.TodayCheckIn("u1", now)
	require.NoError(t, err)
	require.NotNil(t, ci)
	assert.Equal(t, 2, ci.EnergyLevel)
	assert.Equal(t, 4, ci.StressLevel)

	// Yesterday's check-in does not leak into today.
	ci, err = s.TodayCheckIn("u1", now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, ci)
}

func TestDispenseLedger(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.CreateDispense("u1", []DispenseLog{
		{SupplementID: "caffeine", Dose: 100, Unit: "mg", Source: "recommendation", DispensedAt: now},
		{SupplementID: "vitamin_c", Dose: 500, Unit: "mg", Source: "recommendation", DispensedAt: now},
	}))

	totals, err := s.DispensedToday("u1", now)
	require.NoError(t, err)
	assert.Equal(t, 100.0, totals["caffeine"])
	assert.Equal(t, 500.0, totals["vitamin_c"])

	// A second dispense invalidates the cached totals.
	require.NoError(t, s.CreateDispense("u1", []DispenseLog{
		{SupplementID: "caffeine", Dose: 100, Unit: "mg", Source: "wake_me_up", DispensedAt: now},
	}))

	totals, err = s.DispensedToday("u1", now)
	require.NoError(t, err)
	assert.Equal(t, 200.0, totals["caffeine"])

	rows, err := s.DispensesToday("u1", now)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// Other users see an empty ledger.
	totals, err = s.DispensedToday("u2", now)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestUsageStreaks(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.TouchUsage("u1", "melatonin", day(10)))
	require.NoError(t, s.TouchUsage("u1", "melatonin", day(10)), "same day is a no-op")
	require.NoError(t, s.TouchUsage("u1", "melatonin", day(11)))
	require.NoError(t, s.TouchUsage("u1", "melatonin", day(12)))

	streaks, err := s.ConsecutiveDays("u1", day(12))
	require.NoError(t, err)
	assert.Equal(t, 3, streaks["melatonin"])

	// A missed day breaks the streak even before the next touch.
	streaks, err = s.ConsecutiveDays("u1", day(15))
	require.NoError(t, err)
	assert.Equal(t, 0, streaks["melatonin"])

	// The next touch after a gap restarts at one.
	require.NoError(t, s.TouchUsage("u1", "melatonin", day(15)))
	streaks, err = s.ConsecutiveDays("u1", day(15))
	require.NoError(t, err)
	assert.Equal(t, 1, streaks["melatonin"])
}

func TestRolloverUsage(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.TouchUsage("u1", "ashwagandha", day(10)))
	require.NoError(t, s.TouchUsage("u1", "caffeine", day(13)))

	n, err := s.RolloverUsage(day(14))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the stale streak resets")

	streaks, err := s.ConsecutiveDays("u1", day(14))
	require.NoError(t, err)
	assert.Equal(t, 0, streaks["ashwagandha"])
	assert.Equal(t, 1, streaks["caffeine"])
}

func TestClaimRequestID(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.ClaimRequestID("u1", "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ClaimRequestID("u1", "req-1")
	require.NoError(t, err)
	assert.False(t, ok, "retries are rejected")

	ok, err = s.ClaimRequestID("u2", "req-1")
	require.NoError(t, err)
	assert.True(t, ok, "claims are per user")

	ok, err = s.ClaimRequestID("u1", "")
	require.NoError(t, err)
	assert.True(t, ok, "missing request IDs are not deduplicated")
}
