package wearable

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/dosepilot/dosepilot/internal/models"
)

// Mock generates plausible wearable data without any device. The same
// date always produces the same snapshot so tests and demos are
// reproducible, with an optional extra seed to vary between users.
type Mock struct {
	seed int64
}

// NewMock creates a mock provider. Seed 0 is a valid fixed seed.
func NewMock(seed int64) *Mock {
	return &Mock{seed: seed}
}

// Name implements Provider.
func (m *Mock) Name() string { return "mock" }

// FetchDaily implements Provider. Values follow a weekly rhythm: sleep
// dips midweek, strain peaks on training days, HRV tracks both.
func (m *Mock) FetchDaily(ctx context.Context, date time.Time) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	day := date.UTC().Truncate(24 * time.Hour)
	rng := rand.New(rand.NewSource(day.Unix() ^ m.seed))

	weekday := float64(day.Weekday())
	weekly := math.Sin(weekday / 7.0 * 2 * math.Pi)

	jitter := func(spread float64) float64 {
		return (rng.Float64()*2 - 1) * spread
	}
	clamp := func(v, lo, hi float64) float64 {
		return math.Max(lo, math.Min(hi, v))
	}
	f := func(v float64) *float64 {
		r := math.Round(v*10) / 10
		return &r
	}

	sleepScore := clamp(74+8*weekly+jitter(10), 30, 98)
	hrv := clamp(58+6*weekly+jitter(8), 25, 110)
	recovery := clamp(68+10*weekly+jitter(12), 20, 99)
	strain := clamp(55-12*weekly+jitter(15), 5, 95)

	return &models.Snapshot{
		Date:          day,
		HRV:           f(hrv),
		SleepScore:    f(sleepScore),
		SleepDuration: f(clamp(7.2+0.6*weekly+jitter(0.8), 4, 10)),
		DeepSleepPct:  f(clamp(18+3*weekly+jitter(4), 5, 35)),
		SleepLatency:  f(clamp(16-4*weekly+jitter(8), 2, 60)),
		RecoveryScore: f(recovery),
		Strain:        f(strain),
		TempDeviation: f(jitter(0.25)),
		RestingHR:     f(clamp(56-3*weekly+jitter(4), 40, 85)),
	}, nil
}
