// Package models holds the domain types shared across the dosing engine.
package models

import "time"

// Metric names used by snapshots, baselines, and rule conditions.
const (
	MetricHRV           = "hrv"
	MetricSleepScore    = "sleep_score"
	MetricSleepDuration = "sleep_duration_hrs"
	MetricDeepSleepPct  = "deep_sleep_pct"
	MetricSleepLatency  = "sleep_latency_min"
	MetricRecoveryScore = "recovery_score"
	MetricStrain        = "strain"
	MetricTempDeviation = "temp_deviation"
	MetricRestingHR     = "resting_hr"
)

// Snapshot is one day of wearable metrics. A nil field means the metric
// was not reported, which is different from zero.
type Snapshot struct {
	Date          time.Time `json:"date"`
	HRV           *float64  `json:"hrv,omitempty"`
	SleepScore    *float64  `json:"sleep_score,omitempty"`
	SleepDuration *float64  `json:"sleep_duration_hrs,omitempty"`
	DeepSleepPct  *float64  `json:"deep_sleep_pct,omitempty"`
	SleepLatency  *float64  `json:"sleep_latency_min,omitempty"`
	RecoveryScore *float64  `json:"recovery_score,omitempty"`
	Strain        *float64  `json:"strain,omitempty"`
	TempDeviation *float64  `json:"temp_deviation,omitempty"`
	RestingHR     *float64  `json:"resting_hr,omitempty"`
}

// Metric returns a named metric and whether it was present in the snapshot.
func (s *Snapshot) Metric(name string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	var p *float64
	switch name {
	case MetricHRV:
		p = s.HRV
	case MetricSleepScore:
		p = s.SleepScore
	case MetricSleepDuration:
		p = s.SleepDuration
	case MetricDeepSleepPct:
		p = s.DeepSleepPct
	case MetricSleepLatency:
		p = s.SleepLatency
	case MetricRecoveryScore:
		p = s.RecoveryScore
	case MetricStrain:
		p = s.Strain
	case MetricTempDeviation:
		p = s.TempDeviation
	case MetricRestingHR:
		p = s.RestingHR
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Stat is the mean and standard deviation of one metric over the
// baseline window.
type Stat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Baseline is a per-user rolling summary of recent health samples.
// It only exists once at least MinBaselineSamples samples are recorded.
type Baseline struct {
	SampleCount int             `json:"sample_count"`
	ComputedAt  time.Time       `json:"computed_at"`
	Stats       map[string]Stat `json:"stats"`
}

// MinBaselineSamples is the minimum number of health samples required
// before a baseline is considered meaningful.
const MinBaselineSamples = 3

// Get returns the baseline stat for a metric and whether it exists.
func (b *Baseline) Get(metric string) (Stat, bool) {
	if b == nil || b.Stats == nil {
		return Stat{}, false
	}
	st, ok := b.Stats[metric]
	return st, ok
}

// CheckIn captures subjective 1-5 scores reported by the user.
// Zero means the question was not answered.
type CheckIn struct {
	EnergyLevel  int       `json:"energy_level"`
	StressLevel  int       `json:"stress_level"`
	SleepQuality int       `json:"sleep_quality"`
	Mood         int       `json:"mood"`
	Focus        int       `json:"focus"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Sex is the biological sex used by dose adjustment rules.
type Sex string

// Sex values.
const (
	SexFemale      Sex = "female"
	SexMale        Sex = "male"
	SexUnspecified Sex = ""
)

// DietType describes the user's diet for personalization modifiers.
type DietType string

// DietType values.
const (
	DietOmnivore   DietType = "omnivore"
	DietVegetarian DietType = "vegetarian"
	DietVegan      DietType = "vegan"
)

// ActivityLevel describes habitual training load.
type ActivityLevel string

// ActivityLevel values.
const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityActive    ActivityLevel = "active"
	ActivityAthlete   ActivityLevel = "athlete"
)

// WorkEnvironment describes where the user spends the workday.
type WorkEnvironment string

// WorkEnvironment values.
const (
	WorkOffice  WorkEnvironment = "office"
	WorkRemote  WorkEnvironment = "remote"
	WorkOutdoor WorkEnvironment = "outdoor"
	WorkShift   WorkEnvironment = "shift"
)

// Chronotype describes the user's natural sleep phase.
type Chronotype string

// Chronotype values.
const (
	ChronotypeEarlyBird Chronotype = "early_bird"
	ChronotypeNightOwl  Chronotype = "night_owl"
	ChronotypeNeutral   Chronotype = "neutral"
)

// Profile holds the per-user attributes the engine personalizes on.
type Profile struct {
	UserID         string          `json:"user_id"`
	AgeYears       int             `json:"age_years"`
	Sex            Sex             `json:"sex"`
	WeightKg       float64         `json:"weight_kg"`
	Allergies      []string        `json:"allergies,omitempty"`
	Medications    []string        `json:"medications,omitempty"`
	Diet           DietType        `json:"diet"`
	Activity       ActivityLevel   `json:"activity"`
	Work           WorkEnvironment `json:"work"`
	Chronotype     Chronotype      `json:"chronotype"`
	LatitudeDeg    *float64        `json:"latitude_deg,omitempty"`
	SunExposureMin *float64        `json:"sun_exposure_min,omitempty"`
	BedtimeHour    int             `json:"bedtime_hour,omitempty"`
}

// TimeOfDay partitions the day for supplement availability windows.
type TimeOfDay string

// TimeOfDay values.
const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// TimeOfDayAt maps an hour of day to its window: morning is 5-11,
// afternoon 12-16, everything else evening.
func TimeOfDayAt(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	default:
		return Evening
	}
}
