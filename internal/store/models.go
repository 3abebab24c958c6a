package store

import (
	"crypto/rand"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/dosepilot/dosepilot/internal/models"
)

// UserProfile persists the personalization attributes for one user.
type UserProfile struct {
	UserID         string          `gorm:"primaryKey" json:"user_id"`
	AgeYears       int             `json:"age_years"`
	Sex            string          `json:"sex"`
	WeightKg       float64         `json:"weight_kg"`
	Allergies      json.RawMessage `json:"allergies,omitempty" gorm:"type:text"`
	Medications    json.RawMessage `json:"medications,omitempty" gorm:"type:text"`
	Diet           string          `json:"diet"`
	Activity       string          `json:"activity"`
	Work           string          `json:"work"`
	Chronotype     string          `json:"chronotype"`
	LatitudeDeg    *float64        `json:"latitude_deg,omitempty"`
	SunExposureMin *float64        `json:"sun_exposure_min,omitempty"`
	BedtimeHour    int             `json:"bedtime_hour"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToProfile converts the row into the domain profile.
func (u *UserProfile) ToProfile() *models.Profile {
	p := &models.Profile{
		UserID:         u.UserID,
		AgeYears:       u.AgeYears,
		Sex:            models.Sex(u.Sex),
		WeightKg:       u.WeightKg,
		Diet:           models.DietType(u.Diet),
		Activity:       models.ActivityLevel(u.Activity),
		Work:           models.WorkEnvironment(u.Work),
		Chronotype:     models.Chronotype(u.Chronotype),
		LatitudeDeg:    u.LatitudeDeg,
		SunExposureMin: u.SunExposureMin,
		BedtimeHour:    u.BedtimeHour,
	}
	FromJSON(u.Allergies, &p.Allergies)
	FromJSON(u.Medications, &p.Medications)
	return p
}

// ProfileRow converts a domain profile into its storage row.
func ProfileRow(p *models.Profile) *UserProfile {
	return &UserProfile{
		UserID:         p.UserID,
		AgeYears:       p.AgeYears,
		Sex:            string(p.Sex),
		WeightKg:       p.WeightKg,
		Allergies:      ToJSON(p.Allergies),
		Medications:    ToJSON(p.Medications),
		Diet:           string(p.Diet),
		Activity:       string(p.Activity),
		Work:           string(p.Work),
		Chronotype:     string(p.Chronotype),
		LatitudeDeg:    p.LatitudeDeg,
		SunExposureMin: p.SunExposureMin,
		BedtimeHour:    p.BedtimeHour,
	}
}

// HealthSample is one day of wearable metrics for one user. The Date
// column is truncated to midnight UTC so one row exists per user-day.
type HealthSample struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"index:idx_sample_user_date" json:"user_id"`
	Date          time.Time `gorm:"index:idx_sample_user_date" json:"date"`
	HRV           *float64  `json:"hrv,omitempty"`
	SleepScore    *float64  `json:"sleep_score,omitempty"`
	SleepDuration *float64  `json:"sleep_duration_hrs,omitempty"`
	DeepSleepPct  *float64  `json:"deep_sleep_pct,omitempty"`
	SleepLatency  *float64  `json:"sleep_latency_min,omitempty"`
	RecoveryScore *float64  `json:"recovery_score,omitempty"`
	Strain        *float64  `json:"strain,omitempty"`
	TempDeviation *float64  `json:"temp_deviation,omitempty"`
	RestingHR     *float64  `json:"resting_hr,omitempty"`
	Source        string    `json:"source"` // manual, mock, whoop, oura
	CreatedAt     time.Time `json:"created_at"`
}

// ToSnapshot converts the row into the domain snapshot.
func (h *HealthSample) ToSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Date:          h.Date,
		HRV:           h.HRV,
		SleepScore:    h.SleepScore,
		SleepDuration: h.SleepDuration,
		DeepSleepPct:  h.DeepSleepPct,
		SleepLatency:  h.SleepLatency,
		RecoveryScore: h.RecoveryScore,
		Strain:        h.Strain,
		TempDeviation: h.TempDeviation,
		RestingHR:     h.RestingHR,
	}
}

// SampleRow converts a domain snapshot into its storage row.
func SampleRow(userID, source string, s *models.Snapshot) *HealthSample {
	return &HealthSample{
		UserID:        userID,
		Date:          DayOf(s.Date),
		HRV:           s.HRV,
		SleepScore:    s.SleepScore,
		SleepDuration: s.SleepDuration,
		DeepSleepPct:  s.DeepSleepPct,
		SleepLatency:  s.SleepLatency,
		RecoveryScore: s.RecoveryScore,
		Strain:        s.Strain,
		TempDeviation: s.TempDeviation,
		RestingHR:     s.RestingHR,
		Source:        source,
	}
}

// CheckInRecord is one subjective daily check-in.
type CheckInRecord struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index:idx_checkin_user_date" json:"user_id"`
	Date         time.Time `gorm:"index:idx_checkin_user_date" json:"date"`
	EnergyLevel  int       `json:"energy_level"`
	StressLevel  int       `json:"stress_level"`
	SleepQuality int       `json:"sleep_quality"`
	Mood         int       `json:"mood"`
	Focus        int       `json:"focus"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToCheckIn converts the row into the domain check-in.
func (c *CheckInRecord) ToCheckIn() *models.CheckIn {
	return &models.CheckIn{
		EnergyLevel:  c.EnergyLevel,
		StressLevel:  c.StressLevel,
		SleepQuality: c.SleepQuality,
		Mood:         c.Mood,
		Focus:        c.Focus,
		RecordedAt:   c.CreatedAt,
	}
}

// DispenseLog is one dispensed dose, the unit of the daily ledger.
type DispenseLog struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"index:idx_dispense_user_time" json:"user_id"`
	SupplementID string    `json:"supplement_id"`
	Dose         float64   `json:"dose"`
	Unit         string    `json:"unit"`
	Source       string    `json:"source"` // mix id or "recommendation"
	RequestID    string    `gorm:"index" json:"request_id,omitempty"`
	DispensedAt  time.Time `gorm:"index:idx_dispense_user_time" json:"dispensed_at"`
}

// SupplementUsage tracks the consecutive-day streak per supplement,
// which feeds the cycling protocols.
type SupplementUsage struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"uniqueIndex:idx_usage_user_supp" json:"user_id"`
	SupplementID    string    `gorm:"uniqueIndex:idx_usage_user_supp" json:"supplement_id"`
	ConsecutiveDays int       `json:"consecutive_days"`
	LastUsedDate    time.Time `json:"last_used_date"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate hook for HealthSample
func (h *HealthSample) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = generateID("hs")
	}
	if h.Source == "" {
		h.Source = "manual"
	}
	return nil
}

// BeforeCreate hook for CheckInRecord
func (c *CheckInRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateID("ci")
	}
	return nil
}

// BeforeCreate hook for DispenseLog
func (d *DispenseLog) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = generateID("disp")
	}
	if d.DispensedAt.IsZero() {
		d.DispensedAt = time.Now()
	}
	return nil
}

// BeforeCreate hook for SupplementUsage
func (u *SupplementUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateID("use")
	}
	return nil
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// generateID creates a unique ID with nanosecond precision
func generateID(prefix string) string {
	return prefix + "_" + time.Now().Format("20060102150405") + "_" + randomString(8)
}

// randomString generates a cryptographically secure random string
func randomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	rand.Read(b)
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b)
}

// ToJSON converts struct to JSON bytes
func ToJSON(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// FromJSON parses JSON bytes into struct
func FromJSON(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
