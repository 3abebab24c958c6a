package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosepilot/dosepilot/internal/models"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	cat := Default()
	assert.Greater(t, cat.Len(), 20)

	for _, s := range cat.List() {
		assert.Positive(t, s.StandardDose, s.ID)
		assert.LessOrEqual(t, s.StandardDose, s.MaxDailyDose, s.ID)
		assert.True(t, s.Windows.Morning || s.Windows.Afternoon || s.Windows.Evening, s.ID)
		assert.NotEmpty(t, s.Evidence, s.ID)
	}
}

func TestDefaultCatalogTriggerRelevance(t *testing.T) {
	cat := Default()

	d3, ok := cat.Get("vitamin_d3")
	require.True(t, ok)
	assert.True(t, d3.TriggerRelevance["low_sunlight"])

	caffeine, ok := cat.Get("caffeine")
	require.True(t, ok)
	assert.True(t, caffeine.TriggerRelevance["low_energy"])
	assert.False(t, caffeine.TriggerRelevance["poor_sleep"], "caffeine does not address sleep triggers")

	melatonin, ok := cat.Get("melatonin")
	require.True(t, ok)
	assert.True(t, melatonin.TriggerRelevance["poor_sleep_onset"])
}

func TestNew_Validation(t *testing.T) {
	base := Supplement{
		ID: "caffeine", Name: "Caffeine", StandardDose: 100, MaxDailyDose: 300, Unit: "mg",
		Windows: Windows{Morning: true},
	}

	tests := []struct {
		name    string
		mutate  func(s *Supplement)
		wantErr string
	}{
		{"valid", func(s *Supplement) {}, ""},
		{"empty id", func(s *Supplement) { s.ID = "" }, "empty id"},
		{"zero dose", func(s *Supplement) { s.StandardDose = 0 }, "must be positive"},
		{"negative dose", func(s *Supplement) { s.StandardDose = -5 }, "must be positive"},
		{"dose above max", func(s *Supplement) { s.StandardDose = 400 }, "exceeds max_daily_dose"},
		{"no window", func(s *Supplement) { s.Windows = Windows{} }, "no dispensing window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			_, err := New([]Supplement{s})
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNew_DuplicateID(t *testing.T) {
	s := Supplement{ID: "zinc", StandardDose: 15, MaxDailyDose: 40, Windows: Windows{Evening: true}}
	_, err := New([]Supplement{s, s})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestAvailableAt_TimeWindows(t *testing.T) {
	cat := Default()

	morning := cat.AvailableAt(models.Morning, nil)
	evening := cat.AvailableAt(models.Evening, nil)

	ids := func(list []Supplement) map[string]bool {
		m := map[string]bool{}
		for _, s := range list {
			m[s.ID] = true
		}
		return m
	}

	assert.True(t, ids(morning)["caffeine"])
	assert.False(t, ids(evening)["caffeine"], "caffeine must not be available in the evening")
	assert.True(t, ids(evening)["melatonin"])
	assert.False(t, ids(morning)["melatonin"], "melatonin must not be available in the morning")
}

func TestAvailableAt_Allergies(t *testing.T) {
	cat := Default()

	available := cat.AvailableAt(models.Morning, []string{"Fish allergy"})
	for _, s := range available {
		assert.NotEqual(t, "omega_3", s.ID, "omega_3 is contraindicated for fish allergies")
	}

	// Unrelated allergy filters nothing extra.
	withPeanut := cat.AvailableAt(models.Morning, []string{"peanut"})
	withNone := cat.AvailableAt(models.Morning, nil)
	assert.Equal(t, len(withNone), len(withPeanut))
}

func TestTimeOfDayAt(t *testing.T) {
	tests := []struct {
		hour int
		want models.TimeOfDay
	}{
		{4, models.Evening},
		{5, models.Morning},
		{11, models.Morning},
		{12, models.Afternoon},
		{16, models.Afternoon},
		{17, models.Evening},
		{23, models.Evening},
		{0, models.Evening},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.TimeOfDayAt(tt.hour), "hour %d", tt.hour)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	valid := `supplements:
  - id: caffeine
    name: Caffeine
    standard_dose: 100
    max_daily_dose: 300
    unit: mg
    windows:
      morning: true
      afternoon: true
  - id: melatonin
    name: Melatonin
    standard_dose: 0.5
    max_daily_dose: 5
    unit: mg
    windows:
      evening: true
    trigger_relevance:
      poor_sleep_onset: true
    evidence: Shortens sleep onset latency
`
	require.NoError(t, os.WriteFile(path, []byte(valid), 0644))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	s, ok := cat.Get("melatonin")
	require.True(t, ok)
	assert.Equal(t, 0.5, s.StandardDose)
	assert.True(t, s.Windows.Evening)
	assert.True(t, s.TriggerRelevance["poor_sleep_onset"])
	assert.Equal(t, "Shortens sleep onset latency", s.Evidence)

	invalid := `supplements:
  - id: caffeine
    standard_dose: 500
    max_daily_dose: 300
    windows:
      morning: true
`
	require.NoError(t, os.WriteFile(path, []byte(invalid), 0644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
