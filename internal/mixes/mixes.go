// Package mixes defines the named supplement stacks users can dispense
// as one drink, and the smart recommendation that picks one for the
// current moment.
package mixes

import (
	"github.com/dosepilot/dosepilot/internal/models"
	"github.com/dosepilot/dosepilot/internal/rules"
)

// Component is one supplement inside a mix. DoseMultiplier scales the
// supplement's standard dose; a required component failing safety checks
// fails the whole mix.
type Component struct {
	SupplementID   string  `json:"supplement_id"`
	DoseMultiplier float64 `json:"dose_multiplier"`
	Required       bool    `json:"required"`
}

// Mix is a named stack with a serving window.
type Mix struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Color       string             `json:"color"`
	Icon        string             `json:"icon"`
	Windows     []models.TimeOfDay `json:"windows"`
	Components  []Component        `json:"components"`
}

// AvailableAt reports whether the mix's window covers a time of day.
func (m Mix) AvailableAt(tod models.TimeOfDay) bool {
	for _, w := range m.Windows {
		if w == tod {
			return true
		}
	}
	return false
}

var allMixes = []Mix{
	{
		ID: "wake_me_up", Name: "Wake Me Up", Category: "energy", Color: "#f59e0b", Icon: "sunrise",
		Description: "Morning activation without the jitters",
		Windows:     []models.TimeOfDay{models.Morning},
		Components: []Component{
			{SupplementID: "caffeine", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "l_theanine", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "vitamin_b12", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "night_drink", Name: "Night Drink", Category: "sleep", Color: "#6366f1", Icon: "moon",
		Description: "Wind-down stack for deep sleep",
		Windows:     []models.TimeOfDay{models.Evening},
		Components: []Component{
			{SupplementID: "magnesium_glycinate", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "glycine", DoseMultiplier: 1.0},
			{SupplementID: "apigenin", DoseMultiplier: 1.0},
			{SupplementID: "l_theanine", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "pre_workout", Name: "Pre-Workout", Category: "performance", Color: "#ef4444", Icon: "flame",
		Description: "Output and pump before training",
		Windows:     []models.TimeOfDay{models.Morning, models.Afternoon},
		Components: []Component{
			{SupplementID: "caffeine", DoseMultiplier: 1.5, Required: true},
			{SupplementID: "l_citrulline", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "creatine", DoseMultiplier: 1.0},
			{SupplementID: "electrolytes", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "post_workout", Name: "Post-Workout", Category: "recovery", Color: "#22c55e", Icon: "refresh",
		Description: "Rebuild and rehydrate after training",
		Windows:     []models.TimeOfDay{models.Morning, models.Afternoon, models.Evening},
		Components: []Component{
			{SupplementID: "protein_supplement", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "creatine", DoseMultiplier: 1.0},
			{SupplementID: "electrolytes", DoseMultiplier: 1.0},
			{SupplementID: "omega_3", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "stressed", Name: "Unwind", Category: "calm", Color: "#8b5cf6", Icon: "leaf",
		Description: "Downshift an overactive stress response",
		Windows:     []models.TimeOfDay{models.Afternoon, models.Evening},
		Components: []Component{
			{SupplementID: "ashwagandha", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "l_theanine", DoseMultiplier: 1.0},
			{SupplementID: "magnesium_glycinate", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "immune_boost", Name: "Immune Boost", Category: "immune", Color: "#f97316", Icon: "shield",
		Description: "Front-loaded immune support at first signs",
		Windows:     []models.TimeOfDay{models.Morning, models.Afternoon, models.Evening},
		Components: []Component{
			{SupplementID: "vitamin_c", DoseMultiplier: 1.5, Required: true},
			{SupplementID: "zinc", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "elderberry", DoseMultiplier: 1.0},
			{SupplementID: "nac", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "focus_mode", Name: "Focus Mode", Category: "cognition", Color: "#06b6d4", Icon: "target",
		Description: "Clean sustained focus for deep work",
		Windows:     []models.TimeOfDay{models.Morning, models.Afternoon},
		Components: []Component{
			{SupplementID: "caffeine", DoseMultiplier: 0.75, Required: true},
			{SupplementID: "l_theanine", DoseMultiplier: 1.5, Required: true},
			{SupplementID: "lions_mane", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "recovery_day", Name: "Recovery Day", Category: "recovery", Color: "#10b981", Icon: "battery",
		Description: "Active recovery support on rest days",
		Windows:     []models.TimeOfDay{models.Morning, models.Afternoon},
		Components: []Component{
			{SupplementID: "omega_3", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "magnesium_glycinate", DoseMultiplier: 1.0},
			{SupplementID: "coq10", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "low_energy", Name: "Low Energy", Category: "energy", Color: "#eab308", Icon: "zap",
		Description: "Gentle lift for flat days",
		Windows:     []models.TimeOfDay{models.Morning, models.Afternoon},
		Components: []Component{
			{SupplementID: "vitamin_b12", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "caffeine", DoseMultiplier: 0.5},
			{SupplementID: "coq10", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "jet_lag", Name: "Jet Lag Reset", Category: "sleep", Color: "#3b82f6", Icon: "plane",
		Description: "Re-anchor the body clock after travel",
		Windows:     []models.TimeOfDay{models.Evening},
		Components: []Component{
			{SupplementID: "melatonin", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "magnesium_glycinate", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "hangover", Name: "Morning After", Category: "recovery", Color: "#64748b", Icon: "cloud",
		Description: "Rehydrate and restock after a rough night",
		Windows:     []models.TimeOfDay{models.Morning, models.Afternoon},
		Components: []Component{
			{SupplementID: "electrolytes", DoseMultiplier: 2.0, Required: true},
			{SupplementID: "nac", DoseMultiplier: 1.0},
			{SupplementID: "vitamin_c", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "brain_fog", Name: "Brain Fog", Category: "cognition", Color: "#a855f7", Icon: "cloud-sun",
		Description: "Clear the haze without overstimulating",
		Windows:     []models.TimeOfDay{models.Morning, models.Afternoon},
		Components: []Component{
			{SupplementID: "lions_mane", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "omega_3", DoseMultiplier: 1.0},
			{SupplementID: "vitamin_b12", DoseMultiplier: 1.0},
		},
	},
	{
		ID: "daily_foundation", Name: "Daily Foundation", Category: "maintenance", Color: "#0ea5e9", Icon: "layers",
		Description: "The everyday baseline stack",
		Windows:     []models.TimeOfDay{models.Morning, models.Afternoon},
		Components: []Component{
			{SupplementID: "vitamin_d3", DoseMultiplier: 1.0, Required: true},
			{SupplementID: "vitamin_k2", DoseMultiplier: 1.0},
			{SupplementID: "omega_3", DoseMultiplier: 1.0},
			{SupplementID: "magnesium_glycinate", DoseMultiplier: 1.0},
		},
	},
}

// List returns every mix.
func List() []Mix {
	out := make([]Mix, len(allMixes))
	copy(out, allMixes)
	return out
}

// Get returns a mix by id.
func Get(id string) (Mix, bool) {
	for _, m := range allMixes {
		if m.ID == id {
			return m, true
		}
	}
	return Mix{}, false
}

// AvailableAt returns the mixes whose window covers a time of day.
func AvailableAt(tod models.TimeOfDay) []Mix {
	var out []Mix
	for _, m := range allMixes {
		if m.AvailableAt(tod) {
			out = append(out, m)
		}
	}
	return out
}

// Recommend picks the mix best matching the current health status and
// hour. It always returns a mix available at that hour.
func Recommend(status rules.Status, hour int) Mix {
	tod := models.TimeOfDayAt(hour)

	pick := func(id string) (Mix, bool) {
		m, ok := Get(id)
		if ok && m.AvailableAt(tod) {
			return m, true
		}
		return Mix{}, false
	}

	switch status {
	case rules.StatusImmuneAlert:
		if m, ok := pick("immune_boost"); ok {
			return m
		}
	case rules.StatusStressed:
		if m, ok := pick("stressed"); ok {
			return m
		}
	case rules.StatusSleepDeficit:
		if tod == models.Evening {
			if m, ok := pick("night_drink"); ok {
				return m
			}
		}
		if m, ok := pick("low_energy"); ok {
			return m
		}
	case rules.StatusRecoveryNeeded:
		if m, ok := pick("recovery_day"); ok {
			return m
		}
	}

	if tod == models.Evening {
		if m, ok := pick("night_drink"); ok {
			return m
		}
	}
	if m, ok := pick("daily_foundation"); ok {
		return m
	}
	// Evening fallback when nothing else matched.
	m, _ := Get("night_drink")
	return m
}
