// Package intelligence computes the personalization modifiers layered on
// top of the rule engine: seasonal, tolerance, recovery-adaptive, and
// profile-driven dose scaling.
package intelligence

import (
	"fmt"
	"time"

	"github.com/dosepilot/dosepilot/internal/models"
)

// Modifier scales one supplement's dose for one reason.
type Modifier struct {
	SupplementID string  `json:"supplement_id"`
	Name         string  `json:"name"`
	Multiplier   float64 `json:"multiplier"`
	Note         string  `json:"note,omitempty"`
}

// NoteLevel grades an advisory note.
type NoteLevel string

// NoteLevel values.
const (
	NoteInfo    NoteLevel = "info"
	NoteWarning NoteLevel = "warning"
)

// Note is an advisory that does not change a dose by itself.
type Note struct {
	Level        NoteLevel `json:"level"`
	SupplementID string    `json:"supplement_id,omitempty"`
	Message      string    `json:"message"`
}

// Context is everything the modifier stack reads. History holds the
// most recent snapshots, newest first; SleepTrend holds recent sleep
// scores, oldest first.
type Context struct {
	Now             time.Time
	Profile         *models.Profile
	History         []models.Snapshot
	ConsecutiveDays map[string]int
	SleepTrend      []float64
}

const defaultLatitude = 39.0

// seasonalVitaminD scales vitamin D with season, latitude, and sun
// exposure. Winter is November through March, summer May through August.
func seasonalVitaminD(ctx Context) ([]Modifier, []Note) {
	month := int(ctx.Now.Month())
	lat := defaultLatitude
	if ctx.Profile != nil && ctx.Profile.LatitudeDeg != nil {
		lat = *ctx.Profile.LatitudeDeg
	}
	winter := month >= 11 || month <= 3
	summer := month >= 5 && month <= 8

	var mods []Modifier
	switch {
	case winter:
		mult := 1.25
		if lat > 40 {
			mult = 1.5
		}
		mods = append(mods, Modifier{
			SupplementID: "vitamin_d3", Name: "seasonal_winter", Multiplier: mult,
			Note: "reduced winter sun exposure",
		})
	case summer:
		if ctx.Profile != nil && ctx.Profile.SunExposureMin != nil && *ctx.Profile.SunExposureMin > 20 {
			mods = append(mods, Modifier{
				SupplementID: "vitamin_d3", Name: "seasonal_summer_sun", Multiplier: 0.5,
				Note: fmt.Sprintf("%.0f minutes of daily sun covers most vitamin D needs", *ctx.Profile.SunExposureMin),
			})
		}
	}

	if lat > 50 && !summer {
		mods = append(mods, Modifier{
			SupplementID: "vitamin_d3", Name: "high_latitude", Multiplier: 1.25,
			Note: "high latitude limits UVB year-round outside summer",
		})
	}
	return mods, nil
}

// melatoninTolerance zeroes melatonin after extended continuous use and
// halves it when sleep scores are declining despite supplementation.
func melatoninTolerance(ctx Context) ([]Modifier, []Note) {
	days := ctx.ConsecutiveDays["melatonin"]

	var mods []Modifier
	var notes []Note

	switch {
	case days >= 21:
		mods = append(mods, Modifier{
			SupplementID: "melatonin", Name: "tolerance_cycle_off", Multiplier: 0,
			Note: fmt.Sprintf("%d consecutive days of melatonin", days),
		})
		notes = append(notes, Note{
			Level: NoteWarning, SupplementID: "melatonin",
			Message: "Melatonin paused for a tolerance reset after 3 weeks of nightly use",
		})
	case days >= 14:
		notes = append(notes, Note{
			Level: NoteInfo, SupplementID: "melatonin",
			Message: fmt.Sprintf("Melatonin used %d nights in a row, a break is coming up", days),
		})
	}

	if declining(ctx.SleepTrend, 5) && days > 0 {
		mods = append(mods, Modifier{
			SupplementID: "melatonin", Name: "tolerance_declining_sleep", Multiplier: 0.5,
			Note: "sleep scores declining despite nightly melatonin",
		})
	}
	return mods, notes
}

// declining reports whether the series dropped by at least delta from
// its first to last point.
func declining(series []float64, delta float64) bool {
	if len(series) < 2 {
		return false
	}
	return series[0]-series[len(series)-1] >= delta
}

// recoveryAdaptive boosts the recovery stack when 3-day averages show
// sustained deficit or sustained load.
func recoveryAdaptive(ctx Context) ([]Modifier, []Note) {
	var mods []Modifier
	var notes []Note

	if avg, ok := threeDayAvg(ctx.History, models.MetricRecoveryScore); ok && avg < 50 {
		mods = append(mods,
			Modifier{SupplementID: "omega_3", Name: "sustained_low_recovery", Multiplier: 1.25,
				Note: fmt.Sprintf("3-day recovery average %.0f", avg)},
			Modifier{SupplementID: "magnesium_glycinate", Name: "sustained_low_recovery", Multiplier: 1.25,
				Note: fmt.Sprintf("3-day recovery average %.0f", avg)},
		)
	}

	if avg, ok := threeDayAvg(ctx.History, models.MetricStrain); ok && avg > 70 {
		mods = append(mods,
			Modifier{SupplementID: "electrolytes", Name: "sustained_high_strain", Multiplier: 1.5,
				Note: fmt.Sprintf("3-day strain average %.0f", avg)},
			Modifier{SupplementID: "vitamin_c", Name: "sustained_high_strain", Multiplier: 1.25,
				Note: fmt.Sprintf("3-day strain average %.0f", avg)},
		)
	}

	if dropPct, ok := hrvDecline(ctx.History); ok && dropPct >= 15 {
		notes = append(notes, Note{
			Level: NoteInfo, SupplementID: "ashwagandha",
			Message: fmt.Sprintf("HRV down %.0f%% over recent days, consider adaptogen support", dropPct),
		})
	}
	return mods, notes
}

func threeDayAvg(history []models.Snapshot, metric string) (float64, bool) {
	var sum float64
	var n int
	for i := 0; i < len(history) && i < 3; i++ {
		if v, ok := history[i].Metric(metric); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// hrvDecline compares the newest HRV reading with the oldest available
// one in the window and returns the percent drop.
func hrvDecline(history []models.Snapshot) (float64, bool) {
	var newest, oldest float64
	var haveNewest, haveOldest bool
	for i := 0; i < len(history); i++ {
		if v, ok := history[i].Metric(models.MetricHRV); ok {
			if !haveNewest {
				newest = v
				haveNewest = true
			}
			oldest = v
			haveOldest = true
		}
	}
	if !haveNewest || !haveOldest || oldest == 0 || newest >= oldest {
		return 0, false
	}
	return (oldest - newest) / oldest * 100, true
}

// ageModifiers scales doses for older users.
func ageModifiers(ctx Context) ([]Modifier, []Note) {
	if ctx.Profile == nil {
		return nil, nil
	}
	age := ctx.Profile.AgeYears

	var mods []Modifier
	var notes []Note

	if age >= 50 {
		notes = append(notes, Note{
			Level: NoteInfo, SupplementID: "coq10",
			Message: "CoQ10 production declines with age, consider adding it",
		})
		mods = append(mods, Modifier{
			SupplementID: "vitamin_b12", Name: "age_absorption", Multiplier: 1.25,
			Note: "B12 absorption declines from midlife",
		})
	}
	if age >= 65 {
		mods = append(mods,
			Modifier{SupplementID: "melatonin", Name: "age_sensitivity", Multiplier: 0.5,
				Note: "higher melatonin sensitivity over 65"},
			Modifier{SupplementID: "caffeine", Name: "age_clearance", Multiplier: 0.75,
				Note: "slower caffeine clearance over 65"},
		)
	}
	return mods, notes
}

// dietModifiers compensates for nutrients scarce in plant-based diets.
func dietModifiers(ctx Context) ([]Modifier, []Note) {
	if ctx.Profile == nil {
		return nil, nil
	}
	switch ctx.Profile.Diet {
	case models.DietVegan:
		return []Modifier{
			{SupplementID: "vitamin_b12", Name: "diet_vegan", Multiplier: 1.5, Note: "no dietary B12 sources"},
			{SupplementID: "omega_3", Name: "diet_vegan", Multiplier: 1.5, Note: "no dietary EPA/DHA sources"},
		}, nil
	case models.DietVegetarian:
		return []Modifier{
			{SupplementID: "vitamin_b12", Name: "diet_vegetarian", Multiplier: 1.25, Note: "limited dietary B12"},
		}, nil
	}
	return nil, nil
}

// activityModifiers scales performance and hydration support with
// training volume.
func activityModifiers(ctx Context) ([]Modifier, []Note) {
	if ctx.Profile == nil {
		return nil, nil
	}
	switch ctx.Profile.Activity {
	case models.ActivityAthlete:
		return []Modifier{
			{SupplementID: "electrolytes", Name: "activity_athlete", Multiplier: 1.5},
			{SupplementID: "creatine", Name: "activity_athlete", Multiplier: 1.0},
			{SupplementID: "vitamin_c", Name: "activity_athlete", Multiplier: 1.25},
			{SupplementID: "magnesium_glycinate", Name: "activity_athlete", Multiplier: 1.25},
		}, nil
	case models.ActivityActive:
		return []Modifier{
			{SupplementID: "electrolytes", Name: "activity_active", Multiplier: 1.25},
			{SupplementID: "creatine", Name: "activity_active", Multiplier: 1.0},
		}, nil
	case models.ActivitySedentary:
		return []Modifier{
			{SupplementID: "coq10", Name: "activity_sedentary", Multiplier: 1.0},
		}, nil
	}
	return nil, nil
}

// workModifiers adapts to sunlight exposure patterns of the workplace.
func workModifiers(ctx Context) ([]Modifier, []Note) {
	if ctx.Profile == nil {
		return nil, nil
	}
	switch ctx.Profile.Work {
	case models.WorkOffice, models.WorkRemote:
		return []Modifier{
			{SupplementID: "vitamin_d3", Name: "work_indoor", Multiplier: 1.25, Note: "limited daytime sun"},
		}, nil
	case models.WorkOutdoor:
		return []Modifier{
			{SupplementID: "vitamin_d3", Name: "work_outdoor", Multiplier: 0.75},
			{SupplementID: "vitamin_c", Name: "work_outdoor", Multiplier: 1.25, Note: "environmental oxidative load"},
		}, nil
	case models.WorkShift:
		return []Modifier{
				{SupplementID: "vitamin_d3", Name: "work_shift", Multiplier: 1.5, Note: "night shifts suppress sun exposure"},
				{SupplementID: "magnesium_glycinate", Name: "work_shift", Multiplier: 1.25},
			}, []Note{
				{Level: NoteInfo, SupplementID: "melatonin",
					Message: "Shift workers often benefit from timed melatonin, discuss scheduling"},
			}
	}
	return nil, nil
}

// chronotypeNotes only produces advisories, never dose changes.
func chronotypeNotes(ctx Context) ([]Modifier, []Note) {
	if ctx.Profile == nil {
		return nil, nil
	}
	hour := ctx.Now.Hour()
	switch ctx.Profile.Chronotype {
	case models.ChronotypeNightOwl:
		if hour >= 17 && hour < 19 {
			return nil, []Note{{Level: NoteInfo,
				Message: "Night owls drift later, start winding down earlier than feels natural"}}
		}
	case models.ChronotypeEarlyBird:
		if hour >= 14 {
			return nil, []Note{{Level: NoteInfo,
				Message: "Early birds fade in the afternoon, avoid stimulants from here on"}}
		}
	}
	return nil, nil
}
