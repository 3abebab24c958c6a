package api

import (
	apperrors "github.com/dosepilot/dosepilot/internal/errors"
	"github.com/dosepilot/dosepilot/internal/models"
)

// loginRequest authenticates a user. In self-hosted mode any user ID is
// accepted; an empty one falls back to "default".
type loginRequest struct {
	UserID string `json:"user_id"`
}

// checkInRequest records the subjective daily scores, each 1-5 with 0
// meaning unanswered.
type checkInRequest struct {
	EnergyLevel  int `json:"energy_level"`
	StressLevel  int `json:"stress_level"`
	SleepQuality int `json:"sleep_quality"`
	Mood         int `json:"mood"`
	Focus        int `json:"focus"`
}

func (r checkInRequest) validate() error {
	for _, v := range []int{r.EnergyLevel, r.StressLevel, r.SleepQuality, r.Mood, r.Focus} {
		if v < 0 || v > 5 {
			return apperrors.ErrScoreOutOfRange
		}
	}
	if r.EnergyLevel == 0 && r.StressLevel == 0 && r.SleepQuality == 0 && r.Mood == 0 && r.Focus == 0 {
		return apperrors.ErrEmptyCheckIn
	}
	return nil
}

// healthDataRequest submits one day of metrics manually. A zero date
// means today.
type healthDataRequest struct {
	models.Snapshot
}

// syncRequest asks for a wearable pull. An empty date means yesterday.
type syncRequest struct {
	Date string `json:"date,omitempty"` // YYYY-MM-DD
}

// dispenseRequest records doses that were actually poured.
type dispenseRequest struct {
	Source string         `json:"source"`
	Doses  []dispenseDose `json:"doses"`
}

type dispenseDose struct {
	SupplementID string  `json:"supplement_id"`
	Dose         float64 `json:"dose"`
	Unit         string  `json:"unit"`
}

// recommendationRequest asks for a recommendation, optionally at a
// simulated time for preview purposes.
type recommendationRequest struct {
	At string `json:"at,omitempty"` // RFC 3339, defaults to now
}
