package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dosepilot/dosepilot/internal/intelligence"
	"github.com/dosepilot/dosepilot/internal/mixes"
	"github.com/dosepilot/dosepilot/internal/models"
	"github.com/dosepilot/dosepilot/internal/pipeline"
	"github.com/dosepilot/dosepilot/internal/rules"
	"github.com/dosepilot/dosepilot/internal/safety"
)

// MixResult is a mix run through the full safety pipeline. A mix whose
// required component was held or skipped is not available, the rest of
// its components are still reported so the caller can explain why.
type MixResult struct {
	MixID         string                  `json:"mix_id"`
	Name          string                  `json:"name"`
	Available     bool                    `json:"available"`
	Reason        string                  `json:"reason,omitempty"`
	Doses         []pipeline.Dose         `json:"doses"`
	Skipped       []pipeline.Skip         `json:"skipped,omitempty"`
	Held          []pipeline.Hold         `json:"held,omitempty"`
	Warnings      []string                `json:"warnings,omitempty"`
	Interactions  []safety.Interaction    `json:"interaction_warnings,omitempty"`
	CycleWarnings []pipeline.CycleWarning `json:"cycle_warnings,omitempty"`
	GeneratedAt   time.Time               `json:"generated_at"`
}

// ErrUnknownMix is returned for mix IDs that do not exist.
var ErrUnknownMix = fmt.Errorf("unknown mix")

// CalculateMix runs one named mix through the same layers a
// recommendation uses: rule actions, personalization, safety
// adjustment, curfew, cycling, and the daily ledger.
func (e *Engine) CalculateMix(ctx context.Context, userID, mixID string, now time.Time) (*MixResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mix, ok := mixes.Get(mixID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMix, mixID)
	}

	_, asm := e.current()

	st, err := e.loadState(userID, now)
	if err != nil {
		return nil, err
	}

	out := &MixResult{MixID: mix.ID, Name: mix.Name, GeneratedAt: now}

	tod := models.TimeOfDayAt(now.Hour())
	if !mix.AvailableAt(tod) {
		out.Reason = fmt.Sprintf("%s is not served in the %s", mix.Name, tod)
		return out, nil
	}

	eval := rules.Evaluate(st.snapshot, st.baseline)
	resolved := rules.Resolve(eval.Actions)

	modRes := intelligence.Compute(intelligence.Context{
		Now:             now,
		Profile:         st.profile,
		History:         st.history,
		ConsecutiveDays: st.streaks,
		SleepTrend:      sleepTrend(st.history),
	})

	candidates := make([]pipeline.Candidate, 0, len(mix.Components))
	required := make(map[string]bool)
	for _, comp := range mix.Components {
		candidates = append(candidates, pipeline.Candidate{
			SupplementID:   comp.SupplementID,
			BaseMultiplier: comp.DoseMultiplier,
			Required:       comp.Required,
			Reasons:        []string{fmt.Sprintf("%s mix", mix.Name)},
		})
		if comp.Required {
			required[comp.SupplementID] = true
		}
	}

	res := asm.Assemble(pipeline.Request{
		Now:             now,
		Candidates:      candidates,
		Actions:         resolved,
		Modifiers:       intelligence.Fold(modRes.Modifiers),
		Profile:         st.profile,
		SleepScore:      sleepScore(st.snapshot),
		DispensedToday:  st.dispensed,
		ConsecutiveDays: st.streaks,
	})

	out.Doses = res.Included
	out.Skipped = res.Skipped
	out.Held = res.Held
	out.Warnings = res.Warnings
	out.Interactions = res.Interactions
	out.CycleWarnings = res.CycleWarnings
	out.Available = true

	for _, s := range res.Skipped {
		if required[s.SupplementID] {
			out.Available = false
			out.Reason = fmt.Sprintf("%s unavailable: %s", s.SupplementID, s.Reason)
			break
		}
	}
	for _, h := range res.Held {
		if required[h.SupplementID] {
			out.Available = false
			out.Reason = fmt.Sprintf("%s held by %s", h.SupplementID, h.Rule)
			break
		}
	}

	if e.logger != nil {
		e.logger.Info("Calculated mix",
			zap.String("user_id", userID),
			zap.String("mix_id", mix.ID),
			zap.Bool("available", out.Available),
		)
	}
	return out, nil
}

// AvailableMixes lists the mixes servable right now for a user,
// filtering out mixes whose required components collide with the
// profile's allergies.
func (e *Engine) AvailableMixes(userID string, now time.Time) ([]mixes.Mix, error) {
	cat, _ := e.current()

	profile, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var allergies []string
	if profile != nil {
		allergies = profile.Allergies
	}

	tod := models.TimeOfDayAt(now.Hour())
	allowed := make(map[string]bool)
	for _, s := range cat.AvailableAt(tod, allergies) {
		allowed[s.ID] = true
	}

	var out []mixes.Mix
	for _, m := range mixes.AvailableAt(tod) {
		ok := true
		for _, comp := range m.Components {
			if comp.Required && !allowed[comp.SupplementID] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, nil
}
