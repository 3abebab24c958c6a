// Package engine orchestrates one recommendation: it gathers the user's
// profile, latest metrics, baseline, and ledger, runs the trigger and
// rule layers, folds the personalization modifiers, and hands the
// resulting candidates to the dose assembly pipeline.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dosepilot/dosepilot/internal/catalog"
	"github.com/dosepilot/dosepilot/internal/intelligence"
	"github.com/dosepilot/dosepilot/internal/mixes"
	"github.com/dosepilot/dosepilot/internal/models"
	"github.com/dosepilot/dosepilot/internal/pipeline"
	"github.com/dosepilot/dosepilot/internal/rules"
	"github.com/dosepilot/dosepilot/internal/safety"
	"github.com/dosepilot/dosepilot/internal/store"
	"github.com/dosepilot/dosepilot/internal/trigger"
	"github.com/dosepilot/dosepilot/internal/wearable"
)

// historyDays is how many recent snapshots feed the adaptive modifiers.
const historyDays = 7

// Engine wires storage, the catalog, and the wearable provider into the
// decision layers.
type Engine struct {
	store    *store.Store
	provider wearable.Provider
	logger   *zap.Logger

	mu        sync.RWMutex
	catalog   *catalog.Catalog
	assembler *pipeline.Assembler
}

// New creates an engine.
func New(st *store.Store, cat *catalog.Catalog, provider wearable.Provider, logger *zap.Logger) *Engine {
	return &Engine{
		store:     st,
		provider:  provider,
		logger:    logger,
		catalog:   cat,
		assembler: pipeline.NewAssembler(cat, logger),
	}
}

// SetCatalog swaps the catalog, used by the hot-reload watcher.
func (e *Engine) SetCatalog(cat *catalog.Catalog) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catalog = cat
	e.assembler = pipeline.NewAssembler(cat, e.logger)
}

// Catalog returns the current catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog
}

func (e *Engine) current() (*catalog.Catalog, *pipeline.Assembler) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog, e.assembler
}

// Recommendation is the full decision output for one moment in time.
type Recommendation struct {
	UserID        string                  `json:"user_id"`
	GeneratedAt   time.Time               `json:"generated_at"`
	Status        rules.Status            `json:"status"`
	Triggers      []string                `json:"triggers,omitempty"`
	FiredRules    []string                `json:"fired_rules,omitempty"`
	Doses         []pipeline.Dose         `json:"doses"`
	Skipped       []pipeline.Skip         `json:"skipped,omitempty"`
	Held          []pipeline.Hold         `json:"held,omitempty"`
	Warnings      []string                `json:"warnings,omitempty"`
	Interactions  []safety.Interaction    `json:"interaction_warnings,omitempty"`
	CycleWarnings []pipeline.CycleWarning `json:"cycle_warnings,omitempty"`
	Alerts        []string                `json:"alerts,omitempty"`
	Notes         []intelligence.Note     `json:"notes,omitempty"`
	Citations     []rules.Citation        `json:"citations,omitempty"`
	SuggestedMix  string                  `json:"suggested_mix,omitempty"`
	StimulantLoad float64                 `json:"stimulant_load"`
	MagnesiumHour int                     `json:"magnesium_hour,omitempty"`
}

// userState is everything Recommend loads from storage up front.
type userState struct {
	profile   *models.Profile
	snapshot  *models.Snapshot
	baseline  *models.Baseline
	checkin   *models.CheckIn
	history   []models.Snapshot
	dispensed map[string]float64
	streaks   map[string]int
}

func (e *Engine) loadState(userID string, now time.Time) (*userState, error) {
	st := &userState{}

	profile, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		profile = &models.Profile{UserID: userID}
	}
	st.profile = profile

	st.snapshot, err = e.store.LatestSample(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest sample: %w", err)
	}

	st.baseline, err = e.store.ComputeBaseline(userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to compute baseline: %w", err)
	}

	st.checkin, err = e.store.TodayCheckIn(userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-in: %w", err)
	}

	recent, err := e.store.RecentSamples(userID, historyDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load sample history: %w", err)
	}
	st.history = make([]models.Snapshot, 0, len(recent))
	for _, s := range recent {
		st.history = append(st.history, *s)
	}

	st.dispensed, err = e.store.DispensedToday(userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispense ledger: %w", err)
	}

	st.streaks, err = e.store.ConsecutiveDays(userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage streaks: %w", err)
	}

	return st, nil
}

// Recommend produces the recommendation for one user at one moment.
func (e *Engine) Recommend(ctx context.Context, userID string, now time.Time) (*Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat, asm := e.current()

	st, err := e.loadState(userID, now)
	if err != nil {
		return nil, err
	}

	triggers := trigger.Evaluate(st.snapshot, st.baseline, st.checkin)
	eval := rules.Evaluate(st.snapshot, st.baseline)
	resolved := rules.Resolve(eval.Actions)

	modRes := intelligence.Compute(intelligence.Context{
		Now:             now,
		Profile:         st.profile,
		History:         st.history,
		ConsecutiveDays: st.streaks,
		SleepTrend:      sleepTrend(st.history),
	})
	folded := intelligence.Fold(modRes.Modifiers)

	candidates, windowSkips := e.buildCandidates(cat, now, st.profile, resolved, triggers)

	res := asm.Assemble(pipeline.Request{
		Now:             now,
		Candidates:      candidates,
		Actions:         resolved,
		Modifiers:       folded,
		Profile:         st.profile,
		SleepScore:      sleepScore(st.snapshot),
		DispensedToday:  st.dispensed,
		ConsecutiveDays: st.streaks,
	})

	rec := &Recommendation{
		UserID:        userID,
		GeneratedAt:   now,
		Status:        eval.Status,
		Triggers:      triggers.Names(),
		FiredRules:    eval.FiredRules,
		Doses:         res.Included,
		Skipped:       append(windowSkips, res.Skipped...),
		Held:          res.Held,
		Warnings:      res.Warnings,
		Interactions:  res.Interactions,
		CycleWarnings: res.CycleWarnings,
		Alerts:        eval.Alerts,
		Notes:         modRes.Notes,
		Citations:     citationsForRules(eval.FiredRules),
		SuggestedMix:  mixes.Recommend(eval.Status, now.Hour()).ID,
	}

	ids := make([]string, 0, len(res.Included))
	magnesium := false
	for _, d := range res.Included {
		ids = append(ids, d.SupplementID)
		if d.SupplementID == "magnesium_glycinate" || d.SupplementID == "magnesium_l_threonate" {
			magnesium = true
		}
	}
	load, loadNotes := intelligence.StimulantLoad(ids)
	rec.StimulantLoad = load
	rec.Notes = append(rec.Notes, loadNotes...)

	if magnesium {
		latency := 0.0
		if st.snapshot != nil {
			latency, _ = st.snapshot.Metric(models.MetricSleepLatency)
		}
		rec.MagnesiumHour = intelligence.MagnesiumTiming(st.profile.BedtimeHour, latency)
	}

	if e.logger != nil {
		e.logger.Info("Generated recommendation",
			zap.String("user_id", userID),
			zap.String("status", string(eval.Status)),
			zap.Strings("fired_rules", eval.FiredRules),
			zap.Int("doses", len(rec.Doses)),
		)
	}
	return rec, nil
}

// buildCandidates merges the rule-driven supplements, the trigger
// matches, and the everyday foundation stack, restricted to what the
// current window and the user's allergies allow. A rule-added
// supplement outside its window is reported as skipped rather than
// silently dropped.
func (e *Engine) buildCandidates(cat *catalog.Catalog, now time.Time, profile *models.Profile, resolved map[string]rules.SupplementAction, triggers trigger.Set) ([]pipeline.Candidate, []pipeline.Skip) {
	tod := models.TimeOfDayAt(now.Hour())

	available := cat.AvailableAt(tod, profile.Allergies)
	allowed := make(map[string]bool, len(available))
	for _, s := range available {
		allowed[s.ID] = true
	}

	seen := make(map[string]bool)
	var candidates []pipeline.Candidate
	var skips []pipeline.Skip

	add := func(c pipeline.Candidate) {
		if seen[c.SupplementID] {
			return
		}
		seen[c.SupplementID] = true
		candidates = append(candidates, c)
	}

	// Rule-driven supplements first, they carry the day's reasons.
	// Held supplements stay candidates so the pipeline reports the
	// hold instead of the supplement silently vanishing.
	for _, action := range resolved {
		switch action.Kind {
		case rules.ActionAdd, rules.ActionIncrease, rules.ActionAllow, rules.ActionHold:
		default:
			continue
		}
		if !allowed[action.SupplementID] {
			if _, ok := cat.Get(action.SupplementID); ok && action.Kind != rules.ActionHold {
				skips = append(skips, pipeline.Skip{
					SupplementID: action.SupplementID,
					Reason:       fmt.Sprintf("Outside the %s window", tod),
				})
			}
			seen[action.SupplementID] = true
			continue
		}
		add(pipeline.Candidate{SupplementID: action.SupplementID})
	}

	// Supplements whose relevance map hits the day's triggers, strongest
	// match first.
	for _, m := range matchTriggers(available, triggers) {
		reasons := []string{fmt.Sprintf("Matched triggers: %s", strings.Join(m.triggers, ", "))}
		if m.supp.Evidence != "" {
			reasons = append(reasons, m.supp.Evidence)
		}
		add(pipeline.Candidate{SupplementID: m.supp.ID, Reasons: reasons})
	}

	// The everyday foundation fills in behind whatever the rules chose.
	foundation, _ := mixes.Get("daily_foundation")
	if foundation.AvailableAt(tod) {
		for _, comp := range foundation.Components {
			if !allowed[comp.SupplementID] {
				continue
			}
			add(pipeline.Candidate{
				SupplementID:   comp.SupplementID,
				BaseMultiplier: comp.DoseMultiplier,
				Reasons:        []string{"Daily foundation"},
			})
		}
	}

	return candidates, skips
}

// triggerMatch pairs a supplement with the active triggers it covers.
type triggerMatch struct {
	supp     catalog.Supplement
	triggers []string
}

// matchTriggers scans the available supplements against the fired
// triggers. More matched triggers means higher priority; the sort is
// stable so catalog order breaks ties.
func matchTriggers(available []catalog.Supplement, triggers trigger.Set) []triggerMatch {
	active := triggers.Names()

	var matches []triggerMatch
	for _, s := range available {
		var hit []string
		for _, name := range active {
			if s.TriggerRelevance[name] {
				hit = append(hit, name)
			}
		}
		if len(hit) > 0 {
			matches = append(matches, triggerMatch{supp: s, triggers: hit})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return len(matches[i].triggers) > len(matches[j].triggers)
	})
	return matches
}

// citationsForRules collects the research citations behind the fired
// rules, de-duplicated by PubMed id.
func citationsForRules(fired []string) []rules.Citation {
	var out []rules.Citation
	seen := make(map[string]bool)
	for _, name := range fired {
		for _, c := range rules.CitationsFor(name) {
			if seen[c.PubMedID] {
				continue
			}
			seen[c.PubMedID] = true
			out = append(out, c)
		}
	}
	return out
}

// sleepTrend extracts sleep scores oldest first from a newest-first
// history.
func sleepTrend(history []models.Snapshot) []float64 {
	var out []float64
	for i := len(history) - 1; i >= 0; i-- {
		if v, ok := history[i].Metric(models.MetricSleepScore); ok {
			out = append(out, v)
		}
	}
	return out
}

func sleepScore(snap *models.Snapshot) *float64 {
	if snap == nil {
		return nil
	}
	return snap.SleepScore
}

// SyncWearable pulls one day of metrics from the provider and stores it.
func (e *Engine) SyncWearable(ctx context.Context, userID string, date time.Time) (*models.Snapshot, error) {
	snap, err := e.provider.FetchDaily(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := e.store.UpsertSample(userID, e.provider.Name(), snap); err != nil {
		return nil, fmt.Errorf("failed to store sample: %w", err)
	}
	if e.logger != nil {
		e.logger.Info("Synced wearable data",
			zap.String("user_id", userID),
			zap.String("provider", e.provider.Name()),
			zap.Time("date", snap.Date),
		)
	}
	return snap, nil
}

// RecordDispense writes dispensed doses to the ledger and bumps the
// usage streaks behind the cycling protocols. A repeated requestID is
// acknowledged without dispensing again.
func (e *Engine) RecordDispense(ctx context.Context, userID, requestID, source string, doses []pipeline.Dose, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fresh, err := e.store.ClaimRequestID(userID, requestID)
	if err != nil {
		return false, fmt.Errorf("failed to claim request id: %w", err)
	}
	if !fresh {
		return false, nil
	}

	logs := make([]store.DispenseLog, 0, len(doses))
	for _, d := range doses {
		logs = append(logs, store.DispenseLog{
			SupplementID: d.SupplementID,
			Dose:         d.Dose,
			Unit:         d.Unit,
			Source:       source,
			RequestID:    requestID,
			DispensedAt:  now,
		})
	}
	if err := e.store.CreateDispense(userID, logs); err != nil {
		return false, fmt.Errorf("failed to record dispense: %w", err)
	}

	for _, d := range doses {
		if err := e.store.TouchUsage(userID, d.SupplementID, now); err != nil {
			return false, fmt.Errorf("failed to update usage streak: %w", err)
		}
	}
	return true, nil
}

// CycleEntry is the cycling position of one protocol supplement.
type CycleEntry struct {
	SupplementID    string             `json:"supplement_id"`
	ConsecutiveDays int                `json:"consecutive_days"`
	MaxDays         int                `json:"max_days"`
	WeeksOn         int                `json:"weeks_on"`
	WeeksOff        int                `json:"weeks_off"`
	Status          safety.CycleStatus `json:"status"`
}

// CycleReport returns the cycling position for every supplement with a
// protocol.
func (e *Engine) CycleReport(userID string, now time.Time) ([]CycleEntry, error) {
	streaks, err := e.store.ConsecutiveDays(userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage streaks: %w", err)
	}

	protocols := safety.Protocols()
	sort.Slice(protocols, func(i, j int) bool {
		return protocols[i].SupplementID < protocols[j].SupplementID
	})
	entries := make([]CycleEntry, 0, len(protocols))
	for _, p := range protocols {
		days := streaks[p.SupplementID]
		entries = append(entries, CycleEntry{
			SupplementID:    p.SupplementID,
			ConsecutiveDays: days,
			MaxDays:         p.MaxConsecutiveDays,
			WeeksOn:         p.WeeksOn,
			WeeksOff:        p.WeeksOff,
			Status:          safety.CheckCycleStatus(p.SupplementID, days),
		})
	}
	return entries, nil
}
