// Package catalog holds the immutable supplement definitions the engine
// doses from. A catalog is loaded once, validated, and never mutated;
// hot reload swaps in a whole new catalog.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dosepilot/dosepilot/internal/models"
)

// Windows marks the parts of the day a supplement may be dispensed in.
type Windows struct {
	Morning   bool `yaml:"morning" json:"morning"`
	Afternoon bool `yaml:"afternoon" json:"afternoon"`
	Evening   bool `yaml:"evening" json:"evening"`
}

// Allows reports whether the window set covers a time of day.
func (w Windows) Allows(tod models.TimeOfDay) bool {
	switch tod {
	case models.Morning:
		return w.Morning
	case models.Afternoon:
		return w.Afternoon
	default:
		return w.Evening
	}
}

// Supplement is one dispensable supplement definition. TriggerRelevance
// maps trigger names to whether this supplement addresses them; the
// engine matches it against the day's fired triggers.
type Supplement struct {
	ID                string          `yaml:"id" json:"id"`
	Name              string          `yaml:"name" json:"name"`
	StandardDose      float64         `yaml:"standard_dose" json:"standard_dose"`
	MaxDailyDose      float64         `yaml:"max_daily_dose" json:"max_daily_dose"`
	Unit              string          `yaml:"unit" json:"unit"`
	Windows           Windows         `yaml:"windows" json:"windows"`
	Tags              []string        `yaml:"tags,omitempty" json:"tags,omitempty"`
	Contraindications []string        `yaml:"contraindications,omitempty" json:"contraindications,omitempty"`
	TriggerRelevance  map[string]bool `yaml:"trigger_relevance,omitempty" json:"trigger_relevance,omitempty"`
	Evidence          string          `yaml:"evidence,omitempty" json:"evidence,omitempty"`
}

// Catalog is an immutable, validated set of supplements.
type Catalog struct {
	byID  map[string]Supplement
	order []string
}

// New builds a catalog from definitions and validates them. Any invalid
// definition rejects the whole catalog so a bad file cannot half-load.
func New(defs []Supplement) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	byID := make(map[string]Supplement, len(defs))
	order := make([]string, 0, len(defs))

	for _, s := range defs {
		if s.ID == "" {
			return nil, fmt.Errorf("supplement with empty id")
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate supplement id %q", s.ID)
		}
		if s.StandardDose <= 0 {
			return nil, fmt.Errorf("supplement %q: standard_dose must be positive", s.ID)
		}
		if s.StandardDose > s.MaxDailyDose {
			return nil, fmt.Errorf("supplement %q: standard_dose %.1f exceeds max_daily_dose %.1f", s.ID, s.StandardDose, s.MaxDailyDose)
		}
		if !s.Windows.Morning && !s.Windows.Afternoon && !s.Windows.Evening {
			return nil, fmt.Errorf("supplement %q: no dispensing window", s.ID)
		}
		byID[s.ID] = s
		order = append(order, s.ID)
	}

	return &Catalog{byID: byID, order: order}, nil
}

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Supplements []Supplement `yaml:"supplements"`
}

// LoadFile reads and validates a catalog YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	cat, err := New(file.Supplements)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return cat, nil
}

// Get returns a supplement by id.
func (c *Catalog) Get(id string) (Supplement, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Len returns the number of supplements.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// List returns all supplements in declaration order.
func (c *Catalog) List() []Supplement {
	out := make([]Supplement, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// IDs returns all supplement ids sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AvailableAt filters the catalog to supplements whose window covers the
// given time of day and which are not contraindicated by the user's
// allergies. Allergy matching is case-insensitive substring in either
// direction so "shellfish allergy" matches a "shellfish" keyword.
func (c *Catalog) AvailableAt(tod models.TimeOfDay, allergies []string) []Supplement {
	var out []Supplement
	for _, id := range c.order {
		s := c.byID[id]
		if !s.Windows.Allows(tod) {
			continue
		}
		if contraindicated(s, allergies) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func contraindicated(s Supplement, allergies []string) bool {
	for _, allergy := range allergies {
		a := strings.ToLower(strings.TrimSpace(allergy))
		if a == "" {
			continue
		}
		for _, kw := range s.Contraindications {
			k := strings.ToLower(kw)
			if strings.Contains(a, k) || strings.Contains(k, a) {
				return true
			}
		}
	}
	return false
}
