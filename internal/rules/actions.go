// Package rules evaluates metric rule tables against a health snapshot
// and resolves the resulting supplement actions into one decision per
// supplement.
package rules

// ActionKind is what a fired rule wants done with a supplement.
type ActionKind string

// ActionKind values.
const (
	ActionAdd      ActionKind = "add"      // include at standard dose
	ActionIncrease ActionKind = "increase" // scale dose up
	ActionReduce   ActionKind = "reduce"   // scale dose down
	ActionHold     ActionKind = "hold"     // do not dispense today
	ActionAllow    ActionKind = "allow"    // explicitly permitted, no scaling
)

// PriorityLevel orders competing actions. Higher wins.
type PriorityLevel int

// PriorityLevel values.
const (
	LevelMaintenance     PriorityLevel = 20
	LevelOptimization    PriorityLevel = 40
	LevelRecoveryDeficit PriorityLevel = 60
	LevelSleepCrisis     PriorityLevel = 70
	LevelAcuteStress     PriorityLevel = 80
	LevelImmuneResponse  PriorityLevel = 90
	LevelSafetyBlock     PriorityLevel = 100
)

// String returns the level name.
func (l PriorityLevel) String() string {
	switch l {
	case LevelMaintenance:
		return "maintenance"
	case LevelOptimization:
		return "optimization"
	case LevelRecoveryDeficit:
		return "recovery_deficit"
	case LevelSleepCrisis:
		return "sleep_crisis"
	case LevelAcuteStress:
		return "acute_stress"
	case LevelImmuneResponse:
		return "immune_response"
	case LevelSafetyBlock:
		return "safety_block"
	default:
		return "unknown"
	}
}

// Action is an action template inside a rule definition.
type Action struct {
	SupplementID string
	Kind         ActionKind
	Multiplier   float64 // 0 means 1.0
	BeforeHour   int     // latest dispense hour, 0 means unconstrained
}

// SupplementAction is an evaluated action with its provenance attached.
type SupplementAction struct {
	SupplementID string        `json:"supplement_id"`
	Kind         ActionKind    `json:"action"`
	Multiplier   float64       `json:"multiplier"`
	BeforeHour   int           `json:"before_hour,omitempty"`
	Level        PriorityLevel `json:"-"`
	LevelName    string        `json:"priority"`
	Rule         string        `json:"rule"`
	Explanation  string        `json:"explanation"`
}

// Citation links a rule to published evidence.
type Citation struct {
	PubMedID string `json:"pubmed_id"`
	Claim    string `json:"claim"`
}
