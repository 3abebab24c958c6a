package rules

import "github.com/dosepilot/dosepilot/internal/models"

// Rule couples a condition with the supplement actions it requests.
type Rule struct {
	Name        string
	Level       PriorityLevel
	Condition   Condition
	Actions     []Action
	UserAlert   bool
	Explanation string // supports {value}, {percent_below}, {percent_above}
	Citations   []Citation
}

// temperatureRules react to skin/core temperature deviation from the
// wearable's own baseline.
var temperatureRules = []Rule{
	{
		Name:  "immune_alert",
		Level: LevelImmuneResponse,
		Condition: FixedThreshold{
			Metric: models.MetricTempDeviation, Op: OpAbove, Value: 0.5,
		},
		Actions: []Action{
			{SupplementID: "elderberry", Kind: ActionAdd, Multiplier: 1.5},
			{SupplementID: "vitamin_c", Kind: ActionIncrease, Multiplier: 1.5},
			{SupplementID: "zinc", Kind: ActionAdd},
			{SupplementID: "nac", Kind: ActionAdd},
			{SupplementID: "caffeine", Kind: ActionHold},
			{SupplementID: "creatine", Kind: ActionReduce, Multiplier: 0.5},
		},
		Explanation: "Body temperature {value}C above baseline suggests early immune activation",
		Citations: []Citation{
			{PubMedID: "15080016", Claim: "Elderberry extract shortens duration of influenza-like symptoms"},
			{PubMedID: "29099763", Claim: "Zinc lozenges reduce common cold duration"},
		},
	},
	{
		Name: "immune_crisis",
		// Safety-block priority so the crisis actions outrank the
		// milder immune_alert when both fire.
		Level: LevelSafetyBlock,
		Condition: FixedThreshold{
			Metric: models.MetricTempDeviation, Op: OpAbove, Value: 1.0,
		},
		Actions: []Action{
			{SupplementID: "elderberry", Kind: ActionAdd, Multiplier: 2.0},
			{SupplementID: "vitamin_c", Kind: ActionIncrease, Multiplier: 2.0},
			{SupplementID: "zinc", Kind: ActionIncrease, Multiplier: 1.5},
			{SupplementID: "nac", Kind: ActionIncrease, Multiplier: 1.5},
			{SupplementID: "blackseed_oil", Kind: ActionAdd},
			{SupplementID: "caffeine", Kind: ActionHold},
			{SupplementID: "creatine", Kind: ActionHold},
			{SupplementID: "l_citrulline", Kind: ActionHold},
		},
		UserAlert:   true,
		Explanation: "Body temperature {value}C above baseline indicates a likely illness, prioritize rest",
	},
}

// hrvRules react to autonomic stress, mostly relative to the user's
// personal baseline.
var hrvRules = []Rule{
	{
		Name:  "severe_stress",
		Level: LevelAcuteStress,
		Condition: BaselineRelative{
			Metric: models.MetricHRV, Op: OpBelow, Ratio: 0.70,
		},
		Actions: []Action{
			{SupplementID: "ashwagandha", Kind: ActionAdd},
			{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.5},
			{SupplementID: "l_theanine", Kind: ActionAdd},
			{SupplementID: "caffeine", Kind: ActionReduce, Multiplier: 0.25, BeforeHour: 12},
		},
		Explanation: "HRV {value}ms is {percent_below}% below your baseline, indicating severe autonomic stress",
		Citations: []Citation{
			{PubMedID: "23439798", Claim: "Ashwagandha root extract reduces serum cortisol and perceived stress"},
		},
	},
	{
		Name:  "moderate_stress",
		Level: LevelRecoveryDeficit,
		Condition: BaselineRelative{
			Metric: models.MetricHRV, Op: OpBelow, Ratio: 0.85,
		},
		Actions: []Action{
			{SupplementID: "l_theanine", Kind: ActionAdd},
			{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.25},
			{SupplementID: "caffeine", Kind: ActionReduce, Multiplier: 0.75, BeforeHour: 14},
		},
		Explanation: "HRV {value}ms is {percent_below}% below your baseline",
	},
	{
		Name:  "recovery_mode",
		Level: LevelOptimization,
		Condition: BaselineRelative{
			Metric: models.MetricHRV, Op: OpAbove, Ratio: 1.10,
		},
		Actions: []Action{
			{SupplementID: "caffeine", Kind: ActionAllow},
			{SupplementID: "creatine", Kind: ActionAllow},
			{SupplementID: "l_citrulline", Kind: ActionAllow},
		},
		Explanation: "HRV {value}ms is {percent_above}% above baseline, green light for performance work",
	},
	{
		Name:  "fixed_low_hrv",
		Level: LevelAcuteStress,
		Condition: FixedThreshold{
			Metric: models.MetricHRV, Op: OpBelow, Value: 40,
		},
		Actions: []Action{
			{SupplementID: "ashwagandha", Kind: ActionAdd},
			{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.5},
			{SupplementID: "l_theanine", Kind: ActionAdd},
			{SupplementID: "caffeine", Kind: ActionReduce, Multiplier: 0.25, BeforeHour: 12},
		},
		Explanation: "HRV {value}ms is critically low",
	},
}

// sleepRules react to last night's sleep quality.
var sleepRules = []Rule{
	{
		Name:  "sleep_crisis",
		Level: LevelSleepCrisis,
		Condition: FixedThreshold{
			Metric: models.MetricSleepScore, Op: OpBelow, Value: 50,
		},
		Actions: []Action{
			{SupplementID: "caffeine", Kind: ActionReduce, Multiplier: 0.25, BeforeHour: 12},
			{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.5},
			{SupplementID: "apigenin", Kind: ActionAdd},
			{SupplementID: "glycine", Kind: ActionAdd},
			{SupplementID: "l_theanine", Kind: ActionAdd},
		},
		Explanation: "Sleep score {value} signals a sleep crisis, tonight's wind-down stack is boosted",
		Citations: []Citation{
			{PubMedID: "23853635", Claim: "Magnesium supplementation improves sleep quality in insomnia"},
			{PubMedID: "22293292", Claim: "Glycine before bed improves subjective sleep quality"},
		},
	},
	{
		Name:  "poor_sleep",
		Level: LevelRecoveryDeficit,
		Condition: FixedThreshold{
			Metric: models.MetricSleepScore, Op: OpBelow, Value: 60,
		},
		Actions: []Action{
			{SupplementID: "caffeine", Kind: ActionReduce, Multiplier: 0.5, BeforeHour: 13},
			{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.25},
			{SupplementID: "apigenin", Kind: ActionAdd},
			{SupplementID: "l_theanine", Kind: ActionAdd},
		},
		Explanation: "Sleep score {value} is poor",
	},
	{
		Name:  "suboptimal_sleep",
		Level: LevelOptimization,
		Condition: FixedThreshold{
			Metric: models.MetricSleepScore, Op: OpBelow, Value: 70,
		},
		Actions: []Action{
			{SupplementID: "caffeine", Kind: ActionReduce, Multiplier: 0.75, BeforeHour: 14},
			{SupplementID: "magnesium_glycinate", Kind: ActionAdd},
		},
		Explanation: "Sleep score {value} has room to improve",
	},
	{
		Name:  "low_deep_sleep",
		Level: LevelRecoveryDeficit,
		Condition: FixedThreshold{
			Metric: models.MetricDeepSleepPct, Op: OpBelow, Value: 15,
		},
		Actions: []Action{
			{SupplementID: "glycine", Kind: ActionAdd},
			{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.25},
			{SupplementID: "melatonin", Kind: ActionHold},
		},
		Explanation: "Deep sleep at {value}% of the night, melatonin paused since onset is not the issue",
	},
	{
		Name:  "high_sleep_latency",
		Level: LevelOptimization,
		Condition: FixedThreshold{
			Metric: models.MetricSleepLatency, Op: OpAbove, Value: 30,
		},
		Actions: []Action{
			{SupplementID: "apigenin", Kind: ActionAdd},
			{SupplementID: "magnesium_glycinate", Kind: ActionAdd},
		},
		Explanation: "Took {value} minutes to fall asleep",
	},
}

// strainRules react to yesterday's training load.
var strainRules = []Rule{
	{
		Name:  "high_strain",
		Level: LevelRecoveryDeficit,
		Condition: FixedThreshold{
			Metric: models.MetricStrain, Op: OpAbove, Value: 80,
		},
		Actions: []Action{
			{SupplementID: "electrolytes", Kind: ActionIncrease, Multiplier: 2.0},
			{SupplementID: "creatine", Kind: ActionAdd},
			{SupplementID: "omega_3", Kind: ActionIncrease, Multiplier: 1.25},
			{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.25},
		},
		Explanation: "Strain {value} from yesterday's session, replenishment stack boosted",
	},
	{
		Name:  "very_high_strain",
		Level: LevelAcuteStress,
		Condition: FixedThreshold{
			Metric: models.MetricStrain, Op: OpAbove, Value: 90,
		},
		Actions: []Action{
			{SupplementID: "electrolytes", Kind: ActionIncrease, Multiplier: 3.0},
			{SupplementID: "creatine", Kind: ActionAdd},
			{SupplementID: "omega_3", Kind: ActionIncrease, Multiplier: 1.5},
			{SupplementID: "coq10", Kind: ActionAdd},
			{SupplementID: "vitamin_c", Kind: ActionIncrease, Multiplier: 1.25},
		},
		Explanation: "Strain {value} is extreme, full recovery protocol engaged",
	},
}

// recoveryRules react to the wearable's recovery score.
var recoveryRules = []Rule{
	{
		Name:  "poor_recovery",
		Level: LevelRecoveryDeficit,
		Condition: FixedThreshold{
			Metric: models.MetricRecoveryScore, Op: OpBelow, Value: 50,
		},
		Actions: []Action{
			{SupplementID: "omega_3", Kind: ActionIncrease, Multiplier: 1.25},
			{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.25},
			{SupplementID: "ashwagandha", Kind: ActionAdd},
			{SupplementID: "caffeine", Kind: ActionReduce, Multiplier: 0.75, BeforeHour: 14},
		},
		Explanation: "Recovery score {value} is low, take it easy today",
	},
	{
		Name:  "suboptimal_recovery",
		Level: LevelOptimization,
		Condition: FixedThreshold{
			Metric: models.MetricRecoveryScore, Op: OpBelow, Value: 65,
		},
		Actions: []Action{
			{SupplementID: "omega_3", Kind: ActionIncrease, Multiplier: 1.25},
			{SupplementID: "magnesium_glycinate", Kind: ActionAdd},
		},
		Explanation: "Recovery score {value} is below target",
	},
}

// compoundRules require several weak signals to line up before firing.
var compoundRules = []Rule{
	{
		Name:  "overtraining_syndrome",
		Level: LevelAcuteStress,
		Condition: Compound{
			MinMatches: 2,
			Conditions: []Condition{
				BaselineRelative{Metric: models.MetricHRV, Op: OpBelow, Ratio: 0.8},
				FixedThreshold{Metric: models.MetricSleepScore, Op: OpBelow, Value: 60},
				FixedThreshold{Metric: models.MetricRecoveryScore, Op: OpBelow, Value: 50},
			},
		},
		Actions: []Action{
			{SupplementID: "caffeine", Kind: ActionHold},
			{SupplementID: "creatine", Kind: ActionHold},
			{SupplementID: "ashwagandha", Kind: ActionAdd},
			{SupplementID: "omega_3", Kind: ActionIncrease, Multiplier: 1.5},
			{SupplementID: "magnesium_glycinate", Kind: ActionIncrease, Multiplier: 1.5},
		},
		UserAlert:   true,
		Explanation: "Multiple overtraining markers present, stimulants held and recovery stack boosted",
	},
	{
		Name:  "immune_plus_stress",
		Level: LevelImmuneResponse,
		Condition: Compound{
			MinMatches: 2,
			Conditions: []Condition{
				FixedThreshold{Metric: models.MetricTempDeviation, Op: OpAbove, Value: 0.3},
				BaselineRelative{Metric: models.MetricHRV, Op: OpBelow, Ratio: 0.85},
			},
		},
		Actions: []Action{
			{SupplementID: "elderberry", Kind: ActionAdd},
			{SupplementID: "vitamin_c", Kind: ActionIncrease, Multiplier: 1.5},
			{SupplementID: "ashwagandha", Kind: ActionAdd},
			{SupplementID: "caffeine", Kind: ActionHold},
		},
		Explanation: "Elevated temperature combined with suppressed HRV, immune support prioritized",
	},
}

// AllRules returns every rule table in evaluation order.
func AllRules() []Rule {
	out := make([]Rule, 0,
		len(temperatureRules)+len(hrvRules)+len(sleepRules)+
			len(strainRules)+len(recoveryRules)+len(compoundRules))
	out = append(out, temperatureRules...)
	out = append(out, hrvRules...)
	out = append(out, sleepRules...)
	out = append(out, strainRules...)
	out = append(out, recoveryRules...)
	out = append(out, compoundRules...)
	return out
}
