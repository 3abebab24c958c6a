package catalog

// Default returns the built-in catalog shipped with the binary. It is
// used when no catalog file is configured and as the fallback shape for
// user-provided files.
func Default() *Catalog {
	cat, err := New(defaultSupplements)
	if err != nil {
		// The built-in table is validated by tests; reaching this is a bug.
		panic("invalid built-in catalog: " + err.Error())
	}
	return cat
}

var defaultSupplements = []Supplement{
	{
		ID: "caffeine", Name: "Caffeine", StandardDose: 100, MaxDailyDose: 300, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true},
		Tags:             []string{"stimulant", "energy", "focus"},
		TriggerRelevance: map[string]bool{"fatigue": true, "low_energy": true},
		Evidence:         "Improves alertness and reaction time, half-life around 5 hours",
	},
	{
		ID: "l_theanine", Name: "L-Theanine", StandardDose: 200, MaxDailyDose: 400, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true, Evening: true},
		Tags:             []string{"calm", "focus"},
		TriggerRelevance: map[string]bool{"high_stress": true, "low_hrv": true},
		Evidence:         "Promotes alpha-wave relaxation without sedation",
	},
	{
		ID: "vitamin_c", Name: "Vitamin C", StandardDose: 500, MaxDailyDose: 2000, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true, Evening: true},
		Tags:             []string{"immune", "antioxidant"},
		TriggerRelevance: map[string]bool{"immune_support": true, "illness": true, "high_inflammation": true},
		Evidence:         "Modestly shortens cold duration when taken regularly",
	},
	{
		ID: "vitamin_d3", Name: "Vitamin D3", StandardDose: 2000, MaxDailyDose: 4000, Unit: "IU",
		Windows:          Windows{Morning: true, Afternoon: true},
		Tags:             []string{"immune", "bone", "mood"},
		TriggerRelevance: map[string]bool{"low_sunlight": true, "immune_support": true, "low_mood": true},
		Evidence:         "Corrects the deficiency common with indoor lifestyles and winter light",
	},
	{
		ID: "vitamin_k2", Name: "Vitamin K2 (MK-7)", StandardDose: 100, MaxDailyDose: 200, Unit: "mcg",
		Windows:  Windows{Morning: true, Afternoon: true},
		Tags:     []string{"bone", "cardiovascular"},
		Evidence: "Directs calcium into bone rather than arterial walls",
	},
	{
		ID: "vitamin_b12", Name: "Vitamin B12", StandardDose: 500, MaxDailyDose: 1000, Unit: "mcg",
		Windows:          Windows{Morning: true},
		Tags:             []string{"energy", "cognition"},
		TriggerRelevance: map[string]bool{"fatigue": true, "low_energy": true},
		Evidence:         "Restores energy metabolism in low-B12 states, common in plant-based diets",
	},
	{
		ID: "vitamin_e", Name: "Vitamin E", StandardDose: 15, MaxDailyDose: 100, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true},
		Tags:             []string{"antioxidant"},
		TriggerRelevance: map[string]bool{"high_inflammation": true},
		Evidence:         "Fat-soluble antioxidant protecting membrane lipids",
	},
	{
		ID: "magnesium_glycinate", Name: "Magnesium Glycinate", StandardDose: 200, MaxDailyDose: 400, Unit: "mg",
		Windows: Windows{Afternoon: true, Evening: true},
		Tags:    []string{"sleep", "calm", "recovery"},
		TriggerRelevance: map[string]bool{
			"poor_sleep": true, "poor_sleep_quality": true, "high_stress": true, "muscle_recovery": true,
		},
		Evidence: "Improves sleep quality and muscle relaxation, highly bioavailable form",
	},
	{
		ID: "magnesium_l_threonate", Name: "Magnesium L-Threonate", StandardDose: 144, MaxDailyDose: 288, Unit: "mg",
		Windows:          Windows{Evening: true},
		Tags:             []string{"sleep", "cognition"},
		TriggerRelevance: map[string]bool{"poor_sleep": true, "poor_sleep_quality": true},
		Evidence:         "Crosses the blood-brain barrier, studied for sleep and cognition",
	},
	{
		ID: "melatonin", Name: "Melatonin", StandardDose: 0.5, MaxDailyDose: 5, Unit: "mg",
		Windows:          Windows{Evening: true},
		Tags:             []string{"sleep"},
		TriggerRelevance: map[string]bool{"poor_sleep_onset": true, "poor_sleep": true},
		Evidence:         "Shortens sleep onset latency, low doses match physiologic levels",
	},
	{
		ID: "glycine", Name: "Glycine", StandardDose: 3000, MaxDailyDose: 9000, Unit: "mg",
		Windows:          Windows{Evening: true},
		Tags:             []string{"sleep", "recovery"},
		TriggerRelevance: map[string]bool{"poor_sleep_quality": true, "sleep_optimization": true},
		Evidence:         "3g before bed improves subjective sleep quality",
	},
	{
		ID: "apigenin", Name: "Apigenin", StandardDose: 50, MaxDailyDose: 100, Unit: "mg",
		Windows:          Windows{Evening: true},
		Tags:             []string{"sleep", "calm"},
		TriggerRelevance: map[string]bool{"poor_sleep_onset": true, "sleep_optimization": true},
		Evidence:         "Chamomile flavonoid with mild sedative effect via GABA receptors",
	},
	{
		ID: "ashwagandha", Name: "Ashwagandha (KSM-66)", StandardDose: 300, MaxDailyDose: 600, Unit: "mg",
		Windows:          Windows{Morning: true, Evening: true},
		Tags:             []string{"adaptogen", "stress", "cortisol"},
		TriggerRelevance: map[string]bool{"high_stress": true, "low_hrv": true},
		Evidence:         "Lowers serum cortisol and perceived stress in trials",
	},
	{
		ID: "omega_3", Name: "Omega-3 (EPA/DHA)", StandardDose: 1000, MaxDailyDose: 3000, Unit: "mg",
		Windows:           Windows{Morning: true, Afternoon: true, Evening: true},
		Tags:              []string{"recovery", "cardiovascular", "cognition"},
		Contraindications: []string{"fish", "shellfish"},
		TriggerRelevance:  map[string]bool{"recovery_needed": true, "high_inflammation": true},
		Evidence:          "Reduces exercise-induced inflammation and supports cardiovascular health",
	},
	{
		ID: "creatine", Name: "Creatine Monohydrate", StandardDose: 5000, MaxDailyDose: 10000, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true, Evening: true},
		Tags:             []string{"performance", "strength", "cognition"},
		TriggerRelevance: map[string]bool{"muscle_recovery": true, "high_strain": true},
		Evidence:         "Best-studied ergogenic aid, improves strength and power output",
	},
	{
		ID: "l_citrulline", Name: "L-Citrulline", StandardDose: 3000, MaxDailyDose: 8000, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true},
		Tags:             []string{"performance", "pump", "endurance"},
		TriggerRelevance: map[string]bool{"high_strain": true},
		Evidence:         "Raises plasma arginine and nitric oxide, aids endurance work",
	},
	{
		ID: "electrolytes", Name: "Electrolyte Blend", StandardDose: 1, MaxDailyDose: 3, Unit: "serving",
		Windows:          Windows{Morning: true, Afternoon: true, Evening: true},
		Tags:             []string{"hydration", "performance"},
		TriggerRelevance: map[string]bool{"dehydration": true, "high_strain": true},
		Evidence:         "Replaces sodium and potassium lost through heavy sweating",
	},
	{
		ID: "zinc", Name: "Zinc Picolinate", StandardDose: 15, MaxDailyDose: 40, Unit: "mg",
		Windows:          Windows{Afternoon: true, Evening: true},
		Tags:             []string{"immune"},
		TriggerRelevance: map[string]bool{"immune_support": true, "illness": true},
		Evidence:         "Shortens cold duration when started within 24 hours of symptoms",
	},
	{
		ID: "copper", Name: "Copper", StandardDose: 1, MaxDailyDose: 3, Unit: "mg",
		Windows:  Windows{Morning: true, Afternoon: true},
		Tags:     []string{"mineral"},
		Evidence: "Balances the copper depletion caused by long-term zinc use",
	},
	{
		ID: "iron", Name: "Iron Bisglycinate", StandardDose: 18, MaxDailyDose: 45, Unit: "mg",
		Windows:          Windows{Morning: true},
		Tags:             []string{"mineral", "energy"},
		TriggerRelevance: map[string]bool{"fatigue": true, "low_energy": true},
		Evidence:         "Corrects iron-deficiency fatigue, gentle chelated form",
	},
	{
		ID: "calcium", Name: "Calcium Citrate", StandardDose: 500, MaxDailyDose: 1200, Unit: "mg",
		Windows:  Windows{Morning: true, Afternoon: true, Evening: true},
		Tags:     []string{"bone", "mineral"},
		Evidence: "Well-absorbed calcium form, supports bone density",
	},
	{
		ID: "nac", Name: "N-Acetyl Cysteine", StandardDose: 600, MaxDailyDose: 1800, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true},
		Tags:             []string{"immune", "antioxidant", "liver"},
		TriggerRelevance: map[string]bool{"immune_support": true, "illness": true, "high_inflammation": true},
		Evidence:         "Glutathione precursor, thins mucus during respiratory illness",
	},
	{
		ID: "elderberry", Name: "Elderberry Extract", StandardDose: 500, MaxDailyDose: 1500, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true, Evening: true},
		Tags:             []string{"immune"},
		TriggerRelevance: map[string]bool{"immune_support": true, "illness": true},
		Evidence:         "Shortens duration of influenza-like symptoms in trials",
	},
	{
		ID: "blackseed_oil", Name: "Black Seed Oil", StandardDose: 500, MaxDailyDose: 2000, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true},
		Tags:             []string{"immune", "antioxidant"},
		TriggerRelevance: map[string]bool{"immune_support": true, "high_inflammation": true},
		Evidence:         "Thymoquinone source with anti-inflammatory activity",
	},
	{
		ID: "coq10", Name: "CoQ10 (Ubiquinol)", StandardDose: 100, MaxDailyDose: 300, Unit: "mg",
		Windows:          Windows{Morning: true, Afternoon: true},
		Tags:             []string{"cardiovascular", "energy", "longevity"},
		TriggerRelevance: map[string]bool{"low_energy": true},
		Evidence:         "Supports mitochondrial ATP production, levels decline with age",
	},
	{
		ID: "lions_mane", Name: "Lion's Mane", StandardDose: 500, MaxDailyDose: 2000, Unit: "mg",
		Windows:           Windows{Morning: true, Afternoon: true},
		Tags:              []string{"cognition", "focus"},
		Contraindications: []string{"mushroom"},
		Evidence:          "Stimulates nerve growth factor synthesis in preclinical work",
	},
	{
		ID: "protein_supplement", Name: "Whey Protein", StandardDose: 25, MaxDailyDose: 75, Unit: "g",
		Windows:           Windows{Morning: true, Afternoon: true, Evening: true},
		Tags:              []string{"recovery", "performance"},
		Contraindications: []string{"dairy", "lactose", "whey"},
		TriggerRelevance:  map[string]bool{"muscle_recovery": true},
		Evidence:          "Complete protein supporting muscle repair after training",
	},
}
