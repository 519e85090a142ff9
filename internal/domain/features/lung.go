package features

// Lung reads age and gender plus thirteen independent yes/no risk factors.
var Lung = Spec{
	Name: "lung",
	Rules: append([]Rule{
		{Field: "age", Feature: "AGE", Parse: ParseNumber},
		{Field: "gender", Feature: "GENDER", Parse: Gender},
	}, yesNoRules([][2]string{
		{"smoking", "SMOKING"},
		{"fingerDiscoloration", "FINGER_DISCOLORATION"},
		{"mentalStress", "MENTAL_STRESS"},
		{"pollution", "EXPOSURE_TO_POLLUTION"},
		{"longTermIllness", "LONG_TERM_ILLNESS"},
		{"immuneWeakness", "IMMUNE_WEAKNESS"},
		{"breathingIssue", "BREATHING_ISSUE"},
		{"alcoholConsumption", "ALCOHOL_CONSUMPTION"},
		{"throatDiscomfort", "THROAT_DISCOMFORT"},
		{"chestTightness", "CHEST_TIGHTNESS"},
		{"familyHistory", "FAMILY_HISTORY"},
		{"smokingFamilyHistory", "SMOKING_FAMILY_HISTORY"},
		{"stressImmune", "STRESS_IMMUNE"},
	})...),
}

// yesNoRules expands {field, feature} pairs into ParseYesNo rules.
func yesNoRules(pairs [][2]string) []Rule {
	rules := make([]Rule, len(pairs))
	for i, p := range pairs {
		rules[i] = Rule{Field: p[0], Feature: p[1], Parse: ParseYesNo}
	}
	return rules
}
