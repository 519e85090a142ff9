package features

// Diabetes feature names follow the trained artifact, including its spellings.
var Diabetes = Spec{
	Name: "diabetes",
	Rules: []Rule{
		{Field: "age", Feature: "Age", Parse: ParseNumber},
		{Field: "familyHistory", Feature: "Family_Diabetes", Parse: ParseYesNo},
		{Field: "bloodPressure", Feature: "highBP", Parse: ParseYesNo},
		{Field: "bmi", Feature: "BMI", Parse: ParseNumber},
		{Field: "alcohol", Feature: "Alcohol", Parse: Category(alcoholLevels, Compact)},
		{Field: "sleep", Feature: "Sleep", Parse: ParseNumber},
		{Field: "medicine", Feature: "RegularMedicine", Parse: ParseYesNo},
		{Field: "junkFood", Feature: "JunkFood", Parse: Category(junkFoodLevels, Compact)},
		{Field: "stress", Feature: "Stress", Parse: Category(stressLevels, Compact)},
		{Field: "bloodPressureLevel", Feature: "BPLevel", Parse: Category(bloodPressureLevels, Compact)},
		{Field: "pregnancies", Feature: "Pregancies", Parse: ParseNumber},
		{Field: "preDiabetes", Feature: "Pdiabetes", Parse: ParseYesNo},
		{Field: "urination", Feature: "UriationFreq", Parse: Category(urinationLevels, Compact)},
	},
}

var (
	alcoholLevels       = Table{"never": 0, "occasionally": 1, "regularly": 2, "frequently": 3}
	junkFoodLevels      = Table{"never": 0, "rarely": 1, "sometimes": 2, "often": 3, "daily": 4}
	stressLevels        = Table{"low": 0, "moderate": 1, "high": 2, "veryhigh": 3}
	bloodPressureLevels = Table{"low": 0, "normal": 1, "high": 2, "veryhigh": 3}
	urinationLevels     = Table{"normal": 0, "frequent": 1, "veryfrequent": 2}
)
