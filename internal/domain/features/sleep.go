package features

// OccupationPrefix marks the one-hot occupation block in the sleep schema.
const OccupationPrefix = "Occupation_"

// Sleep reads eleven base fields and one occupation choice.
var Sleep = Spec{
	Name: "sleep",
	Rules: []Rule{
		{Field: "gender", Feature: "Gender", Parse: Gender},
		{Field: "age", Feature: "Age", Parse: ParseNumber},
		{Field: "sleepDuration", Feature: "Sleep Duration", Parse: ParseNumber},
		{Field: "sleepQuality", Feature: "Quality of Sleep", Parse: ParseNumber},
		{Field: "physicalActivity", Feature: "Physical Activity Level", Parse: ParseNumber},
		{Field: "stressLevel", Feature: "Stress Level", Parse: ParseNumber},
		{Field: "bmiCategory", Feature: "BMI Category", Parse: Category(bmiCategories, Lower)},
		{Field: "heartRate", Feature: "Heart Rate", Parse: ParseNumber},
		{Field: "dailySteps", Feature: "Daily Steps", Parse: ParseNumber},
		{Field: "systolicBP", Feature: "Systolic BP", Parse: ParseNumber},
		{Field: "diastolicBP", Feature: "Diastolic BP", Parse: ParseNumber},
	},
	OneHot: &OneHot{
		Field:     "occupation",
		Prefix:    OccupationPrefix,
		Normalize: Snake,
		Options: map[string]string{
			"doctor":               "Doctor",
			"engineer":             "Engineer",
			"lawyer":               "Lawyer",
			"manager":              "Manager",
			"nurse":                "Nurse",
			"sales_representative": "Sales Representative",
			"salesperson":          "Salesperson",
			"scientist":            "Scientist",
			"software_engineer":    "Software Engineer",
			"teacher":              "Teacher",
		},
	},
}

var bmiCategories = Table{"normal": 0, "overweight": 1, "obese": 2}
