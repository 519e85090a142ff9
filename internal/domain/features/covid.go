package features

// Covid feature names contain spaces and mixed case; they must match the
// artifact exactly.
var Covid = Spec{
	Name: "covid",
	Rules: yesNoRules([][2]string{
		{"breathingProblem", "Breathing Problem"},
		{"fever", "Fever"},
		{"dryCough", "Dry Cough"},
		{"soreThroat", "Sore throat"},
		{"hypertension", "Hyper Tension"},
		{"abroadTravel", "Abroad travel"},
		{"covidContact", "Contact with COVID Patient"},
		{"largeGathering", "Attended Large Gathering"},
		{"publicPlaces", "Visited Public Exposed Places"},
		{"familyPublic", "Family working in Public Exposed Places"},
	}),
}
