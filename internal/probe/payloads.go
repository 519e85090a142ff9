package probe

import (
	"maps"

	"github.com/okian/enhealth/internal/domain/features"
	"github.com/okian/enhealth/internal/domain/types"
)

// Samples holds one complete payload per condition.
var Samples = map[types.Condition]map[string]any{
	types.Diabetes: {
		"age": 52, "familyHistory": "yes", "bloodPressure": "yes", "bmi": 31.2,
		"alcohol": "occasionally", "sleep": 6, "medicine": "no", "junkFood": "often",
		"stress": "high", "bloodPressureLevel": "high", "pregnancies": 0,
		"preDiabetes": "no", "urination": "frequent",
	},
	types.Lung: {
		"age": 58, "gender": "male", "smoking": "yes", "fingerDiscoloration": "no",
		"mentalStress": "yes", "pollution": "yes", "longTermIllness": "no",
		"immuneWeakness": "no", "breathingIssue": "yes", "alcoholConsumption": "no",
		"throatDiscomfort": "yes", "chestTightness": "no", "familyHistory": "no",
		"smokingFamilyHistory": "yes", "stressImmune": "no",
	},
	types.Covid: {
		"breathingProblem": "yes", "fever": "yes", "dryCough": "yes", "soreThroat": "no",
		"hypertension": "no", "abroadTravel": "no", "covidContact": "yes",
		"largeGathering": "no", "publicPlaces": "yes", "familyPublic": "no",
	},
	types.Sleep: {
		"gender": "female", "age": 41, "sleepDuration": 5.8, "sleepQuality": 5,
		"physicalActivity": 40, "stressLevel": 7, "bmiCategory": "overweight",
		"heartRate": 76, "dailySteps": 5200, "systolicBP": 132, "diastolicBP": 86,
		"occupation": "Software Engineer",
	},
}

var specs = map[types.Condition]features.Spec{
	types.Diabetes: features.Diabetes,
	types.Lung:     features.Lung,
	types.Covid:    features.Covid,
	types.Sleep:    features.Sleep,
}

// incomplete returns the sample for c with its last read field removed, and
// the name of that field.
func incomplete(c types.Condition) (map[string]any, string) {
	payload := maps.Clone(Samples[c])
	fields := specs[c].Fields()
	dropped := fields[len(fields)-1]
	delete(payload, dropped)
	return payload, dropped
}
