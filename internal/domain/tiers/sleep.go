package tiers

import (
	"strings"

	"github.com/okian/enhealth/internal/domain/types"
)

// Sleep disorder categories, keyed by the class label the model predicts.
const (
	Insomnia        = "Insomnia"
	NoSleepDisorder = "No Sleep Disorder"
	SleepApnea      = "Sleep Apnea"
	UnknownDisorder = "Unknown"
)

// SleepLabels maps predicted class labels to category names.
var SleepLabels = map[string]string{
	"0": Insomnia,
	"1": NoSleepDisorder,
	"2": SleepApnea,
}

type advice struct{ title, message string }

var sleepAdvice = map[string]advice{
	Insomnia: {
		title: "Signs of Insomnia",
		message: "Your sleep hygiene pattern resembles insomnia. Improving sleep routines " +
			"and consulting a sleep therapist may help.",
	},
	SleepApnea: {
		title: "Possible Sleep Apnea",
		message: "The assessment points to symptoms that align with sleep apnea. " +
			"Consult a physician for a detailed sleep study.",
	},
}

var healthyAdvice = advice{
	title: "Healthy Sleep Pattern",
	message: "No significant issues were detected. Keep following balanced routines " +
		"to maintain restorative sleep.",
}

// ClassifySleep builds the advisory for a predicted sleep class. confidence is
// the probability the model assigned to that class.
func ClassifySleep(predicted string, confidence float64) types.Result {
	label, ok := SleepLabels[predicted]
	if !ok {
		label = UnknownDisorder
	}
	a, ok := sleepAdvice[label]
	if !ok {
		a = healthyAdvice
	}
	return types.Result{
		Label:       label,
		RiskLevel:   strings.ReplaceAll(strings.ToLower(label), " ", "_"),
		Probability: confidence,
		Title:       a.title,
		Message:     a.message,
	}
}
