// Package tiers maps classifier output onto user-facing risk advisories.
package tiers

import (
	"github.com/okian/enhealth/internal/domain/types"
)

// Risk levels reported by the threshold ladders.
const (
	Low      = "low"
	Moderate = "moderate"
	High     = "high"
)

// PositiveThreshold separates the "positive" and "negative" labels.
const PositiveThreshold = 0.5

// Band is one risk tier. A probability belongs to the first band, checked from
// the highest Min down, whose Min it reaches.
type Band struct {
	Min     float64
	Level   string
	Title   string
	Message string
}

// Ladder is a set of bands ordered from highest Min to lowest. The last band
// must have Min 0 so every probability resolves.
type Ladder []Band

// Classify returns the advisory for probability p.
func (l Ladder) Classify(p float64) types.Result {
	band := l[len(l)-1]
	for _, b := range l {
		if p >= b.Min {
			band = b
			break
		}
	}
	label := "negative"
	if p >= PositiveThreshold {
		label = "positive"
	}
	return types.Result{
		Label:       label,
		RiskLevel:   band.Level,
		Probability: p,
		Title:       band.Title,
		Message:     band.Message,
	}
}

// Diabetes tiers.
var Diabetes = Ladder{
	{
		Min:   0.66,
		Level: High,
		Title: "High Diabetes Risk",
		Message: "Your responses show a high predicted likelihood of diabetes. " +
			"Please speak with a healthcare professional for lab work and a care plan.",
	},
	{
		Min:   0.33,
		Level: Moderate,
		Title: "Moderate Diabetes Risk",
		Message: "You fall inside the moderate risk band. A balanced diet, quality sleep, and " +
			"regular checkups are recommended to avoid complications.",
	},
	{
		Level:   Low,
		Title:   "Low Diabetes Risk",
		Message: "Based on your answers, you have a low predicted risk of diabetes.",
	},
}

// Lung tiers.
var Lung = Ladder{
	{
		Min:   0.75,
		Level: High,
		Title: "High Lung Cancer Risk",
		Message: "The model flagged a high lung cancer risk. Immediate consultation with " +
			"a pulmonologist is recommended for diagnostic imaging.",
	},
	{
		Min:   0.4,
		Level: Moderate,
		Title: "Moderate Lung Cancer Risk",
		Message: "You fall into the moderate-risk band. Monitor symptoms closely and " +
			"consider a CT screening if you have additional concerns.",
	},
	{
		Level: Low,
		Title: "Low Lung Cancer Risk",
		Message: "Your current profile indicates a low likelihood of lung cancer. " +
			"Continue your healthy habits and schedule routine screenings.",
	},
}

// Covid tiers.
var Covid = Ladder{
	{
		Min:   0.7,
		Level: High,
		Title: "High COVID-19 Risk",
		Message: "There is a high predicted probability that you were exposed to COVID-19. " +
			"Self-isolate, get tested immediately, and monitor for worsening symptoms.",
	},
	{
		Min:   0.4,
		Level: Moderate,
		Title: "Moderate COVID-19 Risk",
		Message: "The assessment shows a moderate risk. Limit contact, wear a mask indoors, " +
			"and test if symptoms worsen.",
	},
	{
		Level:   Low,
		Title:   "Low COVID-19 Risk",
		Message: "Your answers indicate a low risk. Please continue practicing standard safety guidelines.",
	},
}
