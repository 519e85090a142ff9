package model

import (
	"fmt"
	"math"
)

// Logistic is a linear classifier. With two classes and a single coefficient
// row it applies the sigmoid to the decision value of the second class;
// otherwise it applies softmax across one row per class.
type Logistic struct {
	features  []string
	classes   []string
	coef      [][]float64
	intercept []float64
}

// NewLogistic validates the coefficient shapes against features and classes.
func NewLogistic(features, classes []string, coef [][]float64, intercept []float64) (*Logistic, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: need at least two classes", ErrArtifact)
	}
	rows := len(classes)
	if rows == 2 {
		rows = 1
	}
	if len(coef) != rows || len(intercept) != rows {
		return nil, fmt.Errorf("%w: logistic needs %d coefficient rows and intercepts, got %d and %d",
			ErrArtifact, rows, len(coef), len(intercept))
	}
	for i, row := range coef {
		if len(row) != len(features) {
			return nil, fmt.Errorf("%w: coefficient row %d has %d values, want %d", ErrArtifact, i, len(row), len(features))
		}
	}
	return &Logistic{features: features, classes: classes, coef: coef, intercept: intercept}, nil
}

func (l *Logistic) FeatureNames() []string { return l.features }
func (l *Logistic) ClassLabels() []string  { return l.classes }

// PredictProba returns class probabilities aligned with ClassLabels.
func (l *Logistic) PredictProba(x []float64) ([]float64, error) {
	if err := checkWidth(x, len(l.features)); err != nil {
		return nil, err
	}
	if len(l.coef) == 1 {
		p := sigmoid(l.decision(0, x))
		return []float64{1 - p, p}, nil
	}
	scores := make([]float64, len(l.coef))
	maxScore := math.Inf(-1)
	for i := range l.coef {
		scores[i] = l.decision(i, x)
		maxScore = math.Max(maxScore, scores[i])
	}
	var sum float64
	for i, s := range scores {
		scores[i] = math.Exp(s - maxScore)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
	return scores, nil
}

// Predict returns the label with the highest probability.
func (l *Logistic) Predict(x []float64) (string, error) {
	p, err := l.PredictProba(x)
	if err != nil {
		return "", err
	}
	return l.classes[Argmax(p)], nil
}

func (l *Logistic) decision(row int, x []float64) float64 {
	z := l.intercept[row]
	for j, w := range l.coef[row] {
		z += w * x[j]
	}
	return z
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
