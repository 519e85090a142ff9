// Package model defines the classifier contract and the artifact-backed
// classifiers served by the prediction endpoints.
package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for classifier construction and inference.
var (
	ErrShape    = errors.New("feature vector shape mismatch")
	ErrArtifact = errors.New("invalid model artifact")
)

// Vector is one row of feature values ordered by a classifier's schema.
type Vector struct {
	Names  []string
	Values []float64
}

// Classifier is a pre-trained model. Implementations are immutable and safe
// for concurrent use.
type Classifier interface {
	// FeatureNames returns the ordered input schema.
	FeatureNames() []string
	// ClassLabels returns class labels in the order PredictProba reports them.
	ClassLabels() []string
	// PredictProba returns one probability per class label.
	PredictProba(x []float64) ([]float64, error)
	// Predict returns the most probable class label.
	Predict(x []float64) (string, error)
}

// ClassIndex maps a class label to its position in PredictProba output.
type ClassIndex map[string]int

// NewClassIndex indexes labels by position.
func NewClassIndex(labels []string) ClassIndex {
	idx := make(ClassIndex, len(labels))
	for i, l := range labels {
		idx[l] = i
	}
	return idx
}

// Lookup returns the position of label.
func (c ClassIndex) Lookup(label string) (int, bool) {
	i, ok := c[label]
	return i, ok
}

// Argmax returns the first index holding the largest value.
func Argmax(p []float64) int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}

func checkWidth(x []float64, want int) error {
	if len(x) != want {
		return fmt.Errorf("%w: got %d values, want %d", ErrShape, len(x), want)
	}
	return nil
}
