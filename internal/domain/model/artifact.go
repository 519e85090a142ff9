package model

import "fmt"

// Artifact kinds.
const (
	KindLogistic = "logistic"
	KindForest   = "forest"
)

// Artifact is the portable description of a trained classifier.
type Artifact struct {
	Kind         string      `koanf:"kind"`
	FeatureNames []string    `koanf:"feature_names"`
	Classes      []string    `koanf:"classes"`
	Coef         [][]float64 `koanf:"coef"`
	Intercept    []float64   `koanf:"intercept"`
	Trees        []Tree      `koanf:"trees"`
}

// Classifier builds the classifier the artifact describes.
func (a Artifact) Classifier() (Classifier, error) {
	if len(a.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: no feature names", ErrArtifact)
	}
	seen := make(map[string]struct{}, len(a.FeatureNames))
	for _, name := range a.FeatureNames {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate feature %q", ErrArtifact, name)
		}
		seen[name] = struct{}{}
	}
	switch a.Kind {
	case KindLogistic:
		return NewLogistic(a.FeatureNames, a.Classes, a.Coef, a.Intercept)
	case KindForest:
		return NewForest(a.FeatureNames, a.Classes, a.Trees)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrArtifact, a.Kind)
	}
}
