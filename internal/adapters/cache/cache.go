// Package cache memoises classifier output for repeated feature vectors.
package cache

import (
	"encoding/binary"
	"math"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/enhealth/internal/domain/model"
	"github.com/okian/enhealth/pkg/metrics"
)

// Classifier wraps a model.Classifier with a bounded LRU keyed on the raw
// feature values. Inference is deterministic, so a hit returns exactly what
// the wrapped classifier would have produced.
type Classifier struct {
	next    model.Classifier
	name    string
	entries *lru.Cache[string, []float64]
}

// Wrap returns next behind an LRU of size entries. A non-positive size
// disables caching and returns next unchanged.
func Wrap(next model.Classifier, name string, size int) (model.Classifier, error) {
	if size <= 0 {
		return next, nil
	}
	entries, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, err
	}
	return &Classifier{next: next, name: name, entries: entries}, nil
}

// FeatureNames implements model.Classifier.
func (c *Classifier) FeatureNames() []string { return c.next.FeatureNames() }

// ClassLabels implements model.Classifier.
func (c *Classifier) ClassLabels() []string { return c.next.ClassLabels() }

// PredictProba implements model.Classifier. Callers get their own copy of the
// cached slice.
func (c *Classifier) PredictProba(x []float64) ([]float64, error) {
	key := vectorKey(x)
	if p, ok := c.entries.Get(key); ok {
		metrics.RecordCacheHit(c.name)
		return slices.Clone(p), nil
	}
	metrics.RecordCacheMiss(c.name)

	p, err := c.next.PredictProba(x)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, slices.Clone(p))
	return p, nil
}

// Predict implements model.Classifier on top of the cached probabilities.
func (c *Classifier) Predict(x []float64) (string, error) {
	p, err := c.PredictProba(x)
	if err != nil {
		return "", err
	}
	labels := c.next.ClassLabels()
	i := model.Argmax(p)
	if i >= len(labels) {
		return c.next.Predict(x)
	}
	return labels[i], nil
}

// Len reports the number of cached vectors.
func (c *Classifier) Len() int { return c.entries.Len() }

func vectorKey(x []float64) string {
	b := make([]byte, 8*len(x))
	for i, v := range x {
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return string(b)
}
