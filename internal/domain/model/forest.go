package model

import "fmt"

// Tree is one fitted CART tree in array form. Node 0 is the root; a node whose
// left child is -1 is a leaf. Value holds per-class weights for every node.
type Tree struct {
	ChildrenLeft  []int       `koanf:"children_left"`
	ChildrenRight []int       `koanf:"children_right"`
	Feature       []int       `koanf:"feature"`
	Threshold     []float64   `koanf:"threshold"`
	Value         [][]float64 `koanf:"value"`
}

// Forest averages the leaf class distributions of its trees.
type Forest struct {
	features []string
	classes  []string
	trees    []Tree
}

// NewForest checks that every tree is internally consistent.
func NewForest(features, classes []string, trees []Tree) (*Forest, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: need at least two classes", ErrArtifact)
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrArtifact)
	}
	for i, t := range trees {
		if err := t.validate(len(features), len(classes)); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrArtifact, i, err)
		}
	}
	return &Forest{features: features, classes: classes, trees: trees}, nil
}

func (f *Forest) FeatureNames() []string { return f.features }
func (f *Forest) ClassLabels() []string  { return f.classes }

// PredictProba returns the mean of the normalised leaf distributions.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if err := checkWidth(x, len(f.features)); err != nil {
		return nil, err
	}
	out := make([]float64, len(f.classes))
	for i := range f.trees {
		leaf := f.trees[i].Value[f.trees[i].leaf(x)]
		var total float64
		for _, w := range leaf {
			total += w
		}
		if total == 0 {
			continue
		}
		for c, w := range leaf {
			out[c] += w / total
		}
	}
	n := float64(len(f.trees))
	for c := range out {
		out[c] /= n
	}
	return out, nil
}

// Predict returns the label with the highest averaged probability.
func (f *Forest) Predict(x []float64) (string, error) {
	p, err := f.PredictProba(x)
	if err != nil {
		return "", err
	}
	return f.classes[Argmax(p)], nil
}

func (t *Tree) leaf(x []float64) int {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d has %d class weights, want %d", i, len(t.Value[i]), nClasses)
		}
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == -1 {
			continue
		}
		// Children always follow their parent, which also rules out cycles.
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return fmt.Errorf("node %d splits on unknown feature %d", i, t.Feature[i])
		}
	}
	return nil
}
