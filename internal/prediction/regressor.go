package prediction

import (
	"fmt"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
)

const (
	KindRandomForest = "random_forest"
	KindLinear       = "linear"
)

// Node is one entry of a pre-order exported decision tree.
// Feature < 0 marks a leaf carrying Value; otherwise x[Feature] <= Threshold goes Left.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// IsLeaf reports whether the node terminates a walk.
func (n Node) IsLeaf() bool { return n.Feature < 0 }

// Tree is a single regression tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.IsLeaf() {
			if !isFinite(n.Value) {
				return fmt.Errorf("leaf %d has non-finite value", i)
			}
			continue
		}
		if n.Feature >= NumFeatures {
			return fmt.Errorf("node %d splits on feature %d, only %d exist", i, n.Feature, NumFeatures)
		}
		if !isFinite(n.Threshold) {
			return fmt.Errorf("node %d has non-finite threshold", i)
		}
		// children after their parent keeps every walk finite
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has out-of-order children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func (t Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Forest averages the output of its trees.
type Forest struct {
	Trees []Tree
}

// Validate checks every tree is well formed.
func (f *Forest) Validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i, t := range f.Trees {
		if err := t.validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

// Predict implements Regressor.
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != NumFeatures {
		return 0, apperrors.NewComputationError(
			fmt.Sprintf("forest expects %d features, got %d", NumFeatures, len(x)), "features", len(x))
	}

	sum := 0.0
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

// LinearRegressor is intercept + coefficients·x.
type LinearRegressor struct {
	Coefficients []float64
	Intercept    float64
}

// Validate checks the coefficient vector.
func (l *LinearRegressor) Validate() error {
	if len(l.Coefficients) != NumFeatures {
		return fmt.Errorf("linear model needs %d coefficients, got %d", NumFeatures, len(l.Coefficients))
	}
	for i, c := range l.Coefficients {
		if !isFinite(c) {
			return fmt.Errorf("coefficient for %s is not finite", FeatureNames[i])
		}
	}
	if !isFinite(l.Intercept) {
		return fmt.Errorf("intercept is not finite")
	}
	return nil
}

// Predict implements Regressor.
func (l *LinearRegressor) Predict(x []float64) (float64, error) {
	if len(x) != len(l.Coefficients) {
		return 0, apperrors.NewComputationError(
			fmt.Sprintf("linear model expects %d features, got %d", len(l.Coefficients), len(x)), "features", len(x))
	}

	y := l.Intercept
	for i, c := range l.Coefficients {
		y += c * x[i]
	}
	return y, nil
}

// RegressorDocument is the on-disk form of a regressor artifact.
type RegressorDocument struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Trees        []Tree    `json:"trees,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	Intercept    float64   `json:"intercept,omitempty"`
}

// Build validates the document and returns the regressor it describes.
func (d *RegressorDocument) Build() (Regressor, error) {
	if err := checkFeatureNames(d.FeatureNames); err != nil {
		return nil, err
	}

	switch d.Kind {
	case KindRandomForest:
		f := &Forest{Trees: d.Trees}
		if err := f.Validate(); err != nil {
			return nil, err
		}
		return f, nil
	case KindLinear:
		l := &LinearRegressor{Coefficients: d.Coefficients, Intercept: d.Intercept}
		if err := l.Validate(); err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unsupported regressor kind %q", d.Kind)
	}
}

// DocumentFor converts a regressor back to its artifact form.
func DocumentFor(r Regressor) (*RegressorDocument, error) {
	switch m := r.(type) {
	case *Forest:
		return &RegressorDocument{Kind: KindRandomForest, FeatureNames: FeatureNames[:], Trees: m.Trees}, nil
	case *LinearRegressor:
		return &RegressorDocument{Kind: KindLinear, FeatureNames: FeatureNames[:], Coefficients: m.Coefficients, Intercept: m.Intercept}, nil
	default:
		return nil, fmt.Errorf("regressor %T has no artifact form", r)
	}
}
