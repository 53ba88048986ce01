package prediction

import (
	"fmt"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
)

// KindStandardScaler identifies a per-feature mean/scale normalizer.
const KindStandardScaler = "standard_scaler"

// StandardScaler computes (x - mean) / scale per column.
type StandardScaler struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// NewStandardScaler builds a scaler over the canonical feature order.
func NewStandardScaler(mean, scale []float64) *StandardScaler {
	return &StandardScaler{
		Kind:         KindStandardScaler,
		FeatureNames: FeatureNames[:],
		Mean:         mean,
		Scale:        scale,
	}
}

// Validate checks the fitted parameters are usable.
func (s *StandardScaler) Validate() error {
	if s.Kind != KindStandardScaler {
		return fmt.Errorf("unsupported scaler kind %q", s.Kind)
	}
	if err := checkFeatureNames(s.FeatureNames); err != nil {
		return err
	}
	if len(s.Mean) != NumFeatures || len(s.Scale) != NumFeatures {
		return fmt.Errorf("scaler needs %d means and scales, got %d and %d", NumFeatures, len(s.Mean), len(s.Scale))
	}
	for i := 0; i < NumFeatures; i++ {
		if !isFinite(s.Mean[i]) {
			return fmt.Errorf("mean for %s is not finite", FeatureNames[i])
		}
		if !isFinite(s.Scale[i]) || s.Scale[i] == 0 {
			return fmt.Errorf("scale for %s must be finite and non-zero", FeatureNames[i])
		}
	}
	return nil
}

// Transform implements Scaler.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, apperrors.NewComputationError(
			fmt.Sprintf("scaler expects %d features, got %d", len(s.Mean), len(x)), "features", len(x))
	}

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
		if !isFinite(out[i]) {
			return nil, apperrors.NewComputationError(
				fmt.Sprintf("scaled %s is not finite", FeatureNames[i]), FeatureKeys[i], v)
		}
	}
	return out, nil
}

// checkFeatureNames accepts an omitted list; a present one must match column for column.
func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != NumFeatures {
		return fmt.Errorf("artifact lists %d feature names, expected %d", len(names), NumFeatures)
	}
	for i, name := range names {
		if name != FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, expected %q", i, name, FeatureNames[i])
		}
	}
	return nil
}
