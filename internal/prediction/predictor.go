package prediction

import (
	"fmt"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
)

// Predictor runs the transform → scale → regress → classify pipeline.
// It only holds the two fitted artifacts, so one instance serves all requests.
type Predictor struct {
	scaler    Scaler
	regressor Regressor
}

// NewPredictor wires already loaded artifacts together.
func NewPredictor(scaler Scaler, regressor Regressor) *Predictor {
	return &Predictor{scaler: scaler, regressor: regressor}
}

// LoadPredictor loads both artifacts from the store. Any failure is a model load error.
func LoadPredictor(store *ArtifactStore, scalerFile, regressorFile string) (*Predictor, error) {
	scaler, err := store.LoadScaler(scalerFile)
	if err != nil {
		return nil, err
	}

	regressor, err := store.LoadRegressor(regressorFile)
	if err != nil {
		return nil, err
	}

	return NewPredictor(scaler, regressor), nil
}

// Compute predicts the quality of one sample.
func (p *Predictor) Compute(fv FeatureVector) (ScoreResult, error) {
	transformed, err := fv.Transform()
	if err != nil {
		return ScoreResult{}, err
	}
	return p.computeTransformed(transformed)
}

func (p *Predictor) computeTransformed(transformed []float64) (ScoreResult, error) {
	scaled, err := p.scaler.Transform(transformed)
	if err != nil {
		return ScoreResult{}, asComputationError(err, "scaler failed")
	}

	score, err := p.regressor.Predict(scaled)
	if err != nil {
		return ScoreResult{}, asComputationError(err, "regressor failed")
	}
	if !isFinite(score) {
		return ScoreResult{}, apperrors.NewComputationError(
			fmt.Sprintf("regressor returned a non-finite score (%v)", score), "score", score)
	}

	return ScoreResult{Score: score, Tier: Classify(score)}, nil
}

// Info describes the loaded artifacts.
func (p *Predictor) Info() ModelInfo {
	info := ModelInfo{Features: NumFeatures}

	switch s := p.scaler.(type) {
	case *StandardScaler:
		info.ScalerKind = s.Kind
	default:
		info.ScalerKind = fmt.Sprintf("%T", s)
	}

	switch r := p.regressor.(type) {
	case *Forest:
		info.RegressorKind = KindRandomForest
		info.Trees = len(r.Trees)
	case *LinearRegressor:
		info.RegressorKind = KindLinear
	default:
		info.RegressorKind = fmt.Sprintf("%T", r)
	}

	return info
}

// Close releases nothing; artifacts live for the whole process.
func (p *Predictor) Close() error { return nil }

func asComputationError(err error, msg string) error {
	if apperrors.IsComputation(err) {
		return err
	}
	return apperrors.NewComputationError(fmt.Sprintf("%s: %v", msg, err), "pipeline", msg)
}
