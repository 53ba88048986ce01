package prediction

// ScoreResult is the outcome of one prediction.
type ScoreResult struct {
	Score float64     `json:"score"`
	Tier  QualityTier `json:"tier"`
}

// Scaler maps a transformed feature vector onto the space the regressor was fitted in.
type Scaler interface {
	Transform(x []float64) ([]float64, error)
}

// Regressor maps a scaled feature vector to a quality score.
type Regressor interface {
	Predict(x []float64) (float64, error)
}

// ModelInfo summarises the loaded artifacts for health and logging.
type ModelInfo struct {
	ScalerKind    string `json:"scaler_kind"`
	RegressorKind string `json:"regressor_kind"`
	Trees         int    `json:"trees,omitempty"`
	Features      int    `json:"features"`
}
