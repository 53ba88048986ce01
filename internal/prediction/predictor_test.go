package prediction

import (
	"testing"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceScore is the forest mean for DefaultFeatures against testdata/.
const referenceScore = (5.0 + 5.2 + 5.3) / 3

func loadReferencePredictor(t testing.TB) *Predictor {
	t.Helper()
	p, err := LoadPredictor(NewArtifactStore("testdata"), "scaler.json", "regressor.json")
	require.NoError(t, err)
	return p
}

func TestPredictor_Reference(t *testing.T) {
	p := loadReferencePredictor(t)

	result, err := p.Compute(DefaultFeatures())
	require.NoError(t, err)
	assert.InDelta(t, referenceScore, result.Score, 1e-9)
	assert.Equal(t, TierAverage, result.Tier)
}

func TestPredictor_Deterministic(t *testing.T) {
	p := loadReferencePredictor(t)
	fv := DefaultFeatures()

	first, err := p.Compute(fv)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := p.Compute(fv)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// a fresh load of the same artifacts agrees bit for bit
	other := loadReferencePredictor(t)
	fromOther, err := other.Compute(fv)
	require.NoError(t, err)
	assert.Equal(t, first, fromOther)
}

func TestPredictor_FieldOrderMatters(t *testing.T) {
	p := loadReferencePredictor(t)

	transformed, err := DefaultFeatures().Transform()
	require.NoError(t, err)

	reversed := make([]float64, len(transformed))
	for i, v := range transformed {
		reversed[len(transformed)-1-i] = v
	}

	inOrder, err := p.computeTransformed(transformed)
	require.NoError(t, err)
	outOfOrder, err := p.computeTransformed(reversed)
	require.NoError(t, err)

	assert.InDelta(t, referenceScore, inOrder.Score, 1e-9)
	assert.InDelta(t, (5.6+5.9+5.7)/3, outOfOrder.Score, 1e-9)
	assert.NotEqual(t, inOrder.Score, outOfOrder.Score)
}

func TestPredictor_ComputationErrors(t *testing.T) {
	p := loadReferencePredictor(t)

	tests := []struct {
		name   string
		mutate func(*FeatureVector)
	}{
		{name: "zero chlorides", mutate: func(fv *FeatureVector) { fv.Chlorides = 0 }},
		{name: "negative chlorides", mutate: func(fv *FeatureVector) { fv.Chlorides = -0.01 }},
		{name: "zero sulphates", mutate: func(fv *FeatureVector) { fv.Sulphates = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := DefaultFeatures()
			tt.mutate(&fv)

			_, err := p.Compute(fv)
			require.Error(t, err)
			assert.True(t, apperrors.IsComputation(err))
		})
	}
}

func TestPredictor_LinearTiers(t *testing.T) {
	scaler := NewStandardScaler(make([]float64, NumFeatures), []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})

	tests := []struct {
		intercept float64
		expected  QualityTier
	}{
		{intercept: 8.0, expected: TierBest},
		{intercept: 7.5, expected: TierBetter},
		{intercept: 6.0, expected: TierGood},
		{intercept: 5.0, expected: TierAverage},
		{intercept: 3.2, expected: TierBasic},
	}

	for _, tt := range tests {
		p := NewPredictor(scaler, &LinearRegressor{Coefficients: make([]float64, NumFeatures), Intercept: tt.intercept})
		result, err := p.Compute(DefaultFeatures())
		require.NoError(t, err)
		assert.Equal(t, tt.intercept, result.Score)
		assert.Equal(t, tt.expected, result.Tier)
	}
}

func TestPredictor_NonFiniteScore(t *testing.T) {
	scaler := NewStandardScaler(make([]float64, NumFeatures), []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	coef := make([]float64, NumFeatures)
	coef[0] = 1.7976931348623157e308
	p := NewPredictor(scaler, &LinearRegressor{Coefficients: coef, Intercept: 0})

	fv := DefaultFeatures()
	fv.FixedAcidity = 10

	_, err := p.Compute(fv)
	require.Error(t, err)
	assert.True(t, apperrors.IsComputation(err))
}

func TestPredictor_LoadFailure(t *testing.T) {
	_, err := LoadPredictor(NewArtifactStore(t.TempDir()), "scaler.json", "regressor.json")
	require.Error(t, err)
	assert.True(t, apperrors.IsModelLoad(err))
}

func TestPredictor_Info(t *testing.T) {
	info := loadReferencePredictor(t).Info()

	assert.Equal(t, ModelInfo{
		ScalerKind:    KindStandardScaler,
		RegressorKind: KindRandomForest,
		Trees:         3,
		Features:      NumFeatures,
	}, info)
}

func BenchmarkPredictor_Compute(b *testing.B) {
	p := loadReferencePredictor(b)
	fv := DefaultFeatures()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := p.Compute(fv); err != nil {
			b.Fatal(err)
		}
	}
}
