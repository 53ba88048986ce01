package prediction

import (
	"fmt"
	"math"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
)

// NumFeatures is the width of every vector the artifacts accept.
const NumFeatures = 11

// ResidualSugarEpsilon keeps ln(residual sugar) finite at zero.
const ResidualSugarEpsilon = 1e-6

// FeatureNames is the column order the fitted scaler and regressor were trained on.
var FeatureNames = [NumFeatures]string{
	"fixed acidity",
	"volatile acidity",
	"citric acid",
	"residual sugar",
	"chlorides",
	"free sulfur dioxide",
	"total sulfur dioxide",
	"density",
	"pH",
	"sulphates",
	"alcohol",
}

// FeatureKeys are the request/form keys, index-aligned with FeatureNames.
var FeatureKeys = [NumFeatures]string{
	"fixed_acidity",
	"volatile_acidity",
	"citric_acid",
	"residual_sugar",
	"chlorides",
	"free_sulfur_dioxide",
	"total_sulfur_dioxide",
	"density",
	"ph",
	"sulphates",
	"alcohol",
}

// logTransformed marks the columns that go through ln before scaling.
var logTransformed = [NumFeatures]bool{
	3: true, // residual sugar (epsilon adjusted)
	4: true,
	5: true,
	6: true,
	9: true,
}

// IsLogTransformed reports whether column i is log transformed.
func IsLogTransformed(i int) bool {
	return i >= 0 && i < NumFeatures && logTransformed[i]
}

// FeatureVector holds one wine sample as entered by the user.
type FeatureVector struct {
	FixedAcidity       float64 `json:"fixed_acidity" form:"fixed_acidity"`
	VolatileAcidity    float64 `json:"volatile_acidity" form:"volatile_acidity"`
	CitricAcid         float64 `json:"citric_acid" form:"citric_acid"`
	ResidualSugar      float64 `json:"residual_sugar" form:"residual_sugar"`
	Chlorides          float64 `json:"chlorides" form:"chlorides"`
	FreeSulfurDioxide  float64 `json:"free_sulfur_dioxide" form:"free_sulfur_dioxide"`
	TotalSulfurDioxide float64 `json:"total_sulfur_dioxide" form:"total_sulfur_dioxide"`
	Density            float64 `json:"density" form:"density"`
	PH                 float64 `json:"ph" form:"ph"`
	Sulphates          float64 `json:"sulphates" form:"sulphates"`
	Alcohol            float64 `json:"alcohol" form:"alcohol"`
}

// DefaultFeatures returns the values the form is prefilled with.
func DefaultFeatures() FeatureVector {
	return FeatureVector{
		FixedAcidity:       7.4,
		VolatileAcidity:    0.7,
		CitricAcid:         0.0,
		ResidualSugar:      1.9,
		Chlorides:          0.076,
		FreeSulfurDioxide:  11.0,
		TotalSulfurDioxide: 34.0,
		Density:            0.9978,
		PH:                 3.51,
		Sulphates:          0.56,
		Alcohol:            9.4,
	}
}

// Values returns the raw measurements in FeatureNames order.
func (fv FeatureVector) Values() []float64 {
	return []float64{
		fv.FixedAcidity,
		fv.VolatileAcidity,
		fv.CitricAcid,
		fv.ResidualSugar,
		fv.Chlorides,
		fv.FreeSulfurDioxide,
		fv.TotalSulfurDioxide,
		fv.Density,
		fv.PH,
		fv.Sulphates,
		fv.Alcohol,
	}
}

// FeatureVectorFromValues is the inverse of Values.
func FeatureVectorFromValues(values []float64) (FeatureVector, error) {
	if len(values) != NumFeatures {
		return FeatureVector{}, fmt.Errorf("expected %d values, got %d", NumFeatures, len(values))
	}
	return FeatureVector{
		FixedAcidity:       values[0],
		VolatileAcidity:    values[1],
		CitricAcid:         values[2],
		ResidualSugar:      values[3],
		Chlorides:          values[4],
		FreeSulfurDioxide:  values[5],
		TotalSulfurDioxide: values[6],
		Density:            values[7],
		PH:                 values[8],
		Sulphates:          values[9],
		Alcohol:            values[10],
	}, nil
}

// Transform applies the fixed per-column transform and checks every result is finite.
func (fv FeatureVector) Transform() ([]float64, error) {
	raw := fv.Values()
	out := make([]float64, NumFeatures)

	for i, v := range raw {
		switch {
		case i == 3:
			out[i] = math.Log(v + ResidualSugarEpsilon)
		case logTransformed[i]:
			out[i] = math.Log(v)
		default:
			out[i] = v
		}

		if !isFinite(out[i]) {
			return nil, apperrors.NewComputationError(
				fmt.Sprintf("%s must produce a finite value after transform (got %v from input %v)", FeatureNames[i], out[i], v),
				FeatureKeys[i], v,
			)
		}
	}

	return out, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
