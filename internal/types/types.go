package types

import (
	"time"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/history"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/resilience"
)

// PredictRequest is the JSON body of POST /api/v1/predict.
// Omitted keys keep their default value.
type PredictRequest = prediction.FeatureVector

// PredictResponse is the score and tier for one sample
type PredictResponse struct {
	Score    float64                `json:"score" example:"5.166666666666667"`
	Tier     prediction.QualityTier `json:"tier" example:"AVERAGE QUALITY"`
	TierRank int                    `json:"tier_rank" example:"2"`
}

// NewPredictResponse converts a result into its wire form
func NewPredictResponse(result prediction.ScoreResult) PredictResponse {
	return PredictResponse{
		Score:    result.Score,
		Tier:     result.Tier,
		TierRank: result.Tier.Rank(),
	}
}

// FeatureInfo describes one input column
type FeatureInfo struct {
	Index          int     `json:"index"`
	Name           string  `json:"name" example:"residual sugar"`
	Key            string  `json:"key" example:"residual_sugar"`
	Default        float64 `json:"default" example:"1.9"`
	LogTransformed bool    `json:"log_transformed"`
}

// FeaturesResponse lists the input columns in model order
type FeaturesResponse struct {
	Features []FeatureInfo `json:"features"`
}

// NewFeaturesResponse builds the column listing from the canonical order
func NewFeaturesResponse() FeaturesResponse {
	defaults := prediction.DefaultFeatures().Values()
	features := make([]FeatureInfo, 0, prediction.NumFeatures)
	for i := 0; i < prediction.NumFeatures; i++ {
		features = append(features, FeatureInfo{
			Index:          i,
			Name:           prediction.FeatureNames[i],
			Key:            prediction.FeatureKeys[i],
			Default:        defaults[i],
			LogTransformed: prediction.IsLogTransformed(i),
		})
	}
	return FeaturesResponse{Features: features}
}

// TiersResponse is the threshold table, best tier first
type TiersResponse struct {
	Tiers []prediction.TierThreshold `json:"tiers"`
}

// HistoryResponse lists recent predictions, newest first
type HistoryResponse struct {
	Count       int              `json:"count"`
	Predictions []history.Record `json:"predictions"`
}

// TierStatsResponse counts served predictions per tier
type TierStatsResponse struct {
	Total int64               `json:"total"`
	Tiers []history.TierCount `json:"tiers"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status     string                       `json:"status" example:"ok"`
	Timestamp  string                       `json:"timestamp"`
	Version    string                       `json:"version" example:"1.0.0"`
	Uptime     string                       `json:"uptime"`
	Model      prediction.ModelInfo         `json:"model"`
	Components []resilience.ComponentHealth `json:"components"`
}

// NewHealthResponse stamps a health report with the current time
func NewHealthResponse(status, version string, started time.Time, model prediction.ModelInfo, components []resilience.ComponentHealth) HealthResponse {
	return HealthResponse{
		Status:     status,
		Timestamp:  time.Now().Format(time.RFC3339),
		Version:    version,
		Uptime:     time.Since(started).Round(time.Second).String(),
		Model:      model,
		Components: components,
	}
}
