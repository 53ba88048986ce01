package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/history"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/monitoring"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/types"
)

// Service runs predictions for every surface and does the bookkeeping around them:
// metrics, the prediction log line and the optional history record.
type Service struct {
	predictor *prediction.Predictor
	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	recorder  *history.Recorder
}

// NewService wires a predictor to its observers. recorder may be nil when history is off.
func NewService(predictor *prediction.Predictor, metrics *monitoring.Metrics, logger *monitoring.Logger, recorder *history.Recorder) *Service {
	return &Service{
		predictor: predictor,
		metrics:   metrics,
		logger:    logger,
		recorder:  recorder,
	}
}

// Score predicts one sample requested from source
func (s *Service) Score(ctx context.Context, source string, fv prediction.FeatureVector) (prediction.ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return prediction.ScoreResult{}, apperrors.NewTimeoutError("request cancelled before prediction", err)
	}

	start := time.Now()
	result, err := s.predictor.Compute(fv)
	duration := time.Since(start)

	if err != nil {
		field := "unknown"
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Category == apperrors.CategoryComputation {
			field = appErr.Field
		}
		s.metrics.IncrementComputationError(field)
		return prediction.ScoreResult{}, err
	}

	s.metrics.RecordPrediction(string(result.Tier), result.Score, duration)
	s.logger.PredictionLogger(source, string(result.Tier), result.Score, duration, false)

	if s.recorder != nil {
		s.recorder.Submit(history.NewRecord(source, fv, result))
	}

	return result, nil
}

// RecordCacheHit counts a predict response replayed from the response cache and records
// it in history like a computed one. request is the body that produced the hit; cached
// bodies are always PredictResponse JSON, anything else is ignored.
func (s *Service) RecordCacheHit(request, response []byte) {
	var resp types.PredictResponse
	if err := json.Unmarshal(response, &resp); err != nil || resp.Tier == "" {
		return
	}

	s.metrics.RecordPrediction(string(resp.Tier), resp.Score, 0)
	s.logger.PredictionLogger(history.SourceAPI, string(resp.Tier), resp.Score, 0, true)

	if s.recorder == nil {
		return
	}
	fv, err := decodeSample(bytes.NewReader(request))
	if err != nil {
		return
	}
	s.recorder.Submit(history.NewRecord(history.SourceAPI, fv, prediction.ScoreResult{Score: resp.Score, Tier: resp.Tier}))
}

// decodeSample reads a JSON sample over the defaults. An empty body is the default sample.
func decodeSample(r io.Reader) (prediction.FeatureVector, error) {
	fv := prediction.DefaultFeatures()
	if err := json.NewDecoder(r).Decode(&fv); err != nil && !errors.Is(err, io.EOF) {
		return fv, err
	}
	return fv, nil
}

// Info describes the loaded model
func (s *Service) Info() prediction.ModelInfo {
	return s.predictor.Info()
}
