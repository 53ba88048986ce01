package history

import (
	"time"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/google/uuid"
)

// Source names where a prediction was requested from
const (
	SourceForm = "form"
	SourceAPI  = "api"
)

// Record is one served prediction
type Record struct {
	ID        string                   `json:"id"`
	Source    string                   `json:"source"`
	Features  prediction.FeatureVector `json:"features"`
	Score     float64                  `json:"score"`
	Tier      prediction.QualityTier   `json:"tier"`
	CreatedAt time.Time                `json:"created_at"`
}

// NewRecord stamps a result with a fresh ID and the current time
func NewRecord(source string, fv prediction.FeatureVector, result prediction.ScoreResult) *Record {
	return &Record{
		ID:        uuid.New().String(),
		Source:    source,
		Features:  fv,
		Score:     result.Score,
		Tier:      result.Tier,
		CreatedAt: time.Now().UTC(),
	}
}

// TierCount is the number of served predictions in one tier
type TierCount struct {
	Tier  prediction.QualityTier `json:"tier"`
	Rank  int                    `json:"rank"`
	Count int64                  `json:"count"`
}
