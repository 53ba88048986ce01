package prediction

// QualityTier is the label shown for a predicted score.
type QualityTier string

const (
	TierBest    QualityTier = "BEST QUALITY"
	TierBetter  QualityTier = "BETTER QUALITY"
	TierGood    QualityTier = "GOOD QUALITY"
	TierAverage QualityTier = "AVERAGE QUALITY"
	TierBasic   QualityTier = "BASIC QUALITY"
)

// TierThreshold pairs a tier with its inclusive lower bound.
// MinScore is nil for TierBasic, which catches every score below the others.
type TierThreshold struct {
	Tier     QualityTier `json:"tier"`
	MinScore *float64    `json:"min_score,omitempty"`
}

type tierBound struct {
	tier QualityTier
	min  float64
}

// tierTable is evaluated top-down; the first bound the score reaches wins.
var tierTable = []tierBound{
	{tier: TierBest, min: 8.0},
	{tier: TierBetter, min: 7.0},
	{tier: TierGood, min: 6.0},
	{tier: TierAverage, min: 5.0},
}

// Classify maps a continuous score to its tier.
func Classify(score float64) QualityTier {
	for _, b := range tierTable {
		if score >= b.min {
			return b.tier
		}
	}
	return TierBasic
}

// Thresholds returns a fresh copy of the threshold table, best tier first.
func Thresholds() []TierThreshold {
	out := make([]TierThreshold, 0, len(tierTable)+1)
	for _, b := range tierTable {
		bound := b.min
		out = append(out, TierThreshold{Tier: b.tier, MinScore: &bound})
	}
	return append(out, TierThreshold{Tier: TierBasic})
}

// Tiers lists every tier from best to basic.
func Tiers() []QualityTier {
	return []QualityTier{TierBest, TierBetter, TierGood, TierAverage, TierBasic}
}

// Rank orders tiers: 5 for best down to 1 for basic, 0 for unknown labels.
func (t QualityTier) Rank() int {
	switch t {
	case TierBest:
		return 5
	case TierBetter:
		return 4
	case TierGood:
		return 3
	case TierAverage:
		return 2
	case TierBasic:
		return 1
	default:
		return 0
	}
}

func (t QualityTier) String() string { return string(t) }
