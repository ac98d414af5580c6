package entity

import (
	"encoding/json"
	"strings"
)

// Stage is the lifecycle stage of a topic.
type Stage string

const (
	StageEmerging  Stage = "emerging"
	StageExploding Stage = "exploding"
	StagePeaking   Stage = "peaking"
	StageDeclining Stage = "declining"
	StageStable    Stage = "stable"
	StageUnknown   Stage = "unknown"
)

// StageOrder is the fixed axis order used by stage distributions.
var StageOrder = []Stage{
	StageEmerging,
	StageExploding,
	StagePeaking,
	StageDeclining,
	StageUnknown,
	StageStable,
}

// ParseStage maps any input to a known stage; unrecognised values become StageUnknown.
func ParseStage(s string) Stage {
	switch Stage(strings.ToLower(strings.TrimSpace(s))) {
	case StageEmerging:
		return StageEmerging
	case StageExploding:
		return StageExploding
	case StagePeaking:
		return StagePeaking
	case StageDeclining:
		return StageDeclining
	case StageStable:
		return StageStable
	default:
		return StageUnknown
	}
}

// UnmarshalJSON never fails: null, non-string and unrecognised values decode to StageUnknown.
func (s *Stage) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = StageUnknown
		return nil
	}
	*s = ParseStage(raw)
	return nil
}

// Topic is a tracked product niche as returned by the scoring service.
type Topic struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Category          string               `json:"category"`
	Stage             Stage                `json:"stage"`
	OpportunityScore  *float64             `json:"opportunity_score"`
	CompetitionIndex  *float64             `json:"competition_index"`
	Sparkline         []float64            `json:"sparkline,omitempty"`
	Sources           []string             `json:"sources,omitempty"`
	PriceBucket       string               `json:"price_bucket,omitempty"`
	CompetitionBucket string               `json:"competition_bucket,omitempty"`
	AvgPrice          *float64             `json:"avg_price,omitempty"`
	Dissatisfaction   *float64             `json:"dissatisfaction,omitempty"`
	Explainability    *ScoreExplainability `json:"explainability,omitempty"`
}

// HasSparkline reports whether the topic carries any series points.
func (t Topic) HasSparkline() bool {
	return len(t.Sparkline) > 0
}
