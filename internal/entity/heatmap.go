package entity

import "fmt"

// CellKey identifies a heatmap cell, optionally scoped to a category.
type CellKey struct {
	PriceBucket       string `json:"price_bucket"`
	CompetitionBucket string `json:"competition_bucket"`
	Category          string `json:"category,omitempty"`
}

func (k CellKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.PriceBucket, k.CompetitionBucket, k.Category)
}

// HeatmapCell aggregates the topics that fall in one price × competition bucket.
type HeatmapCell struct {
	PriceBucket         string   `json:"price_bucket"`
	CompetitionBucket   string   `json:"competition_bucket"`
	TopicCount          int      `json:"topic_count"`
	AvgDissatisfaction  *float64 `json:"avg_dissatisfaction"`
	AvgOpportunityScore *float64 `json:"avg_opportunity_score"`
	AvgCompetitionIndex *float64 `json:"avg_competition_index"`
	Intensity           float64  `json:"intensity"`
}

// Interactive reports whether the cell can be drilled into.
func (c HeatmapCell) Interactive() bool {
	return c.TopicCount > 0
}
