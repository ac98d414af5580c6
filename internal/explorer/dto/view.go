package dto

import (
	"time"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/aggregation"
	"neuranest-explorer/internal/explorer/explain"
	"neuranest-explorer/internal/explorer/filter"
)

// TopicView is a topic row as rendered by the explorer.
type TopicView struct {
	entity.Topic
	Watchlisted bool                 `json:"watchlisted"`
	Explanation *explain.Explanation `json:"explanation,omitempty"`
}

// TopicsPage is the body of GET /api/v1/topics.
type TopicsPage struct {
	SessionID  string         `json:"session_id"`
	Filter     filter.State   `json:"filter"`
	Topics     []TopicView    `json:"topics"`
	Pagination Pagination     `json:"pagination"`
	Generation uint64         `json:"generation"`
	FetchedAt  *time.Time     `json:"fetched_at,omitempty"`
	Loading    bool           `json:"loading"`
	Error      *ErrorResponse `json:"error,omitempty"`
}

// ExplanationView is the body of GET /api/v1/topics/:id/explanation.
type ExplanationView struct {
	TopicID     string              `json:"topic_id"`
	TopicName   string              `json:"topic_name"`
	Score       *float64            `json:"opportunity_score"`
	Explanation explain.Explanation `json:"explanation"`
}

// InsightsView is the body of GET /api/v1/topics/insights.
type InsightsView struct {
	aggregation.Summary
	FetchedAt time.Time `json:"fetched_at"`
}

// HeatmapRow is one price bucket of the grid.
type HeatmapRow struct {
	PriceBucket string               `json:"price_bucket"`
	Cells       []entity.HeatmapCell `json:"cells"`
}

// DrillDownView is the detail panel state.
type DrillDownView struct {
	Open      bool                `json:"open"`
	Selection *entity.CellKey     `json:"selection,omitempty"`
	Loading   bool                `json:"loading"`
	Detail    *CellDetailResponse `json:"detail,omitempty"`
	Error     *ErrorResponse      `json:"error,omitempty"`
}

// HeatmapView is the body of the /api/v1/heatmap endpoints.
type HeatmapView struct {
	SessionID          string         `json:"session_id"`
	Category           string         `json:"category"`
	PriceBuckets       []string       `json:"price_buckets"`
	CompetitionBuckets []string       `json:"competition_buckets"`
	Rows               []HeatmapRow   `json:"rows"`
	TotalTopics        int            `json:"total_topics"`
	MaxTopicCount      int            `json:"max_topic_count"`
	DrillDown          DrillDownView  `json:"drill_down"`
	Error              *ErrorResponse `json:"error,omitempty"`
}

// ImportJobsView is the body of the /api/v1/imports endpoints.
type ImportJobsView struct {
	SessionID string             `json:"session_id"`
	Jobs      []entity.ImportJob `json:"jobs"`
	Polling   bool               `json:"polling"`
	Error     *ErrorResponse     `json:"error,omitempty"`
}

// WatchlistView is the body of the /api/v1/watchlist endpoints.
type WatchlistView struct {
	SessionID string                    `json:"session_id"`
	TopicIDs  []string                  `json:"topic_ids"`
	Mutation  *entity.WatchlistMutation `json:"mutation,omitempty"`
}
