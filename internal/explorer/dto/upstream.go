package dto

import (
	"encoding/json"
	"io"

	"neuranest-explorer/internal/entity"
)

// Pagination is returned by the upstream topic listing and trusted verbatim.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// TopicListResponse is the body of GET /topics.
type TopicListResponse struct {
	Data       []entity.Topic `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// HeatmapResponse is the body of GET /whitespace/heatmap.
type HeatmapResponse struct {
	Cells              []entity.HeatmapCell `json:"cells"`
	PriceBuckets       []string             `json:"price_buckets"`
	CompetitionBuckets []string             `json:"competition_buckets"`
	TotalTopics        int                  `json:"total_topics"`
}

// ProductConcept is a derived product idea for a whitespace cell.
type ProductConcept struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	PriceRange  string   `json:"price_range,omitempty"`
	Features    []string `json:"features,omitempty"`
}

// CellDetailResponse is the body of GET /whitespace/cell.
type CellDetailResponse struct {
	PriceBucket       string           `json:"price_bucket"`
	CompetitionBucket string           `json:"competition_bucket"`
	Category          string           `json:"category,omitempty"`
	Topics            []entity.Topic   `json:"topics"`
	ProductConcepts   []ProductConcept `json:"product_concepts"`
	Summary           string           `json:"summary"`
}

// UploadResponse is the body of POST /amazon-ba/upload.
type UploadResponse struct {
	JobID      string  `json:"job_id"`
	FileSizeMB float64 `json:"file_size_mb"`
}

// ImportUpload describes a bulk import file to submit.
type ImportUpload struct {
	Filename    string
	Content     io.Reader
	Country     string
	ReportMonth string
}

// JobList decodes either a bare array or an object wrapping the jobs under "jobs" or "data".
type JobList []entity.ImportJob

func (l *JobList) UnmarshalJSON(b []byte) error {
	var jobs []entity.ImportJob
	if err := unmarshalListOrEnvelope(b, &jobs, "jobs", "data"); err != nil {
		return err
	}
	*l = jobs
	return nil
}

// WatchlistList decodes either a bare array or an object wrapping the entries under "data" or "items".
type WatchlistList []entity.WatchlistEntry

func (l *WatchlistList) UnmarshalJSON(b []byte) error {
	var entries []entity.WatchlistEntry
	if err := unmarshalListOrEnvelope(b, &entries, "data", "items"); err != nil {
		return err
	}
	*l = entries
	return nil
}

// WatchlistAddRequest is the body of POST /watchlist.
type WatchlistAddRequest struct {
	TopicID string `json:"topic_id"`
}

func unmarshalListOrEnvelope(b []byte, dst interface{}, keys ...string) error {
	if err := json.Unmarshal(b, dst); err == nil {
		return nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(b, &envelope); err != nil {
		return err
	}
	for _, key := range keys {
		if raw, ok := envelope[key]; ok {
			return json.Unmarshal(raw, dst)
		}
	}
	return nil
}
