package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"neuranest-explorer/internal/explorer/dto"
)

// TopicRepository reads topics from the upstream API.
type TopicRepository interface {
	List(ctx context.Context, query url.Values) (*dto.TopicListResponse, error)
	ExportCSV(ctx context.Context, query url.Values, w io.Writer) (int64, error)
}

type topicRepository struct {
	client *Client
}

func NewTopicRepository(client *Client) TopicRepository {
	return &topicRepository{client: client}
}

// List calls GET /topics with the query exactly as given.
func (r *topicRepository) List(ctx context.Context, query url.Values) (*dto.TopicListResponse, error) {
	var resp dto.TopicListResponse
	if err := r.client.getJSON(ctx, "/topics", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExportCSV streams GET /exports/topics.csv into w.
func (r *topicRepository) ExportCSV(ctx context.Context, query url.Values, w io.Writer) (int64, error) {
	resp, err := r.client.do(ctx, request{method: http.MethodGet, path: "/exports/topics.csv", query: query, accept: "text/csv"})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to stream topic export: %w", err)
	}
	return n, nil
}
