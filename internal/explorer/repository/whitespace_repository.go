package repository

import (
	"context"
	"net/url"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/pkg/common"
)

// WhitespaceRepository reads the price × competition heatmap and its cell details.
type WhitespaceRepository interface {
	Heatmap(ctx context.Context, category string) (*dto.HeatmapResponse, error)
	Cell(ctx context.Context, key entity.CellKey) (*dto.CellDetailResponse, error)
}

type whitespaceRepository struct {
	client *Client
}

func NewWhitespaceRepository(client *Client) WhitespaceRepository {
	return &whitespaceRepository{client: client}
}

func (r *whitespaceRepository) Heatmap(ctx context.Context, category string) (*dto.HeatmapResponse, error) {
	query := url.Values{}
	if category != "" && category != common.FilterAll {
		query.Set("category", category)
	}
	var resp dto.HeatmapResponse
	if err := r.client.getJSON(ctx, "/whitespace/heatmap", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *whitespaceRepository) Cell(ctx context.Context, key entity.CellKey) (*dto.CellDetailResponse, error) {
	query := url.Values{}
	query.Set("price_bucket", key.PriceBucket)
	query.Set("competition_bucket", key.CompetitionBucket)
	if key.Category != "" && key.Category != common.FilterAll {
		query.Set("category", key.Category)
	}
	var resp dto.CellDetailResponse
	if err := r.client.getJSON(ctx, "/whitespace/cell", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
