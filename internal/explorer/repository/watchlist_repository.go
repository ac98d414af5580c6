package repository

import (
	"context"
	"net/http"
	"net/url"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
)

// WatchlistRepository is the authoritative store for watchlist membership.
type WatchlistRepository interface {
	List(ctx context.Context) ([]entity.WatchlistEntry, error)
	Add(ctx context.Context, topicID string) error
	Remove(ctx context.Context, topicID string) error
}

type watchlistRepository struct {
	client *Client
}

func NewWatchlistRepository(client *Client) WatchlistRepository {
	return &watchlistRepository{client: client}
}

func (r *watchlistRepository) List(ctx context.Context) ([]entity.WatchlistEntry, error) {
	var entries dto.WatchlistList
	if err := r.client.getJSON(ctx, "/watchlist", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *watchlistRepository) Add(ctx context.Context, topicID string) error {
	return r.client.sendJSON(ctx, http.MethodPost, "/watchlist", dto.WatchlistAddRequest{TopicID: topicID}, nil)
}

func (r *watchlistRepository) Remove(ctx context.Context, topicID string) error {
	return r.client.sendJSON(ctx, http.MethodDelete, "/watchlist/"+url.PathEscape(topicID), nil, nil)
}
