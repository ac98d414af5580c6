package service

import (
	"context"
	"errors"
	"io"
	"net/url"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/internal/explorer/explain"
	"neuranest-explorer/internal/explorer/filter"
	"neuranest-explorer/internal/explorer/heatmap"
)

// ExplorerService turns session state into the views served to clients.
type ExplorerService interface {
	Topics(ctx context.Context, s *Session, values url.Values) (*dto.TopicsPage, error)
	Explanation(s *Session, topicID string) (*dto.ExplanationView, error)
	Insights(limit int) (*dto.InsightsView, error)
	Heatmap(ctx context.Context, s *Session, category string) (*dto.HeatmapView, error)
	SelectCell(ctx context.Context, s *Session, priceBucket, competitionBucket string) (*dto.HeatmapView, error)
	CloseCell(s *Session) *dto.HeatmapView
	ExportCSV(ctx context.Context, s *Session, values url.Values, w io.Writer) (int64, error)
}

type explorerService struct {
	snapshot     SnapshotService
	defaultLimit int
}

// NewExplorerService creates the view builder. snapshot backs insights.
func NewExplorerService(snapshot SnapshotService, insightsLimit int) ExplorerService {
	if insightsLimit <= 0 {
		insightsLimit = 5
	}
	return &explorerService{snapshot: snapshot, defaultLimit: insightsLimit}
}

// Topics merges values into the session filter and fetches the matching page.
// The fetch generation is taken inside the filter transition, so concurrent
// calls are applied in the order their filters were committed.
// A superseded fetch still returns the view of whatever the session now shows.
// A failed fetch returns the last applied page together with the error.
func (e *explorerService) Topics(ctx context.Context, s *Session, values url.Values) (*dto.TopicsPage, error) {
	if s.Closed() {
		return nil, ErrSessionClosed
	}
	var pending *PendingFetch
	s.Filter.Commit(values, func(state filter.State) {
		pending = s.Fetcher.Issue(ctx, state)
	})

	_, err := pending.Wait(ctx)
	if errors.Is(err, ErrStaleResponse) {
		err = nil
	}

	page := e.topicsPage(s)
	if err != nil {
		page.Error = errorResponse(err)
	}
	return page, err
}

func (e *explorerService) topicsPage(s *Session) *dto.TopicsPage {
	snap := s.Fetcher.Snapshot()
	page := &dto.TopicsPage{
		SessionID:  s.ID,
		Filter:     s.Filter.State(),
		Topics:     []dto.TopicView{},
		Generation: snap.Generation,
		Loading:    snap.Loading,
	}
	if snap.Result == nil {
		return page
	}

	page.Filter = snap.Result.State
	page.Pagination = snap.Result.Pagination
	fetchedAt := snap.Result.FetchedAt
	page.FetchedAt = &fetchedAt
	for _, t := range snap.Result.Topics {
		view := dto.TopicView{Topic: t, Watchlisted: s.Watchlist.Contains(t.ID)}
		if t.Explainability != nil {
			x := explain.Decompose(t.Explainability)
			view.Explanation = &x
		}
		page.Topics = append(page.Topics, view)
	}
	return page
}

// Explanation decomposes the score of a topic on the session's current page,
// falling back to the insights snapshot.
func (e *explorerService) Explanation(s *Session, topicID string) (*dto.ExplanationView, error) {
	t, ok := e.findTopic(s, topicID)
	if !ok {
		return nil, ErrTopicNotLoaded
	}
	return &dto.ExplanationView{
		TopicID:     t.ID,
		TopicName:   t.Name,
		Score:       t.OpportunityScore,
		Explanation: explain.Decompose(t.Explainability),
	}, nil
}

func (e *explorerService) findTopic(s *Session, topicID string) (entity.Topic, bool) {
	if s != nil {
		if res := s.Fetcher.Snapshot().Result; res != nil {
			for _, t := range res.Topics {
				if t.ID == topicID {
					return t, true
				}
			}
		}
	}
	if e.snapshot != nil {
		topics, _ := e.snapshot.Topics()
		for _, t := range topics {
			if t.ID == topicID {
				return t, true
			}
		}
	}
	return entity.Topic{}, false
}

func (e *explorerService) Insights(limit int) (*dto.InsightsView, error) {
	if limit <= 0 {
		limit = e.defaultLimit
	}
	insights, err := e.snapshot.Insights(limit)
	if err != nil {
		return nil, err
	}
	return &dto.InsightsView{Summary: insights.Summary, FetchedAt: insights.FetchedAt}, nil
}

// Heatmap loads the grid for category, or returns the loaded grid when
// category is empty and one is already present.
func (e *explorerService) Heatmap(ctx context.Context, s *Session, category string) (*dto.HeatmapView, error) {
	if s.Closed() {
		return nil, ErrSessionClosed
	}
	current := s.Heatmap.View()
	if category == "" && current.Grid != nil {
		return heatmapView(s.ID, current), nil
	}

	_, err := s.Heatmap.Load(ctx, category)
	if errors.Is(err, ErrStaleResponse) {
		err = nil
	}
	view := heatmapView(s.ID, s.Heatmap.View())
	if err != nil {
		view.Error = errorResponse(err)
	}
	return view, err
}

func (e *explorerService) SelectCell(ctx context.Context, s *Session, priceBucket, competitionBucket string) (*dto.HeatmapView, error) {
	if s.Closed() {
		return nil, ErrSessionClosed
	}
	_, err := s.Heatmap.Select(ctx, priceBucket, competitionBucket)
	if errors.Is(err, ErrStaleResponse) {
		err = nil
	}
	return heatmapView(s.ID, s.Heatmap.View()), err
}

func (e *explorerService) CloseCell(s *Session) *dto.HeatmapView {
	s.Heatmap.Close()
	return heatmapView(s.ID, s.Heatmap.View())
}

// ExportCSV streams the upstream export for the session filter without paging.
func (e *explorerService) ExportCSV(ctx context.Context, s *Session, values url.Values, w io.Writer) (int64, error) {
	state := filter.Apply(s.Filter.State(), values)
	query := state.Query()
	query.Del(string(filter.FieldPage))
	query.Del(string(filter.FieldPageSize))
	n, err := s.Topics.ExportCSV(ctx, query, w)
	if err != nil {
		return n, newTransportError("export topics", err)
	}
	return n, nil
}

func heatmapView(sessionID string, v HeatmapView) *dto.HeatmapView {
	view := &dto.HeatmapView{
		SessionID:          sessionID,
		Category:           v.Category,
		PriceBuckets:       []string{},
		CompetitionBuckets: []string{},
		Rows:               []dto.HeatmapRow{},
	}
	if v.Err != nil {
		view.Error = errorResponse(v.Err)
	}
	if v.Grid != nil {
		fillGrid(view, *v.Grid)
	}

	panel := v.DrillDown
	view.DrillDown = dto.DrillDownView{
		Open:      panel.Selection != nil,
		Selection: panel.Selection,
		Loading:   panel.Loading,
		Detail:    panel.Detail,
	}
	if panel.Err != nil {
		view.DrillDown.Error = errorResponse(panel.Err)
	}
	return view
}

func fillGrid(view *dto.HeatmapView, g heatmap.Grid) {
	view.PriceBuckets = g.PriceBuckets
	view.CompetitionBuckets = g.CompetitionBuckets
	view.TotalTopics = g.TotalTopics
	view.MaxTopicCount = g.MaxTopicCount
	for i, row := range g.Rows() {
		view.Rows = append(view.Rows, dto.HeatmapRow{PriceBucket: g.PriceBuckets[i], Cells: row})
	}
}

func errorResponse(err error) *dto.ErrorResponse {
	resp := &dto.ErrorResponse{Error: err.Error()}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		resp.Retryable = transportErr.Retryable
	}
	return resp
}
