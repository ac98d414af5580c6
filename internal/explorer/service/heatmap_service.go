package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/internal/explorer/heatmap"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/pkg/common"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
)

// DrillDownState is the detail panel of the heatmap. Selection is nil when closed.
type DrillDownState struct {
	Selection *entity.CellKey
	Loading   bool
	Detail    *dto.CellDetailResponse
	Err       error
}

// HeatmapView is the grid with its drill-down panel.
type HeatmapView struct {
	Category  string
	Grid      *heatmap.Grid
	Err       error
	DrillDown DrillDownState
}

// HeatmapService loads the whitespace grid and drives cell drill-down.
type HeatmapService interface {
	Load(ctx context.Context, category string) (*heatmap.Grid, error)
	Select(ctx context.Context, priceBucket, competitionBucket string) (*dto.CellDetailResponse, error)
	Close()
	View() HeatmapView
	Stop()
}

type heatmapService struct {
	repo    repository.WhitespaceRepository
	cache   *cache.Cache
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	load     supersede
	drill    supersede
	category string
	grid     *heatmap.Grid
	gridErr  error
	panel    DrillDownState
}

// NewHeatmapService creates a per-session heatmap. detailCache may be shared
// across sessions; nil disables caching.
func NewHeatmapService(repo repository.WhitespaceRepository, detailCache *cache.Cache, log *logger.Logger, m *metrics.Metrics) HeatmapService {
	return &heatmapService{
		repo:     repo,
		cache:    detailCache,
		logger:   log,
		metrics:  m,
		category: common.FilterAll,
	}
}

// NewDetailCache builds the cell detail cache used by NewHeatmapService.
func NewDetailCache(ttl time.Duration) *cache.Cache {
	return cache.New(ttl, 2*ttl)
}

// Load fetches the grid for category. A superseded load returns ErrStaleResponse
// and a failed load keeps the previous grid.
func (s *heatmapService) Load(ctx context.Context, category string) (*heatmap.Grid, error) {
	if category == "" {
		category = common.FilterAll
	}

	s.mu.Lock()
	gen, reqCtx := s.load.next(ctx)
	s.mu.Unlock()

	resp, err := s.repo.Heatmap(reqCtx, category)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.load.isLatest(gen) {
		return nil, ErrStaleResponse
	}
	s.load.done(gen)
	if err != nil {
		s.gridErr = newTransportError("load heatmap", err)
		s.logger.WarnContext(ctx, "Heatmap load failed", logger.StringField("category", category), logger.ErrorField(err))
		return nil, s.gridErr
	}

	grid := heatmap.Densify(resp.Cells, resp.PriceBuckets, resp.CompetitionBuckets)
	if resp.TotalTopics > 0 {
		grid.TotalTopics = resp.TotalTopics
	}
	if category != s.category {
		s.closeLocked()
	}
	s.category = category
	s.grid = &grid
	s.gridErr = nil
	return s.grid, nil
}

// Select opens the detail panel for a cell of the loaded grid. Selecting an
// empty cell is a no-op that returns (nil, nil). When selections overlap only
// the last one populates the panel.
func (s *heatmapService) Select(ctx context.Context, priceBucket, competitionBucket string) (*dto.CellDetailResponse, error) {
	s.mu.Lock()
	if s.grid == nil {
		s.mu.Unlock()
		return nil, ErrNoHeatmap
	}
	cell, ok := s.grid.Cell(priceBucket, competitionBucket)
	if !ok {
		s.mu.Unlock()
		return nil, ErrUnknownCell
	}
	if !cell.Interactive() {
		s.mu.Unlock()
		return nil, nil
	}

	key := entity.CellKey{PriceBucket: priceBucket, CompetitionBucket: competitionBucket, Category: s.category}
	gen, reqCtx := s.drill.next(ctx)
	s.panel = DrillDownState{Selection: &key, Loading: true}

	if s.cache != nil {
		if cached, found := s.cache.Get(key.String()); found {
			detail := cached.(*dto.CellDetailResponse)
			s.drill.done(gen)
			s.panel.Loading = false
			s.panel.Detail = detail
			s.mu.Unlock()
			s.metrics.RecordDrillDown("cached")
			return detail, nil
		}
	}
	s.mu.Unlock()

	detail, err := s.repo.Cell(reqCtx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.drill.isLatest(gen) {
		s.metrics.RecordDrillDown("stale")
		return nil, ErrStaleResponse
	}
	s.drill.done(gen)
	s.panel.Loading = false
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, ErrStaleResponse
		}
		s.panel.Err = newTransportError("load cell detail", err)
		s.metrics.RecordDrillDown("error")
		s.logger.WarnContext(ctx, "Cell drill-down failed", logger.StringField("cell", key.String()), logger.ErrorField(err))
		return nil, s.panel.Err
	}
	s.panel.Detail = detail
	if s.cache != nil {
		s.cache.SetDefault(key.String(), detail)
	}
	s.metrics.RecordDrillDown("applied")
	return detail, nil
}

// Close empties the panel and discards any response still in flight.
func (s *heatmapService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *heatmapService) closeLocked() {
	s.drill.stop()
	s.panel = DrillDownState{}
}

func (s *heatmapService) View() HeatmapView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HeatmapView{
		Category:  s.category,
		Grid:      s.grid,
		Err:       s.gridErr,
		DrillDown: s.panel,
	}
}

// Stop cancels every outstanding request.
func (s *heatmapService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load.stop()
	s.closeLocked()
}
