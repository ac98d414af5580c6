package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/aggregation"
	"neuranest-explorer/internal/explorer/filter"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
)

var ErrSnapshotNotReady = errors.New("topic snapshot not loaded yet")

// SnapshotConfig tunes the unpaginated read model.
type SnapshotConfig struct {
	Cron                  string
	PageSize              int
	Concurrency           int
	IncludeExplainability bool
	RefreshTimeout        time.Duration
}

// Insights is the aggregation of the whole topic collection at FetchedAt.
type Insights struct {
	aggregation.Summary
	FetchedAt time.Time `json:"fetched_at"`
}

// SnapshotService keeps a full copy of the topic collection for insights.
// It is refreshed on a schedule and is independent of any session's filters.
type SnapshotService interface {
	Start(ctx context.Context) error
	Stop()
	Refresh(ctx context.Context) error
	Topics() ([]entity.Topic, time.Time)
	Insights(limit int) (Insights, error)
}

type snapshotService struct {
	repo    repository.TopicRepository
	cfg     SnapshotConfig
	logger  *logger.Logger
	metrics *metrics.Metrics

	cron *cron.Cron

	refreshMu sync.Mutex
	mu        sync.RWMutex
	topics    []entity.Topic
	fetchedAt time.Time
}

// NewSnapshotService creates the insights read model.
func NewSnapshotService(repo repository.TopicRepository, cfg SnapshotConfig, log *logger.Logger, m *metrics.Metrics) SnapshotService {
	if cfg.PageSize <= 0 || cfg.PageSize > filter.MaxPageSize {
		cfg.PageSize = filter.MaxPageSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 2 * time.Minute
	}
	return &snapshotService{
		repo:    repo,
		cfg:     cfg,
		logger:  log,
		metrics: m,
	}
}

// Start loads the snapshot once and schedules later refreshes. A failed first
// load is logged and retried on the schedule.
func (s *snapshotService) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("Initial topic snapshot failed", logger.ErrorField(err))
	}
	if s.cfg.Cron == "" {
		return nil
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.cfg.Cron, func() {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RefreshTimeout)
		defer cancel()
		if err := s.Refresh(refreshCtx); err != nil {
			s.logger.Warn("Scheduled topic snapshot failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Topic snapshot scheduled", logger.StringField("cron", s.cfg.Cron))
	return nil
}

func (s *snapshotService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Refresh reads every page of the collection. The first page determines the
// page count and the remaining pages are fetched concurrently. The previous
// snapshot is kept when any page fails.
func (s *snapshotService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	first, err := s.repo.List(ctx, s.pageQuery(1))
	if err != nil {
		return newTransportError("snapshot page 1", err)
	}

	totalPages := first.Pagination.TotalPages
	pages := make([][]entity.Topic, max(totalPages, 1))
	pages[0] = first.Data

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for page := 2; page <= totalPages; page++ {
		page := page
		g.Go(func() error {
			resp, err := s.repo.List(gctx, s.pageQuery(page))
			if err != nil {
				return newTransportError("snapshot page "+strconv.Itoa(page), err)
			}
			pages[page-1] = resp.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var topics []entity.Topic
	seen := make(map[string]bool)
	for _, p := range pages {
		for _, t := range p {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			topics = append(topics, t)
		}
	}

	s.mu.Lock()
	s.topics = topics
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.metrics.SetSnapshotTopics(len(topics))
	s.logger.Info("Topic snapshot refreshed",
		logger.IntField("topics", len(topics)),
		logger.IntField("pages", totalPages),
		logger.Field("duration", time.Since(start)),
	)
	return nil
}

func (s *snapshotService) pageQuery(page int) url.Values {
	q := filter.Default().SetPage(page)
	q.PageSize = s.cfg.PageSize
	values := q.Query()
	if s.cfg.IncludeExplainability {
		values.Set("include_explainability", "true")
	}
	return values
}

func (s *snapshotService) Topics() ([]entity.Topic, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topics, s.fetchedAt
}

func (s *snapshotService) Insights(limit int) (Insights, error) {
	topics, fetchedAt := s.Topics()
	if fetchedAt.IsZero() {
		return Insights{}, ErrSnapshotNotReady
	}
	return Insights{Summary: aggregation.Summarize(topics, limit), FetchedAt: fetchedAt}, nil
}
