package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/internal/explorer/filter"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
)

// FetchResult is one applied page of topics.
type FetchResult struct {
	Generation uint64
	State      filter.State
	Topics     []entity.Topic
	Pagination dto.Pagination
	FetchedAt  time.Time
}

// FetchSnapshot is what the presentation layer reads. Result is the last
// applied page and survives later failures.
type FetchSnapshot struct {
	Result     *FetchResult
	Loading    bool
	Err        error
	Generation uint64
}

// ResultFetcher issues topic queries for a filter state and applies only the
// response of the most recently issued one.
type ResultFetcher interface {
	// Issue takes the next generation and starts or joins the request for state
	// without blocking. Calls are ordered by the order Issue is called in.
	Issue(ctx context.Context, state filter.State) *PendingFetch
	Fetch(ctx context.Context, state filter.State) (*FetchResult, error)
	Snapshot() FetchSnapshot
	Cancel()
}

// PendingFetch is an issued query waiting for its response.
type PendingFetch struct {
	f     *resultFetcher
	gen   uint64
	state filter.State
	ch    <-chan singleflight.Result
}

// Generation is the generation taken when the query was issued.
func (p *PendingFetch) Generation() uint64 {
	return p.gen
}

// Wait blocks for the response and applies it when it is still the latest.
// Superseded calls return ErrStaleResponse.
func (p *PendingFetch) Wait(ctx context.Context) (*FetchResult, error) {
	select {
	case <-ctx.Done():
		p.f.mu.Lock()
		if p.gen == p.f.generation {
			p.f.loading = false
		}
		p.f.mu.Unlock()
		return nil, ctx.Err()
	case res := <-p.ch:
		return p.f.apply(ctx, p.gen, p.state, res)
	}
}

type resultFetcher struct {
	repo                  repository.TopicRepository
	logger                *logger.Logger
	metrics               *metrics.Metrics
	includeExplainability bool

	group singleflight.Group

	mu         sync.Mutex
	generation uint64
	flight     string
	flightSeq  uint64
	flightKey  string
	load       func() (interface{}, error)
	cancel     context.CancelFunc
	current    *FetchResult
	lastErr    error
	loading    bool
}

// NewResultFetcher creates a fetcher bound to one session.
func NewResultFetcher(repo repository.TopicRepository, log *logger.Logger, m *metrics.Metrics, includeExplainability bool) ResultFetcher {
	return &resultFetcher{
		repo:                  repo,
		logger:                log,
		metrics:               m,
		includeExplainability: includeExplainability,
	}
}

// Issue joins the flight for an identical query still in progress; a
// different query cancels it. A flight leaves the fetcher before its
// singleflight key is released, so a later identical query never reuses a
// finished flight's context.
func (f *resultFetcher) Issue(ctx context.Context, state filter.State) *PendingFetch {
	query := state.Query()
	if f.includeExplainability {
		query.Set("include_explainability", "true")
	}
	key := query.Encode()

	f.mu.Lock()
	defer f.mu.Unlock()

	f.generation++
	f.loading = true
	if f.flight == "" || f.flightKey != key {
		if f.cancel != nil {
			f.cancel()
		}
		f.flightSeq++
		f.flightKey = key
		f.flight = key + "#" + strconv.FormatUint(f.flightSeq, 10)

		flight := f.flight
		reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f.cancel = cancel
		// load runs on the singleflight goroutine, so it may take f.mu.
		f.load = func() (interface{}, error) {
			defer f.finish(flight, cancel)
			return f.repo.List(reqCtx, query)
		}
	}

	return &PendingFetch{
		f:     f,
		gen:   f.generation,
		state: state,
		ch:    f.group.DoChan(f.flight, f.load),
	}
}

func (f *resultFetcher) finish(flight string, cancel context.CancelFunc) {
	f.mu.Lock()
	if f.flight == flight {
		f.flight = ""
		f.flightKey = ""
		f.load = nil
		f.cancel = nil
	}
	f.mu.Unlock()
	cancel()
}

// Fetch issues the query for state and waits for it.
func (f *resultFetcher) Fetch(ctx context.Context, state filter.State) (*FetchResult, error) {
	return f.Issue(ctx, state).Wait(ctx)
}

func (f *resultFetcher) apply(ctx context.Context, gen uint64, state filter.State, res singleflight.Result) (*FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.generation {
		f.metrics.RecordFetch("stale")
		f.logger.DebugContext(ctx, "Discarding superseded topic response",
			logger.Field("generation", gen),
			logger.Field("latest", f.generation),
		)
		return nil, ErrStaleResponse
	}

	f.loading = false
	if res.Err != nil {
		f.metrics.RecordFetch("error")
		f.lastErr = newTransportError("list topics", res.Err)
		f.logger.WarnContext(ctx, "Topic fetch failed, keeping last result", logger.ErrorField(res.Err))
		return nil, f.lastErr
	}

	resp, _ := res.Val.(*dto.TopicListResponse)
	if resp == nil {
		resp = &dto.TopicListResponse{}
	}
	result := &FetchResult{
		Generation: gen,
		State:      state,
		Topics:     resp.Data,
		Pagination: resp.Pagination,
		FetchedAt:  time.Now(),
	}
	f.current = result
	f.lastErr = nil
	f.metrics.RecordFetch("applied")
	return result, nil
}

func (f *resultFetcher) Snapshot() FetchSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FetchSnapshot{
		Result:     f.current,
		Loading:    f.loading,
		Err:        f.lastErr,
		Generation: f.generation,
	}
}

// Cancel aborts the request in flight and invalidates every outstanding call.
func (f *resultFetcher) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.loading = false
	if f.cancel != nil {
		f.cancel()
	}
	f.flight = ""
	f.flightKey = ""
	f.load = nil
	f.cancel = nil
}
