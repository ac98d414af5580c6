package service

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"sync"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
)

var errUpstreamDown = errors.New("upstream down")

type topicCall struct {
	query url.Values
	ctx   context.Context
}

// fakeTopicRepo answers List per category. A category with a gate blocks until the gate is closed
// or the request context is cancelled.
type fakeTopicRepo struct {
	mu        sync.Mutex
	calls     []topicCall
	gates     map[string]chan struct{}
	responses map[string]*dto.TopicListResponse
	pages     map[int]*dto.TopicListResponse
	pageErrs  map[int]error
	errs      map[string]error
	started   chan string
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{
		gates:     map[string]chan struct{}{},
		responses: map[string]*dto.TopicListResponse{},
		pages:     map[int]*dto.TopicListResponse{},
		pageErrs:  map[int]error{},
		errs:      map[string]error{},
		started:   make(chan string, 64),
	}
}

func (r *fakeTopicRepo) List(ctx context.Context, query url.Values) (*dto.TopicListResponse, error) {
	category := query.Get("category")
	r.mu.Lock()
	r.calls = append(r.calls, topicCall{query: query, ctx: ctx})
	gate := r.gates[category]
	resp := r.responses[category]
	err := r.errs[category]
	if len(r.pages) > 0 {
		page, _ := strconv.Atoi(query.Get("page"))
		resp = r.pages[page]
		err = r.pageErrs[page]
	}
	r.mu.Unlock()

	r.started <- category
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *fakeTopicRepo) ExportCSV(ctx context.Context, query url.Values, w io.Writer) (int64, error) {
	n, err := io.WriteString(w, "id,name\n")
	return int64(n), err
}

func (r *fakeTopicRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *fakeTopicRepo) call(i int) topicCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i]
}

func topic(id, category string, score float64) entity.Topic {
	return entity.Topic{ID: id, Name: id, Category: category, Stage: entity.StageEmerging, OpportunityScore: &score}
}

func topicPage(topics ...entity.Topic) *dto.TopicListResponse {
	return &dto.TopicListResponse{
		Data:       topics,
		Pagination: dto.Pagination{Page: 1, PageSize: 20, Total: len(topics), TotalPages: 1},
	}
}

// fakeWhitespaceRepo serves a fixed grid; cell requests for a gated key block until released.
type fakeWhitespaceRepo struct {
	mu        sync.Mutex
	heatmap   *dto.HeatmapResponse
	heatErr   error
	details   map[string]*dto.CellDetailResponse
	cellErrs  map[string]error
	gates     map[string]chan struct{}
	cellCalls int
	started   chan string
}

func newFakeWhitespaceRepo() *fakeWhitespaceRepo {
	one, two := 1.0, 2.0
	return &fakeWhitespaceRepo{
		heatmap: &dto.HeatmapResponse{
			PriceBuckets:       []string{"$0-25", "$25-50"},
			CompetitionBuckets: []string{"Low", "High"},
			Cells: []entity.HeatmapCell{
				{PriceBucket: "$0-25", CompetitionBucket: "Low", TopicCount: 3, AvgOpportunityScore: &one},
				{PriceBucket: "$25-50", CompetitionBucket: "High", TopicCount: 1, AvgOpportunityScore: &two},
			},
			TotalTopics: 4,
		},
		details:  map[string]*dto.CellDetailResponse{},
		cellErrs: map[string]error{},
		gates:    map[string]chan struct{}{},
		started:  make(chan string, 64),
	}
}

func (r *fakeWhitespaceRepo) Heatmap(ctx context.Context, category string) (*dto.HeatmapResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.heatErr != nil {
		return nil, r.heatErr
	}
	return r.heatmap, nil
}

func (r *fakeWhitespaceRepo) Cell(ctx context.Context, key entity.CellKey) (*dto.CellDetailResponse, error) {
	id := key.PriceBucket + "/" + key.CompetitionBucket
	r.mu.Lock()
	r.cellCalls++
	gate := r.gates[id]
	detail := r.details[id]
	err := r.cellErrs[id]
	r.mu.Unlock()

	r.started <- id
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if detail == nil {
		detail = &dto.CellDetailResponse{PriceBucket: key.PriceBucket, CompetitionBucket: key.CompetitionBucket, Summary: id}
	}
	return detail, nil
}

// fakeImportRepo replays scripted list responses; the last one repeats.
type fakeImportRepo struct {
	mu        sync.Mutex
	lists     [][]entity.ImportJob
	listErr   error
	listCalls int
	uploadErr error
	uploads   []dto.ImportUpload
	nextJobID string
}

func (r *fakeImportRepo) List(ctx context.Context) ([]entity.ImportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	if len(r.lists) == 0 {
		return nil, nil
	}
	idx := r.listCalls - 1
	if idx >= len(r.lists) {
		idx = len(r.lists) - 1
	}
	return r.lists[idx], nil
}

func (r *fakeImportRepo) Upload(ctx context.Context, upload dto.ImportUpload) (*dto.UploadResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uploadErr != nil {
		return nil, r.uploadErr
	}
	r.uploads = append(r.uploads, upload)
	return &dto.UploadResponse{JobID: r.nextJobID, FileSizeMB: 0.1}, nil
}

func (r *fakeImportRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

type recordingNotifier struct {
	mu   sync.Mutex
	jobs []entity.ImportJob
}

func (n *recordingNotifier) NotifyJobSettled(ctx context.Context, job entity.ImportJob) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
	return nil
}

func (n *recordingNotifier) settled() []entity.ImportJob {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]entity.ImportJob(nil), n.jobs...)
}

func importJob(id string, status entity.ImportStatus, imported int) entity.ImportJob {
	return entity.ImportJob{ID: id, Filename: id + ".csv", Status: status, ImportedRows: imported}
}

// fakeWatchlistRepo records calls; a gated topic blocks until released.
type fakeWatchlistRepo struct {
	mu      sync.Mutex
	entries []entity.WatchlistEntry
	listErr error
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   []string
	started chan string
}

func newFakeWatchlistRepo(ids ...string) *fakeWatchlistRepo {
	r := &fakeWatchlistRepo{
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
		started: make(chan string, 64),
	}
	for _, id := range ids {
		r.entries = append(r.entries, entity.WatchlistEntry{UserID: "u1", TopicID: id})
	}
	return r
}

func (r *fakeWatchlistRepo) List(ctx context.Context) ([]entity.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]entity.WatchlistEntry(nil), r.entries...), nil
}

func (r *fakeWatchlistRepo) Add(ctx context.Context, topicID string) error {
	return r.record(ctx, "add:"+topicID)
}

func (r *fakeWatchlistRepo) Remove(ctx context.Context, topicID string) error {
	return r.record(ctx, "remove:"+topicID)
}

func (r *fakeWatchlistRepo) record(ctx context.Context, call string) error {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	gate := r.gates[call]
	err := r.errs[call]
	r.mu.Unlock()

	r.started <- call
	if gate != nil {
		<-gate
	}
	return err
}

func (r *fakeWatchlistRepo) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
