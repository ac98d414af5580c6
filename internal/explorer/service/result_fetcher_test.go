package service

import (
	"context"
	"io"
	"math/rand"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/internal/explorer/filter"
	"neuranest-explorer/pkg/logger"
)

type fetchOutcome struct {
	result *FetchResult
	err    error
}

func fetchAsync(f ResultFetcher, state filter.State) <-chan fetchOutcome {
	out := make(chan fetchOutcome, 1)
	go func() {
		res, err := f.Fetch(context.Background(), state)
		out <- fetchOutcome{result: res, err: err}
	}()
	return out
}

func waitStarted(t *testing.T, repo *fakeTopicRepo, want string) {
	t.Helper()
	select {
	case got := <-repo.started:
		require.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatalf("request for %q never reached the repository", want)
	}
}

func TestResultFetcher_LatestFilterWinsWhenOlderResolvesLast(t *testing.T) {
	repo := newFakeTopicRepo()
	repo.gates["Health"] = make(chan struct{})
	repo.gates["Beauty"] = make(chan struct{})
	repo.responses["Health"] = topicPage(topic("h1", "Health", 50))
	repo.responses["Beauty"] = topicPage(topic("b1", "Beauty", 70), topic("b2", "Beauty", 60))

	f := NewResultFetcher(repo, logger.NewNop(), nil, false)

	health := filter.Default().Set(filter.FieldCategory, "Health")
	beauty := filter.Default().Set(filter.FieldCategory, "Beauty")

	a := fetchAsync(f, health)
	waitStarted(t, repo, "Health")
	b := fetchAsync(f, beauty)
	waitStarted(t, repo, "Beauty")

	assert.ErrorIs(t, repo.call(0).ctx.Err(), context.Canceled, "superseded request should be cancelled")

	close(repo.gates["Beauty"])
	outB := <-b
	require.NoError(t, outB.err)
	assert.Equal(t, "Beauty", outB.result.State.Category)

	close(repo.gates["Health"])
	outA := <-a
	assert.ErrorIs(t, outA.err, ErrStaleResponse)
	assert.Nil(t, outA.result)

	snap := f.Snapshot()
	require.NotNil(t, snap.Result)
	assert.Equal(t, "Beauty", snap.Result.State.Category)
	require.Len(t, snap.Result.Topics, 2)
	for _, tp := range snap.Result.Topics {
		assert.Equal(t, "Beauty", tp.Category)
	}
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)
}

func TestResultFetcher_IdenticalQueriesShareOneRequest(t *testing.T) {
	repo := newFakeTopicRepo()
	repo.gates["Health"] = make(chan struct{})
	repo.responses["Health"] = topicPage(topic("h1", "Health", 50))

	f := NewResultFetcher(repo, logger.NewNop(), nil, false)
	state := filter.Default().Set(filter.FieldCategory, "Health")

	first := fetchAsync(f, state)
	waitStarted(t, repo, "Health")
	second := fetchAsync(f, state)

	require.Eventually(t, func() bool {
		return f.Snapshot().Generation == 2
	}, time.Second, 5*time.Millisecond)
	// let the second caller reach the shared flight
	time.Sleep(20 * time.Millisecond)

	close(repo.gates["Health"])

	var outcomes []fetchOutcome
	outcomes = append(outcomes, <-first, <-second)

	assert.Equal(t, 1, repo.callCount())
	applied := 0
	for _, o := range outcomes {
		if o.err == nil {
			applied++
			assert.Equal(t, "h1", o.result.Topics[0].ID)
		} else {
			assert.ErrorIs(t, o.err, ErrStaleResponse)
		}
	}
	assert.Equal(t, 1, applied)
}

func TestResultFetcher_FailureKeepsLastKnownGood(t *testing.T) {
	repo := newFakeTopicRepo()
	repo.responses["Health"] = topicPage(topic("h1", "Health", 50))
	repo.errs["Beauty"] = errUpstreamDown

	f := NewResultFetcher(repo, logger.NewNop(), nil, false)

	_, err := f.Fetch(context.Background(), filter.Default().Set(filter.FieldCategory, "Health"))
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), filter.Default().Set(filter.FieldCategory, "Beauty"))
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, errUpstreamDown)

	snap := f.Snapshot()
	require.NotNil(t, snap.Result)
	assert.Equal(t, "Health", snap.Result.State.Category)
	assert.Equal(t, "h1", snap.Result.Topics[0].ID)
	assert.Equal(t, err, snap.Err)

	repo.mu.Lock()
	delete(repo.errs, "Beauty")
	repo.responses["Beauty"] = topicPage(topic("b1", "Beauty", 70))
	repo.mu.Unlock()

	_, err = f.Fetch(context.Background(), filter.Default().Set(filter.FieldCategory, "Beauty"))
	require.NoError(t, err)
	assert.NoError(t, f.Snapshot().Err)
}

func TestResultFetcher_PassesPaginationThrough(t *testing.T) {
	repo := newFakeTopicRepo()
	resp := topicPage(topic("h1", "Health", 50))
	resp.Pagination.Total = 57
	resp.Pagination.TotalPages = 3
	resp.Pagination.Page = 2
	repo.responses[""] = resp

	f := NewResultFetcher(repo, logger.NewNop(), nil, true)
	res, err := f.Fetch(context.Background(), filter.Default().SetPage(2))
	require.NoError(t, err)

	assert.Equal(t, 57, res.Pagination.Total)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.Equal(t, "true", repo.call(0).query.Get("include_explainability"))
	assert.Equal(t, "2", repo.call(0).query.Get("page"))
	assert.Empty(t, repo.call(0).query.Get("category"))
}

func TestResultFetcher_CancelInvalidatesInFlight(t *testing.T) {
	repo := newFakeTopicRepo()
	repo.gates["Health"] = make(chan struct{})
	repo.responses["Health"] = topicPage(topic("h1", "Health", 50))

	f := NewResultFetcher(repo, logger.NewNop(), nil, false)
	out := fetchAsync(f, filter.Default().Set(filter.FieldCategory, "Health"))
	waitStarted(t, repo, "Health")

	f.Cancel()
	close(repo.gates["Health"])

	assert.ErrorIs(t, (<-out).err, ErrStaleResponse)
	assert.Nil(t, f.Snapshot().Result)
	assert.False(t, f.Snapshot().Loading)
}

func TestResultFetcher_ConcurrentFetchesSettleOnLatest(t *testing.T) {
	repo := newFakeTopicRepo()
	for _, c := range []string{"A", "B", "C", "D"} {
		repo.responses[c] = topicPage(topic(c+"1", c, 10))
	}
	f := NewResultFetcher(repo, logger.NewNop(), nil, false)

	var wg sync.WaitGroup
	for _, c := range []string{"A", "B", "C", "D"} {
		wg.Add(1)
		go func(c string) {
			defer wg.Done()
			_, _ = f.Fetch(context.Background(), filter.Default().Set(filter.FieldCategory, c))
		}(c)
	}
	wg.Wait()

	snap := f.Snapshot()
	if snap.Result != nil {
		assert.Equal(t, snap.Generation, snap.Result.Generation)
	}
	assert.False(t, snap.Loading)
}

// liveTopicRepo answers immediately but fails when the request context is
// already cancelled, like a real transport.
type liveTopicRepo struct {
	mu    sync.Mutex
	calls int
}

func (r *liveTopicRepo) List(ctx context.Context, query url.Values) (*dto.TopicListResponse, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	time.Sleep(time.Duration(rand.Intn(200)) * time.Microsecond)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return topicPage(topic("h1", query.Get("category"), 50)), nil
}

func (r *liveTopicRepo) ExportCSV(ctx context.Context, query url.Values, w io.Writer) (int64, error) {
	return 0, nil
}

func TestResultFetcher_LatestIdenticalQueryIsAlwaysApplied(t *testing.T) {
	repo := &liveTopicRepo{}
	f := NewResultFetcher(repo, logger.NewNop(), nil, false)
	state := filter.Default().Set(filter.FieldCategory, "Health")

	for i := 0; i < 200; i++ {
		first := f.Issue(context.Background(), state)
		firstDone := make(chan error, 1)
		go func() {
			_, err := first.Wait(context.Background())
			firstDone <- err
		}()
		time.Sleep(time.Duration(rand.Intn(300)) * time.Microsecond)

		latest := f.Issue(context.Background(), state)
		res, err := latest.Wait(context.Background())
		require.NoError(t, err, "iteration %d", i)
		require.NotNil(t, res)
		assert.Equal(t, latest.Generation(), res.Generation)

		assert.ErrorIs(t, <-firstDone, ErrStaleResponse)
		snap := f.Snapshot()
		require.NotNil(t, snap.Result)
		assert.Equal(t, snap.Generation, snap.Result.Generation)
		assert.NoError(t, snap.Err)
	}
}

func TestResultFetcher_RepeatedQueryGetsFreshContext(t *testing.T) {
	repo := newFakeTopicRepo()
	repo.responses["Health"] = topicPage(topic("h1", "Health", 50))
	f := NewResultFetcher(repo, logger.NewNop(), nil, false)
	state := filter.Default().Set(filter.FieldCategory, "Health")

	_, err := f.Fetch(context.Background(), state)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), state)
	require.NoError(t, err)

	require.Equal(t, 2, repo.callCount())
	assert.NotSame(t, repo.call(0).ctx, repo.call(1).ctx)
}

func TestResultFetcher_IssueOrderDecidesTheWinner(t *testing.T) {
	repo := newFakeTopicRepo()
	repo.gates["Health"] = make(chan struct{})
	repo.gates["Beauty"] = make(chan struct{})
	repo.responses["Health"] = topicPage(topic("h1", "Health", 50))
	repo.responses["Beauty"] = topicPage(topic("b1", "Beauty", 70))
	f := NewResultFetcher(repo, logger.NewNop(), nil, false)

	beauty := f.Issue(context.Background(), filter.Default().Set(filter.FieldCategory, "Beauty"))
	health := f.Issue(context.Background(), filter.Default().Set(filter.FieldCategory, "Health"))

	// Beauty was superseded and cancelled before its gate opened.
	_, err := beauty.Wait(context.Background())
	assert.ErrorIs(t, err, ErrStaleResponse)

	close(repo.gates["Health"])
	res, err := health.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Health", res.State.Category)
}
