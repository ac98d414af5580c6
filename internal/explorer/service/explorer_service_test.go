package service

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/filter"
	"neuranest-explorer/pkg/logger"
)

func testSession(topics *fakeTopicRepo, whitespace *fakeWhitespaceRepo, watchlist *fakeWatchlistRepo) *Session {
	log := logger.NewNop()
	return &Session{
		ID:        "s1",
		Filter:    filter.NewController(),
		Fetcher:   NewResultFetcher(topics, log, nil, false),
		Heatmap:   NewHeatmapService(whitespace, nil, log, nil),
		Jobs:      NewJobTracker(&fakeImportRepo{}, JobTrackerConfig{}, log, nil),
		Watchlist: NewWatchlistService(watchlist, log, nil),
		Topics:    topics,
	}
}

func TestExplorerService_TopicsDecoratesRows(t *testing.T) {
	topics := newFakeTopicRepo()
	withPayload := topic("h1", "Health", 80)
	withPayload.Explainability = &entity.ScoreExplainability{
		Confidence: "high",
		Archetype:  "science-led",
		Drivers:    []entity.DriverContribution{{Name: "search", Contribution: 0.7}},
	}
	topics.responses["Health"] = topicPage(withPayload, topic("h2", "Health", 40))

	watchlist := newFakeWatchlistRepo("h2")
	s := testSession(topics, newFakeWhitespaceRepo(), watchlist)
	require.NoError(t, s.Watchlist.Load(context.Background()))

	svc := NewExplorerService(nil, 5)
	page, err := svc.Topics(context.Background(), s, url.Values{"category": {"Health"}})
	require.NoError(t, err)

	assert.Equal(t, "s1", page.SessionID)
	assert.Equal(t, "Health", page.Filter.Category)
	require.Len(t, page.Topics, 2)
	require.NotNil(t, page.Topics[0].Explanation)
	assert.True(t, page.Topics[0].Explanation.Available)
	assert.Nil(t, page.Topics[1].Explanation)
	assert.False(t, page.Topics[0].Watchlisted)
	assert.True(t, page.Topics[1].Watchlisted)
	assert.NotNil(t, page.FetchedAt)
	assert.Nil(t, page.Error)
}

func TestExplorerService_TopicsFailureKeepsLastPage(t *testing.T) {
	topics := newFakeTopicRepo()
	topics.responses["Health"] = topicPage(topic("h1", "Health", 80))
	topics.errs["Beauty"] = errUpstreamDown
	s := testSession(topics, newFakeWhitespaceRepo(), newFakeWatchlistRepo())
	svc := NewExplorerService(nil, 5)

	_, err := svc.Topics(context.Background(), s, url.Values{"category": {"Health"}})
	require.NoError(t, err)

	page, err := svc.Topics(context.Background(), s, url.Values{"category": {"Beauty"}})
	require.Error(t, err)
	require.NotNil(t, page)
	require.NotNil(t, page.Error)
	assert.Equal(t, "Health", page.Filter.Category)
	require.Len(t, page.Topics, 1)
	assert.Equal(t, "h1", page.Topics[0].ID)
	assert.Equal(t, "Beauty", s.Filter.State().Category)
}

func TestExplorerService_ExplanationFallsBackToSnapshot(t *testing.T) {
	topics := newFakeTopicRepo()
	topics.responses["Health"] = topicPage(topic("h1", "Health", 80))
	s := testSession(topics, newFakeWhitespaceRepo(), newFakeWatchlistRepo())

	snapshot := NewSnapshotService(pagedRepo(), SnapshotConfig{PageSize: 2}, logger.NewNop(), nil)
	require.NoError(t, snapshot.Refresh(context.Background()))
	svc := NewExplorerService(snapshot, 5)

	_, err := svc.Topics(context.Background(), s, url.Values{"category": {"Health"}})
	require.NoError(t, err)

	view, err := svc.Explanation(s, "h1")
	require.NoError(t, err)
	assert.False(t, view.Explanation.Available)
	assert.Equal(t, "Multi-Signal", view.Explanation.ArchetypeLabel)

	view, err = svc.Explanation(s, "t4")
	require.NoError(t, err)
	assert.Equal(t, "t4", view.TopicID)

	_, err = svc.Explanation(s, "missing")
	assert.ErrorIs(t, err, ErrTopicNotLoaded)
}

func TestExplorerService_InsightsUsesDefaultLimit(t *testing.T) {
	snapshot := NewSnapshotService(pagedRepo(), SnapshotConfig{PageSize: 2}, logger.NewNop(), nil)
	svc := NewExplorerService(snapshot, 1)

	_, err := svc.Insights(0)
	assert.ErrorIs(t, err, ErrSnapshotNotReady)

	require.NoError(t, snapshot.Refresh(context.Background()))
	view, err := svc.Insights(0)
	require.NoError(t, err)
	assert.Len(t, view.TopMovers, 1)
	assert.Equal(t, 5, view.Total)
}

func TestExplorerService_HeatmapAndDrillDown(t *testing.T) {
	s := testSession(newFakeTopicRepo(), newFakeWhitespaceRepo(), newFakeWatchlistRepo())
	svc := NewExplorerService(nil, 5)

	view, err := svc.Heatmap(context.Background(), s, "")
	require.NoError(t, err)
	assert.Equal(t, "All", view.Category)
	require.Len(t, view.Rows, 2)
	assert.Len(t, view.Rows[0].Cells, 2)
	assert.Equal(t, 3, view.MaxTopicCount)
	assert.False(t, view.DrillDown.Open)

	view, err = svc.SelectCell(context.Background(), s, "$0-25", "Low")
	require.NoError(t, err)
	assert.True(t, view.DrillDown.Open)
	require.NotNil(t, view.DrillDown.Detail)

	view = svc.CloseCell(s)
	assert.False(t, view.DrillDown.Open)
	assert.Nil(t, view.DrillDown.Detail)
	assert.Len(t, view.Rows, 2)
}

func TestExplorerService_ExportDropsPaging(t *testing.T) {
	topics := newFakeTopicRepo()
	recorder := &exportRecorder{fakeTopicRepo: topics}
	s := testSession(topics, newFakeWhitespaceRepo(), newFakeWatchlistRepo())
	s.Topics = recorder
	s.Filter.SetPage(3)

	var buf bytes.Buffer
	n, err := NewExplorerService(nil, 5).ExportCSV(context.Background(), s, url.Values{"stage": {"emerging"}}, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "emerging", recorder.query.Get("stage"))
	assert.Empty(t, recorder.query.Get("page"))
	assert.Empty(t, recorder.query.Get("page_size"))
	assert.Equal(t, "All", s.Filter.State().Stage, "export does not change the session filter")
}

type exportRecorder struct {
	*fakeTopicRepo
	query url.Values
}

func (r *exportRecorder) ExportCSV(ctx context.Context, query url.Values, w io.Writer) (int64, error) {
	r.query = query
	return r.fakeTopicRepo.ExportCSV(ctx, query, w)
}

func TestExplorerService_ConcurrentTopicsFollowFilterOrder(t *testing.T) {
	categories := []string{"Health", "Beauty", "Home", "Pets", "Garden", "Toys"}
	topics := newFakeTopicRepo()
	topics.started = make(chan string, 1024)
	for _, c := range categories {
		topics.responses[c] = topicPage(topic(c+"-1", c, 50))
	}
	s := testSession(topics, newFakeWhitespaceRepo(), newFakeWatchlistRepo())
	svc := NewExplorerService(nil, 5)

	for round := 0; round < 20; round++ {
		var wg sync.WaitGroup
		for _, c := range categories {
			wg.Add(1)
			go func(c string) {
				defer wg.Done()
				_, _ = svc.Topics(context.Background(), s, url.Values{"category": {c}})
			}(c)
		}
		wg.Wait()

		snap := s.Fetcher.Snapshot()
		require.NotNil(t, snap.Result)
		assert.Equal(t, s.Filter.State().Category, snap.Result.State.Category, "round %d", round)
		assert.Equal(t, snap.Generation, snap.Result.Generation, "round %d", round)
		require.Len(t, snap.Result.Topics, 1)
		assert.Equal(t, snap.Result.State.Category, snap.Result.Topics[0].Category)
	}
}
