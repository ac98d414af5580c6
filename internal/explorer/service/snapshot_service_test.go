package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/dto"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
)

func pagedRepo() *fakeTopicRepo {
	repo := newFakeTopicRepo()
	page := func(n int, topics ...entity.Topic) *dto.TopicListResponse {
		return &dto.TopicListResponse{
			Data:       topics,
			Pagination: dto.Pagination{Page: n, PageSize: 2, Total: 5, TotalPages: 3},
		}
	}
	repo.pages[1] = page(1, topic("t1", "Health", 90), topic("t2", "Beauty", 30))
	repo.pages[2] = page(2, topic("t3", "Health", 60), topic("t4", "Home", 45))
	repo.pages[3] = page(3, topic("t5", "Home", 10), topic("t4", "Home", 45))
	return repo
}

func TestSnapshotService_RefreshReadsEveryPage(t *testing.T) {
	repo := pagedRepo()
	m := metrics.New("test")
	svc := NewSnapshotService(repo, SnapshotConfig{PageSize: 2, Concurrency: 2, IncludeExplainability: true}, logger.NewNop(), m)

	require.NoError(t, svc.Refresh(context.Background()))

	topics, fetchedAt := svc.Topics()
	assert.False(t, fetchedAt.IsZero())
	ids := make([]string, 0, len(topics))
	for _, tp := range topics {
		ids = append(ids, tp.ID)
	}
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5"}, ids, "page order kept and duplicates dropped")
	assert.Equal(t, 3, repo.callCount())
	assert.Equal(t, "2", repo.call(0).query.Get("page_size"))
	assert.Equal(t, "true", repo.call(0).query.Get("include_explainability"))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SnapshotTopicsTotal))
}

func TestSnapshotService_FailedPageKeepsPreviousSnapshot(t *testing.T) {
	repo := pagedRepo()
	svc := NewSnapshotService(repo, SnapshotConfig{PageSize: 2}, logger.NewNop(), nil)
	require.NoError(t, svc.Refresh(context.Background()))
	_, before := svc.Topics()

	repo.mu.Lock()
	repo.pageErrs[3] = errUpstreamDown
	repo.mu.Unlock()

	err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, errUpstreamDown)

	topics, after := svc.Topics()
	assert.Len(t, topics, 5)
	assert.Equal(t, before, after)
}

func TestSnapshotService_InsightsAggregatesWholeCollection(t *testing.T) {
	svc := NewSnapshotService(pagedRepo(), SnapshotConfig{PageSize: 2}, logger.NewNop(), nil)

	_, err := svc.Insights(3)
	assert.ErrorIs(t, err, ErrSnapshotNotReady)

	require.NoError(t, svc.Refresh(context.Background()))
	insights, err := svc.Insights(2)
	require.NoError(t, err)

	assert.Equal(t, 5, insights.Total)
	require.Len(t, insights.TopMovers, 2)
	assert.Equal(t, "t1", insights.TopMovers[0].ID)
	assert.Equal(t, "t3", insights.TopMovers[1].ID)
	require.NotEmpty(t, insights.ByCategory)
	assert.False(t, insights.FetchedAt.IsZero())
}

func TestSnapshotService_StartWithoutCronLoadsOnce(t *testing.T) {
	repo := pagedRepo()
	svc := NewSnapshotService(repo, SnapshotConfig{PageSize: 2}, logger.NewNop(), nil)

	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	topics, _ := svc.Topics()
	assert.Len(t, topics, 5)
}

func TestSnapshotService_StartRejectsBadCron(t *testing.T) {
	svc := NewSnapshotService(pagedRepo(), SnapshotConfig{PageSize: 2, Cron: "not a schedule"}, logger.NewNop(), nil)
	assert.Error(t, svc.Start(context.Background()))
}
