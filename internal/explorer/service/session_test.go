package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuranest-explorer/internal/explorer/config"
	"neuranest-explorer/internal/explorer/filter"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
)

type authRecorder struct {
	mu     sync.Mutex
	tokens []string
}

func (a *authRecorder) last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.tokens) == 0 {
		return ""
	}
	return a.tokens[len(a.tokens)-1]
}

func newRegistry(t *testing.T, ttl time.Duration, m *metrics.Metrics) (SessionRegistry, *authRecorder) {
	t.Helper()
	auth := &authRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.mu.Lock()
		auth.tokens = append(auth.tokens, r.Header.Get("Authorization"))
		auth.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[],"pagination":{"page":1,"page_size":20,"total":0,"total_pages":0}}`))
	}))
	t.Cleanup(srv.Close)

	log := logger.NewNop()
	client, err := repository.NewClient(config.Upstream{BaseURL: srv.URL}, nil, log)
	require.NoError(t, err)

	reg := NewSessionRegistry(SessionDeps{
		Client:      client,
		FallbackTok: repository.StaticToken("service-token"),
		DetailCache: NewDetailCache(time.Minute),
		Config:      config.Explorer{SessionIdleTTL: ttl, PollInterval: time.Hour},
		Logger:      log,
		Metrics:     m,
	})
	t.Cleanup(reg.Shutdown)
	return reg, auth
}

func TestSessionRegistry_CreatesAndReusesSessions(t *testing.T) {
	m := metrics.New("test")
	reg, auth := newRegistry(t, time.Minute, m)

	s, created := reg.GetOrCreate("", "user-a")
	require.True(t, created)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, reg.Len())

	_, err := s.Fetcher.Fetch(context.Background(), filter.Default())
	require.NoError(t, err)
	assert.Equal(t, "Bearer user-a", auth.last())

	again, created := reg.GetOrCreate(s.ID, "user-a-refreshed")
	assert.False(t, created)
	assert.Same(t, s, again)

	_, err = s.Fetcher.Fetch(context.Background(), filter.Default().SetPage(2))
	require.NoError(t, err)
	assert.Equal(t, "Bearer user-a-refreshed", auth.last())
}

func TestSessionRegistry_FallsBackToServiceToken(t *testing.T) {
	reg, auth := newRegistry(t, time.Minute, nil)

	s, _ := reg.GetOrCreate("fixed-id", "")
	assert.Equal(t, "fixed-id", s.ID)

	_, err := s.Fetcher.Fetch(context.Background(), filter.Default())
	require.NoError(t, err)
	assert.Equal(t, "Bearer service-token", auth.last())
}

func TestSessionRegistry_SessionsAreIsolated(t *testing.T) {
	reg, _ := newRegistry(t, time.Minute, nil)

	a, _ := reg.GetOrCreate("a", "")
	b, _ := reg.GetOrCreate("b", "")
	a.Filter.Set(filter.FieldCategory, "Health")

	assert.Equal(t, "Health", a.Filter.State().Category)
	assert.Equal(t, "All", b.Filter.State().Category)
	assert.NotSame(t, a.Fetcher, b.Fetcher)
}

func TestSessionRegistry_CloseStopsSession(t *testing.T) {
	reg, _ := newRegistry(t, time.Minute, nil)
	s, _ := reg.GetOrCreate("a", "")

	reg.Close("a")

	assert.True(t, s.Closed())
	_, ok := reg.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestSessionRegistry_IdleSessionsExpire(t *testing.T) {
	reg, _ := newRegistry(t, 20*time.Millisecond, nil)
	s, _ := reg.GetOrCreate("a", "")

	require.Eventually(t, func() bool { return s.Closed() }, time.Second, 5*time.Millisecond)
	_, ok := reg.Get("a")
	assert.False(t, ok)
}
