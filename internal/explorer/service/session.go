package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"neuranest-explorer/internal/explorer/config"
	"neuranest-explorer/internal/explorer/filter"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
	"neuranest-explorer/pkg/telegram"
)

var ErrSessionClosed = errors.New("session closed")

// Session holds the explorer state of one client: its filters, the topic page
// on screen, the heatmap panel, tracked imports and the watchlist.
type Session struct {
	ID        string
	CreatedAt time.Time

	Filter    *filter.Controller
	Fetcher   ResultFetcher
	Heatmap   HeatmapService
	Jobs      JobTracker
	Watchlist WatchlistService
	Topics    repository.TopicRepository

	mu     sync.RWMutex
	token  string
	closed bool
}

// SetToken replaces the bearer token used for this session's upstream calls.
func (s *Session) SetToken(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close stops polling and discards every outstanding response.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.Fetcher.Cancel()
	s.Heatmap.Stop()
	s.Jobs.Stop()
}

// SessionDeps are the shared collaborators every session is built from.
type SessionDeps struct {
	Client       *repository.Client
	FallbackTok  repository.TokenProvider
	DetailCache  *cache.Cache
	Redis        *redis.Client
	StreamMaxLen int64
	Telegram     telegram.Notifier
	Config       config.Explorer
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
}

// SessionRegistry keeps sessions in memory and closes them after an idle period.
type SessionRegistry interface {
	Get(id string) (*Session, bool)
	GetOrCreate(id, token string) (*Session, bool)
	Close(id string)
	Len() int
	Shutdown()
}

type sessionRegistry struct {
	deps     SessionDeps
	sessions *cache.Cache
	mu       sync.Mutex
}

// NewSessionRegistry creates a registry whose sessions expire after idleTTL without use.
func NewSessionRegistry(deps SessionDeps) SessionRegistry {
	ttl := deps.Config.SessionIdleTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if deps.FallbackTok == nil {
		deps.FallbackTok = repository.StaticToken("")
	}

	r := &sessionRegistry{
		deps:     deps,
		sessions: cache.New(ttl, ttl/2),
	}
	r.sessions.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			s.Close()
			r.deps.Logger.Debug("Session closed", logger.StringField("session_id", id))
		}
		r.deps.Metrics.SetActiveSessions(r.sessions.ItemCount())
	})
	return r
}

// Get returns a live session and extends its idle deadline.
func (r *sessionRegistry) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	if s.Closed() {
		return nil, false
	}
	r.sessions.SetDefault(id, s)
	return s, true
}

// GetOrCreate returns the session for id, creating one when id is empty or
// unknown. The boolean reports whether a new session was created.
func (r *sessionRegistry) GetOrCreate(id, token string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.Get(id); ok {
		s.SetToken(token)
		return s, false
	}
	if id == "" {
		id = uuid.NewString()
	}

	s := r.build(id, token)
	r.sessions.SetDefault(id, s)
	r.deps.Metrics.SetActiveSessions(r.sessions.ItemCount())
	r.deps.Logger.Debug("Session created", logger.StringField("session_id", id))
	return s, true
}

func (r *sessionRegistry) build(id, token string) *Session {
	s := &Session{ID: id, CreatedAt: time.Now(), token: token}

	tokens := repository.TokenFunc(func(ctx context.Context) (string, error) {
		if tok := s.currentToken(); tok != "" {
			return tok, nil
		}
		return r.deps.FallbackTok.Token(ctx)
	})
	client := r.deps.Client.WithTokens(tokens)
	log := r.deps.Logger.With(logger.StringField("session_id", id))
	cfg := r.deps.Config

	var notifiers []JobSettledNotifier
	if r.deps.Redis != nil {
		notifiers = append(notifiers, NewRedisJobNotifier(r.deps.Redis, r.deps.StreamMaxLen, id, log))
	}
	if r.deps.Telegram != nil {
		notifiers = append(notifiers, NewTelegramJobNotifier(r.deps.Telegram))
	}

	s.Topics = repository.NewTopicRepository(client)
	s.Filter = filter.NewController()
	s.Fetcher = NewResultFetcher(s.Topics, log, r.deps.Metrics, cfg.IncludeExplainability)
	s.Heatmap = NewHeatmapService(repository.NewWhitespaceRepository(client), r.deps.DetailCache, log, r.deps.Metrics)
	s.Jobs = NewJobTracker(repository.NewImportJobRepository(client), JobTrackerConfig{
		PollInterval:    cfg.PollInterval,
		PollTimeout:     cfg.PollTimeout,
		MaxPollFailures: cfg.MaxPollFailures,
	}, log, r.deps.Metrics, notifiers...)
	s.Watchlist = NewWatchlistService(repository.NewWatchlistRepository(client), log, r.deps.Metrics)
	return s
}

func (r *sessionRegistry) Close(id string) {
	r.sessions.Delete(id)
}

func (r *sessionRegistry) Len() int {
	return r.sessions.ItemCount()
}

// Shutdown closes every session.
func (r *sessionRegistry) Shutdown() {
	for id := range r.sessions.Items() {
		r.sessions.Delete(id)
	}
}
