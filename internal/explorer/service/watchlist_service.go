package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"neuranest-explorer/internal/entity"
	"neuranest-explorer/internal/explorer/repository"
	"neuranest-explorer/pkg/logger"
	"neuranest-explorer/pkg/metrics"
)

const mutationHistory = 50

// WatchlistService keeps the visible watchlist optimistic and reconciles it
// with the authoritative store.
type WatchlistService interface {
	Load(ctx context.Context) error
	Contains(topicID string) bool
	IDs() []string
	Add(ctx context.Context, topicID string) (entity.WatchlistMutation, error)
	Remove(ctx context.Context, topicID string) (entity.WatchlistMutation, error)
	Mutations() []entity.WatchlistMutation
}

type watchlistService struct {
	repo    repository.WatchlistRepository
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	visible   map[string]bool
	confirmed map[string]bool
	latest    map[string]uint64
	locks     map[string]*sync.Mutex
	seq       uint64
	history   []*entity.WatchlistMutation
}

// NewWatchlistService creates a watchlist bound to one session.
func NewWatchlistService(repo repository.WatchlistRepository, log *logger.Logger, m *metrics.Metrics) WatchlistService {
	return &watchlistService{
		repo:      repo,
		logger:    log,
		metrics:   m,
		visible:   make(map[string]bool),
		confirmed: make(map[string]bool),
		latest:    make(map[string]uint64),
		locks:     make(map[string]*sync.Mutex),
	}
}

// Load replaces the confirmed membership with the server's. Topics with a
// change still pending keep their optimistic membership.
func (s *watchlistService) Load(ctx context.Context) error {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return newTransportError("list watchlist", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make(map[string]bool)
	for _, m := range s.history {
		if m.State == entity.MutationPending {
			pending[m.TopicID] = true
		}
	}

	s.confirmed = make(map[string]bool, len(entries))
	for _, e := range entries {
		s.confirmed[e.TopicID] = true
	}
	visible := make(map[string]bool, len(entries))
	for id := range s.confirmed {
		if !pending[id] {
			visible[id] = true
		}
	}
	for id := range pending {
		if s.visible[id] {
			visible[id] = true
		}
	}
	s.visible = visible
	return nil
}

func (s *watchlistService) Contains(topicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[topicID]
}

func (s *watchlistService) IDs() []string {
	s.mu.Lock()
	ids := make([]string, 0, len(s.visible))
	for id := range s.visible {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)
	return ids
}

func (s *watchlistService) Add(ctx context.Context, topicID string) (entity.WatchlistMutation, error) {
	return s.mutate(ctx, topicID, entity.IntentAdd)
}

func (s *watchlistService) Remove(ctx context.Context, topicID string) (entity.WatchlistMutation, error) {
	return s.mutate(ctx, topicID, entity.IntentRemove)
}

func (s *watchlistService) Mutations() []entity.WatchlistMutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.WatchlistMutation, len(s.history))
	for i, m := range s.history {
		out[i] = *m
	}
	return out
}

// mutate applies the change to the visible set at once, then confirms it
// upstream. Changes to one topic are confirmed in issue order. On rejection the
// topic reverts to its confirmed membership unless a newer change owns it.
func (s *watchlistService) mutate(ctx context.Context, topicID string, intent entity.MutationIntent) (entity.WatchlistMutation, error) {
	s.mu.Lock()
	s.seq++
	m := &entity.WatchlistMutation{
		ID:       s.seq,
		TopicID:  topicID,
		Intent:   intent,
		State:    entity.MutationPending,
		IssuedAt: time.Now(),
	}
	s.latest[topicID] = m.ID
	s.setVisibleLocked(topicID, intent == entity.IntentAdd)
	s.recordLocked(m)
	lock := s.lockLocked(topicID)
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	if s.latest[topicID] != m.ID {
		s.settleLocked(m, entity.MutationSuperseded, nil)
		out := *m
		s.mu.Unlock()
		return out, nil
	}
	if s.confirmed[topicID] == (intent == entity.IntentAdd) {
		s.settleLocked(m, entity.MutationConfirmed, nil)
		out := *m
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	var err error
	if intent == entity.IntentAdd {
		err = s.repo.Add(ctx, topicID)
	} else {
		err = s.repo.Remove(ctx, topicID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.latest[topicID] == m.ID {
			s.setVisibleLocked(topicID, s.confirmed[topicID])
		}
		rejected := fmt.Errorf("%w: %w", ErrMutationRejected, newTransportError(string(intent)+" watchlist topic", err))
		s.settleLocked(m, entity.MutationRolledBack, rejected)
		s.logger.WarnContext(ctx, "Watchlist change rolled back",
			logger.StringField("topic_id", topicID),
			logger.StringField("intent", string(intent)),
			logger.ErrorField(err),
		)
		return *m, rejected
	}

	s.confirmed[topicID] = intent == entity.IntentAdd
	if s.latest[topicID] == m.ID {
		s.setVisibleLocked(topicID, intent == entity.IntentAdd)
	}
	s.settleLocked(m, entity.MutationConfirmed, nil)
	return *m, nil
}

func (s *watchlistService) setVisibleLocked(topicID string, member bool) {
	if member {
		s.visible[topicID] = true
	} else {
		delete(s.visible, topicID)
	}
}

func (s *watchlistService) lockLocked(topicID string) *sync.Mutex {
	l, ok := s.locks[topicID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[topicID] = l
	}
	return l
}

func (s *watchlistService) recordLocked(m *entity.WatchlistMutation) {
	s.history = append(s.history, m)
	if len(s.history) > mutationHistory {
		s.history = s.history[len(s.history)-mutationHistory:]
	}
}

func (s *watchlistService) settleLocked(m *entity.WatchlistMutation, state entity.MutationState, err error) {
	now := time.Now()
	m.State = state
	m.SettledAt = &now
	if err != nil {
		m.Error = err.Error()
	}
	s.metrics.RecordWatchlistMutation(string(m.Intent), string(state))
}
