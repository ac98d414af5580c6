package entity

import "time"

// WatchlistEntry pairs a user with a bookmarked topic.
type WatchlistEntry struct {
	UserID  string    `json:"user_id"`
	TopicID string    `json:"topic_id"`
	AddedAt time.Time `json:"added_at"`
}

type MutationIntent string

const (
	IntentAdd    MutationIntent = "add"
	IntentRemove MutationIntent = "remove"
)

type MutationState string

const (
	MutationPending    MutationState = "pending"
	MutationConfirmed  MutationState = "confirmed"
	MutationRolledBack MutationState = "rolled_back"
	// MutationSuperseded marks a change replaced by a newer one for the same topic before it was sent.
	MutationSuperseded MutationState = "superseded"
)

// WatchlistMutation is one optimistic watchlist change.
type WatchlistMutation struct {
	ID        uint64         `json:"id"`
	TopicID   string         `json:"topic_id"`
	Intent    MutationIntent `json:"intent"`
	State     MutationState  `json:"state"`
	Error     string         `json:"error,omitempty"`
	IssuedAt  time.Time      `json:"issued_at"`
	SettledAt *time.Time     `json:"settled_at,omitempty"`
}
