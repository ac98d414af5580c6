package service

import (
	"errors"
	"fmt"

	"neuranest-explorer/internal/explorer/repository"
)

var (
	// ErrStaleResponse marks a response superseded by a newer request. It is never shown to users.
	ErrStaleResponse = errors.New("stale response discarded")
	// ErrMutationRejected means the authoritative store refused an optimistic change, which was rolled back.
	ErrMutationRejected = errors.New("watchlist change rejected")
	ErrUnknownCell      = errors.New("heatmap cell not in grid")
	ErrNoHeatmap        = errors.New("heatmap not loaded")
	ErrTopicNotLoaded   = errors.New("topic not in current result set")
	ErrTrackerStopped   = errors.New("job tracker stopped")
	ErrMissingJobID     = errors.New("upload response has no job id")
)

// TransportError wraps an upstream failure that callers can offer to retry.
type TransportError struct {
	Op        string
	Err       error
	Retryable bool
}

func newTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err, Retryable: repository.IsRetryable(err)}
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
