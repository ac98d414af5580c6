package service

import "context"

// supersede tracks the generation of the latest request of one kind and
// cancels the request it replaces. Callers hold their own lock around it.
type supersede struct {
	generation uint64
	cancel     context.CancelFunc
}

// next starts a new generation. The returned context survives the caller's
// cancellation and is cancelled only when superseded or stopped.
func (s *supersede) next(parent context.Context) (uint64, context.Context) {
	s.stop()
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	s.cancel = cancel
	return s.generation, ctx
}

func (s *supersede) isLatest(gen uint64) bool {
	return gen == s.generation
}

// done releases the context of gen when it is still the latest.
func (s *supersede) done(gen uint64) {
	if s.isLatest(gen) && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// stop invalidates every outstanding generation.
func (s *supersede) stop() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
