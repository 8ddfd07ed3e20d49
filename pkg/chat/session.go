package chat

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var errExchangeAborted = errors.New("exchange aborted before the webhook answered")

// Session is a State shared by concurrent callers, as in the web server where every
// browser tab talks to the same conversation. The lock is never held across the
// network call.
type Session struct {
	mu    sync.Mutex
	ctrl  *Controller
	state State
}

func NewSession(ctrl *Controller) *Session {
	return &Session{ctrl: ctrl}
}

// Controller returns the controller driving this session
func (s *Session) Controller() *Controller {
	return s.ctrl
}

// Snapshot returns the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit runs one exchange for draft and returns the resulting state. The second return
// value is false when the draft was rejected, either because it is blank or because
// another exchange is still in flight.
func (s *Session) Submit(ctx context.Context, draft string) (final State, accepted bool) {
	s.mu.Lock()
	candidate := s.state
	candidate.Draft = draft
	next, ex, ok := s.ctrl.Begin(candidate)
	if !ok {
		final = s.state
		s.mu.Unlock()
		return final, false
	}
	s.state = next
	s.mu.Unlock()

	res := Result{Err: errExchangeAborted}
	defer func() {
		s.mu.Lock()
		s.state = s.ctrl.Resolve(s.state, res)
		final = s.state
		s.mu.Unlock()
	}()

	res = s.ctrl.Run(ctx, ex)
	return final, true
}
