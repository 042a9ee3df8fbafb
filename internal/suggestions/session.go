package suggestions

import "sync"

// Session tracks the suggestion state shown to one user. At most one request
// is pending at a time.
type Session struct {
	mu      sync.Mutex
	current Result
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{current: Result{State: StateIdle}}
}

// Begin moves the session to pending and clears the previous result. It
// returns false, leaving the session untouched, while a request is pending.
func (s *Session) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.State == StatePending {
		return false
	}
	s.current = Result{State: StatePending}
	return true
}

// Finish records the outcome of the pending request.
func (s *Session) Finish(result Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = result
}

// Current returns the latest state.
func (s *Session) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.State == "" {
		return Result{State: StateIdle}
	}
	return s.current
}
