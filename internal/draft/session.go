package draft

import (
	"sync"
)

// Action is the step a seller's draft is currently waiting on
type Action string

const (
	ActionIdle           Action = "idle"
	ActionAwaitingFields Action = "awaiting_fields"
)

// Session is a seller's in-progress product submission: the current
// expected action plus the photos accumulated so far, in arrival order.
type Session struct {
	Action Action
	Photos []string
}

// Sessions tracks draft sessions keyed by user ID. A session exists
// implicitly for every user and starts idle with no photos. Sessions
// never expire.
type Sessions struct {
	mu     sync.Mutex
	byUser map[int64]*Session
}

// NewSessions creates an empty session tracker
func NewSessions() *Sessions {
	return &Sessions{
		byUser: make(map[int64]*Session),
	}
}

func (s *Sessions) get(userID int64) *Session {
	sess, ok := s.byUser[userID]
	if !ok {
		sess = &Session{Action: ActionIdle}
		s.byUser[userID] = sess
	}
	return sess
}

// SetAction sets the expected action for a user's draft. Photos already
// accumulated are preserved: sellers may send photos before opening the
// product menu.
func (s *Sessions) SetAction(userID int64, action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(userID).Action = action
}

// Action returns the expected action for a user's draft
func (s *Sessions) Action(userID int64) Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(userID).Action
}

// AppendPhoto adds a photo handle to the end of a user's draft sequence
func (s *Sessions) AppendPhoto(userID int64, handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	sess.Photos = append(sess.Photos, handle)
}

// Photos returns a copy of a user's accumulated photo sequence
func (s *Sessions) Photos(userID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	out := make([]string, len(sess.Photos))
	copy(out, sess.Photos)
	return out
}

// Reset clears a user's draft: photos emptied, action back to idle
func (s *Sessions) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	sess.Action = ActionIdle
	sess.Photos = nil
}
